package multiplayer

import "github.com/vovakirdan/via/internal/games/via/engine"

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent is sent when a lobby is successfully created.
type LobbyCreatedEvent struct {
	Code string
	Mode engine.Mode
}

func (LobbyCreatedEvent) sessionEvent() {}

// LobbyErrorEvent is sent when a lobby operation fails.
type LobbyErrorEvent struct {
	Message string
}

func (LobbyErrorEvent) sessionEvent() {}

// LobbyJoinedEvent is sent to both host and joiner when someone joins.
type LobbyJoinedEvent struct {
	Code     string
	Seat     int
	Opponent string
}

func (LobbyJoinedEvent) sessionEvent() {}

// LobbyPlayerLeftEvent is sent when a player leaves the lobby before match starts.
type LobbyPlayerLeftEvent struct {
	Code string
}

func (LobbyPlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent tells a session which seat it plays and everything it
// needs to deal the same boards as its opponent.
type MatchStartedEvent struct {
	MatchID MatchID
	Seat    int
	First   int // seat that moves first in turn mode
	Seed    int64
	Mode    engine.Mode
	Rows    int
	Cols    int
	Names   [2]string // by seat
}

func (MatchStartedEvent) sessionEvent() {}

// CommandEvent relays one command of the opponent.
type CommandEvent struct {
	MatchID MatchID
	Seat    int // sender
	Command engine.Command
}

func (CommandEvent) sessionEvent() {}

// RandomFillEvent answers a random batch request.
type RandomFillEvent struct {
	MatchID MatchID
	Seat    int
	Batch   int
	Values  []int
}

func (RandomFillEvent) sessionEvent() {}

// MatchEndedEvent is sent when the match ends.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  int // seat, NoSeat if nobody won
}

func (MatchEndedEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // A player won
	MatchEndReasonDisconnect                       // Opponent disconnected
	MatchEndReasonCancelled                        // Match was cancelled
	MatchEndReasonHostLeft                         // Host left the lobby
	MatchEndReasonLeft                             // Opponent left the match
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Opponent disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonLeft:
		return "Opponent left"
	default:
		return "Unknown"
	}
}

// Key returns a stable identifier used on the wire and in storage.
func (r MatchEndReason) Key() string {
	switch r {
	case MatchEndReasonCompleted:
		return "completed"
	case MatchEndReasonDisconnect:
		return "disconnect"
	case MatchEndReasonCancelled:
		return "cancelled"
	case MatchEndReasonHostLeft:
		return "host_left"
	case MatchEndReasonLeft:
		return "left"
	default:
		return "unknown"
	}
}

// ParseMatchEndReason is the inverse of Key.
func ParseMatchEndReason(s string) MatchEndReason {
	for r := MatchEndReasonCompleted; r <= MatchEndReasonLeft; r++ {
		if r.Key() == s {
			return r
		}
	}
	return MatchEndReasonCancelled
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg requests creation of a new lobby.
type CreateLobbyMsg struct {
	SessionID SessionID
	Mode      engine.Mode
}

func (CreateLobbyMsg) coordinatorMessage() {}

// JoinLobbyMsg requests joining an existing lobby.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

func (JoinLobbyMsg) coordinatorMessage() {}

// LeaveMsg leaves whatever lobby or match the session is in.
type LeaveMsg struct {
	SessionID SessionID
}

func (LeaveMsg) coordinatorMessage() {}

// CommandMsg submits one command of the sender's move stream.
type CommandMsg struct {
	SessionID SessionID
	Command   engine.Command
}

func (CommandMsg) coordinatorMessage() {}

// RandomRequestMsg asks for batch number Batch of a seat's random stream.
type RandomRequestMsg struct {
	SessionID SessionID
	Seat      int
	Batch     int
}

func (RandomRequestMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
