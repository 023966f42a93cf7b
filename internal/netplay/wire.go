// Package netplay carries the coordinator protocol over websockets: a chi
// server that exposes a multiplayer.Coordinator at /play, and a client that
// implements multiplayer.Conn for a remote terminal.
//
// Every websocket text message is one JSON Message. The "type" field names
// the message; the other fields are set as the type requires.
package netplay

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
)

var (
	// ErrClosed is returned once a connection is gone.
	ErrClosed = errors.New("netplay: connection closed")

	// ErrUnknownMessage is returned for a message type the receiver does not handle.
	ErrUnknownMessage = errors.New("netplay: unknown message type")
)

// Client to server message types.
const (
	TypeHost     = "host"
	TypeJoin     = "join"
	TypeLeave    = "leave"
	TypeSwap     = "swap"
	TypeShuffle  = "shuffle"
	TypeScore    = "score"
	TypeGameOver = "game_over"
	TypeRandom   = "random"
)

// Server to client message types.
const (
	TypeLobbyCreated = "lobby_created"
	TypeLobbyError   = "lobby_error"
	TypeLobbyJoined  = "lobby_joined"
	TypePlayerLeft   = "player_left"
	TypeMatchStarted = "match_started"
	TypeCommand      = "command"
	TypeRandomFill   = "random_fill"
	TypeMatchEnded   = "match_ended"
)

// Message is the JSON envelope of every websocket message. Zero fields are
// omitted; a missing number decodes as zero.
type Message struct {
	Type     string   `json:"type"`
	Mode     string   `json:"mode,omitempty"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message,omitempty"`
	Match    string   `json:"match,omitempty"`
	Seat     int      `json:"seat,omitempty"`
	First    int      `json:"first,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
	Rows     int      `json:"rows,omitempty"`
	Cols     int      `json:"cols,omitempty"`
	Names    []string `json:"names,omitempty"`
	Opponent string   `json:"opponent,omitempty"`

	A      int    `json:"a,omitempty"`
	B      int    `json:"b,omitempty"`
	Tile   string `json:"tile,omitempty"`
	Amount int    `json:"amount,omitempty"`
	Winner int    `json:"winner,omitempty"`

	Batch  int    `json:"batch,omitempty"`
	Values []int  `json:"values,omitempty"`
	Reason string `json:"reason,omitempty"`

	Command *Message `json:"command,omitempty"`
}

// EncodeCommand converts a move command to its message.
func EncodeCommand(cmd engine.Command) (Message, error) {
	switch c := cmd.(type) {
	case engine.SwapTiles:
		return Message{Type: TypeSwap, A: c.A, B: c.B}, nil
	case engine.ShuffleTiles:
		return Message{Type: TypeShuffle}, nil
	case engine.ScoreIncrease:
		return Message{Type: TypeScore, Tile: c.Type.String(), Amount: c.Amount}, nil
	case engine.GameOver:
		return Message{Type: TypeGameOver, Winner: c.Winner}, nil
	default:
		return Message{}, fmt.Errorf("netplay: cannot encode %T", cmd)
	}
}

// DecodeCommand converts a message back to a move command.
func DecodeCommand(m Message) (engine.Command, error) {
	switch m.Type {
	case TypeSwap:
		return engine.SwapTiles{A: m.A, B: m.B}, nil
	case TypeShuffle:
		return engine.ShuffleTiles{}, nil
	case TypeScore:
		t, ok := engine.ParseTileType(m.Tile)
		if !ok {
			return nil, fmt.Errorf("netplay: bad tile %q", m.Tile)
		}
		return engine.ScoreIncrease{Type: t, Amount: m.Amount}, nil
	case TypeGameOver:
		return engine.GameOver{Winner: m.Winner}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}

// EncodeEvent converts a coordinator event to its message.
func EncodeEvent(evt multiplayer.SessionEvent) (Message, error) {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		return Message{Type: TypeLobbyCreated, Code: e.Code, Mode: e.Mode.String()}, nil
	case multiplayer.LobbyErrorEvent:
		return Message{Type: TypeLobbyError, Message: e.Message}, nil
	case multiplayer.LobbyJoinedEvent:
		return Message{Type: TypeLobbyJoined, Code: e.Code, Seat: e.Seat, Opponent: e.Opponent}, nil
	case multiplayer.LobbyPlayerLeftEvent:
		return Message{Type: TypePlayerLeft, Code: e.Code}, nil
	case multiplayer.MatchStartedEvent:
		return Message{
			Type:  TypeMatchStarted,
			Match: string(e.MatchID),
			Seat:  e.Seat,
			First: e.First,
			Seed:  e.Seed,
			Mode:  e.Mode.String(),
			Rows:  e.Rows,
			Cols:  e.Cols,
			Names: e.Names[:],
		}, nil
	case multiplayer.CommandEvent:
		inner, err := EncodeCommand(e.Command)
		if err != nil {
			return Message{}, err
		}
		return Message{Type: TypeCommand, Match: string(e.MatchID), Seat: e.Seat, Command: &inner}, nil
	case multiplayer.RandomFillEvent:
		return Message{
			Type:   TypeRandomFill,
			Match:  string(e.MatchID),
			Seat:   e.Seat,
			Batch:  e.Batch,
			Values: e.Values,
		}, nil
	case multiplayer.MatchEndedEvent:
		return Message{
			Type:   TypeMatchEnded,
			Match:  string(e.MatchID),
			Reason: e.Reason.Key(),
			Winner: e.Winner,
		}, nil
	default:
		return Message{}, fmt.Errorf("netplay: cannot encode %T", evt)
	}
}

// DecodeEvent converts a server message back to a coordinator event.
func DecodeEvent(m Message) (multiplayer.SessionEvent, error) {
	switch m.Type {
	case TypeLobbyCreated:
		mode, err := engine.ParseMode(m.Mode)
		if err != nil {
			return nil, err
		}
		return multiplayer.LobbyCreatedEvent{Code: m.Code, Mode: mode}, nil
	case TypeLobbyError:
		return multiplayer.LobbyErrorEvent{Message: m.Message}, nil
	case TypeLobbyJoined:
		return multiplayer.LobbyJoinedEvent{Code: m.Code, Seat: m.Seat, Opponent: m.Opponent}, nil
	case TypePlayerLeft:
		return multiplayer.LobbyPlayerLeftEvent{Code: m.Code}, nil
	case TypeMatchStarted:
		mode, err := engine.ParseMode(m.Mode)
		if err != nil {
			return nil, err
		}
		evt := multiplayer.MatchStartedEvent{
			MatchID: multiplayer.MatchID(m.Match),
			Seat:    m.Seat,
			First:   m.First,
			Seed:    m.Seed,
			Mode:    mode,
			Rows:    m.Rows,
			Cols:    m.Cols,
		}
		copy(evt.Names[:], m.Names)
		return evt, nil
	case TypeCommand:
		if m.Command == nil {
			return nil, errors.New("netplay: command message without command")
		}
		cmd, err := DecodeCommand(*m.Command)
		if err != nil {
			return nil, err
		}
		return multiplayer.CommandEvent{MatchID: multiplayer.MatchID(m.Match), Seat: m.Seat, Command: cmd}, nil
	case TypeRandomFill:
		return multiplayer.RandomFillEvent{
			MatchID: multiplayer.MatchID(m.Match),
			Seat:    m.Seat,
			Batch:   m.Batch,
			Values:  m.Values,
		}, nil
	case TypeMatchEnded:
		return multiplayer.MatchEndedEvent{
			MatchID: multiplayer.MatchID(m.Match),
			Reason:  multiplayer.ParseMatchEndReason(m.Reason),
			Winner:  m.Winner,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}

// DecodeRequest converts a client message into a coordinator message for
// the given session.
func DecodeRequest(id multiplayer.SessionID, m Message) (multiplayer.CoordinatorMessage, error) {
	switch m.Type {
	case TypeHost:
		mode := engine.ModeTurns
		if m.Mode != "" {
			var err error
			if mode, err = engine.ParseMode(m.Mode); err != nil {
				return nil, err
			}
		}
		return multiplayer.CreateLobbyMsg{SessionID: id, Mode: mode}, nil
	case TypeJoin:
		return multiplayer.JoinLobbyMsg{SessionID: id, Code: m.Code}, nil
	case TypeLeave:
		return multiplayer.LeaveMsg{SessionID: id}, nil
	case TypeRandom:
		return multiplayer.RandomRequestMsg{SessionID: id, Seat: m.Seat, Batch: m.Batch}, nil
	default:
		cmd, err := DecodeCommand(m)
		if err != nil {
			return nil, err
		}
		return multiplayer.CommandMsg{SessionID: id, Command: cmd}, nil
	}
}
