package multiplayer

import (
	"sync"

	"github.com/vovakirdan/via/internal/games/via/engine"
)

// Conn is one participant's link to a coordinator, in-process or over the
// network. Calls never block on the opponent.
type Conn interface {
	Host(mode engine.Mode)
	Join(code string)
	Leave()
	SendCommand(cmd engine.Command)
	RequestRandom(seat, batch int)

	// Events delivers coordinator events in order.
	Events() <-chan SessionEvent

	// Done closes when the link is gone.
	Done() <-chan struct{}

	Close() error
}

// LocalConn connects an in-process session (an SSH client) to a coordinator.
type LocalConn struct {
	coord   *Coordinator
	session *ChannelSession
	once    sync.Once
}

// Connect registers a new session with the coordinator. The session may
// get a suffixed name when name is taken; see Claim.
func Connect(coord *Coordinator, name string) *LocalConn {
	s := Claim(coord.Sessions(), name, func(name string) *ChannelSession {
		return NewChannelSession(NewSessionID(), name, 256)
	})
	return &LocalConn{coord: coord, session: s}
}

// ID returns the session identifier.
func (c *LocalConn) ID() SessionID { return c.session.ID() }

func (c *LocalConn) Host(mode engine.Mode) {
	c.coord.Send(CreateLobbyMsg{SessionID: c.session.ID(), Mode: mode})
}

func (c *LocalConn) Join(code string) {
	c.coord.Send(JoinLobbyMsg{SessionID: c.session.ID(), Code: code})
}

func (c *LocalConn) Leave() {
	c.coord.Send(LeaveMsg{SessionID: c.session.ID()})
}

func (c *LocalConn) SendCommand(cmd engine.Command) {
	c.coord.Send(CommandMsg{SessionID: c.session.ID(), Command: cmd})
}

func (c *LocalConn) RequestRandom(seat, batch int) {
	c.coord.Send(RandomRequestMsg{SessionID: c.session.ID(), Seat: seat, Batch: batch})
}

func (c *LocalConn) Events() <-chan SessionEvent { return c.session.Events() }
func (c *LocalConn) Done() <-chan struct{}       { return c.session.Done() }

// Close disconnects the session. Safe to call multiple times.
func (c *LocalConn) Close() error {
	c.once.Do(func() {
		c.coord.Send(SessionDisconnectedMsg{SessionID: c.session.ID()})
		c.session.Close()
	})
	return nil
}
