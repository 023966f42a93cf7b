package multiplayer

import (
	"fmt"
	"sync"
)

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator and matches to send events without depending on Wish,
// Bubble Tea or websockets.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Name returns the player's display name.
	Name() string

	// Send delivers an event to the session. Must not block.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel.
// Used for in-process sessions such as SSH clients.
type ChannelSession struct {
	id       SessionID
	name     string
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelSession creates a new channel-based session handle.
// A session whose buffer overflows is closed: the move stream cannot lose
// events without the two sides drifting apart.
func NewChannelSession(id SessionID, name string, eventBufferSize int) *ChannelSession {
	if eventBufferSize < 1 {
		eventBufferSize = 256
	}
	return &ChannelSession{
		id:     id,
		name:   name,
		events: make(chan SessionEvent, eventBufferSize),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID { return s.id }
func (s *ChannelSession) Name() string  { return s.name }

// Send queues an event, closing the session if the reader fell behind.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		s.Close()
	}
}

// Events returns the channel to receive events from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done.
// Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks active sessions and the display names they hold.
// Thread-safe for concurrent access.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
	names    map[string]SessionID
}

// NewSessionRegistry creates a new session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
		names:    make(map[string]SessionID),
	}
}

// Claim registers the session that build returns for the first free
// variant of name: "alice", then "alice-2", "alice-3" and so on. Match
// history tells players apart by name, so no two connected sessions share one.
func Claim[S SessionHandle](r *SessionRegistry, name string, build func(name string) S) S {
	r.mu.Lock()
	defer r.mu.Unlock()

	unique := name
	for n := 2; ; n++ {
		if _, taken := r.names[unique]; !taken {
			break
		}
		unique = fmt.Sprintf("%s-%d", name, n)
	}
	session := build(unique)
	r.sessions[session.ID()] = session
	r.names[session.Name()] = session.ID()
	return session
}

// Unregister removes a session and frees its name.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && r.names[s.Name()] == id {
		delete(r.names, s.Name())
	}
	delete(r.sessions, id)
}

// ByName finds the connected session holding a display name.
func (r *SessionRegistry) ByName(name string) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.names[name]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
