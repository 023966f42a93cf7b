// Package multiplayer pairs two sessions into a match and relays the move
// stream between them. The coordinator never runs the game itself: each
// side simulates both boards and the coordinator only orders commands,
// hands out the shared random streams and records the result.
package multiplayer

import "github.com/google/uuid"

// SessionID uniquely identifies a connected participant (SSH session or
// websocket connection).
type SessionID string

// MatchID uniquely identifies a game match.
type MatchID string

// NewSessionID returns a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// NewMatchID returns a fresh random match identifier.
func NewMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// NoSeat marks the absence of a winner.
const NoSeat = -1

// validSeat reports whether s names one of the two seats.
func validSeat(s int) bool {
	return s == 0 || s == 1
}
