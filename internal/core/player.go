package core

import "fmt"

// PlayerID identifies one of the two seats at a board pair.
// The zero value is the first player; board and score code index by it.
type PlayerID int

const (
	NoPlayer PlayerID = -1
	Player1  PlayerID = 0
	Player2  PlayerID = 1
)

// Other returns the opposing player.
func (p PlayerID) Other() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// Valid reports whether p names one of the two seats.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

func (p PlayerID) String() string {
	if !p.Valid() {
		return "none"
	}
	return fmt.Sprintf("P%d", int(p)+1)
}
