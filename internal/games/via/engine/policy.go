package engine

import "fmt"

// Mode selects how turns pass between the players.
type Mode int

const (
	// ModeTurns: a player keeps the turn until one move has fully settled.
	ModeTurns Mode = iota
	// ModeRealtime: both players move at will. Online only.
	ModeRealtime
)

func (m Mode) String() string {
	switch m {
	case ModeTurns:
		return "turns"
	case ModeRealtime:
		return "realtime"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "turns", "turn", "turn-based":
		return ModeTurns, nil
	case "realtime", "real-time":
		return ModeRealtime, nil
	default:
		return ModeTurns, fmt.Errorf("engine: unknown mode %q", s)
	}
}

// TurnPolicy decides what a player does once its board is settled and
// known to have a move. It is consulted at that one branch only.
type TurnPolicy interface {
	AfterSettle(p *Player) Step
}

// TurnBased ends the player's turn.
type TurnBased struct{}

func (TurnBased) AfterSettle(*Player) Step { return StepComplete }

// RealTime returns the player straight to input.
type RealTime struct{}

func (RealTime) AfterSettle(p *Player) Step { return p.RestingStep() }

// PolicyFor returns the policy of a mode.
func PolicyFor(m Mode) TurnPolicy {
	if m == ModeRealtime {
		return RealTime{}
	}
	return TurnBased{}
}
