package core

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	Seed    int64 // Shared RNG seed; both sides of an online match use the same value
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		Seed:    0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Active   PlayerID // Player whose turn it is (NoPlayer in real-time mode)
	Winner   PlayerID // NoPlayer until the game is decided
	GameOver bool
}

// StepResult is returned by Game.Step() after each input snapshot is applied.
type StepResult struct {
	State GameState
	Err   error // Non-nil when the step could not be applied (remote desync)
}
