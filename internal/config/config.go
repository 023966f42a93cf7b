// Package config provides YAML-based game configuration loading, env
// overrides and presets for Via.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// ViaConfig contains all configuration for a Via game and its server.
type ViaConfig struct {
	Board   BoardConfig   `yaml:"board"`
	Rules   RulesConfig   `yaml:"rules"`
	Scoring ScoringConfig `yaml:"scoring"`
	Network NetworkConfig `yaml:"network"`
}

// BoardConfig defines the board dimensions. Both players get the same size.
type BoardConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// RulesConfig defines the turn rules.
type RulesConfig struct {
	Mode        string `yaml:"mode"`         // "turns" or "realtime"
	Shuffles    int    `yaml:"shuffles"`     // Player-invoked shuffles per game
	FirstPlayer int    `yaml:"first_player"` // 0 or 1, local games only
}

// ScoringConfig defines the tug-of-war bars.
type ScoringConfig struct {
	Goal               int `yaml:"goal"`                 // Bar value that locks
	WinBars            int `yaml:"win_bars"`             // Locked bars needed to win
	PointsPerTile      int `yaml:"points_per_tile"`      // Base points per matched tile
	BonusPerExtraTile  int `yaml:"bonus_per_extra_tile"` // Bonus per tile past the third
	LockedSpillPercent int `yaml:"locked_spill_percent"` // Share of a hit on a locked bar given to the rest
}

// NetworkConfig defines online play parameters.
type NetworkConfig struct {
	RandomBuffer     int `yaml:"random_buffer"`      // Low-water mark of a server random stream
	RandomBatch      int `yaml:"random_batch"`       // Values per random_fill message
	LobbyTimeoutSecs int `yaml:"lobby_timeout_secs"` // Unjoined lobbies expire after this
}

// Validate checks the config for values the game cannot run with.
func (c ViaConfig) Validate() error {
	switch {
	case c.Board.Rows < 3 || c.Board.Cols < 3:
		return fmt.Errorf("%w: board must be at least 3x3, got %dx%d", ErrInvalid, c.Board.Rows, c.Board.Cols)
	case c.Board.Rows > 16 || c.Board.Cols > 16:
		return fmt.Errorf("%w: board must be at most 16x16, got %dx%d", ErrInvalid, c.Board.Rows, c.Board.Cols)
	case c.Rules.Mode != ModeTurns && c.Rules.Mode != ModeRealtime:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Rules.Mode)
	case c.Rules.Shuffles < 0:
		return fmt.Errorf("%w: shuffles must not be negative", ErrInvalid)
	case c.Rules.FirstPlayer != 0 && c.Rules.FirstPlayer != 1:
		return fmt.Errorf("%w: first_player must be 0 or 1", ErrInvalid)
	case c.Scoring.Goal <= 0:
		return fmt.Errorf("%w: goal must be positive", ErrInvalid)
	case c.Scoring.WinBars < 1 || c.Scoring.WinBars > 6:
		return fmt.Errorf("%w: win_bars must be between 1 and 6, got %d", ErrInvalid, c.Scoring.WinBars)
	case c.Scoring.PointsPerTile <= 0:
		return fmt.Errorf("%w: points_per_tile must be positive", ErrInvalid)
	case c.Scoring.LockedSpillPercent < 0 || c.Scoring.LockedSpillPercent > 100:
		return fmt.Errorf("%w: locked_spill_percent must be within 0..100", ErrInvalid)
	case c.Network.RandomBatch <= 0 || c.Network.RandomBuffer < 0:
		return fmt.Errorf("%w: random_batch must be positive", ErrInvalid)
	}
	return nil
}

// Mode names.
const (
	ModeTurns    = "turns"
	ModeRealtime = "realtime"
)

// Preset represents a named rule set.
type Preset string

const (
	PresetStandard Preset = "standard"
	PresetQuick    Preset = "quick"
	PresetMarathon Preset = "marathon"
)

// Presets lists the preset names in display order.
func Presets() []Preset {
	return []Preset{PresetStandard, PresetQuick, PresetMarathon}
}
