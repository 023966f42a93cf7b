package config

import (
	_ "embed"
)

//go:embed defaults/via.yaml
var defaultViaYAML []byte

// DefaultViaConfig returns the default Via configuration.
func DefaultViaConfig() ViaConfig {
	return ViaConfig{
		Board: BoardConfig{
			Rows: 8,
			Cols: 8,
		},
		Rules: RulesConfig{
			Mode:        ModeTurns,
			Shuffles:    3,
			FirstPlayer: 0,
		},
		Scoring: ScoringConfig{
			Goal:               100,
			WinBars:            4,
			PointsPerTile:      4,
			BonusPerExtraTile:  2,
			LockedSpillPercent: 25,
		},
		Network: NetworkConfig{
			RandomBuffer:     4096,
			RandomBatch:      1024,
			LobbyTimeoutSecs: 120,
		},
	}
}
