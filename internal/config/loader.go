package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadVia loads Via configuration. Files only need to name the keys they
// change; everything else keeps its default.
// Search order: customPath -> ~/.via/configs/via.yaml -> ./configs/via.yaml -> embedded default
func LoadVia(customPath string) (ViaConfig, error) {
	cfg := DefaultViaConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("via.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, cfg.Validate()
			}
			cfg = DefaultViaConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/via.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, cfg.Validate()
		}
		cfg = DefaultViaConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultViaYAML, &cfg); err != nil {
		return DefaultViaConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".via", "configs", filename)
}

// envInts maps VIA_* variables to the integer fields they override.
func envInts(cfg *ViaConfig) map[string]*int {
	return map[string]*int{
		"VIA_ROWS":          &cfg.Board.Rows,
		"VIA_COLS":          &cfg.Board.Cols,
		"VIA_SHUFFLES":      &cfg.Rules.Shuffles,
		"VIA_GOAL":          &cfg.Scoring.Goal,
		"VIA_WIN_BARS":      &cfg.Scoring.WinBars,
		"VIA_RANDOM_BATCH":  &cfg.Network.RandomBatch,
		"VIA_LOBBY_TIMEOUT": &cfg.Network.LobbyTimeoutSecs,
	}
}

// ApplyEnv overrides config values from VIA_* variables looked up with
// getenv (os.Getenv in production). Unset variables are skipped.
func ApplyEnv(cfg *ViaConfig, getenv func(string) string) error {
	for name, field := range envInts(cfg) {
		raw := getenv(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, name, raw)
		}
		*field = v
	}
	if mode := getenv("VIA_MODE"); mode != "" {
		cfg.Rules.Mode = mode
	}
	return cfg.Validate()
}

// ApplyPreset modifies the config based on a named rule set.
func ApplyPreset(cfg *ViaConfig, preset Preset) error {
	switch preset {
	case PresetStandard, "":
		return nil
	case PresetQuick:
		cfg.Board.Rows, cfg.Board.Cols = 6, 6
		cfg.Scoring.WinBars = 3
		cfg.Rules.Shuffles = 2
	case PresetMarathon:
		cfg.Board.Rows, cfg.Board.Cols = 10, 10
		cfg.Scoring.WinBars = 5
		cfg.Rules.Shuffles = 5
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, preset)
	}
	return nil
}
