package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var cfg ViaConfig
	if err := yaml.Unmarshal(defaultViaYAML, &cfg); err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	if cfg != DefaultViaConfig() {
		t.Errorf("embedded default = %+v, expected %+v", cfg, DefaultViaConfig())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadViaCustomPathPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "via.yaml")
	data := []byte("board:\n  rows: 6\nscoring:\n  win_bars: 3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := LoadVia(path)
	if err != nil {
		t.Fatalf("LoadVia() failed: %v", err)
	}
	if cfg.Board.Rows != 6 || cfg.Scoring.WinBars != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Board.Cols != 8 || cfg.Scoring.Goal != 100 {
		t.Errorf("unset keys should keep defaults: %+v", cfg)
	}
}

func TestLoadViaErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("board: [1, 2"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("rules:\n  mode: chess\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		invalid bool
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), false},
		{"malformed yaml", bad, false},
		{"unknown mode", invalid, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadVia(tc.path)
			if err == nil {
				t.Fatal("LoadVia() should fail")
			}
			if errors.Is(err, ErrInvalid) != tc.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v for %v", !tc.invalid, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"VIA_ROWS":     "10",
		"VIA_MODE":     "realtime",
		"VIA_WIN_BARS": "5",
	}
	cfg := DefaultViaConfig()
	if err := ApplyEnv(&cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if cfg.Board.Rows != 10 || cfg.Rules.Mode != ModeRealtime || cfg.Scoring.WinBars != 5 {
		t.Errorf("env not applied: %+v", cfg)
	}

	env = map[string]string{"VIA_COLS": "wide"}
	if err := ApplyEnv(&cfg, func(k string) string { return env[k] }); !errors.Is(err, ErrInvalid) {
		t.Errorf("non-numeric value error = %v, expected ErrInvalid", err)
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset  Preset
		rows    int
		winBars int
		wantErr bool
	}{
		{PresetStandard, 8, 4, false},
		{PresetQuick, 6, 3, false},
		{PresetMarathon, 10, 5, false},
		{"blitz", 8, 4, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultViaConfig()
			err := ApplyPreset(&cfg, tc.preset)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ApplyPreset() error = %v, wantErr %v", err, tc.wantErr)
			}
			if cfg.Board.Rows != tc.rows || cfg.Scoring.WinBars != tc.winBars {
				t.Errorf("got rows %d win_bars %d, expected %d/%d", cfg.Board.Rows, cfg.Scoring.WinBars, tc.rows, tc.winBars)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset produced an invalid config: %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ViaConfig)
	}{
		{"tiny board", func(c *ViaConfig) { c.Board.Rows = 2 }},
		{"huge board", func(c *ViaConfig) { c.Board.Cols = 40 }},
		{"negative shuffles", func(c *ViaConfig) { c.Rules.Shuffles = -1 }},
		{"bad first player", func(c *ViaConfig) { c.Rules.FirstPlayer = 2 }},
		{"zero goal", func(c *ViaConfig) { c.Scoring.Goal = 0 }},
		{"too many win bars", func(c *ViaConfig) { c.Scoring.WinBars = 7 }},
		{"spill over 100", func(c *ViaConfig) { c.Scoring.LockedSpillPercent = 150 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultViaConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, expected ErrInvalid", err)
			}
		})
	}
}
