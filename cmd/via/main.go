// via is a two-player match-3 tug-of-war for the terminal.
//
// Usage:
//
//	via list                  - List game variants
//	via play                  - Hot-seat game on this terminal
//	via menu                  - Menu with local play and match history
//	via serve                 - SSH server and websocket relay for online play
//	via join <url>            - Play online through a websocket relay
//	via history               - Show finished matches and the leaderboard
//
// Global flags:
//
//	--seed <value>      - Set RNG seed for reproducible games
//	--db <path>         - Set database path (default: ~/.via/via.db)
//	--config <path>     - Game config YAML
//	--preset <name>     - Rule preset: standard, quick, marathon
//	--log-level <lvl>   - debug, info, warn, error
//	--log-file <path>   - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/via/internal/config"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/storage"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagPreset   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	// a .env next to the binary may set VIA_* overrides
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "via",
	Short: "Via - two boards, six bars, one winner",
	Long: `Via is a two-player match-3 game. Every match you make pulls the
bar of that color toward you; push a bar to the goal to lock it and lock
enough bars to win.

Available commands:
  list     - Show the game variants
  play     - Hot-seat game on this terminal
  menu     - Interactive menu
  serve    - SSH server and websocket relay for online play
  join     - Play online through a websocket relay
  history  - Finished matches and the leaderboard

Examples:
  via play
  via play --preset quick
  via serve --ssh :23234 --ws :8080
  via join ws://localhost:8080/play --host turns
  via history --player alice`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.via/via.db", "Path to match database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Rule preset: standard, quick, marathon")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig reads the game config, applies VIA_* variables and the
// preset, and installs the result for new games.
func loadConfig() error {
	cfg, err := config.LoadVia(flagConfig)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, os.Getenv); err != nil {
		return err
	}
	if err := config.ApplyPreset(&cfg, config.Preset(flagPreset)); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	via.Configure(cfg)
	return nil
}

// newLogger builds the logger for a command. Logs go to --log-file when
// set, otherwise to fallback; full-screen commands pass io.Discard.
func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("bad --log-level: %w", err)
	}

	out, closer := fallback, func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out, closer = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "via",
		Level:           level,
	})
	return logger, closer, nil
}

// openStore opens the match database. A failure is reported and play
// continues without history.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open match database: %v\n", err)
		logger.Warn("match database unavailable", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}

// terminalSize returns the terminal size, or 80x24 when stdout is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
