package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start Via with an interactive menu",
	Long: `Start Via in interactive menu mode: hot-seat games and the match
history. After a game you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Esc          - Back to the menu
  Q            - Quit

Examples:
  via menu
  via menu --db ./via.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	bell := tui.NewBell(os.Stderr, logger)
	defer bell.Close()

	width, height := terminalSize()
	opts := tui.SessionOptions{
		Store:    store,
		Config:   core.RuntimeConfig{ScreenW: width, ScreenH: height, Seed: flagSeed},
		Username: localUser(),
		Sound:    bell,
		Logger:   logger,
	}
	if err := tui.RunMenu(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// localUser names the player at this terminal.
func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "P1"
}
