package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/platform/tui"
	"github.com/vovakirdan/via/internal/registry"
)

var (
	flagPlayer1 string
	flagPlayer2 string
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play a hot-seat game",
	Long: `Start a two-player game on this terminal. Players take turns on
the same keyboard or mouse; the cursor follows whoever holds the move.

Controls:
  Arrows/WASD  - Move the cursor
  Space/Enter  - Pick a tile, then an adjacent one to swap
  Mouse        - Click tiles directly
  X            - Shuffle your board (limited)
  N            - New game (after game over)
  ?            - Full help
  Q/Ctrl+C     - Quit

Examples:
  via play
  via play --preset quick
  via play --p1 alice --p2 bob
  via play --config ./my-via.yaml --seed 42`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer1, "p1", "P1", "Name of the first player")
	playCmd.Flags().StringVar(&flagPlayer2, "p2", "P2", "Name of the second player")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := via.IDTurns
	if len(args) == 1 {
		gameID = args[0]
	}

	info, ok := registry.Info(gameID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'via list' to see available variants.")
		os.Exit(1)
	}
	if info.OnlineOnly {
		fmt.Fprintf(os.Stderr, "Error: %s needs two terminals; host it with 'via join <url> --host realtime'\n", info.Title)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	created, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	game := created.(*via.Game)
	game.SetNames(flagPlayer1, flagPlayer2)

	width, height := terminalSize()
	cfg := core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		Seed:    flagSeed,
	}

	store := openStore(logger)

	// Run the game
	runErr := tui.Run(game, store, cfg, logger)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
