package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the game variants",
	Long:  `Shows the registered Via variants and the active rules.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No games available.")
		return
	}

	fmt.Println("Available variants:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	// Print header
	fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, "ID", "Title", "Where")
	fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, "--", "-----", "-----")

	for _, g := range games {
		where := "local or online"
		if g.OnlineOnly {
			where = "online only"
		}
		fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, g.ID, g.Title, where)
	}

	cfg := via.Settings()
	fmt.Println()
	fmt.Printf("Board %dx%d, goal %d, %d locked bars to win, %d shuffles.\n",
		cfg.Board.Rows, cfg.Board.Cols, cfg.Scoring.Goal, cfg.Scoring.WinBars, cfg.Rules.Shuffles)
	fmt.Println("Run 'via play' for a hot-seat game or 'via join <url>' to play online.")
}
