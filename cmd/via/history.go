package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/storage"
)

var (
	flagPlayer string
	flagLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show finished matches and the leaderboard",
	Long: `Display recent matches and the players with the most wins, or
one player's record with --player.

Examples:
  via history
  via history --limit 5
  via history --player alice`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagPlayer, "player", "", "Show one player's record")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to list")
}

func runHistory(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening match database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagPlayer != "" {
		err = printPlayer(store, flagPlayer)
	} else {
		err = printOverview(store)
	}
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving history: %v\n", err)
		os.Exit(1)
	}
}

func printOverview(store *storage.Store) error {
	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		return err
	}

	fmt.Println("Recent matches")
	fmt.Println()
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'via play' to record the first one!")
		return nil
	}
	printMatches(matches)

	board, err := store.Leaderboard(10)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("Leaderboard")
	fmt.Println()
	fmt.Printf("  %-4s  %-20s  %-5s  %-6s  %s\n", "Rank", "Player", "Wins", "Losses", "Played")
	fmt.Printf("  %-4s  %-20s  %-5s  %-6s  %s\n", "----", "------", "----", "------", "------")
	for i, p := range board {
		fmt.Printf("  %-4d  %-20s  %-5d  %-6d  %d\n", i+1, p.Name, p.Wins, p.Losses, p.Played)
	}
	return nil
}

func printPlayer(store *storage.Store, name string) error {
	rec, err := store.PlayerRecord(name)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d played, %d won, %d lost\n", rec.Name, rec.Played, rec.Wins, rec.Losses)
	if rec.Played == 0 {
		return nil
	}

	matches, err := store.PlayerMatches(name, flagLimit)
	if err != nil {
		return err
	}
	fmt.Println()
	printMatches(matches)
	return nil
}

func printMatches(matches []storage.MatchRecord) {
	fmt.Printf("  %-16s  %-8s  %-30s  %-12s  %-10s  %s\n", "Date", "Mode", "Players", "Winner", "End", "Bars")
	fmt.Printf("  %-16s  %-8s  %-30s  %-12s  %-10s  %s\n", "----", "----", "-------", "------", "---", "----")
	for _, m := range matches {
		winner := m.Winner
		if winner == "" {
			winner = "-"
		}
		bars := make([]string, len(m.Bars))
		for i, v := range m.Bars {
			bars[i] = fmt.Sprintf("%d", v)
		}
		fmt.Printf("  %-16s  %-8s  %-30s  %-12s  %-10s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Mode,
			m.Player1+" vs "+m.Player2,
			winner,
			m.EndReason,
			strings.Join(bars, " "),
		)
	}
}
