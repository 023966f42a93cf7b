package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/netplay"
	"github.com/vovakirdan/via/internal/platform/tui"
)

var (
	flagHost string
	flagCode string
	flagName string
)

var joinCmd = &cobra.Command{
	Use:   "join <url>",
	Short: "Play online through a websocket relay",
	Long: `Connect to a relay started with 'via serve' and play against
another terminal. Without --host or --code you pick in the lobby screen.

Examples:
  via join ws://localhost:8080/play
  via join ws://example.org:8080 --host realtime --name alice
  via join ws://example.org:8080 --code K7Q2XM`,
	Args: cobra.ExactArgs(1),
	Run:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&flagHost, "host", "", "Host a lobby: turns or realtime")
	joinCmd.Flags().StringVar(&flagCode, "code", "", "Join the lobby with this code")
	joinCmd.Flags().StringVar(&flagName, "name", "", "Display name (default: your user name)")
}

func runJoin(_ *cobra.Command, args []string) {
	if err := join(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func join(rawURL string) error {
	var host *engine.Mode
	if flagHost != "" {
		if flagCode != "" {
			return errors.New("--host and --code are exclusive")
		}
		mode, err := engine.ParseMode(flagHost)
		if err != nil {
			return err
		}
		host = &mode
	}

	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	name := flagName
	if name == "" {
		name = localUser()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := netplay.Dial(ctx, rawURL, name, logger.WithPrefix("net"))
	if err != nil {
		return err
	}
	defer conn.Close()

	bell := tui.NewBell(os.Stderr, logger)
	defer bell.Close()

	width, height := terminalSize()
	opts := tui.OnlineOptions{
		RandomLowWater: via.Settings().Network.RandomBuffer / 4,
		Sound:          bell,
		Logger:         logger,
	}
	if err := tui.RunOnline(conn, width, height, opts, host, flagCode); err != nil {
		return err
	}
	if cerr := conn.Err(); cerr != nil && !errors.Is(cerr, netplay.ErrClosed) {
		logger.Info("connection ended", "err", cerr)
	}
	return nil
}
