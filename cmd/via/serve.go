package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/multiplayer"
	"github.com/vovakirdan/via/internal/netplay"
	"github.com/vovakirdan/via/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Via servers",
	Long: `Start the SSH server and the websocket relay. Both share one
coordinator, so a player on SSH can be matched with one using 'via join'.
Finished online matches are stored in the database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.via/host_key

Examples:
  via serve                              # SSH on :23234, relay on :8080
  via serve --ssh :2222 --ws ""          # SSH only
  via serve --ssh "" --ws :9000          # relay only
  via serve --preset quick               # quick rules for every match

Users can connect with:
  ssh localhost -p 23234
  via join ws://localhost:8080/play`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty to disable)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", ":8080", "Websocket relay address (empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	if flagSSHAddr == "" && flagWSAddr == "" {
		return errors.New("nothing to serve: both --ssh and --ws are empty")
	}

	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	cfg := via.Settings()
	coord := multiplayer.NewCoordinator(multiplayer.CoordinatorConfigFrom(cfg), multiplayer.NewSessionRegistry())
	coord.SetLogger(logger.WithPrefix("coordinator"))
	if store != nil {
		coord.SetResultSaver(store)
	}
	coord.Start()
	defer coord.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	running := 0

	if flagSSHAddr != "" {
		sshCfg := tui.SSHServerConfig{
			Address:        flagSSHAddr,
			HostKeyPath:    flagHostKey,
			IdleTimeout:    time.Duration(flagIdleTimeout) * time.Minute,
			RandomLowWater: cfg.Network.RandomBuffer / 4,
		}
		sshServer, err := tui.NewSSHServer(sshCfg, coord, store, logger.WithPrefix("ssh"))
		if err != nil {
			return err
		}
		running++
		go func() { errCh <- sshServer.ListenAndServe(ctx) }()
		fmt.Printf("SSH server on %s (connect with: ssh localhost -p <port>)\n", flagSSHAddr)
	}

	if flagWSAddr != "" {
		var matches netplay.MatchStore
		if store != nil {
			matches = store
		}
		relay := netplay.NewServer(coord, matches, logger.WithPrefix("relay"))
		running++
		go func() { errCh <- relay.ListenAndServe(ctx, flagWSAddr) }()
		fmt.Printf("Websocket relay on %s (join with: via join ws://localhost%s/play)\n", flagWSAddr, flagWSAddr)
	}

	fmt.Println("Press Ctrl+C to stop")

	// the first failure stops everything; a clean stop waits for both
	var firstErr error
	for range running {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	return firstErr
}
