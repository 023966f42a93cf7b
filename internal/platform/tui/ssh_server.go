package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
	"github.com/vovakirdan/via/internal/registry"
	"github.com/vovakirdan/via/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.via/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// RandomLowWater is the refill threshold of online random streams.
	RandomLowWater int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server. Every SSH session gets the Via menu
// and joins the shared coordinator for online play.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	coord  *multiplayer.Coordinator
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. store may be nil.
func NewSSHServer(cfg SSHServerConfig, coord *multiplayer.Coordinator, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "via-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		coord:  coord,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".via", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
		Seed:    time.Now().UnixNano(),
	}

	conn := multiplayer.Connect(s.coord, sshSession.User())
	bell := NewBell(sshSession, s.logger)
	go func() {
		<-sshSession.Context().Done()
		bell.Close()
		_ = conn.Close()
	}()

	model := NewSessionModel(SessionOptions{
		Store:          s.store,
		Config:         cfg,
		Username:       sshSession.User(),
		Conn:           conn,
		Sound:          bell,
		Logger:         s.logger.With("user", sshSession.User()),
		RandomLowWater: s.config.RandomLowWater,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is the screen a SessionModel shows.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenOnline
	screenHistory
)

// SessionOptions configure a SessionModel.
type SessionOptions struct {
	Store          *storage.Store     // optional
	Config         core.RuntimeConfig // screen size and seed
	Username       string
	Conn           multiplayer.Conn   // optional; enables online play
	Sound          engine.SoundPlayer // optional
	Logger         *log.Logger        // optional
	RandomLowWater int
}

// SessionModel manages the full session flow: menu -> game, lobby or
// history -> menu. It is the top-level model of SSH sessions and of the
// local menu.
type SessionModel struct {
	opts    SessionOptions
	config  core.RuntimeConfig
	logger  *log.Logger
	screen  sessionScreen
	menu    MenuModel
	game    *GameModel
	online  *OnlineModel
	history *ScoreboardModel

	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(opts SessionOptions) SessionModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Username == "" {
		opts.Username = "P1"
	}
	return SessionModel{
		opts:   opts,
		config: opts.Config,
		logger: logger,
		menu:   NewMenuModel(opts.Config, opts.Conn != nil),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	case multiplayer.SessionEvent, connClosedMsg:
		// the online model owns the event stream even while hidden
		if m.online != nil {
			return m.updateOnline(msg)
		}
		return m, nil
	case TickMsg:
		switch m.screen {
		case screenGame:
			return m.updateGame(msg)
		case screenOnline:
			return m.updateOnline(msg)
		}
		return m, nil
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenHistory:
		return m.updateHistory(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.config = m.menu.Config()

	switch selected.Kind {
	case MenuLocal:
		return m.startLocal(selected.GameID)
	case MenuOnline:
		return m.openOnline()
	case MenuHistory:
		var store HistoryStore
		if m.opts.Store != nil {
			store = m.opts.Store
		}
		h := NewScoreboardModel(store, m.config.ScreenW, m.config.ScreenH)
		m.history = &h
		m.screen = screenHistory
		return m, h.Init()
	}
	return m, cmd
}

func (m SessionModel) startLocal(id string) (tea.Model, tea.Cmd) {
	created, err := registry.Create(id)
	if err != nil {
		m.logger.Error("creating game", "id", id, "err", err)
		m.menu = NewMenuModel(m.config, m.opts.Conn != nil)
		return m, nil
	}
	game, ok := created.(*via.Game)
	if !ok {
		m.menu = NewMenuModel(m.config, m.opts.Conn != nil)
		return m, nil
	}
	game.SetNames(m.opts.Username, "Guest")
	game.SetSound(m.opts.Sound)
	game.SetLogger(m.logger)

	rc := m.config
	rc.Seed = time.Now().UnixNano()
	gm := NewGameModel(game, m.opts.Store, rc, m.logger)
	m.game = &gm
	m.screen = screenGame
	return m, gm.Init()
}

func (m SessionModel) openOnline() (tea.Model, tea.Cmd) {
	m.screen = screenOnline
	if m.online == nil {
		router := multiplayer.NewRouter(m.opts.Conn)
		om := NewOnlineModel(m.opts.Conn, router, m.config.ScreenW, m.config.ScreenH, OnlineOptions{
			RandomLowWater: m.opts.RandomLowWater,
			Sound:          m.opts.Sound,
			Logger:         m.logger,
		})
		m.online = &om
		return m, om.Init()
	}
	om := m.online.ClearBack()
	next, _ := om.Update(tea.WindowSizeMsg{Width: m.config.ScreenW, Height: m.config.ScreenH})
	om = next.(OnlineModel)
	m.online = &om
	return m, nil
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	gm := next.(GameModel)
	m.game = &gm

	if gm.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if gm.BackToMenu() {
		m.game = nil
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.online.Update(msg)
	om := next.(OnlineModel)
	m.online = &om

	if om.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if om.BackToMenu() && m.screen == screenOnline {
		model, _ := m.backToMenu()
		return model, cmd
	}
	return m, cmd
}

func (m SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.history.Update(msg)
	h := next.(ScoreboardModel)
	m.history = &h

	if h.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if h.IsGoingBack() {
		m.history = nil
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.config, m.opts.Conn != nil)
	return m, m.menu.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenOnline:
		return m.online.View()
	case screenHistory:
		return m.history.View()
	}
	return m.menu.View()
}

// RunMenu runs the session flow on the local terminal.
func RunMenu(opts SessionOptions) error {
	p := tea.NewProgram(
		NewSessionModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
