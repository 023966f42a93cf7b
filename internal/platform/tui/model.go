package tui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/multiplayer"
	"github.com/vovakirdan/via/internal/storage"
)

// GameModel is the Bubble Tea model for one Via game. Keys and clicks are
// gathered into an input snapshot that is applied on the next tick. In an
// online game the commands the engine produces are sent over conn.
type GameModel struct {
	game   *via.Game
	screen *core.Screen
	store  *storage.Store // local results; nil to skip saving
	conn   multiplayer.Conn
	logger *log.Logger
	config core.RuntimeConfig

	keys  KeyMap
	help  help.Model
	in    core.InputSnapshot
	state core.GameState

	width   int
	height  int
	started time.Time
	saved   bool

	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model for a local game.
func NewGameModel(game *via.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) GameModel {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := GameModel{
		game:   game,
		store:  store,
		logger: logger,
		config: cfg,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
	}
	m.help.Width = cfg.ScreenW
	m.screen = core.NewScreen(cfg.ScreenW, m.gameHeight())
	m.config.ScreenH = m.gameHeight()
	return m
}

// newOnlineGameModel creates a model for one side of an online match.
func newOnlineGameModel(game *via.Game, conn multiplayer.Conn, cfg core.RuntimeConfig, logger *log.Logger) GameModel {
	m := NewGameModel(game, nil, cfg, logger)
	m.conn = conn
	return m
}

// Init deals the first game and starts the step loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(stepRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.backToMenu = true
		return m, nil
	}

	p := m.controlled()
	switch a := m.keys.Action(msg); a {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		m.game.MoveCursor(p, a)
	case core.ActionSelect:
		m.in.Click(p, m.game.Cursor(p))
	case core.ActionShuffle:
		m.in.Shuffle(p)
	case core.ActionNewGame:
		if m.state.GameOver && m.conn == nil {
			m.in.NewGame = true
		}
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	}
	return m, nil
}

func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	p, index, ok := m.game.CellAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.game.SetCursor(p, index)
	m.in.Click(p, index)
	return m, nil
}

// controlled returns the player the keyboard drives: the local player
// online, the player holding the move in a hot-seat game.
func (m GameModel) controlled() core.PlayerID {
	if m.conn == nil && m.state.Active.Valid() {
		return m.state.Active
	}
	return core.Player1
}

func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	if m.in.NewGame {
		m.started = time.Time{}
		m.saved = false
	}
	if m.started.IsZero() {
		m.started = time.Now()
	}

	res := m.game.Step(m.in)
	m.in.Clear()
	m.state = res.State
	m.flush()
	m.saveResult()

	return m, tickCmd(stepRate)
}

// applyRemote feeds one opponent command to the game.
func (m GameModel) applyRemote(cmd multiplayer.CommandEvent) GameModel {
	//nolint:errcheck // the game records and displays the desync
	m.game.ApplyRemote(cmd.Command)
	m.state = m.game.State()
	m.flush()
	return m
}

// flush sends the commands produced by local moves.
func (m GameModel) flush() {
	out := m.game.DrainOutbox()
	if m.conn == nil {
		return
	}
	for _, cmd := range out {
		m.conn.SendCommand(cmd)
	}
}

// saveResult records a finished local game once.
func (m *GameModel) saveResult() {
	if !m.state.GameOver || m.saved || m.conn != nil {
		return
	}
	m.saved = true
	if m.store == nil {
		return
	}

	names := m.game.Names()
	rec := storage.MatchRecord{
		MatchID:   uuid.NewString(),
		Mode:      m.game.Mode().String(),
		Player1:   names[0],
		Player2:   names[1],
		EndReason: multiplayer.MatchEndReasonCompleted.Key(),
		Bars:      m.game.Session().Scores().Bars(),
		Duration:  int(time.Since(m.started).Seconds()),
	}
	if m.state.Winner.Valid() {
		rec.Winner = names[m.state.Winner]
	}
	if _, err := m.store.SaveMatch(rec); err != nil {
		m.logger.Error("saving match", "err", err)
	}
}

func (m GameModel) gameHeight() int {
	return max(0, m.height-lipgloss.Height(m.help.View(m.keys)))
}

func (m *GameModel) resize() {
	h := m.gameHeight()
	m.config.ScreenW, m.config.ScreenH = m.width, h
	m.screen.Resize(m.width, h)
	m.game.Resize(m.width, h)
}

// View renders the board and the help bar.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// State returns the last observed game state.
func (m GameModel) State() core.GameState {
	return m.state
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Run plays a local hot-seat game until the user quits.
func Run(game *via.Game, store *storage.Store, cfg core.RuntimeConfig, logger *log.Logger) error {
	bell := NewBell(os.Stderr, logger)
	defer bell.Close()
	game.SetSound(bell)
	game.SetLogger(logger)

	model := NewGameModel(game, store, cfg, logger)
	model.keys.Back.SetEnabled(false)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
