package tui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting for the coordinator to seat us
	OnlineStateInMatch                          // In active match
	OnlineStateMatchEnded                       // Match has ended, board still shown
	OnlineStateDisconnected                     // Connection to the coordinator is gone
)

const (
	codeLen         = 6
	openingBatches  = 2
	defaultLowWater = 256
)

// connClosedMsg is sent once the event stream ends.
type connClosedMsg struct{}

// OnlineOptions configure an OnlineModel.
type OnlineOptions struct {
	RandomLowWater int                // refill threshold of the match random stream
	Sound          engine.SoundPlayer // optional
	Logger         *log.Logger        // optional
	Standalone     bool               // back in the first screen quits instead of returning to a menu
}

// OnlineModel handles the online flow: lobby, match and result. It reads
// one connection's events through a Router for its whole life, so a
// session keeps a single OnlineModel even when it goes back to a menu.
type OnlineModel struct {
	state  OnlineState
	width  int
	height int
	conn   multiplayer.Conn
	router *multiplayer.Router
	opts   OnlineOptions
	logger *log.Logger

	// Host state
	lobbyCode string
	hostMode  engine.Mode

	// Join state
	joinCodeInput string
	joinError     string

	// Match state
	matchID  multiplayer.MatchID
	seat     int
	opponent string
	feed     *multiplayer.RandomFeed
	game     *GameModel
	ended    multiplayer.MatchEndedEvent

	backToMenu bool
	quitting   bool
}

// NewOnlineModel creates an online model reading events from router.
func NewOnlineModel(conn multiplayer.Conn, router *multiplayer.Router, width, height int, opts OnlineOptions) OnlineModel {
	if opts.RandomLowWater <= 0 {
		opts.RandomLowWater = defaultLowWater
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return OnlineModel{
		state:  OnlineStateChooseMode,
		width:  width,
		height: height,
		conn:   conn,
		router: router,
		opts:   opts,
		logger: logger,
	}
}

// Init starts listening for coordinator events.
func (m OnlineModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for the next event. Exactly
// one is outstanding at any time so events are handled in order.
func (m OnlineModel) waitForEvent() tea.Cmd {
	events := m.router.Events()
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return connClosedMsg{}
		}
		return evt
	}
}

// Host asks the coordinator for a lobby.
func (m OnlineModel) Host(mode engine.Mode) OnlineModel {
	m.hostMode = mode
	m.joinError = ""
	m.conn.Host(mode)
	return m
}

// Join asks the coordinator to seat us in a lobby.
func (m OnlineModel) Join(code string) OnlineModel {
	m.joinCodeInput = strings.ToUpper(strings.TrimSpace(code))
	m.joinError = ""
	m.state = OnlineStateJoinWaiting
	m.conn.Join(m.joinCodeInput)
	return m
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.game != nil {
			return m.updateGame(msg)
		}
		return m, nil
	case tea.MouseMsg, TickMsg:
		if m.game != nil {
			return m.updateGame(msg)
		}
		// no game: let the tick chain stop
		return m, nil
	case connClosedMsg:
		m.state = OnlineStateDisconnected
		m.detach()
		return m, nil
	case multiplayer.SessionEvent:
		m = m.handleEvent(msg)
		return m, m.eventCmd(msg)
	}
	return m, nil
}

// eventCmd keeps listening and starts the step loop of a new match.
func (m OnlineModel) eventCmd(evt multiplayer.SessionEvent) tea.Cmd {
	if _, ok := evt.(multiplayer.MatchStartedEvent); ok && m.game != nil {
		return tea.Batch(m.game.Init(), m.waitForEvent())
	}
	return m.waitForEvent()
}

func (m OnlineModel) handleEvent(evt multiplayer.SessionEvent) OnlineModel {
	switch e := evt.(type) {
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = e.Code
		m.hostMode = e.Mode
		m.state = OnlineStateHostWaiting
	case multiplayer.LobbyJoinedEvent:
		m.opponent = e.Opponent
	case multiplayer.LobbyErrorEvent:
		m.joinError = e.Message
		switch m.state {
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
		case OnlineStateHostWaiting:
			m.state = OnlineStateChooseMode
		}
	case multiplayer.LobbyPlayerLeftEvent:
		// a lobby only reports this to its host, who keeps waiting
	case multiplayer.MatchStartedEvent:
		m = m.startMatch(e)
	case multiplayer.CommandEvent:
		if m.game != nil && e.MatchID == m.matchID {
			g := m.game.applyRemote(e)
			m.game = &g
		}
	case multiplayer.MatchEndedEvent:
		m = m.endMatch(e)
	}
	return m
}

func (m OnlineModel) startMatch(e multiplayer.MatchStartedEvent) OnlineModel {
	m.logger.Info("match started", "match", e.MatchID, "seat", e.Seat, "mode", e.Mode)

	feed := multiplayer.NewRandomFeed(m.conn, m.opts.RandomLowWater)
	m.router.Attach(e.MatchID, feed)
	feed.Start(openingBatches)

	game := via.NewOnline(via.Match{
		Mode:      e.Mode,
		Seat:      e.Seat,
		FirstSeat: e.First,
		Seed:      e.Seed,
		Source:    feed.Source(),
		Names:     e.Names,
		Rows:      e.Rows,
		Cols:      e.Cols,
	})
	game.SetSound(m.opts.Sound)
	game.SetLogger(m.logger)

	rc := core.RuntimeConfig{ScreenW: m.width, ScreenH: m.height, Seed: e.Seed}
	gm := newOnlineGameModel(game, m.conn, rc, m.logger)

	m.matchID = e.MatchID
	m.seat = e.Seat
	m.opponent = e.Names[1-e.Seat]
	m.feed = feed
	m.game = &gm
	m.ended = multiplayer.MatchEndedEvent{}
	m.state = OnlineStateInMatch
	return m
}

func (m OnlineModel) endMatch(e multiplayer.MatchEndedEvent) OnlineModel {
	if m.game == nil || e.MatchID != m.matchID {
		// the host gave up the lobby before a match started
		if e.Reason == multiplayer.MatchEndReasonHostLeft {
			m.joinError = "Host left the lobby"
			m.state = OnlineStateChooseMode
		}
		return m
	}
	m.logger.Info("match ended", "match", e.MatchID, "reason", e.Reason, "winner", e.Winner)

	// the coordinator's word is final; align the board if it disagrees
	if e.Reason != multiplayer.MatchEndReasonCompleted && e.Winner >= 0 {
		m.game.game.Session().SetWinner(m.local(e.Winner))
	}
	m.ended = e
	m.state = OnlineStateMatchEnded
	m.detach()
	return m
}

// local converts a seat to a local player index.
func (m OnlineModel) local(seat int) int {
	if seat == m.seat {
		return 0
	}
	return 1
}

// detach stops feeding the finished match.
func (m OnlineModel) detach() {
	if m.feed != nil {
		m.router.Attach("", nil)
	}
}

func (m OnlineModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	g := next.(GameModel)
	m.game = &g

	switch {
	case g.IsQuitting():
		m.leave()
		m.quitting = true
		return m, tea.Quit
	case g.BackToMenu():
		if m.state == OnlineStateInMatch {
			m.leave()
		}
		m.resetToChooser()
		return m, nil
	}
	return m, cmd
}

// leave gives up the current lobby or match.
func (m OnlineModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting, OnlineStateJoinWaiting, OnlineStateInMatch:
		m.conn.Leave()
	}
}

func (m *OnlineModel) resetToChooser() {
	m.detach()
	m.state = OnlineStateChooseMode
	m.game = nil
	m.feed = nil
	m.matchID = ""
	m.lobbyCode = ""
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostWaiting:
		return m.handleHostWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateJoinWaiting:
		return m.handleJoinWaitingKey(msg)
	case OnlineStateInMatch:
		return m.updateGame(msg)
	case OnlineStateMatchEnded:
		switch msg.String() {
		case "enter", "esc", "b":
			m.resetToChooser()
			return m, nil
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m.updateGame(msg)
	case OnlineStateDisconnected:
		switch msg.String() {
		case "esc", "b":
			if !m.opts.Standalone {
				m.backToMenu = true
				return m, nil
			}
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		return m.Host(engine.ModeTurns), nil
	case "r", "R", "2":
		return m.Host(engine.ModeRealtime), nil
	case "j", "J", "3":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
		return m, nil
	case "esc", "b":
		if m.opts.Standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) handleHostWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.conn.Leave()
		m.resetToChooser()
		return m, nil
	case "q":
		m.conn.Leave()
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m OnlineModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		m.state = OnlineStateChooseMode
		return m, nil
	case "enter":
		if m.joinCodeInput != "" {
			return m.Join(m.joinCodeInput), nil
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		// Accept alphanumeric input for code
		if len(key) == 1 && len(m.joinCodeInput) < codeLen {
			c := strings.ToUpper(key)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.joinCodeInput += c
			}
		}
	}
	return m, nil
}

func (m OnlineModel) handleJoinWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.conn.Leave()
		m.state = OnlineStateJoinEnterCode
		return m, nil
	}
	return m, nil
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.viewChooseMode()
	case OnlineStateHostWaiting:
		return m.viewHostWaiting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateJoinWaiting:
		return m.viewJoinWaiting()
	case OnlineStateInMatch:
		return m.game.View()
	case OnlineStateMatchEnded:
		return m.game.View() + "\n" + titleStyle.Render(m.endText()) + helpStyle.Render("  enter: continue  q: quit")
	case OnlineStateDisconnected:
		return m.viewDisconnected()
	}
	return ""
}

func (m OnlineModel) endText() string {
	e := m.ended
	switch {
	case e.Winner < 0:
		return fmt.Sprintf("Match over (%s).", e.Reason)
	case e.Winner == m.seat:
		return fmt.Sprintf("You win (%s).", e.Reason)
	default:
		return fmt.Sprintf("%s wins (%s).", m.opponent, e.Reason)
	}
}

func (m OnlineModel) viewChooseMode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("ONLINE VIA"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("[H] Host a turn-based game", m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[R] Host a real-time game", m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[J] Join a game", m.width))
	b.WriteString("\n")
	if m.joinError != "" {
		b.WriteString("\n")
		b.WriteString(centerText(errorStyle.Render(m.joinError), m.width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(centerText(helpStyle.Render("Esc: Back  |  Q: Quit"), m.width))

	return b.String()
}

func (m OnlineModel) viewHostWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("HOSTING "+strings.ToUpper(m.hostMode.String())+" GAME"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Share this code with your opponent:", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(codeStyle.Render(m.lobbyCode), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Waiting for player to join...", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render("Esc: Cancel  |  Q: Quit"), m.width))

	return b.String()
}

func (m OnlineModel) viewJoinEnterCode() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("JOIN GAME"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter the game code:", m.width))
	b.WriteString("\n\n")

	codeDisplay := m.joinCodeInput
	if len(codeDisplay) < codeLen {
		codeDisplay += "_" + strings.Repeat(" ", codeLen-1-len(m.joinCodeInput))
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
	b.WriteString("\n")

	if m.joinError != "" {
		b.WriteString("\n")
		b.WriteString(centerText(errorStyle.Render("Error: "+m.joinError), m.width))
	}

	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render("Enter: Connect  |  Esc: Back"), m.width))

	return b.String()
}

func (m OnlineModel) viewJoinWaiting() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("CONNECTING"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Joining game: %s", m.joinCodeInput), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Please wait...", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render("Esc: Cancel"), m.width))

	return b.String()
}

func (m OnlineModel) viewDisconnected() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(errorStyle.Render("CONNECTION LOST"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("The server closed the connection.", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render("Any key: Quit"), m.width))

	return b.String()
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

// ClearBack acknowledges a back request so the model can be shown again.
func (m OnlineModel) ClearBack() OnlineModel {
	m.backToMenu = false
	if m.state != OnlineStateDisconnected {
		m.state = OnlineStateChooseMode
	}
	return m
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// LobbyCode returns the lobby code.
func (m OnlineModel) LobbyCode() string {
	return m.lobbyCode
}

// RunOnline runs the online flow on a connection until the user quits.
// host and code pick the opening action; both empty shows the chooser.
func RunOnline(conn multiplayer.Conn, width, height int, opts OnlineOptions, host *engine.Mode, code string) error {
	opts.Standalone = true
	router := multiplayer.NewRouter(conn)
	m := NewOnlineModel(conn, router, width, height, opts)
	switch {
	case host != nil:
		m = m.Host(*host)
	case code != "":
		m = m.Join(code)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
