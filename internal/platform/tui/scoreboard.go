package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/via/internal/storage"
)

// Scoreboard layout constants
const (
	maxMatches = 100 // Max matches to load
	maxPlayers = 50  // Max leaderboard rows
)

// HistoryStore is the read side of match storage the scoreboard needs.
type HistoryStore interface {
	RecentMatches(limit int) ([]storage.MatchRecord, error)
	Leaderboard(limit int) ([]storage.PlayerRecord, error)
}

// ScoreboardTab selects what the scoreboard lists.
type ScoreboardTab int

const (
	TabRecent ScoreboardTab = iota
	TabLeaderboard
)

func (t ScoreboardTab) String() string {
	if t == TabLeaderboard {
		return "Leaderboard"
	}
	return "Recent matches"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "switch list"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel shows finished matches and the players with the most wins.
type ScoreboardModel struct {
	store     HistoryStore
	tab       ScoreboardTab
	matches   []storage.MatchRecord
	players   []storage.PlayerRecord
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a new scoreboard model. store may be nil.
func NewScoreboardModel(store HistoryStore, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:  store,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.load()
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

func (m *ScoreboardModel) load() {
	m.matches, m.players, m.loadErr = nil, nil, nil
	if m.store == nil {
		return
	}
	if m.matches, m.loadErr = m.store.RecentMatches(maxMatches); m.loadErr != nil {
		return
	}
	m.players, m.loadErr = m.store.Leaderboard(maxPlayers)
}

func (m *ScoreboardModel) columns() []table.Column {
	if m.tab == TabLeaderboard {
		return []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: 20},
			{Title: "Wins", Width: 6},
			{Title: "Losses", Width: 8},
			{Title: "Played", Width: 8},
		}
	}

	cols := []table.Column{
		{Title: "Date", Width: 14},
		{Title: "Mode", Width: 9},
		{Title: "Players", Width: 24},
		{Title: "Winner", Width: 12},
		{Title: "End", Width: 11},
	}
	// give spare width to the players column
	used := 0
	for _, c := range cols {
		used += c.Width + 2
	}
	if spare := m.width - 6 - used; spare > 0 {
		cols[2].Width += min(spare, 16)
	}
	return cols
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table from the loaded data.
func (m *ScoreboardModel) updateTableRows() {
	var rows []table.Row
	if m.tab == TabLeaderboard {
		rows = make([]table.Row, len(m.players))
		for i, p := range m.players {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				p.Name,
				fmt.Sprintf("%d", p.Wins),
				fmt.Sprintf("%d", p.Losses),
				fmt.Sprintf("%d", p.Played),
			}
		}
	} else {
		rows = make([]table.Row, len(m.matches))
		for i, r := range m.matches {
			winner := r.Winner
			if winner == "" {
				winner = "-"
			}
			rows[i] = table.Row{
				r.CreatedAt.Format("Jan 02 15:04"),
				r.Mode,
				r.Player1 + " vs " + r.Player2,
				winner,
				r.EndReason,
			}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			m.tab = 1 - m.tab
			// rows must be cleared before the column count changes
			m.table.SetRows(nil)
			m.table.SetColumns(m.columns())
			m.updateTableRows()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.MarginBottom(1).Render(centerText("MATCH HISTORY - "+strings.ToUpper(m.tab.String()), m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return emptyStyle.Render("No match database.")
	case m.loadErr != nil:
		return errorStyle.Padding(2, 4).Render("Cannot load history:\n" + m.loadErr.Error())
	case m.tab == TabRecent && len(m.matches) == 0,
		m.tab == TabLeaderboard && len(m.players) == 0:
		return emptyStyle.Render("No matches recorded yet.\nFinish a game to start the record!")
	}
	return m.table.View()
}

// Tab returns the list shown.
func (m ScoreboardModel) Tab() ScoreboardTab {
	return m.tab
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}
