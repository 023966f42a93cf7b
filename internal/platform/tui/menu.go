package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/registry"
)

// MenuItemKind says what a menu entry opens.
type MenuItemKind int

const (
	MenuLocal   MenuItemKind = iota // hot-seat game of a registered variant
	MenuOnline                      // lobby flow
	MenuHistory                     // match history
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Kind   MenuItemKind
	GameID string // for MenuLocal
	Title  string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	config   core.RuntimeConfig
	quitting bool
	selected *MenuItem // Set when user selects an entry
}

// NewMenuModel creates a new menu model. Online play is listed when the
// session has a connection to a coordinator.
func NewMenuModel(cfg core.RuntimeConfig, online bool) MenuModel {
	var items []MenuItem
	for _, g := range registry.List() {
		if g.OnlineOnly {
			continue
		}
		items = append(items, MenuItem{Kind: MenuLocal, GameID: g.ID, Title: g.Title + " (hot seat)"})
	}
	if online {
		items = append(items, MenuItem{Kind: MenuOnline, Title: "Play online"})
	}
	items = append(items, MenuItem{Kind: MenuHistory, Title: "Match history"})

	return MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("  V I A  "), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Two boards, six bars, one winner", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	rules := via.Settings().Scoring
	b.WriteString("\n")
	b.WriteString(centerText(fmt.Sprintf("Push a bar to %d to lock it; lock %d bars to win.", rules.Goal, rules.WinBars), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(helpStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
