package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via"
	"github.com/vovakirdan/via/internal/storage"
)

var testRC = core.RuntimeConfig{ScreenW: 100, ScreenH: 40, Seed: 42}

func press(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestMenuItems(t *testing.T) {
	tests := []struct {
		name   string
		online bool
		kinds  []MenuItemKind
	}{
		{"offline", false, []MenuItemKind{MenuLocal, MenuHistory}},
		{"online", true, []MenuItemKind{MenuLocal, MenuOnline, MenuHistory}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMenuModel(testRC, tt.online)
			if len(m.items) != len(tt.kinds) {
				t.Fatalf("got %d items, want %d", len(m.items), len(tt.kinds))
			}
			for i, k := range tt.kinds {
				if m.items[i].Kind != k {
					t.Errorf("item %d kind = %v, want %v", i, m.items[i].Kind, k)
				}
			}
			if m.items[0].GameID != via.IDTurns {
				t.Errorf("first game = %q, want %q", m.items[0].GameID, via.IDTurns)
			}
		})
	}
}

func TestMenuSelect(t *testing.T) {
	m := press(NewMenuModel(testRC, true),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	).(MenuModel)

	sel := m.Selected()
	if sel == nil || sel.Kind != MenuOnline {
		t.Fatalf("selected = %+v, want online", sel)
	}
	if m.IsQuitting() {
		t.Error("selecting quit the menu")
	}
}

func TestMenuResize(t *testing.T) {
	m := press(NewMenuModel(testRC, false), tea.WindowSizeMsg{Width: 60, Height: 20}).(MenuModel)
	if cfg := m.Config(); cfg.ScreenW != 60 || cfg.ScreenH != 20 {
		t.Errorf("config = %+v", cfg)
	}
	if !strings.Contains(m.View(), "V I A") {
		t.Error("title missing")
	}
}

func TestSessionMenuFlow(t *testing.T) {
	store, err := storage.Open(t.TempDir() + "/via.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	m := NewSessionModel(SessionOptions{Store: store, Config: testRC, Username: "alice"})

	// offline menu: hot seat, history
	s := press(m, tea.KeyMsg{Type: tea.KeyEnter}).(SessionModel)
	if s.screen != screenGame || s.game == nil {
		t.Fatalf("screen = %v, want game", s.screen)
	}
	if names := s.game.game.Names(); names[0] != "alice" {
		t.Errorf("names = %v", names)
	}

	s = press(s, tea.KeyMsg{Type: tea.KeyEsc}).(SessionModel)
	if s.screen != screenMenu {
		t.Fatalf("esc in game: screen = %v, want menu", s.screen)
	}

	s = press(s, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}).(SessionModel)
	if s.screen != screenHistory {
		t.Fatalf("screen = %v, want history", s.screen)
	}
	if !strings.Contains(s.View(), "MATCH HISTORY") {
		t.Error("history view missing title")
	}

	s = press(s, tea.KeyMsg{Type: tea.KeyEsc}).(SessionModel)
	if s.screen != screenMenu {
		t.Fatalf("esc in history: screen = %v, want menu", s.screen)
	}

	// stray ticks outside a game are dropped
	s = press(s, TickMsg{}).(SessionModel)
	if s.screen != screenMenu {
		t.Errorf("tick moved the session to %v", s.screen)
	}
}
