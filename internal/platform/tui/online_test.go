package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/via/internal/multiplayer"
)

func newTestCoordinator(t *testing.T) *multiplayer.Coordinator {
	t.Helper()
	c := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), multiplayer.NewSessionRegistry())
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

func newTestOnline(t *testing.T, coord *multiplayer.Coordinator, name string) (OnlineModel, *multiplayer.LocalConn) {
	t.Helper()
	conn := multiplayer.Connect(coord, name)
	t.Cleanup(func() { conn.Close() })
	return NewOnlineModel(conn, multiplayer.NewRouter(conn), testRC.ScreenW, testRC.ScreenH, OnlineOptions{}), conn
}

// next waits for one coordinator event and feeds it to the model.
func next(t *testing.T, m OnlineModel) OnlineModel {
	t.Helper()
	msgs := make(chan tea.Msg, 1)
	wait := m.waitForEvent()
	go func() { msgs <- wait() }()

	select {
	case msg := <-msgs:
		updated, _ := m.Update(msg)
		return updated.(OnlineModel)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
	}
	return m
}

func typeCode(m OnlineModel, code string) OnlineModel {
	for _, r := range strings.ToLower(code) {
		m = press(m, runeKey(r)).(OnlineModel)
	}
	return press(m, tea.KeyMsg{Type: tea.KeyEnter}).(OnlineModel)
}

func TestOnlineMatchFlow(t *testing.T) {
	coord := newTestCoordinator(t)
	host, _ := newTestOnline(t, coord, "alice")
	guest, _ := newTestOnline(t, coord, "bob")

	host = press(host, runeKey('h')).(OnlineModel)
	host = next(t, host)
	if host.State() != OnlineStateHostWaiting || len(host.LobbyCode()) != codeLen {
		t.Fatalf("host state = %v, code = %q", host.State(), host.LobbyCode())
	}
	if !strings.Contains(host.View(), host.LobbyCode()) {
		t.Error("lobby code not shown")
	}

	guest = press(guest, runeKey('j')).(OnlineModel)
	if guest.State() != OnlineStateJoinEnterCode {
		t.Fatalf("guest state = %v, want code entry", guest.State())
	}
	guest = typeCode(guest, host.LobbyCode())
	if guest.State() != OnlineStateJoinWaiting {
		t.Fatalf("guest state = %v, want waiting", guest.State())
	}

	for guest.State() != OnlineStateInMatch {
		guest = next(t, guest)
	}
	for host.State() != OnlineStateInMatch {
		host = next(t, host)
	}

	if names := host.game.game.Names(); names != [2]string{"alice", "bob"} {
		t.Errorf("host names = %v", names)
	}
	if names := guest.game.game.Names(); names != [2]string{"bob", "alice"} {
		t.Errorf("guest names = %v", names)
	}
	if host.game.game.Snapshot().Boards[1] == nil {
		t.Error("host board not dealt")
	}

	// the host walks away: the guest wins by forfeit
	host = press(host, tea.KeyMsg{Type: tea.KeyEsc}).(OnlineModel)
	if host.State() != OnlineStateChooseMode || host.game != nil {
		t.Fatalf("host state = %v after leaving", host.State())
	}

	guest = next(t, guest)
	if guest.State() != OnlineStateMatchEnded {
		t.Fatalf("guest state = %v, want ended", guest.State())
	}
	if guest.ended.Reason != multiplayer.MatchEndReasonLeft || guest.ended.Winner != 1 {
		t.Errorf("ended = %+v", guest.ended)
	}
	if !strings.Contains(guest.endText(), "You win") {
		t.Errorf("end text = %q", guest.endText())
	}
	if st := guest.game.game.State(); !st.GameOver {
		t.Error("guest board not finished")
	}

	// the stale end event is ignored by the host
	host = next(t, host)
	if host.State() != OnlineStateChooseMode {
		t.Errorf("host state = %v, want chooser", host.State())
	}

	guest = press(guest, tea.KeyMsg{Type: tea.KeyEnter}).(OnlineModel)
	if guest.State() != OnlineStateChooseMode {
		t.Errorf("guest state = %v, want chooser", guest.State())
	}
}

func TestOnlineJoinUnknownLobby(t *testing.T) {
	coord := newTestCoordinator(t)
	m, _ := newTestOnline(t, coord, "alice")

	m = m.Join("zzzzzz")
	if m.State() != OnlineStateJoinWaiting {
		t.Fatalf("state = %v, want waiting", m.State())
	}
	m = next(t, m)
	if m.State() != OnlineStateJoinEnterCode {
		t.Errorf("state = %v, want code entry", m.State())
	}
	if !strings.Contains(m.View(), "Lobby not found") {
		t.Error("error not shown")
	}
}

func TestOnlineDisconnect(t *testing.T) {
	coord := newTestCoordinator(t)
	m, conn := newTestOnline(t, coord, "alice")

	conn.Close()
	m = next(t, m)
	if m.State() != OnlineStateDisconnected {
		t.Fatalf("state = %v, want disconnected", m.State())
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc}).(OnlineModel)
	if !m.BackToMenu() {
		t.Error("esc did not ask for the menu")
	}
	if m = m.ClearBack(); m.BackToMenu() || m.State() != OnlineStateDisconnected {
		t.Errorf("after ClearBack: back = %v, state = %v", m.BackToMenu(), m.State())
	}
}

func TestOnlineChooserBack(t *testing.T) {
	coord := newTestCoordinator(t)

	m, _ := newTestOnline(t, coord, "alice")
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc}).(OnlineModel)
	if !m.BackToMenu() || m.IsQuitting() {
		t.Errorf("menu session: back = %v, quit = %v", m.BackToMenu(), m.IsQuitting())
	}

	standalone, _ := newTestOnline(t, coord, "bob")
	standalone.opts.Standalone = true
	standalone = press(standalone, tea.KeyMsg{Type: tea.KeyEsc}).(OnlineModel)
	if !standalone.IsQuitting() {
		t.Error("standalone esc did not quit")
	}
}
