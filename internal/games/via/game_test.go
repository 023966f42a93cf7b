package via

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/registry"
)

var testRC = core.RuntimeConfig{ScreenW: 100, ScreenH: 30, Seed: 42}

func findSwap(b *engine.Board) (int, int, bool) {
	for i := range b.Len() {
		for _, j := range b.SwapCandidates(i) {
			if j == engine.NoNeighbor {
				continue
			}
			c := b.Clone()
			c.Swap(i, j)
			if engine.HasMatches(c) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func TestRegisteredVariants(t *testing.T) {
	tests := []struct {
		id         string
		onlineOnly bool
	}{
		{IDTurns, false},
		{IDRealtime, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			info, ok := registry.Info(tt.id)
			if !ok {
				t.Fatalf("%s not registered", tt.id)
			}
			if info.OnlineOnly != tt.onlineOnly {
				t.Errorf("OnlineOnly = %v, want %v", info.OnlineOnly, tt.onlineOnly)
			}
			g, err := registry.Create(tt.id)
			if err != nil {
				t.Fatal(err)
			}
			if g.ID() != tt.id {
				t.Errorf("ID() = %q, want %q", g.ID(), tt.id)
			}
		})
	}
}

func TestDeterministicReset(t *testing.T) {
	a, b := New(), New()
	a.Reset(testRC)
	b.Reset(testRC)
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatal("same seed produced different games")
	}

	c := New()
	rc := testRC
	rc.Seed++
	c.Reset(rc)
	if reflect.DeepEqual(a.Snapshot().Boards, c.Snapshot().Boards) {
		t.Error("different seeds produced identical boards")
	}
}

func TestInitialState(t *testing.T) {
	g := New()
	g.Reset(testRC)

	st := g.State()
	if st.GameOver || st.Active != core.Player1 {
		t.Fatalf("state = %+v, want P1 to move", st)
	}
	for i := range 2 {
		b := g.Session().Player(i).Board()
		if engine.HasMatches(b) {
			t.Errorf("player %d board starts with a match", i)
		}
		if b.IsDeadlocked() {
			t.Errorf("player %d board starts deadlocked", i)
		}
	}
}

func TestCellAtRoundTrip(t *testing.T) {
	g := New()
	g.Reset(testRC)
	l := g.layout()

	for p := range 2 {
		b := g.Session().Player(p).Board()
		r := l.Boards[p]
		for i := range b.Len() {
			row, col := b.RowCol(i)
			x := r.X + 1 + col*cellW + 1
			y := r.Y + 1 + row
			gotP, gotI, ok := g.CellAt(x, y)
			if !ok || gotP != core.PlayerID(p) || gotI != i {
				t.Fatalf("CellAt(%d,%d) = %v,%d,%v, want %v,%d,true", x, y, gotP, gotI, ok, core.PlayerID(p), i)
			}
		}
	}

	if _, _, ok := g.CellAt(0, 0); ok {
		t.Error("CellAt(0,0) hit a board")
	}
	if _, _, ok := g.CellAt(l.Bars.X+1, l.Bars.Y+1); ok {
		t.Error("CellAt on the bars hit a board")
	}
}

func TestMoveCursorClamps(t *testing.T) {
	g := New()
	g.Reset(testRC)
	g.SetCursor(core.Player1, 0)

	g.MoveCursor(core.Player1, core.ActionUp)
	g.MoveCursor(core.Player1, core.ActionLeft)
	if got := g.Cursor(core.Player1); got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}

	g.MoveCursor(core.Player1, core.ActionRight)
	g.MoveCursor(core.Player1, core.ActionDown)
	b := g.Session().Player(0).Board()
	if want := b.Index(1, 1); g.Cursor(core.Player1) != want {
		t.Errorf("cursor = %d, want %d", g.Cursor(core.Player1), want)
	}

	g.SetCursor(core.Player2, b.Len())
	if g.Cursor(core.Player2) == b.Len() {
		t.Error("SetCursor accepted an out of range cell")
	}
}

func TestNewGameAfterWin(t *testing.T) {
	g := New()
	g.Reset(testRC)
	g.Session().SetWinner(1)

	if st := g.State(); !st.GameOver || st.Winner != core.Player2 {
		t.Fatalf("state = %+v, want P2 winner", st)
	}
	res := g.Step(core.InputSnapshot{NewGame: true})
	if res.State.GameOver {
		t.Error("new game did not reset")
	}
}

func TestRender(t *testing.T) {
	g := New()
	g.Reset(testRC)
	scr := core.NewScreen(testRC.ScreenW, testRC.ScreenH)
	g.Render(scr)

	if !strings.Contains(scr.Row(0), "Via") {
		t.Errorf("title row = %q", scr.Row(0))
	}
	if !strings.Contains(scr.String(), "P1 to move") {
		t.Error("status line missing")
	}
}

func TestRenderTooSmall(t *testing.T) {
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 30, ScreenH: 10, Seed: 1})
	scr := core.NewScreen(30, 10)
	g.Render(scr)

	if !g.Snapshot().Paused {
		t.Error("small window not flagged")
	}
	if !strings.Contains(scr.String(), "too small") {
		t.Error("too small message missing")
	}

	g.Resize(testRC.ScreenW, testRC.ScreenH)
	if g.Snapshot().Paused {
		t.Error("resize did not clear the flag")
	}
}

func TestOnlineMirror(t *testing.T) {
	names := [2]string{"alice", "bob"}
	host := NewOnline(Match{Mode: engine.ModeTurns, Seat: 0, FirstSeat: 0, Seed: 9, Names: names})
	guest := NewOnline(Match{Mode: engine.ModeTurns, Seat: 1, FirstSeat: 0, Seed: 9, Names: names})
	host.Reset(testRC)
	guest.Reset(testRC)

	if host.names[0] != "alice" || guest.names[0] != "bob" {
		t.Fatalf("names = %v / %v", host.names, guest.names)
	}
	if guest.State().Active != core.Player2 {
		t.Fatalf("guest active = %v, want the remote player", guest.State().Active)
	}

	hs, gs := host.Snapshot(), guest.Snapshot()
	if !reflect.DeepEqual(hs.Boards[0], gs.Boards[1]) || !reflect.DeepEqual(hs.Boards[1], gs.Boards[0]) {
		t.Fatal("boards differ between peers")
	}

	a, b, ok := findSwap(host.Session().Player(0).Board())
	if !ok {
		t.Fatal("no move on a fresh board")
	}
	var in core.InputSnapshot
	in.Click(core.Player1, a)
	in.Click(core.Player1, b)
	host.Step(in)

	out := host.DrainOutbox()
	if len(out) == 0 {
		t.Fatal("local move produced no commands")
	}
	if _, ok := out[0].(engine.SwapTiles); !ok {
		t.Fatalf("first command = %v, want a swap", out[0])
	}
	for _, cmd := range out {
		if err := guest.ApplyRemote(cmd); err != nil {
			t.Fatalf("apply %v: %v", cmd, err)
		}
	}

	hs, gs = host.Snapshot(), guest.Snapshot()
	if !reflect.DeepEqual(hs.Boards[0], gs.Boards[1]) {
		t.Error("boards diverged after the move")
	}
	for i := range hs.Bars {
		if hs.Bars[i] != -gs.Bars[i] {
			t.Errorf("bar %d: host %d, guest %d", i, hs.Bars[i], gs.Bars[i])
		}
	}
	if guest.State().Active != core.Player1 {
		t.Errorf("guest active = %v, want local player", guest.State().Active)
	}
	if guest.Err() != nil {
		t.Errorf("guest error: %v", guest.Err())
	}
}

func TestOnlineIgnoresNewGame(t *testing.T) {
	g := NewOnline(Match{Mode: engine.ModeTurns, Seat: 0, Seed: 3})
	g.Reset(testRC)
	g.Session().SetWinner(0)

	g.Step(core.InputSnapshot{NewGame: true})
	if !g.State().GameOver {
		t.Error("online game restarted on its own")
	}
}
