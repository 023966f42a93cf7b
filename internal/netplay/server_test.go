package netplay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
	"github.com/vovakirdan/via/internal/storage"
)

type fakeStore struct {
	records []storage.MatchRecord
}

func (f *fakeStore) RecentMatches(limit int) ([]storage.MatchRecord, error) {
	if limit > 0 && limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeStore) MatchByID(id string) (*storage.MatchRecord, error) {
	for i := range f.records {
		if f.records[i].MatchID == id {
			return &f.records[i], nil
		}
	}
	return nil, nil
}

func newTestServer(t *testing.T, store MatchStore) (*httptest.Server, *multiplayer.Coordinator) {
	t.Helper()
	coord := multiplayer.NewCoordinator(multiplayer.DefaultCoordinatorConfig(), multiplayer.NewSessionRegistry())
	coord.Start()
	ts := httptest.NewServer(NewServer(coord, store, nil).Handler())
	t.Cleanup(func() {
		ts.Close()
		coord.Stop()
	})
	return ts, coord
}

func dial(t *testing.T, ts *httptest.Server, name string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/play", name, nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func expect[T multiplayer.SessionEvent](t *testing.T, c *Client) T {
	t.Helper()
	select {
	case evt, ok := <-c.Events():
		if !ok {
			t.Fatalf("connection closed: %v", c.Err())
		}
		v, ok := evt.(T)
		if !ok {
			var zero T
			t.Fatalf("got %T %+v, want %T", evt, evt, zero)
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestRelayMatch(t *testing.T) {
	ts, coord := newTestServer(t, nil)
	alice, bob := dial(t, ts, "alice"), dial(t, ts, "  bob  ")

	alice.Host(engine.ModeTurns)
	created := expect[multiplayer.LobbyCreatedEvent](t, alice)
	bob.Join(strings.ToLower(created.Code))

	if j := expect[multiplayer.LobbyJoinedEvent](t, alice); j.Opponent != "bob" {
		t.Errorf("host sees opponent %q", j.Opponent)
	}
	expect[multiplayer.LobbyJoinedEvent](t, bob)
	sa := expect[multiplayer.MatchStartedEvent](t, alice)
	sb := expect[multiplayer.MatchStartedEvent](t, bob)
	if sa.Seed != sb.Seed || sa.Seat != 0 || sb.Seat != 1 || sb.Names != [2]string{"alice", "bob"} {
		t.Fatalf("start events: %+v / %+v", sa, sb)
	}

	alice.SendCommand(engine.SwapTiles{A: 0, B: 1})
	if evt := expect[multiplayer.CommandEvent](t, bob); evt.Command != (engine.SwapTiles{A: 0, B: 1}) || evt.Seat != 0 {
		t.Errorf("relayed %+v", evt)
	}

	bob.RequestRandom(1, 0)
	fill := expect[multiplayer.RandomFillEvent](t, bob)
	want := multiplayer.RandomBatch(sb.Seed, 1, 0, len(fill.Values))
	if len(fill.Values) == 0 || fill.Seat != 1 {
		t.Fatalf("fill = %+v", fill)
	}
	for i := range want {
		if fill.Values[i] != want[i] {
			t.Fatalf("fill differs at %d", i)
		}
	}

	alice.SendCommand(engine.GameOver{Winner: 0})
	expect[multiplayer.CommandEvent](t, bob)
	for _, c := range []*Client{alice, bob} {
		end := expect[multiplayer.MatchEndedEvent](t, c)
		if end.Reason != multiplayer.MatchEndReasonCompleted || end.Winner != 0 {
			t.Errorf("end = %+v", end)
		}
	}
	if coord.MatchCount() != 0 {
		t.Error("match still tracked")
	}
}

func TestClientDisconnectForfeits(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	alice, bob := dial(t, ts, "alice"), dial(t, ts, "bob")

	alice.Host(engine.ModeRealtime)
	bob.Join(expect[multiplayer.LobbyCreatedEvent](t, alice).Code)
	expect[multiplayer.LobbyJoinedEvent](t, alice)
	expect[multiplayer.MatchStartedEvent](t, alice)

	_ = bob.Close()
	end := expect[multiplayer.MatchEndedEvent](t, alice)
	if end.Reason != multiplayer.MatchEndReasonDisconnect || end.Winner != 0 {
		t.Errorf("end = %+v", end)
	}
}

func TestBadMessageReportsError(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	alice := dial(t, ts, "alice")

	alice.send(Message{Type: "teleport"})
	expect[multiplayer.LobbyErrorEvent](t, alice)

	// the connection stays usable
	alice.Host(engine.ModeTurns)
	expect[multiplayer.LobbyCreatedEvent](t, alice)
}

func TestHTTPEndpoints(t *testing.T) {
	store := &fakeStore{records: []storage.MatchRecord{
		{MatchID: "m2", Mode: "turns", Player1: "alice", Player2: "bob", Winner: "bob", EndReason: "completed"},
		{MatchID: "m1", Mode: "realtime", Player1: "carol", Player2: "bob", EndReason: "disconnect"},
	}}
	ts, _ := newTestServer(t, store)

	get := func(path string, v any) int {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if v != nil {
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				t.Fatalf("%s: %v", path, err)
			}
		}
		return resp.StatusCode
	}

	var health map[string]any
	if code := get("/healthz", &health); code != http.StatusOK || health["ok"] != true {
		t.Errorf("healthz = %d %v", code, health)
	}

	var list []storage.MatchRecord
	if code := get("/matches?limit=1", &list); code != http.StatusOK || len(list) != 1 || list[0].MatchID != "m2" {
		t.Errorf("matches = %d %+v", code, list)
	}

	var one storage.MatchRecord
	if code := get("/matches/m1", &one); code != http.StatusOK || one.Player1 != "carol" || one.Winner != "" {
		t.Errorf("match = %d %+v", code, one)
	}

	if code := get("/matches/nope", nil); code != http.StatusNotFound {
		t.Errorf("missing match status = %d", code)
	}
}

func TestPlayerName(t *testing.T) {
	id := multiplayer.SessionID("abcdef-1234")
	tests := []struct {
		raw, want string
	}{
		{"alice", "alice"},
		{"  bob ", "bob"},
		{"", "guest-abcd"},
		{strings.Repeat("x", 40), strings.Repeat("x", maxNameLen)},
		{strings.Repeat("ж", 30), strings.Repeat("ж", maxNameLen)},
		{"a" + strings.Repeat("ü", 30), "a" + strings.Repeat("ü", maxNameLen-1)},
	}
	for _, tt := range tests {
		if got := playerName(tt.raw, id); got != tt.want {
			t.Errorf("playerName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if got := playerName(tt.raw, id); !utf8.ValidString(got) {
			t.Errorf("playerName(%q) = %q is not valid UTF-8", tt.raw, got)
		}
	}
}
