package netplay

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/multiplayer"
)

func TestCommandCodec(t *testing.T) {
	tests := []engine.Command{
		engine.SwapTiles{A: 0, B: 8},
		engine.SwapTiles{A: 12, B: 13},
		engine.ShuffleTiles{},
		engine.ScoreIncrease{Type: engine.Purple, Amount: 6},
		engine.GameOver{Winner: 0},
		engine.GameOver{Winner: 1},
	}
	for _, cmd := range tests {
		t.Run(cmd.String(), func(t *testing.T) {
			m, err := EncodeCommand(cmd)
			if err != nil {
				t.Fatalf("EncodeCommand() error: %v", err)
			}
			// through JSON so omitted zero fields are exercised
			raw, err := json.Marshal(m)
			if err != nil {
				t.Fatal(err)
			}
			var back Message
			if err := json.Unmarshal(raw, &back); err != nil {
				t.Fatal(err)
			}
			got, err := DecodeCommand(back)
			if err != nil {
				t.Fatalf("DecodeCommand() error: %v", err)
			}
			if got != cmd {
				t.Errorf("got %v, want %v", got, cmd)
			}
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	if _, err := DecodeCommand(Message{Type: TypeScore, Tile: "Empty", Amount: 3}); err == nil {
		t.Error("score for Empty accepted")
	}
	if _, err := DecodeCommand(Message{Type: "teleport"}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("err = %v, want ErrUnknownMessage", err)
	}
}

func TestDecodeRequest(t *testing.T) {
	const id = multiplayer.SessionID("s1")

	tests := []struct {
		name string
		in   Message
		want multiplayer.CoordinatorMessage
	}{
		{"host default", Message{Type: TypeHost}, multiplayer.CreateLobbyMsg{SessionID: id, Mode: engine.ModeTurns}},
		{"host realtime", Message{Type: TypeHost, Mode: "realtime"}, multiplayer.CreateLobbyMsg{SessionID: id, Mode: engine.ModeRealtime}},
		{"join", Message{Type: TypeJoin, Code: "ABC123"}, multiplayer.JoinLobbyMsg{SessionID: id, Code: "ABC123"}},
		{"leave", Message{Type: TypeLeave}, multiplayer.LeaveMsg{SessionID: id}},
		{"random", Message{Type: TypeRandom, Seat: 1, Batch: 4}, multiplayer.RandomRequestMsg{SessionID: id, Seat: 1, Batch: 4}},
		{"swap", Message{Type: TypeSwap, A: 3, B: 4}, multiplayer.CommandMsg{SessionID: id, Command: engine.SwapTiles{A: 3, B: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest(id, tt.in)
			if err != nil {
				t.Fatalf("DecodeRequest() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	if _, err := DecodeRequest(id, Message{Type: TypeHost, Mode: "chess"}); err == nil {
		t.Error("unknown mode accepted")
	}
	// server to client types are not requests
	if _, err := DecodeRequest(id, Message{Type: TypeMatchStarted}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("err = %v, want ErrUnknownMessage", err)
	}
}

func TestEventCodec(t *testing.T) {
	started := multiplayer.MatchStartedEvent{
		MatchID: "m1",
		Seat:    1,
		First:   0,
		Seed:    -7,
		Mode:    engine.ModeRealtime,
		Rows:    8,
		Cols:    8,
		Names:   [2]string{"alice", "bob"},
	}
	m, err := EncodeEvent(started)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeEvent(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != started {
		t.Errorf("started: got %+v, want %+v", got, started)
	}

	cmd := multiplayer.CommandEvent{MatchID: "m1", Seat: 0, Command: engine.ScoreIncrease{Type: engine.Red, Amount: 9}}
	m, err = EncodeEvent(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := DecodeEvent(m); err != nil || got != cmd {
		t.Errorf("command: got %+v, %v", got, err)
	}

	ended := multiplayer.MatchEndedEvent{MatchID: "m1", Reason: multiplayer.MatchEndReasonLeft, Winner: multiplayer.NoSeat}
	m, err = EncodeEvent(ended)
	if err != nil {
		t.Fatal(err)
	}
	if m.Reason != "left" {
		t.Errorf("reason key = %q", m.Reason)
	}
	if got, err := DecodeEvent(m); err != nil || got != ended {
		t.Errorf("ended: got %+v, %v", got, err)
	}

	if _, err := DecodeEvent(Message{Type: TypeCommand, Match: "m1"}); err == nil {
		t.Error("command without payload accepted")
	}
}
