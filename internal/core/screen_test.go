package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != blank {
				t.Fatalf("new screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}
}

func TestScreenSetGetOutOfBounds(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorRed)
	if got := s.GetCell(5, 5); got.Ch != 'X' || got.Color != ColorRed {
		t.Errorf("GetCell(5, 5) = %+v, expected red X", got)
	}

	tests := []struct {
		name string
		x, y int
	}{
		{"left", -1, 0},
		{"right", 10, 0},
		{"above", 0, -1},
		{"below", 0, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s.Set(tc.x, tc.y, 'A')
			if s.Get(tc.x, tc.y) != ' ' {
				t.Errorf("out of bounds Get(%d, %d) should return space", tc.x, tc.y)
			}
		})
	}
}

func TestScreenDrawTextClipped(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextColored(18, 0, "Hello", ColorBlue)

	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("text should be clipped at right boundary")
	}
	if s.GetCell(19, 0).Color != ColorBlue {
		t.Error("clipped text should keep its color")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawBox(NewRect(1, 1, 5, 4), ColorGray)

	corners := map[[2]int]rune{
		{1, 1}: '┌',
		{5, 1}: '┐',
		{1, 4}: '└',
		{5, 4}: '┘',
	}
	for pos, want := range corners {
		if got := s.Get(pos[0], pos[1]); got != want {
			t.Errorf("corner at %v = %q, expected %q", pos, got, want)
		}
	}
	if s.Get(3, 2) != ' ' {
		t.Error("box interior should stay blank")
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawText(0, 1, "BBBBB")
	s.DrawText(0, 2, "CCCCC")

	if got, want := s.String(), "AAAAA\nBBBBB\nCCCCC"; got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
}

func TestScreenResizeClears(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawText(0, 0, "Hello")
	s.Resize(8, 4)

	if s.Width() != 8 || s.Height() != 4 {
		t.Fatalf("after resize, dimensions should be 8x4, got %dx%d", s.Width(), s.Height())
	}
	if strings.TrimSpace(s.Row(0)) != "" {
		t.Errorf("resize should clear the buffer, row 0 = %q", s.Row(0))
	}
	if got := s.Row(-1); got != "        " {
		t.Errorf("out of bounds row should be spaces, got %q", got)
	}
}

func TestPlayerIDOther(t *testing.T) {
	tests := []struct {
		in, want PlayerID
	}{
		{Player1, Player2},
		{Player2, Player1},
		{NoPlayer, NoPlayer},
	}
	for _, tc := range tests {
		if got := tc.in.Other(); got != tc.want {
			t.Errorf("%v.Other() = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestInputSnapshotClear(t *testing.T) {
	var in InputSnapshot
	if !in.Empty() {
		t.Fatal("zero snapshot should be empty")
	}
	in.Click(Player1, 3)
	in.Shuffle(Player2)
	in.NewGame = true
	if in.Empty() {
		t.Fatal("snapshot with events should not be empty")
	}
	in.Clear()
	if !in.Empty() {
		t.Error("Clear() should leave an empty snapshot")
	}
}
