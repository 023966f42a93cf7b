package engine

import "testing"

func TestScoreTrackerLocksAtGoal(t *testing.T) {
	s := NewScoreTracker(DefaultScoreRules())

	for i := range 9 {
		if s.Add(Red, 1, 13) {
			t.Fatalf("call %d: a single locked bar must not win", i+1)
		}
	}
	if got := s.Value(Red); got != 100 {
		t.Errorf("Value(Red) = %d, expected 100", got)
	}
	if !s.Locked(Red) || s.Owner(Red) != 1 {
		t.Errorf("Red should be locked for player 1, owner = %d", s.Owner(Red))
	}
}

func TestScoreTrackerWinsOnFourthLock(t *testing.T) {
	s := NewScoreTracker(DefaultScoreRules())
	s.SetBar(Blue, 100)
	s.SetBar(Yellow, 100)
	s.SetBar(Green, 100)

	for range 7 {
		if s.Add(Red, 1, 13) {
			t.Fatal("win reported before the fourth bar locked")
		}
	}
	if !s.Add(Red, 1, 13) {
		t.Fatal("locking the fourth bar should report a win")
	}
	if s.Winner() != 1 {
		t.Errorf("Winner() = %d, expected 1", s.Winner())
	}
	if s.Add(Black, 1, 13) {
		t.Error("win must be reported only by the call that caused it")
	}
}

func TestScoreTrackerPlayerDirection(t *testing.T) {
	s := NewScoreTracker(DefaultScoreRules())
	s.Add(Green, 0, 12)
	s.Add(Purple, 1, 12)

	if got := s.Value(Green); got != -12 {
		t.Errorf("player 0 should push negative, got %d", got)
	}
	if got := s.Value(Purple); got != 12 {
		t.Errorf("player 1 should push positive, got %d", got)
	}

	s.Add(Green, 0, 500)
	if got := s.Value(Green); got != -100 {
		t.Errorf("bar should clamp at -100, got %d", got)
	}
	if s.Owner(Green) != 0 || s.LockedCount(0) != 1 {
		t.Error("Green should be locked for player 0")
	}
}

func TestScoreTrackerLockedBarSpill(t *testing.T) {
	tests := []struct {
		name      string
		lockedFor int
		actor     int
		amount    int
		wantOther int // value of every unlocked bar afterwards
	}{
		{"own lock spills toward the actor", 1, 1, 20, 5},
		{"own lock spills toward player 0", 0, 0, 20, -5},
		// a hit on the opponent's locked bar helps the opponent
		{"opponent lock spills inverted", 0, 1, 20, -5},
		{"opponent lock spills inverted for player 0", 1, 0, 20, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScoreTracker(DefaultScoreRules())
			lock := 100
			if tc.lockedFor == 0 {
				lock = -100
			}
			s.SetBar(Red, lock)
			s.SetBar(Black, -100)
			s.SetBar(Purple, 100)

			s.Add(Red, tc.actor, tc.amount)

			if got := s.Value(Red); got != lock {
				t.Errorf("locked bar moved to %d", got)
			}
			if s.Value(Black) != -100 || s.Value(Purple) != 100 {
				t.Error("other locked bars must not receive spill")
			}
			for _, tt := range []TileType{Blue, Yellow, Green} {
				if got := s.Value(tt); got != tc.wantOther {
					t.Errorf("Value(%v) = %d, expected %d", tt, got, tc.wantOther)
				}
			}
		})
	}
}

func TestScoreTrackerSpillCanLock(t *testing.T) {
	s := NewScoreTracker(DefaultScoreRules())
	s.SetBar(Red, 100)
	s.SetBar(Blue, 98)
	s.Add(Red, 1, 40)
	if s.Value(Blue) != 100 || s.Owner(Blue) != 1 {
		t.Errorf("spill should lock Blue, value = %d", s.Value(Blue))
	}
}

func TestGroupPoints(t *testing.T) {
	r := DefaultScoreRules()
	tests := []struct {
		tiles, want int
	}{
		{3, 12},
		{4, 18},
		{5, 24},
		{7, 36},
	}
	for _, tc := range tests {
		if got := r.GroupPoints(tc.tiles); got != tc.want {
			t.Errorf("GroupPoints(%d) = %d, expected %d", tc.tiles, got, tc.want)
		}
	}
}

func TestScoreTrackerIgnoresEmpty(t *testing.T) {
	s := NewScoreTracker(DefaultScoreRules())
	if s.Add(Empty, 1, 50) {
		t.Error("Empty should never score")
	}
	for _, v := range s.Bars() {
		if v != 0 {
			t.Fatalf("bars changed after scoring Empty: %v", s.Bars())
		}
	}
}
