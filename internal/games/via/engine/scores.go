package engine

// ScoreRules are the tunables of the tug-of-war bars.
type ScoreRules struct {
	Goal              int // Bar magnitude at which it locks
	WinBars           int // Locked bars a player needs to win
	SpillPercent      int // Share of a hit on a locked bar passed to unlocked bars
	PointsPerTile     int
	BonusPerExtraTile int // Extra points for every tile past the third in a group
}

// DefaultScoreRules returns the standard rules.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{
		Goal:              100,
		WinBars:           4,
		SpillPercent:      25,
		PointsPerTile:     4,
		BonusPerExtraTile: 2,
	}
}

// GroupPoints returns the points a match group of n tiles is worth.
func (r ScoreRules) GroupPoints(n int) int {
	return r.PointsPerTile*n + r.BonusPerExtraTile*max(0, n-MinRun)
}

// ScoreTracker holds one bar per tile type. Player 0 pulls bars toward
// -Goal and player 1 toward +Goal; a bar at either end is locked for that
// player.
type ScoreTracker struct {
	rules ScoreRules
	bars  map[TileType]int
}

// NewScoreTracker creates a tracker with every bar at zero.
func NewScoreTracker(rules ScoreRules) *ScoreTracker {
	s := &ScoreTracker{rules: rules}
	s.Reset()
	return s
}

// Reset sets every bar back to zero.
func (s *ScoreTracker) Reset() {
	s.bars = make(map[TileType]int, NumTileTypes)
	for _, t := range TileTypes() {
		s.bars[t] = 0
	}
}

// Rules returns the rules the tracker was built with.
func (s *ScoreTracker) Rules() ScoreRules { return s.rules }

// Value returns the signed value of a bar.
func (s *ScoreTracker) Value(t TileType) int { return s.bars[t] }

// Locked reports whether a bar reached either end.
func (s *ScoreTracker) Locked(t TileType) bool {
	v := s.bars[t]
	return v >= s.rules.Goal || v <= -s.rules.Goal
}

// Owner returns the player a locked bar belongs to, or -1.
func (s *ScoreTracker) Owner(t TileType) int {
	switch v := s.bars[t]; {
	case v <= -s.rules.Goal:
		return 0
	case v >= s.rules.Goal:
		return 1
	default:
		return -1
	}
}

// LockedCount returns how many bars are locked for a player.
func (s *ScoreTracker) LockedCount(player int) int {
	n := 0
	for _, t := range TileTypes() {
		if s.Owner(t) == player {
			n++
		}
	}
	return n
}

// Winner returns the player holding at least WinBars locked bars, or -1.
func (s *ScoreTracker) Winner() int {
	for p := range 2 {
		if s.LockedCount(p) >= s.rules.WinBars {
			return p
		}
	}
	return -1
}

// Bars returns the bar values in TileTypes order.
func (s *ScoreTracker) Bars() []int {
	out := make([]int, 0, NumTileTypes)
	for _, t := range TileTypes() {
		out = append(out, s.bars[t])
	}
	return out
}

// SetBar overwrites one bar, clamped to the goal. Used to restore snapshots.
func (s *ScoreTracker) SetBar(t TileType, v int) {
	if !t.Colored() {
		return
	}
	s.bars[t] = clampBar(v, s.rules.Goal)
}

// Add scores amount points for player on bar t and reports whether this
// call made player the winner.
//
// Player 0 pushes bars negative, player 1 positive. A hit on a locked bar
// is not lost: SpillPercent of it goes to every unlocked bar, and when the
// bar is locked for the opponent the spill is inverted and helps the
// opponent instead.
func (s *ScoreTracker) Add(t TileType, player, amount int) bool {
	if !t.Colored() {
		return false
	}
	wasWinner := s.Winner() == player

	delta := amount
	if player == 0 {
		delta = -amount
	}

	if owner := s.Owner(t); owner >= 0 {
		spill := delta * s.rules.SpillPercent / 100
		if owner != player {
			spill = -spill
		}
		for _, other := range TileTypes() {
			if !s.Locked(other) {
				s.bars[other] = clampBar(s.bars[other]+spill, s.rules.Goal)
			}
		}
	} else {
		s.bars[t] = clampBar(s.bars[t]+delta, s.rules.Goal)
	}

	return !wasWinner && s.Winner() == player
}

func clampBar(v, goal int) int {
	return min(max(v, -goal), goal)
}
