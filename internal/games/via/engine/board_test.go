package engine

import (
	"slices"
	"testing"
)

// stripes is a run-free 8-column layout without Red: row neighbors differ
// by one step of the palette and column neighbors by two.
func stripes(rows, cols int) []TileType {
	palette := []TileType{Blue, Yellow, Green, Black, Purple}
	out := make([]TileType, rows*cols)
	for r := range rows {
		for c := range cols {
			out[r*cols+c] = palette[(c+2*r)%len(palette)]
		}
	}
	return out
}

func testRand(seed int64) Rand {
	return SeatRand{Src: NewLocalSource(seed), Seat: 0}
}

// deadlocked has no equal tiles within two cells along any line.
var deadlocked = []TileType{
	Red, Blue, Yellow, Green,
	Black, Purple, Red, Blue,
	Yellow, Green, Black, Purple,
	Red, Blue, Yellow, Green,
}

func TestRegenerateHasNoMatches(t *testing.T) {
	sizes := []struct{ rows, cols int }{{8, 8}, {4, 4}, {5, 9}, {3, 3}}
	for _, size := range sizes {
		for seed := int64(1); seed <= 40; seed++ {
			b := NewBoard(size.rows, size.cols, testRand(seed))
			if groups := FindMatches(b); len(groups) != 0 {
				t.Fatalf("%dx%d seed %d: regenerated board has %d groups", size.rows, size.cols, seed, len(groups))
			}
			for i := range b.Len() {
				if b.At(i) == Empty {
					t.Fatalf("%dx%d seed %d: cell %d is empty", size.rows, size.cols, seed, i)
				}
			}
		}
	}
}

func TestBoundsReads(t *testing.T) {
	b := BoardFromTypes(8, 8, stripes(8, 8), testRand(1))

	tests := []struct {
		name     string
		row, col int
	}{
		{"above", -1, 0},
		{"below", 8, 0},
		{"left", 0, -1},
		{"right does not wrap into next row", 0, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Get(tc.row, tc.col); got != Empty {
				t.Errorf("Get(%d, %d) = %v, expected Empty", tc.row, tc.col, got)
			}
		})
	}

	if b.At(-1) != Empty || b.At(64) != Empty {
		t.Error("At() out of range should return Empty")
	}
	before := b.Types()
	b.Set(64, Red)
	b.Set(-5, Red)
	if !slices.Equal(before, b.Types()) {
		t.Error("out of range Set() should not change the board")
	}
}

func TestSwapCandidates(t *testing.T) {
	b := NewEmptyBoard(8, 8, testRand(1))

	tests := []struct {
		name  string
		index int
		want  [4]int
	}{
		{"top-left corner", 0, [4]int{NoNeighbor, 1, 8, NoNeighbor}},
		{"top-right corner", 7, [4]int{NoNeighbor, NoNeighbor, 15, 6}},
		{"bottom-right corner", 63, [4]int{55, NoNeighbor, NoNeighbor, 62}},
		{"interior", 10, [4]int{2, 11, 18, 9}},
		{"left edge", 8, [4]int{0, 9, 16, NoNeighbor}},
		{"out of range", 64, [4]int{NoNeighbor, NoNeighbor, NoNeighbor, NoNeighbor}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.SwapCandidates(tc.index); got != tc.want {
				t.Errorf("SwapCandidates(%d) = %v, expected %v", tc.index, got, tc.want)
			}
		})
	}

	if b.IsSwapCandidate(7, 8) {
		t.Error("end of a row must not neighbor the start of the next")
	}
}

func TestSwapTwiceRestores(t *testing.T) {
	b := NewBoard(6, 6, testRand(7))
	orig := b.Clone()

	for i := range b.Len() {
		for _, j := range b.SwapCandidates(i) {
			if j == NoNeighbor {
				continue
			}
			b.Swap(i, j)
			b.Swap(i, j)
			if !b.Equal(orig) {
				t.Fatalf("Swap(%d, %d) twice did not restore the board", i, j)
			}
		}
	}

	for i := range b.Len() {
		tile := b.Tile(i)
		row, col := b.RowCol(i)
		if tile.Row != row || tile.Col != col {
			t.Fatalf("tile %d has position (%d, %d), expected (%d, %d)", i, tile.Row, tile.Col, row, col)
		}
	}
}

func TestDropEmpties(t *testing.T) {
	b := BoardFromTypes(3, 3, []TileType{
		Red, Blue, Yellow,
		Green, Black, Purple,
		Blue, Red, Green,
	}, testRand(1))

	b.EmptyTiles([]int{3, 4, 7})
	deepest := b.DropEmpties()

	want := []TileType{
		Empty, Empty, Yellow,
		Red, Empty, Purple,
		Blue, Blue, Green,
	}
	if got := b.Types(); !slices.Equal(got, want) {
		t.Errorf("after drop = %v, expected %v", got, want)
	}
	if deepest != 1 {
		t.Errorf("DropEmpties() = %d, expected 1", deepest)
	}

	b.RefillBoard(deepest)
	for i := range b.Len() {
		if b.At(i) == Empty {
			t.Errorf("cell %d still empty after refill", i)
		}
	}
	if b.At(8) != Green || b.At(6) != Blue {
		t.Error("refill must not touch settled cells")
	}
}

func TestDropEmptiesFullBoard(t *testing.T) {
	b := NewBoard(4, 4, testRand(3))
	before := b.Types()
	if got := b.DropEmpties(); got != -1 {
		t.Errorf("DropEmpties() on a full board = %d, expected -1", got)
	}
	if !slices.Equal(before, b.Types()) {
		t.Error("DropEmpties() on a full board should not move tiles")
	}
}

func TestDropAndRefillLeavesNoEmpty(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		b := NewBoard(8, 8, testRand(seed))
		r := testRand(seed + 1000)
		var cleared []int
		for range 20 {
			cleared = append(cleared, r.Next(0, b.Len()))
		}
		b.EmptyTiles(cleared)
		b.RefillBoard(b.DropEmpties())
		for i := range b.Len() {
			if b.At(i) == Empty {
				t.Fatalf("seed %d: cell %d empty after drop and refill", seed, i)
			}
		}
	}
}

// hasMoveBruteForce tries every adjacent swap and rescans.
func hasMoveBruteForce(b *Board) bool {
	for i := range b.Len() {
		for _, j := range b.SwapCandidates(i) {
			if j <= i {
				continue
			}
			c := b.Clone()
			c.Swap(i, j)
			if HasMatches(c) {
				return true
			}
		}
	}
	return false
}

func TestIsDeadlockedAgreesWithBruteForce(t *testing.T) {
	stuck := 0
	for seed := int64(1); seed <= 400; seed++ {
		b := NewBoard(4, 4, testRand(seed))
		want := !hasMoveBruteForce(b)
		if got := b.IsDeadlocked(); got != want {
			t.Fatalf("seed %d: IsDeadlocked() = %v, brute force says %v\n%v", seed, got, want, b.Types())
		}
		if want {
			stuck++
		}
	}

	b := BoardFromTypes(4, 4, deadlocked, testRand(1))
	if !b.IsDeadlocked() || hasMoveBruteForce(b) {
		t.Error("hand-built board should be deadlocked")
	}
	t.Logf("%d of 400 random 4x4 boards were deadlocked", stuck)
}

func TestIsDeadlockedPatterns(t *testing.T) {
	tests := []struct {
		name  string
		cells map[int]TileType
	}{
		{"pair with slide-in from below the near end", map[int]TileType{2: Red, 3: Red, 5: Red}},
		{"pair with slide-in from far along the line", map[int]TileType{1: Red, 3: Red}},
		{"gap filled from above", map[int]TileType{4: Red, 1: Red}},
		{"vertical pair with slide-in from the side", map[int]TileType{1: Red, 5: Red, 8: Red}},
		{"vertical gap filled from the side", map[int]TileType{8: Red, 5: Red}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			types := slices.Clone(deadlocked)
			for i, tt := range tc.cells {
				types[i] = tt
			}
			b := BoardFromTypes(4, 4, types, testRand(1))
			if HasMatches(b) {
				t.Fatalf("setup has a run already: %v", b.Types())
			}
			if b.IsDeadlocked() {
				t.Error("IsDeadlocked() = true, expected a move")
			}
			if !hasMoveBruteForce(b) {
				t.Error("brute force found no move")
			}
		})
	}
}

func TestShuffleBoardKeepsTiles(t *testing.T) {
	b := NewBoard(8, 8, testRand(11))
	before := b.Types()
	b.ShuffleBoard()
	after := b.Types()

	slices.Sort(before)
	slices.Sort(after)
	if !slices.Equal(before, after) {
		t.Error("ShuffleBoard() changed the multiset of tiles")
	}
}
