package engine

import "slices"

// MinRun is the shortest line of equal tiles that counts as a match.
const MinRun = 3

// MatchGroup is a connected set of matched cells of one type. A group is
// the union of every horizontal and vertical run that shares a cell with it.
type MatchGroup struct {
	Type  TileType
	Cells []int // sorted ascending
}

// Len returns the number of cells in the group.
func (g MatchGroup) Len() int { return len(g.Cells) }

// groupArena tracks groups by handle. owner maps every cell to the handle
// of the group holding it (-1 for none); retired groups keep a nil slice.
type groupArena struct {
	owner  []int
	groups [][]int
	types  []TileType
}

func newGroupArena(cells int) *groupArena {
	a := &groupArena{owner: make([]int, cells)}
	for i := range a.owner {
		a.owner[i] = -1
	}
	return a
}

func (a *groupArena) create(t TileType) int {
	a.groups = append(a.groups, nil)
	a.types = append(a.types, t)
	return len(a.groups) - 1
}

func (a *groupArena) add(h, cell int) {
	if a.owner[cell] == h {
		return
	}
	a.owner[cell] = h
	a.groups[h] = append(a.groups[h], cell)
}

// absorb moves every cell of group src into dst and retires src.
func (a *groupArena) absorb(dst, src int) {
	for _, cell := range a.groups[src] {
		a.owner[cell] = dst
		a.groups[dst] = append(a.groups[dst], cell)
	}
	a.groups[src] = nil
}

// addRun unions a run with every group it touches, creating a group when
// it touches none.
func (a *groupArena) addRun(t TileType, cells []int) {
	target := -1
	for _, cell := range cells {
		h := a.owner[cell]
		switch {
		case h < 0:
		case target < 0:
			target = h
		case h != target:
			// keep the older handle so output order follows creation order
			if h < target {
				target, h = h, target
			}
			a.absorb(target, h)
		}
	}
	if target < 0 {
		target = a.create(t)
	}
	for _, cell := range cells {
		a.add(target, cell)
	}
}

// FindMatches returns every group of three or more equal, non-Empty tiles
// in a line, with crossing lines merged into one group. Horizontal runs are
// collected row by row first, then vertical runs column by column.
func FindMatches(b *Board) []MatchGroup {
	a := newGroupArena(b.Len())

	for row := 0; row < b.Rows(); row++ {
		for col := 0; col < b.Cols(); {
			t := b.Get(row, col)
			n := 1
			for col+n < b.Cols() && b.Get(row, col+n) == t {
				n++
			}
			if t != Empty && n >= MinRun {
				cells := make([]int, n)
				for k := range n {
					cells[k] = b.Index(row, col+k)
				}
				a.addRun(t, cells)
			}
			col += n
		}
	}

	for col := 0; col < b.Cols(); col++ {
		for row := 0; row < b.Rows(); {
			t := b.Get(row, col)
			n := 1
			for row+n < b.Rows() && b.Get(row+n, col) == t {
				n++
			}
			if t != Empty && n >= MinRun {
				cells := make([]int, n)
				for k := range n {
					cells[k] = b.Index(row+k, col)
				}
				a.addRun(t, cells)
			}
			row += n
		}
	}

	var out []MatchGroup
	for h, cells := range a.groups {
		if cells == nil {
			continue
		}
		sorted := slices.Clone(cells)
		slices.Sort(sorted)
		out = append(out, MatchGroup{Type: a.types[h], Cells: sorted})
	}
	return out
}

// HasMatches reports whether the board holds any run of three.
func HasMatches(b *Board) bool {
	return len(FindMatches(b)) > 0
}
