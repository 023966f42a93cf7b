package engine

// NoNeighbor marks a missing neighbor in SwapCandidates.
const NoNeighbor = -1

// Board is a rows x cols grid of tiles stored in row-major order:
// index = row*cols + col, row 0 at the top. Gravity pulls toward the
// highest row.
type Board struct {
	rows  int
	cols  int
	tiles []Tile
	rnd   Rand
}

// NewBoard creates a board and fills it with Regenerate.
func NewBoard(rows, cols int, rnd Rand) *Board {
	b := NewEmptyBoard(rows, cols, rnd)
	b.Regenerate()
	return b
}

// NewEmptyBoard creates a board whose cells are all Empty.
func NewEmptyBoard(rows, cols int, rnd Rand) *Board {
	b := &Board{
		rows:  rows,
		cols:  cols,
		tiles: make([]Tile, rows*cols),
		rnd:   rnd,
	}
	for i := range b.tiles {
		b.tiles[i].Row, b.tiles[i].Col = b.RowCol(i)
	}
	return b
}

// BoardFromTypes builds a board from a row-major slice of types.
// Used to set up positions directly, mostly in tests and snapshots.
func BoardFromTypes(rows, cols int, types []TileType, rnd Rand) *Board {
	b := NewEmptyBoard(rows, cols, rnd)
	for i, t := range types {
		b.Set(i, t)
	}
	return b
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }
func (b *Board) Len() int  { return len(b.tiles) }

// Index converts a row/col pair to a flat index. The result is only
// meaningful when InBoundsRC(row, col) holds.
func (b *Board) Index(row, col int) int {
	return row*b.cols + col
}

// RowCol converts a flat index into its row and column.
func (b *Board) RowCol(i int) (row, col int) {
	return i / b.cols, i % b.cols
}

// InBounds reports whether i addresses a cell.
func (b *Board) InBounds(i int) bool {
	return i >= 0 && i < len(b.tiles)
}

// InBoundsRC reports whether (row, col) addresses a cell.
func (b *Board) InBoundsRC(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// Get returns the type at (row, col), or Empty outside the board. Scans
// use it instead of index arithmetic so that neighbors never wrap from the
// end of one row into the next.
func (b *Board) Get(row, col int) TileType {
	if !b.InBoundsRC(row, col) {
		return Empty
	}
	return b.tiles[b.Index(row, col)].Type
}

// At returns the type at index i, or Empty when i is out of range.
func (b *Board) At(i int) TileType {
	if !b.InBounds(i) {
		return Empty
	}
	return b.tiles[i].Type
}

// Tile returns the full tile at index i; the zero Tile when out of range.
func (b *Board) Tile(i int) Tile {
	if !b.InBounds(i) {
		return Tile{}
	}
	return b.tiles[i]
}

// Set writes a type at index i. Out-of-range writes are ignored.
func (b *Board) Set(i int, t TileType) {
	if !b.InBounds(i) {
		return
	}
	b.tiles[i].Type = t
}

// Types returns a row-major copy of every cell's type.
func (b *Board) Types() []TileType {
	out := make([]TileType, len(b.tiles))
	for i, t := range b.tiles {
		out[i] = t.Type
	}
	return out
}

// Clone returns a deep copy sharing the random source.
func (b *Board) Clone() *Board {
	c := &Board{rows: b.rows, cols: b.cols, rnd: b.rnd}
	c.tiles = make([]Tile, len(b.tiles))
	copy(c.tiles, b.tiles)
	return c
}

// Equal reports whether two boards have the same shape and tiles.
func (b *Board) Equal(other *Board) bool {
	if b.rows != other.rows || b.cols != other.cols {
		return false
	}
	for i := range b.tiles {
		if b.tiles[i] != other.tiles[i] {
			return false
		}
	}
	return true
}

func (b *Board) randomType() TileType {
	return TileType(b.rnd.Next(int(Red), int(Purple)+1))
}

// Regenerate fills the whole board in row-major order so that no run of
// three exists. Each draw is repeated while it would complete a run with
// the two cells to its left or the two cells above it.
func (b *Board) Regenerate() {
	for i := range b.tiles {
		b.tiles[i].Type = Empty
	}
	for i := range b.tiles {
		row, col := b.RowCol(i)
		var leftRun, upRun TileType
		if col >= 2 && b.Get(row, col-1) == b.Get(row, col-2) {
			leftRun = b.Get(row, col-1)
		}
		if row >= 2 && b.Get(row-1, col) == b.Get(row-2, col) {
			upRun = b.Get(row-1, col)
		}
		t := b.randomType()
		for t == leftRun || t == upRun {
			t = b.randomType()
		}
		b.tiles[i].Type = t
	}
}

// Swap exchanges the contents of two cells. It does not check adjacency.
// Out-of-range indices make it a no-op.
func (b *Board) Swap(i, j int) {
	if !b.InBounds(i) || !b.InBounds(j) {
		return
	}
	b.tiles[i].Type, b.tiles[j].Type = b.tiles[j].Type, b.tiles[i].Type
}

// SwapCandidates returns the orthogonal neighbors of i in the order
// up, right, down, left. Missing neighbors are NoNeighbor.
func (b *Board) SwapCandidates(i int) [4]int {
	out := [4]int{NoNeighbor, NoNeighbor, NoNeighbor, NoNeighbor}
	if !b.InBounds(i) {
		return out
	}
	row, col := b.RowCol(i)
	if row > 0 {
		out[0] = i - b.cols
	}
	if col < b.cols-1 {
		out[1] = i + 1
	}
	if row < b.rows-1 {
		out[2] = i + b.cols
	}
	if col > 0 {
		out[3] = i - 1
	}
	return out
}

// IsSwapCandidate reports whether j is an orthogonal neighbor of i.
func (b *Board) IsSwapCandidate(i, j int) bool {
	if j == NoNeighbor {
		return false
	}
	for _, c := range b.SwapCandidates(i) {
		if c == j {
			return true
		}
	}
	return false
}

// EmptyTiles sets every listed cell to Empty.
func (b *Board) EmptyTiles(indices []int) {
	for _, i := range indices {
		b.Set(i, Empty)
	}
}

// DropEmpties lets tiles fall into empty cells below them, column by
// column, preserving their vertical order. It returns the deepest row that
// still holds an Empty cell afterwards, or -1 when the board is full.
func (b *Board) DropEmpties() int {
	deepest := -1
	for col := 0; col < b.cols; col++ {
		write := b.rows - 1
		for row := b.rows - 1; row >= 0; row-- {
			t := b.Get(row, col)
			if t == Empty {
				continue
			}
			if write != row {
				b.tiles[b.Index(write, col)].Type = t
				b.tiles[b.Index(row, col)].Type = Empty
			}
			write--
		}
		deepest = max(deepest, write)
	}
	return deepest
}

// RefillBoard gives every Empty cell in rows 0..fromRow a random type,
// in row-major order. New tiles appear from above the visible top.
func (b *Board) RefillBoard(fromRow int) {
	fromRow = min(fromRow, b.rows-1)
	for row := 0; row <= fromRow; row++ {
		for col := 0; col < b.cols; col++ {
			i := b.Index(row, col)
			if b.tiles[i].Type == Empty {
				b.tiles[i].Type = b.randomType()
			}
		}
	}
}

// IsDeadlocked reports whether no single adjacent swap can create a run of
// three. The board must not contain a run already. For every pair of equal
// tiles (adjacent, or with one gap) it checks the few cells from which a
// third tile could slide in; offsets never exceed three cells.
func (b *Board) IsDeadlocked() bool {
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			t := b.Get(row, col)
			if t == Empty {
				continue
			}
			if b.pairCanComplete(row, col, t, 0, 1) || b.pairCanComplete(row, col, t, 1, 0) {
				return false
			}
			if b.gapCanComplete(row, col, t, 0, 1) || b.gapCanComplete(row, col, t, 1, 0) {
				return false
			}
		}
	}
	return true
}

// pairCanComplete checks the pair (row,col),(row+dr,col+dc). A third tile
// can slide into the cell before the pair or the cell after it, either
// from the side or from further along the line.
func (b *Board) pairCanComplete(row, col int, t TileType, dr, dc int) bool {
	if b.Get(row+dr, col+dc) != t {
		return false
	}
	// perpendicular direction
	pr, pc := dc, dr
	for _, end := range [2][3]int{
		{row - dr, col - dc, -1}, // cell before the pair
		{row + 2*dr, col + 2*dc, 1},
	} {
		er, ec, dir := end[0], end[1], end[2]
		if !b.InBoundsRC(er, ec) {
			continue
		}
		if b.Get(er+pr, ec+pc) == t || b.Get(er-pr, ec-pc) == t ||
			b.Get(er+dir*dr, ec+dir*dc) == t {
			return true
		}
	}
	return false
}

// gapCanComplete checks (row,col) and (row+2dr,col+2dc) with the middle
// cell fillable from either side.
func (b *Board) gapCanComplete(row, col int, t TileType, dr, dc int) bool {
	if b.Get(row+2*dr, col+2*dc) != t {
		return false
	}
	mr, mc := row+dr, col+dc
	pr, pc := dc, dr
	return b.Get(mr+pr, mc+pc) == t || b.Get(mr-pr, mc-pc) == t
}

// ShuffleBoard permutes the tiles: first a Fisher-Yates pass inside every
// row, then one inside every column. The result may contain runs.
func (b *Board) ShuffleBoard() {
	for row := 0; row < b.rows; row++ {
		for col := b.cols - 1; col > 0; col-- {
			j := b.rnd.Next(0, col+1)
			b.Swap(b.Index(row, col), b.Index(row, j))
		}
	}
	for col := 0; col < b.cols; col++ {
		for row := b.rows - 1; row > 0; row-- {
			j := b.rnd.Next(0, row+1)
			b.Swap(b.Index(row, col), b.Index(j, col))
		}
	}
}
