// Package engine is the match-3 core of Via: boards, match detection,
// the per-player step machine, the tug-of-war score bars and the session
// that ties two players together. It has no platform dependencies and is
// fully deterministic for a given random Source.
package engine

// TileType is the kind of a board cell. Empty is the "no tile" sentinel
// and never takes part in a match.
type TileType uint8

const (
	Empty TileType = iota
	Red
	Blue
	Yellow
	Green
	Black
	Purple
)

// NumTileTypes is the number of colored tile types (Empty excluded).
const NumTileTypes = int(Purple)

// TileTypes lists every colored tile type in bar order.
func TileTypes() []TileType {
	types := make([]TileType, 0, NumTileTypes)
	for t := Red; t <= Purple; t++ {
		types = append(types, t)
	}
	return types
}

// Colored reports whether t is a real tile (not Empty, not out of range).
func (t TileType) Colored() bool {
	return t >= Red && t <= Purple
}

func (t TileType) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Black:
		return "Black"
	case Purple:
		return "Purple"
	default:
		return "Unknown"
	}
}

// ParseTileType is the inverse of String for colored types.
func ParseTileType(s string) (TileType, bool) {
	for _, t := range TileTypes() {
		if t.String() == s {
			return t, true
		}
	}
	return Empty, false
}

// Tile is a board cell. Row and Col are its logical position and always
// match the slot the tile occupies once a board operation returns.
type Tile struct {
	Type TileType
	Row  int
	Col  int
}
