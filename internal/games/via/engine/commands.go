package engine

import "fmt"

// Command is one entry of the move stream exchanged between the two sides
// of a networked session. Outbound commands describe moves of the local
// player after they were applied; inbound commands are applied to the
// remote player's board in delivery order.
type Command interface {
	command()
	String() string
}

// SwapTiles swaps two adjacent cells.
type SwapTiles struct {
	A, B int
}

// ShuffleTiles spends one shuffle.
type ShuffleTiles struct{}

// ScoreIncrease reports points scored on a bar. Both sides compute scores
// themselves; the command is informational.
type ScoreIncrease struct {
	Type   TileType
	Amount int
}

// GameOver announces the winning seat.
type GameOver struct {
	Winner int
}

func (SwapTiles) command()     {}
func (ShuffleTiles) command()  {}
func (ScoreIncrease) command() {}
func (GameOver) command()      {}

func (c SwapTiles) String() string     { return fmt.Sprintf("swap(%d,%d)", c.A, c.B) }
func (ShuffleTiles) String() string    { return "shuffle" }
func (c ScoreIncrease) String() string { return fmt.Sprintf("score(%s,%d)", c.Type, c.Amount) }
func (c GameOver) String() string      { return fmt.Sprintf("game_over(%d)", c.Winner) }
