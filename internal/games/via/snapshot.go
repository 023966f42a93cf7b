package via

import "github.com/vovakirdan/via/internal/games/via/engine"

// Snapshot captures the game state for determinism tests and the match
// history.
type Snapshot struct {
	Mode     string
	Active   int // local index, -1 when nobody holds the move
	Winner   int
	Steps    [2]string
	Boards   [2][]engine.TileType
	Bars     []int // in engine.TileTypes order
	Shuffles [2]int
	Paused   bool
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	s := g.session
	snap := Snapshot{
		Mode:   g.mode.String(),
		Active: s.Active(),
		Winner: s.Winner(),
		Bars:   s.Scores().Bars(),
		Paused: g.tooSmall,
	}
	for i := range 2 {
		p := s.Player(i)
		snap.Steps[i] = p.Step().String()
		snap.Boards[i] = p.Board().Types()
		snap.Shuffles[i] = p.ShufflesLeft()
	}
	return snap
}
