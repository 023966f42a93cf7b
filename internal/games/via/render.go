package via

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via/engine"
)

const (
	cellW   = 3  // characters per board cell
	barsW   = 24 // width of the score column
	gap     = 2
	boardY  = 2 // first row of the board boxes
	trackW  = 20
	headerH = 2
)

// Layout places both boards and the score column on screen.
type Layout struct {
	Boards [2]core.Rect // box including the border
	Bars   core.Rect
	Status int // y of the status line
	Width  int
	Height int
}

func (g *Game) layout() Layout {
	rows, cols := g.cfg.Board.Rows, g.cfg.Board.Cols
	if g.session != nil {
		b := g.session.Player(0).Board()
		rows, cols = b.Rows(), b.Cols()
	}
	bw := cols*cellW + 2
	bh := max(rows+2, engine.NumTileTypes+4)
	width := 2*bw + barsW + 2*gap

	x := max(0, (g.screenW-width)/2)
	l := Layout{
		Boards: [2]core.Rect{
			core.NewRect(x, boardY, bw, rows+2),
			core.NewRect(x+bw+gap+barsW+gap, boardY, bw, rows+2),
		},
		Bars:   core.NewRect(x+bw+gap, boardY, barsW, bh),
		Status: boardY + bh + 1,
		Width:  width,
		Height: boardY + bh + headerH,
	}
	return l
}

// CellAt maps a screen position to a player's board cell.
func (g *Game) CellAt(x, y int) (core.PlayerID, int, bool) {
	l := g.layout()
	for p, r := range l.Boards {
		inner := core.NewRect(r.X+1, r.Y+1, r.W-2, r.H-2)
		if !inner.Contains(x, y) {
			continue
		}
		b := g.session.Player(p).Board()
		col := (x - inner.X) / cellW
		row := y - inner.Y
		return core.PlayerID(p), b.Index(row, col), true
	}
	return core.NoPlayer, 0, false
}

// TileColor returns the screen color of a tile type.
func TileColor(t engine.TileType) core.Color {
	switch t {
	case engine.Red:
		return core.ColorRed
	case engine.Blue:
		return core.ColorBlue
	case engine.Yellow:
		return core.ColorYellow
	case engine.Green:
		return core.ColorGreen
	case engine.Black:
		return core.ColorBlack
	case engine.Purple:
		return core.ColorMagenta
	default:
		return core.ColorDefault
	}
}

// TileGlyph returns a shape per type so tiles stay apart without color.
func TileGlyph(t engine.TileType) rune {
	switch t {
	case engine.Red:
		return '♥'
	case engine.Blue:
		return '♦'
	case engine.Yellow:
		return '★'
	case engine.Green:
		return '♣'
	case engine.Black:
		return '●'
	case engine.Purple:
		return '♠'
	default:
		return ' '
	}
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	l := g.layout()
	g.renderHeader(dst, l)
	for p := range 2 {
		g.renderBoard(dst, l.Boards[p], p)
	}
	g.renderBars(dst, l.Bars)
	g.renderStatus(dst, l)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	l := g.layout()
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need %dx%d", l.Width, l.Height))
}

func (g *Game) renderHeader(dst *core.Screen, l Layout) {
	dst.DrawTextCentered(0, g.Title())
	for p := range 2 {
		r := l.Boards[p]
		pl := g.session.Player(p)
		text := fmt.Sprintf("%s  shuffles:%d", g.names[p], pl.ShufflesLeft())
		c := core.ColorDefault
		if g.session.Active() == p {
			c = core.ColorHighlight
		}
		dst.DrawTextColored(r.X, 1, truncate(text, r.W), c)
	}
}

func (g *Game) renderBoard(dst *core.Screen, r core.Rect, p int) {
	pl := g.session.Player(p)
	frame := core.ColorGray
	if g.session.Active() == p || (g.session.Active() < 0 && !g.session.IsGameOver()) {
		frame = core.ColorWhite
	}
	dst.DrawBox(r, frame)

	b := pl.Board()
	showCursor := pl.Control() == engine.ControlLocal && pl.Step() == engine.StepInput
	for i := range b.Len() {
		row, col := b.RowCol(i)
		x := r.X + 1 + col*cellW
		y := r.Y + 1 + row
		t := b.At(i)
		dst.SetColored(x+1, y, TileGlyph(t), TileColor(t))

		switch {
		case pl.Selected() == i:
			dst.SetColored(x, y, '[', core.ColorHighlight)
			dst.SetColored(x+2, y, ']', core.ColorHighlight)
		case showCursor && g.cursor[p] == i:
			dst.SetColored(x, y, '(', core.ColorHighlight)
			dst.SetColored(x+2, y, ')', core.ColorHighlight)
		}
	}
}

// renderBars draws one tug-of-war track per tile type. Player 0 pulls to
// the left, player 1 to the right.
func (g *Game) renderBars(dst *core.Screen, r core.Rect) {
	scores := g.session.Scores()
	goal := scores.Rules().Goal
	half := trackW / 2

	for k, t := range engine.TileTypes() {
		y := r.Y + 1 + k
		dst.SetColored(r.X, y, TileGlyph(t), TileColor(t))

		v := scores.Value(t)
		fill := core.Abs(v) * half / goal
		x0 := r.X + 2
		for i := range trackW {
			dst.SetColored(x0+i, y, '·', core.ColorGray)
		}
		dst.SetColored(x0+half, y, '│', core.ColorWhite)
		for i := 1; i <= fill; i++ {
			x := x0 + half + i - 1
			if v < 0 {
				x = x0 + half - i
			}
			dst.SetColored(x, y, '■', TileColor(t))
		}
		switch scores.Owner(t) {
		case 0:
			dst.SetColored(x0-1, y, '◆', core.ColorHighlight)
		case 1:
			dst.SetColored(x0+trackW, y, '◆', core.ColorHighlight)
		}
	}

	rules := scores.Rules()
	y := r.Y + engine.NumTileTypes + 2
	dst.DrawText(r.X, y, fmt.Sprintf("%d/%d", scores.LockedCount(0), rules.WinBars))
	right := fmt.Sprintf("%d/%d", scores.LockedCount(1), rules.WinBars)
	dst.DrawText(r.Right()-len(right), y, right)
}

func (g *Game) renderStatus(dst *core.Screen, l Layout) {
	var text string
	c := core.ColorDefault
	switch {
	case g.lastErr != nil:
		text = "Out of sync with opponent: " + g.lastErr.Error()
		c = core.ColorRed
	case g.session.IsGameOver():
		w := g.session.Winner()
		text = fmt.Sprintf("%s WINS!", strings.ToUpper(g.names[w]))
		if g.match == nil {
			text += "  Press N for a new game"
		}
		c = core.ColorHighlight
	case g.mode == engine.ModeRealtime:
		text = "Real-time: match as fast as you can"
	default:
		a := g.session.Active()
		switch g.session.Player(a).Step() {
		case engine.StepNetworkInput:
			text = fmt.Sprintf("Waiting for %s...", g.names[a])
		default:
			text = fmt.Sprintf("%s to move", g.names[a])
		}
	}
	dst.DrawTextColored(l.Boards[0].X, l.Status, truncate(text, l.Width), c)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
