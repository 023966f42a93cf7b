// Package via adapts the match-3 engine to the platform: it registers the
// game variants, turns platform input into engine input, keeps a cursor per
// player and draws both boards with the score bars.
package via

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/via/internal/config"
	"github.com/vovakirdan/via/internal/core"
	"github.com/vovakirdan/via/internal/games/via/engine"
	"github.com/vovakirdan/via/internal/registry"
)

// Variant IDs.
const (
	IDTurns    = "via"
	IDRealtime = "via_realtime"
)

// jamWarnAt is the number of deadlock shuffles in one move after which a
// warning is logged.
const jamWarnAt = 50

// Package-level config, set by the CLI before games are created.
var settings = config.DefaultViaConfig()

// Configure sets the config used by games created after the call.
func Configure(cfg config.ViaConfig) {
	settings = cfg
}

// Settings returns the config games are created with.
func Settings() config.ViaConfig {
	return settings
}

// Match describes the local side of an online match.
type Match struct {
	Mode      engine.Mode
	Seat      int           // our seat
	FirstSeat int           // seat that moves first in turn mode
	Seed      int64         // shared seed, used when Source is nil
	Source    engine.Source // server-issued stream, optional
	Names     [2]string     // by seat
	Rows      int           // board size issued by the server; 0 keeps the config
	Cols      int
}

// Game is the registry.Game for Via.
type Game struct {
	id      string
	mode    engine.Mode
	cfg     config.ViaConfig
	match   *Match
	session *engine.Session
	sound   engine.SoundPlayer
	logger  *log.Logger

	names  [2]string // by local player
	cursor [2]int

	screenW  int
	screenH  int
	tooSmall bool
	warned   [2]bool
	lastErr  error
}

// New creates a local turn-based game.
func New() *Game {
	return newGame(IDTurns, engine.ModeTurns)
}

// NewRealtime creates the real-time variant. It is listed but only playable online.
func NewRealtime() *Game {
	return newGame(IDRealtime, engine.ModeRealtime)
}

// NewOnline creates a game for one side of an online match. The local
// player is always player 0 on screen.
func NewOnline(m Match) *Game {
	id := IDTurns
	if m.Mode == engine.ModeRealtime {
		id = IDRealtime
	}
	g := newGame(id, m.Mode)
	g.match = &m
	g.names = [2]string{m.Names[m.Seat], m.Names[1-m.Seat]}
	return g
}

func newGame(id string, mode engine.Mode) *Game {
	return &Game{
		id:     id,
		mode:   mode,
		cfg:    settings,
		sound:  engine.NopSound{},
		logger: log.New(io.Discard),
		names:  [2]string{"P1", "P2"},
	}
}

func init() {
	registry.Register(IDTurns, func() registry.Game {
		return New()
	})
	registry.Register(IDRealtime, func() registry.Game {
		return NewRealtime()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == engine.ModeRealtime {
		return "Via (Real-time)"
	}
	return "Via"
}

// OnlineOnly reports whether the variant needs a remote opponent.
func (g *Game) OnlineOnly() bool { return g.mode == engine.ModeRealtime }

// Mode returns the turn mode.
func (g *Game) Mode() engine.Mode { return g.mode }

// Names returns the display names by local player.
func (g *Game) Names() [2]string { return g.names }

// Online reports whether this game is one side of an online match.
func (g *Game) Online() bool { return g.match != nil }

// SetSound sets the cue sink. Takes effect on the next Reset.
func (g *Game) SetSound(s engine.SoundPlayer) {
	if s == nil {
		s = engine.NopSound{}
	}
	g.sound = s
}

// SetLogger sets the logger for engine warnings.
func (g *Game) SetLogger(l *log.Logger) {
	if l != nil {
		g.logger = l
	}
}

// SetNames sets the display names by local player.
func (g *Game) SetNames(p1, p2 string) {
	g.names = [2]string{p1, p2}
}

// EngineOptions converts a config into session options for a local game.
func EngineOptions(cfg config.ViaConfig, mode engine.Mode) engine.Options {
	opts := engine.DefaultOptions()
	opts.Rows = cfg.Board.Rows
	opts.Cols = cfg.Board.Cols
	opts.Mode = mode
	opts.Shuffles = cfg.Rules.Shuffles
	opts.First = cfg.Rules.FirstPlayer
	opts.Rules = engine.ScoreRules{
		Goal:              cfg.Scoring.Goal,
		WinBars:           cfg.Scoring.WinBars,
		SpillPercent:      cfg.Scoring.LockedSpillPercent,
		PointsPerTile:     cfg.Scoring.PointsPerTile,
		BonusPerExtraTile: cfg.Scoring.BonusPerExtraTile,
	}
	return opts
}

// Reset initializes/restarts the game.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.lastErr = nil
	g.warned = [2]bool{}

	opts := EngineOptions(g.cfg, g.mode)
	opts.Sound = g.sound
	opts.Source = engine.NewLocalSource(rc.Seed)
	if m := g.match; m != nil {
		opts.Control = [2]engine.Control{engine.ControlLocal, engine.ControlRemote}
		opts.Seats = [2]int{m.Seat, 1 - m.Seat}
		opts.First = 0
		if m.FirstSeat != m.Seat {
			opts.First = 1
		}
		if m.Rows > 0 && m.Cols > 0 {
			opts.Rows, opts.Cols = m.Rows, m.Cols
		}
		opts.Source = m.Source
		if opts.Source == nil {
			opts.Source = engine.NewLocalSource(m.Seed)
		}
	}
	g.session = engine.NewSession(opts)

	center := g.session.Player(0).Board().Index(opts.Rows/2, opts.Cols/2)
	g.cursor = [2]int{center, center}
	g.checkScreenSize()
}

// Resize updates the screen size without touching the game.
func (g *Game) Resize(w, h int) {
	g.screenW, g.screenH = w, h
	g.checkScreenSize()
}

func (g *Game) checkScreenSize() {
	l := g.layout()
	g.tooSmall = g.screenW < l.Width || g.screenH < l.Height
}

// Session exposes the engine session.
func (g *Game) Session() *engine.Session { return g.session }

// Err returns the last remote command error, if any.
func (g *Game) Err() error { return g.lastErr }

// Step applies one input snapshot.
func (g *Game) Step(in core.InputSnapshot) core.StepResult {
	if g.match != nil {
		// a rematch needs both sides; online games end with the match
		in.NewGame = false
	}
	res := g.session.Step(in)
	g.checkJams()
	return res
}

// ApplyRemote applies a command received from the opponent.
func (g *Game) ApplyRemote(cmd engine.Command) error {
	if err := g.session.ApplyRemote(cmd); err != nil {
		g.lastErr = err
		g.logger.Error("remote command rejected", "cmd", cmd, "err", err)
		return err
	}
	g.checkJams()
	return nil
}

// DrainOutbox returns the commands to send to the opponent.
func (g *Game) DrainOutbox() []engine.Command {
	return g.session.DrainOutbox()
}

func (g *Game) checkJams() {
	for i := range 2 {
		n := g.session.Player(i).DeadlockShuffles()
		switch {
		case n >= jamWarnAt && !g.warned[i]:
			g.warned[i] = true
			g.logger.Warn("board keeps deadlocking", "player", i, "shuffles", n)
		case n < jamWarnAt:
			g.warned[i] = false
		}
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return g.session.State()
}

// Cursor returns the cell under a player's cursor.
func (g *Game) Cursor(p core.PlayerID) int {
	if !p.Valid() {
		return engine.NoNeighbor
	}
	return g.cursor[p]
}

// SetCursor moves a player's cursor to a cell, ignoring invalid cells.
func (g *Game) SetCursor(p core.PlayerID, index int) {
	if !p.Valid() || !g.session.Player(int(p)).Board().InBounds(index) {
		return
	}
	g.cursor[p] = index
}

// MoveCursor moves a player's cursor one cell, clamped to the board.
func (g *Game) MoveCursor(p core.PlayerID, a core.Action) {
	if !p.Valid() {
		return
	}
	b := g.session.Player(int(p)).Board()
	row, col := b.RowCol(g.cursor[p])
	switch a {
	case core.ActionUp:
		row--
	case core.ActionDown:
		row++
	case core.ActionLeft:
		col--
	case core.ActionRight:
		col++
	default:
		return
	}
	row = core.Clamp(row, 0, b.Rows()-1)
	col = core.Clamp(col, 0, b.Cols()-1)
	g.cursor[p] = b.Index(row, col)
}
