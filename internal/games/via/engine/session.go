package engine

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/via/internal/core"
)

// ErrDesync is returned when a remote command cannot be applied to the
// local copy of the remote player's board.
var ErrDesync = errors.New("engine: remote command does not match local state")

// ErrNoRemote is returned by ApplyRemote on a session without a remote player.
var ErrNoRemote = errors.New("engine: session has no remote player")

// Options configure a Session.
type Options struct {
	Rows     int
	Cols     int
	Mode     Mode
	Rules    ScoreRules
	Shuffles int        // shuffles per player per game
	Control  [2]Control // who drives each local player
	Seats    [2]int     // global seat of each local player
	First    int        // local index that moves first in turn mode
	Source   Source
	Sound    SoundPlayer
}

// DefaultOptions returns a local two-player turn-based setup.
func DefaultOptions() Options {
	return Options{
		Rows:     8,
		Cols:     8,
		Mode:     ModeTurns,
		Rules:    DefaultScoreRules(),
		Shuffles: 3,
		Seats:    [2]int{0, 1},
		Source:   NewLocalSource(1),
	}
}

// Session owns both players and the shared score bars and runs the turn
// cycle. It is not safe for concurrent use; the platform feeds it from one
// goroutine.
type Session struct {
	opts    Options
	policy  TurnPolicy
	players [2]*Player
	scores  *ScoreTracker
	sound   SoundPlayer
	outbox  []Command
	winner  int
}

// NewSession creates a session and deals the first game.
func NewSession(opts Options) *Session {
	if opts.Rows <= 0 || opts.Cols <= 0 {
		opts.Rows, opts.Cols = 8, 8
	}
	if opts.Rules.Goal <= 0 {
		opts.Rules = DefaultScoreRules()
	}
	if opts.Source == nil {
		opts.Source = NewLocalSource(1)
	}
	if opts.First != 1 {
		opts.First = 0
	}
	s := &Session{
		opts:   opts,
		policy: PolicyFor(opts.Mode),
		scores: NewScoreTracker(opts.Rules),
		sound:  opts.Sound,
		winner: -1,
	}
	if s.sound == nil {
		s.sound = NopSound{}
	}
	for i := range s.players {
		rnd := SeatRand{Src: opts.Source, Seat: opts.Seats[i]}
		s.players[i] = newPlayer(i, opts.Control[i], NewEmptyBoard(opts.Rows, opts.Cols, rnd))
	}
	s.Reset()
	return s
}

// Reset deals new boards, clears the bars and gives the move to the first player.
func (s *Session) Reset() {
	s.scores.Reset()
	s.outbox = nil
	s.winner = -1
	for _, p := range s.players {
		p.board.Regenerate()
		for HasMatches(p.board) || p.board.IsDeadlocked() {
			p.board.ShuffleBoard()
		}
		p.shuffles = s.opts.Shuffles
		p.selected = NoSelection
		p.lastSwap = [2]int{NoNeighbor, NoNeighbor}
		p.jams = 0
		p.step = StepWaiting
	}
	if s.opts.Mode == ModeRealtime {
		for _, p := range s.players {
			p.step = p.RestingStep()
		}
		return
	}
	first := s.players[s.opts.First]
	first.step = first.RestingStep()
}

func (s *Session) Options() Options        { return s.opts }
func (s *Session) Mode() Mode              { return s.opts.Mode }
func (s *Session) Player(i int) *Player    { return s.players[i] }
func (s *Session) Scores() *ScoreTracker   { return s.scores }
func (s *Session) Winner() int             { return s.winner }
func (s *Session) IsGameOver() bool        { return s.winner >= 0 }
func (s *Session) Seat(local int) int      { return s.opts.Seats[local] }
func (s *Session) networked() bool         { return s.remote() != nil }
func (s *Session) other(p *Player) *Player { return s.players[1-p.index] }

func (s *Session) remote() *Player {
	for _, p := range s.players {
		if p.control == ControlRemote {
			return p
		}
	}
	return nil
}

func (s *Session) local(seat int) int {
	for i, st := range s.opts.Seats {
		if st == seat {
			return i
		}
	}
	return -1
}

// Active returns the local index of the player holding the move in turn
// mode, or -1 in real-time mode and after the game ended.
func (s *Session) Active() int {
	if s.opts.Mode == ModeRealtime || s.IsGameOver() {
		return -1
	}
	for _, p := range s.players {
		if p.step != StepWaiting {
			return p.index
		}
	}
	return -1
}

// DrainOutbox returns the commands produced by local moves since the last
// call, in order.
func (s *Session) DrainOutbox() []Command {
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *Session) emit(p *Player, cmd Command) {
	if p.control == ControlLocal && s.networked() {
		s.outbox = append(s.outbox, cmd)
	}
}

// State summarizes the session for the platform.
func (s *Session) State() core.GameState {
	st := core.GameState{
		Active:   core.PlayerID(s.Active()),
		Winner:   core.PlayerID(s.winner),
		GameOver: s.IsGameOver(),
	}
	if st.Active < 0 {
		st.Active = core.NoPlayer
	}
	if st.Winner < 0 {
		st.Winner = core.NoPlayer
	}
	return st
}

// Step applies one input snapshot. Events are applied in order and every
// board is settled after each one, so cascades never span two steps.
// Input for remote-controlled players is ignored.
func (s *Session) Step(in core.InputSnapshot) core.StepResult {
	if in.NewGame && s.IsGameOver() {
		s.Reset()
	}
	for _, c := range in.Clicks {
		p := s.localPlayer(c.Player)
		if p == nil {
			continue
		}
		if p.click(c.Index) {
			a, b := p.LastSwap()
			s.sound.Play(SoundSwap)
			s.emit(p, SwapTiles{A: a, B: b})
		}
		s.settle()
	}
	for _, id := range in.Shuffles {
		p := s.localPlayer(id)
		if p == nil || p.step != StepInput {
			continue
		}
		if p.shuffle() {
			s.emit(p, ShuffleTiles{})
		}
		s.settle()
	}
	return core.StepResult{State: s.State()}
}

func (s *Session) localPlayer(id core.PlayerID) *Player {
	if !id.Valid() {
		return nil
	}
	p := s.players[int(id)]
	if p.control != ControlLocal {
		return nil
	}
	return p
}

// ApplyRemote applies one inbound command to the remote player. Commands
// must be applied in delivery order.
func (s *Session) ApplyRemote(cmd Command) error {
	p := s.remote()
	if p == nil {
		return ErrNoRemote
	}
	switch c := cmd.(type) {
	case SwapTiles:
		if p.step != StepNetworkInput {
			return fmt.Errorf("remote %s during %s: %w", c, p.step, ErrDesync)
		}
		if !p.board.IsSwapCandidate(c.A, c.B) {
			return fmt.Errorf("remote %s: cells are not adjacent: %w", c, ErrDesync)
		}
		p.swap(c.A, c.B)
		s.sound.Play(SoundSwap)
	case ShuffleTiles:
		if p.step != StepNetworkInput {
			return fmt.Errorf("remote shuffle during %s: %w", p.step, ErrDesync)
		}
		// an exhausted allowance is ignored, as for local players
		p.shuffle()
	case ScoreIncrease:
		return nil
	case GameOver:
		w := s.local(c.Winner)
		if w < 0 {
			return fmt.Errorf("remote %s: unknown seat: %w", c, ErrDesync)
		}
		if s.IsGameOver() {
			if s.winner != w {
				return fmt.Errorf("remote %s but local winner is seat %d: %w", c, s.Seat(s.winner), ErrDesync)
			}
			return nil
		}
		s.finish(w, false)
		return nil
	default:
		return fmt.Errorf("engine: unsupported command %T", cmd)
	}
	s.settle()
	return nil
}

// SetWinner ends the game with the given local player as winner.
func (s *Session) SetWinner(local int) {
	if local < 0 || local > 1 || s.IsGameOver() {
		return
	}
	s.finish(local, false)
}

func (s *Session) finish(winner int, announce bool) {
	s.winner = winner
	for _, p := range s.players {
		if p.index == winner {
			p.step = StepWin
		} else {
			p.step = StepLose
		}
		p.selected = NoSelection
	}
	w := s.players[winner]
	if w.control == ControlLocal {
		s.sound.Play(SoundWin)
	} else {
		s.sound.Play(SoundLose)
	}
	if announce && s.networked() {
		s.outbox = append(s.outbox, GameOver{Winner: s.Seat(winner)})
	}
}

// settle advances every player until it waits for input.
func (s *Session) settle() {
	for _, p := range s.players {
		for !p.step.Resting() {
			if p.step == StepComplete {
				s.handOff(p)
				break
			}
			s.advance(p)
		}
	}
}

func (s *Session) handOff(p *Player) {
	p.step = StepWaiting
	o := s.other(p)
	if o.step == StepWaiting {
		o.step = o.RestingStep()
	}
}

// advance performs one transition for a player that is not resting.
func (s *Session) advance(p *Player) {
	b := p.board
	switch p.step {
	case StepCheckMatch, StepCheckMatchShuffle:
		groups := FindMatches(b)
		if len(groups) == 0 {
			if p.step == StepCheckMatch {
				p.revertSwap()
				p.step = p.RestingStep()
			} else {
				p.step = StepCheckDeadlock
			}
			return
		}
		s.resolve(p, groups)
		if s.IsGameOver() {
			return
		}
		if !HasMatches(b) {
			p.step = StepCheckDeadlock
		}

	case StepCheckDeadlock:
		// a deadlock shuffle may line up runs; those are shuffled away,
		// never scored, until the board is clean and has a move
		if HasMatches(b) || b.IsDeadlocked() {
			b.ShuffleBoard()
			p.jams++
			return
		}
		p.selected = NoSelection
		p.step = s.policy.AfterSettle(p)
	}
}

// resolve scores and clears one pass of match groups, then lets the board
// fall and refill. The game ends as soon as the bars name a winner.
func (s *Session) resolve(p *Player, groups []MatchGroup) {
	rules := s.scores.Rules()
	for _, g := range groups {
		pts := rules.GroupPoints(g.Len())
		s.scores.Add(g.Type, p.index, pts)
		s.emit(p, ScoreIncrease{Type: g.Type, Amount: pts})
		p.board.EmptyTiles(g.Cells)
	}
	s.sound.Play(SoundMatch)

	from := p.board.DropEmpties()
	p.board.RefillBoard(from)

	// announced even when the remote move decided it: in real time the
	// other side may resolve the moves in another order and never get here
	if w := s.scores.Winner(); w >= 0 {
		s.finish(w, true)
	}
}
