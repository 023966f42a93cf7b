package multiplayer

import (
	"sync"
	"time"

	"github.com/vovakirdan/via/internal/games/via/engine"
)

// MatchSettings are the parameters both sides deal their boards from.
type MatchSettings struct {
	Mode        engine.Mode
	Rows        int
	Cols        int
	Seed        int64
	First       int // seat
	RandomBatch int
	Rules       engine.ScoreRules
}

// MatchResult contains the outcome of a completed match.
type MatchResult struct {
	MatchID  MatchID
	Reason   MatchEndReason
	Winner   int // seat or NoSeat
	Bars     []int
	Duration time.Duration
}

type seatInput struct {
	seat int            // sender
	cmd  engine.Command // nil for random requests

	// random request
	stream int
	batch  int
}

// OnlineMatch relays the move streams of two seats. Commands from one seat
// are forwarded to the other in arrival order on the match goroutine.
type OnlineMatch struct {
	id       MatchID
	code     string
	settings MatchSettings
	seats    [2]SessionHandle
	scores   *engine.ScoreTracker
	started  time.Time

	inputChan      chan seatInput
	disconnectChan chan SessionID
	leaveChan      chan SessionID
	done           chan struct{}
	doneOnce       sync.Once
}

// NewOnlineMatch creates a new online match. Seat 0 is the host.
func NewOnlineMatch(id MatchID, code string, settings MatchSettings, host, joiner SessionHandle) *OnlineMatch {
	if settings.RandomBatch <= 0 {
		settings.RandomBatch = 1024
	}
	return &OnlineMatch{
		id:             id,
		code:           code,
		settings:       settings,
		seats:          [2]SessionHandle{host, joiner},
		scores:         engine.NewScoreTracker(settings.Rules),
		inputChan:      make(chan seatInput, 256),
		disconnectChan: make(chan SessionID, 2),
		leaveChan:      make(chan SessionID, 2),
		done:           make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the join code used to create this match.
func (m *OnlineMatch) Code() string {
	return m.code
}

// Settings returns the match parameters.
func (m *OnlineMatch) Settings() MatchSettings {
	return m.settings
}

// Session returns the session in a seat.
func (m *OnlineMatch) Session(seat int) SessionHandle {
	return m.seats[seat]
}

// SeatOf returns the seat of a session, or NoSeat.
func (m *OnlineMatch) SeatOf(id SessionID) int {
	for i, s := range m.seats {
		if s.ID() == id {
			return i
		}
	}
	return NoSeat
}

// StartedEvent builds the start notification for a seat.
func (m *OnlineMatch) StartedEvent(seat int) MatchStartedEvent {
	return MatchStartedEvent{
		MatchID: m.id,
		Seat:    seat,
		First:   m.settings.First,
		Seed:    m.settings.Seed,
		Mode:    m.settings.Mode,
		Rows:    m.settings.Rows,
		Cols:    m.settings.Cols,
		Names:   [2]string{m.seats[0].Name(), m.seats[1].Name()},
	}
}

// Submit queues a command from a seat. Commands are never dropped; a
// sender that outruns the relay blocks until the match catches up or ends.
func (m *OnlineMatch) Submit(seat int, cmd engine.Command) {
	m.enqueue(seatInput{seat: seat, cmd: cmd})
}

// RequestRandom queues a random batch request from a seat.
func (m *OnlineMatch) RequestRandom(from, seat, batch int) {
	m.enqueue(seatInput{seat: from, stream: seat, batch: batch})
}

func (m *OnlineMatch) enqueue(in seatInput) {
	select {
	case m.inputChan <- in:
	case <-m.done:
	}
}

// PlayerDisconnected signals that a player has disconnected.
func (m *OnlineMatch) PlayerDisconnected(sessionID SessionID) {
	select {
	case m.disconnectChan <- sessionID:
	default:
	}
}

// PlayerLeft signals that a player quit the match on purpose.
func (m *OnlineMatch) PlayerLeft(sessionID SessionID) {
	select {
	case m.leaveChan <- sessionID:
	default:
	}
}

// Run relays commands until the match ends, then calls onComplete once.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()
	m.started = time.Now()

	go m.monitorSessions()

	for {
		select {
		case in := <-m.inputChan:
			if result, done := m.handleInput(in); done {
				if onComplete != nil {
					onComplete(result)
				}
				return
			}

		case sessionID := <-m.disconnectChan:
			if onComplete != nil {
				onComplete(m.forfeit(sessionID, MatchEndReasonDisconnect))
			}
			return

		case sessionID := <-m.leaveChan:
			if onComplete != nil {
				onComplete(m.forfeit(sessionID, MatchEndReasonLeft))
			}
			return

		case <-m.done:
			return
		}
	}
}

func (m *OnlineMatch) handleInput(in seatInput) (MatchResult, bool) {
	if in.cmd == nil {
		if validSeat(in.stream) {
			m.seats[in.seat].Send(RandomFillEvent{
				MatchID: m.id,
				Seat:    in.stream,
				Batch:   in.batch,
				Values:  RandomBatch(m.settings.Seed, in.stream, in.batch, m.settings.RandomBatch),
			})
		}
		return MatchResult{}, false
	}

	other := m.seats[1-in.seat]
	switch c := in.cmd.(type) {
	case engine.ScoreIncrease:
		m.scores.Add(c.Type, in.seat, c.Amount)
	case engine.GameOver:
		if !validSeat(c.Winner) {
			return MatchResult{}, false
		}
		other.Send(CommandEvent{MatchID: m.id, Seat: in.seat, Command: c})
		return m.result(MatchEndReasonCompleted, c.Winner), true
	}
	other.Send(CommandEvent{MatchID: m.id, Seat: in.seat, Command: in.cmd})
	return MatchResult{}, false
}

// forfeit ends the match in favour of the seat that stayed.
func (m *OnlineMatch) forfeit(sessionID SessionID, reason MatchEndReason) MatchResult {
	winner := NoSeat
	if seat := m.SeatOf(sessionID); seat != NoSeat {
		winner = 1 - seat
	}
	return m.result(reason, winner)
}

func (m *OnlineMatch) result(reason MatchEndReason, winner int) MatchResult {
	return MatchResult{
		MatchID:  m.id,
		Reason:   reason,
		Winner:   winner,
		Bars:     m.scores.Bars(),
		Duration: time.Since(m.started),
	}
}

func (m *OnlineMatch) monitorSessions() {
	select {
	case <-m.seats[0].Done():
		m.PlayerDisconnected(m.seats[0].ID())
	case <-m.seats[1].Done():
		m.PlayerDisconnected(m.seats[1].ID())
	case <-m.done:
	}
}

// Stop ends the match loop without a result.
func (m *OnlineMatch) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}
