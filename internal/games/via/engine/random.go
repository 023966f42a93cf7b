package engine

import (
	"math/rand/v2"
	"sync"
)

// Source produces the random numbers that drive board generation, refills
// and shuffles. Next returns a value in [lo, hi) from the stream of the
// given seat. Two sides of a match that feed identical streams to a seat's
// board observe identical boards.
type Source interface {
	Next(seat, lo, hi int) int
}

// Rand is a Source bound to a single seat; boards draw from it.
type Rand interface {
	Next(lo, hi int) int
}

// SeatRand binds a Source to one seat.
type SeatRand struct {
	Src  Source
	Seat int
}

// Next returns a value in [lo, hi) from the bound seat's stream.
func (r SeatRand) Next(lo, hi int) int {
	return r.Src.Next(r.Seat, lo, hi)
}

// LocalSource keeps one PCG stream per seat derived from a shared seed.
type LocalSource struct {
	seed    uint64
	streams map[int]*rand.Rand
}

// NewLocalSource creates a local source. Every seat's stream is a pure
// function of seed and seat.
func NewLocalSource(seed int64) *LocalSource {
	return &LocalSource{
		seed:    uint64(seed),
		streams: make(map[int]*rand.Rand),
	}
}

// Next returns a value in [lo, hi) from the seat's stream.
func (s *LocalSource) Next(seat, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	r, ok := s.streams[seat]
	if !ok {
		r = rand.New(rand.NewPCG(s.seed, uint64(seat)+1))
		s.streams[seat] = r
	}
	return lo + r.IntN(hi-lo)
}

// MaxServerRand is the largest value a server-issued random stream contains.
const MaxServerRand = 60000

// ScaleServerRand maps a server value in [0, MaxServerRand] into [lo, hi).
func ScaleServerRand(v, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v = min(max(v, 0), MaxServerRand)
	return lo + v*(hi-lo)/(MaxServerRand+1)
}

// StreamSource replays random values issued by a server, one queue per
// seat. Next blocks while a seat's queue is empty. When a queue drops to
// the low-water mark the Refill callback is invoked (at most once until the
// next Push for that seat) so the owner can request another batch.
type StreamSource struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queues   map[int][]int
	pending  map[int]bool
	lowWater int
	closed   bool

	// Refill is called without the lock held, from the goroutine calling Next.
	Refill func(seat int)
}

// NewStreamSource creates a stream source that asks for more values once
// fewer than lowWater remain for a seat.
func NewStreamSource(lowWater int) *StreamSource {
	s := &StreamSource{
		queues:   make(map[int][]int),
		pending:  make(map[int]bool),
		lowWater: lowWater,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Push appends server values to a seat's queue.
func (s *StreamSource) Push(seat int, values ...int) {
	s.mu.Lock()
	s.queues[seat] = append(s.queues[seat], values...)
	s.pending[seat] = false
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Buffered returns how many values are queued for a seat.
func (s *StreamSource) Buffered(seat int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[seat])
}

// Close wakes every blocked Next; subsequent calls return lo.
func (s *StreamSource) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Next pops one value from the seat's queue and scales it into [lo, hi).
func (s *StreamSource) Next(seat, lo, hi int) int {
	s.mu.Lock()
	refill := s.lowOn(seat)
	for len(s.queues[seat]) == 0 && !s.closed {
		if refill {
			s.mu.Unlock()
			s.requestRefill(seat)
			s.mu.Lock()
			refill = false
		}
		s.cond.Wait()
	}
	if s.closed && len(s.queues[seat]) == 0 {
		s.mu.Unlock()
		return lo
	}
	q := s.queues[seat]
	v := q[0]
	s.queues[seat] = q[1:]
	refill = refill || s.lowOn(seat)
	s.mu.Unlock()

	if refill {
		s.requestRefill(seat)
	}
	return ScaleServerRand(v, lo, hi)
}

// lowOn marks a refill as pending when the queue is at or below low water.
// Caller holds the lock.
func (s *StreamSource) lowOn(seat int) bool {
	if s.pending[seat] || len(s.queues[seat]) > s.lowWater {
		return false
	}
	s.pending[seat] = true
	return true
}

func (s *StreamSource) requestRefill(seat int) {
	if s.Refill != nil {
		s.Refill(seat)
	}
}
