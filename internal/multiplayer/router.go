package multiplayer

import (
	"sync"

	"github.com/vovakirdan/via/internal/games/via/engine"
)

// Router splits a connection's event stream. Random fills for the current
// match go straight into its StreamSource so a game blocked waiting for
// values is never waiting on its own event loop; every other event is
// forwarded in order.
type Router struct {
	mu    sync.Mutex
	match MatchID
	feed  *RandomFeed
	out   chan SessionEvent
}

// NewRouter starts routing events from a connection.
func NewRouter(conn Conn) *Router {
	r := &Router{out: make(chan SessionEvent, 64)}
	go r.run(conn.Events(), conn.Done())
	return r
}

func (r *Router) run(in <-chan SessionEvent, done <-chan struct{}) {
	defer close(r.out)
	for {
		var evt SessionEvent
		var ok bool
		select {
		case evt, ok = <-in:
			if !ok {
				return
			}
		case <-done:
			return
		}

		if fill, isFill := evt.(RandomFillEvent); isFill {
			r.mu.Lock()
			feed := r.feed
			current := r.match == fill.MatchID
			r.mu.Unlock()
			if feed != nil && current {
				feed.src.Push(fill.Seat, fill.Values...)
			}
			continue
		}

		select {
		case r.out <- evt:
		case <-done:
			return
		}
	}
}

// Events returns the forwarded events. The channel closes with the connection.
func (r *Router) Events() <-chan SessionEvent {
	return r.out
}

// Attach routes random fills of a match into feed, replacing (and closing)
// the previous one. A nil feed detaches.
func (r *Router) Attach(match MatchID, feed *RandomFeed) {
	r.mu.Lock()
	old := r.feed
	r.match, r.feed = match, feed
	r.mu.Unlock()
	if old != nil && old != feed {
		old.Close()
	}
}

// RandomFeed keeps a match's StreamSource supplied with batches from the
// coordinator. Batches of each seat are requested in order, so values are
// pushed in the order the coordinator issued them.
type RandomFeed struct {
	src  *engine.StreamSource
	conn Conn

	mu   sync.Mutex
	next [2]int
}

// NewRandomFeed creates the source for one side of a match. Attach it to
// the router before calling Start.
func NewRandomFeed(conn Conn, lowWater int) *RandomFeed {
	f := &RandomFeed{
		src:  engine.NewStreamSource(lowWater),
		conn: conn,
	}
	f.src.Refill = f.request
	return f
}

// Start requests the opening batches of both seats.
func (f *RandomFeed) Start(opening int) {
	for seat := range 2 {
		for range max(1, opening) {
			f.request(seat)
		}
	}
}

// Source returns the stream the engine draws from.
func (f *RandomFeed) Source() *engine.StreamSource {
	return f.src
}

func (f *RandomFeed) request(seat int) {
	if !validSeat(seat) {
		return
	}
	f.mu.Lock()
	batch := f.next[seat]
	f.next[seat]++
	f.mu.Unlock()
	f.conn.RequestRandom(seat, batch)
}

// Close unblocks any pending draw.
func (f *RandomFeed) Close() {
	f.src.Close()
}
