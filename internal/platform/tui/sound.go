package tui

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/via/internal/games/via/engine"
)

// Bell is an engine.SoundPlayer that rings the terminal bell on matches
// and at the end of a game. Cues are written from a goroutine so Play
// never blocks the update loop; cues that arrive while the queue is full
// are dropped.
type Bell struct {
	out    io.Writer
	logger *log.Logger

	cues chan engine.SoundEvent
	done chan struct{}
	once sync.Once
}

var _ engine.SoundPlayer = (*Bell)(nil)

// NewBell starts a bell writing to out. logger may be nil.
func NewBell(out io.Writer, logger *log.Logger) *Bell {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &Bell{
		out:    out,
		logger: logger,
		cues:   make(chan engine.SoundEvent, 8),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Play queues a cue.
func (b *Bell) Play(e engine.SoundEvent) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.cues <- e:
	default:
	}
}

// Close stops the bell.
func (b *Bell) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bell) run() {
	for {
		select {
		case e := <-b.cues:
			b.logger.Debug("sound", "cue", e)
			if !rings(e) {
				continue
			}
			if _, err := io.WriteString(b.out, "\a"); err != nil {
				b.logger.Debug("bell write failed", "err", err)
			}
		case <-b.done:
			return
		}
	}
}

// rings reports whether a cue is audible. Swaps are too frequent to ring.
func rings(e engine.SoundEvent) bool {
	switch e {
	case engine.SoundMatch, engine.SoundWin, engine.SoundLose:
		return true
	}
	return false
}
