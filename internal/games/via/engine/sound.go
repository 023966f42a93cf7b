package engine

// SoundEvent is a cue the engine emits for the audio collaborator.
type SoundEvent int

const (
	SoundSwap SoundEvent = iota
	SoundMatch
	SoundWin
	SoundLose
)

func (e SoundEvent) String() string {
	switch e {
	case SoundSwap:
		return "swap"
	case SoundMatch:
		return "match"
	case SoundWin:
		return "win"
	case SoundLose:
		return "lose"
	default:
		return "unknown"
	}
}

// SoundPlayer plays cues. Play must not block; the engine never waits for it.
type SoundPlayer interface {
	Play(SoundEvent)
}

// NopSound discards every cue.
type NopSound struct{}

func (NopSound) Play(SoundEvent) {}
