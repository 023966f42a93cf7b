package multiplayer

import (
	"math/rand/v2"

	"github.com/vovakirdan/via/internal/games/via/engine"
)

// RandomBatch returns batch number batch of a seat's random stream. The
// result depends only on its arguments, so both sides of a match (and a
// reconnecting client) always see the same values for the same batch.
func RandomBatch(seed int64, seat, batch, size int) []int {
	if size <= 0 || batch < 0 {
		return nil
	}
	stream := uint64(seat)<<32 | uint64(uint32(batch))
	r := rand.New(rand.NewPCG(uint64(seed), stream))
	out := make([]int, size)
	for i := range out {
		out[i] = r.IntN(engine.MaxServerRand + 1)
	}
	return out
}
