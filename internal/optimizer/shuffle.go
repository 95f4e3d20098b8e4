package optimizer

import (
	"math"

	"wealthtrack/internal/core"
)

// prng is the sine-based pseudo-random generator used for the display
// rotation. It is intentionally simple: given the same seed it replays the
// same sequence, which makes each rotation reproducible.
type prng struct {
	seed float64
}

func (p *prng) next() float64 {
	x := math.Sin(p.seed) * 10000
	p.seed++
	return x - math.Floor(x)
}

// Shuffle returns a Fisher-Yates permutation of in driven by the seeded
// sine generator. The input slice is not modified.
func Shuffle(in []core.OptimizationSuggestion, seed int) []core.OptimizationSuggestion {
	out := append([]core.OptimizationSuggestion(nil), in...)
	p := prng{seed: float64(seed)}
	for m := len(out); m > 0; {
		i := int(p.next() * float64(m))
		m--
		out[m], out[i] = out[i], out[m]
	}
	return out
}
