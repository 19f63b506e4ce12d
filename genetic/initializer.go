package genetic

import (
	"math/rand/v2"
)

// UniformInitializer draws every gene uniformly from its bounds
func UniformInitializer(bounds Bounds) InitializerFunc[[]float64] {
	return func(rng *rand.Rand) []float64 {
		return bounds.Sample(rng)
	}
}

// newRand returns a PCG-backed generator; seed 0 draws a random seed
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
