package genetic

// Package genetic provides a real-coded evolutionary optimizer
// 1. Has zero knowledge of paths, obstacles or rendering
// 2. Evolves a flat float64 gene vector under ParameterBounds
// 3. Takes its objective as an EvaluatorFunc installed by the caller
// 4. Exposes per-generation observation through GenerationHook instead of polling

import (
	"math/rand/v2"
)

// --- Differential Evolution Operators ---

// RandOneMutator implements DE/rand/1 donor construction
// donor = a + F·(b − c) with a, b, c distinct from each other and the target
type RandOneMutator struct {
	// ScaleFactor is F, the multiplier applied to the difference vector
	ScaleFactor float64
}

// Mutate implements the Mutator interface
// Pool must hold at least 4 members; DifferentialEvolver enforces this at Initialize
func (m *RandOneMutator) Mutate(pool *Pool[[]float64, float64], target int, rng *rand.Rand) []float64 {
	a, b, c := pickDistinct(len(pool.Members), target, rng)

	va := pool.Members[a].Data
	vb := pool.Members[b].Data
	vc := pool.Members[c].Data

	donor := make([]float64, len(va))
	for i := range donor {
		donor[i] = va[i] + m.ScaleFactor*(vb[i]-vc[i])
	}
	return donor
}

// pickDistinct draws three indices in [0, n) distinct from each other and from exclude
func pickDistinct(n, exclude int, rng *rand.Rand) (a, b, c int) {
	a = rng.IntN(n)
	for a == exclude {
		a = rng.IntN(n)
	}
	b = rng.IntN(n)
	for b == exclude || b == a {
		b = rng.IntN(n)
	}
	c = rng.IntN(n)
	for c == exclude || c == a || c == b {
		c = rng.IntN(n)
	}
	return a, b, c
}

// BinomialCombiner performs DE binomial crossover
// Each gene comes from the donor with probability CrossoverRate; one randomly
// chosen gene always comes from the donor so the trial never equals the target
type BinomialCombiner struct {
	// CrossoverRate is CR, the per-gene probability of taking the donor value
	CrossoverRate float64
}

// Combine implements the Combiner interface
func (bc *BinomialCombiner) Combine(target, donor []float64, rng *rand.Rand) []float64 {
	length := min(len(target), len(donor))
	trial := make([]float64, length)
	if length == 0 {
		return trial
	}

	forced := rng.IntN(length)
	for i := 0; i < length; i++ {
		if i == forced || rng.Float64() < bc.CrossoverRate {
			trial[i] = donor[i]
		} else {
			trial[i] = target[i]
		}
	}
	return trial
}
