package genetic

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// ParameterBounds defines min/max for a single parameter
type ParameterBounds struct {
	Min, Max float64
}

// Bounds holds one ParameterBounds per gene
type Bounds []ParameterBounds

// UniformBounds returns n identical bounds
func UniformBounds(n int, lo, hi float64) Bounds {
	b := make(Bounds, n)
	for i := range b {
		b[i] = ParameterBounds{Min: lo, Max: hi}
	}
	return b
}

// Validate rejects empty, non-finite or inverted bounds
func (b Bounds) Validate() error {
	if len(b) == 0 {
		return ErrEmptyGenes
	}
	for i, pb := range b {
		if math.IsNaN(pb.Min) || math.IsInf(pb.Min, 0) || math.IsNaN(pb.Max) || math.IsInf(pb.Max, 0) {
			return fmt.Errorf("%w: gene %d has non-finite bounds [%v, %v]", ErrInvalidBounds, i, pb.Min, pb.Max)
		}
		if pb.Min > pb.Max {
			return fmt.Errorf("%w: gene %d has min %v above max %v", ErrInvalidBounds, i, pb.Min, pb.Max)
		}
	}
	return nil
}

// Clamp enforces bounds in place
// Genes beyond len(b) are left untouched
func (b Bounds) Clamp(solution []float64) {
	for i, v := range solution {
		if i >= len(b) {
			break
		}
		bounds := b[i]
		if v < bounds.Min {
			solution[i] = bounds.Min
		} else if v > bounds.Max {
			solution[i] = bounds.Max
		}
	}
}

// Contains reports whether every gene lies inside its bounds
func (b Bounds) Contains(solution []float64) bool {
	for i, v := range solution {
		if i >= len(b) {
			break
		}
		if v < b[i].Min || v > b[i].Max {
			return false
		}
	}
	return true
}

// Sample draws each gene uniformly from its bounds
func (b Bounds) Sample(rng *rand.Rand) []float64 {
	genes := make([]float64, len(b))
	for i, pb := range b {
		genes[i] = pb.Min + rng.Float64()*(pb.Max-pb.Min)
	}
	return genes
}
