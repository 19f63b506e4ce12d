package fitness

import (
	"gonum.org/v1/gonum/floats"

	"github.com/lixenwraith/path-evolution/genetic/tracking"
)

// Aggregator calculates fitness score from collected metrics
type Aggregator interface {
	Calculate(metrics tracking.MetricBundle) float64
}

// NormalizeFunc converts a raw metric to a 0-1 score
type NormalizeFunc func(raw float64) float64

// NormalizeLinear creates a linear normalizer over [min, max]
// A degenerate range maps every value to 1
func NormalizeLinear(min, max float64) NormalizeFunc {
	rangeVal := max - min
	if rangeVal <= 0 {
		return func(raw float64) float64 { return 1 }
	}
	return func(raw float64) float64 {
		v := (raw - min) / rangeVal
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
}

// NormalizeSet maps every value linearly onto [0, 1] using the set's own extremes
// Empty input returns nil; a set with min == max maps to all ones
func NormalizeSet(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	norm := NormalizeLinear(floats.Min(values), floats.Max(values))
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = norm(v)
	}
	return out
}
