package fitness

import (
	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/genetic/tracking"
)

// Objective is one row of the scoring table
type Objective struct {
	Key    string
	Weight float64
	// Sense Minimize negates the weighted term so that the sum is always maximized
	Sense genetic.Sense
}

// Term returns the signed weighted contribution of raw
func (o Objective) Term(raw float64) float64 {
	v := raw * o.Weight
	if o.Sense == genetic.Minimize {
		v = -v
	}
	return v
}

// Table is a table-driven weighted scorer, maximized by the solver
type Table []Objective

// Calculate sums the signed terms; keys missing from metrics contribute nothing
func (t Table) Calculate(metrics tracking.MetricBundle) float64 {
	var fitness float64
	for _, o := range t {
		raw, ok := metrics[o.Key]
		if !ok {
			continue
		}
		fitness += o.Term(raw)
	}
	return fitness
}

// WeightedAggregator calculates fitness as weighted sum of metric scores
// Weights come from a provider called once per Calculate, so they may change live
type WeightedAggregator struct {
	Objectives func() Table
}

func (a *WeightedAggregator) Calculate(metrics tracking.MetricBundle) float64 {
	if a.Objectives == nil {
		return 0
	}
	return a.Objectives().Calculate(metrics)
}
