package planner

import (
	"sync/atomic"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/genetic/fitness"
	"github.com/lixenwraith/path-evolution/genetic/tracking"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/status"
)

// Objective names one scored path property
type Objective int

const (
	ObjectiveCollisions Objective = iota
	ObjectiveDistance
	ObjectiveArcLength
	objectiveCount
)

// Objectives lists every objective in table order
var Objectives = [...]Objective{ObjectiveCollisions, ObjectiveDistance, ObjectiveArcLength}

// Key returns the metric key scored by the objective
func (o Objective) Key() string {
	switch o {
	case ObjectiveCollisions:
		return tracking.MetricCollisions
	case ObjectiveDistance:
		return tracking.MetricGoalDistance
	case ObjectiveArcLength:
		return tracking.MetricArcLength
	}
	return ""
}

func (o Objective) String() string {
	switch o {
	case ObjectiveCollisions:
		return "collisions"
	case ObjectiveDistance:
		return "distance"
	case ObjectiveArcLength:
		return "arc"
	}
	return "unknown"
}

// Settings are the live toggles read on every evaluation
// Every field is atomic; the viewer mutates them while the solver runs
type Settings struct {
	weights  [objectiveCount]status.AtomicFloat
	minimize [objectiveCount]atomic.Bool

	stopOnCollision atomic.Bool
	autoDestination atomic.Bool
}

// NewSettings returns unit weights, every objective minimized, both switches off
func NewSettings() *Settings {
	s := &Settings{}
	s.weights[ObjectiveCollisions].Set(parameter.WeightCollisions)
	s.weights[ObjectiveDistance].Set(parameter.WeightDistance)
	s.weights[ObjectiveArcLength].Set(parameter.WeightArcLength)
	for i := range s.minimize {
		s.minimize[i].Store(true)
	}
	return s
}

func (s *Settings) SetWeight(o Objective, w float64) {
	s.weights[o].Set(w)
}

func (s *Settings) Weight(o Objective) float64 {
	return s.weights[o].Get()
}

func (s *Settings) SetSense(o Objective, sense genetic.Sense) {
	s.minimize[o].Store(sense == genetic.Minimize)
}

func (s *Settings) Sense(o Objective) genetic.Sense {
	if s.minimize[o].Load() {
		return genetic.Minimize
	}
	return genetic.Maximize
}

// FlipSense toggles the objective between minimize and maximize, returning the new sense
func (s *Settings) FlipSense(o Objective) genetic.Sense {
	for {
		old := s.minimize[o].Load()
		if s.minimize[o].CompareAndSwap(old, !old) {
			if old {
				return genetic.Maximize
			}
			return genetic.Minimize
		}
	}
}

func (s *Settings) SetStopOnCollision(on bool) {
	s.stopOnCollision.Store(on)
}

func (s *Settings) StopOnCollision() bool {
	return s.stopOnCollision.Load()
}

// ToggleStopOnCollision flips the switch and returns the new value
func (s *Settings) ToggleStopOnCollision() bool {
	for {
		old := s.stopOnCollision.Load()
		if s.stopOnCollision.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetAutoDestination frees the goal control point; takes effect on the next run
func (s *Settings) SetAutoDestination(on bool) {
	s.autoDestination.Store(on)
}

func (s *Settings) AutoDestination() bool {
	return s.autoDestination.Load()
}

// Table builds the scoring table from the current values
func (s *Settings) Table() fitness.Table {
	table := make(fitness.Table, 0, objectiveCount)
	for _, o := range Objectives {
		table = append(table, fitness.Objective{
			Key:    o.Key(),
			Weight: s.Weight(o),
			Sense:  s.Sense(o),
		})
	}
	return table
}
