package planner

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/lixenwraith/path-evolution/genetic/fitness"
	"github.com/lixenwraith/path-evolution/genetic/tracking"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/path"
	"github.com/lixenwraith/path-evolution/vmath"
)

var ErrInvalidFootprint = errors.New("footprint dimensions must be positive")

// Footprint is the vehicle box tested at every sample, in pixels
// Length runs along the heading, Width across it
type Footprint struct {
	Width  float64
	Length float64
}

// Bounds returns the axis-aligned box of the footprint centred on pos facing heading
func (f Footprint) Bounds(pos vmath.Vec2, heading float64) vmath.RectF {
	return vmath.OrientedBounds(pos, f.Length, f.Width, heading)
}

// Evaluator scores gene vectors by walking their sampled curve through the field
// Read-only after construction; safe for concurrent Evaluate calls
type Evaluator struct {
	field     *obstacle.Field
	settings  *Settings
	encoder   *path.Encoder
	goal      vmath.Vec2
	size      vmath.Vec2
	step      float64
	footprint Footprint

	collectors  *tracking.CollectorPool
	aggregator  fitness.Aggregator
	evaluations atomic.Int64
}

// NewEvaluator validates step and footprint; goal is in normalized coordinates
func NewEvaluator(field *obstacle.Field, settings *Settings, encoder *path.Encoder, goal vmath.Vec2, step float64, footprint Footprint) (*Evaluator, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", path.ErrInvalidStep, step)
	}
	if !(footprint.Width > 0) || !(footprint.Length > 0) {
		return nil, fmt.Errorf("%w: got %vx%v", ErrInvalidFootprint, footprint.Width, footprint.Length)
	}

	return &Evaluator{
		field:      field,
		settings:   settings,
		encoder:    encoder,
		goal:       goal,
		size:       field.Size(),
		step:       step,
		footprint:  footprint,
		collectors: tracking.NewCollectorPool(0),
		aggregator: &fitness.WeightedAggregator{Objectives: settings.Table},
	}, nil
}

// walk samples the curve of genes and feeds every processed sample to the collector
// Sampling ends early once a collision is counted and stop-on-collision is on
// visit, when set, receives each processed sample in domain coordinates
func (e *Evaluator) walk(genes []float64, visit func(vmath.Vec2)) (tracking.MetricBundle, error) {
	samples, err := e.encoder.Layout(genes).Decode(e.step)
	if err != nil {
		return nil, err
	}

	stop := e.settings.StopOnCollision()
	c := e.collectors.Acquire(e.goal)
	defer e.collectors.Release(c)

	domain := path.ToDomain(samples, e.size)

	var prev vmath.Vec2
	for i, p := range samples {
		pos := domain[i]

		collided := false
		if i > 0 {
			box := e.footprint.Bounds(pos, vmath.V2Heading(prev, pos))
			collided = e.field.Collides(box)
		}
		c.Observe(p, collided)

		if visit != nil {
			visit(pos)
		}
		if stop && c.Collisions() > 0 {
			break
		}
		prev = pos
	}

	return c.Finalize(), nil
}

// Measure returns the raw metric bundle for genes
func (e *Evaluator) Measure(genes []float64) (tracking.MetricBundle, error) {
	return e.walk(genes, nil)
}

// Evaluate is the solver objective: the weighted, sense-signed metric sum
// Undecodable genes score as the worst finite value
func (e *Evaluator) Evaluate(genes []float64) float64 {
	e.evaluations.Add(1)
	metrics, err := e.walk(genes, nil)
	if err != nil {
		return -math.MaxFloat64
	}
	return e.aggregator.Calculate(metrics)
}

// Trace returns the processed samples of genes in domain coordinates
// With stop-on-collision on, the trace ends at the first colliding sample
func (e *Evaluator) Trace(genes []float64) ([]vmath.Vec2, error) {
	trace := make([]vmath.Vec2, 0, path.SampleCount(e.step))
	_, err := e.walk(genes, func(p vmath.Vec2) {
		trace = append(trace, p)
	})
	if err != nil {
		return nil, err
	}
	return trace, nil
}

// Evaluations returns how many objective calls have been made
func (e *Evaluator) Evaluations() int64 {
	return e.evaluations.Load()
}

// Goal returns the normalized goal
func (e *Evaluator) Goal() vmath.Vec2 {
	return e.goal
}
