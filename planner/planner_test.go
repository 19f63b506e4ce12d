package planner

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/genetic/tracking"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/path"
	"github.com/lixenwraith/path-evolution/stage"
	"github.com/lixenwraith/path-evolution/status"
	"github.com/lixenwraith/path-evolution/vmath"
)

func emptyField(t *testing.T, w, h int) *obstacle.Field {
	t.Helper()
	f, err := obstacle.NewField(image.NewRGBA(image.Rect(0, 0, w, h)), 10)
	require.NoError(t, err)
	return f
}

// wallField paints a vertical wall across the middle of a 100×100 field
func wallField(t *testing.T) *obstacle.Field {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(img, image.Rect(45, 0, 55, 100), image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)
	f, err := obstacle.NewField(img, 10)
	require.NoError(t, err)
	return f
}

func straightEncoder(start, goal vmath.Vec2) *path.Encoder {
	return &path.Encoder{Prefix: &start, Suffix: &goal}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 12
	cfg.GeneCount = 6
	cfg.Generations = 5
	cfg.SampleStep = 0.05
	cfg.Seed = 9
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"small population", func(c *Config) { c.PopulationSize = 3 }, genetic.ErrPopulationTooSmall},
		{"no genes", func(c *Config) { c.GeneCount = 0 }, genetic.ErrEmptyGenes},
		{"odd genes", func(c *Config) { c.GeneCount = 5 }, path.ErrOddGeneCount},
		{"inverted bounds", func(c *Config) { c.LowerBound, c.UpperBound = 1, 0 }, genetic.ErrInvalidBounds},
		{"nan bound", func(c *Config) { c.LowerBound = math.NaN() }, genetic.ErrInvalidBounds},
		{"zero step", func(c *Config) { c.SampleStep = 0 }, path.ErrInvalidStep},
		{"zero footprint", func(c *Config) { c.Footprint.Width = 0 }, ErrInvalidFootprint},
		{"negative generations", func(c *Config) { c.Generations = -1 }, ErrInvalidConfig},
		{"nan start", func(c *Config) { c.Start.X = math.NaN() }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilField)

	cfg := DefaultConfig()
	cfg.PopulationSize = 2
	_, err = New(emptyField(t, 10, 10), nil, cfg)
	assert.ErrorIs(t, err, genetic.ErrPopulationTooSmall)
}

func TestSettings_Defaults(t *testing.T) {
	s := NewSettings()
	for _, o := range Objectives {
		assert.Equal(t, genetic.Minimize, s.Sense(o), o.String())
		assert.Equal(t, 1.0, s.Weight(o), o.String())
	}
	assert.False(t, s.StopOnCollision())
	assert.False(t, s.AutoDestination())

	assert.Equal(t, genetic.Maximize, s.FlipSense(ObjectiveDistance))
	assert.Equal(t, genetic.Maximize, s.Sense(ObjectiveDistance))
	assert.Equal(t, genetic.Minimize, s.FlipSense(ObjectiveDistance))
	assert.True(t, s.ToggleStopOnCollision())
	assert.False(t, s.ToggleStopOnCollision())

	table := s.Table()
	require.Len(t, table, 3)
	assert.Equal(t, tracking.MetricCollisions, table[0].Key)
	assert.Equal(t, tracking.MetricGoalDistance, table[1].Key)
	assert.Equal(t, tracking.MetricArcLength, table[2].Key)
}

func TestEvaluator_StraightLineMetrics(t *testing.T) {
	settings := NewSettings()
	enc := straightEncoder(vmath.Vec2{X: 0, Y: 0}, vmath.Vec2{X: 1, Y: 0})
	ev, err := NewEvaluator(emptyField(t, 100, 100), settings, enc, vmath.Vec2{X: 1, Y: 0}, 0.25, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)

	// Middle control point on the chord keeps the curve straight
	metrics, err := ev.Measure([]float64{0.5, 0})
	require.NoError(t, err)

	assert.Equal(t, 5.0, metrics[tracking.MetricSamples])
	assert.Zero(t, metrics[tracking.MetricCollisions])
	assert.InDelta(t, 1.0, metrics[tracking.MetricArcLength], 1e-9)
	assert.InDelta(t, 0.0, metrics[tracking.MetricGoalDistance], 1e-12)
	// 0.75 + 0.5 + 0.25 + 0
	assert.InDelta(t, 1.5, metrics[tracking.MetricGoalDistanceSum], 1e-9)

	// All minimized with unit weight: -(0 + 0 + 1); the distance sum is not scored
	assert.InDelta(t, -1.0, ev.Evaluate([]float64{0.5, 0}), 1e-9)
	assert.EqualValues(t, 1, ev.Evaluations())
}

func TestEvaluator_LiveSettings(t *testing.T) {
	settings := NewSettings()
	enc := straightEncoder(vmath.Vec2{X: 0, Y: 0}, vmath.Vec2{X: 1, Y: 0})
	ev, err := NewEvaluator(emptyField(t, 100, 100), settings, enc, vmath.Vec2{X: 1, Y: 0}, 0.25, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)

	genes := []float64{0.5, 0}
	assert.InDelta(t, -1.0, ev.Evaluate(genes), 1e-9)

	settings.FlipSense(ObjectiveArcLength)
	assert.InDelta(t, 1.0, ev.Evaluate(genes), 1e-9)

	settings.SetWeight(ObjectiveArcLength, 3)
	assert.InDelta(t, 3.0, ev.Evaluate(genes), 1e-9)
}

func TestEvaluator_CollisionsAndStop(t *testing.T) {
	settings := NewSettings()
	start, goal := vmath.Vec2{X: 0.1, Y: 0.5}, vmath.Vec2{X: 0.9, Y: 0.5}
	enc := straightEncoder(start, goal)
	ev, err := NewEvaluator(wallField(t), settings, enc, goal, 0.01, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)

	genes := []float64{0.5, 0.5}

	full, err := ev.Measure(genes)
	require.NoError(t, err)
	assert.Greater(t, full[tracking.MetricCollisions], 1.0)
	assert.Equal(t, float64(path.SampleCount(0.01)), full[tracking.MetricSamples])

	fullTrace, err := ev.Trace(genes)
	require.NoError(t, err)
	assert.Len(t, fullTrace, path.SampleCount(0.01))

	settings.SetStopOnCollision(true)

	stopped, err := ev.Measure(genes)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stopped[tracking.MetricCollisions])
	assert.Less(t, stopped[tracking.MetricSamples], full[tracking.MetricSamples])
	// Final distance is measured from the colliding sample, not the goal
	assert.Greater(t, stopped[tracking.MetricGoalDistance], 0.3)

	trace, err := ev.Trace(genes)
	require.NoError(t, err)
	assert.Len(t, trace, int(stopped[tracking.MetricSamples]))
	last := trace[len(trace)-1]
	assert.InDelta(t, 45, last.X, 10)
}

func TestEvaluator_TraceMatchesDomainSamples(t *testing.T) {
	start, goal := vmath.Vec2{X: 0.1, Y: 0.5}, vmath.Vec2{X: 0.9, Y: 0.5}
	enc := straightEncoder(start, goal)
	ev, err := NewEvaluator(emptyField(t, 200, 100), NewSettings(), enc, goal, 0.1, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)

	genes := []float64{0.5, 0.2}
	samples, err := enc.Layout(genes).Decode(0.1)
	require.NoError(t, err)

	trace, err := ev.Trace(genes)
	require.NoError(t, err)
	assert.Equal(t, path.ToDomain(samples, vmath.Vec2{X: 200, Y: 100}), trace)
}

// The same route over a shifted sub-image of the wall field collides identically
func TestEvaluator_OffsetOriginFieldMatches(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 300, 300))
	draw.Draw(base, image.Rect(245, 200, 255, 300), image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}), image.Point{}, draw.Src)
	sub := base.SubImage(image.Rect(200, 200, 300, 300))

	shifted, err := obstacle.NewField(sub, 10)
	require.NoError(t, err)

	start, goal := vmath.Vec2{X: 0.1, Y: 0.5}, vmath.Vec2{X: 0.9, Y: 0.5}
	genes := []float64{0.5, 0.5}

	ref, err := NewEvaluator(wallField(t), NewSettings(), straightEncoder(start, goal), goal, 0.01, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)
	off, err := NewEvaluator(shifted, NewSettings(), straightEncoder(start, goal), goal, 0.01, Footprint{Width: 4, Length: 8})
	require.NoError(t, err)

	want, err := ref.Measure(genes)
	require.NoError(t, err)
	got, err := off.Measure(genes)
	require.NoError(t, err)

	assert.Greater(t, want[tracking.MetricCollisions], 0.0)
	assert.Equal(t, want[tracking.MetricCollisions], got[tracking.MetricCollisions])
}

func TestEvaluator_InvalidGenesScoreWorst(t *testing.T) {
	ev, err := NewEvaluator(emptyField(t, 10, 10), NewSettings(), straightEncoder(vmath.Vec2{}, vmath.Vec2{X: 1}), vmath.Vec2{X: 1}, 0.1, Footprint{Width: 1, Length: 1})
	require.NoError(t, err)
	assert.Equal(t, -math.MaxFloat64, ev.Evaluate([]float64{0.5}))
}

func TestNewEvaluator_Errors(t *testing.T) {
	field := emptyField(t, 10, 10)
	enc := straightEncoder(vmath.Vec2{}, vmath.Vec2{X: 1})

	_, err := NewEvaluator(field, NewSettings(), enc, vmath.Vec2{}, 0, Footprint{Width: 1, Length: 1})
	assert.ErrorIs(t, err, path.ErrInvalidStep)

	_, err = NewEvaluator(field, NewSettings(), enc, vmath.Vec2{}, 0.1, Footprint{})
	assert.ErrorIs(t, err, ErrInvalidFootprint)
}

func TestPlanner_RunToCompletion(t *testing.T) {
	field := emptyField(t, 80, 60)
	st, err := stage.New(stage.Config{Lifetime: 3, Width: 80, Height: 60})
	require.NoError(t, err)

	var reports atomic.Int64
	var improvedFirst atomic.Bool
	p, err := New(field, NewSettings(), testConfig(),
		WithStage(st),
		WithObserver(func(pr Progress) {
			if reports.Add(1) == 1 {
				improvedFirst.Store(pr.Improved)
			}
		}),
	)
	require.NoError(t, err)

	run, err := p.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	assert.EqualValues(t, 5, reports.Load())
	assert.True(t, improvedFirst.Load())
	assert.Len(t, run.History(), 5)
	assert.EqualValues(t, 5, st.Frames())

	curves, scores := st.Snapshot()
	assert.Len(t, curves, 12)
	assert.Len(t, scores, 12)

	snap := p.Registry().Snapshot()
	assert.Equal(t, int64(5), snap[status.KeyGeneration])
	assert.Equal(t, PhaseDone, snap[status.KeyPhase])
	assert.Equal(t, false, snap[status.KeyRunning])

	result, err := run.Best()
	require.NoError(t, err)
	require.Len(t, result.ControlPoints, 5)
	assert.Equal(t, p.Config().Start, result.ControlPoints[0])
	assert.Equal(t, p.Config().Goal, result.ControlPoints[4])
	assert.NotEmpty(t, result.Curve)
}

func TestPlanner_StopAndCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Generations = 1_000_000

	p, err := New(emptyField(t, 50, 50), NewSettings(), cfg)
	require.NoError(t, err)

	run, err := p.Start(context.Background())
	require.NoError(t, err)

	_, err = run.Best()
	if err != nil {
		assert.ErrorIs(t, err, ErrRunInProgress)
	}

	run.Stop()
	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("solver did not stop")
	}
	require.NoError(t, run.Wait())
	assert.Equal(t, PhaseStopped, p.Registry().Snapshot()[status.KeyPhase])

	run, err = p.Start(context.Background())
	require.NoError(t, err)
	run.Cancel()
	assert.ErrorIs(t, run.Wait(), context.Canceled)
}

func TestPlanner_ParentContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Generations = 1_000_000
	p, err := New(emptyField(t, 50, 50), NewSettings(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	run, err := p.Start(ctx)
	require.NoError(t, err)
	cancel()

	err = run.Wait()
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestPlanner_AutoDestinationFreesGoal(t *testing.T) {
	settings := NewSettings()
	settings.SetAutoDestination(true)

	p, err := New(emptyField(t, 50, 50), settings, testConfig())
	require.NoError(t, err)
	run, err := p.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	result, err := run.Best()
	require.NoError(t, err)
	// Prefix + three free points, no pinned goal
	assert.Len(t, result.ControlPoints, 4)
}

// An empty field with the goal free: the best end point must approach the goal
func TestPlanner_ConvergesTowardGoal(t *testing.T) {
	settings := NewSettings()
	settings.SetAutoDestination(true)
	settings.SetWeight(ObjectiveCollisions, 0)
	settings.SetWeight(ObjectiveArcLength, 0)
	settings.SetWeight(ObjectiveDistance, 1)
	settings.SetSense(ObjectiveDistance, genetic.Minimize)

	cfg := DefaultConfig()
	cfg.PopulationSize = 50
	cfg.Generations = 30
	cfg.Start = vmath.Vec2{X: 0, Y: 0}
	cfg.Goal = vmath.Vec2{X: 1, Y: 1}
	cfg.Seed = 2024

	p, err := New(emptyField(t, 100, 100), settings, cfg)
	require.NoError(t, err)
	run, err := p.Start(context.Background())
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	// Distance is the only weighted objective, so the initial average score is
	// the negated mean goal distance of the run's own starting population
	initialStats, ok := run.InitialStats()
	require.True(t, ok)
	initial := -initialStats.AverageScore
	require.Greater(t, initial, 0.0)

	result, err := run.Best()
	require.NoError(t, err)
	assert.Less(t, result.Metrics[tracking.MetricGoalDistance], initial)

	history := run.History()
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i].BestScore, history[i-1].BestScore)
	}
}
