// Package planner wires the obstacle field, path encoding, scoring, evolver and
// stage into a cancellable solver run
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/genetic/tracking"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/path"
	"github.com/lixenwraith/path-evolution/stage"
	"github.com/lixenwraith/path-evolution/status"
	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrNilField      = errors.New("obstacle field is nil")
	ErrInvalidConfig = errors.New("invalid planner configuration")
	ErrSolverPanic   = errors.New("solver panicked")
	ErrRunInProgress = errors.New("run still in progress")
)

// Phase values written to status.KeyPhase
const (
	PhaseEvolving = "evolving"
	PhaseStopped  = "stopped"
	PhaseDone     = "done"
	PhaseFailed   = "failed"
)

// Config holds the per-run solver parameters
type Config struct {
	PopulationSize int
	GeneCount      int
	Generations    int
	LowerBound     float64
	UpperBound     float64
	ScaleFactor    float64
	CrossoverRate  float64
	Parallelism    int
	Seed           uint64

	SampleStep float64
	Footprint  Footprint

	// Start and Goal are normalized to [0,1]²
	Start vmath.Vec2
	Goal  vmath.Vec2
}

// DefaultConfig returns the tuned defaults
func DefaultConfig() Config {
	return Config{
		PopulationSize: parameter.DEPopulationSize,
		GeneCount:      parameter.DEGeneCount,
		Generations:    parameter.DEGenerations,
		LowerBound:     parameter.DEGeneLowerBound,
		UpperBound:     parameter.DEGeneUpperBound,
		ScaleFactor:    parameter.DEScaleFactor,
		CrossoverRate:  parameter.DECrossoverRate,
		Parallelism:    parameter.DEParallelism,
		SampleStep:     parameter.SampleStep,
		Footprint:      Footprint{Width: parameter.FootprintWidth, Length: parameter.FootprintLength},
		Start:          vmath.Vec2{X: parameter.StartX, Y: parameter.StartY},
		Goal:           vmath.Vec2{X: parameter.GoalX, Y: parameter.GoalY},
	}
}

// Validate checks what the evolver and evaluator would reject later
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < parameter.DEMinPopulationSize:
		return fmt.Errorf("%w: population %d", genetic.ErrPopulationTooSmall, c.PopulationSize)
	case c.GeneCount <= 0:
		return genetic.ErrEmptyGenes
	case c.GeneCount%2 != 0:
		return fmt.Errorf("%w: %d", path.ErrOddGeneCount, c.GeneCount)
	case c.Generations < 0:
		return fmt.Errorf("%w: negative generation cap %d", ErrInvalidConfig, c.Generations)
	case !finite(c.LowerBound) || !finite(c.UpperBound) || c.LowerBound > c.UpperBound:
		return fmt.Errorf("%w: [%v, %v]", genetic.ErrInvalidBounds, c.LowerBound, c.UpperBound)
	case !finite(c.SampleStep) || c.SampleStep <= 0:
		return fmt.Errorf("%w: got %v", path.ErrInvalidStep, c.SampleStep)
	case !(c.Footprint.Width > 0) || !(c.Footprint.Length > 0):
		return ErrInvalidFootprint
	case !vmath.V2Finite(c.Start) || !vmath.V2Finite(c.Goal):
		return fmt.Errorf("%w: non-finite endpoint", ErrInvalidConfig)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Progress is reported to observers after every generation
type Progress struct {
	Generation   int
	Best         float64
	Average      float64
	Worst        float64
	BestDistance float64
	// Improved is set when Best beats every earlier generation of the run
	Improved bool
}

// Observer receives progress on the solver goroutine; it must not block
type Observer func(Progress)

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger; nil keeps the discard logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRegistry publishes run metrics into r
func WithRegistry(r *status.Registry) Option {
	return func(p *Planner) { p.registry = r }
}

// WithStage pushes every generation into s
func WithStage(s *stage.Stage) Option {
	return func(p *Planner) { p.stage = s }
}

// WithObserver adds a per-generation observer
func WithObserver(o Observer) Option {
	return func(p *Planner) { p.observers = append(p.observers, o) }
}

// Planner starts solver runs over one obstacle field
type Planner struct {
	field    *obstacle.Field
	settings *Settings
	config   Config

	logger    *slog.Logger
	registry  *status.Registry
	stage     *stage.Stage
	observers []Observer
}

// New validates the configuration; no goroutine is started
func New(field *obstacle.Field, settings *Settings, config Config, opts ...Option) (*Planner, error) {
	if field == nil {
		return nil, ErrNilField
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if settings == nil {
		settings = NewSettings()
	}

	p := &Planner{
		field:    field,
		settings: settings,
		config:   config,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: status.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Settings returns the live settings shared with the viewer
func (p *Planner) Settings() *Settings {
	return p.settings
}

// Registry returns the metrics registry
func (p *Planner) Registry() *status.Registry {
	return p.registry
}

// Config returns the run configuration
func (p *Planner) Config() Config {
	return p.config
}

// Result is the best individual of a run with its decoded geometry
type Result struct {
	Genes         []float64
	ControlPoints []vmath.Vec2
	// Curve is the processed trace in domain coordinates
	Curve   []vmath.Vec2
	Fitness float64
	Metrics tracking.MetricBundle
}

// Run is the handle of one solver goroutine
type Run struct {
	engine    *genetic.Engine
	evaluator *Evaluator
	encoder   *path.Encoder
	cancel    context.CancelFunc
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Start initializes a fresh population and launches the solver goroutine
// The automatic destination switch is read here: when on, the goal is not pinned
func (p *Planner) Start(ctx context.Context) (*Run, error) {
	start := p.config.Start
	goal := p.config.Goal

	encoder := &path.Encoder{Prefix: &start}
	if !p.settings.AutoDestination() {
		encoder.Suffix = &goal
	}

	evaluator, err := NewEvaluator(p.field, p.settings, encoder, goal, p.config.SampleStep, p.config.Footprint)
	if err != nil {
		return nil, err
	}

	evolver := genetic.NewDifferentialEvolver(genetic.DEConfig{
		ScaleFactor:   p.config.ScaleFactor,
		CrossoverRate: p.config.CrossoverRate,
		Sense:         genetic.Maximize,
		Parallelism:   p.config.Parallelism,
		Seed:          p.config.Seed,
	})
	prefix, suffix := encoder.Flatten()
	if err := evolver.Initialize(p.config.PopulationSize, p.config.GeneCount, p.config.LowerBound, p.config.UpperBound, prefix, suffix); err != nil {
		return nil, fmt.Errorf("initialize population: %w", err)
	}
	evolver.SetObjective(evaluator.Evaluate)

	engine := genetic.NewEngine(evolver, genetic.EngineConfig{MaxIterations: p.config.Generations})

	ctx, cancel := context.WithCancel(ctx)
	run := &Run{
		engine:    engine,
		evaluator: evaluator,
		encoder:   encoder,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	engine.OnGeneration(p.generationHook(evaluator))

	p.registry.Bools.Get(status.KeyRunning).Store(true)
	p.registry.Strings.Get(status.KeyPhase).Store(PhaseEvolving)
	p.logger.Info("solver started",
		"population", p.config.PopulationSize,
		"genes", p.config.GeneCount,
		"generations", p.config.Generations,
		"auto_destination", encoder.Suffix == nil,
	)

	go p.solve(ctx, run)

	return run, nil
}

// solve runs on the solver goroutine; panics become ErrSolverPanic
func (p *Planner) solve(ctx context.Context, run *Run) {
	defer close(run.done)
	defer run.cancel()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("solver panic", "panic", r, "stack", string(debug.Stack()))
			run.setErr(fmt.Errorf("%w: %v", ErrSolverPanic, r))
			p.finish(PhaseFailed)
		}
	}()

	err := run.engine.Run(ctx)
	run.setErr(err)

	generations := len(run.engine.History())
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		p.logger.Error("solver failed", "error", err, "generation", generations)
		p.finish(PhaseFailed)
	case generations >= p.config.Generations:
		p.logger.Info("solver finished", "generation", generations, "evaluations", run.evaluator.Evaluations())
		p.finish(PhaseDone)
	default:
		p.logger.Info("solver stopped", "generation", generations)
		p.finish(PhaseStopped)
	}
}

func (p *Planner) finish(phase string) {
	p.registry.Bools.Get(status.KeyRunning).Store(false)
	p.registry.Strings.Get(status.KeyPhase).Store(phase)
}

// generationHook traces every individual, publishes to the stage and reports progress
func (p *Planner) generationHook(evaluator *Evaluator) genetic.GenerationHook[[]float64, float64] {
	generation := p.registry.Ints.Get(status.KeyGeneration)
	evaluations := p.registry.Ints.Get(status.KeyEvaluations)
	best := p.registry.Floats.Get(status.KeyBestFitness)
	avg := p.registry.Floats.Get(status.KeyAvgFitness)
	worst := p.registry.Floats.Get(status.KeyWorstFitness)
	bestDistance := p.registry.Floats.Get(status.KeyBestDistance)

	bestSoFar := math.Inf(-1)

	return func(pool *genetic.Pool[[]float64, float64]) {
		stats := pool.Stats

		if p.stage != nil {
			curves := make([][]vmath.Vec2, len(pool.Members))
			scores := make([]float64, len(pool.Members))
			for i, m := range pool.Members {
				curve, err := evaluator.Trace(m.Data)
				if err != nil {
					p.logger.Warn("trace failed", "individual", i, "error", err)
				}
				curves[i] = curve
				scores[i] = m.Score
			}
			if err := p.stage.Update(curves, scores); err != nil {
				p.logger.Warn("stage update failed", "error", err)
			}
		}

		distance := math.NaN()
		if metrics, err := evaluator.Measure(pool.Members[stats.BestIndex].Data); err == nil {
			distance = metrics.Get(tracking.MetricGoalDistance, math.NaN())
		}

		generation.Store(int64(stats.Generation))
		evaluations.Store(evaluator.Evaluations())
		best.Set(stats.BestScore)
		avg.Set(stats.AverageScore)
		worst.Set(stats.WorstScore)
		bestDistance.Set(distance)

		progress := Progress{
			Generation:   stats.Generation,
			Best:         stats.BestScore,
			Average:      stats.AverageScore,
			Worst:        stats.WorstScore,
			BestDistance: distance,
			Improved:     stats.BestScore > bestSoFar,
		}
		if progress.Improved {
			bestSoFar = stats.BestScore
			p.logger.Debug("best improved", "generation", stats.Generation, "fitness", stats.BestScore, "distance", distance)
		}

		for _, o := range p.observers {
			o(progress)
		}
	}
}

func (r *Run) setErr(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Stop requests the solver to halt at the next generation boundary
func (r *Run) Stop() {
	r.engine.Stop()
}

// Cancel cancels the run context; equivalent to Stop but also reported by Wait
func (r *Run) Cancel() {
	r.cancel()
}

// Done is closed when the solver goroutine exits
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the solver goroutine exits and returns its error
// Cancellation surfaces as context.Canceled
func (r *Run) Wait() error {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// History returns per-generation statistics so far
func (r *Run) History() []genetic.PoolStats[float64] {
	return r.engine.History()
}

// InitialStats returns the statistics of the population the run started from
// ok is false while the run is in progress or when no generation was scored
func (r *Run) InitialStats() (genetic.PoolStats[float64], bool) {
	select {
	case <-r.done:
	default:
		return genetic.PoolStats[float64]{}, false
	}
	return r.engine.Evolver().InitialStats()
}

// Evaluator returns the run's evaluator
func (r *Run) Evaluator() *Evaluator {
	return r.evaluator
}

// Best decodes the best individual; call after Wait
func (r *Run) Best() (Result, error) {
	select {
	case <-r.done:
	default:
		return Result{}, ErrRunInProgress
	}

	ind, err := r.engine.Best()
	if err != nil {
		return Result{}, err
	}
	curve, err := r.evaluator.Trace(ind.Data)
	if err != nil {
		return Result{}, err
	}
	metrics, err := r.evaluator.Measure(ind.Data)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Genes:         slices.Clone(ind.Data),
		ControlPoints: r.encoder.Decode(ind.Data),
		Curve:         curve,
		Fitness:       ind.Score,
		Metrics:       metrics,
	}, nil
}
