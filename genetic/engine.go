package genetic

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/path-evolution/parameter"
)

// --- Algorithm Engine ---

// Engine drives a DifferentialEvolver generation by generation
// It owns the solver loop and the running flag shared with the display task
type Engine struct {
	evolver *DifferentialEvolver
	config  EngineConfig

	hooksMu sync.Mutex
	hooks   []GenerationHook[[]float64, float64]

	running atomic.Bool

	historyMu sync.Mutex
	history   []PoolStats[float64]
}

// EngineConfig holds configuration parameters for the solver loop
type EngineConfig struct {
	// MaxIterations is the maximum number of generations to run
	MaxIterations int
}

// DefaultConfig returns the default generation cap
func DefaultConfig() EngineConfig {
	return EngineConfig{
		MaxIterations: parameter.DEGenerations,
	}
}

// NewEngine wraps an initialized evolver; the running flag starts set
func NewEngine(evolver *DifferentialEvolver, config EngineConfig) *Engine {
	e := &Engine{
		evolver: evolver,
		config:  config,
		history: make([]PoolStats[float64], 0, max(config.MaxIterations, 0)),
	}
	e.running.Store(true)
	return e
}

// OnGeneration registers a hook called after every completed generation
// Hooks run on the solver goroutine in registration order
func (e *Engine) OnGeneration(hook GenerationHook[[]float64, float64]) {
	e.hooksMu.Lock()
	e.hooks = append(e.hooks, hook)
	e.hooksMu.Unlock()
}

// Run executes generations until the cap, cancellation or Stop
// Flags are checked once per generation boundary; a generation in flight completes
// Returns ctx.Err() on cancellation, nil otherwise
func (e *Engine) Run(ctx context.Context) error {
	e.hooksMu.Lock()
	hooks := append([]GenerationHook[[]float64, float64](nil), e.hooks...)
	e.hooksMu.Unlock()

	for iteration := 0; iteration < e.config.MaxIterations; iteration++ {
		select {
		case <-ctx.Done():
			e.running.Store(false)
			e.evolver.Stop()
			return ctx.Err()
		default:
		}

		if !e.running.Load() {
			break
		}

		if err := e.evolver.Improve(); err != nil {
			if errors.Is(err, ErrStopped) {
				break
			}
			return err
		}

		e.historyMu.Lock()
		e.history = append(e.history, e.evolver.Stats())
		e.historyMu.Unlock()

		for _, hook := range hooks {
			hook(e.evolver.pool)
		}
	}

	e.running.Store(false)
	e.evolver.Stop()
	return nil
}

// Stop clears the running flag; idempotent and safe from any goroutine
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports the state of the running flag
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Evolver returns the driven evolver
func (e *Engine) Evolver() *DifferentialEvolver {
	return e.evolver
}

// History returns a copy of the per-generation statistics
func (e *Engine) History() []PoolStats[float64] {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	return append([]PoolStats[float64](nil), e.history...)
}

// Best returns the best individual of the current population
func (e *Engine) Best() (Individual, error) {
	return e.evolver.Best()
}
