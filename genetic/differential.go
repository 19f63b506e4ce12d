package genetic

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	workpool "github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/lixenwraith/path-evolution/parameter"
)

var (
	ErrPopulationTooSmall = errors.New("population too small")
	ErrEmptyGenes         = errors.New("gene vector is empty")
	ErrInvalidBounds      = errors.New("invalid gene bounds")
	ErrNoObjective        = errors.New("objective function not set")
	ErrNotInitialized     = errors.New("evolver not initialized")
	ErrStopped            = errors.New("evolver stopped")
)

// EvolverState is the lifecycle position of a DifferentialEvolver
type EvolverState int32

const (
	// StateInitialized is a configured evolver without a population
	StateInitialized EvolverState = iota
	// StateEvolving accepts Improve calls
	StateEvolving
	// StateStopped rejects further Improve calls
	StateStopped
)

func (s EvolverState) String() string {
	switch s {
	case StateEvolving:
		return "evolving"
	case StateStopped:
		return "stopped"
	default:
		return "initialized"
	}
}

// DEConfig holds differential evolution parameters
type DEConfig struct {
	// ScaleFactor is F in donor = a + F·(b − c)
	ScaleFactor float64
	// CrossoverRate is CR for binomial crossover
	CrossoverRate float64
	// Sense decides which of two scores is better during greedy selection
	Sense Sense
	// Parallelism bounds concurrent trial evaluations (<=1 evaluates inline)
	Parallelism int
	// Seed for random number generation (0 for random seed)
	Seed uint64
}

// DefaultDEConfig returns the tuned defaults
func DefaultDEConfig() DEConfig {
	return DEConfig{
		ScaleFactor:   parameter.DEScaleFactor,
		CrossoverRate: parameter.DECrossoverRate,
		Sense:         Maximize,
		Parallelism:   parameter.DEParallelism,
	}
}

// DifferentialEvolver runs DE/rand/1/bin over a fixed-size real-coded population
// Not safe for concurrent use: one goroutine owns Initialize/Improve, readers
// take copies through Population/Best after Improve returns
type DifferentialEvolver struct {
	mutator   Mutator[[]float64, float64]
	combiner  Combiner[[]float64]
	objective EvaluatorFunc[[]float64, float64]

	config DEConfig
	rng    *rand.Rand
	bounds Bounds

	pool   *Pool[[]float64, float64]
	scored bool
	state  atomic.Int32

	// Statistics of the freshly drawn population, before any variation
	initial    PoolStats[float64]
	hasInitial bool
}

// NewDifferentialEvolver creates an evolver in StateInitialized
func NewDifferentialEvolver(config DEConfig) *DifferentialEvolver {
	return &DifferentialEvolver{
		mutator:  &RandOneMutator{ScaleFactor: config.ScaleFactor},
		combiner: &BinomialCombiner{CrossoverRate: config.CrossoverRate},
		config:   config,
		rng:      newRand(config.Seed),
	}
}

// Initialize draws a fresh population uniformly inside [lower, upper]
// prefix and suffix are the caller's fixed genes; they never enter the population
// and are only checked for finiteness
func (e *DifferentialEvolver) Initialize(populationSize, geneCount int, lower, upper float64, prefix, suffix []float64) error {
	if e.State() == StateStopped {
		return ErrStopped
	}
	if populationSize < parameter.DEMinPopulationSize {
		return fmt.Errorf("%w: %d individuals, need at least %d", ErrPopulationTooSmall, populationSize, parameter.DEMinPopulationSize)
	}
	if geneCount <= 0 {
		return ErrEmptyGenes
	}

	bounds := UniformBounds(geneCount, lower, upper)
	if err := bounds.Validate(); err != nil {
		return err
	}
	for _, v := range slices.Concat(prefix, suffix) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: fixed gene %v is not finite", ErrInvalidBounds, v)
		}
	}

	initializer := UniformInitializer(bounds)
	members := make([]Individual, populationSize)
	for i := range members {
		members[i] = Individual{Data: initializer(e.rng)}
	}

	e.bounds = bounds
	e.pool = &Pool[[]float64, float64]{Members: members}
	e.scored = false
	e.hasInitial = false
	e.state.Store(int32(StateEvolving))
	return nil
}

// SetObjective installs the scoring function; required before the first Improve
// Installing a new objective marks cached scores stale
func (e *DifferentialEvolver) SetObjective(fn EvaluatorFunc[[]float64, float64]) {
	e.objective = fn
	e.scored = false
}

// Improve runs one synchronous generation
// Every trial is built from the generation's starting population; replacement
// happens after all trials are scored, so a target is replaced only by a trial
// that is no worse under the configured sense
func (e *DifferentialEvolver) Improve() error {
	switch e.State() {
	case StateInitialized:
		return ErrNotInitialized
	case StateStopped:
		return ErrStopped
	}
	if e.objective == nil {
		return ErrNoObjective
	}

	members := e.pool.Members

	if !e.scored {
		solutions := make([][]float64, len(members))
		for i := range members {
			solutions[i] = members[i].Data
		}
		for i, score := range e.scoreAll(solutions) {
			members[i].Score = score
			members[i].Evaluated = true
		}
		e.scored = true
		if e.pool.Generation == 0 {
			e.initial = e.calculateStats()
			e.hasInitial = true
		}
	}

	// All random draws happen here, before the parallel fan-out
	trials := make([][]float64, len(members))
	for i := range members {
		donor := e.mutator.Mutate(e.pool, i, e.rng)
		trial := e.combiner.Combine(members[i].Data, donor, e.rng)
		e.bounds.Clamp(trial)
		trials[i] = trial
	}

	scores := e.scoreAll(trials)

	for i, trial := range trials {
		if e.config.Sense.NoWorse(scores[i], members[i].Score) {
			members[i] = Individual{Data: trial, Score: scores[i], Evaluated: true}
		}
	}

	e.pool.Generation++
	e.pool.Stats = e.calculateStats()
	return nil
}

// scoreAll evaluates solutions, fanning out when Parallelism allows
func (e *DifferentialEvolver) scoreAll(solutions [][]float64) []float64 {
	scores := make([]float64, len(solutions))

	if e.config.Parallelism <= 1 {
		for i, s := range solutions {
			scores[i] = e.sanitize(e.objective(s))
		}
		return scores
	}

	p := workpool.New().WithMaxGoroutines(e.config.Parallelism)
	for i, s := range solutions {
		p.Go(func() {
			scores[i] = e.sanitize(e.objective(s))
		})
	}
	p.Wait()

	return scores
}

// sanitize keeps scores finite: NaN becomes the worst finite value, infinities saturate
func (e *DifferentialEvolver) sanitize(score float64) float64 {
	switch {
	case math.IsNaN(score):
		if e.config.Sense == Minimize {
			return math.MaxFloat64
		}
		return -math.MaxFloat64
	case math.IsInf(score, 1):
		return math.MaxFloat64
	case math.IsInf(score, -1):
		return -math.MaxFloat64
	}
	return score
}

// calculateStats computes statistical measures for the current pool
func (e *DifferentialEvolver) calculateStats() PoolStats[float64] {
	members := e.pool.Members
	if len(members) == 0 {
		return PoolStats[float64]{Generation: e.pool.Generation}
	}

	scores := make([]float64, len(members))
	stats := PoolStats[float64]{
		Generation: e.pool.Generation,
		BestScore:  members[0].Score,
		WorstScore: members[0].Score,
	}

	for i, c := range members {
		scores[i] = c.Score
		if e.config.Sense.Better(c.Score, stats.BestScore) {
			stats.BestScore = c.Score
			stats.BestIndex = i
		}
		if e.config.Sense.Better(stats.WorstScore, c.Score) {
			stats.WorstScore = c.Score
		}
	}
	stats.AverageScore = stat.Mean(scores, nil)

	return stats
}

// Stop moves the evolver to StateStopped; safe to call from any goroutine
func (e *DifferentialEvolver) Stop() {
	e.state.Store(int32(StateStopped))
}

// State returns the lifecycle state
func (e *DifferentialEvolver) State() EvolverState {
	return EvolverState(e.state.Load())
}

// Sense returns the configured selection sense
func (e *DifferentialEvolver) Sense() Sense {
	return e.config.Sense
}

// Bounds returns the free-gene bounds
func (e *DifferentialEvolver) Bounds() Bounds {
	return slices.Clone(e.bounds)
}

// Generation returns the number of completed Improve calls
func (e *DifferentialEvolver) Generation() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.Generation
}

// Size returns the population size, 0 before Initialize
func (e *DifferentialEvolver) Size() int {
	if e.pool == nil {
		return 0
	}
	return len(e.pool.Members)
}

// Population returns a deep copy of the current individuals
func (e *DifferentialEvolver) Population() []Individual {
	if e.pool == nil {
		return nil
	}
	out := make([]Individual, len(e.pool.Members))
	for i, c := range e.pool.Members {
		out[i] = Individual{Data: slices.Clone(c.Data), Score: c.Score, Evaluated: c.Evaluated}
	}
	return out
}

// Fitness returns the cached score of individual i
func (e *DifferentialEvolver) Fitness(i int) float64 {
	return e.pool.Members[i].Score
}

// InitialStats returns the statistics of the initial population
// ok is false until the first Improve has scored it
func (e *DifferentialEvolver) InitialStats() (PoolStats[float64], bool) {
	return e.initial, e.hasInitial
}

// Stats returns the statistics of the last completed generation
func (e *DifferentialEvolver) Stats() PoolStats[float64] {
	if e.pool == nil {
		return PoolStats[float64]{}
	}
	return e.pool.Stats
}

// Best returns a copy of the best scored individual
func (e *DifferentialEvolver) Best() (Individual, error) {
	if e.pool == nil || len(e.pool.Members) == 0 {
		return Individual{}, ErrNotInitialized
	}

	best := 0
	for i, c := range e.pool.Members[1:] {
		if e.config.Sense.Better(c.Score, e.pool.Members[best].Score) {
			best = i + 1
		}
	}
	c := e.pool.Members[best]
	return Individual{Data: slices.Clone(c.Data), Score: c.Score, Evaluated: c.Evaluated}, nil
}
