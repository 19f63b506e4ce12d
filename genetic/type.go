package genetic

import (
	"math/rand/v2"
)

// --- Core Type Constraints ---

// Solution represents any type that can be used as a solution encoding
type Solution any

// Numeric constrains types to numeric values for fitness scores
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// --- Core Data Structures ---

// Candidate represents a potential solution with its evaluated quality score
// S is the solution type, F is the fitness/quality score type
type Candidate[S Solution, F Numeric] struct {
	// Data holds the encoded solution representation
	Data S
	// Score is the cached fitness; stale until Evaluated is set
	Score F
	// Evaluated marks Score as computed by the current objective
	Evaluated bool
}

// Pool represents a collection of solution candidates
// This is the working set of solutions at any given iteration
type Pool[S Solution, F Numeric] struct {
	// Members contains all candidates in this pool
	Members []Candidate[S, F]
	// Generation tracks the iteration number this pool represents
	Generation int
	// Stats holds statistical information about this pool
	Stats PoolStats[F]
}

// PoolStats contains statistical information about a candidate pool
// Best/Worst follow the pool's Sense, not raw numeric order
type PoolStats[F Numeric] struct {
	Generation   int
	BestScore    F
	WorstScore   F
	AverageScore F
	BestIndex    int
}

// Individual is the real-coded candidate evolved by DifferentialEvolver
type Individual = Candidate[[]float64, float64]

// Sense selects whether higher or lower scores are better
type Sense int

const (
	// Maximize treats higher scores as better
	Maximize Sense = iota
	// Minimize treats lower scores as better
	Minimize
)

// Better reports whether a is strictly better than b
func (s Sense) Better(a, b float64) bool {
	if s == Minimize {
		return a < b
	}
	return a > b
}

// NoWorse reports whether a is at least as good as b
func (s Sense) NoWorse(a, b float64) bool {
	if s == Minimize {
		return a <= b
	}
	return a >= b
}

func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// --- Function Types for Flexibility ---

// EvaluatorFunc defines a function that calculates the quality score for a solution
// Must be safe for concurrent calls when evaluation parallelism is above 1
type EvaluatorFunc[S Solution, F Numeric] func(solution S) F

// InitializerFunc creates an initial solution candidate
type InitializerFunc[S Solution] func(rng *rand.Rand) S

// GenerationHook observes the pool after each completed generation
// The pool is a read-only view; copy anything retained past the call
type GenerationHook[S Solution, F Numeric] func(pool *Pool[S, F])

// --- Core Operators as Interfaces ---

// Mutator builds a donor vector for the target at index target
type Mutator[S Solution, F Numeric] interface {
	Mutate(pool *Pool[S, F], target int, rng *rand.Rand) S
}

// Combiner recombines a target with its donor into a single trial
type Combiner[S Solution] interface {
	Combine(target, donor S, rng *rand.Rand) S
}
