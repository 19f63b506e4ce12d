package genetic

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func sphere(genes []float64) float64 {
	sum := 0.0
	for _, g := range genes {
		sum += g * g
	}
	return sum
}

func newTestEvolver(t *testing.T, sense Sense, parallelism int) *DifferentialEvolver {
	t.Helper()
	cfg := DefaultDEConfig()
	cfg.Sense = sense
	cfg.Seed = 42
	cfg.Parallelism = parallelism
	e := NewDifferentialEvolver(cfg)
	if err := e.Initialize(20, 6, -0.5, 1.5, []float64{0, 0}, []float64{1, 1}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return e
}

func TestDifferentialEvolver_InitializeErrors(t *testing.T) {
	tests := []struct {
		name     string
		pop      int
		genes    int
		lo, hi   float64
		expected error
	}{
		{"population too small", 3, 4, 0, 1, ErrPopulationTooSmall},
		{"empty genes", 10, 0, 0, 1, ErrEmptyGenes},
		{"inverted bounds", 10, 4, 1, 0, ErrInvalidBounds},
		{"nan bound", 10, 4, math.NaN(), 1, ErrInvalidBounds},
		{"infinite bound", 10, 4, 0, math.Inf(1), ErrInvalidBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewDifferentialEvolver(DefaultDEConfig())
			err := e.Initialize(tt.pop, tt.genes, tt.lo, tt.hi, nil, nil)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
			if e.State() != StateInitialized {
				t.Errorf("state should stay initialized, got %v", e.State())
			}
		})
	}
}

func TestDifferentialEvolver_MinimumPopulationAccepted(t *testing.T) {
	e := NewDifferentialEvolver(DefaultDEConfig())
	if err := e.Initialize(4, 2, 0, 1, nil, nil); err != nil {
		t.Fatalf("population of 4 should be accepted: %v", err)
	}
	e.SetObjective(sphere)
	if err := e.Improve(); err != nil {
		t.Errorf("improve: %v", err)
	}
}

func TestDifferentialEvolver_ImproveRequiresObjective(t *testing.T) {
	e := newTestEvolver(t, Maximize, 1)
	if err := e.Improve(); !errors.Is(err, ErrNoObjective) {
		t.Errorf("expected ErrNoObjective, got %v", err)
	}

	fresh := NewDifferentialEvolver(DefaultDEConfig())
	fresh.SetObjective(sphere)
	if err := fresh.Improve(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestDifferentialEvolver_MonotonicBest(t *testing.T) {
	for _, sense := range []Sense{Maximize, Minimize} {
		t.Run(sense.String(), func(t *testing.T) {
			e := newTestEvolver(t, sense, 4)
			e.SetObjective(sphere)

			if err := e.Improve(); err != nil {
				t.Fatalf("improve: %v", err)
			}
			prev := e.Stats().BestScore

			for gen := 0; gen < 50; gen++ {
				if err := e.Improve(); err != nil {
					t.Fatalf("improve: %v", err)
				}
				best := e.Stats().BestScore
				if sense.Better(prev, best) {
					t.Fatalf("generation %d: best regressed from %v to %v", gen, prev, best)
				}
				prev = best
			}
		})
	}
}

func TestDifferentialEvolver_GenesWithinBounds(t *testing.T) {
	e := newTestEvolver(t, Maximize, 2)
	// Maximizing the sphere pushes genes against both bounds
	e.SetObjective(sphere)
	bounds := e.Bounds()

	for gen := 0; gen < 30; gen++ {
		if err := e.Improve(); err != nil {
			t.Fatalf("improve: %v", err)
		}
		for i, ind := range e.Population() {
			if len(ind.Data) != 6 {
				t.Fatalf("individual %d: gene count changed to %d", i, len(ind.Data))
			}
			if !bounds.Contains(ind.Data) {
				t.Fatalf("generation %d individual %d out of bounds: %v", gen, i, ind.Data)
			}
		}
	}
}

func TestDifferentialEvolver_SizeFixed(t *testing.T) {
	e := newTestEvolver(t, Minimize, 1)
	e.SetObjective(sphere)
	for gen := 0; gen < 5; gen++ {
		if err := e.Improve(); err != nil {
			t.Fatalf("improve: %v", err)
		}
		if e.Size() != 20 {
			t.Fatalf("population size changed to %d", e.Size())
		}
	}
	if e.Generation() != 5 {
		t.Errorf("expected generation 5, got %d", e.Generation())
	}
}

func TestDifferentialEvolver_InitialStats(t *testing.T) {
	e := newTestEvolver(t, Minimize, 1)
	e.SetObjective(sphere)

	if _, ok := e.InitialStats(); ok {
		t.Fatal("initial stats must not exist before the first Improve")
	}

	// Score the drawn population by hand before any variation happens
	want := 0.0
	for _, ind := range e.Population() {
		want += sphere(ind.Data)
	}
	want /= float64(e.Size())

	for gen := 0; gen < 10; gen++ {
		if err := e.Improve(); err != nil {
			t.Fatalf("improve: %v", err)
		}
	}

	initial, ok := e.InitialStats()
	if !ok {
		t.Fatal("expected initial stats after Improve")
	}
	if initial.Generation != 0 {
		t.Errorf("expected generation 0, got %d", initial.Generation)
	}
	if math.Abs(initial.AverageScore-want) > 1e-9 {
		t.Errorf("expected initial average %v, got %v", want, initial.AverageScore)
	}
	if e.Stats().BestScore > initial.BestScore {
		t.Errorf("best %v regressed past initial best %v", e.Stats().BestScore, initial.BestScore)
	}
}

func TestDifferentialEvolver_Stop(t *testing.T) {
	e := newTestEvolver(t, Maximize, 1)
	e.SetObjective(sphere)
	if err := e.Improve(); err != nil {
		t.Fatalf("improve: %v", err)
	}

	e.Stop()
	if e.State() != StateStopped {
		t.Errorf("expected stopped, got %v", e.State())
	}
	if err := e.Improve(); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	if err := e.Initialize(10, 2, 0, 1, nil, nil); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped on re-initialize, got %v", err)
	}
}

func TestDifferentialEvolver_SanitizesScores(t *testing.T) {
	e := newTestEvolver(t, Maximize, 1)
	e.SetObjective(func([]float64) float64 { return math.NaN() })
	if err := e.Improve(); err != nil {
		t.Fatalf("improve: %v", err)
	}
	for i := 0; i < e.Size(); i++ {
		f := e.Fitness(i)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("individual %d has non-finite fitness %v", i, f)
		}
	}
}

func TestDifferentialEvolver_SeedReproducible(t *testing.T) {
	run := func(parallelism int) float64 {
		e := newTestEvolver(t, Minimize, parallelism)
		e.SetObjective(sphere)
		for gen := 0; gen < 20; gen++ {
			if err := e.Improve(); err != nil {
				t.Fatalf("improve: %v", err)
			}
		}
		best, err := e.Best()
		if err != nil {
			t.Fatalf("best: %v", err)
		}
		return best.Score
	}

	if a, b := run(1), run(8); a != b {
		t.Errorf("same seed diverged across parallelism: %v vs %v", a, b)
	}
}

func TestBinomialCombiner_ForcedGene(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	bc := &BinomialCombiner{CrossoverRate: 0}
	target := []float64{0, 0, 0, 0, 0}
	donor := []float64{1, 1, 1, 1, 1}

	for range 100 {
		trial := bc.Combine(target, donor, rng)
		taken := 0
		for _, v := range trial {
			if v == 1 {
				taken++
			}
		}
		if taken != 1 {
			t.Fatalf("expected exactly one donor gene with CR=0, got %d", taken)
		}
	}
}

func TestPickDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		a, b, c := pickDistinct(4, 2, rng)
		if a == 2 || b == 2 || c == 2 {
			t.Fatalf("picked excluded index: %d %d %d", a, b, c)
		}
		if a == b || b == c || a == c {
			t.Fatalf("indices not distinct: %d %d %d", a, b, c)
		}
	}
}
