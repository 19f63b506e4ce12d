// Package config loads run configuration: defaults, then an optional TOML file,
// then PATHEVO_-prefixed environment variables, then validation
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/planner"
	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrUnknownKeys = errors.New("unknown configuration keys")
	ErrInvalid     = errors.New("invalid configuration")
)

// Sense values accepted for objectives
const (
	SenseMinimize = "minimize"
	SenseMaximize = "maximize"
)

// Scenario kinds
const (
	ScenarioBlank  = "blank"
	ScenarioBlocks = "blocks"
	ScenarioMaze   = "maze"
)

type Config struct {
	Solver     SolverConfig     `toml:"solver" envPrefix:"SOLVER_"`
	Field      FieldConfig      `toml:"field" envPrefix:"FIELD_"`
	Route      RouteConfig      `toml:"route" envPrefix:"ROUTE_"`
	Objectives ObjectivesConfig `toml:"objectives" envPrefix:"OBJECTIVES_"`
	Stage      StageConfig      `toml:"stage" envPrefix:"STAGE_"`
	Scenario   ScenarioConfig   `toml:"scenario" envPrefix:"SCENARIO_"`
	Log        LogConfig        `toml:"log" envPrefix:"LOG_"`
	Diag       DiagConfig       `toml:"diag" envPrefix:"DIAG_"`
	Audio      AudioConfig      `toml:"audio" envPrefix:"AUDIO_"`
	Report     ReportConfig     `toml:"report" envPrefix:"REPORT_"`
}

type SolverConfig struct {
	PopulationSize int     `toml:"population_size" env:"POPULATION_SIZE" validate:"gte=4"`
	GeneCount      int     `toml:"gene_count" env:"GENE_COUNT" validate:"gt=0,even"`
	Generations    int     `toml:"generations" env:"GENERATIONS" validate:"gte=0"`
	LowerBound     float64 `toml:"lower_bound" env:"LOWER_BOUND"`
	UpperBound     float64 `toml:"upper_bound" env:"UPPER_BOUND" validate:"gtefield=LowerBound"`
	ScaleFactor    float64 `toml:"scale_factor" env:"SCALE_FACTOR" validate:"gt=0,lte=2"`
	CrossoverRate  float64 `toml:"crossover_rate" env:"CROSSOVER_RATE" validate:"gte=0,lte=1"`
	Parallelism    int     `toml:"parallelism" env:"PARALLELISM" validate:"gte=1,lte=256"`
	Seed           uint64  `toml:"seed" env:"SEED"`
	SampleStep     float64 `toml:"sample_step" env:"SAMPLE_STEP" validate:"gt=0,lte=1"`
}

type FieldConfig struct {
	CellSize        int     `toml:"cell_size" env:"CELL_SIZE" validate:"gte=1"`
	FootprintWidth  float64 `toml:"footprint_width" env:"FOOTPRINT_WIDTH" validate:"gt=0"`
	FootprintLength float64 `toml:"footprint_length" env:"FOOTPRINT_LENGTH" validate:"gt=0"`
}

type RouteConfig struct {
	StartX          float64 `toml:"start_x" env:"START_X" validate:"gte=0,lte=1"`
	StartY          float64 `toml:"start_y" env:"START_Y" validate:"gte=0,lte=1"`
	GoalX           float64 `toml:"goal_x" env:"GOAL_X" validate:"gte=0,lte=1"`
	GoalY           float64 `toml:"goal_y" env:"GOAL_Y" validate:"gte=0,lte=1"`
	AutoDestination bool    `toml:"auto_destination" env:"AUTO_DESTINATION"`
	StopOnCollision bool    `toml:"stop_on_collision" env:"STOP_ON_COLLISION"`
}

type ObjectiveConfig struct {
	Weight float64 `toml:"weight" env:"WEIGHT" validate:"gte=0"`
	Sense  string  `toml:"sense" env:"SENSE" validate:"oneof=minimize maximize"`
}

type ObjectivesConfig struct {
	Collisions ObjectiveConfig `toml:"collisions" envPrefix:"COLLISIONS_"`
	Distance   ObjectiveConfig `toml:"distance" envPrefix:"DISTANCE_"`
	ArcLength  ObjectiveConfig `toml:"arc_length" envPrefix:"ARC_LENGTH_"`
}

type StageConfig struct {
	Lifetime int `toml:"lifetime" env:"LIFETIME" validate:"gte=1"`
}

type ScenarioConfig struct {
	// Image is a PNG path; when set it replaces the generated scenario
	Image  string `toml:"image" env:"IMAGE"`
	Kind   string `toml:"kind" env:"KIND" validate:"oneof=blank blocks maze"`
	Width  int    `toml:"width" env:"WIDTH" validate:"gte=32,lte=4096"`
	Height int    `toml:"height" env:"HEIGHT" validate:"gte=32,lte=4096"`
	Blocks int    `toml:"blocks" env:"BLOCKS" validate:"gte=0"`
	// Braiding is the maze dead-end opening probability
	Braiding float64 `toml:"braiding" env:"BRAIDING" validate:"gte=0,lte=1"`
	// CellSize is the maze corridor pitch in pixels
	CellSize int    `toml:"cell_size" env:"CELL_SIZE" validate:"gte=2"`
	Seed     uint64 `toml:"seed" env:"SEED"`
}

type LogConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Dir     string `toml:"dir" env:"DIR" validate:"required"`
	Level   string `toml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
}

type DiagConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Addr    string `toml:"addr" env:"ADDR" validate:"required,hostname_port"`
}

type AudioConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
}

type ReportConfig struct {
	// Path of the convergence chart written when a run ends; empty disables it
	Path string `toml:"path" env:"PATH"`
}

// Default returns the configuration built from parameter defaults
func Default() *Config {
	objective := func(w float64) ObjectiveConfig {
		return ObjectiveConfig{Weight: w, Sense: SenseMinimize}
	}

	return &Config{
		Solver: SolverConfig{
			PopulationSize: parameter.DEPopulationSize,
			GeneCount:      parameter.DEGeneCount,
			Generations:    parameter.DEGenerations,
			LowerBound:     parameter.DEGeneLowerBound,
			UpperBound:     parameter.DEGeneUpperBound,
			ScaleFactor:    parameter.DEScaleFactor,
			CrossoverRate:  parameter.DECrossoverRate,
			Parallelism:    parameter.DEParallelism,
			SampleStep:     parameter.SampleStep,
		},
		Field: FieldConfig{
			CellSize:        parameter.ObstacleCellSize,
			FootprintWidth:  parameter.FootprintWidth,
			FootprintLength: parameter.FootprintLength,
		},
		Route: RouteConfig{
			StartX: parameter.StartX,
			StartY: parameter.StartY,
			GoalX:  parameter.GoalX,
			GoalY:  parameter.GoalY,
		},
		Objectives: ObjectivesConfig{
			Collisions: objective(parameter.WeightCollisions),
			Distance:   objective(parameter.WeightDistance),
			ArcLength:  objective(parameter.WeightArcLength),
		},
		Stage: StageConfig{
			Lifetime: parameter.TrajectoryLifetime,
		},
		Scenario: ScenarioConfig{
			Kind:     ScenarioBlocks,
			Width:    parameter.StageWidth,
			Height:   parameter.StageHeight,
			Blocks:   parameter.ScenarioBlocks,
			Braiding: parameter.MazeBraiding,
			CellSize: parameter.MazeCellSize,
		},
		Log: LogConfig{
			Dir:   parameter.LogDir,
			Level: "info",
		},
		Diag: DiagConfig{
			Addr: parameter.DefaultDiagAddr,
		},
	}
}

// Load applies an optional TOML file and environment overrides on top of Default
// An empty path skips the file; keys the file sets that Config lacks are an error
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			slices.Sort(keys)
			return nil, fmt.Errorf("%w in %s: %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: parameter.EnvPrefix}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("environment: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load for callers that treat a missing file as "use defaults"
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

// Write encodes cfg as TOML
func Write(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// PlannerConfig converts to the solver run configuration
func (c *Config) PlannerConfig() planner.Config {
	return planner.Config{
		PopulationSize: c.Solver.PopulationSize,
		GeneCount:      c.Solver.GeneCount,
		Generations:    c.Solver.Generations,
		LowerBound:     c.Solver.LowerBound,
		UpperBound:     c.Solver.UpperBound,
		ScaleFactor:    c.Solver.ScaleFactor,
		CrossoverRate:  c.Solver.CrossoverRate,
		Parallelism:    c.Solver.Parallelism,
		Seed:           c.Solver.Seed,
		SampleStep:     c.Solver.SampleStep,
		Footprint: planner.Footprint{
			Width:  c.Field.FootprintWidth,
			Length: c.Field.FootprintLength,
		},
		Start: vmath.Vec2{X: c.Route.StartX, Y: c.Route.StartY},
		Goal:  vmath.Vec2{X: c.Route.GoalX, Y: c.Route.GoalY},
	}
}

// Settings builds the live planner settings from the objective and route sections
func (c *Config) Settings() *planner.Settings {
	s := planner.NewSettings()
	apply := func(o planner.Objective, oc ObjectiveConfig) {
		s.SetWeight(o, oc.Weight)
		s.SetSense(o, ParseSense(oc.Sense))
	}
	apply(planner.ObjectiveCollisions, c.Objectives.Collisions)
	apply(planner.ObjectiveDistance, c.Objectives.Distance)
	apply(planner.ObjectiveArcLength, c.Objectives.ArcLength)

	s.SetAutoDestination(c.Route.AutoDestination)
	s.SetStopOnCollision(c.Route.StopOnCollision)
	return s
}

// ParseSense maps "maximize" to Maximize and anything else to Minimize
func ParseSense(s string) genetic.Sense {
	if strings.EqualFold(s, SenseMaximize) {
		return genetic.Maximize
	}
	return genetic.Minimize
}

// SlogLevel maps the configured level name, defaulting to info
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
