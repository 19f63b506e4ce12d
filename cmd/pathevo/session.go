package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/lixenwraith/path-evolution/audio"
	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/planner"
	"github.com/lixenwraith/path-evolution/report"
	"github.com/lixenwraith/path-evolution/stage"
	"github.com/lixenwraith/path-evolution/status"
)

// session owns the planner and the current run on one scenario
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	field    *obstacle.Field
	settings *planner.Settings
	registry *status.Registry
	stage    *stage.Stage
	planner  *planner.Planner
	player   *audio.Player

	ctx  context.Context
	run  *planner.Run
	runs atomic.Int64

	// finished receives the run number after its report is written
	finished chan int64
}

// newSession wires stage, settings and observers into a planner; player may be nil
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, field *obstacle.Field, pcfg planner.Config, registry *status.Registry, player *audio.Player) (*session, error) {
	size := field.Bounds().Size()
	st, err := stage.New(stage.Config{
		Lifetime:   cfg.Stage.Lifetime,
		Width:      size.X,
		Height:     size.Y,
		Background: field.Image(),
	})
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	settings := cfg.Settings()
	opts := []planner.Option{
		planner.WithLogger(logger),
		planner.WithRegistry(registry),
		planner.WithStage(st),
	}
	if player != nil {
		opts = append(opts, planner.WithObserver(player.Observer()))
	}

	p, err := planner.New(field, settings, pcfg, opts...)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		field:    field,
		settings: settings,
		registry: registry,
		stage:    st,
		planner:  p,
		player:   player,
		ctx:      ctx,
		finished: make(chan int64, 1),
	}, nil
}

// start launches a fresh run and its completion watcher
func (s *session) start() error {
	run, err := s.planner.Start(s.ctx)
	if err != nil {
		return err
	}
	s.run = run
	n := s.runs.Add(1)
	go s.watch(run, n)
	return nil
}

// restart stops and joins the current run, then starts a new one
func (s *session) restart() error {
	s.stopRun()
	s.logger.Info("restart requested")
	return s.start()
}

// stopRun clears the running flag and joins the solver goroutine
func (s *session) stopRun() {
	if s.run == nil {
		return
	}
	s.run.Stop()
	if err := s.run.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("run ended with error", "error", err)
	}
}

// watch reports a finished run: cue, log and charts
func (s *session) watch(run *planner.Run, n int64) {
	defer func() {
		select {
		case s.finished <- n:
		default:
		}
	}()

	err := run.Wait()

	if s.player != nil {
		if err != nil && !errors.Is(err, context.Canceled) {
			s.player.Play(audio.CueFail)
		} else {
			s.player.Play(audio.CueFinish)
		}
	}

	best, berr := run.Best()
	if berr != nil {
		s.logger.Warn("no best route", "run", n, "error", berr)
		return
	}
	attrs := []any{
		"run", n,
		"generations", len(run.History()),
		"fitness", best.Fitness,
		"metrics", best.Metrics,
	}
	if initial, ok := run.InitialStats(); ok {
		attrs = append(attrs, "initial_best", initial.BestScore, "initial_avg", initial.AverageScore)
	}
	s.logger.Info("run finished", attrs...)

	if s.cfg.Report.Path != "" {
		s.writeReport(run, best, n)
	}
}

func (s *session) writeReport(run *planner.Run, best planner.Result, n int64) {
	ext := filepath.Ext(s.cfg.Report.Path)
	base := strings.TrimSuffix(s.cfg.Report.Path, ext)
	if ext == "" {
		ext = ".png"
	}

	convergence := fmt.Sprintf("%s_%d%s", base, n, ext)
	if err := report.SaveConvergence(run.History(), fmt.Sprintf("run %d", n), convergence); err != nil {
		s.logger.Warn("convergence chart failed", "path", convergence, "error", err)
	}
	route := fmt.Sprintf("%s_%d_route%s", base, n, ext)
	if err := report.SaveRoute(s.field, best.Curve, "best route", route); err != nil {
		s.logger.Warn("route chart failed", "path", route, "error", err)
	}
}
