package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/path-evolution/audio"
	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/diag"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/status"
)

var (
	configFlag   = flag.String("config", "pathevo.toml", "TOML configuration file (missing file uses defaults)")
	imageFlag    = flag.String("image", "", "PNG occupancy image; overrides the generated scenario")
	scenarioFlag = flag.String("scenario", "", "Generated scenario: blank, blocks, maze")
	seedFlag     = flag.Uint64("seed", 0, "Solver and scenario seed (0 keeps the configured value)")
	headlessFlag = flag.Bool("headless", false, "Run once without the terminal viewer and print the result")
	dumpFlag     = flag.Bool("dump-config", false, "Print the effective configuration and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadFile(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	if *dumpFlag {
		if err := config.Write(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pathevo: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags layers command-line overrides over the loaded configuration
func applyFlags(cfg *config.Config) {
	if *imageFlag != "" {
		cfg.Scenario.Image = *imageFlag
	}
	if *scenarioFlag != "" {
		cfg.Scenario.Kind = *scenarioFlag
	}
	if *seedFlag != 0 {
		cfg.Solver.Seed = *seedFlag
		cfg.Scenario.Seed = *seedFlag
	}
}

func run(cfg *config.Config) error {
	logger, logFile, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	sc, err := loadScene(cfg.Scenario)
	if err != nil {
		return err
	}
	field, err := obstacle.NewField(sc.img, cfg.Field.CellSize)
	if err != nil {
		return fmt.Errorf("obstacle field: %w", err)
	}
	logger.Info("scenario ready", "bounds", field.Bounds(), "rects", len(field.Rects()))

	pcfg := cfg.PlannerConfig()
	if sc.start != nil && sc.goal != nil {
		pcfg.Start, pcfg.Goal = *sc.start, *sc.goal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var player *audio.Player
	if cfg.Audio.Enabled {
		player = audio.NewPlayer()
		if err := player.Init(); err != nil {
			logger.Warn("audio unavailable, continuing without sound", "error", err)
			player = nil
		} else {
			defer player.Close()
		}
	}

	registry := status.NewRegistry()
	s, err := newSession(ctx, cfg, logger, field, pcfg, registry, player)
	if err != nil {
		return err
	}

	if cfg.Diag.Enabled {
		srv := diag.NewServer(cfg.Diag.Addr, diag.NewHandler(registry, s.stage, logger))
		if err := srv.Start(); err != nil {
			logger.Warn("diagnostics disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), parameter.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("diagnostics shutdown", "error", err)
				}
			}()
		}
	}

	if *headlessFlag {
		return runHeadless(s)
	}
	return runViewer(ctx, s, logger)
}

// runHeadless runs to completion and prints the best route summary
func runHeadless(s *session) error {
	if err := s.start(); err != nil {
		return err
	}
	<-s.finished

	best, err := s.run.Best()
	if err != nil {
		return err
	}
	fmt.Printf("generations=%d fitness=%.6g metrics=%v\n", len(s.run.History()), best.Fitness, best.Metrics)
	return nil
}

func runViewer(ctx context.Context, s *session, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}

	// Restore the terminal before printing a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mPATHEVO CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	v := newViewer(s, screen)
	if err := v.start(); err != nil {
		return err
	}
	defer v.stopRun()

	events := make(chan tcell.Event, parameter.EventQueueSize)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev) {
					logger.Info("quit requested")
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			v.draw()
		}
	}
}
