package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/parameter"
)

// setupLogging returns the process logger and its file
// Disabled logging discards everything; the terminal belongs to the viewer, so
// nothing is ever written to stdout or stderr
func setupLogging(cfg config.LogConfig) (*slog.Logger, *os.File, error) {
	if !cfg.Enabled {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger, nil, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(cfg.Dir, parameter.LogFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > parameter.MaxLogSize {
		ext := filepath.Ext(parameter.LogFileName)
		base := parameter.LogFileName[:len(parameter.LogFileName)-len(ext)]
		rotated := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext))
		if err := os.Rename(logPath, rotated); err != nil {
			return nil, nil, fmt.Errorf("rotate log: %w", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return logger, f, nil
}
