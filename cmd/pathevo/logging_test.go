package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/parameter"
)

func TestSetupLogging_Disabled(t *testing.T) {
	logger, f, err := setupLogging(config.LogConfig{Enabled: false, Dir: t.TempDir(), Level: "info"})
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	if f != nil {
		f.Close()
		t.Error("Expected nil log file when disabled")
	}
	if logger == nil {
		t.Fatal("Expected a discard logger")
	}
	logger.Info("dropped")
}

func TestSetupLogging_Enabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, f, err := setupLogging(config.LogConfig{Enabled: true, Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	if f == nil {
		t.Fatal("Expected non-nil log file when enabled")
	}
	defer f.Close()

	logger.Debug("test message", "key", "value")

	info, err := os.Stat(filepath.Join(dir, parameter.LogFileName))
	if err != nil {
		t.Fatalf("Failed to stat log file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected log file to contain content")
	}
}

func TestSetupLogging_Rotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, parameter.LogFileName)

	large, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("Failed to create large log file: %v", err)
	}
	if err := large.Truncate(parameter.MaxLogSize + 1); err != nil {
		t.Fatalf("Failed to grow log file: %v", err)
	}
	large.Close()

	_, f, err := setupLogging(config.LogConfig{Enabled: true, Dir: dir, Level: "info"})
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	defer f.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read log dir: %v", err)
	}
	rotated := false
	for _, e := range entries {
		if e.Name() != parameter.LogFileName && filepath.Ext(e.Name()) == ".log" {
			rotated = true
		}
	}
	if !rotated {
		t.Error("Expected to find rotated log file")
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("Failed to stat new log file: %v", err)
	}
	if info.Size() > parameter.MaxLogSize {
		t.Errorf("Expected fresh log file, got %d bytes", info.Size())
	}
}

func TestSetupLogging_BadDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := setupLogging(config.LogConfig{Enabled: true, Dir: filepath.Join(blocker, "logs"), Level: "info"}); err == nil {
		t.Error("Expected error when the log dir cannot be created")
	}
}
