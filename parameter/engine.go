package parameter

import "time"

// Viewer Loop Timing
const (
	// FrameUpdateInterval is the display tick (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// EventQueueSize is the buffered capacity between the key poller and the display loop
	EventQueueSize = 256

	// ShutdownTimeout bounds the diagnostics server drain on exit
	ShutdownTimeout = 3 * time.Second
)

// Logging
const (
	// LogDir holds the rotating log file; the terminal is owned by the viewer
	LogDir = "logs"

	// LogFileName is the active log file inside LogDir
	LogFileName = "pathevo.log"

	// MaxLogSize triggers rotation of an existing log file at startup
	MaxLogSize = 10 * 1024 * 1024
)

// Configuration
const (
	// EnvPrefix namespaces environment overrides
	EnvPrefix = "PATHEVO_"

	// DefaultDiagAddr is the diagnostics listen address when enabled
	DefaultDiagAddr = "127.0.0.1:9310"
)
