package parameter

// Stage - Trajectory Decay & Colour Ranking
const (
	// TrajectoryLifetime is the number of stage ticks a published trajectory stays live
	TrajectoryLifetime = 5

	// HueStart and HueSpan define the fitness colour sweep in degrees
	// Worst maps to HueStart, best to HueStart+HueSpan
	HueStart = -180.0
	HueSpan  = 300.0

	// StageWidth and StageHeight size generated scenarios in pixels
	StageWidth  = 640
	StageHeight = 480

	// BorderThickness frames generated scenarios
	BorderThickness = 10

	// ScenarioBlocks is the number of random obstacles in a generated blocks scenario
	ScenarioBlocks = 12

	// MazeCellSize is the corridor pitch of generated mazes in pixels
	MazeCellSize = 40

	// MazeBraiding is the probability a dead end gets opened into a loop
	MazeBraiding = 0.3
)

// Status Bar
const (
	StatusTextRunning = " EVOLVING "
	StatusTextStopped = " STOPPED "
	StatusTextDone    = " DONE "

	// KeyHelp lists the viewer bindings
	KeyHelp = "q:quit r:restart 1/2/3:flip col/dist/arc s:stop-on-hit m:mute"
)
