package parameter

// Differential Evolution - Engine Configuration
const (
	// DEPopulationSize is the number of individuals in each generation
	DEPopulationSize = 50

	// DEMinPopulationSize is the smallest pool DE/rand/1 can draw three distinct donors from
	DEMinPopulationSize = 4

	// DEGeneCount is the number of free genes (two per free control point)
	DEGeneCount = 30

	// DEGenerations caps a solver run
	DEGenerations = 400

	// DEScaleFactor is F, the difference vector multiplier
	DEScaleFactor = 0.7

	// DECrossoverRate is CR, the per-gene probability of taking the donor value
	DECrossoverRate = 0.05

	// DEGeneLowerBound and DEGeneUpperBound bound every free gene (normalized units)
	// Control points may sit outside the stage so curves can bend past the border
	DEGeneLowerBound = -0.5
	DEGeneUpperBound = 1.5

	// DEParallelism is the number of concurrent trial evaluations
	DEParallelism = 4
)

// Fitness - Sampling & Collision
const (
	// SampleStep is the Bezier parameter increment used for scoring and drawing
	SampleStep = 0.005

	// ObstacleCellSize is the side of one occupancy grid cell in pixels
	ObstacleCellSize = 10

	// FootprintWidth and FootprintLength size the vehicle box tested at every sample (pixels)
	// Length runs along the heading
	FootprintWidth  = 8
	FootprintLength = 16
)

// Fitness - Objective Defaults
const (
	WeightCollisions = 1.0
	WeightDistance   = 1.0
	WeightArcLength  = 1.0
)

// Endpoints - normalized defaults
const (
	StartX = 0.1
	StartY = 0.5
	GoalX  = 0.9
	GoalY  = 0.5
)
