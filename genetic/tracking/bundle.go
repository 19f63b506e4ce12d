package tracking

// MetricBundle is a generic container for named metrics
// Keys are metric names, values are float64 measurements
type MetricBundle map[string]float64

// Standard metric keys (conventions)
const (
	MetricCollisions = "collisions"
	MetricArcLength  = "arc_length"
	// MetricGoalDistance is measured from the last processed sample
	MetricGoalDistance = "goal_distance"
	// MetricGoalDistanceSum accumulates the goal distance of every sample; reported, not scored
	MetricGoalDistanceSum = "goal_distance_sum"
	MetricSamples         = "samples"
)

// Get returns metric value or default if not present
func (b MetricBundle) Get(key string, defaultVal float64) float64 {
	if v, ok := b[key]; ok {
		return v
	}
	return defaultVal
}
