package tracking

import "github.com/lixenwraith/path-evolution/vmath"

// PathCollector implements Collector for a single curve walk
// The first observed sample only anchors the walk: it adds no length, distance or collision
type PathCollector struct {
	goal        vmath.Vec2
	last        vmath.Vec2
	samples     int
	collisions  int
	arcLength   float64
	distanceSum float64
}

// NewPathCollector creates a reusable collector aimed at goal
func NewPathCollector(goal vmath.Vec2) *PathCollector {
	return &PathCollector{goal: goal}
}

func (c *PathCollector) Observe(p vmath.Vec2, collided bool) {
	if c.samples > 0 {
		c.arcLength += vmath.V2Dist(p, c.last)
		c.distanceSum += vmath.V2Dist(p, c.goal)
		if collided {
			c.collisions++
		}
	}
	c.last = p
	c.samples++
}

// Collisions returns the collisions counted so far
func (c *PathCollector) Collisions() int {
	return c.collisions
}

func (c *PathCollector) Finalize() MetricBundle {
	result := MetricBundle{
		MetricSamples:         float64(c.samples),
		MetricCollisions:      float64(c.collisions),
		MetricArcLength:       c.arcLength,
		MetricGoalDistanceSum: c.distanceSum,
	}
	if c.samples > 0 {
		result[MetricGoalDistance] = vmath.V2Dist(c.last, c.goal)
	}
	return result
}

func (c *PathCollector) Reset(goal vmath.Vec2) {
	*c = PathCollector{goal: goal}
}
