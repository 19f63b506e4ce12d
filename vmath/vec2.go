package vmath

import "math"

// Vec2 is a float64 2D point/vector
// Normalized path coordinates live in [0,1]²; domain coordinates are pixels
type Vec2 struct {
	X, Y float64
}

func V2Sub(a, b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// V2Mul scales each component independently
func V2Mul(v, s Vec2) Vec2 {
	return Vec2{v.X * s.X, v.Y * s.Y}
}

// V2Dist returns the Euclidean distance between a and b
func V2Dist(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// V2Heading returns the angle of the segment from a to b in radians
func V2Heading(a, b Vec2) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// V2Finite reports whether both components are finite
func V2Finite(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
