package vmath

import "math"

// RectF is an axis-aligned float rectangle, origin top-left, Y down
type RectF struct {
	Left, Top, Width, Height float64
}

func (r RectF) Right() float64  { return r.Left + r.Width }
func (r RectF) Bottom() float64 { return r.Top + r.Height }

// Empty reports a rectangle with no area
func (r RectF) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the overlap of a and b
// ok is false when the overlap has no area (touching edges do not intersect)
func Intersect(a, b RectF) (RectF, bool) {
	left := math.Max(a.Left, b.Left)
	top := math.Max(a.Top, b.Top)
	right := math.Min(a.Right(), b.Right())
	bottom := math.Min(a.Bottom(), b.Bottom())

	if left >= right || top >= bottom {
		return RectF{}, false
	}
	return RectF{Left: left, Top: top, Width: right - left, Height: bottom - top}, true
}

// OrientedBounds returns the axis-aligned bounding box of a width×height
// rectangle centred on c and rotated by angle radians
func OrientedBounds(c Vec2, width, height, angle float64) RectF {
	cos := math.Abs(math.Cos(angle))
	sin := math.Abs(math.Sin(angle))

	w := width*cos + height*sin
	h := width*sin + height*cos

	return RectF{
		Left:   c.X - w/2,
		Top:    c.Y - h/2,
		Width:  w,
		Height: h,
	}
}
