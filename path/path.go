// Package path maps gene vectors to control points and dense Bezier samples
package path

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrInvalidStep      = errors.New("sample step must be positive and finite")
	ErrNoControlPoints  = errors.New("curve has no control points")
	ErrOddGeneCount     = errors.New("free genes must come in x,y pairs")
	ErrNonFiniteControl = errors.New("control point is not finite")
)

// Layout tags the parts of a curve's control polygon
// Free holds x,y pairs evolved by the solver; Prefix and Suffix, when set,
// pin the first and last control points
type Layout struct {
	Free   []float64
	Prefix *vmath.Vec2
	Suffix *vmath.Vec2
}

// ControlPoints returns prefix, free pairs, then suffix
func (l Layout) ControlPoints() []vmath.Vec2 {
	points := make([]vmath.Vec2, 0, len(l.Free)/2+2)
	if l.Prefix != nil {
		points = append(points, *l.Prefix)
	}
	for i := 0; i+1 < len(l.Free); i += 2 {
		points = append(points, vmath.Vec2{X: l.Free[i], Y: l.Free[i+1]})
	}
	if l.Suffix != nil {
		points = append(points, *l.Suffix)
	}
	return points
}

// Decode samples the curve at t = 0, step, 2·step, … and stops after the first
// parameter that reaches 1; that last parameter, which may overshoot 1, is
// evaluated at exactly 1 so the final sample is always the curve's end point
func (l Layout) Decode(step float64) ([]vmath.Vec2, error) {
	if len(l.Free)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddGeneCount, len(l.Free))
	}
	return Decode(l.ControlPoints(), step)
}

// Decode samples the Bezier curve defined by points
func Decode(points []vmath.Vec2, step float64) ([]vmath.Vec2, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	if len(points) == 0 {
		return nil, ErrNoControlPoints
	}
	for _, p := range points {
		if !vmath.V2Finite(p) {
			return nil, fmt.Errorf("%w: %v", ErrNonFiniteControl, p)
		}
	}

	curve := vmath.NewBezier(points)
	samples := make([]vmath.Vec2, 0, SampleCount(step))

	for i := 0; ; i++ {
		t := float64(i) * step
		if reachesEnd(t, step) {
			samples = append(samples, curve.At(1))
			break
		}
		samples = append(samples, curve.At(t))
	}

	return samples, nil
}

// SampleCount returns the number of samples Decode emits for step
func SampleCount(step float64) int {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return 0
	}
	n := 1
	for !reachesEnd(float64(n-1)*step, step) {
		n++
	}
	return n
}

// endSlack absorbs the rounding of i·step around 1, as a fraction of step
const endSlack = 1e-9

// reachesEnd reports whether parameter t is the curve's last sample
func reachesEnd(t, step float64) bool {
	return t >= 1-step*endSlack
}

// ToDomain maps normalized points into domain coordinates of the given size
func ToDomain(points []vmath.Vec2, size vmath.Vec2) []vmath.Vec2 {
	out := make([]vmath.Vec2, len(points))
	for i, p := range points {
		out[i] = vmath.V2Mul(p, size)
	}
	return out
}

// Encoder pins the fixed ends around free gene vectors
type Encoder struct {
	Prefix *vmath.Vec2
	Suffix *vmath.Vec2
}

var _ genetic.Decoder[[]float64, []vmath.Vec2] = (*Encoder)(nil)

// Layout wraps genes with the encoder's fixed ends
func (e *Encoder) Layout(genes []float64) Layout {
	return Layout{Free: genes, Prefix: e.Prefix, Suffix: e.Suffix}
}

// Decode returns the full control polygon for genes
func (e *Encoder) Decode(genes []float64) []vmath.Vec2 {
	return e.Layout(genes).ControlPoints()
}

// Flatten returns the fixed ends as gene slices for DifferentialEvolver.Initialize
func (e *Encoder) Flatten() (prefix, suffix []float64) {
	if e.Prefix != nil {
		prefix = []float64{e.Prefix.X, e.Prefix.Y}
	}
	if e.Suffix != nil {
		suffix = []float64{e.Suffix.X, e.Suffix.Y}
	}
	return prefix, suffix
}
