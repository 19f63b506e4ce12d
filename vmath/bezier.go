package vmath

// Bezier evaluates a Bezier curve of arbitrary degree through the Bernstein basis
// Binomial coefficients are computed once per curve
type Bezier struct {
	points []Vec2
	binom  []float64
}

// NewBezier builds a curve from control points; the slice is not copied
func NewBezier(points []Vec2) *Bezier {
	n := len(points) - 1
	binom := make([]float64, len(points))
	if n >= 0 {
		binom[0] = 1
		for i := 1; i <= n/2; i++ {
			// C(n, i) = C(n, i-1) * (n-i+1) / i
			binom[i] = binom[i-1] * float64(n-i+1) / float64(i)
		}
		// Mirror so both ends stay exactly 1 even when the middle rounds
		for i := n/2 + 1; i <= n; i++ {
			binom[i] = binom[n-i]
		}
	}
	return &Bezier{points: points, binom: binom}
}

// At evaluates the curve at parameter t
// t=0 and t=1 reproduce the first and last control points exactly
func (b *Bezier) At(t float64) Vec2 {
	n := len(b.points) - 1
	switch {
	case n < 0:
		return Vec2{}
	case n == 0:
		return b.points[0]
	}

	u := 1 - t

	// Powers of t ascend while powers of (1-t) descend; build t^i on the fly
	// and precompute (1-t)^(n-i) backwards
	var buf [maxStackDegree + 1]float64
	var us []float64
	if n <= maxStackDegree {
		us = buf[:n+1]
	} else {
		us = make([]float64, n+1)
	}
	us[n] = 1
	for i := n - 1; i >= 0; i-- {
		us[i] = us[i+1] * u
	}

	var p Vec2
	tp := 1.0
	for i, cp := range b.points {
		w := b.binom[i] * tp * us[i]
		p.X += w * cp.X
		p.Y += w * cp.Y
		tp *= t
	}
	return p
}

// maxStackDegree bounds the scratch buffer kept on the stack in At
const maxStackDegree = 63
