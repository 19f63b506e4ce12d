package path

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/path-evolution/vmath"
)

func TestLayout_ControlPoints(t *testing.T) {
	start := vmath.Vec2{X: 0, Y: 0}
	goal := vmath.Vec2{X: 1, Y: 1}
	l := Layout{Free: []float64{0.2, 0.3, 0.4, 0.5}, Prefix: &start, Suffix: &goal}

	assert.Equal(t, []vmath.Vec2{start, {X: 0.2, Y: 0.3}, {X: 0.4, Y: 0.5}, goal}, l.ControlPoints())

	l.Suffix = nil
	assert.Len(t, l.ControlPoints(), 3)
}

func TestDecode_EndpointsAnyStep(t *testing.T) {
	start := vmath.Vec2{X: 0.1, Y: 0.9}
	goal := vmath.Vec2{X: 0.8, Y: 0.2}
	l := Layout{Free: []float64{0.5, -0.3, 1.2, 0.7, 0.3, 0.3}, Prefix: &start, Suffix: &goal}

	for _, step := range []float64{0.005, 0.01, 0.03, 0.07, 0.3, 0.333, 0.9, 1, 2.5} {
		samples, err := l.Decode(step)
		require.NoError(t, err, "step %v", step)
		require.GreaterOrEqual(t, len(samples), 2, "step %v", step)

		assert.Equal(t, start, samples[0], "step %v", step)
		assert.Equal(t, goal, samples[len(samples)-1], "step %v", step)
		assert.Equal(t, SampleCount(step), len(samples), "step %v", step)
	}
}

func TestDecode_ReciprocalStepsEndOnce(t *testing.T) {
	line := []vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}}
	for k := 1; k <= 2000; k++ {
		step := 1 / float64(k)
		samples, err := Decode(line, step)
		require.NoError(t, err, "k=%d", k)

		require.Len(t, samples, k+1, "k=%d", k)
		assert.Equal(t, SampleCount(step), len(samples), "k=%d", k)
		assert.Equal(t, line[1], samples[k], "k=%d", k)
		// The last segment is a full step, never a rounding sliver
		assert.InDelta(t, step, samples[k].X-samples[k-1].X, step*1e-6, "k=%d", k)
	}
}

func TestDecode_DefaultStepCount(t *testing.T) {
	samples, err := Decode([]vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, 0.25)
	require.NoError(t, err)
	require.Len(t, samples, 5)
	for i, p := range samples {
		assert.InDelta(t, float64(i)*0.25, p.X, 1e-12)
	}
}

func TestDecode_PointsOnBezier(t *testing.T) {
	points := []vmath.Vec2{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 0}}
	samples, err := Decode(points, 0.5)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.InDelta(t, 0.5, samples[1].X, 1e-12)
	assert.InDelta(t, 0.5, samples[1].Y, 1e-12)
}

func TestDecode_Errors(t *testing.T) {
	points := []vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}
	for _, step := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := Decode(points, step)
		assert.ErrorIs(t, err, ErrInvalidStep, "step %v", step)
	}

	_, err := Decode(nil, 0.1)
	assert.ErrorIs(t, err, ErrNoControlPoints)

	_, err = Decode([]vmath.Vec2{{X: math.NaN()}}, 0.1)
	assert.ErrorIs(t, err, ErrNonFiniteControl)

	_, err = Layout{Free: []float64{0.1, 0.2, 0.3}}.Decode(0.1)
	assert.ErrorIs(t, err, ErrOddGeneCount)
}

func TestToDomain(t *testing.T) {
	out := ToDomain([]vmath.Vec2{{X: 0.5, Y: 0.25}, {X: 1, Y: 1}}, vmath.Vec2{X: 640, Y: 480})
	assert.Equal(t, []vmath.Vec2{{X: 320, Y: 120}, {X: 640, Y: 480}}, out)
}

func TestEncoder_DecodeAndFlatten(t *testing.T) {
	start := vmath.Vec2{X: 0, Y: 0}
	goal := vmath.Vec2{X: 1, Y: 1}
	enc := &Encoder{Prefix: &start, Suffix: &goal}

	points := enc.Decode([]float64{0.1, 0.2, 0.3, 0.4})
	assert.Equal(t, []vmath.Vec2{start, {X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}, goal}, points)

	prefix, suffix := enc.Flatten()
	assert.Equal(t, []float64{0, 0}, prefix)
	assert.Equal(t, []float64{1, 1}, suffix)

	free := &Encoder{Prefix: &start}
	_, suffix = free.Flatten()
	assert.Nil(t, suffix)
	assert.Len(t, free.Decode([]float64{0.5, 0.5}), 2)
}
