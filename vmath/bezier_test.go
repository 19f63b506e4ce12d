package vmath

import (
	"math"
	"testing"
)

func TestBezier_Endpoints(t *testing.T) {
	pts := []Vec2{{0.1, 0.2}, {0.9, -0.3}, {1.4, 0.7}, {-0.2, 0.5}, {0.75, 0.8}}
	b := NewBezier(pts)

	if got := b.At(0); got != pts[0] {
		t.Errorf("At(0) = %v, want %v", got, pts[0])
	}
	if got := b.At(1); got != pts[len(pts)-1] {
		t.Errorf("At(1) = %v, want %v", got, pts[len(pts)-1])
	}
}

func TestBezier_LinearMidpoint(t *testing.T) {
	b := NewBezier([]Vec2{{0, 0}, {2, 4}})
	got := b.At(0.5)
	if got.X != 1 || got.Y != 2 {
		t.Errorf("expected (1,2), got %v", got)
	}
}

func TestBezier_QuadraticMatchesClosedForm(t *testing.T) {
	p0, p1, p2 := Vec2{0, 0}, Vec2{1, 2}, Vec2{2, 0}
	b := NewBezier([]Vec2{p0, p1, p2})

	for _, tt := range []float64{0.1, 0.25, 0.6, 0.9} {
		u := 1 - tt
		want := Vec2{
			X: u*u*p0.X + 2*u*tt*p1.X + tt*tt*p2.X,
			Y: u*u*p0.Y + 2*u*tt*p1.Y + tt*tt*p2.Y,
		}
		got := b.At(tt)
		if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
			t.Errorf("t=%v: got %v, want %v", tt, got, want)
		}
	}
}

func TestBezier_HighDegreeUsesHeapScratch(t *testing.T) {
	pts := make([]Vec2, maxStackDegree+10)
	for i := range pts {
		pts[i] = Vec2{float64(i), 1}
	}
	b := NewBezier(pts)

	// Every control point has Y=1, so the curve is the constant line Y=1
	if got := b.At(0.37); math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("expected Y=1, got %v", got.Y)
	}
	if got := b.At(1); got != pts[len(pts)-1] {
		t.Errorf("At(1) = %v, want %v", got, pts[len(pts)-1])
	}
}

func TestIntersect(t *testing.T) {
	a := RectF{Left: 0, Top: 0, Width: 10, Height: 10}
	b := RectF{Left: 5, Top: 8, Width: 10, Height: 10}

	r, ok := Intersect(a, b)
	if !ok {
		t.Fatal("expected overlap")
	}
	if r != (RectF{Left: 5, Top: 8, Width: 5, Height: 2}) {
		t.Errorf("unexpected intersection %v", r)
	}

	// Touching edges carry no area
	if _, ok := Intersect(a, RectF{Left: 10, Top: 0, Width: 5, Height: 5}); ok {
		t.Error("touching rectangles should not intersect")
	}
}

func TestOrientedBounds(t *testing.T) {
	r := OrientedBounds(Vec2{50, 50}, 10, 20, 0)
	if r != (RectF{Left: 45, Top: 40, Width: 10, Height: 20}) {
		t.Errorf("unrotated bounds %v", r)
	}

	r = OrientedBounds(Vec2{50, 50}, 10, 20, math.Pi/2)
	if math.Abs(r.Width-20) > 1e-9 || math.Abs(r.Height-10) > 1e-9 {
		t.Errorf("quarter turn should swap extents, got %v", r)
	}
}
