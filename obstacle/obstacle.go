// Package obstacle turns an occupancy image into a rectangle cover and answers
// footprint collision queries against it
package obstacle

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrInvalidCellSize = errors.New("cell size must be at least 1 pixel")
	ErrNilImage        = errors.New("occupancy image is nil")
)

// Build covers every occupied pixel of img with axis-aligned rectangles
// The image is cut into cellSize×cellSize cells (edge cells truncated); each column
// is walked top to bottom and consecutive occupied cells merge into one rectangle
// Output is column-major
func Build(img image.Image, cellSize int) ([]vmath.RectF, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if cellSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCellSize, cellSize)
	}

	b := img.Bounds()
	var rects []vmath.RectF

	for x := b.Min.X; x < b.Max.X; x += cellSize {
		w := float64(min(cellSize, b.Max.X-x))

		// Open run in this column, Empty when none
		var run vmath.RectF

		for y := b.Min.Y; y < b.Max.Y; y += cellSize {
			cell := vmath.RectF{
				Left:   float64(x),
				Top:    float64(y),
				Width:  w,
				Height: float64(min(cellSize, b.Max.Y-y)),
			}

			if !IsOccupied(img, cell) {
				if !run.Empty() {
					rects = append(rects, run)
					run = vmath.RectF{}
				}
				continue
			}

			if run.Empty() {
				run = cell
			} else {
				run.Height += cell.Height
			}
		}

		if !run.Empty() {
			rects = append(rects, run)
		}
	}

	return rects, nil
}

// IsOccupied scans the pixels of rect inclusively, floor(left/top) through
// ceil(right/bottom), clamped to the image bounds
// A pixel is occupied when its alpha is non-zero and it is not pure black
func IsOccupied(img image.Image, rect vmath.RectF) bool {
	b := img.Bounds()

	x0 := max(int(math.Floor(rect.Left)), b.Min.X)
	y0 := max(int(math.Floor(rect.Top)), b.Min.Y)
	x1 := min(int(math.Ceil(rect.Right())), b.Max.X-1)
	y1 := min(int(math.Ceil(rect.Bottom())), b.Max.Y-1)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				i := rgba.PixOffset(x, y)
				p := rgba.Pix[i : i+4 : i+4]
				if p[3] > 0 && (p[0] > 0 || p[1] > 0 || p[2] > 0) {
					return true
				}
			}
		}
		return false
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if occupiedColor(img.At(x, y)) {
				return true
			}
		}
	}
	return false
}

func occupiedColor(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return a > 0 && r+g+b > 0
}

// Field is an immutable obstacle map safe for concurrent readers
type Field struct {
	img    *image.RGBA
	rects  []vmath.RectF
	bounds image.Rectangle
}

// NewField copies img to a zero-origin RGBA and builds its rectangle cover
// Domain coordinates are always relative to the image's top-left corner
func NewField(img image.Image, cellSize int) (*Field, error) {
	src := img.Bounds()
	b := image.Rect(0, 0, src.Dx(), src.Dy())
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, src.Min, draw.Src)

	rects, err := Build(rgba, cellSize)
	if err != nil {
		return nil, err
	}
	return &Field{img: rgba, rects: rects, bounds: b}, nil
}

// Collides reports whether box overlaps a cover rectangle on an occupied pixel
// Both checks are needed: the cover is conservative at cell granularity
func (f *Field) Collides(box vmath.RectF) bool {
	for _, r := range f.rects {
		inter, ok := vmath.Intersect(box, r)
		if !ok {
			continue
		}
		if IsOccupied(f.img, inter) {
			return true
		}
	}
	return false
}

// Rects returns a copy of the rectangle cover
func (f *Field) Rects() []vmath.RectF {
	return append([]vmath.RectF(nil), f.rects...)
}

// Bounds returns the image bounds
func (f *Field) Bounds() image.Rectangle {
	return f.bounds
}

// Size returns the domain width and height in pixels
func (f *Field) Size() vmath.Vec2 {
	return vmath.Vec2{X: float64(f.bounds.Dx()), Y: float64(f.bounds.Dy())}
}

// Image returns the read-only occupancy image
func (f *Field) Image() *image.RGBA {
	return f.img
}
