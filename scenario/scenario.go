// Package scenario generates obstacle images for the planner
// White opaque pixels are obstacles; everything else is free space
package scenario

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"

	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrInvalidSize     = errors.New("invalid scenario size")
	ErrInvalidCellSize = errors.New("invalid maze cell size")
	ErrUnsolvable      = errors.New("maze has no route between start and goal")
)

// Wall is the obstacle colour
var Wall = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// keepOut is the half side, in pixels, of the square kept clear around the endpoints
const keepOut = 30

// Blank returns a transparent stage framed by a solid border
func Blank(width, height int) (*image.RGBA, error) {
	if width <= 2*parameter.BorderThickness || height <= 2*parameter.BorderThickness {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	drawBorder(img, parameter.BorderThickness)
	return img, nil
}

// Blocks returns a bordered stage with count random rectangles
// Blocks never cover the default start and goal
func Blocks(width, height, count int, seed uint64) (*image.RGBA, error) {
	img, err := Blank(width, height)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	reserved := []image.Rectangle{
		around(vmath.Vec2{X: parameter.StartX * float64(width), Y: parameter.StartY * float64(height)}),
		around(vmath.Vec2{X: parameter.GoalX * float64(width), Y: parameter.GoalY * float64(height)}),
	}

	minSide := max(min(width, height)/16, 1)
	maxSide := max(min(width, height)/5, minSide+1)

	placed := 0
	for attempt := 0; placed < count && attempt < count*20; attempt++ {
		w := minSide + rng.IntN(maxSide-minSide)
		h := minSide + rng.IntN(maxSide-minSide)
		x := rng.IntN(max(width-w, 1))
		y := rng.IntN(max(height-h, 1))
		block := image.Rect(x, y, x+w, y+h)

		free := true
		for _, r := range reserved {
			if block.Overlaps(r) {
				free = false
				break
			}
		}
		if !free {
			continue
		}

		fill(img, block)
		placed++
	}
	return img, nil
}

// Maze returns a braided maze image and the normalized start and goal at
// the centres of its left-middle and right-middle rooms
// cellSize is the corridor pitch: one passage plus one wall
func Maze(width, height, cellSize int, braiding float64, seed uint64) (img *image.RGBA, start, goal vmath.Vec2, err error) {
	if cellSize < 2 {
		return nil, start, goal, fmt.Errorf("%w: %d", ErrInvalidCellSize, cellSize)
	}
	unit := cellSize / 2
	cols, rows := width/unit, height/unit
	if cols < 3 || rows < 3 {
		return nil, start, goal, fmt.Errorf("%w: %dx%d holds no maze at cell size %d", ErrInvalidSize, width, height, cellSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x3a2e))
	g := newGrid(cols, rows)
	g.carve(cell{1, 1}, rng)
	g.braid(braiding, rng)

	middle := g.rows / 2
	if middle%2 == 0 {
		middle--
	}
	from := cell{1, middle}
	to := cell{g.cols - 2, middle}
	if g.solve(from, to) == nil {
		return nil, start, goal, ErrUnsolvable
	}

	img = image.NewRGBA(image.Rect(0, 0, width, height))
	// Space outside the grid stays blocked
	fill(img, img.Bounds())
	for y := range g.rows {
		for x := range g.cols {
			if !g.walls[y][x] {
				draw.Draw(img, image.Rect(x*unit, y*unit, (x+1)*unit, (y+1)*unit), image.Transparent, image.Point{}, draw.Src)
			}
		}
	}

	centre := func(c cell) vmath.Vec2 {
		return vmath.Vec2{
			X: (float64(c.X) + 0.5) * float64(unit) / float64(width),
			Y: (float64(c.Y) + 0.5) * float64(unit) / float64(height),
		}
	}
	return img, centre(from), centre(to), nil
}

func drawBorder(img *image.RGBA, thickness int) {
	b := img.Bounds()
	fill(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+thickness))
	fill(img, image.Rect(b.Min.X, b.Max.Y-thickness, b.Max.X, b.Max.Y))
	fill(img, image.Rect(b.Min.X, b.Min.Y, b.Min.X+thickness, b.Max.Y))
	fill(img, image.Rect(b.Max.X-thickness, b.Min.Y, b.Max.X, b.Max.Y))
}

func fill(img *image.RGBA, r image.Rectangle) {
	draw.Draw(img, r, image.NewUniform(Wall), image.Point{}, draw.Src)
}

func around(p vmath.Vec2) image.Rectangle {
	x, y := int(p.X), int(p.Y)
	return image.Rect(x-keepOut, y-keepOut, x+keepOut, y+keepOut)
}
