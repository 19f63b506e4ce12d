package render

import (
	"image"

	"github.com/gdamore/tcell/v2"
)

// QuadrantChars maps 4-bit patterns to Unicode quadrant characters
// Bit order: 0=UL, 1=UR, 2=LL, 3=LR (1 = foreground)
var QuadrantChars = [16]rune{
	' ', '▘', '▝', '▀',
	'▖', '▌', '▞', '▛',
	'▗', '▚', '▐', '▜',
	'▄', '▙', '▟', '█',
}

// Cell is one converted terminal cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// Frame is a grid of converted cells, row-major
type Frame struct {
	Cells  []Cell
	Width  int
	Height int
}

// CellWriter is the subset of tcell.Screen used to draw a Frame
type CellWriter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Convert downsamples img into cols×rows quadrant cells
// Each cell covers a 2×2 grid of regions; a region's colour is the box average
// of the source pixels it covers so thin strokes fade rather than vanish
func Convert(img *image.RGBA, cols, rows int) *Frame {
	f := &Frame{Width: max(cols, 0), Height: max(rows, 0)}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if f.Width == 0 || f.Height == 0 || srcW == 0 || srcH == 0 {
		f.Width, f.Height = 0, 0
		return f
	}

	f.Cells = make([]Cell, f.Width*f.Height)
	gridW, gridH := f.Width*2, f.Height*2

	// Sample positions: [0]=UL, [1]=UR, [2]=LL, [3]=LR
	offsets := [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var pixels [4]RGB
			for i, off := range offsets {
				gx, gy := x*2+off[0], y*2+off[1]
				x0 := bounds.Min.X + gx*srcW/gridW
				x1 := bounds.Min.X + (gx+1)*srcW/gridW
				y0 := bounds.Min.Y + gy*srcH/gridH
				y1 := bounds.Min.Y + (gy+1)*srcH/gridH
				pixels[i] = average(img, x0, y0, max(x1, x0+1), max(y1, y0+1))
			}

			char, fg, bg := findBestQuadrant(pixels)
			f.Cells[y*f.Width+x] = Cell{Rune: char, Fg: fg, Bg: bg}
		}
	}

	return f
}

// average returns the mean colour of [x0,x1)×[y0,y1) clipped to img
func average(img *image.RGBA, x0, y0, x1, y1 int) RGB {
	r := image.Rect(x0, y0, x1, y1).Intersect(img.Bounds())
	if r.Empty() {
		return RGBBlack
	}

	var sr, sg, sb, n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sr += int(img.Pix[i])
			sg += int(img.Pix[i+1])
			sb += int(img.Pix[i+2])
			n++
			i += 4
		}
	}
	return RGB{uint8(sr / n), uint8(sg / n), uint8(sb / n)}
}

// findBestQuadrant finds the optimal quadrant character and fg/bg colors for 4 pixels
// Uses exhaustive search over all 16 patterns to minimize color error
func findBestQuadrant(pixels [4]RGB) (rune, RGB, RGB) {
	bestError := int(^uint(0) >> 1)
	bestPattern := 0
	var bestFg, bestBg RGB

	for pattern := 0; pattern < 16; pattern++ {
		fg, bg, err := patternColors(pixels, pattern)
		if err < bestError {
			bestError = err
			bestPattern = pattern
			bestFg = fg
			bestBg = bg
		}
	}

	return QuadrantChars[bestPattern], bestFg, bestBg
}

// patternColors averages each group of the pattern and returns the squared error
func patternColors(pixels [4]RGB, pattern int) (fg, bg RGB, totalError int) {
	var fgSum, bgSum [3]int
	var fgCount, bgCount int

	for i, p := range pixels {
		if pattern&(1<<i) != 0 {
			fgSum[0] += int(p.R)
			fgSum[1] += int(p.G)
			fgSum[2] += int(p.B)
			fgCount++
		} else {
			bgSum[0] += int(p.R)
			bgSum[1] += int(p.G)
			bgSum[2] += int(p.B)
			bgCount++
		}
	}

	if fgCount > 0 {
		fg = RGB{uint8(fgSum[0] / fgCount), uint8(fgSum[1] / fgCount), uint8(fgSum[2] / fgCount)}
	}
	if bgCount > 0 {
		bg = RGB{uint8(bgSum[0] / bgCount), uint8(bgSum[1] / bgCount), uint8(bgSum[2] / bgCount)}
	}

	for i, p := range pixels {
		target := bg
		if pattern&(1<<i) != 0 {
			target = fg
		}
		totalError += distanceSq(p, target)
	}

	return fg, bg, totalError
}

// distanceSq computes squared Euclidean distance in RGB space
func distanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Draw writes the frame at (originX, originY)
func (f *Frame) Draw(w CellWriter, originX, originY int) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := f.Cells[y*f.Width+x]
			style := tcell.StyleDefault.Foreground(RGBToTcell(c.Fg)).Background(RGBToTcell(c.Bg))
			w.SetContent(originX+x, originY+y, c.Rune, nil, style)
		}
	}
}

// FitAspect returns the largest cols×rows inside maxCols×maxRows that keeps the
// image aspect, assuming terminal cells twice as tall as wide
func FitAspect(srcW, srcH, maxCols, maxRows int) (cols, rows int) {
	if srcW <= 0 || srcH <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = cols * srcH / (srcW * 2)
	if rows > maxRows {
		rows = maxRows
		cols = rows * srcW * 2 / srcH
	}
	return max(cols, 1), max(rows, 1)
}
