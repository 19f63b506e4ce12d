// Package stage holds the decaying set of recent trajectories and the single
// writer / single reader hand-off of their rendered frame
package stage

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tfriedel6/canvas"
	"github.com/tfriedel6/canvas/backend/softwarebackend"

	"github.com/lixenwraith/path-evolution/genetic/fitness"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/vmath"
)

var (
	ErrInvalidLifetime = errors.New("trajectory lifetime must be positive")
	ErrInvalidSize     = errors.New("stage size must be positive")
	ErrLengthMismatch  = errors.New("curves and fitness differ in length")
)

// Trajectory is one individual's curve in domain coordinates
type Trajectory struct {
	Points    []vmath.Vec2
	Fitness   float64
	Remaining int
	Color     color.RGBA
}

// Config sizes the offscreen frame and sets the decay lifetime
type Config struct {
	Lifetime int
	Width    int
	Height   int
	// Background is drawn under the trajectories; nil leaves the frame black
	Background image.Image
}

// DefaultConfig returns the default lifetime and frame size
func DefaultConfig() Config {
	return Config{
		Lifetime: parameter.TrajectoryLifetime,
		Width:    parameter.StageWidth,
		Height:   parameter.StageHeight,
	}
}

// Stage is written by the solver goroutine and read by the display goroutine
// Tick, Push and Update belong to the producer and must not be called concurrently;
// Consume, Recycle and Snapshot are safe from any goroutine
type Stage struct {
	config     Config
	background *image.RGBA

	// Producer-owned, oldest first
	queue []Trajectory

	// Producer-owned raster target; its image is copied into each pooled frame
	backend *softwarebackend.SoftwareBackend
	cv      *canvas.Canvas

	buffers sync.Pool

	mu        sync.Mutex
	published *image.RGBA
	available bool
	lastCurve [][]vmath.Vec2
	lastScore []float64
	frames    uint64
}

// New validates config and pre-renders the background
func New(config Config) (*Stage, error) {
	if config.Lifetime < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLifetime, config.Lifetime)
	}
	if config.Width < 1 || config.Height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, config.Width, config.Height)
	}

	bounds := image.Rect(0, 0, config.Width, config.Height)
	bg := image.NewRGBA(bounds)
	draw.Draw(bg, bounds, image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	if config.Background != nil {
		draw.Draw(bg, bounds, config.Background, config.Background.Bounds().Min, draw.Over)
	}

	backend := softwarebackend.New(config.Width, config.Height)
	s := &Stage{
		config:     config,
		background: bg,
		backend:    backend,
		cv:         canvas.New(backend),
	}
	s.cv.SetLineWidth(1)
	s.buffers.New = func() any {
		return image.NewRGBA(bounds)
	}
	return s, nil
}

// Tick ages every live trajectory by one and evicts expired ones from the front
func (s *Stage) Tick() {
	for i := range s.queue {
		s.queue[i].Remaining--
	}

	n := 0
	for n < len(s.queue) && s.queue[n].Remaining <= 0 {
		n++
	}
	if n > 0 {
		s.queue = slices.Delete(s.queue, 0, n)
	}
}

// Push appends one trajectory per individual at full lifetime
func (s *Stage) Push(curves [][]vmath.Vec2, scores []float64) error {
	if len(curves) != len(scores) {
		return fmt.Errorf("%w: %d curves, %d scores", ErrLengthMismatch, len(curves), len(scores))
	}
	for i, c := range curves {
		s.queue = append(s.queue, Trajectory{
			Points:    c,
			Fitness:   scores[i],
			Remaining: s.config.Lifetime,
		})
	}
	return nil
}

// Update is the per-generation producer call: age, push, colour, render, publish
func (s *Stage) Update(curves [][]vmath.Vec2, scores []float64) error {
	s.Tick()
	if err := s.Push(curves, scores); err != nil {
		return err
	}
	s.colorize()

	frame := s.buffers.Get().(*image.RGBA)
	s.render(frame)
	s.publish(frame, curves, scores)
	return nil
}

// colorize ranks live trajectories by fitness: worst at HueStart, best at HueStart+HueSpan
// Older trajectories fade in proportion to their remaining lifetime
func (s *Stage) colorize() {
	scores := make([]float64, len(s.queue))
	for i, t := range s.queue {
		scores[i] = t.Fitness
	}
	normalized := fitness.NormalizeSet(scores)

	for i := range s.queue {
		t := &s.queue[i]
		n := normalized[i]
		scale := float64(t.Remaining) / float64(s.config.Lifetime)

		t.Color = hueColor(n*parameter.HueSpan+parameter.HueStart, math.Round(n*scale*255))
	}
}

// hueColor builds a full saturation/value colour; hue in degrees, any range
func hueColor(hue, alpha float64) color.RGBA {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := colorful.Hsv(hue, 1, 1).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(max(0, min(255, alpha)))}
}

func (s *Stage) render(frame *image.RGBA) {
	copy(s.backend.Image.Pix, s.background.Pix)
	for _, t := range s.queue {
		if t.Color.A == 0 {
			continue
		}
		s.stroke(t.Points, t.Color)
	}
	copy(frame.Pix, s.backend.Image.Pix)
}

// stroke draws points as one open polyline; non-finite points split it
// Coordinates are shifted to pixel centres so a segment on row y covers row y
func (s *Stage) stroke(points []vmath.Vec2, c color.RGBA) {
	style := color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}

	if len(points) == 1 {
		if p := points[0]; vmath.V2Finite(p) {
			s.cv.SetFillStyle(style)
			s.cv.FillRect(math.Floor(p.X), math.Floor(p.Y), 1, 1)
		}
		return
	}

	s.cv.SetStrokeStyle(style)
	s.cv.BeginPath()
	open := false
	for _, p := range points {
		if !vmath.V2Finite(p) {
			open = false
			continue
		}
		if open {
			s.cv.LineTo(p.X+0.5, p.Y+0.5)
		} else {
			s.cv.MoveTo(p.X+0.5, p.Y+0.5)
			open = true
		}
	}
	s.cv.Stroke()
}

// publish swaps the frame in under the lock; an unconsumed older frame is recycled
func (s *Stage) publish(frame *image.RGBA, curves [][]vmath.Vec2, scores []float64) {
	s.mu.Lock()
	old := s.published
	s.published = frame
	s.available = true
	s.lastCurve = curves
	s.lastScore = scores
	s.frames++
	s.mu.Unlock()

	if old != nil {
		s.buffers.Put(old)
	}
}

// Consume hands the newest unread frame to the caller and clears the flag
// The caller owns the frame until it passes it to Recycle
func (s *Stage) Consume() (*image.RGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available {
		return nil, false
	}
	frame := s.published
	s.published = nil
	s.available = false
	return frame, true
}

// Recycle returns a consumed frame for reuse
func (s *Stage) Recycle(frame *image.RGBA) {
	if frame == nil || frame.Rect != s.background.Rect {
		return
	}
	s.buffers.Put(frame)
}

// Snapshot copies the last published population curves and fitness
func (s *Stage) Snapshot() ([][]vmath.Vec2, []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	curves := make([][]vmath.Vec2, len(s.lastCurve))
	for i, c := range s.lastCurve {
		curves[i] = slices.Clone(c)
	}
	return curves, slices.Clone(s.lastScore)
}

// Frames returns how many frames have been published
func (s *Stage) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Live returns a copy of the producer's queue; producer goroutine only
func (s *Stage) Live() []Trajectory {
	return slices.Clone(s.queue)
}

// Len returns the number of live trajectories; producer goroutine only
func (s *Stage) Len() int {
	return len(s.queue)
}

// Background returns the pre-rendered background frame
func (s *Stage) Background() *image.RGBA {
	return s.background
}
