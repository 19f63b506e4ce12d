package main

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/path-evolution/genetic"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/planner"
	"github.com/lixenwraith/path-evolution/render"
	"github.com/lixenwraith/path-evolution/scenario"
	"github.com/lixenwraith/path-evolution/status"
)

// viewer is the display task: it owns the screen, polls the stage and
// drives the session from key presses
type viewer struct {
	*session
	screen tcell.Screen

	// Last consumed image and its conversion; reconverted on resize
	last        *image.RGBA
	frame       *render.Frame
	framesShown *atomic.Int64
}

func newViewer(s *session, screen tcell.Screen) *viewer {
	return &viewer{
		session:     s,
		screen:      screen,
		framesShown: s.registry.Ints.Get(status.KeyFramesShown),
	}
}

// handleKey applies a key press; false quits
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case 'r':
		if err := v.restart(); err != nil {
			v.logger.Error("restart failed", "error", err)
		}
	case '1', '2', '3':
		o := planner.Objectives[ev.Rune()-'1']
		sense := v.settings.FlipSense(o)
		v.logger.Info("objective sense flipped", "objective", o, "sense", sense)
	case 's':
		on := v.settings.ToggleStopOnCollision()
		v.logger.Info("stop on collision", "enabled", on)
	case 'm':
		if v.player != nil {
			v.logger.Info("audio", "enabled", v.player.ToggleMute())
		}
	}
	return true
}

// draw picks up a newly published frame, if any, and repaints the screen
func (v *viewer) draw() {
	width, height := v.screen.Size()
	if height < 2 {
		return
	}

	if img, ok := v.stage.Consume(); ok {
		v.stage.Recycle(v.last)
		v.last = img
		v.frame = nil
		v.framesShown.Add(1)
	}

	if v.last != nil {
		cols, rows := render.FitAspect(v.last.Rect.Dx(), v.last.Rect.Dy(), width, height-1)
		if v.frame == nil || v.frame.Width != cols || v.frame.Height != rows {
			v.frame = render.Convert(v.last, cols, rows)
		}
	}

	v.screen.Clear()
	if v.frame != nil {
		v.frame.Draw(v.screen, 0, 0)
	}
	v.drawStatus(width, height-1)
	v.screen.Show()
}

func (v *viewer) drawStatus(width, y int) {
	phase := v.registry.Strings.Get(status.KeyPhase).Load()
	label := parameter.StatusTextRunning
	switch phase {
	case planner.PhaseStopped, planner.PhaseFailed:
		label = parameter.StatusTextStopped
	case planner.PhaseDone:
		label = parameter.StatusTextDone
	}

	labelStyle := tcell.StyleDefault.
		Foreground(render.RGBToTcell(render.RGBBlack)).
		Background(render.RGBToTcell(render.FromColor(scenario.Wall))).
		Bold(true)
	x := drawText(v.screen, 0, y, labelStyle, label)

	senses := make([]string, len(planner.Objectives))
	for i, o := range planner.Objectives {
		mark := "-"
		if v.settings.Sense(o) == genetic.Maximize {
			mark = "+"
		}
		senses[i] = mark + o.String()
	}
	hit := "off"
	if v.settings.StopOnCollision() {
		hit = "on"
	}

	info := fmt.Sprintf(" gen %d  best %s  avg %s  dist %s  [%s] stop-on-hit:%s  %s",
		v.registry.Ints.Get(status.KeyGeneration).Load(),
		formatScore(v.registry.Floats.Get(status.KeyBestFitness).Get()),
		formatScore(v.registry.Floats.Get(status.KeyAvgFitness).Get()),
		formatScore(v.registry.Floats.Get(status.KeyBestDistance).Get()),
		strings.Join(senses, " "),
		hit,
		parameter.KeyHelp,
	)
	if len(info) > width-x {
		info = info[:max(width-x, 0)]
	}
	drawText(v.screen, x, y, tcell.StyleDefault, info)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func formatScore(f float64) string {
	switch {
	case math.IsNaN(f):
		return "-"
	case math.Abs(f) >= math.MaxFloat64:
		return "inf"
	case math.Abs(f) >= 1e4:
		return fmt.Sprintf("%.3g", f)
	default:
		return fmt.Sprintf("%.4f", f)
	}
}
