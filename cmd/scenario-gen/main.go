package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/obstacle"
	"github.com/lixenwraith/path-evolution/parameter"
	"github.com/lixenwraith/path-evolution/scenario"
	"github.com/lixenwraith/path-evolution/vmath"
)

func main() {
	kind := flag.String("kind", config.ScenarioMaze, "Scenario kind: blank, blocks, maze")
	width := flag.Int("width", parameter.StageWidth, "Image width in pixels")
	height := flag.Int("height", parameter.StageHeight, "Image height in pixels")
	blocks := flag.Int("blocks", parameter.ScenarioBlocks, "Obstacle count for blocks")
	cell := flag.Int("cell", parameter.MazeCellSize, "Maze corridor pitch in pixels")
	braid := flag.Float64("braid", parameter.MazeBraiding, "Maze braiding factor [0.0 - 1.0]")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
	out := flag.String("o", "scenario.png", "Output PNG path")
	flag.Parse()

	if err := generate(*kind, *width, *height, *blocks, *cell, *braid, *seed, *out); err != nil {
		fmt.Fprintf(os.Stderr, "scenario-gen: %v\n", err)
		os.Exit(1)
	}
}

func generate(kind string, width, height, blocks, cell int, braid float64, seed uint64, out string) error {
	start := time.Now()

	var (
		img *image.RGBA
		err error
	)
	switch kind {
	case config.ScenarioBlank:
		img, err = scenario.Blank(width, height)
	case config.ScenarioBlocks:
		img, err = scenario.Blocks(width, height, blocks, seed)
	case config.ScenarioMaze:
		var s, g vmath.Vec2
		img, s, g, err = scenario.Maze(width, height, cell, braid, seed)
		if err == nil {
			fmt.Printf("Suggested route: start_x=%.4f start_y=%.4f goal_x=%.4f goal_y=%.4f\n", s.X, s.Y, g.X, g.Y)
		}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}

	rects, err := obstacle.Build(img, parameter.ObstacleCellSize)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%dx%d, %d cover rects, seed %d) in %v\n", out, width, height, len(rects), seed, time.Since(start))
	return nil
}
