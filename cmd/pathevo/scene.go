package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/lixenwraith/path-evolution/config"
	"github.com/lixenwraith/path-evolution/scenario"
	"github.com/lixenwraith/path-evolution/vmath"
)

// scene is the occupancy image plus endpoints the scenario suggests
type scene struct {
	img   image.Image
	start *vmath.Vec2
	goal  *vmath.Vec2
}

// loadScene decodes cfg.Image when set, otherwise generates cfg.Kind
func loadScene(cfg config.ScenarioConfig) (scene, error) {
	if cfg.Image != "" {
		f, err := os.Open(cfg.Image)
		if err != nil {
			return scene{}, fmt.Errorf("open scenario: %w", err)
		}
		defer f.Close()

		img, err := png.Decode(f)
		if err != nil {
			return scene{}, fmt.Errorf("decode %s: %w", cfg.Image, err)
		}
		return scene{img: img}, nil
	}

	switch cfg.Kind {
	case config.ScenarioBlank:
		img, err := scenario.Blank(cfg.Width, cfg.Height)
		return scene{img: img}, err
	case config.ScenarioMaze:
		img, start, goal, err := scenario.Maze(cfg.Width, cfg.Height, cfg.CellSize, cfg.Braiding, cfg.Seed)
		if err != nil {
			return scene{}, err
		}
		return scene{img: img, start: &start, goal: &goal}, nil
	default:
		img, err := scenario.Blocks(cfg.Width, cfg.Height, cfg.Blocks, cfg.Seed)
		return scene{img: img}, err
	}
}
