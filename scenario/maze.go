package scenario

import (
	"math/rand/v2"
)

// cell is a grid coordinate in maze units
type cell struct {
	X, Y int
}

var (
	orthogonal = [4]cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	jumps      = [4]cell{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
)

// grid is a wall map; true is wall
// Rooms sit on odd coordinates, the walls between them on mixed parity
type grid struct {
	walls      [][]bool
	cols, rows int
}

func newGrid(cols, rows int) *grid {
	cols, rows = ensureOdd(cols), ensureOdd(rows)
	walls := make([][]bool, rows)
	for y := range walls {
		walls[y] = make([]bool, cols)
		for x := range walls[y] {
			walls[y][x] = true
		}
	}
	return &grid{walls: walls, cols: cols, rows: rows}
}

func (g *grid) in(c cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

func (g *grid) wall(c cell) bool {
	return !g.in(c) || g.walls[c.Y][c.X]
}

func (g *grid) open(c cell) {
	g.walls[c.Y][c.X] = false
}

// carve runs a randomized depth-first backtracker from start, producing a spanning tree
func (g *grid) carve(start cell, rng *rand.Rand) {
	g.open(start)
	stack := []cell{start}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]

		var candidates [4]cell
		n := 0
		for _, d := range jumps {
			next := cell{curr.X + d.X, curr.Y + d.Y}
			// Keep the outer ring solid
			if next.X > 0 && next.X < g.cols-1 && next.Y > 0 && next.Y < g.rows-1 && g.wall(next) {
				candidates[n] = d
				n++
			}
		}

		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.IntN(n)]
		g.open(cell{curr.X + d.X/2, curr.Y + d.Y/2})
		next := cell{curr.X + d.X, curr.Y + d.Y}
		g.open(next)
		stack = append(stack, next)
	}
}

// braid opens a wall at dead ends with the given probability, adding loops
// Openings that would create a 2×2 open plaza or an isolated pillar are skipped
func (g *grid) braid(probability float64, rng *rand.Rand) {
	if probability <= 0 {
		return
	}
	for y := 1; y < g.rows-1; y += 2 {
		for x := 1; x < g.cols-1; x += 2 {
			room := cell{x, y}
			if g.wall(room) || g.exits(room) != 1 || rng.Float64() >= probability {
				continue
			}

			var candidates [4]cell
			n := 0
			for _, d := range jumps {
				next := cell{x + d.X, y + d.Y}
				between := cell{x + d.X/2, y + d.Y/2}
				if g.in(next) && !g.wall(next) && g.wall(between) && g.safeToOpen(between) {
					candidates[n] = between
					n++
				}
			}
			if n > 0 {
				g.open(candidates[rng.IntN(n)])
			}
		}
	}
}

func (g *grid) exits(c cell) int {
	n := 0
	for _, d := range orthogonal {
		if !g.wall(cell{c.X + d.X, c.Y + d.Y}) {
			n++
		}
	}
	return n
}

// safeToOpen reports whether opening c keeps the maze free of plazas and pillars
func (g *grid) safeToOpen(c cell) bool {
	passage := func(x, y int) bool { return !g.wall(cell{x, y}) }

	for _, q := range [4][3]cell{
		{{-1, -1}, {0, -1}, {-1, 0}},
		{{0, -1}, {1, -1}, {1, 0}},
		{{-1, 0}, {-1, 1}, {0, 1}},
		{{1, 0}, {0, 1}, {1, 1}},
	} {
		if passage(c.X+q[0].X, c.Y+q[0].Y) && passage(c.X+q[1].X, c.Y+q[1].Y) && passage(c.X+q[2].X, c.Y+q[2].Y) {
			return false
		}
	}

	for _, d := range orthogonal {
		n := cell{c.X + d.X, c.Y + d.Y}
		if !g.in(n) || !g.wall(n) {
			continue
		}
		connections := 0
		for _, d2 := range orthogonal {
			nn := cell{n.X + d2.X, n.Y + d2.Y}
			if nn != c && g.in(nn) && g.wall(nn) {
				connections++
			}
		}
		if connections == 0 {
			return false
		}
	}
	return true
}

// solve returns the shortest passage route from start to end, nil when unreachable
func (g *grid) solve(start, end cell) []cell {
	if g.wall(start) || g.wall(end) {
		return nil
	}

	cameFrom := map[cell]cell{start: start}
	queue := []cell{start}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			var route []cell
			for curr != start {
				route = append(route, curr)
				curr = cameFrom[curr]
			}
			route = append(route, start)
			for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
				route[i], route[j] = route[j], route[i]
			}
			return route
		}

		for _, d := range orthogonal {
			next := cell{curr.X + d.X, curr.Y + d.Y}
			if _, seen := cameFrom[next]; seen || g.wall(next) {
				continue
			}
			cameFrom[next] = curr
			queue = append(queue, next)
		}
	}
	return nil
}

// ensureOdd rounds down to an odd size of at least 3
func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
