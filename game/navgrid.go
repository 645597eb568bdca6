package game

import "math"

// NavGrid is a boolean occupancy grid over the world. A cell is blocked when
// any obstacle covers part of it.
type NavGrid struct {
	Cols, Rows int
	blocked    []bool
}

// NewNavGrid rasterizes obstacles onto cells of the given size.
func NewNavGrid(width, height, cell float64, obstacles []Obstacle) *NavGrid {
	cols := int(math.Ceil(width / cell))
	rows := int(math.Ceil(height / cell))
	g := &NavGrid{Cols: cols, Rows: rows, blocked: make([]bool, cols*rows)}

	for _, o := range obstacles {
		x0 := int(o.Pos.X / cell)
		y0 := int(o.Pos.Y / cell)
		x1 := int(math.Ceil((o.Pos.X + o.Width) / cell))
		y1 := int(math.Ceil((o.Pos.Y + o.Height) / cell))
		if x0 < 0 {
			x0 = 0
		}
		if y0 < 0 {
			y0 = 0
		}
		for x := x0; x < x1 && x < cols; x++ {
			for y := y0; y < y1 && y < rows; y++ {
				g.blocked[y*cols+x] = true
			}
		}
	}
	return g
}

// Blocked reports whether cell (x, y) is covered by an obstacle.
// Cells outside the grid count as blocked.
func (g *NavGrid) Blocked(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Cols || y >= g.Rows {
		return true
	}
	return g.blocked[y*g.Cols+x]
}

// FreeCells returns the number of unblocked cells.
func (g *NavGrid) FreeCells() int {
	n := 0
	for _, b := range g.blocked {
		if !b {
			n++
		}
	}
	return n
}

// Connected reports whether every free cell is reachable from the first
// free cell through 4-neighbour steps. A grid with no free cell is not.
func (g *NavGrid) Connected() bool {
	start := -1
	for i, b := range g.blocked {
		if !b {
			start = i
			break
		}
	}
	if start < 0 {
		return false
	}
	return g.reachable(start) == g.FreeCells()
}

// reachable runs an iterative flood fill from cell index start.
func (g *NavGrid) reachable(start int) int {
	visited := make([]bool, len(g.blocked))
	stack := []int{start}
	visited[start] = true
	count := 0

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		x, y := idx%g.Cols, idx/g.Cols
		for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
			if g.Blocked(n[0], n[1]) {
				continue
			}
			ni := n[1]*g.Cols + n[0]
			if !visited[ni] {
				visited[ni] = true
				stack = append(stack, ni)
			}
		}
	}
	return count
}
