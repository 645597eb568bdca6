package game

import "math"

// SpatialCellSize is about twice the largest obstacle edge.
const SpatialCellSize = 80.0

// SpatialGrid is a fixed-size grid of obstacle indices for broad-phase
// queries. Obstacles are static, so it is built once.
type SpatialGrid struct {
	cols, rows int
	cells      [][]int
}

// NewSpatialGrid creates an empty grid covering a width×height world.
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(math.Ceil(width/SpatialCellSize)) + 1
	rows := int(math.Ceil(height/SpatialCellSize)) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]int, cols*rows),
	}
}

// span returns the clamped cell range overlapping r.
func (g *SpatialGrid) span(r Rect) (minCX, maxCX, minCY, maxCY int) {
	minCX = clampCell(int(math.Floor(r.X/SpatialCellSize)), g.cols)
	maxCX = clampCell(int(math.Floor((r.X+r.W)/SpatialCellSize)), g.cols)
	minCY = clampCell(int(math.Floor(r.Y/SpatialCellSize)), g.rows)
	maxCY = clampCell(int(math.Floor((r.Y+r.H)/SpatialCellSize)), g.rows)
	return
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// InsertRect adds idx to every cell overlapping r.
func (g *SpatialGrid) InsertRect(r Rect, idx int) {
	minCX, maxCX, minCY, maxCY := g.span(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			i := cy*g.cols + cx
			g.cells[i] = append(g.cells[i], idx)
		}
	}
}

// QueryBuf appends the indices in cells overlapping r to buf and returns the
// extended slice. An index may appear more than once.
func (g *SpatialGrid) QueryBuf(r Rect, buf []int) []int {
	minCX, maxCX, minCY, maxCY := g.span(r)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
