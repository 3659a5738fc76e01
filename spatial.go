package main

import (
	"math"

	"github.com/jakecoffman/cp"
)

// SpatialCellSize covers the common acquire and seek radii in a few cells
const SpatialCellSize = 4.0

// SpatialGrid buckets live characters for proximity queries. It is rebuilt
// lazily: anything that moves a body marks it stale.
type SpatialGrid struct {
	minX, minY float64
	cols, rows int
	cells      [][]*Character
	stale      bool
}

// NewSpatialGrid covers the rectangle [minX,maxX]x[minY,maxY]. Positions
// outside it fall into the border cells.
func NewSpatialGrid(minX, minY, maxX, maxY float64) *SpatialGrid {
	cols := int(math.Ceil((maxX-minX)/SpatialCellSize)) + 1
	rows := int(math.Ceil((maxY-minY)/SpatialCellSize)) + 1
	return &SpatialGrid{
		minX:  minX,
		minY:  minY,
		cols:  cols,
		rows:  rows,
		cells: make([][]*Character, cols*rows),
		stale: true,
	}
}

// Invalidate forces a rebuild before the next query
func (g *SpatialGrid) Invalidate() { g.stale = true }

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cell(x, y float64) (int, int) {
	cx := int(math.Floor((x - g.minX) / SpatialCellSize))
	cy := int(math.Floor((y - g.minY) / SpatialCellSize))
	return min(max(cx, 0), g.cols-1), min(max(cy, 0), g.rows-1)
}

// Insert adds a character at its current position
func (g *SpatialGrid) Insert(c *Character) {
	p := c.Position()
	cx, cy := g.cell(p.X, p.Y)
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], c)
}

// Rebuild re-buckets every live character
func (g *SpatialGrid) Rebuild(chars []*Character) {
	g.Clear()
	for _, c := range chars {
		if c.Alive() {
			g.Insert(c)
		}
	}
	g.stale = false
}

// QueryBuf appends the characters in cells overlapping the square around p
// to buf and returns the extended slice
func (g *SpatialGrid) QueryBuf(p cp.Vector, radius float64, buf []*Character) []*Character {
	minCX, minCY := g.cell(p.X-radius, p.Y-radius)
	maxCX, maxCY := g.cell(p.X+radius, p.Y+radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
