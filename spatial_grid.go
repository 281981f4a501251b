package main

import "math"

// cellKey uniquely identifies a grid cell
type cellKey struct {
	cx, cy int
}

// gridEntry is a broad-phase record: exactly one of cell/food is set.
type gridEntry struct {
	cell *Cell
	food *Food
	x, y float64
}

// SpatialGrid is a hash grid for broad-phase proximity queries. It is fully
// rebuilt every tick before any query is issued; buckets are never aliased
// across ticks. Query results may contain false positives (neighboring-cell
// entities beyond the interaction radius) — callers apply the exact circle
// test. No false negatives occur for overlapping pairs as long as the
// configured cell size is at least twice the largest effective radius.
type SpatialGrid struct {
	cells    map[cellKey][]gridEntry
	cellSize float64
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cells:    make(map[cellKey][]gridEntry),
		cellSize: cellSize,
	}
}

// Clear resets all cells
func (g *SpatialGrid) Clear() {
	g.cells = make(map[cellKey][]gridEntry)
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

// Rebuild clears and repopulates the grid from the given snapshots in O(n).
// Given the same id-sorted snapshot it produces the same bucket contents in
// the same order, keeping candidate sets deterministic.
func (g *SpatialGrid) Rebuild(cells []*Cell, food []*Food) {
	g.Clear()
	for _, c := range cells {
		if c.Active {
			g.InsertCell(c)
		}
	}
	for _, f := range food {
		if f.Active {
			g.InsertFood(f)
		}
	}
}

// InsertCell adds an owner cell to the grid
func (g *SpatialGrid) InsertCell(c *Cell) {
	k := g.keyFor(c.X, c.Y)
	g.cells[k] = append(g.cells[k], gridEntry{cell: c, x: c.X, y: c.Y})
}

// InsertFood adds a food item to the grid
func (g *SpatialGrid) InsertFood(f *Food) {
	k := g.keyFor(f.X, f.Y)
	g.cells[k] = append(g.cells[k], gridEntry{food: f, x: f.X, y: f.Y})
}

// Neighborhood returns every entry in the 3x3 block of grid cells around
// (x, y), scanned in a fixed cx-then-cy order.
func (g *SpatialGrid) Neighborhood(x, y float64) []gridEntry {
	center := g.keyFor(x, y)
	results := []gridEntry{}
	for cx := center.cx - 1; cx <= center.cx+1; cx++ {
		for cy := center.cy - 1; cy <= center.cy+1; cy++ {
			results = append(results, g.cells[cellKey{cx, cy}]...)
		}
	}
	return results
}

// QueryRegion returns every entry in grid cells overlapping the rectangle.
func (g *SpatialGrid) QueryRegion(minX, minY, maxX, maxY float64) []gridEntry {
	minCX := int(math.Floor(minX / g.cellSize))
	maxCX := int(math.Floor(maxX / g.cellSize))
	minCY := int(math.Floor(minY / g.cellSize))
	maxCY := int(math.Floor(maxY / g.cellSize))

	results := []gridEntry{}
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			results = append(results, g.cells[cellKey{cx, cy}]...)
		}
	}
	return results
}

// NearbyFood returns active food within radius of (x, y).
func (g *SpatialGrid) NearbyFood(x, y, radius float64) []*Food {
	results := []*Food{}
	r2 := radius * radius
	for _, e := range g.QueryRegion(x-radius, y-radius, x+radius, y+radius) {
		if e.food == nil || !e.food.Active {
			continue
		}
		dx := e.x - x
		dy := e.y - y
		if dx*dx+dy*dy <= r2 {
			results = append(results, e.food)
		}
	}
	return results
}

// NearbyCells returns active cells within radius of (x, y), excluding cells
// owned by excludeOwner.
func (g *SpatialGrid) NearbyCells(x, y, radius float64, excludeOwner string) []*Cell {
	results := []*Cell{}
	r2 := radius * radius
	for _, e := range g.QueryRegion(x-radius, y-radius, x+radius, y+radius) {
		if e.cell == nil || !e.cell.Active {
			continue
		}
		if e.cell.Owner != nil && e.cell.Owner.ID == excludeOwner {
			continue
		}
		dx := e.x - x
		dy := e.y - y
		if dx*dx+dy*dy <= r2 {
			results = append(results, e.cell)
		}
	}
	return results
}
