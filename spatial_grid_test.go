package main

import "testing"

func containsCell(entries []gridEntry, c *Cell) bool {
	for _, e := range entries {
		if e.cell == c {
			return true
		}
	}
	return false
}

func TestNeighborhoodFindsAdjacentPair(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	a := NewCell(nil, 100, 100, 100)
	b := NewCell(nil, 101, 100, 100) // 1px apart
	g.Rebuild([]*Cell{a, b}, nil)

	if !containsCell(g.Neighborhood(a.X, a.Y), b) {
		t.Fatalf("b missing from a's neighborhood")
	}
	if !containsCell(g.Neighborhood(b.X, b.Y), a) {
		t.Fatalf("a missing from b's neighborhood")
	}
}

func TestNeighborhoodSpansCellBorders(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	// Straddle a grid-cell boundary: keys differ but the pair must still
	// be mutual candidates.
	a := NewCell(nil, GridCellSize-1, 100, 100)
	b := NewCell(nil, GridCellSize+1, 100, 100)
	g.Rebuild([]*Cell{a, b}, nil)

	if !containsCell(g.Neighborhood(a.X, a.Y), b) {
		t.Fatalf("cross-border neighbor missed")
	}
}

func TestDistantEntitiesAreNeverCandidates(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	a := NewCell(nil, 0, 0, 100)
	b := NewCell(nil, 10*GridCellSize, 0, 100)
	g.Rebuild([]*Cell{a, b}, nil)

	if containsCell(g.Neighborhood(a.X, a.Y), b) {
		t.Fatalf("distant entity appeared as candidate")
	}
	if containsCell(g.Neighborhood(b.X, b.Y), a) {
		t.Fatalf("distant entity appeared as candidate (reverse)")
	}
}

func TestRebuildDropsPreviousContents(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	a := NewCell(nil, 100, 100, 100)
	g.Rebuild([]*Cell{a}, nil)
	g.Rebuild(nil, nil)

	if len(g.Neighborhood(100, 100)) != 0 {
		t.Fatalf("rebuild did not clear previous contents")
	}
}

func TestRebuildSkipsInactive(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	a := NewCell(nil, 100, 100, 100)
	a.Deactivate()
	f := NewFoodAt(100, 100)
	f.Active = false
	g.Rebuild([]*Cell{a}, []*Food{f})

	if len(g.Neighborhood(100, 100)) != 0 {
		t.Fatalf("inactive entities were indexed")
	}
}

func TestQueryRegion(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	in := NewFoodAt(50, 50)
	out := NewFoodAt(5*GridCellSize, 5*GridCellSize)
	g.Rebuild(nil, []*Food{in, out})

	entries := g.QueryRegion(0, 0, 100, 100)
	foundIn, foundOut := false, false
	for _, e := range entries {
		if e.food == in {
			foundIn = true
		}
		if e.food == out {
			foundOut = true
		}
	}
	if !foundIn {
		t.Fatalf("region query missed contained food")
	}
	if foundOut {
		t.Fatalf("region query returned food far outside the rectangle")
	}
}

func TestNearbyFoodRadiusFilter(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	near := NewFoodAt(110, 100)
	far := NewFoodAt(100+2*GridCellSize, 100)
	g.Rebuild(nil, []*Food{near, far})

	found := g.NearbyFood(100, 100, 50)
	if len(found) != 1 || found[0] != near {
		t.Fatalf("NearbyFood = %v, want only the near pellet", found)
	}
}

func TestNearbyCellsExcludesOwner(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	mine := newTestPlayer("me", 100, 100, 100)
	other := newTestPlayer("other", 120, 100, 100)
	g.Rebuild([]*Cell{mine.Cells[0], other.Cells[0]}, nil)

	found := g.NearbyCells(100, 100, 50, "me")
	if len(found) != 1 || found[0] != other.Cells[0] {
		t.Fatalf("NearbyCells should exclude the querying owner's cells")
	}
}

func TestQueryIsDeterministic(t *testing.T) {
	g := NewSpatialGrid(GridCellSize)
	cells := []*Cell{
		NewCell(nil, 10, 10, 100),
		NewCell(nil, 20, 10, 100),
		NewCell(nil, 30, 10, 100),
	}
	g.Rebuild(cells, nil)
	first := g.Neighborhood(20, 10)

	g.Rebuild(cells, nil)
	second := g.Neighborhood(20, 10)

	if len(first) != len(second) {
		t.Fatalf("candidate counts differ between identical rebuilds")
	}
	for i := range first {
		if first[i].cell != second[i].cell {
			t.Fatalf("candidate order differs at %d between identical rebuilds", i)
		}
	}
}
