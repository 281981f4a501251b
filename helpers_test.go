package main

// Shared test fixtures. Worlds are built empty (no random food) so
// scenarios stay deterministic.

func newTestWorld(b Bounds) *World {
	return &World{
		Bounds:  b,
		Players: make(map[string]*Player),
		Food:    make(map[uint64]*Food),
		Grid:    NewSpatialGrid(GridCellSize),
	}
}

func newTestBounds() Bounds {
	return Bounds{MinX: 0, MinY: 0, MaxX: 2000, MaxY: 2000}
}

// newTestPlayer builds an owner with a single cell at an exact position,
// bypassing the random spawn.
func newTestPlayer(id string, x, y, mass float64) *Player {
	p := &Player{
		ID:         id,
		Name:       id,
		Color:      "#ffffff",
		Controller: ControllerHuman,
		Alive:      true,
		LastSplit:  -RecombineCooldown,
		TargetX:    x,
		TargetY:    y,
	}
	c := NewCell(p, x, y, mass)
	p.Cells = []*Cell{c}
	p.TotalMass = c.Mass
	return p
}
