package main

import (
	"math"
	"math/rand"
)

// Player is an owner aggregate: a human- or AI-controlled collection of
// 1..MaxCellsPerOwner cells sharing identity, color and split/recombine
// cooldowns. Bots are the same type with a different controller tag; only
// the source of movement targets differs.
type Player struct {
	ID         string
	Name       string
	Color      string
	Controller string // ControllerHuman or ControllerAI

	Cells []*Cell
	// TotalMass always equals the sum of active cell masses; recomputed
	// after every mass-changing operation in the cleanup phase.
	TotalMass float64

	// LastSplit gates further splitting and recombination (sim seconds).
	LastSplit float64

	Alive bool

	// TargetX/TargetY is where the controller wants the cells to steer.
	TargetX, TargetY float64
}

// NewPlayer spawns an owner with a single StartMass cell at a random
// position inside the world bounds, SpawnMargin away from the walls.
func NewPlayer(id, name, color, controller string, bounds Bounds) *Player {
	x := bounds.MinX + SpawnMargin + rand.Float64()*(bounds.Width()-2*SpawnMargin)
	y := bounds.MinY + SpawnMargin + rand.Float64()*(bounds.Height()-2*SpawnMargin)
	p := &Player{
		ID:         id,
		Name:       name,
		Color:      color,
		Controller: controller,
		Alive:      true,
		// A fresh owner has no split to cool down from; backdating past
		// the longest cooldown keeps both gates open from tick zero.
		LastSplit: -RecombineCooldown,
		TargetX:   x,
		TargetY:   y,
	}
	c := NewCell(p, x, y, StartMass)
	p.Cells = append(p.Cells, c)
	p.TotalMass = c.Mass
	return p
}

// SetTarget updates the steering target for all cells.
func (p *Player) SetTarget(x, y float64) {
	p.TargetX = x
	p.TargetY = y
}

// ActiveCellCount returns the number of active cells.
func (p *Player) ActiveCellCount() int {
	n := 0
	for _, c := range p.Cells {
		if c.Active {
			n++
		}
	}
	return n
}

// LargestCell returns the most massive active cell, or nil if none.
func (p *Player) LargestCell() *Cell {
	var best *Cell
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		if best == nil || c.Mass > best.Mass {
			best = c
		}
	}
	return best
}

// RecomputeTotalMass restores the owner mass invariant from active cells.
func (p *Player) RecomputeTotalMass() {
	total := 0.0
	for _, c := range p.Cells {
		if c.Active {
			total += c.Mass
		}
	}
	p.TotalMass = total
}

// MoveCells steers every active cell toward the target and integrates
// impulse velocity. Positions are captured for render interpolation before
// they change.
func (p *Player) MoveCells(dt float64) {
	decay := math.Exp(-ImpulseFriction * dt)
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		c.PrevX = c.X
		c.PrevY = c.Y

		dx := p.TargetX - c.X
		dy := p.TargetY - c.Y
		dist := math.Hypot(dx, dy)
		if dist > 1 {
			step := c.Speed() * dt
			if step > dist {
				step = dist
			}
			c.X += dx / dist * step
			c.Y += dy / dist * step
		}

		c.X += c.VX * dt
		c.Y += c.VY * dt
		c.VX *= decay
		c.VY *= decay
	}
}

// UpdateCells runs per-cell self-maintenance and flips the recombine flag
// once the post-split cooldown has elapsed.
func (p *Player) UpdateCells(dt, now float64) {
	recombinable := now-p.LastSplit >= RecombineCooldown
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		c.Update(dt, now)
		if recombinable {
			c.Recombinable = true
		}
	}
}

// CanSplit reports whether a split action is currently permitted.
func (p *Player) CanSplit(now float64) bool {
	if !p.Alive {
		return false
	}
	if p.ActiveCellCount() >= MaxCellsPerOwner {
		return false
	}
	if now-p.LastSplit < SplitCooldown {
		return false
	}
	return p.TotalMass >= MinSplitMass
}

// Split halves every eligible cell along (dirX, dirY): the new cell gets
// half the parent's mass, is placed one pre-split radius out along the
// direction, and is kicked outward. Resets the cooldown and clears the
// recombine flag on both halves. Returns false if gating failed.
func (p *Player) Split(dirX, dirY, now float64) bool {
	if !p.CanSplit(now) {
		return false
	}
	d := math.Hypot(dirX, dirY)
	if d == 0 {
		dirX, dirY, d = 1, 0, 1
	}
	nx, ny := dirX/d, dirY/d

	existing := make([]*Cell, 0, len(p.Cells))
	for _, c := range p.Cells {
		if c.Active {
			existing = append(existing, c)
		}
	}

	split := false
	count := len(existing)
	for _, c := range existing {
		if count >= MaxCellsPerOwner {
			break
		}
		if c.Mass < SplitMinCellMass {
			continue
		}
		parentRadius := c.Radius
		half := c.Mass / 2
		c.setMass(half)
		c.Recombinable = false

		child := NewCell(p, c.X+nx*parentRadius, c.Y+ny*parentRadius, half)
		child.Recombinable = false
		child.ApplyImpulse(nx, ny, SplitImpulse)
		p.Cells = append(p.Cells, child)
		count++
		split = true
	}
	if !split {
		return false
	}
	p.LastSplit = now
	p.RecomputeTotalMass()
	return true
}

// Recombine collapses all cells into the single most massive one, summing
// masses, blending momentum with the retention factor and shifting the
// result toward (dirX, dirY). Unlike passive same-owner merging it ignores
// spatial adjacency entirely. Gated by the post-split cooldown.
func (p *Player) Recombine(dirX, dirY, now float64) bool {
	if !p.Alive || now-p.LastSplit < RecombineCooldown {
		return false
	}
	keeper := p.LargestCell()
	if keeper == nil || p.ActiveCellCount() < 2 {
		return false
	}

	sumVX, sumVY := 0.0, 0.0
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		sumVX += c.VX
		sumVY += c.VY
		if c == keeper {
			continue
		}
		keeper.AddMass(c.Mass)
		c.Deactivate()
	}
	keeper.VX = sumVX * RecombineMomentumRetention
	keeper.VY = sumVY * RecombineMomentumRetention

	d := math.Hypot(dirX, dirY)
	if d > 0 {
		keeper.X += dirX / d * keeper.Radius * RecombineOffsetFactor
		keeper.Y += dirY / d * keeper.Radius * RecombineOffsetFactor
	}
	p.RecomputeTotalMass()
	return true
}

// Eject expels a mass quantum from every sufficiently heavy cell as a food
// pellet launched along (dirX, dirY). The pellets are absorbable by anyone,
// including the ejector. Returns the pellets created.
func (p *Player) Eject(dirX, dirY float64) []*Food {
	if !p.Alive {
		return nil
	}
	d := math.Hypot(dirX, dirY)
	if d == 0 {
		dirX, dirY, d = 1, 0, 1
	}
	nx, ny := dirX/d, dirY/d

	var pellets []*Food
	for _, c := range p.Cells {
		if !c.Active || c.Mass < EjectMinMass {
			continue
		}
		c.RemoveMass(EjectCost)
		f := NewEjectedPellet(c.X+nx*(c.Radius+2), c.Y+ny*(c.Radius+2), p.Color)
		f.VX = nx * EjectImpulse
		f.VY = ny * EjectImpulse
		pellets = append(pellets, f)
	}
	if pellets != nil {
		p.RecomputeTotalMass()
	}
	return pellets
}

// CompactCells removes inactive cells from the collection and refreshes the
// total-mass invariant. Marks the owner dead when no cells remain.
func (p *Player) CompactCells() {
	kept := p.Cells[:0]
	for _, c := range p.Cells {
		if c.Active {
			kept = append(kept, c)
		}
	}
	// Zero the tail so dropped cells are collectable.
	for i := len(kept); i < len(p.Cells); i++ {
		p.Cells[i] = nil
	}
	p.Cells = kept
	p.RecomputeTotalMass()
	if len(p.Cells) == 0 {
		p.Alive = false
	}
}

// Centroid returns the mass-weighted center of the owner's active cells.
func (p *Player) Centroid() (float64, float64) {
	x, y, m := 0.0, 0.0, 0.0
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		x += c.X * c.Mass
		y += c.Y * c.Mass
		m += c.Mass
	}
	if m == 0 {
		return 0, 0
	}
	return x / m, y / m
}

// randomColor picks a random color from the palette
func randomColor() string {
	return PlayerColors[rand.Intn(len(PlayerColors))]
}
