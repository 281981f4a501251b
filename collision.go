package main

import (
	"math"
	"math/rand"
)

// deathRecord captures who eliminated an owner and the owner's final mass,
// for death notifications after the tick.
type deathRecord struct {
	Killer string
	Mass   float64
}

// resolveCollisions runs one tick of the collision and absorption pass over
// the full active-entity snapshot:
//
//  1. rebuild the spatial grid,
//  2. resolve each overlapping pair exactly once (id-ordered de-dup),
//  3. clamp every entity into world bounds with a damped bounce.
//
// Returns eliminated owners mapped to their death records.
// Caller must hold w.mu.Lock.
func resolveCollisions(w *World, now float64, events *EventQueue) map[string]deathRecord {
	cells, food := w.Snapshot()
	w.Grid.Rebuild(cells, food)

	deaths := map[string]deathRecord{}

	for _, a := range cells {
		// a may have been absorbed earlier in this same pass.
		if !a.Active {
			continue
		}
		for _, e := range w.Grid.Neighborhood(a.X, a.Y) {
			if e.food != nil {
				resolveCellFood(a, e.food, w, now, events)
				continue
			}
			b := e.cell
			// Visit each unordered pair once: only when a's id is lower.
			if b == nil || b == a || b.ID < a.ID {
				continue
			}
			// Re-check activity right before mutation; an upstream
			// absorption this tick may have removed either side.
			if !a.Active || !b.Active {
				continue
			}
			if !a.Overlaps(b) {
				continue
			}
			if a.Owner == b.Owner {
				resolveSameOwner(a, b)
			} else {
				resolveRivals(a, b, w, now, events, deaths)
			}
			if !a.Active {
				break
			}
		}
	}

	for _, c := range cells {
		if c.Active {
			clampCellToBounds(c, w.Bounds)
		}
	}
	for _, f := range food {
		if f.Active && f.Moving() {
			clampFoodToBounds(f, w.Bounds)
		}
	}

	return deaths
}

// resolveCellFood absorbs food into a cell when the overlap and effective
// mass threshold hold. Pickups additionally grant their timed effect.
func resolveCellFood(c *Cell, f *Food, w *World, now float64, events *EventQueue) {
	if !c.Active || !f.Active {
		return
	}
	dx := f.X - c.X
	dy := f.Y - c.Y
	r := c.EffectiveRadius() + f.Radius()
	if dx*dx+dy*dy >= r*r {
		return
	}
	if c.EffectiveMass() <= f.Mass*AbsorptionThreshold {
		return
	}
	c.AddMass(f.Mass)
	c.Glow = GlowOnAbsorb
	f.Active = false
	w.RemoveFood(f.ID)

	ownerID := ""
	if c.Owner != nil {
		ownerID = c.Owner.ID
	}
	if f.Pickup != "" {
		if eff, ok := pickupEffect(f.Pickup, now); ok {
			c.AddEffect(eff)
			events.Push(Event{Kind: "effect." + f.Pickup, Owner: ownerID, Amount: EffectDuration, At: now})
		}
		return
	}
	events.Push(Event{Kind: EventAbsorbedFood, Owner: ownerID, Amount: f.Mass, At: now})
}

// resolveSameOwner merges two overlapping cells of one owner when both are
// past their recombine cooldown: mass-weighted position, summed mass into
// the larger cell, averaged velocity. Otherwise the cells are pushed apart
// so freshly split halves do not stack.
func resolveSameOwner(a, b *Cell) {
	if a.Recombinable && b.Recombinable {
		bigger, smaller := a, b
		if smaller.Mass > bigger.Mass {
			bigger, smaller = smaller, bigger
		}
		total := bigger.Mass + smaller.Mass
		bigger.X = (bigger.X*bigger.Mass + smaller.X*smaller.Mass) / total
		bigger.Y = (bigger.Y*bigger.Mass + smaller.Y*smaller.Mass) / total
		bigger.VX = (bigger.VX + smaller.VX) / 2
		bigger.VY = (bigger.VY + smaller.VY) / 2
		bigger.AddMass(smaller.Mass)
		smaller.Deactivate()
		if a.Owner != nil {
			a.Owner.RecomputeTotalMass()
		}
		return
	}

	// Not yet recombinable: separate along the center line, half the
	// penetration each.
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Hypot(dx, dy)
	overlap := a.EffectiveRadius() + b.EffectiveRadius() - dist
	if overlap <= 0 {
		return
	}
	if dist == 0 {
		dx, dy, dist = 1, 0, 1
	}
	nx, ny := dx/dist, dy/dist
	a.X -= nx * overlap / 2
	a.Y -= ny * overlap / 2
	b.X += nx * overlap / 2
	b.Y += ny * overlap / 2
}

// resolveRivals attempts absorption between overlapping cells of different
// owners, larger effective mass toward smaller only. Pairs too close in
// size overlap without interacting. Mass the absorber cannot hold (past
// MaxCellMass) drops back into the arena as scattered pellets.
func resolveRivals(a, b *Cell, w *World, now float64, events *EventQueue, deaths map[string]deathRecord) {
	absorber, victim := a, b
	if victim.EffectiveMass() > absorber.EffectiveMass() {
		absorber, victim = victim, absorber
	}
	victimMass := victim.EffectiveMass()
	room := MaxCellMass - absorber.Mass
	if !absorber.Absorb(victim) {
		return
	}
	if victimMass > room {
		dropOverflowMass(w, victim.X, victim.Y, victimMass-room)
	}

	absorberID, victimOwner := "", victim.Owner
	if absorber.Owner != nil {
		absorberID = absorber.Owner.ID
	}
	events.Push(Event{Kind: EventAbsorbedCell, Owner: absorberID, Amount: victimMass, At: now})

	if victimOwner == nil || victimOwner.ActiveCellCount() > 0 {
		return
	}
	finalMass := victimOwner.TotalMass
	victimOwner.Alive = false
	killer := "Unknown"
	if absorber.Owner != nil {
		killer = absorber.Owner.Name
	}
	deaths[victimOwner.ID] = deathRecord{Killer: killer, Mass: finalMass}
	events.Push(Event{Kind: EventEliminated, Owner: victimOwner.ID, Amount: finalMass, At: now})
}

// dropOverflowMass converts absorption overflow into food pellets scattered
// around (x, y), capped so a single giant kill cannot flood the pool.
func dropOverflowMass(w *World, x, y, overflow float64) {
	n := int(overflow / FoodMass)
	if n > OverflowDropMax {
		n = OverflowDropMax
	}
	for i := 0; i < n; i++ {
		sx := x + (rand.Float64()*2-1)*OverflowDropScatter
		sy := y + (rand.Float64()*2-1)*OverflowDropScatter
		sx, sy = clampPoint(sx, sy, w.Bounds)
		f := NewFoodAt(sx, sy)
		w.Food[f.ID] = f
	}
}

// clampCellToBounds keeps the whole circle inside the world rectangle. On
// clamping, the perpendicular velocity component is reflected and damped.
func clampCellToBounds(c *Cell, b Bounds) {
	r := c.Radius
	if c.X-r < b.MinX {
		c.X = b.MinX + r
		if c.VX < 0 {
			c.VX = -c.VX * BounceDamping
		}
	} else if c.X+r > b.MaxX {
		c.X = b.MaxX - r
		if c.VX > 0 {
			c.VX = -c.VX * BounceDamping
		}
	}
	if c.Y-r < b.MinY {
		c.Y = b.MinY + r
		if c.VY < 0 {
			c.VY = -c.VY * BounceDamping
		}
	} else if c.Y+r > b.MaxY {
		c.Y = b.MaxY - r
		if c.VY > 0 {
			c.VY = -c.VY * BounceDamping
		}
	}
}

func clampFoodToBounds(f *Food, b Bounds) {
	r := f.Radius()
	if f.X-r < b.MinX {
		f.X = b.MinX + r
		if f.VX < 0 {
			f.VX = -f.VX * BounceDamping
		}
		f.driftAngle = math.Pi - f.driftAngle
	} else if f.X+r > b.MaxX {
		f.X = b.MaxX - r
		if f.VX > 0 {
			f.VX = -f.VX * BounceDamping
		}
		f.driftAngle = math.Pi - f.driftAngle
	}
	if f.Y-r < b.MinY {
		f.Y = b.MinY + r
		if f.VY < 0 {
			f.VY = -f.VY * BounceDamping
		}
		f.driftAngle = -f.driftAngle
	} else if f.Y+r > b.MaxY {
		f.Y = b.MaxY - r
		if f.VY > 0 {
			f.VY = -f.VY * BounceDamping
		}
		f.driftAngle = -f.driftAngle
	}
}
