package main

import (
	"math"
	"testing"
)

func TestFoodAbsorptionEndToEnd(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 500, 500, 100)
	w.AddPlayer(p)
	f := NewFoodAt(500, 500)
	w.Food[f.ID] = f

	events := NewEventQueue()
	resolveCollisions(w, 1.0, events)

	if p.Cells[0].Mass != 105 {
		t.Fatalf("cell mass = %f, want 105", p.Cells[0].Mass)
	}
	if f.Active {
		t.Fatalf("food should be inactive")
	}
	if _, ok := w.Food[f.ID]; ok {
		t.Fatalf("food should be removed from the world pool")
	}
	if events.Pending() != 1 {
		t.Fatalf("expected one absorbed.food event, got %d pending", events.Pending())
	}
}

func TestFoodAbsorbedOnlyOnce(t *testing.T) {
	w := newTestWorld(newTestBounds())
	a := newTestPlayer("a", 500, 500, 100)
	b := newTestPlayer("b", 501, 500, 100)
	w.AddPlayer(a)
	w.AddPlayer(b)
	f := NewFoodAt(500, 500)
	w.Food[f.ID] = f

	resolveCollisions(w, 1.0, NewEventQueue())

	total := a.Cells[0].Mass + b.Cells[0].Mass
	if total != 205 {
		t.Fatalf("food mass duplicated or lost: combined mass = %f, want 205", total)
	}
}

func TestRivalsTooCloseInSizeDoNothing(t *testing.T) {
	w := newTestWorld(newTestBounds())
	a := newTestPlayer("a", 500, 500, 100)
	b := newTestPlayer("b", 502, 500, 95)
	w.AddPlayer(a)
	w.AddPlayer(b)

	resolveCollisions(w, 1.0, NewEventQueue())

	if a.Cells[0].Mass != 100 || b.Cells[0].Mass != 95 {
		t.Fatalf("near-equal rivals must not interact: %f vs %f", a.Cells[0].Mass, b.Cells[0].Mass)
	}
	if !a.Cells[0].Active || !b.Cells[0].Active {
		t.Fatalf("both cells should remain active")
	}
}

func TestRivalAbsorptionEliminatesOwner(t *testing.T) {
	w := newTestWorld(newTestBounds())
	big := newTestPlayer("big", 500, 500, 200)
	small := newTestPlayer("small", 503, 500, 100)
	w.AddPlayer(big)
	w.AddPlayer(small)

	events := NewEventQueue()
	deaths := resolveCollisions(w, 1.0, events)

	if big.Cells[0].Mass != 300 {
		t.Fatalf("absorber mass = %f, want 300", big.Cells[0].Mass)
	}
	if small.Cells[0].Active {
		t.Fatalf("victim cell should be inactive")
	}
	if small.Alive {
		t.Fatalf("victim owner should be eliminated")
	}
	rec, ok := deaths["small"]
	if !ok {
		t.Fatalf("death record missing for eliminated owner")
	}
	if rec.Killer != "big" {
		t.Fatalf("killer = %q, want %q", rec.Killer, "big")
	}
}

func TestAbsorptionDirectionIsLargerToSmaller(t *testing.T) {
	w := newTestWorld(newTestBounds())
	// Insert the smaller one first so snapshot id order does not decide.
	small := newTestPlayer("small", 500, 500, 100)
	big := newTestPlayer("big", 503, 500, 200)
	w.AddPlayer(small)
	w.AddPlayer(big)

	resolveCollisions(w, 1.0, NewEventQueue())

	if !big.Cells[0].Active || big.Cells[0].Mass != 300 {
		t.Fatalf("larger cell should absorb: active=%v mass=%f", big.Cells[0].Active, big.Cells[0].Mass)
	}
}

func TestSameOwnerMergeWhenRecombinable(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 500, 500, 100)
	second := NewCell(p, 504, 500, 50)
	p.Cells = append(p.Cells, second)
	p.RecomputeTotalMass()
	w.AddPlayer(p)

	resolveCollisions(w, 1.0, NewEventQueue())

	keeper := p.Cells[0]
	if !keeper.Active || keeper.Mass != 150 {
		t.Fatalf("merge result: active=%v mass=%f, want 150", keeper.Active, keeper.Mass)
	}
	if second.Active {
		t.Fatalf("smaller cell should be deactivated by merge")
	}
	// Mass-weighted position between 500 and 504.
	wantX := (500.0*100 + 504.0*50) / 150.0
	if math.Abs(keeper.X-wantX) > 1e-9 {
		t.Fatalf("merged position x = %f, want %f", keeper.X, wantX)
	}
	if p.TotalMass != 150 {
		t.Fatalf("owner total mass = %f, want 150", p.TotalMass)
	}
}

func TestSameOwnerSeparationDuringCooldown(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 500, 500, 100)
	p.Cells[0].Recombinable = false
	second := NewCell(p, 502, 500, 100)
	second.Recombinable = false
	p.Cells = append(p.Cells, second)
	p.RecomputeTotalMass()
	w.AddPlayer(p)

	distBefore := p.Cells[0].DistanceTo(second)
	resolveCollisions(w, 1.0, NewEventQueue())

	if !p.Cells[0].Active || !second.Active {
		t.Fatalf("cells on recombine cooldown must not merge")
	}
	if p.Cells[0].Mass != 100 || second.Mass != 100 {
		t.Fatalf("separation must not transfer mass")
	}
	if p.Cells[0].DistanceTo(second) <= distBefore {
		t.Fatalf("overlapping cooldown cells should be pushed apart")
	}
}

func TestBoundaryBounce(t *testing.T) {
	b := newTestBounds()
	w := newTestWorld(b)
	p := newTestPlayer("p1", b.MaxX+5, 500, 100)
	c := p.Cells[0]
	c.VX = 50
	w.AddPlayer(p)

	resolveCollisions(w, 1.0, NewEventQueue())

	if c.X != b.MaxX-c.Radius {
		t.Fatalf("x after clamp = %f, want %f", c.X, b.MaxX-c.Radius)
	}
	if c.VX >= 0 {
		t.Fatalf("perpendicular velocity not reflected: VX=%f", c.VX)
	}
	if c.VX != -50*BounceDamping {
		t.Fatalf("bounce damping wrong: VX=%f, want %f", c.VX, -50*BounceDamping)
	}
}

func TestAbsorptionOverflowDropsPellets(t *testing.T) {
	w := newTestWorld(newTestBounds())
	big := newTestPlayer("big", 500, 500, MaxCellMass-50)
	small := newTestPlayer("small", 560, 500, 200)
	w.AddPlayer(big)
	w.AddPlayer(small)

	resolveCollisions(w, 1.0, NewEventQueue())

	if big.Cells[0].Mass != MaxCellMass {
		t.Fatalf("absorber mass = %f, want cap %f", big.Cells[0].Mass, float64(MaxCellMass))
	}
	// 150 mass of overflow comes back as FoodMass pellets.
	if len(w.Food) != 20 {
		t.Fatalf("overflow pellets = %d, want 20", len(w.Food))
	}
	for _, f := range w.Food {
		if f.Mass != FoodMass {
			t.Fatalf("overflow pellet mass = %f, want %f", f.Mass, float64(FoodMass))
		}
	}
}

func TestPickupGrantsTimedEffect(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 500, 500, 100)
	w.AddPlayer(p)
	pk := NewPickup(EffectSpeed, w.Bounds)
	pk.X, pk.Y = 500, 500
	w.Food[pk.ID] = pk

	events := NewEventQueue()
	resolveCollisions(w, 1.0, events)

	c := p.Cells[0]
	if !c.HasEffect(EffectSpeed) {
		t.Fatalf("pickup should grant a speed effect")
	}
	if c.SpeedMult() != SpeedBoostMult {
		t.Fatalf("speed mult = %f, want %f", c.SpeedMult(), SpeedBoostMult)
	}
	if pk.Active {
		t.Fatalf("pickup should be consumed")
	}
}

func TestStalePairSkippedAfterUpstreamAbsorption(t *testing.T) {
	w := newTestWorld(newTestBounds())
	// big overlaps both mid and tiny; mid also overlaps tiny. Once a cell
	// is absorbed earlier in the tick, its remaining pairs must be skipped
	// without effect.
	big := newTestPlayer("big", 500, 500, 400)
	mid := newTestPlayer("mid", 504, 500, 100)
	tiny := newTestPlayer("tiny", 506, 500, 50)
	w.AddPlayer(big)
	w.AddPlayer(mid)
	w.AddPlayer(tiny)

	resolveCollisions(w, 1.0, NewEventQueue())

	if !big.Cells[0].Active {
		t.Fatalf("absorber should survive")
	}
	if big.Cells[0].Mass != 550 {
		t.Fatalf("absorber mass = %f, want 550 (400+100+50)", big.Cells[0].Mass)
	}
	if mid.Cells[0].Active || tiny.Cells[0].Active {
		t.Fatalf("both victims should be inactive")
	}
}
