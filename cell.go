package main

import (
	"math"
	"sync/atomic"
)

// cellIDCounter hands out simulation-wide unique cell ids. The total order
// over ids is what the collision pass uses to visit each unordered pair
// exactly once per tick.
var cellIDCounter uint64

func nextCellID() uint64 {
	return atomic.AddUint64(&cellIDCounter, 1)
}

// Cell is a single circular body owned by a player or bot.
// Radius is always derived from mass; it is never set directly.
type Cell struct {
	ID    uint64
	Owner *Player

	X, Y   float64
	VX, VY float64 // impulse velocity from splits/ejects/bounces

	// PrevX/PrevY hold the position at the start of the current fixed step
	// so the renderer can interpolate between the last two simulated states.
	PrevX, PrevY float64

	Mass   float64
	Radius float64

	Active bool
	// Recombinable is set once the post-split cooldown elapses; two
	// overlapping cells of the same owner merge only when both are set.
	Recombinable bool

	// Glow is a renderer hint bumped on absorption, decayed per tick.
	Glow float64

	effects   []Effect
	speedMult float64
	sizeMult  float64
	massMult  float64
}

// NewCell creates an active cell at (x, y) with the given mass.
func NewCell(owner *Player, x, y, mass float64) *Cell {
	c := &Cell{
		ID:           nextCellID(),
		Owner:        owner,
		X:            x,
		Y:            y,
		PrevX:        x,
		PrevY:        y,
		Active:       true,
		Recombinable: true,
		speedMult:    1.0,
		sizeMult:     1.0,
		massMult:     1.0,
	}
	c.setMass(mass)
	return c
}

// setMass clamps mass into [MinCellMass, MaxCellMass] and recomputes radius.
func (c *Cell) setMass(m float64) {
	if m < MinCellMass {
		m = MinCellMass
	}
	if m > MaxCellMass {
		m = MaxCellMass
	}
	c.Mass = m
	c.Radius = math.Sqrt(m / math.Pi)
}

// AddMass increases mass by m and recomputes radius. Overflow past
// MaxCellMass is capped here; splitting on overflow is a policy the
// collision engine may apply, not this method.
// Returns false (no-op) for inactive cells or negative m.
func (c *Cell) AddMass(m float64) bool {
	if !c.Active || m < 0 {
		return false
	}
	c.setMass(c.Mass + m)
	return true
}

// RemoveMass decreases mass by m, clamped to the mass floor.
func (c *Cell) RemoveMass(m float64) bool {
	if !c.Active || m < 0 {
		return false
	}
	c.setMass(c.Mass - m)
	return true
}

// EffectiveMass is mass scaled by active effect multipliers. All absorption
// comparisons use effective values so temporary buffs influence outcomes.
func (c *Cell) EffectiveMass() float64 {
	return c.Mass * c.massMult
}

// EffectiveRadius is radius scaled by active size multipliers.
func (c *Cell) EffectiveRadius() float64 {
	return c.Radius * c.sizeMult
}

// SpeedMult is the composed speed multiplier from active effects.
func (c *Cell) SpeedMult() float64 {
	return c.speedMult
}

// CanAbsorb reports whether c may absorb other: both active, distinct, and
// c's effective mass strictly exceeds other's by AbsorptionThreshold.
func (c *Cell) CanAbsorb(other *Cell) bool {
	if c == other || !c.Active || !other.Active {
		return false
	}
	return c.EffectiveMass() > other.EffectiveMass()*AbsorptionThreshold
}

// Absorb transfers other's effective mass into c and deactivates other.
// Returns false without mutating anything when CanAbsorb does not hold.
func (c *Cell) Absorb(other *Cell) bool {
	if !c.CanAbsorb(other) {
		return false
	}
	c.AddMass(other.EffectiveMass())
	other.Deactivate()
	c.Glow = GlowOnAbsorb
	return true
}

// Deactivate logically removes the cell; cleanup compacts it out later.
func (c *Cell) Deactivate() {
	c.Active = false
}

// Update runs the cell's per-tick self-maintenance: effect expiry, glow
// decay and mass decay for large cells. now is simulation time in seconds.
func (c *Cell) Update(dt, now float64) {
	if !c.Active {
		return
	}
	c.expireEffects(now)
	if c.Glow > 0 {
		c.Glow -= GlowDecay * dt
		if c.Glow < 0 {
			c.Glow = 0
		}
	}
	if c.Mass > DecayMinMass {
		c.setMass(c.Mass * (1.0 - MassDecayRate*dt))
	}
}

// Speed is the steering speed for this cell given its current mass and
// active speed effects.
func (c *Cell) Speed() float64 {
	return CellBaseSpeed * math.Pow(StartMass/c.Mass, SpeedMassExponent) * c.speedMult
}

// ApplyImpulse adds a velocity kick along (dx, dy); the kick decays under
// ImpulseFriction during movement integration.
func (c *Cell) ApplyImpulse(dx, dy, magnitude float64) {
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy, d = 1, 0, 1
	}
	c.VX += dx / d * magnitude
	c.VY += dy / d * magnitude
}

// DistanceTo returns the distance between cell centers.
func (c *Cell) DistanceTo(other *Cell) float64 {
	return math.Hypot(other.X-c.X, other.Y-c.Y)
}

// Overlaps applies the exact circle test against another cell using
// effective radii.
func (c *Cell) Overlaps(other *Cell) bool {
	dx := other.X - c.X
	dy := other.Y - c.Y
	r := c.EffectiveRadius() + other.EffectiveRadius()
	return dx*dx+dy*dy < r*r
}
