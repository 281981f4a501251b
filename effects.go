package main

// Effect is a timed multiplier contribution on a single cell. Expiry divides
// out exactly what was multiplied in, so overlapping effects never drift the
// base multipliers, no matter the order they land or lapse in.
type Effect struct {
	Kind      string
	ExpiresAt float64 // simulation time in seconds

	Speed float64
	Size  float64
	Mass  float64
}

// Builtin effect kinds. Event names follow "effect.<kind>".
const (
	EffectSpeed = "speed"
	EffectSize  = "size"
	EffectMass  = "mass"
)

// AddEffect composes the effect's multipliers into the cell and records it
// for expiry. Zero factors are treated as 1 (no contribution).
// Returns false (no-op) on an inactive cell.
func (c *Cell) AddEffect(e Effect) bool {
	if !c.Active {
		return false
	}
	if e.Speed == 0 {
		e.Speed = 1
	}
	if e.Size == 0 {
		e.Size = 1
	}
	if e.Mass == 0 {
		e.Mass = 1
	}
	c.speedMult *= e.Speed
	c.sizeMult *= e.Size
	c.massMult *= e.Mass
	c.effects = append(c.effects, e)
	return true
}

// HasEffect reports whether an effect of the given kind is active.
func (c *Cell) HasEffect(kind string) bool {
	for _, e := range c.effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// expireEffects removes effects whose end time has passed, applying the
// exact inverse of each contribution.
func (c *Cell) expireEffects(now float64) {
	kept := c.effects[:0]
	for _, e := range c.effects {
		if now >= e.ExpiresAt {
			c.speedMult /= e.Speed
			c.sizeMult /= e.Size
			c.massMult /= e.Mass
			continue
		}
		kept = append(kept, e)
	}
	c.effects = kept
}

// pickupEffect maps a pickup kind to the effect it grants.
func pickupEffect(kind string, now float64) (Effect, bool) {
	switch kind {
	case EffectSpeed:
		return Effect{Kind: EffectSpeed, ExpiresAt: now + EffectDuration, Speed: SpeedBoostMult}, true
	case EffectSize:
		return Effect{Kind: EffectSize, ExpiresAt: now + EffectDuration, Size: SizeBoostMult}, true
	case EffectMass:
		return Effect{Kind: EffectMass, ExpiresAt: now + EffectDuration, Mass: MassBoostMult}, true
	}
	return Effect{}, false
}
