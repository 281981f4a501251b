package main

import (
	"math"
	"math/rand"
	"sync/atomic"
)

// Food is a world-pool entity: a plain pellet, an ejected mass quantum, or
// a drifting pickup that grants a timed effect when absorbed.
type Food struct {
	ID     uint64
	X, Y   float64
	VX, VY float64
	// PrevX/PrevY mirror Cell interpolation state for moving food.
	PrevX, PrevY float64

	Mass   float64
	Color  string
	Active bool

	// Pickup is the effect kind granted on absorption ("" for plain food).
	Pickup string

	// Drift state for pickups.
	driftAngle float64
	driftTicks int
}

var foodIDCounter uint64

func nextFoodID() uint64 {
	return atomic.AddUint64(&foodIDCounter, 1)
}

// NewFood creates a plain food pellet at a random position inside bounds.
func NewFood(bounds Bounds) *Food {
	x := bounds.MinX + rand.Float64()*bounds.Width()
	y := bounds.MinY + rand.Float64()*bounds.Height()
	return NewFoodAt(x, y)
}

// NewFoodAt creates a plain food pellet at (x, y).
func NewFoodAt(x, y float64) *Food {
	return &Food{
		ID:     nextFoodID(),
		X:      x,
		Y:      y,
		PrevX:  x,
		PrevY:  y,
		Mass:   FoodMass,
		Color:  randomFromSlice(foodColors),
		Active: true,
	}
}

// NewEjectedPellet creates the food pellet produced by an eject action.
// The caller sets its launch velocity.
func NewEjectedPellet(x, y float64, color string) *Food {
	return &Food{
		ID:     nextFoodID(),
		X:      x,
		Y:      y,
		PrevX:  x,
		PrevY:  y,
		Mass:   EjectPelletMass,
		Color:  color,
		Active: true,
	}
}

// NewPickup creates a drifting pickup of the given effect kind at a random
// position inside bounds.
func NewPickup(kind string, bounds Bounds) *Food {
	x := bounds.MinX + SpawnMargin + rand.Float64()*(bounds.Width()-2*SpawnMargin)
	y := bounds.MinY + SpawnMargin + rand.Float64()*(bounds.Height()-2*SpawnMargin)
	return &Food{
		ID:         nextFoodID(),
		X:          x,
		Y:          y,
		PrevX:      x,
		PrevY:      y,
		Mass:       PickupMass,
		Color:      pickupColors[kind],
		Active:     true,
		Pickup:     kind,
		driftAngle: rand.Float64() * 2 * math.Pi,
		driftTicks: randomDriftDuration(),
	}
}

// Radius is derived from mass the same way cell radii are.
func (f *Food) Radius() float64 {
	return math.Sqrt(f.Mass / math.Pi)
}

// Moving reports whether this food has any motion to integrate.
func (f *Food) Moving() bool {
	return f.Pickup != "" || f.VX != 0 || f.VY != 0
}

// Update integrates pellet launch velocity and pickup drift for one step.
func (f *Food) Update(dt float64) {
	if !f.Active {
		return
	}
	f.PrevX = f.X
	f.PrevY = f.Y

	if f.Pickup != "" {
		f.X += math.Cos(f.driftAngle) * PickupDriftSpeed * dt
		f.Y += math.Sin(f.driftAngle) * PickupDriftSpeed * dt
		f.driftTicks--
		if f.driftTicks <= 0 {
			f.driftAngle = rand.Float64() * 2 * math.Pi
			f.driftTicks = randomDriftDuration()
		}
	}

	if f.VX != 0 || f.VY != 0 {
		f.X += f.VX * dt
		f.Y += f.VY * dt
		decay := math.Exp(-ImpulseFriction * dt)
		f.VX *= decay
		f.VY *= decay
		if math.Abs(f.VX) < 1 && math.Abs(f.VY) < 1 {
			f.VX, f.VY = 0, 0
		}
	}
}

// NewFoodCluster creates up to max pellets scattered around a random center
// point, so spawn maintenance produces visual groupings instead of pure
// uniform noise.
func NewFoodCluster(bounds Bounds, max int) []*Food {
	count := FoodClusterMin + rand.Intn(FoodClusterMax-FoodClusterMin+1)
	if count > max {
		count = max
	}
	cx := bounds.MinX + SpawnMargin + rand.Float64()*(bounds.Width()-2*SpawnMargin)
	cy := bounds.MinY + SpawnMargin + rand.Float64()*(bounds.Height()-2*SpawnMargin)
	spread := FoodClusterRadiusMin + rand.Float64()*(FoodClusterRadiusMax-FoodClusterRadiusMin)

	foods := make([]*Food, 0, count)
	for i := 0; i < count; i++ {
		angle := rand.Float64() * 2 * math.Pi
		r := spread * math.Sqrt(rand.Float64())
		x, y := clampPoint(cx+r*math.Cos(angle), cy+r*math.Sin(angle), bounds)
		foods = append(foods, NewFoodAt(x, y))
	}
	return foods
}

// clampPoint moves (x, y) inside bounds if it is outside.
func clampPoint(x, y float64, b Bounds) (float64, float64) {
	if x < b.MinX {
		x = b.MinX
	} else if x > b.MaxX {
		x = b.MaxX
	}
	if y < b.MinY {
		y = b.MinY
	} else if y > b.MaxY {
		y = b.MaxY
	}
	return x, y
}

// randomDriftDuration returns a tick count in [60, 120].
func randomDriftDuration() int {
	return 60 + rand.Intn(61)
}

// pickupKinds lists the spawnable pickup kinds.
var pickupKinds = []string{EffectSpeed, EffectSize, EffectMass}

var pickupColors = map[string]string{
	EffectSpeed: "#00e5ff",
	EffectSize:  "#ffd700",
	EffectMass:  "#b388ff",
}

var foodColors = []string{
	"#ff6b6b", "#ffd93d", "#6bcb77", "#4d96ff", "#ff922b",
	"#cc5de8", "#20c997", "#f06595", "#74c0fc", "#a9e34b",
}

func randomFromSlice(s []string) string {
	return s[rand.Intn(len(s))]
}
