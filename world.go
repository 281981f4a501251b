package main

import (
	"math/rand"
	"sort"
	"sync"
)

// Bounds is the immutable axis-aligned world rectangle. Boundary resolution
// keeps every entity inside it after each step.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// DefaultBounds is the production world rectangle.
func DefaultBounds() Bounds {
	return Bounds{MinX: 0, MinY: 0, MaxX: WorldWidth, MaxY: WorldHeight}
}

// World holds all game state
type World struct {
	mu      sync.RWMutex
	Bounds  Bounds
	Players map[string]*Player
	Food    map[uint64]*Food
	Grid    *SpatialGrid
}

// NewWorld initializes the world with its initial food population.
func NewWorld(bounds Bounds) *World {
	w := &World{
		Bounds:  bounds,
		Players: make(map[string]*Player),
		Food:    make(map[uint64]*Food),
		Grid:    NewSpatialGrid(GridCellSize),
	}
	for i := 0; i < InitialFoodCount; i++ {
		f := NewFood(bounds)
		w.Food[f.ID] = f
	}
	return w
}

// AddPlayer adds an owner to the world (caller must hold mu.Lock)
func (w *World) AddPlayer(p *Player) {
	w.Players[p.ID] = p
}

// RemovePlayer removes an owner (caller must hold mu.Lock)
func (w *World) RemovePlayer(id string) {
	delete(w.Players, id)
}

// AddFood adds food items to the world (caller must hold mu.Lock)
func (w *World) AddFood(items []*Food) {
	for _, f := range items {
		w.Food[f.ID] = f
	}
}

// RemoveFood removes food by ID (caller must hold mu.Lock)
func (w *World) RemoveFood(id uint64) {
	delete(w.Food, id)
}

// Snapshot returns id-sorted slices of the active cells and food. The
// stable order makes grid rebuilds and pair visiting deterministic for a
// given world state.
func (w *World) Snapshot() ([]*Cell, []*Food) {
	cells := make([]*Cell, 0, 64)
	for _, p := range w.Players {
		for _, c := range p.Cells {
			if c.Active {
				cells = append(cells, c)
			}
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })

	food := make([]*Food, 0, len(w.Food))
	for _, f := range w.Food {
		if f.Active {
			food = append(food, f)
		}
	}
	sort.Slice(food, func(i, j int) bool { return food[i].ID < food[j].ID })
	return cells, food
}

// MaintainFoodCount spawns food up to TargetFoodCount, capped per tick
// (caller must hold mu.Lock). Pickups are not counted against the budget.
func (w *World) MaintainFoodCount() {
	normalCount := 0
	for _, f := range w.Food {
		if f.Pickup == "" {
			normalCount++
		}
	}
	deficit := TargetFoodCount - normalCount
	if deficit <= 0 {
		return
	}
	spawn := deficit
	if spawn > FoodSpawnPerTick {
		spawn = FoodSpawnPerTick
	}
	for spawned := 0; spawned < spawn; {
		if rand.Float64() < FoodClusterChance {
			for _, f := range NewFoodCluster(w.Bounds, spawn-spawned) {
				w.Food[f.ID] = f
				spawned++
			}
			continue
		}
		f := NewFood(w.Bounds)
		w.Food[f.ID] = f
		spawned++
	}
}

// PickupCount returns the number of active pickups (caller must hold mu).
func (w *World) PickupCount() int {
	n := 0
	for _, f := range w.Food {
		if f.Pickup != "" {
			n++
		}
	}
	return n
}

// Leaderboard returns the top N alive owners sorted by total mass.
func (w *World) Leaderboard() []LeaderboardEntry {
	players := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		if p.Alive {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalMass != players[j].TotalMass {
			return players[i].TotalMass > players[j].TotalMass
		}
		return players[i].ID < players[j].ID
	})
	if len(players) > LeaderboardSize {
		players = players[:LeaderboardSize]
	}
	entries := make([]LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = LeaderboardEntry{ID: p.ID, Name: p.Name, Mass: roundTo1(p.TotalMass)}
	}
	return entries
}

// PlayersInViewport returns owner DTOs with at least one cell visible from
// a viewport centered on (cx, cy), interpolated by alpha.
func (w *World) PlayersInViewport(cx, cy, alpha float64) []PlayerDTO {
	halfW := ViewportWidth/2 + ViewportBuffer
	halfH := ViewportHeight/2 + ViewportBuffer
	minX := cx - halfW
	maxX := cx + halfW
	minY := cy - halfH
	maxY := cy + halfH

	result := []PlayerDTO{}
	for _, p := range w.Players {
		if !p.Alive {
			continue
		}
		visible := false
		for _, c := range p.Cells {
			if !c.Active {
				continue
			}
			if c.X+c.Radius >= minX && c.X-c.Radius <= maxX &&
				c.Y+c.Radius >= minY && c.Y-c.Radius <= maxY {
				visible = true
				break
			}
		}
		if visible {
			result = append(result, p.ToDTO(alpha))
		}
	}
	return result
}

// FoodInViewport returns food DTOs visible from a viewport centered on
// (cx, cy), interpolated by alpha.
func (w *World) FoodInViewport(cx, cy, alpha float64) []FoodDTO {
	halfW := ViewportWidth/2 + ViewportBuffer
	halfH := ViewportHeight/2 + ViewportBuffer
	minX := cx - halfW
	maxX := cx + halfW
	minY := cy - halfH
	maxY := cy + halfH

	result := []FoodDTO{}
	seen := map[uint64]bool{}
	for _, e := range w.Grid.QueryRegion(minX, minY, maxX, maxY) {
		if e.food == nil || !e.food.Active || seen[e.food.ID] {
			continue
		}
		seen[e.food.ID] = true
		result = append(result, e.food.ToDTO(alpha))
	}
	return result
}
