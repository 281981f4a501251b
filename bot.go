package main

import (
	"fmt"
	"math"
	"math/rand"
)

// botNames is the pool of display names for AI-driven owners
var botNames = []string{
	"Blob", "Mitosa", "Osmo", "Vacuole", "Nucleus",
	"Plasmid", "Cytos", "Lyso", "Golgi", "Ribo",
	"Amoeba", "Spore", "Hydra", "Volvox", "Euglena",
	"Stentor", "Vorticella", "Diatom", "Radiol", "Paramec",
}

// botNameCounter tracks how many bots have been created for unique naming
var botNameCounter int

// Bot tracks per-bot AI state. The underlying Player carries all the shared
// mass/split/recombine logic; the bot only decides movement targets and
// action intents from read-only neighborhood queries.
type Bot struct {
	ID          string
	wanderTicks int     // ticks remaining before picking a new roam target
	targetX     float64 // current roam/steer target
	targetY     float64
	respawnIn   float64 // seconds until respawn (0 = alive or ready)
}

// BotManager maintains the AI-driven owner population. All methods are
// invoked from the loop's external-systems phase while world.mu is held.
type BotManager struct {
	world *World
	bots  map[string]*Bot
}

// NewBotManager creates a BotManager bound to the given world
func NewBotManager(world *World) *BotManager {
	return &BotManager{
		world: world,
		bots:  make(map[string]*Bot),
	}
}

// Prepopulate spawns the initial bot population. Called before the loop
// starts, so no lock is required.
func (bm *BotManager) Prepopulate(n int) {
	for i := 0; i < n; i++ {
		bm.spawnBot()
	}
}

// spawnBot creates a new AI owner and registers it in the world.
// Caller must hold world.mu (or be running before the loop starts).
func (bm *BotManager) spawnBot() {
	id := fmt.Sprintf("bot-%d", rand.Int63())
	name := botNames[botNameCounter%len(botNames)]
	botNameCounter++
	color := PlayerColors[rand.Intn(len(PlayerColors))]

	p := NewPlayer(id, name, color, ControllerAI, bm.world.Bounds)
	bm.world.AddPlayer(p)

	bm.bots[id] = &Bot{
		ID:      id,
		targetX: p.TargetX,
		targetY: p.TargetY,
	}
}

// Update runs AI decisions for every bot, ticks respawn countdowns and
// keeps the population at BotCount. Caller must hold world.mu.
func (bm *BotManager) Update(dt, now float64) {
	var toRespawn []string
	for id, bot := range bm.bots {
		p, ok := bm.world.Players[id]
		if !ok || !p.Alive {
			if bot.respawnIn == 0 {
				bot.respawnIn = BotRespawnDelay
			}
			bot.respawnIn -= dt
			if bot.respawnIn <= 0 {
				toRespawn = append(toRespawn, id)
			}
			continue
		}
		bm.decide(bot, p, now)
	}

	for _, oldID := range toRespawn {
		bm.world.RemovePlayer(oldID)
		delete(bm.bots, oldID)
		bm.spawnBot()
	}
	if len(bm.bots) < BotCount {
		bm.spawnBot()
	}
}

// decide applies priority-based rules and sets the bot's steering target,
// occasionally triggering a split attack.
func (bm *BotManager) decide(bot *Bot, p *Player, now float64) {
	w := bm.world
	cx, cy := p.Centroid()
	lead := p.LargestCell()
	if lead == nil {
		return
	}

	// --- Priority 1: wall avoidance ---
	b := w.Bounds
	if cx-b.MinX < BotBoundaryBuffer || b.MaxX-cx < BotBoundaryBuffer ||
		cy-b.MinY < BotBoundaryBuffer || b.MaxY-cy < BotBoundaryBuffer {
		bot.targetX = b.MinX + b.Width()/2
		bot.targetY = b.MinY + b.Height()/2
		bot.wanderTicks = randomDriftDuration()
		p.SetTarget(bot.targetX, bot.targetY)
		return
	}

	// --- Priority 2: flee owners that can absorb us ---
	for _, other := range w.Grid.NearbyCells(cx, cy, BotFleeRadius, p.ID) {
		if other.EffectiveMass() <= lead.EffectiveMass()*AbsorptionThreshold {
			continue
		}
		bot.targetX = cx + (cx - other.X)
		bot.targetY = cy + (cy - other.Y)
		bot.wanderTicks = randomDriftDuration()
		p.SetTarget(bot.targetX, bot.targetY)
		return
	}

	// --- Priority 3: chase owners we can absorb ---
	var prey *Cell
	preyDist := math.MaxFloat64
	for _, other := range w.Grid.NearbyCells(cx, cy, BotChaseRadius, p.ID) {
		if !lead.CanAbsorb(other) {
			continue
		}
		d := math.Hypot(other.X-cx, other.Y-cy)
		if d < preyDist {
			preyDist = d
			prey = other
		}
	}
	if prey != nil {
		bot.targetX = prey.X
		bot.targetY = prey.Y
		bot.wanderTicks = randomDriftDuration()
		p.SetTarget(bot.targetX, bot.targetY)
		// Split attack when decisively heavier and in range.
		if preyDist < BotSplitRange && lead.Mass > prey.Mass*BotSplitMassRatio {
			p.Split(prey.X-cx, prey.Y-cy, now)
		}
		return
	}

	// --- Priority 4: seek nearby food ---
	var bestFood *Food
	bestDist := math.MaxFloat64
	for _, f := range w.Grid.NearbyFood(cx, cy, BotFoodSeekRadius) {
		d := math.Hypot(f.X-cx, f.Y-cy)
		if d < bestDist {
			bestDist = d
			bestFood = f
		}
	}
	if bestFood != nil {
		bot.targetX = bestFood.X
		bot.targetY = bestFood.Y
		p.SetTarget(bot.targetX, bot.targetY)
		return
	}

	// --- Priority 5: roam toward a random interior point ---
	if bot.wanderTicks <= 0 {
		bot.targetX = b.MinX + SpawnMargin + rand.Float64()*(b.Width()-2*SpawnMargin)
		bot.targetY = b.MinY + SpawnMargin + rand.Float64()*(b.Height()-2*SpawnMargin)
		bot.wanderTicks = 20 + rand.Intn(30)
	}
	bot.wanderTicks--
	p.SetTarget(bot.targetX, bot.targetY)
}

// Count returns the current bot population (alive + respawning).
func (bm *BotManager) Count() int {
	return len(bm.bots)
}
