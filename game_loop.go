package main

import (
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Loop states: Stopped -> Running -> (Paused <-> Running) -> Stopped.
const (
	stateStopped int32 = iota
	stateRunning
	statePaused
)

// GameLoop drives the simulation at a fixed timestep decoupled from the
// frame rate. Wall-clock time accumulates per frame; whole fixed steps are
// simulated (capped per frame), and the leftover fraction becomes the
// interpolation alpha handed to rendering.
type GameLoop struct {
	world  *World
	conns  *ConnManager
	bots   *BotManager
	events *EventQueue
	stats  *PhaseStats

	// Tunables, defaulted from config; tests override directly.
	fixedStep          float64 // seconds of simulated time per update
	maxFrameTime       float64 // delta cap, guards against runaway catch-up
	maxUpdatesPerFrame int

	state     atomic.Int32
	resetTime atomic.Bool // set by Start/Resume to discard the stale delta
	stopChan  chan struct{}

	lastTime     time.Time
	accumulator  float64
	simTime      float64
	alpha        float64
	tickCount    uint64
	pickupSpawns uint64

	// killMap collects eliminations until death messages go out post-render.
	killMap map[string]deathRecord

	// renderFn is invoked exactly once per frame with the interpolation
	// alpha. Defaults to the WebSocket broadcast.
	renderFn func(alpha float64)
}

// NewGameLoop creates a loop bound to world and conn manager. Bots are not
// pre-spawned here; call Bots().Prepopulate before Start.
func NewGameLoop(world *World, conns *ConnManager) *GameLoop {
	gl := &GameLoop{
		world:              world,
		conns:              conns,
		events:             NewEventQueue(),
		stats:              NewPhaseStats(),
		fixedStep:          FixedStep,
		maxFrameTime:       MaxFrameTime,
		maxUpdatesPerFrame: MaxUpdatesPerFrame,
		killMap:            make(map[string]deathRecord),
	}
	gl.bots = NewBotManager(world)
	gl.renderFn = gl.broadcast
	return gl
}

// Events returns the loop-owned outgoing event queue for sink registration.
func (gl *GameLoop) Events() *EventQueue { return gl.events }

// Bots returns the AI driver for bot-owned aggregates.
func (gl *GameLoop) Bots() *BotManager { return gl.bots }

// Stats returns per-phase timing stats.
func (gl *GameLoop) Stats() *PhaseStats { return gl.stats }

// SimTime returns the current simulation time in seconds.
func (gl *GameLoop) SimTime() float64 { return gl.simTime }

// Running reports whether the loop is in the Running state.
func (gl *GameLoop) Running() bool { return gl.state.Load() == stateRunning }

// Start launches the frame scheduler. No-op if already running or paused.
func (gl *GameLoop) Start() {
	if !gl.state.CompareAndSwap(stateStopped, stateRunning) {
		return
	}
	gl.stopChan = make(chan struct{})
	gl.resetTime.Store(true)
	go gl.run()
	log.Printf("game loop started: step=%.1fms, max %d updates/frame", gl.fixedStep*1000, gl.maxUpdatesPerFrame)
}

// Pause suspends simulation without tearing down the scheduler.
func (gl *GameLoop) Pause() {
	gl.state.CompareAndSwap(stateRunning, statePaused)
}

// Resume continues a paused loop. The last-tick timestamp is reset so the
// pause does not appear as one giant delta.
func (gl *GameLoop) Resume() {
	if gl.state.CompareAndSwap(statePaused, stateRunning) {
		gl.resetTime.Store(true)
	}
}

// Stop halts scheduling entirely. The loop goroutine exits; frames are
// never processed after Stop returns.
func (gl *GameLoop) Stop() {
	prev := gl.state.Swap(stateStopped)
	if prev != stateStopped {
		close(gl.stopChan)
	}
}

// run is the frame scheduler: a wall-clock ticker at the display rate.
func (gl *GameLoop) run() {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()
	for {
		select {
		case <-gl.stopChan:
			return
		case now := <-ticker.C:
			gl.frame(now)
		}
	}
}

// frame processes one scheduled frame: accumulate capped delta, run up to
// maxUpdatesPerFrame fixed steps, then render once with the leftover
// fraction as interpolation alpha.
func (gl *GameLoop) frame(now time.Time) {
	if gl.state.Load() != stateRunning {
		return
	}
	// Re-anchor after Start/Resume: no delta to simulate, but the frame
	// still renders once.
	if gl.resetTime.Swap(false) {
		gl.lastTime = now
		gl.render(math.Min(gl.alpha, 1))
		return
	}

	delta := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now
	if delta > gl.maxFrameTime {
		delta = gl.maxFrameTime
	}
	if delta < 0 {
		delta = 0
	}
	gl.accumulator += delta

	updates := 0
	for gl.accumulator >= gl.fixedStep && updates < gl.maxUpdatesPerFrame {
		gl.update(gl.fixedStep)
		gl.accumulator -= gl.fixedStep
		updates++
	}

	gl.alpha = gl.accumulator / gl.fixedStep
	gl.render(math.Min(gl.alpha, 1))
}

// update executes one deterministic fixed step. Phase order is a contract:
// collision sees post-movement positions, external systems see
// post-collision state, and cleanup leaves no stale inactive entity for the
// next tick's queries. A panicking phase loses only its own effect this
// tick; subsequent phases still run.
func (gl *GameLoop) update(dt float64) {
	gl.tickCount++
	gl.simTime += dt
	now := gl.simTime

	w := gl.world
	w.mu.Lock()
	defer w.mu.Unlock()

	gl.runPhase("input", func() { gl.phaseInput(now) })
	gl.runPhase("physics", func() { gl.phasePhysics(dt) })
	gl.runPhase("entities", func() { gl.phaseEntities(dt, now) })
	gl.runPhase("collision", func() {
		for id, rec := range resolveCollisions(w, now, gl.events) {
			gl.killMap[id] = rec
		}
	})
	gl.runPhase("external", func() { gl.phaseExternal(dt, now) })
	gl.runPhase("cleanup", func() { gl.phaseCleanup() })
}

func (gl *GameLoop) runPhase(name string, fn func()) {
	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("phase %s failed this tick: %v", name, r)
			}
		}()
		fn()
	}()
	gl.stats.Record(name, time.Since(start))
}

// phaseInput applies the latest client input: steering targets plus
// edge-triggered split/recombine/eject actions.
func (gl *GameLoop) phaseInput(now float64) {
	if gl.conns == nil {
		return
	}
	for _, c := range gl.conns.Snapshot() {
		p, ok := gl.world.Players[c.ID]
		if !ok || !p.Alive {
			continue
		}
		inp := c.GetInput()
		p.SetTarget(inp.TargetX, inp.TargetY)
		split, recombine, eject := c.TakeActions()

		cx, cy := p.Centroid()
		dirX, dirY := inp.TargetX-cx, inp.TargetY-cy
		if split && p.Split(dirX, dirY, now) {
			gl.events.Push(Event{Kind: EventSplit, Owner: p.ID, At: now})
		}
		if recombine && p.Recombine(dirX, dirY, now) {
			gl.events.Push(Event{Kind: EventRecombine, Owner: p.ID, At: now})
		}
		if eject {
			if pellets := p.Eject(dirX, dirY); pellets != nil {
				gl.world.AddFood(pellets)
				gl.events.Push(Event{Kind: EventEjected, Owner: p.ID, Amount: float64(len(pellets)), At: now})
			}
		}
	}
}

// phasePhysics moves every owner's cells toward their targets and
// integrates moving food.
func (gl *GameLoop) phasePhysics(dt float64) {
	for _, p := range gl.world.Players {
		if p.Alive {
			p.MoveCells(dt)
		}
	}
	for _, f := range gl.world.Food {
		if f.Moving() {
			f.Update(dt)
		}
	}
}

// phaseEntities runs per-entity self-updates: effect expiry, glow and mass
// decay, recombine-flag cooldown checks.
func (gl *GameLoop) phaseEntities(dt, now float64) {
	for _, p := range gl.world.Players {
		if p.Alive {
			p.UpdateCells(dt, now)
		}
	}
}

// phaseExternal dispatches externally-owned systems: bot AI, spawner
// maintenance and the per-tick event drain to registered sinks.
func (gl *GameLoop) phaseExternal(dt, now float64) {
	gl.bots.Update(dt, now)
	gl.world.MaintainFoodCount()
	gl.maybeSpawnPickup()
	gl.events.Drain()
}

func (gl *GameLoop) maybeSpawnPickup() {
	interval := uint64(PickupSpawnInterval / gl.fixedStep)
	if interval == 0 || gl.tickCount%interval != 0 {
		return
	}
	if gl.world.PickupCount() >= PickupMaxCount {
		return
	}
	// Rotate kinds on their own counter; spawn ticks are all multiples of
	// interval, so deriving the index from tickCount would pin one kind.
	kind := pickupKinds[gl.pickupSpawns%uint64(len(pickupKinds))]
	gl.pickupSpawns++
	pk := NewPickup(kind, gl.world.Bounds)
	gl.world.Food[pk.ID] = pk
	log.Printf("spawned %s pickup %d", kind, pk.ID)
}

// phaseCleanup compacts inactive cells out of every owner and refreshes the
// total-mass invariant, so next tick's grid rebuild sees only live state.
func (gl *GameLoop) phaseCleanup() {
	for _, p := range gl.world.Players {
		p.CompactCells()
	}
}

// render broadcasts interpolated state once per frame, then delivers any
// pending death notifications.
func (gl *GameLoop) render(alpha float64) {
	gl.renderFn(alpha)
	gl.sendDeathMessages()
}

// broadcast sends viewport-culled, alpha-interpolated state to all clients.
func (gl *GameLoop) broadcast(alpha float64) {
	if gl.conns == nil {
		return
	}
	w := gl.world

	w.mu.RLock()
	leaderboard := w.Leaderboard()
	w.mu.RUnlock()

	for _, c := range gl.conns.Snapshot() {
		w.mu.RLock()
		p, ok := w.Players[c.ID]
		if !ok || !p.Alive {
			w.mu.RUnlock()
			_ = c.Send(StateMsg{
				Type:        MsgState,
				Alpha:       roundTo2(alpha),
				Players:     []PlayerDTO{},
				Food:        []FoodDTO{},
				Leaderboard: leaderboard,
			})
			continue
		}
		cx, cy := p.Centroid()
		players := w.PlayersInViewport(cx, cy, alpha)
		food := w.FoodInViewport(cx, cy, alpha)
		w.mu.RUnlock()

		err := c.Send(StateMsg{
			Type:        MsgState,
			Alpha:       roundTo2(alpha),
			Players:     players,
			Food:        food,
			Leaderboard: leaderboard,
		})
		if err != nil {
			log.Printf("send error to %s: %v", c.ID, err)
		}
	}
}

func (gl *GameLoop) sendDeathMessages() {
	if len(gl.killMap) == 0 {
		return
	}
	for victimID, rec := range gl.killMap {
		delete(gl.killMap, victimID)
		if gl.conns == nil {
			continue
		}
		conn, ok := gl.conns.Get(victimID)
		if !ok {
			continue
		}
		_ = conn.Send(DeathMsg{
			Type:   MsgDeath,
			Killer: rec.Killer,
			Mass:   roundTo1(rec.Mass),
		})
	}
}

// PhaseStats keeps a rolling window of per-phase execution times. This is
// the detection mechanism for an unbounded phase: the loop itself never
// times phases out.
type PhaseStats struct {
	mu         sync.Mutex
	samples    map[string][]time.Duration
	maxSamples int
}

func NewPhaseStats() *PhaseStats {
	return &PhaseStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: 120,
	}
}

func (p *PhaseStats) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples[name] = append(p.samples[name], d)
	if len(p.samples[name]) > p.maxSamples {
		p.samples[name] = p.samples[name][1:]
	}
}

// Avg returns the rolling average duration for a phase.
func (p *PhaseStats) Avg(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Names returns the recorded phase names in sorted order.
func (p *PhaseStats) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
