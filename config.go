package main

// Game configuration constants
const (
	// Server
	ServerPort    = ":8080"
	StaticDir     = "../client"
	WebSocketPath = "/ws"
	MaxPlayers    = 100
	IPCooldownSec = 30

	// World — rectangular map, origin at top-left
	WorldWidth  = 6000.0
	WorldHeight = 6000.0
	// SpawnMargin keeps new cells away from the walls on spawn
	SpawnMargin = 200.0

	// Simulation loop
	FrameRate = 60 // render/broadcast frames per second
	// FixedStep is the simulated time per update in seconds. The loop runs
	// a whole number of these per frame and interpolates the remainder.
	FixedStep          = 1.0 / 60.0
	MaxFrameTime       = 0.05 // seconds — delta cap after a stall
	MaxUpdatesPerFrame = 5    // catch-up cap per scheduled frame

	// Cells
	StartMass     = 100.0
	MinCellMass   = 1.0
	MaxCellMass   = 22500.0
	CellBaseSpeed = 240.0 // world units/sec at StartMass
	// Speed falls off with mass: speed = CellBaseSpeed * (StartMass/mass)^SpeedMassExponent
	SpeedMassExponent = 0.2
	// Impulse velocity (split/eject/bounce kicks) decays exponentially
	ImpulseFriction = 2.5 // 1/sec
	// Cells above DecayMinMass slowly shed mass
	MassDecayRate = 0.002 // fraction of mass per second
	DecayMinMass  = 200.0

	// Absorption
	// The absorber's effective mass must exceed the victim's by this factor
	AbsorptionThreshold = 1.1
	GlowOnAbsorb        = 1.0 // renderer hint set when a cell absorbs
	GlowDecay           = 1.5 // per second

	// Boundary
	BounceDamping = 0.8 // perpendicular velocity scale on wall clamp

	// Split / recombine
	MaxCellsPerOwner  = 8
	SplitCooldown     = 1.0  // seconds between split actions
	RecombineCooldown = 10.0 // seconds after a split before cells may merge
	MinSplitMass      = 50.0 // owner total mass required to split
	SplitMinCellMass  = 36.0 // per-cell mass required to halve
	SplitImpulse      = 480.0
	// Fraction of combined momentum kept on an explicit recombine
	RecombineMomentumRetention = 0.5
	RecombineOffsetFactor      = 0.5 // result shifts toward the requested direction by radius*this

	// Eject
	EjectCost       = 16.0 // mass removed from the ejecting cell
	EjectPelletMass = 12.0 // mass of the pellet that appears (the rest is a sink)
	EjectMinMass    = 40.0 // per-cell mass required to eject
	EjectImpulse    = 600.0

	// Food
	FoodMass         = 5.0
	InitialFoodCount = 3000
	TargetFoodCount  = 3000
	FoodSpawnPerTick = 50
	// A fraction of spawn attempts start a cluster instead of a lone pellet
	FoodClusterChance    = 0.05
	FoodClusterMin       = 5
	FoodClusterMax       = 12
	FoodClusterRadiusMin = 80.0
	FoodClusterRadiusMax = 150.0
	// Absorption overflow past MaxCellMass drops back as scattered pellets
	OverflowDropMax     = 20   // pellets per absorption
	OverflowDropScatter = 30.0 // world units around the victim

	// Pickups — rare spawns granting a timed effect to the absorbing cell
	PickupMass          = 20.0
	PickupSpawnInterval = 15.0 // seconds between spawn attempts
	PickupMaxCount      = 6
	PickupDriftSpeed    = 60.0 // world units/sec
	EffectDuration      = 8.0  // seconds
	SpeedBoostMult      = 1.5
	SizeBoostMult       = 1.3
	MassBoostMult       = 1.25

	// Spatial grid. Cell size must stay >= 2x the largest effective radius
	// (sqrt(MaxCellMass/pi) * SizeBoostMult ~= 110) so a 3x3 neighborhood
	// query never misses an overlapping pair.
	GridCellSize = 300.0

	// Viewport
	ViewportWidth  = 1536.0
	ViewportHeight = 864.0
	ViewportBuffer = 200.0

	// Leaderboard
	LeaderboardSize = 10

	// Bot AI
	BotCount          = 20    // AI-driven owners to maintain
	BotRespawnDelay   = 5.0   // seconds before a dead bot respawns
	BotFleeRadius     = 400.0 // bigger owners closer than this trigger flee
	BotChaseRadius    = 500.0 // smaller owners closer than this are chased
	BotFoodSeekRadius = 600.0 // food within this range is targeted
	BotBoundaryBuffer = 250.0 // steer inward when this close to a wall
	// Bots split at prey only when this much heavier than the target
	BotSplitMassRatio = 2.6
	BotSplitRange     = 250.0
)

// Owner controller tags. Shared mass/split/recombine logic lives on Player;
// only the source of movement targets differs.
const (
	ControllerHuman = "human"
	ControllerAI    = "ai"
)

// Player colors palette
var PlayerColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#e91e63", "#00bcd4", "#8bc34a",
	"#ff5722", "#607d8b", "#795548", "#673ab7", "#03a9f4",
	"#4caf50", "#ffeb3b", "#ff9800", "#f44336", "#9c27b0",
}
