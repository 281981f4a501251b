package main

import "math"

// Protocol uses single-character JSON keys to minimize wire size.
// All x,y coordinates are rounded to 1 decimal place.
//
// Message type constants (value of "t" field):
//   Client → Server:
//     "j" = join    {"t":"j","n":"PlayerName"}
//     "i" = input   {"t":"i","x":100.0,"y":200.0,"s":1,"m":0,"e":0}
//                   (x,y = target world coords; s/m/e = split/recombine/eject triggers)
//     "r" = respawn {"t":"r","n":"PlayerName"}
//   Server → Client:
//     "w" = welcome {"t":"w","i":"id","x":6000,"y":6000,"c":"#color"}   (x,y = world size)
//     "s" = state   {"t":"s","a":0.42,"p":[players],"f":[food],"l":[leaderboard]}
//     "d" = death   {"t":"d","k":"KillerName","p":mass}
//     "e" = error   {"t":"e","m":"message"}
//
// PlayerDTO: {"i":"id","n":"name","c":"#color","k":[[x,y,r],...],"p":mass,"g":glow}
//   k = cells as flat [x,y,radius] triples, interpolated by the frame alpha
// FoodDTO:  {"i":1,"x":1.0,"y":2.0,"r":1.3,"c":"#f00","u":"speed"}
//   u = pickup effect kind, omitted for plain food

// Message type identifiers — single-char for compact protocol
const (
	MsgJoin    = "j"
	MsgInput   = "i"
	MsgRespawn = "r"
	MsgWelcome = "w"
	MsgState   = "s"
	MsgDeath   = "d"
	MsgError   = "e"
)

// ClientMessage is the base incoming message from the browser.
// Action flags ride on input messages and are edge-triggered: the server
// consumes each set flag exactly once.
type ClientMessage struct {
	Type      string  `json:"t"`
	Name      string  `json:"n,omitempty"`
	TargetX   float64 `json:"x,omitempty"`
	TargetY   float64 `json:"y,omitempty"`
	Split     int     `json:"s,omitempty"` // 0 or 1
	Recombine int     `json:"m,omitempty"` // 0 or 1
	Eject     int     `json:"e,omitempty"` // 0 or 1
}

// WelcomeMsg is sent to a player immediately on WebSocket connect.
type WelcomeMsg struct {
	Type        string  `json:"t"`
	ID          string  `json:"i"`
	WorldWidth  float64 `json:"x"`
	WorldHeight float64 `json:"y"`
	Color       string  `json:"c"`
}

// PlayerDTO is the compact owner aggregate for per-frame state updates.
// Cells are encoded as flat [x,y,r] triples to save bytes.
type PlayerDTO struct {
	ID    string       `json:"i"`
	Name  string       `json:"n"`
	Color string       `json:"c"`
	Cells [][3]float64 `json:"k"`
	Mass  float64      `json:"p"`
	Glow  float64      `json:"g,omitempty"`
}

// FoodDTO is the compact food item for per-frame state updates.
type FoodDTO struct {
	ID     uint64  `json:"i"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Color  string  `json:"c"`
	Pickup string  `json:"u,omitempty"`
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	ID   string  `json:"i"`
	Name string  `json:"n"`
	Mass float64 `json:"p"`
}

// StateMsg is the per-frame state update sent to each client. Alpha is the
// interpolation factor the server already applied to positions; clients may
// use it for their own smoothing diagnostics.
type StateMsg struct {
	Type        string             `json:"t"`
	Alpha       float64            `json:"a"`
	Players     []PlayerDTO        `json:"p"`
	Food        []FoodDTO          `json:"f"`
	Leaderboard []LeaderboardEntry `json:"l"`
}

// DeathMsg is sent to a player when their last cell is absorbed.
type DeathMsg struct {
	Type   string  `json:"t"`
	Killer string  `json:"k"`
	Mass   float64 `json:"p"`
}

// ErrorMsg is sent before closing a connection the server cannot accept.
type ErrorMsg struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

// ToDTO converts an owner to serializable form, blending each cell's last
// two simulated positions by alpha.
func (p *Player) ToDTO(alpha float64) PlayerDTO {
	cells := make([][3]float64, 0, len(p.Cells))
	glow := 0.0
	for _, c := range p.Cells {
		if !c.Active {
			continue
		}
		x := c.PrevX + (c.X-c.PrevX)*alpha
		y := c.PrevY + (c.Y-c.PrevY)*alpha
		cells = append(cells, [3]float64{roundTo1(x), roundTo1(y), roundTo1(c.EffectiveRadius())})
		if c.Glow > glow {
			glow = c.Glow
		}
	}
	return PlayerDTO{
		ID:    p.ID,
		Name:  p.Name,
		Color: p.Color,
		Cells: cells,
		Mass:  roundTo1(p.TotalMass),
		Glow:  roundTo2(glow),
	}
}

// ToDTO converts food to serializable form.
func (f *Food) ToDTO(alpha float64) FoodDTO {
	x, y := f.X, f.Y
	if f.Moving() {
		x = f.PrevX + (f.X-f.PrevX)*alpha
		y = f.PrevY + (f.Y-f.PrevY)*alpha
	}
	return FoodDTO{
		ID:     f.ID,
		X:      roundTo1(x),
		Y:      roundTo1(y),
		Radius: roundTo1(f.Radius()),
		Color:  f.Color,
		Pickup: f.Pickup,
	}
}

// roundTo1 rounds a float64 to 1 decimal place to save protocol bytes.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
