package main

import (
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// CellSnapshot is the persisted state of a single cell.
type CellSnapshot struct {
	X    float64 `msgpack:"x"`
	Y    float64 `msgpack:"y"`
	Mass float64 `msgpack:"m"`
}

// OwnerSnapshot is the persisted state of one owner aggregate. Cooldown
// timestamps are not carried: they are relative to a simulation clock that
// restarts at zero.
type OwnerSnapshot struct {
	ID         string         `msgpack:"id"`
	Name       string         `msgpack:"n"`
	Color      string         `msgpack:"c"`
	Controller string         `msgpack:"ct"`
	Cells      []CellSnapshot `msgpack:"cells"`
}

// WorldSnapshot is the serialized save format: owner aggregates only. Food
// is cheap to regrow and is not persisted.
type WorldSnapshot struct {
	SavedAt int64           `msgpack:"at"`
	Owners  []OwnerSnapshot `msgpack:"owners"`
}

// SaveSnapshot serializes all alive human owners with msgpack. Bot owners
// are ephemeral population; Prepopulate regrows them on the next start.
// Caller must hold at least w.mu.RLock.
func SaveSnapshot(w *World) ([]byte, error) {
	snap := WorldSnapshot{SavedAt: time.Now().Unix()}
	for _, p := range w.Players {
		if !p.Alive || p.Controller == ControllerAI {
			continue
		}
		owner := OwnerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Color:      p.Color,
			Controller: p.Controller,
		}
		for _, c := range p.Cells {
			if !c.Active {
				continue
			}
			owner.Cells = append(owner.Cells, CellSnapshot{X: c.X, Y: c.Y, Mass: c.Mass})
		}
		snap.Owners = append(snap.Owners, owner)
	}
	return msgpack.Marshal(&snap)
}

// LoadSnapshot decodes a msgpack snapshot and restores its owners into the
// world. Caller must hold w.mu.Lock.
func LoadSnapshot(w *World, data []byte) (int, error) {
	var snap WorldSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return 0, err
	}
	restored := 0
	for _, owner := range snap.Owners {
		p := &Player{
			ID:         owner.ID,
			Name:       owner.Name,
			Color:      owner.Color,
			Controller: owner.Controller,
			// Restored owners start fully cooled; the clock their old
			// cooldowns ran on restarted at zero.
			LastSplit: -RecombineCooldown,
			Alive:     true,
		}
		for _, cs := range owner.Cells {
			c := NewCell(p, cs.X, cs.Y, cs.Mass)
			p.Cells = append(p.Cells, c)
		}
		if len(p.Cells) == 0 {
			continue
		}
		p.TargetX, p.TargetY = p.Cells[0].X, p.Cells[0].Y
		p.RecomputeTotalMass()
		w.AddPlayer(p)
		restored++
	}
	return restored, nil
}

// SaveSnapshotFile writes the world snapshot to path.
func SaveSnapshotFile(w *World, path string) error {
	w.mu.RLock()
	data, err := SaveSnapshot(w)
	w.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSnapshotFile reads a snapshot from path into the world.
func LoadSnapshotFile(w *World, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return LoadSnapshot(w, data)
}
