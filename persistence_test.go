package main

import (
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 400, 600, 250)
	p.LastSplit = 42.5
	second := NewCell(p, 450, 600, 80)
	p.Cells = append(p.Cells, second)
	p.RecomputeTotalMass()
	w.AddPlayer(p)
	w.AddPlayer(newTestPlayer("p2", 900, 900, 100))
	dead := newTestPlayer("gone", 100, 100, 500)
	dead.Alive = false
	w.AddPlayer(dead)

	data, err := SaveSnapshot(w)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := newTestWorld(newTestBounds())
	restored, err := LoadSnapshot(fresh, data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored != 2 {
		t.Fatalf("restored %d owners, want 2 (dead owners not persisted)", restored)
	}

	got, ok := fresh.Players["p1"]
	if !ok {
		t.Fatalf("p1 missing after load")
	}
	if len(got.Cells) != 2 {
		t.Fatalf("p1 cells = %d, want 2", len(got.Cells))
	}
	if got.TotalMass != 330 {
		t.Fatalf("p1 total mass = %f, want 330", got.TotalMass)
	}
	if !got.CanSplit(0) {
		t.Fatalf("restored owner inherited a split cooldown")
	}
	if got.Cells[0].X != 400 || got.Cells[0].Y != 600 {
		t.Fatalf("p1 cell position = (%f, %f), want (400, 600)", got.Cells[0].X, got.Cells[0].Y)
	}
	if !got.Alive {
		t.Fatalf("restored owner should be alive")
	}
	if _, ok := fresh.Players["gone"]; ok {
		t.Fatalf("dead owner leaked into the snapshot")
	}
}

func TestSnapshotExcludesBotOwners(t *testing.T) {
	// Bots are regrown by Prepopulate on start; persisting them would leave
	// idle AI owners no bot manager drives.
	w := newTestWorld(newTestBounds())
	w.AddPlayer(newTestPlayer("human", 400, 600, 250))
	bot := newTestPlayer("bot", 800, 800, 180)
	bot.Controller = ControllerAI
	w.AddPlayer(bot)

	data, err := SaveSnapshot(w)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	fresh := newTestWorld(newTestBounds())
	restored, err := LoadSnapshot(fresh, data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored != 1 {
		t.Fatalf("restored %d owners, want 1 (humans only)", restored)
	}
	if _, ok := fresh.Players["bot"]; ok {
		t.Fatalf("bot owner leaked into the snapshot")
	}
}

func TestSnapshotSkipsInactiveCells(t *testing.T) {
	w := newTestWorld(newTestBounds())
	p := newTestPlayer("p1", 400, 600, 250)
	stale := NewCell(p, 500, 600, 60)
	stale.Deactivate()
	p.Cells = append(p.Cells, stale)
	w.AddPlayer(p)

	data, err := SaveSnapshot(w)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	fresh := newTestWorld(newTestBounds())
	if _, err := LoadSnapshot(fresh, data); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(fresh.Players["p1"].Cells); n != 1 {
		t.Fatalf("restored cells = %d, want 1 (inactive cells dropped)", n)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	w := newTestWorld(newTestBounds())
	w.AddPlayer(newTestPlayer("p1", 400, 600, 250))

	path := filepath.Join(t.TempDir(), "arena.snap")
	if err := SaveSnapshotFile(w, path); err != nil {
		t.Fatalf("save file: %v", err)
	}

	fresh := newTestWorld(newTestBounds())
	restored, err := LoadSnapshotFile(fresh, path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if restored != 1 {
		t.Fatalf("restored %d owners from file, want 1", restored)
	}
	if fresh.Players["p1"].TotalMass != 250 {
		t.Fatalf("total mass after file round trip = %f", fresh.Players["p1"].TotalMass)
	}
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	w := newTestWorld(newTestBounds())
	if _, err := LoadSnapshot(w, []byte("not msgpack at all")); err == nil {
		t.Fatalf("garbage input should fail to decode")
	}
}
