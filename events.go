package main

import "log"

// Event kinds emitted by the collision engine and simulation loop.
// Pickup effects use "effect.<kind>".
const (
	EventAbsorbedFood = "absorbed.food"
	EventAbsorbedCell = "absorbed.cell"
	EventSplit        = "split"
	EventRecombine    = "recombine"
	EventEjected      = "ejected"
	EventEliminated   = "eliminated"
)

// Event is a one-way notification to external sinks (progression, currency,
// achievements). Sinks are never queried back for values that affect
// collision outcomes.
type Event struct {
	Kind   string
	Owner  string
	Amount float64
	At     float64 // simulation time in seconds
}

// EventSink consumes drained events.
type EventSink func(Event)

// EventQueue is the loop-owned outgoing queue: phases push during the tick,
// registered sinks drain exactly once per tick. No global bus, no hidden
// shared state.
type EventQueue struct {
	pending []Event
	sinks   []EventSink
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// RegisterSink adds a sink; call before the loop starts.
func (q *EventQueue) RegisterSink(s EventSink) {
	q.sinks = append(q.sinks, s)
}

// Push appends an event for the current tick.
func (q *EventQueue) Push(e Event) {
	q.pending = append(q.pending, e)
}

// Pending returns the number of undrained events.
func (q *EventQueue) Pending() int {
	return len(q.pending)
}

// Drain delivers all pending events to every sink and clears the queue.
// A panicking sink loses only its own delivery; other sinks and the
// simulation continue.
func (q *EventQueue) Drain() {
	if len(q.pending) == 0 {
		return
	}
	events := q.pending
	q.pending = q.pending[:0]
	for _, sink := range q.sinks {
		deliver(sink, events)
	}
}

func deliver(sink EventSink, events []Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event sink panic: %v", r)
		}
	}()
	for _, e := range events {
		sink(e)
	}
}

// ProgressionTracker is the bundled progression/currency sink: it
// accumulates per-owner absorption totals, kills and splits from drained
// events.
type ProgressionTracker struct {
	MassAbsorbed map[string]float64
	Kills        map[string]int
	Splits       map[string]int
	Currency     map[string]int
}

func NewProgressionTracker() *ProgressionTracker {
	return &ProgressionTracker{
		MassAbsorbed: make(map[string]float64),
		Kills:        make(map[string]int),
		Splits:       make(map[string]int),
		Currency:     make(map[string]int),
	}
}

// HandleEvent is the EventSink for the tracker.
func (t *ProgressionTracker) HandleEvent(e Event) {
	switch e.Kind {
	case EventAbsorbedFood, EventAbsorbedCell:
		t.MassAbsorbed[e.Owner] += e.Amount
		t.Currency[e.Owner] += int(e.Amount)
		if e.Kind == EventAbsorbedCell {
			t.Kills[e.Owner]++
		}
	case EventSplit:
		t.Splits[e.Owner]++
	}
}
