// Package events is the observability sink: market and shock systems emit
// human-readable structured lines here. The bus logs each event, keeps a
// small in-memory ring for the API, and can forward to a persistence sink.
// Nothing ever reads events back for control decisions.
package events

import (
	"log/slog"

	"github.com/google/uuid"
)

// Event is a notable occurrence in the simulation.
type Event struct {
	ID          string         `json:"id"`
	Tick        uint64         `json:"tick"`
	Day         int            `json:"day"`
	Category    string         `json:"category"` // "trade", "price", "decay", "shock", "gate", "error"
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Bus collects events in a fixed-size circular buffer. Emit runs only on
// the simulation goroutine; readers on other goroutines must hold the
// engine mutex (Engine.View).
type Bus struct {
	buf   []Event
	next  int // index the next event lands in
	count int // filled slots, up to len(buf)
	sink  func(Event)
}

// NewBus creates a bus retaining the most recent capacity events.
func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{buf: make([]Event, capacity)}
}

// SetSink registers a forwarding sink (e.g. the events table). May be nil.
func (b *Bus) SetSink(fn func(Event)) {
	b.sink = fn
}

// Emit records an event: assigns an ID, logs it, writes it into the ring
// (overwriting the oldest slot once full), and forwards to the sink when
// one is set.
func (b *Bus) Emit(e Event) {
	e.ID = uuid.NewString()

	attrs := []any{"tick", e.Tick, "day", e.Day, "category", e.Category}
	for k, v := range e.Meta {
		attrs = append(attrs, k, v)
	}
	if e.Category == "error" {
		slog.Error(e.Description, attrs...)
	} else {
		slog.Info(e.Description, attrs...)
	}

	b.buf[b.next] = e
	b.next = (b.next + 1) % len(b.buf)
	if b.count < len(b.buf) {
		b.count++
	}

	if b.sink != nil {
		b.sink(e)
	}
}

// Recent returns up to n of the most recent events, newest last.
func (b *Bus) Recent(n int) []Event {
	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		out[i] = b.buf[(b.next-n+i+len(b.buf))%len(b.buf)]
	}
	return out
}
