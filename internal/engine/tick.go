// Package engine provides the tick-based simulation loop: a periodic tick
// advances agent actions, and a derived day event drives the daily market
// adjustment and the shock generator. The loop is the world's only writer;
// a coarse mutex held for each whole tick lets observers on other
// goroutines read a consistent world between ticks.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick        uint64        // current tick counter, monotonic
	TicksPerDay uint64        // day boundary: tick % TicksPerDay == 0
	Speed       float64       // multiplier: 1.0 = real-time, 0 = paused
	Interval    time.Duration // base tick interval

	// Callbacks populated during setup. OnDay fires strictly after the
	// last OnTick of the old day and before the first OnTick of the new
	// one. Both run with the engine mutex held.
	OnTick func(tick uint64)
	OnDay  func(tick uint64, day int)

	// mu guards Tick and all world state the callbacks mutate. Speed,
	// Interval, and the callbacks are set before Run starts and never
	// written again.
	mu      sync.Mutex
	running atomic.Bool
}

// NewEngine creates an engine with default pacing.
func NewEngine(ticksPerDay uint64) *Engine {
	if ticksPerDay == 0 {
		ticksPerDay = 240
	}
	return &Engine{
		TicksPerDay: ticksPerDay,
		Speed:       1.0,
		Interval:    time.Second,
	}
}

// Run starts the simulation loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.running.Load() {
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop. Safe from any goroutine, including a
// callback running inside Step.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// IsRunning reports whether the loop is live.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Step advances the simulation by one tick. The engine mutex is held for
// the whole tick, so callbacks have the world to themselves. Exposed for
// headless and test runs that want to drive the clock without wall time.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.Tick%e.TicksPerDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick, e.Day())
	}
}

// View runs fn with the engine mutex held, between ticks. Observers on
// other goroutines (the HTTP handlers) use it to read the market, agents,
// and event ring without racing the loop.
func (e *Engine) View(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Day returns the simulation day for the current tick.
func (e *Engine) Day() int {
	return int(e.Tick / e.TicksPerDay)
}

// SimTime renders a tick as a human-readable day/hour string.
func (e *Engine) SimTime(tick uint64) string {
	day := tick / e.TicksPerDay
	rem := tick % e.TicksPerDay
	hour := rem * 24 / e.TicksPerDay
	minute := (rem * 24 * 60 / e.TicksPerDay) % 60
	return fmt.Sprintf("Day %d, %02d:%02d", day, hour, minute)
}
