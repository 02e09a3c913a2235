// Simulation wires the market core to its collaborators: the shock
// generator, the audit, the recorder, and the demo agents that drive trades
// through every market entry point.
package engine

import (
	"log/slog"

	"github.com/okellen/breadbasket/internal/audit"
	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
	"github.com/okellen/breadbasket/internal/market"
	"github.com/okellen/breadbasket/internal/shocks"
)

// Recorder persists end-of-day results. Nil recorders are skipped.
type Recorder interface {
	SaveDay(day int, snap market.Snapshot) error
	SaveState(tick uint64, snap market.Snapshot) error
}

// Simulation holds the complete run state and wires systems together.
type Simulation struct {
	Market *market.Market
	Shocks *shocks.Generator
	Bus    *events.Bus

	Farmers   []*farmer
	Baker     *baker
	Consumers []*consumer

	Recorder Recorder
	LastTick uint64

	// AuditErr is set when the external audit trips; the run should halt.
	AuditErr error
	// Stop is called on a fatal audit failure. Set by the composition
	// root; nil in tests.
	Stop func()

	rng      *entropy.Source
	actEvery uint64
}

// NewSimulation creates a run with a small cast of demo agents: three wheat
// farmers, one baker, four consumers.
func NewSimulation(m *market.Market, sh *shocks.Generator, bus *events.Bus, rng *entropy.Source, ticksPerDay uint64) *Simulation {
	s := &Simulation{
		Market:   m,
		Shocks:   sh,
		Bus:      bus,
		rng:      rng,
		actEvery: ticksPerDay / 24,
	}
	if s.actEvery == 0 {
		s.actEvery = 1
	}

	for i, name := range []string{"Aldric", "Berta", "Corwin"} {
		f := newFarmer(name, 30+float64(i)*10)
		s.Farmers = append(s.Farmers, f)
	}
	s.Baker = newBaker("Maren", 60)
	for _, name := range []string{"Oswin", "Petra", "Quint", "Ryla"} {
		s.Consumers = append(s.Consumers, newConsumer(name, 25))
	}
	return s
}

// TickMinute runs every tick: agents act on their hourly cadence, one at a
// time, so each sees the market state left by the previous one.
func (s *Simulation) TickMinute(tick uint64) {
	s.LastTick = tick
	s.Market.SetTick(tick)

	if tick%s.actEvery != 0 {
		return
	}
	for _, f := range s.Farmers {
		f.actHourly(s.Market)
	}
	s.Baker.actHourly(s.Market, s.Farmers)
	for _, c := range s.Consumers {
		c.actHourly(s.Market)
	}
}

// DayChanged runs the day-change event, strictly after all agents have
// acted for the final tick of the old day: daily market adjustment first
// (it consumes the old day's statistics), then the external audit, then
// persistence, then the new day's shocks and agent daily routines.
func (s *Simulation) DayChanged(tick uint64, day int) {
	s.Market.OnDayChanged(day)

	snap := s.Market.Snapshot()
	if err := audit.Check(snap); err != nil {
		s.AuditErr = err
		slog.Error("market audit failed, halting run", "day", day, "error", err)
		if s.Stop != nil {
			s.Stop()
		}
		return
	}

	if s.Recorder != nil {
		if err := s.Recorder.SaveDay(day, snap); err != nil {
			slog.Error("failed to record day", "day", day, "error", err)
		}
		if err := s.Recorder.SaveState(tick, snap); err != nil {
			slog.Error("failed to save state", "day", day, "error", err)
		}
	}

	s.Shocks.OnDayChanged(day)

	demandHit := func() bool {
		return s.Shocks.DemandShockActive() && s.rng.Chance(s.Shocks.DemandShare())
	}
	for _, f := range s.Farmers {
		f.actDaily(s.Market, s.Shocks)
	}
	s.Baker.actDaily(s.Market)
	for _, c := range s.Consumers {
		extra := 0
		if demandHit() {
			extra = s.Shocks.DemandExtraFood()
		}
		c.actDaily(s.Market, extra)
	}

	slog.Info("day closed",
		"day", day,
		"wheat_price", snap.Goods[0].Price,
		"bread_price", snap.Goods[1].Price,
		"seed_price", snap.Goods[2].Price,
		"market_money", snap.Money,
		"yield", s.Shocks.YieldMultiplier(),
	)
}

// Wealth sums all agent balances, used by the status API.
func (s *Simulation) Wealth() float64 {
	total := 0.0
	for _, f := range s.Farmers {
		total += f.Balance()
	}
	total += s.Baker.Balance()
	for _, c := range s.Consumers {
		total += c.Balance()
	}
	return total
}

// Actors returns every demo agent as a trader, for diagnostics.
func (s *Simulation) Actors() []economy.Trader {
	out := make([]economy.Trader, 0, len(s.Farmers)+1+len(s.Consumers))
	for _, f := range s.Farmers {
		out = append(out, f)
	}
	out = append(out, s.Baker)
	for _, c := range s.Consumers {
		out = append(out, c)
	}
	return out
}
