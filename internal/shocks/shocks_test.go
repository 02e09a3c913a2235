package shocks

import (
	"testing"

	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
)

func newTestGen(cfg Config, seed int64) *Generator {
	return New(cfg, seed, entropy.NewSource(seed), events.NewBus(16))
}

func TestYieldStaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	g := newTestGen(cfg, 7)
	for day := 1; day <= 400; day++ {
		g.OnDayChanged(day)
		y := g.YieldMultiplier()
		if y < cfg.YieldMin || y > cfg.YieldMax {
			t.Fatalf("day %d: yield %v outside [%v, %v]", day, y, cfg.YieldMin, cfg.YieldMax)
		}
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	a := newTestGen(DefaultConfig(), 99)
	b := newTestGen(DefaultConfig(), 99)
	for day := 1; day <= 200; day++ {
		a.OnDayChanged(day)
		b.OnDayChanged(day)
		if a.YieldMultiplier() != b.YieldMultiplier() {
			t.Fatalf("day %d: yields diverged: %v vs %v", day, a.YieldMultiplier(), b.YieldMultiplier())
		}
		if a.DemandShockActive() != b.DemandShockActive() || a.SeedShockActive() != b.SeedShockActive() {
			t.Fatalf("day %d: shock state diverged", day)
		}
	}
}

func TestSeedShockLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedProb = 1 // start immediately
	cfg.SeedDaysMin = 2
	cfg.SeedDaysMax = 5
	g := newTestGen(cfg, 3)

	g.OnDayChanged(1)
	if !g.SeedShockActive() {
		t.Fatalf("seed shock did not start at probability 1")
	}
	if g.SeedSaleFactor() != cfg.SeedFactor {
		t.Fatalf("active factor = %v, want %v", g.SeedSaleFactor(), cfg.SeedFactor)
	}
	if g.seedDaysLeft < cfg.SeedDaysMin || g.seedDaysLeft > cfg.SeedDaysMax {
		t.Fatalf("duration %d outside [%d, %d]", g.seedDaysLeft, cfg.SeedDaysMin, cfg.SeedDaysMax)
	}

	// The shock runs out its duration, then (probability 1) restarts the
	// following day; in between the factor returns to 1.
	duration := g.seedDaysLeft
	for i := 0; i < duration; i++ {
		g.OnDayChanged(2 + i)
	}
	if g.SeedShockActive() {
		t.Fatalf("seed shock still active after %d days", duration)
	}
	if g.SeedSaleFactor() != 1.0 {
		t.Fatalf("inactive factor = %v, want 1.0", g.SeedSaleFactor())
	}
}

func TestDemandShockProbabilityExtremes(t *testing.T) {
	always := DefaultConfig()
	always.DemandProb = 1
	g := newTestGen(always, 5)
	for day := 1; day <= 20; day++ {
		g.OnDayChanged(day)
		if !g.DemandShockActive() {
			t.Fatalf("day %d: demand shock inactive at probability 1", day)
		}
	}

	never := DefaultConfig()
	never.DemandProb = 0
	g = newTestGen(never, 5)
	for day := 1; day <= 20; day++ {
		g.OnDayChanged(day)
		if g.DemandShockActive() {
			t.Fatalf("day %d: demand shock active at probability 0", day)
		}
	}
}
