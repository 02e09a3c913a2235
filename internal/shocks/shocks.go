// Package shocks produces the three bounded daily supply/demand modifiers:
// seasonal wheat yield, demand shocks, and seed availability. Shocks never
// set a price: they perturb quantities and let the pricing engine translate
// that into price movement. All state derives from the current day and a
// seeded stream, so runs replay exactly.
package shocks

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
)

// Config bounds every modifier the generator can produce.
type Config struct {
	// Seasonal yield curve for wheat harvests.
	SeasonDays int     `yaml:"season_days"`
	YieldMin   float64 `yaml:"yield_min"`
	YieldMax   float64 `yaml:"yield_max"`

	// Demand shock: daily Bernoulli trial; while active, a share of
	// consumers wants extra food on top of their target buffer.
	DemandProb      float64 `yaml:"demand_prob"`
	DemandExtraFood int     `yaml:"demand_extra_food"`
	DemandShare     float64 `yaml:"demand_share"`

	// Seed shock: daily Bernoulli trial to start one if none is active;
	// while active, seed sales are scaled by SeedFactor for a randomized
	// number of days.
	SeedProb    float64 `yaml:"seed_prob"`
	SeedFactor  float64 `yaml:"seed_factor"`
	SeedDaysMin int     `yaml:"seed_days_min"`
	SeedDaysMax int     `yaml:"seed_days_max"`
}

// DefaultConfig returns the stock shock tuning.
func DefaultConfig() Config {
	return Config{
		SeasonDays:      90,
		YieldMin:        0.90,
		YieldMax:        1.10,
		DemandProb:      0.05,
		DemandExtraFood: 2,
		DemandShare:     0.5,
		SeedProb:        0.04,
		SeedFactor:      0.5,
		SeedDaysMin:     2,
		SeedDaysMax:     5,
	}
}

// Generator holds the current day's modifiers.
type Generator struct {
	cfg   Config
	rng   *entropy.Source
	noise opensimplex.Noise
	bus   *events.Bus

	day          int
	yield        float64
	demandActive bool
	seedActive   bool
	seedDaysLeft int
}

// New creates a generator. The noise overlay is seeded separately from the
// Bernoulli stream so the yield curve replays regardless of how many trials
// the stream has consumed.
func New(cfg Config, seed int64, rng *entropy.Source, bus *events.Bus) *Generator {
	g := &Generator{
		cfg:   cfg,
		rng:   rng,
		noise: opensimplex.NewNormalized(seed),
		bus:   bus,
		yield: 1.0,
	}
	g.yield = g.yieldFor(0)
	return g
}

// OnDayChanged rolls the day's modifiers. Transitions are logged; steady
// states are not.
func (g *Generator) OnDayChanged(day int) {
	g.day = day
	g.yield = g.yieldFor(day)

	// Demand shock: independent trial every day.
	wasDemand := g.demandActive
	g.demandActive = g.rng.Chance(g.cfg.DemandProb)
	if g.demandActive != wasDemand {
		g.bus.Emit(events.Event{
			Day: day, Category: "shock",
			Description: fmt.Sprintf("demand shock %s", onOff(g.demandActive)),
			Meta:        map[string]any{"extra_food": g.cfg.DemandExtraFood, "share": g.cfg.DemandShare},
		})
	}

	// Seed shock: trial only starts a new shock; an active one runs out
	// its randomized duration.
	if g.seedActive {
		g.seedDaysLeft--
		if g.seedDaysLeft <= 0 {
			g.seedActive = false
			g.bus.Emit(events.Event{
				Day: day, Category: "shock",
				Description: "seed shortage cleared",
			})
		}
	} else if g.rng.Chance(g.cfg.SeedProb) {
		g.seedActive = true
		g.seedDaysLeft = g.rng.IntBetween(g.cfg.SeedDaysMin, g.cfg.SeedDaysMax)
		g.bus.Emit(events.Event{
			Day: day, Category: "shock",
			Description: fmt.Sprintf("seed shortage started for %d days", g.seedDaysLeft),
			Meta:        map[string]any{"factor": g.cfg.SeedFactor},
		})
	}
}

// yieldFor computes the seasonal yield multiplier for a day: a sine over
// the season period with a small smooth-noise overlay, clamped to the
// configured bounds.
func (g *Generator) yieldFor(day int) float64 {
	mid := (g.cfg.YieldMin + g.cfg.YieldMax) / 2
	amp := (g.cfg.YieldMax - g.cfg.YieldMin) / 2
	phase := 2 * math.Pi * float64(day%g.cfg.SeasonDays) / float64(g.cfg.SeasonDays)
	y := mid + amp*math.Sin(phase)

	// Smooth jitter at a quarter of the seasonal amplitude keeps harvests
	// from being a pure sine without ever leaving the bounds.
	jitter := (g.noise.Eval2(float64(day)*0.13, 0) - 0.5) * amp * 0.5
	y += jitter

	if y < g.cfg.YieldMin {
		y = g.cfg.YieldMin
	}
	if y > g.cfg.YieldMax {
		y = g.cfg.YieldMax
	}
	return y
}

// YieldMultiplier returns the current wheat harvest multiplier.
func (g *Generator) YieldMultiplier() float64 { return g.yield }

// DemandShockActive reports whether a demand shock is running today.
func (g *Generator) DemandShockActive() bool { return g.demandActive }

// DemandExtraFood returns the extra food units a shocked consumer wants.
func (g *Generator) DemandExtraFood() int { return g.cfg.DemandExtraFood }

// DemandShare returns the fraction of consumers a demand shock touches.
func (g *Generator) DemandShare() float64 { return g.cfg.DemandShare }

// SeedShockActive reports whether a seed shortage is running today.
func (g *Generator) SeedShockActive() bool { return g.seedActive }

// SeedSaleFactor returns the multiplier applied to seed sale quantities:
// 1.0 normally, the configured reduction while a seed shock is active.
func (g *Generator) SeedSaleFactor() float64 {
	if g.seedActive {
		return g.cfg.SeedFactor
	}
	return 1.0
}

func onOff(active bool) string {
	if active {
		return "started"
	}
	return "ended"
}
