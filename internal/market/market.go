// Package market implements the pricing and clearing engine for the village
// commodity market: piecewise bid curves, unit-by-unit clearing with
// capacity-overflow distress pricing, and clearing-price-anchored daily
// price discovery with decay and hysteresis guardrails.
//
// The market is the only holder of its mutable state and assumes the
// simulation's single-writer, run-to-completion contract: every public call
// completes synchronously and no two calls ever overlap.
package market

import (
	"math"

	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
)

// SeedSupply reports the active seed-availability factor in (0, 1]. The
// shock generator implements it; seed sales are scaled by it.
type SeedSupply interface {
	SeedSaleFactor() float64
}

// dayStats accumulates one day of per-good trade statistics. Reset exactly
// once per day-change event.
type dayStats struct {
	UnitsSold      int     // units the market sold to agents
	UnitsRequested int     // units offered or requested across all calls
	UnitsCleared   int     // units bought by the market, counted for price discovery
	ValueCleared   float64 // money paid for UnitsCleared, at realized prices
	OverflowUnits  int     // cleared units routed past capacity
}

// gateState is the edge-triggered producer permission pair for one good.
type gateState struct {
	CanSell    bool
	CanProduce bool
}

// Market owns all mutable trading state for the commodity pair and exposes
// the public pricing, clearing, and daily-adjustment API.
type Market struct {
	cfg    map[economy.Good]GoodConfig
	params Params

	money     float64
	inventory map[economy.Good]int
	price     map[economy.Good]float64 // reference price, moves at most once per day

	day     int
	tick    uint64
	stats   map[economy.Good]*dayStats
	prevInv map[economy.Good]int // previous-day inventory snapshot
	gates   map[economy.Good]*gateState

	rng   *entropy.Source
	bus   *events.Bus
	seeds SeedSupply
}

// New constructs a market at its steady state: inventory at target,
// reference prices at their configured initial values.
func New(cfg map[economy.Good]GoodConfig, params Params, rng *entropy.Source, bus *events.Bus) *Market {
	m := &Market{
		cfg:       cfg,
		params:    params,
		money:     params.InitialMoney,
		inventory: make(map[economy.Good]int, len(cfg)),
		price:     make(map[economy.Good]float64, len(cfg)),
		stats:     make(map[economy.Good]*dayStats, len(cfg)),
		prevInv:   make(map[economy.Good]int, len(cfg)),
		gates:     make(map[economy.Good]*gateState, len(cfg)),
		rng:       rng,
		bus:       bus,
	}
	for g, c := range cfg {
		m.inventory[g] = c.Target
		m.price[g] = clamp(c.InitialPrice, c.Floor, c.Ceiling)
		m.stats[g] = &dayStats{}
		m.prevInv[g] = c.Target
		m.gates[g] = &gateState{CanSell: true, CanProduce: true}
	}
	return m
}

// SetSeedSupply wires the shock generator's seed-availability factor into
// seed sales. Nil means no reduction.
func (m *Market) SetSeedSupply(s SeedSupply) {
	m.seeds = s
}

// SetTick records the current simulation tick, used only for event stamps.
func (m *Market) SetTick(tick uint64) {
	m.tick = tick
}

// Day returns the current simulation day.
func (m *Market) Day() int { return m.day }

// Money returns the market's cash on hand.
func (m *Market) Money() float64 { return m.money }

// Inventory returns the stored quantity of a good.
func (m *Market) Inventory(g economy.Good) int { return m.inventory[g] }

// Price returns the published reference price of a good.
func (m *Market) Price(g economy.Good) float64 { return m.price[g] }

// Target returns the desired steady-state inventory of a good.
func (m *Market) Target(g economy.Good) int { return m.cfg[g].Target }

// Capacity returns the hard storage ceiling of a good.
func (m *Market) Capacity(g economy.Good) int { return m.cfg[g].Capacity }

// RemainingCapacity returns how many more units of a good can be stored.
func (m *Market) RemainingCapacity(g economy.Good) int {
	rem := m.cfg[g].Capacity - m.inventory[g]
	if rem < 0 {
		rem = 0
	}
	return rem
}

// IsSaturated reports whether a good's inventory has reached capacity.
func (m *Market) IsSaturated(g economy.Good) bool {
	return m.inventory[g] >= m.cfg[g].Capacity
}

// CanProducerSell reports the sell gate for a good. With enforcement off
// (the default) it always permits; the gate state machine still runs so the
// transitions stay observable.
func (m *Market) CanProducerSell(g economy.Good) bool {
	if !m.cfg[g].Gate.Enforce {
		return true
	}
	return m.gates[g].CanSell
}

// CanProducerProduce reports the produce gate for a good, same contract as
// CanProducerSell.
func (m *Market) CanProducerProduce(g economy.Good) bool {
	if !m.cfg[g].Gate.Enforce {
		return true
	}
	return m.gates[g].CanProduce
}

// GoodSnapshot is the read-only per-good view for diagnostics and the API.
type GoodSnapshot struct {
	Good       string  `json:"good"`
	Inventory  int     `json:"inventory"`
	Capacity   int     `json:"capacity"`
	Target     int     `json:"target"`
	Price      float64 `json:"price"`
	Bid        float64 `json:"bid"`
	Floor      float64 `json:"floor"`
	Ceiling    float64 `json:"ceiling"`
	MaxBuyQty  int     `json:"max_buy_qty"`
	Saturated  bool    `json:"saturated"`
	CanSell    bool    `json:"can_sell"`
	CanProduce bool    `json:"can_produce"`

	UnitsCleared  int     `json:"units_cleared"`
	UnitsSold     int     `json:"units_sold"`
	OverflowUnits int     `json:"overflow_units"`
	ValueCleared  float64 `json:"value_cleared"`
}

// Snapshot is the read-only market view for diagnostics and the audit.
type Snapshot struct {
	Day   int            `json:"day"`
	Money float64        `json:"money"`
	Goods []GoodSnapshot `json:"goods"`
}

// Snapshot captures the current market state.
func (m *Market) Snapshot() Snapshot {
	snap := Snapshot{Day: m.day, Money: m.money}
	for _, g := range economy.Goods() {
		c := m.cfg[g]
		st := m.stats[g]
		snap.Goods = append(snap.Goods, GoodSnapshot{
			Good:          g.Name(),
			Inventory:     m.inventory[g],
			Capacity:      c.Capacity,
			Target:        c.Target,
			Price:         m.price[g],
			Bid:           m.BidPrice(g),
			Floor:         c.Floor,
			Ceiling:       c.Ceiling,
			MaxBuyQty:     m.MaxBuyQty(g),
			Saturated:     m.IsSaturated(g),
			CanSell:       m.CanProducerSell(g),
			CanProduce:    m.CanProducerProduce(g),
			UnitsCleared:  st.UnitsCleared,
			UnitsSold:     st.UnitsSold,
			OverflowUnits: st.OverflowUnits,
			ValueCleared:  st.ValueCleared,
		})
	}
	return snap
}

// RestoreState reinstates a persisted day counter, cash balance, inventory,
// and reference prices, clamping everything back into its legal range.
func (m *Market) RestoreState(day int, money float64, inventory map[string]int, prices map[string]float64) {
	m.day = day
	if money >= 0 && !math.IsNaN(money) {
		m.money = money
	}
	for name, qty := range inventory {
		g, err := economy.ParseGood(name)
		if err != nil {
			continue
		}
		m.inventory[g] = clampInt(qty, 0, m.cfg[g].Capacity)
		m.prevInv[g] = m.inventory[g]
	}
	for name, p := range prices {
		g, err := economy.ParseGood(name)
		if err != nil {
			continue
		}
		c := m.cfg[g]
		if !math.IsNaN(p) {
			m.price[g] = clamp(p, c.Floor, c.Ceiling)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
