// Daily adjuster: once per day-change event the market applies decay,
// rediscovers the reference price from realized clearing statistics, updates
// the hysteresis gates, and resets the daily counters, in that order.
package market

import (
	"fmt"

	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/events"
)

// OnDayChanged runs the daily adjustment cycle. Must be called exactly once
// per day-change event, strictly between the last trade of the old day and
// the first trade of the new one.
func (m *Market) OnDayChanged(day int) {
	m.day = day
	for _, g := range economy.Goods() {
		m.applyDecay(g)
		m.discoverPrice(g)
		m.updateGates(g)

		m.prevInv[g] = m.inventory[g]
		*m.stats[g] = dayStats{}
	}
}

// applyDecay spoils a fraction of an oversupplied good's stock. Decay is a
// tuning layer, not a regime driver: it only fires above the upper band,
// only after the stabilization window, and the daily rate is redrawn from
// the configured range each day.
func (m *Market) applyDecay(g economy.Good) {
	c := m.cfg[g]
	if !c.Decay.Enabled || !c.Decay.Market {
		return
	}
	if m.day <= m.params.StabilizationDays {
		return
	}
	_, upper := m.bands(g)
	if float64(m.inventory[g]) <= upper {
		return
	}

	rate := m.rng.Range(c.Decay.MinRate, c.Decay.MaxRate)
	loss := int(float64(m.inventory[g]) * rate)
	if loss <= 0 {
		return
	}
	if loss > m.inventory[g] {
		loss = m.inventory[g]
	}
	m.inventory[g] -= loss

	m.bus.Emit(events.Event{
		Tick: m.tick, Day: m.day, Category: "decay",
		Description: fmt.Sprintf("%d %s spoiled overnight", loss, g.Name()),
		Meta:        map[string]any{"good": g.Name(), "rate": rate, "remaining": m.inventory[g]},
	})
}

// discoverPrice recomputes the reference price from the day's clearing
// statistics, then applies the hard daily movement cap and the floor and
// ceiling clamps. Prices never rise without confirmed demand.
func (m *Market) discoverPrice(g economy.Good) {
	c := m.cfg[g]
	st := m.stats[g]
	old := m.price[g]
	_, upper := m.bands(g)
	oversupplied := float64(m.inventory[g]) > upper

	next := old
	avgClearing := 0.0

	if st.UnitsCleared >= m.params.MinTradesForDiscovery {
		// Anchor toward the price buyers actually paid, overflow
		// liquidations included.
		avgClearing = st.ValueCleared / float64(st.UnitsCleared)
		next = old + (avgClearing-old)*m.params.AnchorStrength

		// Bounded nudge from inventory deviation off target.
		dev := float64(c.Target-m.inventory[g]) / float64(c.Target)
		nudge := clamp(dev*m.params.DeviationGain, -m.params.MaxDeviationNudge, m.params.MaxDeviationNudge)
		next *= 1 + nudge

		// Anti-drift: stock grew while already oversupplied.
		if oversupplied && m.inventory[g] > m.prevInv[g] {
			next *= 1 - m.params.GrowthPenalty
		}

		// The reference may never run ahead of what buyers paid.
		if limit := avgClearing * (1 + m.params.DiscoveryPremiumCap); next > limit {
			next = limit
		}
	} else if oversupplied {
		next = old * (1 - m.params.NoDemandDrop)
	}

	// Hard daily movement cap, then the configured bounds.
	next = clamp(next, old*(1-m.params.DailyPriceCap), old*(1+m.params.DailyPriceCap))
	next = clamp(next, c.Floor, c.Ceiling)

	if next != old {
		m.bus.Emit(events.Event{
			Tick: m.tick, Day: m.day, Category: "price",
			Description: fmt.Sprintf("%s reference price %.3f -> %.3f", g.Name(), old, next),
			Meta: map[string]any{
				"good":         g.Name(),
				"avg_clearing": avgClearing,
				"cleared":      st.UnitsCleared,
				"overflow":     st.OverflowUnits,
				"inventory":    m.inventory[g],
			},
		})
	}
	m.price[g] = next
}

// updateGates advances the hysteresis pair for a good. Transitions are
// edge-triggered on band crossings so a stock hovering at a threshold does
// not flap the gates (or the log) every day.
func (m *Market) updateGates(g economy.Good) {
	c := m.cfg[g]
	gate := m.gates[g]
	_, upper := m.bands(g)
	inv := float64(m.inventory[g])

	prevSell, prevProduce := gate.CanSell, gate.CanProduce

	// Selling shuts off above the upper band and reopens only once stock
	// is back at or below target.
	if gate.CanSell && inv > upper {
		gate.CanSell = false
	} else if !gate.CanSell && m.inventory[g] <= c.Target {
		gate.CanSell = true
	}

	// Production shuts off near saturation and reopens below the upper
	// band.
	if gate.CanProduce && float64(m.inventory[g]) >= 0.95*float64(c.Capacity) {
		gate.CanProduce = false
	} else if !gate.CanProduce && inv < upper {
		gate.CanProduce = true
	}

	if gate.CanSell != prevSell || gate.CanProduce != prevProduce {
		m.bus.Emit(events.Event{
			Tick: m.tick, Day: m.day, Category: "gate",
			Description: fmt.Sprintf("%s gates changed: sell=%t produce=%t", g.Name(), gate.CanSell, gate.CanProduce),
			Meta: map[string]any{
				"good":      g.Name(),
				"inventory": m.inventory[g],
				"enforced":  c.Gate.Enforce,
			},
		})
	}
}
