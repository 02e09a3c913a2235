// Clearing engine: unit-by-unit trade execution. Every entry point reuses
// the same micro-fill primitive, which re-prices after each unit so a large
// offer walks the bid curve instead of clearing at a stale price.
package market

import (
	"fmt"
	"math"

	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/events"
)

// TradeOpts are the optional per-call trade terms.
type TradeOpts struct {
	// MinPrice is the seller's walk-away floor when the market is buying:
	// the fill stops as soon as the bid for the next stored unit drops
	// below it. Zero means no floor. Overflow units are exempt: forced
	// liquidation ignores the walk-away.
	MinPrice float64

	// MaxPrice is the buyer's walk-away ceiling when the market is
	// selling. Zero means no ceiling.
	MaxPrice float64

	// Survival marks a starvation purchase: exempt from the self-trade
	// guard and excluded from the day's clearing-price statistics.
	Survival bool
}

// BuyWheat clears a producer's wheat offer into the market. Returns units
// actually transacted, possibly zero.
func (m *Market) BuyWheat(from economy.Trader, qty int, opts TradeOpts) int {
	return m.clearBuy(economy.GoodWheat, from, qty, opts)
}

// BuyBread clears a baker's bread offer into the market.
func (m *Market) BuyBread(from economy.Trader, qty int, opts TradeOpts) int {
	return m.clearBuy(economy.GoodBread, from, qty, opts)
}

// SellBread sells bread from market stock to a consumer at the reference
// price. A counterparty that bakes bread may not buy it back unless the
// purchase is survival-flagged or the baker is profit-paused: that trade
// only launders inventory through the market.
func (m *Market) SellBread(to economy.Trader, qty int, opts TradeOpts) int {
	if bm, ok := to.(economy.BreadMaker); ok && bm.BakesBread() && !opts.Survival && !bm.ProfitPaused() {
		m.bus.Emit(events.Event{
			Tick:        m.tick,
			Day:         m.day,
			Category:    "error",
			Description: "self-trade rejected: bread producer buying back bread",
			Meta:        map[string]any{"counterparty": to.Name(), "qty": qty},
		})
		return 0
	}
	return m.sell(economy.GoodBread, to, qty, opts)
}

// SellSeeds sells seeds from market stock to a producer. The quantity made
// available is reduced by the active seed-availability factor before the
// buyer's wallet is ever consulted.
func (m *Market) SellSeeds(to economy.Trader, qty int, opts TradeOpts) int {
	if qty > 0 && m.seeds != nil {
		if factor := m.seeds.SeedSaleFactor(); factor < 1 {
			qty = int(math.Floor(float64(qty) * factor))
			if qty < 1 {
				qty = 1
			}
		}
	}
	return m.sell(economy.GoodSeeds, to, qty, opts)
}

// clearBuy is the micro-fill primitive for the market-buying direction.
// Units are processed one at a time: each is re-priced from current
// inventory, routed to storage or overflow, and paid for; the loop stops on
// the seller's walk-away floor or when the market cannot afford the next
// unit.
func (m *Market) clearBuy(g economy.Good, from economy.Trader, offered int, opts TradeOpts) int {
	c, ok := m.cfg[g]
	if !ok || offered <= 0 || from == nil {
		m.bus.Emit(events.Event{
			Tick: m.tick, Day: m.day, Category: "error",
			Description: "invalid clearing request rejected",
			Meta:        map[string]any{"good": g.Name(), "offered": offered},
		})
		return 0
	}
	st := m.stats[g]
	st.UnitsRequested += offered

	if c.Gate.Enforce && !m.gates[g].CanSell {
		m.bus.Emit(events.Event{
			Tick: m.tick, Day: m.day, Category: "gate",
			Description: fmt.Sprintf("sell gate closed for %s, offer refused", g.Name()),
			Meta:        map[string]any{"counterparty": from.Name(), "offered": offered},
		})
		return 0
	}

	limit := offered
	if h := from.Holding(g); h < limit {
		limit = h
	}
	if limit > m.params.MaxUnitsPerCall {
		limit = m.params.MaxUnitsPerCall
	}

	bidBefore := m.BidPrice(g)
	cleared := 0
	overflowed := 0
	value := 0.0
	stop := "filled"

	for cleared < limit {
		bid := m.BidPrice(g)
		overflow := m.inventory[g] >= c.Capacity

		price := bid
		if overflow {
			price = bid * m.DistressMultiplier(g, m.inventory[g], c.Target)
		} else if opts.MinPrice > 0 && bid < opts.MinPrice {
			stop = "walk-away"
			break
		}

		if m.money < price {
			stop = "market-broke"
			break
		}

		// Transfer one unit of good for money. Overflow units are paid
		// for but never stored.
		from.AdjustHolding(g, -1)
		m.money -= price
		from.Credit(price)
		if overflow {
			overflowed++
		} else {
			m.inventory[g]++
		}

		cleared++
		value += price
	}

	if !opts.Survival && cleared > 0 {
		st.UnitsCleared += cleared
		st.ValueCleared += value
		st.OverflowUnits += overflowed
	}

	avg := 0.0
	if cleared > 0 {
		avg = value / float64(cleared)
	}
	m.bus.Emit(events.Event{
		Tick: m.tick, Day: m.day, Category: "trade",
		Description: fmt.Sprintf("market cleared %d/%d %s from %s", cleared, offered, g.Name(), from.Name()),
		Meta: map[string]any{
			"good":       g.Name(),
			"offered":    offered,
			"cleared":    cleared,
			"overflow":   overflowed,
			"avg_price":  avg,
			"bid_before": bidBefore,
			"bid_after":  m.BidPrice(g),
			"stop":       stop,
			"survival":   opts.Survival,
		},
	})
	return cleared
}

// sell moves units from market stock to a buyer at the published reference
// price. The reference price does not move intraday, so the fill only stops
// on empty stock, an empty wallet, or the buyer's walk-away ceiling.
func (m *Market) sell(g economy.Good, to economy.Trader, requested int, opts TradeOpts) int {
	if _, ok := m.cfg[g]; !ok || requested <= 0 || to == nil {
		m.bus.Emit(events.Event{
			Tick: m.tick, Day: m.day, Category: "error",
			Description: "invalid purchase request rejected",
			Meta:        map[string]any{"good": g.Name(), "requested": requested},
		})
		return 0
	}
	st := m.stats[g]
	st.UnitsRequested += requested

	price := m.price[g]
	stop := "filled"
	sold := 0

	if opts.MaxPrice > 0 && price > opts.MaxPrice {
		stop = "walk-away"
	} else {
		limit := requested
		if m.inventory[g] < limit {
			limit = m.inventory[g]
			stop = "out-of-stock"
		}
		if limit > m.params.MaxUnitsPerCall {
			limit = m.params.MaxUnitsPerCall
			stop = "call-limit"
		}
		for sold < limit {
			if !to.Debit(price) {
				stop = "buyer-broke"
				break
			}
			m.money += price
			m.inventory[g]--
			to.AdjustHolding(g, 1)
			sold++
		}
	}

	st.UnitsSold += sold
	m.bus.Emit(events.Event{
		Tick: m.tick, Day: m.day, Category: "trade",
		Description: fmt.Sprintf("market sold %d/%d %s to %s", sold, requested, g.Name(), to.Name()),
		Meta: map[string]any{
			"good":      g.Name(),
			"requested": requested,
			"sold":      sold,
			"price":     price,
			"stop":      stop,
			"survival":  opts.Survival,
		},
	})
	return sold
}
