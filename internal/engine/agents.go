// Demo agents. These are deliberately thin threshold evaluators around the
// market's public API, enough to exercise every trade entry point and keep
// a run alive, not a real behavior model.
package engine

import (
	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/market"
	"github.com/okellen/breadbasket/internal/shocks"
)

const (
	farmerSeedsPerPlot = 4
	farmerGrowDays     = 3
	farmerYieldPerSeed = 8
	farmerKeepWheat    = 2

	bakerWheatPerBatch = 2
	bakerBreadPerBatch = 3
	bakerMaxBatches    = 4
	bakerKeepBread     = 2
	bakerWheatStock    = 6

	consumerBreadBuffer = 2
	consumerDailyWage   = 3.0

	// Two missed meals in a row puts an agent in survival mode.
	starvingAfterDays = 2
)

// farmer grows wheat from purchased seeds and sells the crop to the market.
type farmer struct {
	*economy.Actor
	planted  bool
	sown     int
	growDays int
	hungry   int
}

func newFarmer(name string, balance float64) *farmer {
	return &farmer{Actor: economy.NewActor(name, balance)}
}

func (f *farmer) actDaily(m *market.Market, sh *shocks.Generator) {
	f.eat()

	if !f.planted {
		if have := f.Holding(economy.GoodSeeds); have < farmerSeedsPerPlot {
			m.SellSeeds(f, farmerSeedsPerPlot-have, market.TradeOpts{})
		}
		if have := f.Holding(economy.GoodSeeds); have > 0 {
			sow := have
			if sow > farmerSeedsPerPlot {
				sow = farmerSeedsPerPlot
			}
			f.AdjustHolding(economy.GoodSeeds, -sow)
			f.planted = true
			f.sown = sow
			f.growDays = 0
		}
		return
	}

	f.growDays++
	if f.growDays >= farmerGrowDays {
		crop := int(float64(f.sown*farmerYieldPerSeed) * sh.YieldMultiplier())
		if crop < 1 {
			crop = 1
		}
		f.AdjustHolding(economy.GoodWheat, crop)
		f.planted = false
	}
}

func (f *farmer) actHourly(m *market.Market) {
	surplus := f.Holding(economy.GoodWheat) - farmerKeepWheat
	if surplus > 0 && m.CanProducerSell(economy.GoodWheat) {
		// Walk away rather than sell deep under the published price.
		m.BuyWheat(f, surplus, market.TradeOpts{MinPrice: m.Price(economy.GoodWheat) * 0.6})
	}

	if deficit := consumerBreadBuffer - f.Holding(economy.GoodBread); deficit > 0 {
		m.SellBread(f, deficit, market.TradeOpts{Survival: f.hungry >= starvingAfterDays})
	}
}

func (f *farmer) eat() {
	if f.Holding(economy.GoodBread) > 0 {
		f.AdjustHolding(economy.GoodBread, -1)
		f.hungry = 0
		return
	}
	f.hungry++
}

// baker turns wheat bought off farmers into bread sold through the market.
// Its ProfitPaused flag flips when the market's bread bid compresses under
// the baker's input cost.
type baker struct {
	*economy.Actor
	hungry int
}

func newBaker(name string, balance float64) *baker {
	b := &baker{Actor: economy.NewActor(name, balance)}
	b.Baker = true
	return b
}

func (b *baker) actDaily(m *market.Market) {
	// Bake first, eat from the fresh batch.
	batches := b.Holding(economy.GoodWheat) / bakerWheatPerBatch
	if batches > bakerMaxBatches {
		batches = bakerMaxBatches
	}
	if batches > 0 {
		b.AdjustHolding(economy.GoodWheat, -batches*bakerWheatPerBatch)
		b.AdjustHolding(economy.GoodBread, batches*bakerBreadPerBatch)
	}

	if b.Holding(economy.GoodBread) > 0 {
		b.AdjustHolding(economy.GoodBread, -1)
		b.hungry = 0
		return
	}
	b.hungry++
	// Out of own bread. The market refuses a plain buy-back from a
	// bread producer; a starving or profit-paused baker is exempt.
	m.SellBread(b, 1, market.TradeOpts{Survival: b.hungry >= starvingAfterDays})
}

func (b *baker) actHourly(m *market.Market, farmers []*farmer) {
	// Source wheat bilaterally from farmers at the published price.
	// Direct producer deals never touch the clearing engine.
	price := m.Price(economy.GoodWheat)
	for _, f := range farmers {
		need := bakerWheatStock - b.Holding(economy.GoodWheat)
		if need <= 0 {
			break
		}
		avail := f.Holding(economy.GoodWheat) - farmerKeepWheat
		for i := 0; i < need && i < avail; i++ {
			if !b.Debit(price) {
				break
			}
			f.Credit(price)
			f.AdjustHolding(economy.GoodWheat, -1)
			b.AdjustHolding(economy.GoodWheat, 1)
		}
	}

	// Margin compression throttle: pause selling when the bread bid no
	// longer covers the wheat that went into it.
	breakeven := price * bakerWheatPerBatch / bakerBreadPerBatch
	b.Paused = m.BidPrice(economy.GoodBread) < breakeven

	surplus := b.Holding(economy.GoodBread) - bakerKeepBread
	if surplus > 0 && !b.Paused && m.CanProducerSell(economy.GoodBread) {
		m.BuyBread(b, surplus, market.TradeOpts{MinPrice: breakeven})
	}
}

// consumer eats bread and keeps a small buffer topped up from the market.
type consumer struct {
	*economy.Actor
	want   int
	hungry int
}

func newConsumer(name string, balance float64) *consumer {
	return &consumer{Actor: economy.NewActor(name, balance), want: consumerBreadBuffer}
}

func (c *consumer) actDaily(m *market.Market, extraFood int) {
	c.Credit(consumerDailyWage)
	c.want = consumerBreadBuffer + extraFood

	if c.Holding(economy.GoodBread) > 0 {
		c.AdjustHolding(economy.GoodBread, -1)
		c.hungry = 0
		return
	}
	c.hungry++
}

func (c *consumer) actHourly(m *market.Market) {
	if deficit := c.want - c.Holding(economy.GoodBread); deficit > 0 {
		m.SellBread(c, deficit, market.TradeOpts{Survival: c.hungry >= starvingAfterDays})
	}
}
