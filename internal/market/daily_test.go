package market

import (
	"math"
	"testing"

	"github.com/okellen/breadbasket/internal/economy"
)

func TestDailyPriceCapLimitsMovement(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodWheat
	old := m.price[g]

	// A day of absurdly expensive clearing cannot move the reference more
	// than the hard cap.
	m.stats[g].UnitsCleared = 10
	m.stats[g].ValueCleared = 100 // avg 10.0 against a 1.00 reference
	m.inventory[g] = 0

	m.OnDayChanged(1)

	want := old * (1 + m.params.DailyPriceCap)
	if math.Abs(m.price[g]-want) > 1e-9 {
		t.Fatalf("price = %v, want capped %v", m.price[g], want)
	}
}

func TestNoDemandNeverRaisesPrice(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodWheat
	c := m.cfg[g]
	m.price[g] = 1.20
	m.inventory[g] = 100 // far above the upper band

	prev := m.price[g]
	for day := 1; day <= 3; day++ {
		m.OnDayChanged(day)
		got := m.price[g]
		if got > prev {
			t.Fatalf("day %d: price rose without demand: %v -> %v", day, prev, got)
		}
		if got >= prev && got > c.Floor {
			t.Fatalf("day %d: oversupplied quiet day did not cut price: %v", day, got)
		}
		if got < c.Floor {
			t.Fatalf("day %d: price %v broke floor %v", day, got, c.Floor)
		}
		prev = got
	}
}

func TestQuietDayInBandHoldsPrice(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodWheat
	m.price[g] = 1.30
	m.inventory[g] = m.cfg[g].Target

	m.OnDayChanged(1)
	if m.price[g] != 1.30 {
		t.Fatalf("quiet in-band day moved price: %v", m.price[g])
	}
}

func TestDiscoveryCapsAtAverageClearingPremium(t *testing.T) {
	p := DefaultParams()
	p.DiscoveryPremiumCap = 0 // reference may never exceed what buyers paid
	m := testMarketWithParams(t, p)
	g := economy.GoodBread
	m.price[g] = 2.50
	m.inventory[g] = 10 // deep shortage drives the nudge upward

	avg := 2.55
	m.stats[g].UnitsCleared = 5
	m.stats[g].ValueCleared = avg * 5

	m.OnDayChanged(1)
	if m.price[g] > avg+1e-9 {
		t.Fatalf("price %v ran ahead of avg clearing price %v", m.price[g], avg)
	}
}

func TestOversupplyGrowthGetsExtraPressure(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodBread
	m.price[g] = 2.50

	// Stock grew past the band since yesterday while trades cleared at
	// exactly the old reference: the growth penalty must still pull the
	// price down.
	m.prevInv[g] = 60
	m.inventory[g] = 80
	m.stats[g].UnitsCleared = 5
	m.stats[g].ValueCleared = 2.50 * 5

	m.OnDayChanged(1)
	if m.price[g] >= 2.50 {
		t.Fatalf("price %v did not drop despite oversupply growth", m.price[g])
	}
	if m.price[g] < 2.50*(1-m.params.DailyPriceCap) {
		t.Fatalf("price %v broke the daily cap", m.price[g])
	}
}

func TestDecayRules(t *testing.T) {
	cases := []struct {
		name      string
		good      economy.Good
		inventory int
		day       int
		decays    bool
	}{
		{"bread above band after stabilization", economy.GoodBread, 200, 11, true},
		{"bread above band during stabilization", economy.GoodBread, 200, 5, false},
		{"bread inside band", economy.GoodBread, 55, 11, false},
		{"wheat decay disabled", economy.GoodWheat, 120, 11, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := testMarket(t)
			m.inventory[tc.good] = tc.inventory

			m.OnDayChanged(tc.day)

			got := m.inventory[tc.good]
			if got < 0 {
				t.Fatalf("inventory went negative: %d", got)
			}
			if tc.decays && got >= tc.inventory {
				t.Fatalf("inventory did not decay: %d", got)
			}
			if !tc.decays && got != tc.inventory {
				t.Fatalf("inventory changed unexpectedly: %d -> %d", tc.inventory, got)
			}
		})
	}
}

func TestDailyAccumulatorsReset(t *testing.T) {
	m := testMarket(t)
	seller := economy.NewActor("seller", 0)
	seller.AdjustHolding(economy.GoodWheat, 5)
	m.BuyWheat(seller, 5, TradeOpts{})

	if m.stats[economy.GoodWheat].UnitsCleared == 0 {
		t.Fatalf("expected clearing stats before day change")
	}

	m.OnDayChanged(1)

	for _, g := range economy.Goods() {
		if st := *m.stats[g]; st != (dayStats{}) {
			t.Fatalf("%s stats not reset: %+v", g.Name(), st)
		}
	}
}

func TestHysteresisGatesEdgeTriggered(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodWheat
	c := m.cfg[g]

	// Crossing above the upper band closes the sell gate.
	m.inventory[g] = 100
	m.updateGates(g)
	if m.gates[g].CanSell {
		t.Fatalf("sell gate open above the band")
	}

	// Hovering between target and band does not reopen it.
	m.inventory[g] = c.Target + 3
	m.updateGates(g)
	if m.gates[g].CanSell {
		t.Fatalf("sell gate reopened before stock returned to target")
	}

	// Back at target it reopens.
	m.inventory[g] = c.Target
	m.updateGates(g)
	if !m.gates[g].CanSell {
		t.Fatalf("sell gate closed at target")
	}

	// With enforcement off (the default) the public API always permits.
	m.inventory[g] = 100
	m.updateGates(g)
	if !m.CanProducerSell(g) {
		t.Fatalf("unenforced gate blocked a producer")
	}

	// With enforcement on it reports the gate.
	cfg := m.cfg[g]
	cfg.Gate.Enforce = true
	m.cfg[g] = cfg
	if m.CanProducerSell(g) {
		t.Fatalf("enforced closed gate permitted a producer")
	}
}

func TestRestoreStateClampsToLegalRanges(t *testing.T) {
	m := testMarket(t)
	m.RestoreState(7, 250,
		map[string]int{"wheat": 9999, "bread": -5},
		map[string]float64{"wheat": 99.0, "bread": 0.01},
	)

	if m.Day() != 7 || m.Money() != 250 {
		t.Fatalf("day/money not restored: day=%d money=%v", m.Day(), m.Money())
	}
	if got := m.Inventory(economy.GoodWheat); got != m.cfg[economy.GoodWheat].Capacity {
		t.Fatalf("wheat inventory = %d, want clamped to capacity", got)
	}
	if got := m.Inventory(economy.GoodBread); got != 0 {
		t.Fatalf("bread inventory = %d, want clamped to 0", got)
	}
	if got := m.Price(economy.GoodWheat); got != m.cfg[economy.GoodWheat].Ceiling {
		t.Fatalf("wheat price = %v, want clamped to ceiling", got)
	}
	if got := m.Price(economy.GoodBread); got != m.cfg[economy.GoodBread].Floor {
		t.Fatalf("bread price = %v, want clamped to floor", got)
	}
}
