package market

import (
	"math"
	"testing"

	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
)

func testMarket(t *testing.T) *Market {
	t.Helper()
	return New(DefaultGoodConfigs(), DefaultParams(), entropy.NewSource(1), events.NewBus(64))
}

func testMarketWithParams(t *testing.T, p Params) *Market {
	t.Helper()
	return New(DefaultGoodConfigs(), p, entropy.NewSource(1), events.NewBus(64))
}

func TestBidPriceDeepShortagePremium(t *testing.T) {
	m := testMarket(t)
	m.inventory[economy.GoodWheat] = 0
	m.price[economy.GoodWheat] = 1.00

	got := m.BidPrice(economy.GoodWheat)
	want := 1.00 * m.cfg[economy.GoodWheat].MaxPremium
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("empty-stock bid = %v, want %v", got, want)
	}

	if qty := m.MaxBuyQty(economy.GoodWheat); qty != m.cfg[economy.GoodWheat].Capacity {
		t.Fatalf("empty-stock max buy qty = %d, want full capacity %d", qty, m.cfg[economy.GoodWheat].Capacity)
	}
}

func TestBidPriceNonIncreasingAboveLowerBand(t *testing.T) {
	m := testMarket(t)
	for _, g := range economy.Goods() {
		lower, _ := m.bands(g)
		prev := math.Inf(1)
		for inv := int(lower); inv <= m.cfg[g].Capacity; inv++ {
			m.inventory[g] = inv
			bid := m.BidPrice(g)
			if bid > prev+1e-9 {
				t.Fatalf("%s: bid increased with inventory: inv=%d bid=%v prev=%v", g.Name(), inv, bid, prev)
			}
			prev = bid
		}
	}
}

func TestBidPriceStaysWithinBounds(t *testing.T) {
	m := testMarket(t)
	for _, g := range economy.Goods() {
		c := m.cfg[g]
		for inv := 0; inv <= c.Capacity; inv++ {
			m.inventory[g] = inv
			bid := m.BidPrice(g)
			if bid < c.Floor || bid > c.Ceiling {
				t.Fatalf("%s: bid %v outside [%v, %v] at inv=%d", g.Name(), bid, c.Floor, c.Ceiling, inv)
			}
		}
	}
}

func TestMaxBuyQtyTapersButNeverCloses(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodWheat
	c := m.cfg[g]
	_, upper := m.bands(g)

	// Below the upper band the full remaining capacity is tradable.
	m.inventory[g] = c.Target
	if qty := m.MaxBuyQty(g); qty != c.Capacity-c.Target {
		t.Fatalf("in-band qty = %d, want remaining capacity %d", qty, c.Capacity-c.Target)
	}

	// Above the band the quantity tapers but stays positive while storage
	// remains.
	for inv := int(upper) + 1; inv < c.Capacity; inv++ {
		m.inventory[g] = inv
		qty := m.MaxBuyQty(g)
		if qty < 1 {
			t.Fatalf("taper closed the market at inv=%d", inv)
		}
		if qty > c.Capacity-inv {
			t.Fatalf("taper exceeds remaining capacity at inv=%d: qty=%d", inv, qty)
		}
	}

	// Only a full store trades zero.
	m.inventory[g] = c.Capacity
	if qty := m.MaxBuyQty(g); qty != 0 {
		t.Fatalf("full-store qty = %d, want 0", qty)
	}
}

func TestDistressMultiplier(t *testing.T) {
	m := testMarket(t)
	g := economy.GoodBread
	c := m.cfg[g]

	// At or below target the multiplier sits at its base.
	if got := m.DistressMultiplier(g, c.Target, c.Target); math.Abs(got-c.DistressBase) > 1e-9 {
		t.Fatalf("at-target multiplier = %v, want base %v", got, c.DistressBase)
	}
	if got := m.DistressMultiplier(g, c.Target/2, c.Target); math.Abs(got-c.DistressBase) > 1e-9 {
		t.Fatalf("below-target multiplier = %v, want base %v", got, c.DistressBase)
	}

	// Strictly decreasing with oversupply until the floor.
	prev := math.Inf(1)
	for inv := c.Target; inv <= c.Capacity*2; inv += 5 {
		got := m.DistressMultiplier(g, inv, c.Target)
		if got > prev+1e-12 {
			t.Fatalf("multiplier increased at inv=%d: %v > %v", inv, got, prev)
		}
		if got < c.DistressFloor {
			t.Fatalf("multiplier %v broke floor %v at inv=%d", got, c.DistressFloor, inv)
		}
		prev = got
	}

	// Far oversupply clamps to the floor.
	if got := m.DistressMultiplier(g, c.Capacity*10, c.Target); got != c.DistressFloor {
		t.Fatalf("deep oversupply multiplier = %v, want floor %v", got, c.DistressFloor)
	}
}
