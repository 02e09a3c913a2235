// Pricing engine: pure functions from inventory position to bid price and
// tradable quantity. The reference price moves only in the daily adjuster;
// everything here is an instantaneous view derived from it.
package market

import (
	"math"

	"github.com/okellen/breadbasket/internal/economy"
)

// bands returns the inventory tolerance band for a good as floats.
func (m *Market) bands(g economy.Good) (lower, upper float64) {
	c := m.cfg[g]
	lower = float64(c.Target) * (1 - c.BandWidth)
	upper = float64(c.Target) * (1 + c.BandWidth)
	return
}

// BidPrice returns the price the market pays for the next unit of a good
// right now. Shortage earns a premium over the reference price (capped at
// 50% below the lower band so scarcity cannot spiral), oversupply earns a
// three-segment piecewise discount that steepens with excess but never goes
// negative. The result is clamped to [floor, ceiling].
func (m *Market) BidPrice(g economy.Good) float64 {
	c, ok := m.cfg[g]
	if !ok {
		return 0
	}
	lower, upper := m.bands(g)
	inv := float64(m.inventory[g])

	var mult float64
	switch {
	case inv < lower:
		// Shortage premium: ×1.0 at the band edge rising linearly to
		// MaxPremium at 50% below the band, flat beyond.
		depth := (lower - inv) / lower
		if depth > 0.5 {
			depth = 0.5
		}
		mult = 1.0 + (c.MaxPremium-1.0)*(depth/0.5)
	case inv <= upper:
		// Gentle in-band slope from par down to a mild discount.
		t := (inv - lower) / (upper - lower)
		mult = 1.0 + (c.InBandDiscount-1.0)*t
	default:
		// Oversupply: excess measured as a fraction of the upper band.
		excess := (inv - upper) / upper
		switch {
		case excess <= c.MidExcess:
			t := excess / c.MidExcess
			mult = c.InBandDiscount + (c.MidDiscount-c.InBandDiscount)*t
		case excess <= c.DeepExcess:
			t := (excess - c.MidExcess) / (c.DeepExcess - c.MidExcess)
			mult = c.MidDiscount + (c.DeepDiscount-c.MidDiscount)*t
		case excess <= 2*c.DeepExcess:
			t := (excess - c.DeepExcess) / c.DeepExcess
			mult = c.DeepDiscount + (c.FloorDiscount-c.DeepDiscount)*t
		default:
			mult = c.FloorDiscount
		}
	}

	return clamp(m.price[g]*mult, c.Floor, c.Ceiling)
}

// MaxBuyQty returns how many units of a good the market is willing to take
// in one call. Below the upper band it is the full remaining capacity;
// above it the quantity tapers linearly toward TaperMinFraction of the
// remaining capacity (reached at DeepExcess over the band) but never hits
// zero while storage remains.
func (m *Market) MaxBuyQty(g economy.Good) int {
	c, ok := m.cfg[g]
	if !ok {
		return 0
	}
	rem := m.RemainingCapacity(g)
	if rem == 0 {
		return 0
	}
	_, upper := m.bands(g)
	inv := float64(m.inventory[g])
	if inv <= upper {
		return rem
	}

	excess := (inv - upper) / upper
	if excess > c.DeepExcess {
		excess = c.DeepExcess
	}
	t := excess / c.DeepExcess
	frac := 1.0 + (c.TaperMinFraction-1.0)*t
	qty := int(float64(rem) * frac)
	if qty < 1 {
		qty = 1
	}
	return qty
}

// DistressMultiplier returns the extra discount applied to units that would
// overflow capacity: base · exp(−steepness·(ratio−1)) with ratio the
// oversupply severity, floor-clamped. Stored units never pay this, only
// forced liquidation does, so dumping into a full market costs far more
// than selling into mere oversupply.
func (m *Market) DistressMultiplier(g economy.Good, inv, target int) float64 {
	c, ok := m.cfg[g]
	if !ok || target <= 0 {
		return 1
	}
	ratio := float64(inv) / float64(target)
	if ratio < 1 {
		ratio = 1
	}
	mult := c.DistressBase * math.Exp(-c.DistressSteepness*(ratio-1))
	if mult < c.DistressFloor {
		mult = c.DistressFloor
	}
	return mult
}
