// Per-good configuration tables and global tuning knobs. Loaded once at
// construction; behavior toggles are plain lookups by good, no dispatch.
package market

import "github.com/okellen/breadbasket/internal/economy"

// DecayConfig controls daily spoilage for one good.
type DecayConfig struct {
	Enabled bool    `yaml:"enabled"`
	MinRate float64 `yaml:"min_rate"` // daily fractional loss, lower bound
	MaxRate float64 `yaml:"max_rate"` // daily fractional loss, upper bound
	Market  bool    `yaml:"market"`   // decay applies to market-held stock
}

// GateConfig controls the producer hysteresis gates. The gate state machine
// always runs; Enforce decides whether CanProducerSell/CanProducerProduce
// report it or always permit. Enforcement is off by default: hard gates were
// superseded by smooth bid tapering, but the mechanism stays reachable.
type GateConfig struct {
	Enforce bool `yaml:"enforce"`
}

// GoodConfig is the per-good tuning table.
type GoodConfig struct {
	Target   int `yaml:"target"`   // desired steady-state inventory
	Capacity int `yaml:"capacity"` // hard storage ceiling

	InitialPrice float64 `yaml:"initial_price"`
	Floor        float64 `yaml:"floor"`
	Ceiling      float64 `yaml:"ceiling"`

	// Band half-width as a fraction of target (0.15 → ±15%).
	BandWidth float64 `yaml:"band_width"`

	// Bid curve. MaxPremium is the multiplier at the deepest shortage
	// (reached at 50% below the lower band). The discount knots shape the
	// three segments above the band: InBandDiscount at the upper band edge,
	// MidDiscount at MidExcess above it, DeepDiscount at DeepExcess and
	// beyond.
	MaxPremium     float64 `yaml:"max_premium"`      // e.g. 1.10
	InBandDiscount float64 `yaml:"in_band_discount"` // e.g. 0.95
	MidDiscount    float64 `yaml:"mid_discount"`     // e.g. 0.80
	DeepDiscount   float64 `yaml:"deep_discount"`    // e.g. 0.55
	FloorDiscount  float64 `yaml:"floor_discount"`   // e.g. 0.40
	MidExcess      float64 `yaml:"mid_excess"`       // e.g. 0.25 (+25% over band)
	DeepExcess     float64 `yaml:"deep_excess"`      // e.g. 0.50

	// Quantity taper above the upper band: fraction of remaining capacity
	// still tradable at DeepExcess and beyond. Never a hard zero.
	TaperMinFraction float64 `yaml:"taper_min_fraction"` // e.g. 0.10

	// Distress pricing for overflow units.
	DistressBase      float64 `yaml:"distress_base"`      // e.g. 0.50
	DistressSteepness float64 `yaml:"distress_steepness"` // e.g. 2.0
	DistressFloor     float64 `yaml:"distress_floor"`     // e.g. 0.15

	Decay DecayConfig `yaml:"decay"`
	Gate  GateConfig  `yaml:"gate"`
}

// Params are the market-wide tuning knobs shared by all goods.
type Params struct {
	// Micro-fill ceiling per clearing call.
	MaxUnitsPerCall int `yaml:"max_units_per_call"`

	// Daily price discovery.
	MinTradesForDiscovery int     `yaml:"min_trades_for_discovery"`
	AnchorStrength        float64 `yaml:"anchor_strength"`       // lerp toward avg clearing price
	DeviationGain         float64 `yaml:"deviation_gain"`        // inventory-deviation nudge gain
	MaxDeviationNudge     float64 `yaml:"max_deviation_nudge"`   // bound on the nudge, e.g. 0.02
	GrowthPenalty         float64 `yaml:"growth_penalty"`        // extra drop when stock grew while oversupplied
	DiscoveryPremiumCap   float64 `yaml:"discovery_premium_cap"` // price capped at avg*(1+cap)
	NoDemandDrop          float64 `yaml:"no_demand_drop"`        // flat drop on quiet oversupplied days
	DailyPriceCap         float64 `yaml:"daily_price_cap"`       // hard per-day movement cap

	// Decay is skipped entirely during the first StabilizationDays.
	StabilizationDays int `yaml:"stabilization_days"`

	// Starting cash for the market's own wallet.
	InitialMoney float64 `yaml:"initial_money"`
}

// DefaultParams returns the market-wide defaults.
func DefaultParams() Params {
	return Params{
		MaxUnitsPerCall:       50,
		MinTradesForDiscovery: 3,
		AnchorStrength:        0.35,
		DeviationGain:         0.04,
		MaxDeviationNudge:     0.02,
		GrowthPenalty:         0.015,
		DiscoveryPremiumCap:   0.10,
		NoDemandDrop:          0.03,
		DailyPriceCap:         0.05,
		StabilizationDays:     10,
		InitialMoney:          500,
	}
}

// DefaultGoodConfigs returns the per-good defaults. Wheat is the storable
// staple (no decay), bread the perishable, seeds the input good the market
// mostly sells.
func DefaultGoodConfigs() map[economy.Good]GoodConfig {
	base := GoodConfig{
		BandWidth:        0.15,
		MaxPremium:       1.10,
		InBandDiscount:   0.95,
		MidDiscount:      0.80,
		DeepDiscount:     0.55,
		FloorDiscount:    0.40,
		MidExcess:        0.25,
		DeepExcess:       0.50,
		TaperMinFraction: 0.10,

		DistressBase:      0.50,
		DistressSteepness: 2.0,
		DistressFloor:     0.15,
	}

	wheat := base
	wheat.Target = 45
	wheat.Capacity = 120
	wheat.InitialPrice = 1.00
	wheat.Floor = 1.00
	wheat.Ceiling = 4.00
	wheat.Decay = DecayConfig{Enabled: false}

	bread := base
	bread.Target = 50
	bread.Capacity = 200
	bread.InitialPrice = 2.50
	bread.Floor = 1.50
	bread.Ceiling = 8.00
	bread.Decay = DecayConfig{Enabled: true, MinRate: 0.005, MaxRate: 0.015, Market: true}

	seeds := base
	seeds.Target = 60
	seeds.Capacity = 150
	seeds.InitialPrice = 0.80
	seeds.Floor = 0.50
	seeds.Ceiling = 2.50
	seeds.Decay = DecayConfig{Enabled: false}

	return map[economy.Good]GoodConfig{
		economy.GoodWheat: wheat,
		economy.GoodBread: bread,
		economy.GoodSeeds: seeds,
	}
}
