package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okellen/breadbasket/internal/economy"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	goods, err := cfg.GoodConfigs()
	if err != nil {
		t.Fatalf("resolve goods: %v", err)
	}
	if len(goods) != int(economy.GoodCount) {
		t.Fatalf("goods = %d, want %d", len(goods), economy.GoodCount)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != Default().Seed {
		t.Fatalf("seed = %d, want default", cfg.Seed)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := `
seed: 123
ticks_per_day: 480
market:
  max_units_per_call: 25
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 123 || cfg.TicksPerDay != 480 {
		t.Fatalf("overrides not applied: seed=%d ticks=%d", cfg.Seed, cfg.TicksPerDay)
	}
	if cfg.Market.MaxUnitsPerCall != 25 {
		t.Fatalf("nested override not applied: %d", cfg.Market.MaxUnitsPerCall)
	}
	// Untouched fields keep their defaults.
	if cfg.Market.AnchorStrength != Default().Market.AnchorStrength {
		t.Fatalf("unset field lost its default")
	}
	if cfg.APIPort != Default().APIPort {
		t.Fatalf("api port lost its default")
	}
}

func TestLoadRejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"capacity below target", `
goods:
  wheat:
    target: 50
    capacity: 10
    floor: 1
    ceiling: 2
    band_width: 0.15
`},
		{"unknown good", `
goods:
  barley:
    target: 10
    capacity: 20
    floor: 1
    ceiling: 2
    band_width: 0.15
`},
		{"zero floor", `
goods:
  wheat:
    target: 10
    capacity: 20
    floor: 0
    ceiling: 2
    band_width: 0.15
`},
		{"zero season length", `
shocks:
  season_days: 0
`},
		{"demand probability above one", `
shocks:
  demand_prob: 1.5
`},
		{"seed factor above one", `
shocks:
  seed_factor: 2
`},
		{"seed duration inverted", `
shocks:
  seed_days_min: 5
  seed_days_max: 2
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tc.body), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("bad config accepted")
			}
		})
	}
}
