// Package config loads the simulation tuning file. Compiled-in defaults run
// the stock scenario; a YAML file overrides them. Struct fields merge over
// the defaults; a per-good block replaces that good's table wholly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okellen/breadbasket/internal/economy"
	"github.com/okellen/breadbasket/internal/market"
	"github.com/okellen/breadbasket/internal/shocks"
)

// Config is the complete run configuration.
type Config struct {
	Seed           int64   `yaml:"seed"`
	TicksPerDay    uint64  `yaml:"ticks_per_day"`
	TickIntervalMs int     `yaml:"tick_interval_ms"`
	Speed          float64 `yaml:"speed"`
	DBPath         string  `yaml:"db_path"`
	APIPort        int     `yaml:"api_port"`
	EventBuffer    int     `yaml:"event_buffer"`

	Market market.Params                `yaml:"market"`
	Goods  map[string]market.GoodConfig `yaml:"goods"`
	Shocks shocks.Config                `yaml:"shocks"`
}

// Default returns the stock configuration.
func Default() Config {
	goods := make(map[string]market.GoodConfig)
	for g, c := range market.DefaultGoodConfigs() {
		goods[g.Name()] = c
	}
	return Config{
		Seed:           42,
		TicksPerDay:    240,
		TickIntervalMs: 250,
		Speed:          1.0,
		DBPath:         "data/breadbasket.db",
		APIPort:        8080,
		EventBuffer:    500,
		Market:         market.DefaultParams(),
		Goods:          goods,
		Shocks:         shocks.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GoodConfigs resolves the name-keyed tables to good identifiers.
func (c Config) GoodConfigs() (map[economy.Good]market.GoodConfig, error) {
	out := make(map[economy.Good]market.GoodConfig, len(c.Goods))
	for name, gc := range c.Goods {
		g, err := economy.ParseGood(name)
		if err != nil {
			return nil, err
		}
		out[g] = gc
	}
	return out, nil
}

func (c Config) validate() error {
	if c.TicksPerDay == 0 {
		return fmt.Errorf("ticks_per_day must be positive")
	}
	for name, gc := range c.Goods {
		if _, err := economy.ParseGood(name); err != nil {
			return err
		}
		if gc.Target <= 0 || gc.Capacity <= 0 {
			return fmt.Errorf("%s: target and capacity must be positive", name)
		}
		if gc.Capacity < gc.Target {
			return fmt.Errorf("%s: capacity %d below target %d", name, gc.Capacity, gc.Target)
		}
		if gc.Floor <= 0 || gc.Ceiling < gc.Floor {
			return fmt.Errorf("%s: need 0 < floor <= ceiling", name)
		}
		if gc.BandWidth <= 0 || gc.BandWidth >= 1 {
			return fmt.Errorf("%s: band_width must be in (0, 1)", name)
		}
	}

	s := c.Shocks
	if s.SeasonDays <= 0 {
		return fmt.Errorf("shocks: season_days must be positive")
	}
	if s.YieldMin <= 0 || s.YieldMax < s.YieldMin {
		return fmt.Errorf("shocks: need 0 < yield_min <= yield_max")
	}
	if s.DemandProb < 0 || s.DemandProb > 1 {
		return fmt.Errorf("shocks: demand_prob must be in [0, 1]")
	}
	if s.SeedProb < 0 || s.SeedProb > 1 {
		return fmt.Errorf("shocks: seed_prob must be in [0, 1]")
	}
	if s.SeedFactor <= 0 || s.SeedFactor > 1 {
		return fmt.Errorf("shocks: seed_factor must be in (0, 1]")
	}
	if s.SeedDaysMin < 1 || s.SeedDaysMax < s.SeedDaysMin {
		return fmt.Errorf("shocks: need 1 <= seed_days_min <= seed_days_max")
	}
	return nil
}
