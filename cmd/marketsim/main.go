// Command marketsim runs the village commodity market simulation.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/okellen/breadbasket/internal/api"
	"github.com/okellen/breadbasket/internal/config"
	"github.com/okellen/breadbasket/internal/engine"
	"github.com/okellen/breadbasket/internal/entropy"
	"github.com/okellen/breadbasket/internal/events"
	"github.com/okellen/breadbasket/internal/market"
	"github.com/okellen/breadbasket/internal/persistence"
	"github.com/okellen/breadbasket/internal/shocks"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("breadbasket market simulation", "seed", cfg.Seed, "ticks_per_day", cfg.TicksPerDay)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Market core ───────────────────────────────────────────────────
	bus := events.NewBus(cfg.EventBuffer)
	bus.SetSink(func(e events.Event) {
		if err := db.SaveEvent(e); err != nil {
			slog.Debug("event sink failed", "error", err)
		}
	})

	goodCfgs, err := cfg.GoodConfigs()
	if err != nil {
		slog.Error("bad good config", "error", err)
		os.Exit(1)
	}
	rng := entropy.NewSource(cfg.Seed)
	mkt := market.New(goodCfgs, cfg.Market, rng, bus)
	gen := shocks.New(cfg.Shocks, cfg.Seed+1, rng, bus)
	mkt.SetSeedSupply(gen)

	// ── Engine & simulation ───────────────────────────────────────────
	eng := engine.NewEngine(cfg.TicksPerDay)
	eng.Interval = time.Duration(cfg.TickIntervalMs) * time.Millisecond
	eng.Speed = cfg.Speed

	sim := engine.NewSimulation(mkt, gen, bus, rng, cfg.TicksPerDay)
	sim.Recorder = db
	sim.Stop = eng.Stop

	if db.HasState() {
		state, err := db.LoadState()
		if err != nil {
			slog.Error("failed to load saved state", "error", err)
			os.Exit(1)
		}
		eng.Tick = state.Tick
		mkt.RestoreState(state.Day, state.Money, state.Inventory, state.Prices)
		slog.Info("resumed saved state", "tick", state.Tick, "day", state.Day)
	}

	eng.OnTick = sim.TickMinute
	eng.OnDay = sim.DayChanged

	// ── API ───────────────────────────────────────────────────────────
	srv := &api.Server{Sim: sim, Eng: eng, Bus: bus, DB: db, Port: cfg.APIPort}
	srv.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutdown signal received")
		eng.Stop()
	}()

	eng.Run()

	if err := db.SaveState(eng.Tick, mkt.Snapshot()); err != nil {
		slog.Error("failed to save final state", "error", err)
	}
	if sim.AuditErr != nil {
		slog.Error("run halted by failed audit", "error", sim.AuditErr)
		os.Exit(1)
	}
	slog.Info("run complete", "tick", eng.Tick, "day", eng.Day())
}
