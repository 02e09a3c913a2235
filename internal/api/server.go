// Package api serves the read-only HTTP view of the running market:
// current snapshot, daily price history, and recent events. Observation
// only; nothing here can move state. Handlers run on the HTTP server's
// goroutines, so every read of live world state goes through Engine.View,
// which holds the engine mutex between ticks.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/okellen/breadbasket/internal/engine"
	"github.com/okellen/breadbasket/internal/events"
	"github.com/okellen/breadbasket/internal/market"
	"github.com/okellen/breadbasket/internal/persistence"
)

// Server serves the market state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	Eng  *engine.Engine
	Bus  *events.Bus
	DB   *persistence.DB
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var out map[string]any
	s.Eng.View(func() {
		out = map[string]any{
			"tick":         s.Eng.Tick,
			"day":          s.Eng.Day(),
			"sim_time":     s.Eng.SimTime(s.Eng.Tick),
			"speed":        s.Eng.Speed,
			"market_money": s.Sim.Market.Money(),
			"agent_wealth": s.Sim.Wealth(),
			"yield":        s.Sim.Shocks.YieldMultiplier(),
			"demand_shock": s.Sim.Shocks.DemandShockActive(),
			"seed_shock":   s.Sim.Shocks.SeedShockActive(),
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	var snap market.Snapshot
	s.Eng.View(func() {
		snap = s.Sim.Market.Snapshot()
	})
	writeJSON(w, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no database", http.StatusNotFound)
		return
	}
	good := r.URL.Query().Get("good")
	if good == "" {
		good = "wheat"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("days"))
	rows, err := s.DB.PriceHistory(good, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	if n <= 0 {
		n = 50
	}
	var recent []events.Event
	s.Eng.View(func() {
		recent = s.Bus.Recent(n)
	})
	writeJSON(w, recent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
