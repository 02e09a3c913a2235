// Package persistence provides SQLite-based storage for daily price history,
// the event log, and run-resume state.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/okellen/breadbasket/internal/events"
	"github.com/okellen/breadbasket/internal/market"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS day_stats (
		id TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		good TEXT NOT NULL,
		price REAL NOT NULL,
		inventory INTEGER NOT NULL,
		units_cleared INTEGER NOT NULL,
		units_sold INTEGER NOT NULL,
		overflow_units INTEGER NOT NULL,
		value_cleared REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_day_stats_day ON day_stats(day);
	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveDay records one row per good for a closed day.
func (db *DB) SaveDay(day int, snap market.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, gs := range snap.Goods {
		_, err := tx.Exec(
			`INSERT INTO day_stats (id, day, good, price, inventory, units_cleared, units_sold, overflow_units, value_cleared)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), day, gs.Good, gs.Price, gs.Inventory,
			gs.UnitsCleared, gs.UnitsSold, gs.OverflowUnits, gs.ValueCleared,
		)
		if err != nil {
			return fmt.Errorf("insert day_stats: %w", err)
		}
	}

	return tx.Commit()
}

// SaveEvent appends one event row. Intended as a bus sink.
func (db *DB) SaveEvent(e events.Event) error {
	var meta []byte
	if e.Meta != nil {
		meta, _ = json.Marshal(e.Meta)
	}
	_, err := db.conn.Exec(
		`INSERT INTO events (id, tick, day, category, description, meta_json) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tick, e.Day, e.Category, e.Description, string(meta),
	)
	return err
}

// SaveState stores the resume snapshot: tick, day, money, inventories, and
// reference prices.
func (db *DB) SaveState(tick uint64, snap market.Snapshot) error {
	inv := make(map[string]int, len(snap.Goods))
	prices := make(map[string]float64, len(snap.Goods))
	for _, gs := range snap.Goods {
		inv[gs.Good] = gs.Inventory
		prices[gs.Good] = gs.Price
	}
	invJSON, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	priceJSON, err := json.Marshal(prices)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := map[string]string{
		"last_tick": strconv.FormatUint(tick, 10),
		"day":       strconv.Itoa(snap.Day),
		"money":     strconv.FormatFloat(snap.Money, 'f', -1, 64),
		"inventory": string(invJSON),
		"prices":    string(priceJSON),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			`INSERT INTO world_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("upsert world_meta: %w", err)
		}
	}

	return tx.Commit()
}

// State is a previously saved resume snapshot.
type State struct {
	Tick      uint64
	Day       int
	Money     float64
	Inventory map[string]int
	Prices    map[string]float64
}

// HasState reports whether a resume snapshot exists.
func (db *DB) HasState() bool {
	var v string
	err := db.conn.Get(&v, `SELECT value FROM world_meta WHERE key = 'last_tick'`)
	return err == nil
}

// LoadState reads the resume snapshot.
func (db *DB) LoadState() (State, error) {
	var st State

	get := func(key string) (string, error) {
		var v string
		err := db.conn.Get(&v, `SELECT value FROM world_meta WHERE key = ?`, key)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("missing meta key %q", key)
		}
		return v, err
	}

	tickStr, err := get("last_tick")
	if err != nil {
		return st, err
	}
	if st.Tick, err = strconv.ParseUint(tickStr, 10, 64); err != nil {
		return st, fmt.Errorf("parse last_tick: %w", err)
	}

	dayStr, err := get("day")
	if err != nil {
		return st, err
	}
	if st.Day, err = strconv.Atoi(dayStr); err != nil {
		return st, fmt.Errorf("parse day: %w", err)
	}

	moneyStr, err := get("money")
	if err != nil {
		return st, err
	}
	if st.Money, err = strconv.ParseFloat(moneyStr, 64); err != nil {
		return st, fmt.Errorf("parse money: %w", err)
	}

	invStr, err := get("inventory")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal([]byte(invStr), &st.Inventory); err != nil {
		return st, fmt.Errorf("parse inventory: %w", err)
	}

	priceStr, err := get("prices")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal([]byte(priceStr), &st.Prices); err != nil {
		return st, fmt.Errorf("parse prices: %w", err)
	}

	return st, nil
}

// PriceRow is one good's end-of-day record.
type PriceRow struct {
	Day           int     `db:"day" json:"day"`
	Good          string  `db:"good" json:"good"`
	Price         float64 `db:"price" json:"price"`
	Inventory     int     `db:"inventory" json:"inventory"`
	UnitsCleared  int     `db:"units_cleared" json:"units_cleared"`
	UnitsSold     int     `db:"units_sold" json:"units_sold"`
	OverflowUnits int     `db:"overflow_units" json:"overflow_units"`
	ValueCleared  float64 `db:"value_cleared" json:"value_cleared"`
}

// PriceHistory returns up to limit most recent rows for one good, oldest
// first.
func (db *DB) PriceHistory(good string, limit int) ([]PriceRow, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []PriceRow
	err := db.conn.Select(&rows,
		`SELECT day, good, price, inventory, units_cleared, units_sold, overflow_units, value_cleared
		 FROM day_stats WHERE good = ? ORDER BY day DESC LIMIT ?`,
		good, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	// Reverse to oldest-first for plotting.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
