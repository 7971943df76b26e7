// Package sqlite implements the liquidation store on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/OscarPele/market-analyzer/internal/domain"

	// registers the sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// LiquidationRepository stores liquidation events in SQLite
type LiquidationRepository struct {
	db *sql.DB
}

// NewLiquidationRepository opens (or creates) the database at dsn and
// creates the events table and its (symbol, ts) index if missing.
func NewLiquidationRepository(dsn string) (*LiquidationRepository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	repo := &LiquidationRepository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *LiquidationRepository) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS liquidation_event (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  symbol TEXT NOT NULL,
	  side TEXT,
	  price REAL NOT NULL,
	  qty REAL NOT NULL,
	  notional REAL NOT NULL,
	  ts INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_liq_symbol_ts ON liquidation_event (symbol, ts);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("creating liquidation_event table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle
func (r *LiquidationRepository) Close() error {
	return r.db.Close()
}

// InsertBatch appends a batch of events inside a single transaction
func (r *LiquidationRepository) InsertBatch(ctx context.Context, events []domain.LiquidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO liquidation_event (symbol, side, price, qty, notional, ts) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.Symbol, string(e.Side), e.Price, e.Qty, e.Notional, e.Ts); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting liquidation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// CountSince returns the number of events for symbol with Ts >= since
func (r *LiquidationRepository) CountSince(ctx context.Context, symbol string, since int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM liquidation_event WHERE symbol = ? AND ts >= ?`,
		symbol, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting liquidations: %w", err)
	}
	return count, nil
}

// CountBySideSince returns the number of events for symbol and side with Ts >= since
func (r *LiquidationRepository) CountBySideSince(ctx context.Context, symbol string, side domain.Side, since int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM liquidation_event WHERE symbol = ? AND UPPER(side) = ? AND ts >= ?`,
		symbol, strings.ToUpper(string(side)), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting liquidations by side: %w", err)
	}
	return count, nil
}

// SumNotionalSince returns the summed notional for symbol with Ts >= since
func (r *LiquidationRepository) SumNotionalSince(ctx context.Context, symbol string, since int64) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(notional), 0) FROM liquidation_event WHERE symbol = ? AND ts >= ?`,
		symbol, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing notional: %w", err)
	}
	return sum, nil
}

// DeleteOlderThan removes events with Ts < cutoff and returns the number removed
func (r *LiquidationRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM liquidation_event WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old liquidations: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading deleted row count: %w", err)
	}
	return deleted, nil
}
