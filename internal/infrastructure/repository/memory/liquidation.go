// Package memory provides an in-process liquidation store. It backs tests
// and lets the pipeline run without any external database.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/OscarPele/market-analyzer/internal/domain"
)

// LiquidationRepository stores liquidation events in memory
type LiquidationRepository struct {
	mu     sync.RWMutex
	events []domain.LiquidationEvent
}

// NewLiquidationRepository creates an empty in-memory repository
func NewLiquidationRepository() *LiquidationRepository {
	return &LiquidationRepository{}
}

// InsertBatch appends a batch of events
func (r *LiquidationRepository) InsertBatch(_ context.Context, events []domain.LiquidationEvent) error {
	if len(events) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// CountSince returns the number of events for symbol with Ts >= since
func (r *LiquidationRepository) CountSince(_ context.Context, symbol string, since int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, e := range r.events {
		if e.Symbol == symbol && e.Ts >= since {
			count++
		}
	}
	return count, nil
}

// CountBySideSince returns the number of events for symbol and side with Ts >= since
func (r *LiquidationRepository) CountBySideSince(_ context.Context, symbol string, side domain.Side, since int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, e := range r.events {
		if e.Symbol == symbol && e.Ts >= since && strings.EqualFold(string(e.Side), string(side)) {
			count++
		}
	}
	return count, nil
}

// SumNotionalSince returns the summed notional for symbol with Ts >= since
func (r *LiquidationRepository) SumNotionalSince(_ context.Context, symbol string, since int64) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	for _, e := range r.events {
		if e.Symbol == symbol && e.Ts >= since {
			sum += e.Notional
		}
	}
	return sum, nil
}

// DeleteOlderThan removes events with Ts < cutoff and returns the number removed
func (r *LiquidationRepository) DeleteOlderThan(_ context.Context, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var deleted int64
	for _, e := range r.events {
		if e.Ts < cutoff {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}

// Len reports the current number of stored events
func (r *LiquidationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Events returns a copy of all stored events in insertion order
func (r *LiquidationRepository) Events() []domain.LiquidationEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.LiquidationEvent, len(r.events))
	copy(out, r.events)
	return out
}
