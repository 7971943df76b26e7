package domain

import (
	"context"
	"strings"
)

// Side represents the direction of the liquidated order
type Side string

const (
	// SideBuy marks a short position being liquidated
	SideBuy Side = "BUY"
	// SideSell marks a long position being liquidated
	SideSell Side = "SELL"
)

// LiquidationEvent represents a single normalized force-liquidation fill.
// Once persisted an event is immutable; the only further operations are
// aggregate reads and age-based bulk deletion.
type LiquidationEvent struct {
	ID       string  `json:"id,omitempty" bson:"_id,omitempty"`
	Symbol   string  `json:"s" bson:"s"`
	Side     Side    `json:"sd,omitempty" bson:"sd,omitempty"` // may be absent from the upstream feed
	Price    float64 `json:"p" bson:"p"`
	Qty      float64 `json:"q" bson:"q"`
	Notional float64 `json:"n" bson:"n"` // price * qty, fixed at creation
	Ts       int64   `json:"ts" bson:"ts"`
}

// NewLiquidationEvent validates the raw values and builds a normalized event.
// The side is uppercased so stores can match it with plain equality.
func NewLiquidationEvent(symbol, side string, price, qty float64, ts int64) (LiquidationEvent, error) {
	if symbol == "" {
		return LiquidationEvent{}, ErrEmptySymbol
	}
	if price <= 0 {
		return LiquidationEvent{}, ErrNonPositivePrice
	}
	if qty <= 0 {
		return LiquidationEvent{}, ErrNonPositiveQty
	}

	return LiquidationEvent{
		Symbol:   symbol,
		Side:     Side(strings.ToUpper(side)),
		Price:    price,
		Qty:      qty,
		Notional: price * qty,
		Ts:       ts,
	}, nil
}

// LiquidationRepository is the durable store for liquidation events.
// The write side appends batches; the read side is limited to the aggregate
// queries below plus the retention delete.
type LiquidationRepository interface {
	// InsertBatch appends a batch of events. Atomic from the caller's point
	// of view: either the whole batch is stored or an error is returned.
	InsertBatch(ctx context.Context, events []LiquidationEvent) error

	// CountSince returns the number of events for symbol with Ts >= since.
	CountSince(ctx context.Context, symbol string, since int64) (int64, error)

	// CountBySideSince is CountSince restricted to one side.
	CountBySideSince(ctx context.Context, symbol string, side Side, since int64) (int64, error)

	// SumNotionalSince returns the summed notional for symbol with
	// Ts >= since, 0 when nothing matches.
	SumNotionalSince(ctx context.Context, symbol string, since int64) (float64, error)

	// DeleteOlderThan bulk-deletes events with Ts < cutoff and returns the
	// number of rows removed. Deleting an empty range is a no-op.
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
}
