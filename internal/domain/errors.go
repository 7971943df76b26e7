package domain

import "errors"

var (
	// ErrEmptySymbol is returned when an event arrives without an instrument symbol
	ErrEmptySymbol = errors.New("liquidation event has no symbol")

	// ErrNonPositivePrice is returned when the resolved price is zero or negative
	ErrNonPositivePrice = errors.New("liquidation event price must be positive")

	// ErrNonPositiveQty is returned when the resolved quantity is zero or negative
	ErrNonPositiveQty = errors.New("liquidation event quantity must be positive")
)
