// Package analytics exposes the aggregate read side of the liquidation
// store to the indicator layer. These queries are the only operations that
// layer performs against the store.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
)

// liquidationWindow is the lookback for the liquidations summary
const liquidationWindow = 24 * time.Hour

// LiquidationsSummary aggregates the stored liquidations for one symbol
// over the last 24 hours.
type LiquidationsSummary struct {
	Symbol        string  `json:"symbol"`
	SymbolQueried string  `json:"symbolQueried"`
	Window        string  `json:"window"`
	Count         int64   `json:"count"`
	Buys          int64   `json:"buys"`
	Sells         int64   `json:"sells"`
	TotalNotional float64 `json:"totalNotional"`
	Note          string  `json:"note,omitempty"`
}

// Derivatives answers aggregate liquidation queries from stored events
type Derivatives struct {
	repo domain.LiquidationRepository
	now  func() time.Time
}

// NewDerivatives creates the read-side service over the given store
func NewDerivatives(repo domain.LiquidationRepository) *Derivatives {
	return &Derivatives{
		repo: repo,
		now:  time.Now,
	}
}

// LiquidationsSummary returns the 24h aggregate for symbol. When a USDC
// pair has no stored rows its USDT twin is queried instead, since the feed
// usually reports the USDT contract.
func (d *Derivatives) LiquidationsSummary(ctx context.Context, symbol string) (LiquidationsSummary, error) {
	since := d.now().Add(-liquidationWindow).UnixMilli()

	queried := symbol
	note := ""

	count, err := d.repo.CountSince(ctx, queried, since)
	if err != nil {
		return LiquidationsSummary{}, fmt.Errorf("counting liquidations for %s: %w", queried, err)
	}

	if count == 0 && strings.HasSuffix(symbol, "USDC") {
		alt := strings.TrimSuffix(symbol, "USDC") + "USDT"
		altCount, err := d.repo.CountSince(ctx, alt, since)
		if err != nil {
			return LiquidationsSummary{}, fmt.Errorf("counting liquidations for %s: %w", alt, err)
		}
		if altCount > 0 {
			queried = alt
			count = altCount
			note = "fallback to USDT contract"
		}
	}

	summary := LiquidationsSummary{
		Symbol:        symbol,
		SymbolQueried: queried,
		Window:        "24h",
		Count:         count,
		Note:          note,
	}

	if count == 0 {
		summary.Note = "no persisted liquidations yet"
		return summary, nil
	}

	if summary.Buys, err = d.repo.CountBySideSince(ctx, queried, domain.SideBuy, since); err != nil {
		return LiquidationsSummary{}, fmt.Errorf("counting buy liquidations: %w", err)
	}
	if summary.Sells, err = d.repo.CountBySideSince(ctx, queried, domain.SideSell, since); err != nil {
		return LiquidationsSummary{}, fmt.Errorf("counting sell liquidations: %w", err)
	}
	if summary.TotalNotional, err = d.repo.SumNotionalSince(ctx, queried, since); err != nil {
		return LiquidationsSummary{}, fmt.Errorf("summing liquidation notional: %w", err)
	}

	return summary, nil
}
