package ingest

import (
	"fmt"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
)

// formatAlert renders a large liquidation as a human-readable message for
// the notification sinks.
func formatAlert(event domain.LiquidationEvent) string {
	direction := "liquidation"
	switch event.Side {
	case domain.SideSell:
		direction = "long liquidation"
	case domain.SideBuy:
		direction = "short liquidation"
	}

	return fmt.Sprintf("%s %s: %.4f @ %.2f ($%.0f) at %s",
		event.Symbol,
		direction,
		event.Qty,
		event.Price,
		event.Notional,
		time.UnixMilli(event.Ts).UTC().Format(time.RFC3339),
	)
}
