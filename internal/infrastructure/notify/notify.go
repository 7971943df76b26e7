// Package notify publishes pipeline events to external sinks.
package notify

import (
	"context"
	"time"
)

// EventTypeLiquidationAlert marks a notification about an unusually large liquidation
const EventTypeLiquidationAlert = "liquidation_alert"

// Event represents a notification event
type Event struct {
	Time      time.Time `json:"ct"`
	EventType string    `json:"event_type"`
	Data      any       `json:"data"`
}

// Client represents a notification sink contract
type Client interface {
	Send(ctx context.Context, event Event) error
}
