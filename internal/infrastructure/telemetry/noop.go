package telemetry

import (
	"context"
	"time"
)

// NoopProvider is used when no telemetry backend is configured.
// Every operation is a no-op.
type NoopProvider struct{}

// Initialize does nothing and always succeeds
func (p *NoopProvider) Initialize(_ context.Context) error {
	return nil
}

// Shutdown does nothing
func (p *NoopProvider) Shutdown() {}

// StartSpan returns a span that records nothing
func (p *NoopProvider) StartSpan(ctx context.Context, _ string) (Span, context.Context) {
	return &noopSpan{}, ctx
}

// IncrementCounter discards the counter update
func (p *NoopProvider) IncrementCounter(_ string, _ int64, _ ...string) {}

// Gauge discards the gauge update
func (p *NoopProvider) Gauge(_ string, _ float64, _ ...string) {}

// Timing discards the timing sample
func (p *NoopProvider) Timing(_ string, _ time.Duration, _ ...string) {}
