package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopProvider(t *testing.T) {
	provider := &NoopProvider{}

	assert.NoError(t, provider.Initialize(context.Background()))

	span, ctx := provider.StartSpan(context.Background(), "drainAndPersist")
	assert.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.SetTag("batch_size", 10)
	span.Finish()

	// all sinks accept values without side effects
	provider.IncrementCounter("liquidations.ingest.dropped", 1)
	provider.Gauge("liquidations.buffer.size", 42)
	provider.Timing("liquidations.persist.duration", time.Millisecond)
	provider.Shutdown()
}

func TestDatadogProviderLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		config *DatadogConfig
	}{
		{
			name: "nothing enabled",
			config: &DatadogConfig{
				AgentHost:   "localhost",
				AgentPort:   "8126",
				ServiceName: "market-analyzer",
				ServiceEnv:  "test",
			},
		},
		{
			name: "tracing enabled",
			config: &DatadogConfig{
				AgentHost:     "localhost",
				AgentPort:     "8126",
				ServiceName:   "market-analyzer",
				ServiceEnv:    "test",
				EnableTracing: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewDatadogProvider(tt.config)

			assert.NoError(t, provider.Initialize(context.Background()))
			assert.True(t, provider.initialized)

			// second initialization is a no-op
			assert.NoError(t, provider.Initialize(context.Background()))

			span, _ := provider.StartSpan(context.Background(), "purge")
			span.Finish()

			provider.Shutdown()
		})
	}
}

func TestDatadogProviderMetricsDisabled(t *testing.T) {
	provider := NewDatadogProvider(&DatadogConfig{AgentHost: "localhost", AgentPort: "8126"})

	// no statsd client configured: calls must not panic
	provider.IncrementCounter("counter", 1)
	provider.Gauge("gauge", 1)
	provider.Timing("timing", time.Second)
}
