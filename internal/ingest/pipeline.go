package ingest

import (
	"context"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Stream is the source of liquidation events. The feed client owns the
// connection and its reconnects; the pipeline only consumes the channels.
type Stream interface {
	// GetName returns the name of the stream source
	GetName() string

	// SubscribeLiquidations subscribes to liquidation events from the feed
	SubscribeLiquidations(ctx context.Context) (<-chan domain.LiquidationEvent, <-chan error)
}

// Pipeline wires the stream listener to the ingestor: every decoded event
// is admitted synchronously, in feed-arrival order, before the next one is
// read.
type Pipeline struct {
	stream    Stream
	ingestor  *Ingestor
	logger    *zap.Logger
	telemetry telemetry.Provider
}

// NewPipeline creates a pipeline for the given stream and ingestor
func NewPipeline(stream Stream, ingestor *Ingestor, logger *zap.Logger, tele telemetry.Provider) *Pipeline {
	if tele == nil {
		tele = &telemetry.NoopProvider{}
	}
	return &Pipeline{
		stream:    stream,
		ingestor:  ingestor,
		logger:    logger,
		telemetry: tele,
	}
}

// Run starts the ingestor and consumes the stream until ctx is cancelled
// or the stream closes. On return the ingestor has been stopped and its
// remaining buffer persisted.
func (p *Pipeline) Run(ctx context.Context) error {
	events, errs := p.stream.SubscribeLiquidations(ctx)
	p.ingestor.Start(ctx)
	defer p.ingestor.Stop()

	p.logger.Info("Liquidation pipeline started", zap.String("stream", p.stream.GetName()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			p.ingestor.Admit(event)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			// transport errors are recovered by the stream's reconnect
			// loop; they are logged and counted, never fatal
			p.telemetry.IncrementCounter(telemetryStreamErrors, 1)
			p.logger.Warn("Liquidation stream error", zap.Error(err))
		}
	}
}
