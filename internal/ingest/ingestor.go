// Package ingest contains the liquidation pipeline: the ingestor that
// buffers and batches events between the feed and the store, the stream
// pipeline that pumps the feed into it, and the retention job that bounds
// storage growth.
package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/notify"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultBufferCapacity bounds the in-memory backlog
	DefaultBufferCapacity = 20000

	// DefaultBatchSize is the number of events drained per flush
	DefaultBatchSize = 200

	// DefaultFlushInterval is the periodic flush cadence
	DefaultFlushInterval = time.Second

	// highWaterMultiplier: occupancy at batch*multiplier triggers an eager drain
	highWaterMultiplier = 2

	// persistTimeout bounds a single store write so a hung store cannot
	// stall a drain forever
	persistTimeout = 10 * time.Second
)

// Config holds the admission and batching parameters of the ingestor.
// It is built once at startup and never mutated afterwards.
type Config struct {
	// Enabled turns the whole pipeline on or off
	Enabled bool

	// TrackedSymbols is the admission whitelist; empty means track all
	TrackedSymbols []string

	// MinNotional drops events below this USD size
	MinNotional float64

	// BufferCapacity bounds the pending-event buffer
	BufferCapacity int

	// BatchSize is the target number of events per persisted batch
	BatchSize int

	// FlushInterval is the periodic flush cadence
	FlushInterval time.Duration

	// AlertMinNotional publishes a notification for events at or above this
	// size; zero disables alerting
	AlertMinNotional float64
}

// Ingestor decouples the feed's arrival rate from storage latency. Events
// are admitted through a filter into a bounded buffer and drained to the
// store in batches, either periodically or eagerly under pressure.
// Delivery is best-effort: under sustained overload or storage failure a
// batch can be dropped, and the drop is counted, never hidden.
type Ingestor struct {
	cfg       Config
	tracked   map[string]struct{}
	repo      domain.LiquidationRepository
	logger    *zap.Logger
	telemetry telemetry.Provider
	notifiers []notify.Client

	buffer  chan domain.LiquidationEvent
	stopped atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewIngestor creates an ingestor with cfg defaults applied
func NewIngestor(cfg Config, repo domain.LiquidationRepository, logger *zap.Logger, tele telemetry.Provider) *Ingestor {
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = DefaultBufferCapacity
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if tele == nil {
		tele = &telemetry.NoopProvider{}
	}

	tracked := make(map[string]struct{}, len(cfg.TrackedSymbols))
	for _, s := range cfg.TrackedSymbols {
		if s != "" {
			tracked[s] = struct{}{}
		}
	}

	return &Ingestor{
		cfg:       cfg,
		tracked:   tracked,
		repo:      repo,
		logger:    logger,
		telemetry: tele,
		buffer:    make(chan domain.LiquidationEvent, cfg.BufferCapacity),
		done:      make(chan struct{}),
	}
}

// WithNotifier adds a sink for large-liquidation alerts
func (i *Ingestor) WithNotifier(client notify.Client) {
	if client == nil {
		i.logger.Warn("Cannot add nil notifier")
		return
	}
	i.notifiers = append(i.notifiers, client)
}

// Admit applies the admission filter and enqueues the event. It never
// blocks the caller for an unbounded time: when the buffer is full it
// frees roughly half a batch of the oldest events, retries once, and
// otherwise drops the event silently.
func (i *Ingestor) Admit(event domain.LiquidationEvent) {
	if !i.cfg.Enabled || i.stopped.Load() {
		return
	}
	if len(i.tracked) > 0 {
		if _, ok := i.tracked[event.Symbol]; !ok {
			return
		}
	}
	if event.Notional < i.cfg.MinNotional {
		return
	}

	i.maybeAlert(event)

	select {
	case i.buffer <- event:
	default:
		// buffer full: emergency drain of half a batch, then one retry
		i.drainAndPersist(context.Background(), max(1, i.cfg.BatchSize/2))
		select {
		case i.buffer <- event:
		default:
			i.telemetry.IncrementCounter(telemetryEventsDroppedOverflow, 1)
			return
		}
	}

	i.telemetry.IncrementCounter(telemetryEventsAdmitted, 1)
	i.telemetry.Gauge(telemetryBufferSize, float64(len(i.buffer)))

	// eager drain ahead of the timer once the high-water mark is reached
	if len(i.buffer) >= i.cfg.BatchSize*highWaterMultiplier {
		i.drainAndPersist(context.Background(), i.cfg.BatchSize)
	}
}

// Start launches the periodic flush loop. It returns immediately; the loop
// runs until Stop is called or ctx is cancelled.
func (i *Ingestor) Start(ctx context.Context) {
	if !i.cfg.Enabled {
		return
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		ticker := time.NewTicker(i.cfg.FlushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-i.done:
				return
			case <-ticker.C:
				i.drainAndPersist(ctx, i.cfg.BatchSize)
			}
		}
	}()
}

// Stop ends admissions, stops the flush loop and persists every event
// still in the buffer. After Stop returns only events dropped under the
// overflow policy have been lost.
func (i *Ingestor) Stop() {
	if !i.stopped.CompareAndSwap(false, true) {
		return
	}
	close(i.done)
	i.wg.Wait()

	// final unbounded drain
	for len(i.buffer) > 0 {
		i.drainAndPersist(context.Background(), len(i.buffer))
	}
}

// drainAndPersist removes up to maxEvents oldest events from the buffer
// and writes them as one batch. A failed write loses that batch only; the
// ingestor keeps accepting new events.
func (i *Ingestor) drainAndPersist(ctx context.Context, maxEvents int) {
	batch := i.drain(maxEvents)
	if len(batch) == 0 {
		return
	}

	span, ctx := i.telemetry.StartSpan(ctx, telemetrySpanDrainAndPersist)
	defer span.Finish()
	span.SetTag("batch_size", len(batch))

	persistCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	start := time.Now()
	err := i.repo.InsertBatch(persistCtx, batch)
	i.telemetry.Timing(telemetryPersistDuration, time.Since(start))

	if err != nil {
		span.SetTag("error", true)
		i.telemetry.IncrementCounter(telemetryEventsDroppedPersist, int64(len(batch)))
		i.logger.Error("Persisting liquidation batch failed, batch lost",
			zap.Int("batch_size", len(batch)), zap.Error(err))
		return
	}

	i.telemetry.IncrementCounter(telemetryEventsPersisted, int64(len(batch)))
}

// drain removes up to maxEvents events from the buffer, oldest first.
// Channel receives are safe under concurrent drains and never hand the
// same event to two of them.
func (i *Ingestor) drain(maxEvents int) []domain.LiquidationEvent {
	if maxEvents <= 0 {
		return nil
	}

	batch := make([]domain.LiquidationEvent, 0, min(maxEvents, len(i.buffer)))
	for len(batch) < maxEvents {
		select {
		case event := <-i.buffer:
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}

// maybeAlert publishes a fire-and-forget notification for unusually large
// liquidations.
func (i *Ingestor) maybeAlert(event domain.LiquidationEvent) {
	if i.cfg.AlertMinNotional <= 0 || event.Notional < i.cfg.AlertMinNotional || len(i.notifiers) == 0 {
		return
	}

	message := formatAlert(event)
	for _, client := range i.notifiers {
		go func(c notify.Client) {
			alert := notify.Event{
				Time:      time.Now(),
				EventType: notify.EventTypeLiquidationAlert,
				Data:      message,
			}
			if err := c.Send(context.Background(), alert); err != nil {
				i.logger.Warn("Failed to publish liquidation alert", zap.Error(err))
			}
		}(client)
	}
}
