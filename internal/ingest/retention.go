package ingest

import (
	"context"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	// DefaultRetentionDays is how long events are kept before purging
	DefaultRetentionDays = 7

	// DefaultRetentionInterval is the purge schedule
	DefaultRetentionInterval = 30 * time.Minute
)

// RetentionJob periodically deletes events older than the retention
// horizon. It runs independently of ingestion; a failed purge is logged
// and retried on the next tick, never fatal.
type RetentionJob struct {
	repo      domain.LiquidationRepository
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	telemetry telemetry.Provider
	now       func() time.Time
}

// NewRetentionJob creates a retention job. retentionDays is clamped to a
// minimum of one day; a non-positive interval falls back to the default.
func NewRetentionJob(repo domain.LiquidationRepository, retentionDays int, interval time.Duration, logger *zap.Logger, tele telemetry.Provider) *RetentionJob {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	if tele == nil {
		tele = &telemetry.NoopProvider{}
	}

	return &RetentionJob{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		telemetry: tele,
		now:       time.Now,
	}
}

// Start launches the purge loop on its own goroutine until ctx is cancelled
func (j *RetentionJob) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.purge(ctx)
			}
		}
	}()
}

// purge deletes everything older than the retention horizon
func (j *RetentionJob) purge(ctx context.Context) {
	span, ctx := j.telemetry.StartSpan(ctx, telemetrySpanRetentionPurge)
	defer span.Finish()

	cutoff := j.now().Add(-j.retention).UnixMilli()

	start := time.Now()
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	j.telemetry.Timing(telemetryPurgeDuration, time.Since(start))

	if err != nil {
		span.SetTag("error", true)
		j.telemetry.IncrementCounter(telemetryRetentionErrors, 1)
		j.logger.Warn("Retention purge failed, will retry on next tick",
			zap.Int64("cutoff_ms", cutoff), zap.Error(err))
		return
	}

	j.telemetry.IncrementCounter(telemetryRetentionDeleted, deleted)
	if deleted > 0 {
		j.logger.Info("Purged old liquidation events",
			zap.Int64("deleted", deleted), zap.Int64("cutoff_ms", cutoff))
	}
}
