package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/OscarPele/market-analyzer/internal/analytics"
	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/notify"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/telemetry"
	"github.com/OscarPele/market-analyzer/internal/ingest"
)

// App represents the bootstrapped application
type App struct {
	logger      *zap.Logger
	feed        ingest.Stream
	ingestor    *ingest.Ingestor
	retention   *ingest.RetentionJob
	derivatives *analytics.Derivatives
	repository  domain.LiquidationRepository
	notifiers   []notify.Client
	telemetry   telemetry.Provider
	options     *Options
}

// Start runs the pipeline and the retention job until ctx is cancelled
func (a *App) Start(ctx context.Context) error {
	for _, notifier := range a.notifiers {
		a.ingestor.WithNotifier(notifier)
	}

	a.retention.Start(ctx)

	if !a.options.Feed.Enabled {
		a.logger.Info("Liquidation feed disabled, waiting for shutdown")
		<-ctx.Done()
		return nil
	}

	pipeline := ingest.NewPipeline(a.feed, a.ingestor, a.logger, a.telemetry)
	return pipeline.Run(ctx)
}

// Stop releases the resources held by the application
func (a *App) Stop() {
	a.telemetry.Shutdown()
	_ = a.logger.Sync()
}

// Derivatives exposes the read side of the persisted liquidation history
func (a *App) Derivatives() *analytics.Derivatives {
	return a.derivatives
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}
