package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/OscarPele/market-analyzer/internal/analytics"
	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/OscarPele/market-analyzer/internal/infrastructure"
	binanceFeed "github.com/OscarPele/market-analyzer/internal/infrastructure/feed/binance"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/notify"
	memoryRepo "github.com/OscarPele/market-analyzer/internal/infrastructure/repository/memory"
	mongoRepo "github.com/OscarPele/market-analyzer/internal/infrastructure/repository/mongo"
	sqliteRepo "github.com/OscarPele/market-analyzer/internal/infrastructure/repository/sqlite"
	"github.com/OscarPele/market-analyzer/internal/infrastructure/telemetry"
	"github.com/OscarPele/market-analyzer/internal/ingest"
)

// Builder builds the App instance
type Builder struct {
	app *App
	err error
}

// NewBuilder creates a new Builder instance
func NewBuilder() *Builder {
	return &Builder{
		app: &App{},
	}
}

// WithOptionsFetch adds parsed options to the App
func (b *Builder) WithOptionsFetch() *Builder {
	if b.err != nil {
		return b
	}

	opts, err := ParseOptions()
	if err != nil {
		b.err = fmt.Errorf("parsing options: %w", err)
		return b
	}

	b.app.options = opts
	return b
}

// WithLogger initializes the logger
func (b *Builder) WithLogger() *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil {
		b.err = fmt.Errorf("options must be initialized before logger")
		return b
	}

	logger, err := infrastructure.NewLogger(b.app.options.Env, b.app.options.ServiceName)
	if err != nil {
		b.err = fmt.Errorf("creating logger: %w", err)
		return b
	}

	b.app.logger = logger
	return b
}

// WithTelemetry initializes the telemetry provider; Noop when no Datadog
// agent is configured
func (b *Builder) WithTelemetry(ctx context.Context) *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil {
		b.err = fmt.Errorf("options must be initialized before telemetry")
		return b
	}

	dd := b.app.options.Datadog
	if dd.AgentHost == "" {
		b.app.telemetry = &telemetry.NoopProvider{}
		return b
	}

	provider := telemetry.NewDatadogProvider(&telemetry.DatadogConfig{
		AgentHost:       dd.AgentHost,
		AgentPort:       dd.AgentPort,
		StatsdPort:      dd.StatsdPort,
		ServiceName:     b.app.options.ServiceName,
		ServiceEnv:      b.app.options.Env,
		EnableTracing:   dd.EnableTracing,
		EnableMetrics:   dd.EnableMetrics,
		EnableProfiling: dd.EnableProfiling,
	})
	if err := provider.Initialize(ctx); err != nil {
		b.err = fmt.Errorf("initializing telemetry: %w", err)
		return b
	}

	b.app.telemetry = provider
	return b
}

// WithRepository initializes the event store selected by the options
func (b *Builder) WithRepository(ctx context.Context) *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil || b.app.logger == nil {
		b.err = fmt.Errorf("options and logger must be initialized before repository")
		return b
	}

	repo, err := b.buildRepository(ctx)
	if err != nil {
		b.err = fmt.Errorf("creating repository: %w", err)
		return b
	}

	b.app.repository = repo
	return b
}

func (b *Builder) buildRepository(ctx context.Context) (domain.LiquidationRepository, error) {
	opts := b.app.options.Repository

	if opts.Mongo.URL != "" {
		client, err := infrastructure.NewMongoClient(ctx, opts.Mongo.URL)
		if err != nil {
			return nil, fmt.Errorf("creating mongo client: %w", err)
		}
		return mongoRepo.NewLiquidationRepository(ctx, client, opts.Mongo.DB)
	}

	if opts.SQLite.DSN != "" {
		return sqliteRepo.NewLiquidationRepository(opts.SQLite.DSN)
	}

	b.app.logger.Warn("No repository configured, events are stored in memory only")
	return memoryRepo.NewLiquidationRepository(), nil
}

// WithFeed initializes the liquidation stream client
func (b *Builder) WithFeed() *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil {
		b.err = fmt.Errorf("options must be initialized before feed")
		return b
	}

	b.app.feed = binanceFeed.NewClient(binanceFeed.Config{
		Name:  "binance-futures",
		WSUrl: b.app.options.Feed.WSUrl,
	})
	return b
}

// WithIngestor initializes the ingestor and the retention job
func (b *Builder) WithIngestor() *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil || b.app.repository == nil || b.app.logger == nil {
		b.err = fmt.Errorf("options, repository, and logger must be initialized before ingestor")
		return b
	}

	opts := b.app.options
	b.app.ingestor = ingest.NewIngestor(ingest.Config{
		Enabled:          opts.Feed.Enabled,
		TrackedSymbols:   opts.TrackedSymbols(),
		MinNotional:      opts.Ingest.MinNotional,
		BufferCapacity:   opts.Ingest.BufferCapacity,
		BatchSize:        opts.Ingest.BatchSize,
		FlushInterval:    opts.Ingest.FlushInterval,
		AlertMinNotional: opts.Ingest.AlertMinNotional,
	}, b.app.repository, b.app.logger, b.app.telemetry)

	b.app.retention = ingest.NewRetentionJob(
		b.app.repository,
		opts.Retention.Days,
		opts.Retention.Interval,
		b.app.logger,
		b.app.telemetry,
	)

	b.app.derivatives = analytics.NewDerivatives(b.app.repository)
	return b
}

// WithNotifiers initializes the configured alert sinks
func (b *Builder) WithNotifiers(ctx context.Context) *Builder {
	if b.err != nil {
		return b
	}

	if b.app.options == nil || b.app.logger == nil {
		b.err = fmt.Errorf("options and logger must be initialized before notifiers")
		return b
	}

	var notifiers []notify.Client
	opts := b.app.options.Notify

	if opts.Redis.URL != "" {
		redisClient, err := infrastructure.NewRedisClient(ctx, opts.Redis.URL, 1)
		if err != nil {
			b.app.logger.Warn("Failed to initialize Redis notifier", zap.Error(err))
		} else {
			notifiers = append(notifiers, notify.NewRedisNotifier(redisClient, opts.Redis.Channel))
		}
	}

	if opts.Telegram.BotToken != "" && opts.Telegram.ChatID != "" {
		tgNotifier, err := notify.NewTelegramNotifier(opts.Telegram.BotToken, opts.Telegram.ChatID, opts.Telegram.Interval)
		if err != nil {
			b.app.logger.Warn("Failed to initialize Telegram notifier", zap.Error(err))
		} else {
			notifiers = append(notifiers, tgNotifier)
		}
	}

	if opts.Stdout {
		notifiers = append(notifiers, notify.NewConsoleNotifier())
	}

	b.app.notifiers = notifiers
	return b
}

// Build returns the built App instance
func (b *Builder) Build() (*App, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.app.logger == nil ||
		b.app.repository == nil ||
		b.app.feed == nil ||
		b.app.ingestor == nil ||
		b.app.options == nil {
		return nil, fmt.Errorf("missing required dependencies")
	}

	if b.app.telemetry == nil {
		b.app.telemetry = &telemetry.NoopProvider{}
	}

	return b.app, nil
}
