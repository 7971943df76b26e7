package bootstrap

import (
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Options holds all configuration options. Parsed once at startup; the
// components receive immutable values derived from it.
type Options struct {
	Env         string `long:"env" env:"ENV" description:"Environment"`
	ServiceName string `long:"service-name" env:"SERVICE_NAME" default:"market-analyzer" description:"Service name"`

	Repository RepositoryOptions `group:"repository" namespace:"repository" env-namespace:"REPOSITORY"`
	Feed       FeedOptions       `group:"feed" namespace:"feed" env-namespace:"FEED"`
	Ingest     IngestOptions     `group:"ingest" namespace:"ingest" env-namespace:"INGEST"`
	Retention  RetentionOptions  `group:"retention" namespace:"retention" env-namespace:"RETENTION"`
	Notify     NotifyOptions     `group:"notify" namespace:"notify" env-namespace:"NOTIFY"`
	Datadog    DatadogOptions    `group:"datadog" namespace:"datadog" env-namespace:"DATADOG"`
}

// RepositoryOptions selects the event store backend; the in-memory store
// is used when neither mongo nor sqlite is configured
type RepositoryOptions struct {
	Mongo struct {
		URL string `long:"url" env:"URL" description:"MongoDB URL"`
		DB  string `long:"db" env:"DB" default:"market" description:"MongoDB database name"`
	} `group:"mongo" namespace:"mongo" env-namespace:"MONGO"`

	SQLite struct {
		DSN string `long:"dsn" env:"DSN" description:"SQLite database file"`
	} `group:"sqlite" namespace:"sqlite" env-namespace:"SQLITE"`
}

// FeedOptions configures the liquidation stream listener
type FeedOptions struct {
	Enabled bool   `long:"enabled" env:"ENABLED" default:"true" description:"Enable the liquidation stream"`
	WSUrl   string `long:"ws-url" env:"WS_URL" description:"(optional) Websocket endpoint override"`
}

// IngestOptions configures admission filtering and batching
type IngestOptions struct {
	SymbolsTracked   string        `long:"symbols-tracked" env:"SYMBOLS_TRACKED" default:"BTCUSDT,BTCUSDC" description:"Comma-separated tracked symbols, empty tracks all"`
	MinNotional      float64       `long:"min-notional" env:"MIN_NOTIONAL" default:"50" description:"Minimum USD notional to persist"`
	BufferCapacity   int           `long:"buffer-capacity" env:"BUFFER_CAPACITY" default:"20000" description:"Pending-event buffer capacity"`
	BatchSize        int           `long:"batch-size" env:"BATCH_SIZE" default:"200" description:"Events per persisted batch"`
	FlushInterval    time.Duration `long:"flush-interval" env:"FLUSH_INTERVAL" default:"1s" description:"Periodic flush interval"`
	AlertMinNotional float64       `long:"alert-min-notional" env:"ALERT_MIN_NOTIONAL" default:"250000" description:"Notional that triggers a liquidation alert, 0 disables"`
}

// RetentionOptions bounds storage growth
type RetentionOptions struct {
	Days     int           `long:"days" env:"DAYS" default:"7" description:"Retention window in days, minimum 1"`
	Interval time.Duration `long:"interval" env:"INTERVAL" default:"30m" description:"Purge schedule"`
}

// NotifyOptions configures the alert sinks
type NotifyOptions struct {
	Redis struct {
		URL     string `long:"url" env:"URL" description:"Redis URL"`
		Channel string `long:"channel" env:"CHANNEL" default:"liquidation:alerts" description:"Redis pub/sub channel"`
	} `group:"redis" namespace:"redis" env-namespace:"REDIS"`

	Telegram struct {
		BotToken string `long:"bot-token" env:"BOT_TOKEN" description:"Telegram bot token"`
		ChatID   string `long:"chat-id" env:"CHAT_ID" description:"Telegram chat ID"`
		Interval int    `long:"interval" env:"INTERVAL" description:"Min interval in seconds between notifications"`
	} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

	Stdout bool `long:"stdout" env:"STDOUT" description:"Print alerts to stdout"`
}

// DatadogOptions configures the telemetry provider
type DatadogOptions struct {
	AgentHost       string `long:"agent-host" env:"AGENT_HOST" description:"Datadog agent host; empty disables telemetry"`
	AgentPort       string `long:"agent-port" env:"AGENT_PORT" default:"8126" description:"Datadog trace agent port"`
	StatsdPort      string `long:"statsd-port" env:"STATSD_PORT" default:"8125" description:"Datadog statsd port"`
	EnableTracing   bool   `long:"enable-tracing" env:"ENABLE_TRACING" description:"Enable APM tracing"`
	EnableMetrics   bool   `long:"enable-metrics" env:"ENABLE_METRICS" description:"Enable statsd metrics"`
	EnableProfiling bool   `long:"enable-profiling" env:"ENABLE_PROFILING" description:"Enable continuous profiling"`
}

// ParseOptions parses command line arguments and environment variables
func ParseOptions() (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// TrackedSymbols splits the configured CSV into a clean symbol list
func (o *Options) TrackedSymbols() []string {
	var symbols []string
	for _, s := range strings.Split(o.Ingest.SymbolsTracked, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	return symbols
}
