// Package binance maintains the persistent subscription to the Binance
// futures force-liquidation stream and decodes its frames into normalized
// liquidation events.
package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	// DefaultReconnectDelay is the time to wait before redialing after a
	// transport failure or connection close
	DefaultReconnectDelay = 3 * time.Second

	// DefaultWebsocketTimeout is the read deadline for websocket connections
	DefaultWebsocketTimeout = 60 * time.Second

	// DefaultChannelBuffer is the default size for the outbound channels
	DefaultChannelBuffer = 100
)

// Config holds the configuration for the Binance feed client
type Config struct {
	// Name identifies the client instance
	Name string

	// WSUrl is the websocket endpoint URL; defaults to the public
	// force-liquidation stream
	WSUrl string

	// ReconnectDelay overrides the fixed delay between reconnect attempts
	ReconnectDelay time.Duration
}

// Client implements the force-liquidation stream listener for Binance
type Client struct {
	name           string
	wsURL          string
	reconnectDelay time.Duration
	now            func() time.Time
}

// NewClient creates a feed client with the provided configuration
func NewClient(cfg Config) *Client {
	if cfg.WSUrl == "" {
		cfg.WSUrl = FuturesWSUrl
	}
	if cfg.Name == "" {
		cfg.Name = "binance-futures"
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}

	return &Client{
		name:           cfg.Name,
		wsURL:          cfg.WSUrl,
		reconnectDelay: cfg.ReconnectDelay,
		now:            time.Now,
	}
}

// GetName returns the name of the client instance
func (c *Client) GetName() string {
	return c.name
}

// SubscribeLiquidations opens the stream and returns a channel of decoded
// events plus a channel of transport errors. The connection is owned by a
// dedicated goroutine that redials after every failure until ctx is
// cancelled; already-delivered events are unaffected by reconnects.
func (c *Client) SubscribeLiquidations(ctx context.Context) (<-chan domain.LiquidationEvent, <-chan error) {
	out := make(chan domain.LiquidationEvent, DefaultChannelBuffer)
	errCh := make(chan error, DefaultChannelBuffer)

	go c.run(ctx, out, errCh)

	return out, errCh
}

// run is the reconnect loop: dial, read until failure, sleep, repeat.
func (c *Client) run(ctx context.Context, out chan<- domain.LiquidationEvent, errCh chan<- error) {
	defer close(out)
	defer close(errCh)

	for {
		if err := c.connectAndRead(ctx, out); err != nil {
			select {
			case errCh <- fmt.Errorf("liquidation stream: %w", err):
			default:
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// connectAndRead establishes one websocket connection and pumps frames
// until the transport fails or ctx is cancelled.
func (c *Client) connectAndRead(ctx context.Context, out chan<- domain.LiquidationEvent) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	// unblocks ReadMessage when ctx is cancelled mid-read
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-connDone:
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(DefaultWebsocketTimeout)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}

		// malformed frames decode to nothing and never kill the connection
		for _, event := range decodeFrame(msg, c.now()) {
			select {
			case out <- event:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
