package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantURL  string
	}{
		{
			name:     "custom config",
			cfg:      Config{Name: "test-binance", WSUrl: "ws://ws.test"},
			wantName: "test-binance",
			wantURL:  "ws://ws.test",
		},
		{
			name:     "defaults",
			cfg:      Config{},
			wantName: "binance-futures",
			wantURL:  FuturesWSUrl,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.cfg)
			assert.Equal(t, tt.wantName, client.GetName())
			assert.Equal(t, tt.wantURL, client.wsURL)
			assert.Equal(t, DefaultReconnectDelay, client.reconnectDelay)
		})
	}
}

// newWSServer starts a websocket server that sends the given frames on each
// connection and then keeps the connection open until the request ends.
func newWSServer(t *testing.T, frames []string, connections *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer ws.Close()

		if connections != nil {
			connections.Add(1)
		}

		for _, frame := range frames {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				t.Logf("write message error: %v", err)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}

		<-r.Context().Done()
	}))
}

func TestClient_SubscribeLiquidations(t *testing.T) {
	tests := []struct {
		name      string
		frames    []string
		wantCount int
	}{
		{
			name: "single and batched frames",
			frames: []string{
				`{"E": 1, "o": {"s": "BTCUSDT", "S": "SELL", "p": "50000", "z": "0.01", "T": 1}}`,
				`[{"E": 2, "o": {"s": "BTCUSDT", "S": "BUY", "p": "100", "q": "1", "T": 2}},
				  {"E": 3, "o": {"s": "ETHUSDT", "S": "SELL", "p": "200", "q": "2", "T": 3}}]`,
			},
			wantCount: 3,
		},
		{
			name: "malformed frames are swallowed",
			frames: []string{
				`garbage`,
				`{"E": 1, "o": {"s": "BTCUSDT", "p": "10", "q": "1", "T": 1}}`,
			},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newWSServer(t, tt.frames, nil)
			defer server.Close()

			client := NewClient(Config{Name: "test", WSUrl: "ws" + server.URL[4:]})

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			events, _ := client.SubscribeLiquidations(ctx)

			var count int
			deadline := time.After(time.Second)
			for count < tt.wantCount {
				select {
				case e := <-events:
					assert.NotEmpty(t, e.Symbol)
					assert.Greater(t, e.Notional, 0.0)
					count++
				case <-deadline:
					t.Fatalf("timed out after %d of %d events", count, tt.wantCount)
				}
			}
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestClient_ReconnectsAfterClose(t *testing.T) {
	var connections atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		n := connections.Add(1)
		// drop the first connection right after one event to force a redial
		_ = ws.WriteMessage(websocket.TextMessage,
			[]byte(`{"E": 1, "o": {"s": "BTCUSDT", "p": "10", "q": "1", "T": 1}}`))
		if n == 1 {
			ws.Close()
			return
		}
		defer ws.Close()
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{
		Name:           "test",
		WSUrl:          "ws" + server.URL[4:],
		ReconnectDelay: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, _ := client.SubscribeLiquidations(ctx)

	// one event per connection: receiving two proves a reconnect happened
	for i := 0; i < 2; i++ {
		select {
		case e := <-events:
			require.Equal(t, "BTCUSDT", e.Symbol)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
	assert.GreaterOrEqual(t, connections.Load(), int32(2))
}

func TestClient_ContextCancelClosesChannels(t *testing.T) {
	server := newWSServer(t, nil, nil)
	defer server.Close()

	client := NewClient(Config{Name: "test", WSUrl: "ws" + server.URL[4:], ReconnectDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	events, errs := client.SubscribeLiquidations(ctx)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "event channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event channel to close")
	}
	// the error channel may hold a buffered dial error; it must still close
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-errs:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for error channel to close")
		}
	}
}
