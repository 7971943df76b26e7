package binance

import (
	"testing"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	receivedAt := time.UnixMilli(1700000099000)

	tests := []struct {
		name string
		msg  string
		want []domain.LiquidationEvent
	}{
		{
			name: "single record with nested order",
			msg: `{
				"e": "forceOrder",
				"E": 1700000000500,
				"o": {
					"s": "BTCUSDT",
					"S": "SELL",
					"q": "0.010",
					"p": "50000.50",
					"ap": "50001.00",
					"z": "0.010",
					"l": "0.002",
					"T": 1700000000000
				}
			}`,
			want: []domain.LiquidationEvent{{
				Symbol:   "BTCUSDT",
				Side:     domain.SideSell,
				Price:    50000.50,
				Qty:      0.010,
				Notional: 50000.50 * 0.010,
				Ts:       1700000000000,
			}},
		},
		{
			name: "array of records",
			msg: `[
				{"E": 1, "o": {"s": "BTCUSDT", "S": "BUY", "p": "100", "z": "1", "T": 10}},
				{"E": 2, "o": {"s": "ETHUSDT", "S": "SELL", "p": "200", "z": "2", "T": 20}}
			]`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Side: domain.SideBuy, Price: 100, Qty: 1, Notional: 100, Ts: 10},
				{Symbol: "ETHUSDT", Side: domain.SideSell, Price: 200, Qty: 2, Notional: 400, Ts: 20},
			},
		},
		{
			name: "flat record without order wrapper",
			msg:  `{"s": "BTCUSDT", "S": "BUY", "p": "100", "q": "2", "T": 5}`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Side: domain.SideBuy, Price: 100, Qty: 2, Notional: 200, Ts: 5},
			},
		},
		{
			name: "price falls back to average price",
			msg:  `{"o": {"s": "BTCUSDT", "S": "SELL", "ap": "99.5", "z": "1", "T": 5}}`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Side: domain.SideSell, Price: 99.5, Qty: 1, Notional: 99.5, Ts: 5},
			},
		},
		{
			name: "quantity falls back through q to l",
			msg:  `{"o": {"s": "BTCUSDT", "p": "10", "l": "0.5", "T": 5}}`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Price: 10, Qty: 0.5, Notional: 5, Ts: 5},
			},
		},
		{
			name: "timestamp falls back to envelope event time",
			msg:  `{"E": 777, "o": {"s": "BTCUSDT", "p": "10", "q": "1"}}`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Price: 10, Qty: 1, Notional: 10, Ts: 777},
			},
		},
		{
			name: "timestamp falls back to receive time",
			msg:  `{"o": {"s": "BTCUSDT", "p": "10", "q": "1"}}`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Price: 10, Qty: 1, Notional: 10, Ts: receivedAt.UnixMilli()},
			},
		},
		{
			name: "missing symbol is skipped",
			msg:  `{"o": {"S": "SELL", "p": "10", "q": "1", "T": 5}}`,
			want: nil,
		},
		{
			name: "zero price is skipped",
			msg:  `{"o": {"s": "BTCUSDT", "p": "0", "q": "1", "T": 5}}`,
			want: nil,
		},
		{
			name: "unparseable quantity is skipped",
			msg:  `{"o": {"s": "BTCUSDT", "p": "10", "z": "abc", "q": "", "l": "x", "T": 5}}`,
			want: nil,
		},
		{
			name: "malformed frame yields nothing",
			msg:  `{not json`,
			want: nil,
		},
		{
			name: "malformed array element is skipped",
			msg:  `[{"o": {"s": "BTCUSDT", "p": "10", "q": "1", "T": 5}}, "noise"]`,
			want: []domain.LiquidationEvent{
				{Symbol: "BTCUSDT", Price: 10, Qty: 1, Notional: 10, Ts: 5},
			},
		},
		{
			name: "empty frame",
			msg:  ``,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeFrame([]byte(tt.msg), receivedAt)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderDTO_ToEvent(t *testing.T) {
	receivedAt := time.UnixMilli(42)

	dto := orderDTO{Symbol: "BTCUSDT", Side: "sell", Price: "20000", FilledQuantity: "0.5", Time: 9}
	event, ok := dto.toEvent(0, receivedAt)
	require.True(t, ok)
	assert.Equal(t, domain.SideSell, event.Side)
	assert.Equal(t, event.Price*event.Qty, event.Notional)
	assert.Equal(t, int64(9), event.Ts)

	_, ok = orderDTO{Price: "10", OrigQuantity: "1"}.toEvent(0, receivedAt)
	assert.False(t, ok, "record without symbol must be discarded")
}
