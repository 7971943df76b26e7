package binance

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/OscarPele/market-analyzer/internal/domain"
)

const (
	// FuturesWSUrl is the Binance futures force-liquidation stream endpoint
	FuturesWSUrl = "wss://fstream.binance.com/ws/!forceOrder@arr"
)

// envelopeDTO captures the message wrapper. The order record usually sits
// under "o" but some frames carry the fields at the top level.
type envelopeDTO struct {
	EventTime int64           `json:"E"`
	Order     json.RawMessage `json:"o"`
}

// orderDTO holds every field the feed may use for a liquidation record.
// Numeric values arrive as strings; missing fields stay zero-valued and are
// resolved through the fallback chains in toEvent.
type orderDTO struct {
	Symbol         string `json:"s"`
	Side           string `json:"S"`
	Price          string `json:"p"`
	AveragePrice   string `json:"ap"`
	FilledQuantity string `json:"z"`
	OrigQuantity   string `json:"q"`
	LastQuantity   string `json:"l"`
	Time           int64  `json:"T"`
}

// toEvent resolves the feed's field fallbacks into a normalized event:
// price p -> ap, quantity z -> q -> l, timestamp T -> envelope E -> local
// receive time. Records without a symbol or with a non-positive resolved
// price/quantity are skipped, not errors.
func (o orderDTO) toEvent(envelopeTime int64, receivedAt time.Time) (domain.LiquidationEvent, bool) {
	if o.Symbol == "" {
		return domain.LiquidationEvent{}, false
	}

	price := parseFloat(o.Price, parseFloat(o.AveragePrice, 0))
	qty := parseFloat(o.FilledQuantity, parseFloat(o.OrigQuantity, parseFloat(o.LastQuantity, 0)))

	ts := o.Time
	if ts == 0 {
		ts = envelopeTime
	}
	if ts == 0 {
		ts = receivedAt.UnixMilli()
	}

	event, err := domain.NewLiquidationEvent(o.Symbol, o.Side, price, qty, ts)
	if err != nil {
		return domain.LiquidationEvent{}, false
	}
	return event, true
}

// decodeFrame decodes a raw websocket frame into zero or more events.
// A frame is either a single record or an array of records; malformed
// frames and malformed records yield nothing.
func decodeFrame(msg []byte, receivedAt time.Time) []domain.LiquidationEvent {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return nil
	}

	var records []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil
		}
	} else {
		records = []json.RawMessage{trimmed}
	}

	var events []domain.LiquidationEvent
	for _, record := range records {
		if event, ok := decodeRecord(record, receivedAt); ok {
			events = append(events, event)
		}
	}
	return events
}

// decodeRecord decodes one record, whether the order fields are nested
// under "o" or flat on the record itself.
func decodeRecord(record json.RawMessage, receivedAt time.Time) (domain.LiquidationEvent, bool) {
	var envelope envelopeDTO
	if err := json.Unmarshal(record, &envelope); err != nil {
		return domain.LiquidationEvent{}, false
	}

	raw := record
	if len(envelope.Order) > 0 && !bytes.Equal(bytes.TrimSpace(envelope.Order), []byte("null")) {
		raw = envelope.Order
	}

	var order orderDTO
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.LiquidationEvent{}, false
	}

	return order.toEvent(envelope.EventTime, receivedAt)
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}
