package v1

import (
	"encoding/json"
	"fmt"
	"time"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

// Kind tags the decoded shape of a vendor frame. The vendor multiplexes
// several message shapes on one channel, so every inbound frame is decoded
// against the known shapes in order and dispatched on the resulting tag.
type Kind int

const (
	// KindUnknown is a frame that parsed as JSON but matched no known shape.
	KindUnknown Kind = iota
	// KindSnapshot is a full per-symbol snapshot list (`symbollist`).
	KindSnapshot
	// KindBarBatch is a batch of vendor-aggregated bars (`bars`).
	KindBarBatch
	// KindBidAsk is an incremental bid/ask update without a traded price.
	KindBidAsk
	// KindHeartbeat is a vendor keepalive; carries no data.
	KindHeartbeat
	// KindFailure is an explicit failure acknowledgement from the vendor.
	KindFailure
)

// SnapshotRecord is one symbol's full tick from a snapshot frame, together
// with the numeric instrument token the vendor uses in incremental updates.
type SnapshotRecord struct {
	Token int64
	Tick  marketv1.Tick
}

// BarUpdate is one vendor-aggregated OHLCV row. The symbol is resolved from
// the token by the stream client using its learned token map.
type BarUpdate struct {
	Token     int64     `json:"-"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	OI        int64     `json:"oi,omitempty"`
}

// BidAskUpdate is an incremental quote update carrying no traded price.
type BidAskUpdate struct {
	Token     int64
	Timestamp time.Time
	Bid       float64
	BidQty    int64
	Ask       float64
	AskQty    int64
}

// Frame is the decoded variant of one vendor wire frame.
type Frame struct {
	Kind     Kind
	Snapshot []SnapshotRecord
	Bars     []BarUpdate
	BidAsk   *BidAskUpdate
	Message  string
}

// rawFrame mirrors the union of all vendor frame shapes. Field presence
// decides the variant; records are positional arrays, not keyed objects.
type rawFrame struct {
	SymbolList [][]any `json:"symbollist"`
	Bars       [][]any `json:"bars"`
	BidAsk     []any   `json:"bidask"`
	Success    *bool   `json:"success"`
	Message    string  `json:"message"`
}

// Snapshot record field offsets. Records shorter than the bid/ask block are
// accepted; trailing fields default to zero.
const (
	snapSymbol = iota
	snapToken
	snapTimestamp
	snapPrice
	snapVolume
	snapHigh
	snapLow
	snapOpen
	snapBid
	snapBidQty
	snapAsk
	snapAskQty
	snapOI
	snapTurnover

	snapMinFields = snapVolume + 1
)

// Bar row field offsets: [symbolId, timestamp, open, high, low, close, volume, oi].
const (
	barToken = iota
	barTimestamp
	barOpen
	barHigh
	barLow
	barClose
	barVolume
	barOI

	barMinFields = barVolume + 1
)

// BidAsk field offsets: [tokenId, timestamp, bid, bidQty, ask, askQty].
const (
	baToken = iota
	baTimestamp
	baBid
	baBidQty
	baAsk
	baAskQty

	baFields = baAskQty + 1
)

// DecodeFrame parses one vendor wire frame into a tagged variant. It returns
// an error only when the payload is not valid JSON; a valid JSON frame that
// matches no known shape decodes as KindUnknown. Malformed rows inside an
// otherwise valid frame are dropped.
func DecodeFrame(data []byte) (*Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode vendor frame: %w", err)
	}

	switch {
	case raw.SymbolList != nil:
		return &Frame{Kind: KindSnapshot, Snapshot: decodeSnapshot(raw.SymbolList)}, nil
	case raw.Bars != nil:
		return &Frame{Kind: KindBarBatch, Bars: decodeBars(raw.Bars)}, nil
	case raw.BidAsk != nil:
		frame := &Frame{Kind: KindBidAsk}
		if ba, ok := decodeBidAsk(raw.BidAsk); ok {
			frame.BidAsk = ba
		}
		return frame, nil
	case raw.Success != nil:
		if *raw.Success {
			return &Frame{Kind: KindHeartbeat}, nil
		}
		return &Frame{Kind: KindFailure, Message: raw.Message}, nil
	default:
		return &Frame{Kind: KindUnknown}, nil
	}
}

func decodeSnapshot(rows [][]any) []SnapshotRecord {
	records := make([]SnapshotRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < snapMinFields {
			continue
		}
		symbol, ok := asString(row[snapSymbol])
		if !ok || symbol == "" {
			continue
		}
		token, ok := asInt64(row[snapToken])
		if !ok {
			continue
		}
		ts, ok := asTimestamp(row[snapTimestamp])
		if !ok {
			continue
		}
		price, ok := asFloat(row[snapPrice])
		if !ok {
			continue
		}
		volume, _ := asInt64(row[snapVolume])

		tick := marketv1.Tick{
			Symbol:    symbol,
			Timestamp: ts,
			Price:     price,
			Volume:    volume,
		}
		tick.High, _ = asFloatAt(row, snapHigh)
		tick.Low, _ = asFloatAt(row, snapLow)
		tick.Open, _ = asFloatAt(row, snapOpen)
		tick.Bid, _ = asFloatAt(row, snapBid)
		tick.BidQty, _ = asInt64At(row, snapBidQty)
		tick.Ask, _ = asFloatAt(row, snapAsk)
		tick.AskQty, _ = asInt64At(row, snapAskQty)
		tick.OI, _ = asInt64At(row, snapOI)
		tick.Turnover, _ = asFloatAt(row, snapTurnover)

		records = append(records, SnapshotRecord{Token: token, Tick: tick})
	}
	return records
}

func decodeBars(rows [][]any) []BarUpdate {
	bars := make([]BarUpdate, 0, len(rows))
	for _, row := range rows {
		if len(row) < barMinFields {
			continue
		}
		token, ok := asInt64(row[barToken])
		if !ok {
			continue
		}
		ts, ok := asTimestamp(row[barTimestamp])
		if !ok {
			continue
		}
		open, okO := asFloat(row[barOpen])
		high, okH := asFloat(row[barHigh])
		low, okL := asFloat(row[barLow])
		closePx, okC := asFloat(row[barClose])
		if !okO || !okH || !okL || !okC {
			continue
		}
		volume, _ := asInt64(row[barVolume])

		bar := BarUpdate{
			Token:     token,
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
			Volume:    volume,
		}
		bar.OI, _ = asInt64At(row, barOI)
		bars = append(bars, bar)
	}
	return bars
}

func decodeBidAsk(row []any) (*BidAskUpdate, bool) {
	if len(row) < baFields {
		return nil, false
	}
	token, ok := asInt64(row[baToken])
	if !ok {
		return nil, false
	}
	ts, ok := asTimestamp(row[baTimestamp])
	if !ok {
		return nil, false
	}
	bid, _ := asFloat(row[baBid])
	bidQty, _ := asInt64(row[baBidQty])
	ask, _ := asFloat(row[baAsk])
	askQty, _ := asInt64(row[baAskQty])

	return &BidAskUpdate{
		Token:     token,
		Timestamp: ts,
		Bid:       bid,
		BidQty:    bidQty,
		Ask:       ask,
		AskQty:    askQty,
	}, true
}

// TickFromBidAsk lifts a quote-only update into a partial tick for event
// delivery. The result has no traded price and must not be aggregated.
func TickFromBidAsk(symbol string, ba *BidAskUpdate) marketv1.Tick {
	return marketv1.Tick{
		Symbol:    symbol,
		Timestamp: ba.Timestamp,
		Bid:       ba.Bid,
		BidQty:    ba.BidQty,
		Ask:       ba.Ask,
		AskQty:    ba.AskQty,
	}
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// asTimestamp accepts either an epoch number (seconds, or milliseconds when
// the magnitude clearly exceeds the seconds range) or a formatted string.
func asTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		if t > 1e12 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		sec := int64(t)
		nsec := int64((t - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), true
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func asFloatAt(row []any, idx int) (float64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	return asFloat(row[idx])
}

func asInt64At(row []any, idx int) (int64, bool) {
	if idx >= len(row) {
		return 0, false
	}
	return asInt64(row[idx])
}
