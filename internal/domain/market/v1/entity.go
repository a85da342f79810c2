package v1

import (
	"fmt"
	"time"
)

// Tick is a single normalized market event from the vendor stream. Ticks are
// ephemeral: they are folded into the live bar for their bucket and dropped.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`

	// Vendor-observed OHLC for the session, zero when absent.
	Open float64 `json:"open,omitempty"`
	High float64 `json:"high,omitempty"`
	Low  float64 `json:"low,omitempty"`

	Bid      float64 `json:"bid,omitempty"`
	BidQty   int64   `json:"bid_qty,omitempty"`
	Ask      float64 `json:"ask,omitempty"`
	AskQty   int64   `json:"ask_qty,omitempty"`
	OI       int64   `json:"oi,omitempty"`
	Turnover float64 `json:"turnover,omitempty"`
}

// HasPrice reports whether the tick carries a traded price. Incremental
// bid/ask updates do not, and are excluded from aggregation.
func (t Tick) HasPrice() bool {
	return t.Price > 0
}

// BucketKey uniquely identifies one live bar: a symbol plus the floor-truncated
// start of its minute bucket.
type BucketKey struct {
	Symbol      string
	BucketStart time.Time
}

// Bar is the aggregate of all ticks observed for one symbol within one fixed
// minute bucket.
type Bar struct {
	Symbol      string    `json:"symbol"`
	BucketStart time.Time `json:"bucket_start"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
	TradeCount  int64     `json:"trade_count"`
	VWAP        float64   `json:"vwap"`
}

// NewBar seeds a bar from the first tick observed for its bucket.
func NewBar(key BucketKey, tick Tick) *Bar {
	return &Bar{
		Symbol:      key.Symbol,
		BucketStart: key.BucketStart,
		Open:        tick.Price,
		High:        tick.Price,
		Low:         tick.Price,
		Close:       tick.Price,
		Volume:      tick.Volume,
		TradeCount:  1,
		VWAP:        tick.Price,
	}
}

// Apply folds a subsequent tick into the bar. Ticks are folded in arrival
// order: close always takes the latest arrival, and high/low use the
// vendor-observed extremes when present, falling back to the traded price.
func (b *Bar) Apply(tick Tick) {
	high := tick.High
	if high == 0 {
		high = tick.Price
	}
	low := tick.Low
	if low == 0 {
		low = tick.Price
	}

	if high > b.High {
		b.High = high
	}
	if low < b.Low {
		b.Low = low
	}
	b.Close = tick.Price

	newVolume := b.Volume + tick.Volume
	if newVolume > 0 {
		b.VWAP = (b.VWAP*float64(b.Volume) + tick.Price*float64(tick.Volume)) / float64(newVolume)
	}
	b.Volume = newVolume
	b.TradeCount++
}

// Key returns the bucket key identifying this bar.
func (b *Bar) Key() BucketKey {
	return BucketKey{Symbol: b.Symbol, BucketStart: b.BucketStart}
}

// OHLCString renders the bar prices for operational snapshots.
func (b *Bar) OHLCString() string {
	return fmt.Sprintf("O:%.2f H:%.2f L:%.2f C:%.2f", b.Open, b.High, b.Low, b.Close)
}
