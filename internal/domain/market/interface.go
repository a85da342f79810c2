package market

import (
	"context"

	v1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock

// BarStore persists finalized bars and serves recent history. Upserts must be
// idempotent per (symbol, bucket timestamp).
type BarStore interface {
	Store(ctx context.Context, bar *v1.Bar) error
	GetRecent(ctx context.Context, symbol string, limit int) ([]*v1.Bar, error)
	GetLatest(ctx context.Context, symbol string) (*v1.Bar, error)
}

// BarPublisher fans finalized bars out to downstream consumers.
type BarPublisher interface {
	Publish(ctx context.Context, bar *v1.Bar) error
	Close() error
}

// TickSink consumes normalized ticks from the stream layer.
type TickSink interface {
	ProcessTick(tick v1.Tick)
}

// QuoteStore keeps the most recent tick per symbol for fast reads.
type QuoteStore interface {
	Record(ctx context.Context, tick v1.Tick) error
	GetLatest(ctx context.Context, symbol string) (*v1.Tick, error)
}
