package bar

import (
	"context"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

// BarRepository defines persistence for finalized minute bars.
//
//go:generate mockgen -source=interface.go -destination=mock/interface_mock.go -package=mock
type BarRepository interface {
	Upsert(ctx context.Context, bar *marketv1.Bar) error
	GetRecent(ctx context.Context, symbol string, limit int) ([]*marketv1.Bar, error)
	GetLatest(ctx context.Context, symbol string) (*marketv1.Bar, error)
}
