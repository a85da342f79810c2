package bar

import (
	"context"
	"fmt"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/questdb"
)

// Repository persists finalized minute bars. The bars_1m table is created
// with DEDUP UPSERT KEYS(timestamp, symbol), so re-inserting the same bucket
// replaces the row instead of duplicating it and Upsert stays idempotent.
type Repository struct {
	client questdb.QuestDBClient
}

// NewRepository creates a new bar repository.
func NewRepository(client questdb.QuestDBClient) *Repository {
	return &Repository{
		client: client,
	}
}

// Upsert writes one finalized bar.
func (r *Repository) Upsert(ctx context.Context, bar *marketv1.Bar) error {
	query := `INSERT INTO bars_1m (timestamp, symbol, open, high, low, close, volume, trade_count, vwap)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	err := r.client.Exec(ctx, query,
		bar.BucketStart, bar.Symbol, bar.Open, bar.High,
		bar.Low, bar.Close, bar.Volume, bar.TradeCount, bar.VWAP)

	if err != nil {
		return fmt.Errorf("failed to upsert bar: %w", err)
	}

	return nil
}

// GetRecent returns up to limit bars for a symbol, newest first.
func (r *Repository) GetRecent(ctx context.Context, symbol string, limit int) ([]*marketv1.Bar, error) {
	query := `SELECT timestamp, symbol, open, high, low, close, volume, trade_count, vwap
			  FROM bars_1m WHERE symbol = $1 ORDER BY timestamp DESC LIMIT $2`

	rows, err := r.client.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bars: %w", err)
	}
	defer rows.Close()

	var bars []*marketv1.Bar
	for rows.Next() {
		bar := &marketv1.Bar{}
		if err := rows.Scan(&bar.BucketStart, &bar.Symbol, &bar.Open, &bar.High,
			&bar.Low, &bar.Close, &bar.Volume, &bar.TradeCount, &bar.VWAP); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bars: %w", err)
	}

	return bars, nil
}

// GetLatest returns the most recent bar for a symbol, or nil when the symbol
// has no bars yet.
func (r *Repository) GetLatest(ctx context.Context, symbol string) (*marketv1.Bar, error) {
	bars, err := r.GetRecent(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	return bars[0], nil
}
