package quote

import (
	"context"

	"github.com/quantick/barpipe/internal/domain/market"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/internal/infrastructure/redis/quote"
	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

// Usecase keeps the latest quote per symbol.
type Usecase struct {
	cache  *quote.Cache
	logger logger.Interface
}

var _ market.QuoteStore = (*Usecase)(nil)

// NewUsecase creates a new quote usecase.
func NewUsecase(cache *quote.Cache, logger logger.Interface) *Usecase {
	return &Usecase{cache: cache, logger: logger}
}

// Record stores the tick as the symbol's latest quote. Quote staleness is
// tolerable, so failures are logged and swallowed rather than propagated into
// the hot tick path.
func (u *Usecase) Record(ctx context.Context, tick marketv1.Tick) error {
	if err := u.cache.Set(ctx, tick); err != nil {
		u.logger.Error(errors.TracerFromError(err).WithCode(errors.RedisConnectionError),
			logger.NewField("symbol", tick.Symbol))
	}
	return nil
}

// GetLatest returns the symbol's most recent quote, or nil when none exists.
func (u *Usecase) GetLatest(ctx context.Context, symbol string) (*marketv1.Tick, error) {
	tick, err := u.cache.Get(ctx, symbol)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.RedisConnectionError)
	}
	return tick, nil
}
