package bar

import (
	"context"

	"github.com/quantick/barpipe/internal/domain/market"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/internal/infrastructure/questdb/bar"
	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

// Usecase is the usecase for finalized bars.
type Usecase struct {
	barRepository bar.BarRepository
	logger        logger.Interface
}

var _ market.BarStore = (*Usecase)(nil)

// NewUsecase creates a new bar usecase.
func NewUsecase(barRepository bar.BarRepository, logger logger.Interface) *Usecase {
	return &Usecase{barRepository: barRepository, logger: logger}
}

// Store persists one finalized bar.
func (u *Usecase) Store(ctx context.Context, b *marketv1.Bar) error {
	if err := u.barRepository.Upsert(ctx, b); err != nil {
		return errors.TracerFromError(err).WithCode(errors.PersistenceError)
	}
	return nil
}

// GetRecent returns up to limit bars for a symbol, newest first.
func (u *Usecase) GetRecent(ctx context.Context, symbol string, limit int) ([]*marketv1.Bar, error) {
	bars, err := u.barRepository.GetRecent(ctx, symbol, limit)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.PersistenceError)
	}
	return bars, nil
}

// GetLatest returns the most recent bar for a symbol.
func (u *Usecase) GetLatest(ctx context.Context, symbol string) (*marketv1.Bar, error) {
	b, err := u.barRepository.GetLatest(ctx, symbol)
	if err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.PersistenceError)
	}
	return b, nil
}
