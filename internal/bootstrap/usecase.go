package bootstrap

import (
	"github.com/quantick/barpipe/internal/domain/market"
	barUc "github.com/quantick/barpipe/internal/usecase/bar"
	quoteUc "github.com/quantick/barpipe/internal/usecase/quote"
)

// Usecase holds the pipeline's usecases.
type Usecase struct {
	BarUsecase market.BarStore

	// QuoteUsecase is nil when Redis is not configured.
	QuoteUsecase market.QuoteStore
}

// registerUsecase registers the usecases.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.BarUsecase = barUc.NewUsecase(b.Repository.BarRepository, b.Logger)

	if b.Repository.QuoteCache != nil {
		b.Usecase.QuoteUsecase = quoteUc.NewUsecase(b.Repository.QuoteCache, b.Logger)
	}
}
