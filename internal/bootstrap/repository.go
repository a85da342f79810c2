package bootstrap

import (
	barInfra "github.com/quantick/barpipe/internal/infrastructure/questdb/bar"
	quoteInfra "github.com/quantick/barpipe/internal/infrastructure/redis/quote"
)

// Repository holds the storage-layer repositories.
type Repository struct {
	BarRepository barInfra.BarRepository

	// QuoteCache is nil when Redis is not configured.
	QuoteCache *quoteInfra.Cache
}

// registerRepository registers the repositories.
func (b *Bootstrap) registerRepository() {
	b.Repository.BarRepository = barInfra.NewRepository(b.QuestDB)

	if b.Redis != nil {
		b.Repository.QuoteCache = quoteInfra.NewCache(b.Redis, 0)
	}
}
