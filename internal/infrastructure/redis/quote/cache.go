package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/redis"
)

const (
	keyPrefix  = "quote:latest:"
	defaultTTL = 5 * time.Minute
)

// Cache keeps the most recent tick per symbol in Redis. Entries expire so a
// symbol that stops trading eventually reads as absent instead of stale.
type Cache struct {
	client redis.Client
	ttl    time.Duration
}

// NewCache creates a quote cache. A zero ttl uses the default.
func NewCache(client redis.Client, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// Set stores the tick as the symbol's latest quote.
func (c *Cache) Set(ctx context.Context, tick marketv1.Tick) error {
	payload, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+tick.Symbol, payload, c.ttl); err != nil {
		return fmt.Errorf("failed to store quote: %w", err)
	}
	return nil
}

// Get returns the symbol's latest quote, or nil when none is cached.
func (c *Cache) Get(ctx context.Context, symbol string) (*marketv1.Tick, error) {
	value, err := c.client.Get(ctx, keyPrefix+symbol)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quote: %w", err)
	}

	var tick marketv1.Tick
	if err := json.Unmarshal([]byte(value), &tick); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &tick, nil
}
