package stream

import "sync"

// tokenCache maps vendor instrument tokens to symbols, bounded so a vendor
// that rotates tokens cannot grow the map without limit. Eviction is FIFO on
// first-seen order; re-learning an evicted token is cheap since snapshots
// repeat continuously.
type tokenCache struct {
	mu    sync.Mutex
	max   int
	items map[int64]string
	order []int64
}

func newTokenCache(max int) *tokenCache {
	return &tokenCache{
		max:   max,
		items: make(map[int64]string),
	}
}

func (c *tokenCache) put(token int64, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[token]; ok {
		c.items[token] = symbol
		return
	}

	if len(c.items) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}

	c.items[token] = symbol
	c.order = append(c.order, token)
}

func (c *tokenCache) get(token int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	symbol, ok := c.items[token]
	return symbol, ok
}

func (c *tokenCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *tokenCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]string)
	c.order = nil
}
