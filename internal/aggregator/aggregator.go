package aggregator

import (
	"container/heap"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quantick/barpipe/internal/domain/market"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/interval"
	"github.com/quantick/barpipe/pkg/logger"
)

// Config holds the aggregator configuration.
type Config struct {
	Interval     interval.Interval
	FlushTimeout time.Duration
}

// BucketStatus is a read-only view of one live bucket for operational
// visibility.
type BucketStatus struct {
	Symbol      string    `json:"symbol"`
	BucketStart time.Time `json:"bucket_start"`
	OHLC        string    `json:"ohlc"`
	Volume      int64     `json:"volume"`
	TradeCount  int64     `json:"trade_count"`
}

// Aggregator folds an unbounded tick stream into minute-bucketed OHLCV bars
// and persists each bucket exactly once at its boundary.
//
// All mutations of the pending-bar table and the deadline heap happen under
// one mutex; the two structures are created and removed together, so a bucket
// is never finalized twice and never dropped while ticks still arrive for it.
// Persistence and publishing run outside the critical section.
type Aggregator struct {
	cfg       Config
	store     market.BarStore
	publisher market.BarPublisher
	logger    logger.Interface

	mu        sync.Mutex
	bars      map[marketv1.BucketKey]*marketv1.Bar
	deadlines deadlineHeap

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ market.TickSink = (*Aggregator)(nil)

// New creates an aggregator. The publisher may be nil when bar publishing is
// disabled.
func New(cfg Config, store market.BarStore, publisher market.BarPublisher, logger logger.Interface) *Aggregator {
	if cfg.Interval.Duration == 0 {
		cfg.Interval = interval.Minute
	}
	if cfg.FlushTimeout == 0 {
		cfg.FlushTimeout = 5 * time.Second
	}

	return &Aggregator{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		logger:    logger,
		bars:      make(map[marketv1.BucketKey]*marketv1.Bar),
		wake:      make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the finalize loop.
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.run(ctx)
}

// Stop terminates the finalize loop and force-flushes every live bucket with
// a bounded wait. Safe to call more than once.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
	a.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.FlushTimeout)
	defer cancel()
	a.ForceFlushAll(ctx)
}

// ProcessTick folds one tick into its bucket's live bar. Malformed ticks are
// dropped with a warning; streaming vendor data is noisy and must never halt
// the pipeline.
func (a *Aggregator) ProcessTick(tick marketv1.Tick) {
	if tick.Symbol == "" || tick.Price <= 0 || tick.Volume < 0 || tick.Timestamp.IsZero() {
		a.logger.Warn("dropping malformed tick",
			logger.NewField("symbol", tick.Symbol),
			logger.NewField("price", tick.Price),
			logger.NewField("volume", tick.Volume),
			logger.NewField("timestamp", tick.Timestamp),
		)
		return
	}

	key := marketv1.BucketKey{
		Symbol:      tick.Symbol,
		BucketStart: a.cfg.Interval.BucketStart(tick.Timestamp),
	}

	a.mu.Lock()
	if bar, ok := a.bars[key]; ok {
		bar.Apply(tick)
		a.mu.Unlock()
		return
	}

	a.bars[key] = marketv1.NewBar(key, tick)
	// The finalize deadline derives from the tick's own timestamp so that
	// back-dated ticks still schedule against their bucket boundary.
	heap.Push(&a.deadlines, deadline{at: a.cfg.Interval.BucketEnd(tick.Timestamp), key: key})
	a.mu.Unlock()

	a.notify()
}

// ForceFlushAll finalizes every currently live bucket immediately and
// concurrently, regardless of its natural boundary. Buckets created after the
// snapshot is taken are not included. Per-bucket persistence failures are
// swallowed individually.
func (a *Aggregator) ForceFlushAll(ctx context.Context) {
	a.mu.Lock()
	snapshot := make([]*marketv1.Bar, 0, len(a.bars))
	for key, bar := range a.bars {
		snapshot = append(snapshot, bar)
		delete(a.bars, key)
	}
	a.mu.Unlock()

	var wg sync.WaitGroup
	for _, bar := range snapshot {
		wg.Add(1)
		go func(b *marketv1.Bar) {
			defer wg.Done()
			a.finalize(ctx, b)
		}(bar)
	}
	wg.Wait()
}

// Status returns a snapshot of all live buckets, sorted for stable output.
// It never mutates aggregator state.
func (a *Aggregator) Status() []BucketStatus {
	a.mu.Lock()
	out := make([]BucketStatus, 0, len(a.bars))
	for _, bar := range a.bars {
		out = append(out, BucketStatus{
			Symbol:      bar.Symbol,
			BucketStart: bar.BucketStart,
			OHLC:        bar.OHLCString(),
			Volume:      bar.Volume,
			TradeCount:  bar.TradeCount,
		})
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].BucketStart.Before(out[j].BucketStart)
	})
	return out
}

// run drives the deadline heap with a single timer. Waking on new earliest
// deadlines keeps the timer honest when a back-dated tick schedules a bucket
// that is already due.
func (a *Aggregator) run(ctx context.Context) {
	defer a.wg.Done()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		a.mu.Lock()
		wait := time.Hour
		if len(a.deadlines) > 0 {
			wait = time.Until(a.deadlines[0].at)
			if wait < 0 {
				wait = 0
			}
		}
		a.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		case <-a.wake:
		case <-timer.C:
			a.finalizeDue(ctx, time.Now())
		}
	}
}

// finalizeDue removes every bucket whose deadline has passed cutoff and
// persists it. Removal happens atomically with the deadline pop, so a
// deadline whose bucket was already force-flushed is a no-op.
func (a *Aggregator) finalizeDue(ctx context.Context, cutoff time.Time) {
	a.mu.Lock()
	var due []*marketv1.Bar
	for len(a.deadlines) > 0 && !a.deadlines[0].at.After(cutoff) {
		d := heap.Pop(&a.deadlines).(deadline)
		bar, ok := a.bars[d.key]
		if !ok {
			continue
		}
		delete(a.bars, d.key)
		due = append(due, bar)
	}
	a.mu.Unlock()

	for _, bar := range due {
		a.finalize(ctx, bar)
	}
}

// finalize persists one removed bar and hands it to the publisher. The bar is
// already out of the live table: a persistence failure loses it, which is the
// accepted availability-over-durability tradeoff for this pipeline.
func (a *Aggregator) finalize(ctx context.Context, bar *marketv1.Bar) {
	if err := a.store.Store(ctx, bar); err != nil {
		a.logger.Error(errors.TracerFromError(err).WithCode(errors.PersistenceError),
			logger.NewField("symbol", bar.Symbol),
			logger.NewField("bucket_start", bar.BucketStart),
		)
	}

	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, bar); err != nil {
		a.logger.Error(errors.TracerFromError(err),
			logger.NewField("symbol", bar.Symbol),
			logger.NewField("bucket_start", bar.BucketStart),
		)
	}
}

func (a *Aggregator) notify() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}
