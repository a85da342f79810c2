package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantick/barpipe/internal/domain/market/mock"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/logger"
)

func newTestLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func tick(symbol string, ts time.Time, price float64, volume int64) marketv1.Tick {
	return marketv1.Tick{Symbol: symbol, Timestamp: ts, Price: price, Volume: volume}
}

func TestProcessTick_TwoBucketScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(5*time.Second), 100, 10))
	agg.ProcessTick(tick("SYM", base.Add(40*time.Second), 105, 5))
	agg.ProcessTick(tick("SYM", base.Add(62*time.Second), 102, 20))

	stored := map[time.Time]*marketv1.Bar{}
	store.EXPECT().Store(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, bar *marketv1.Bar) error {
			stored[bar.BucketStart] = bar
			return nil
		})

	agg.finalizeDue(context.Background(), base.Add(2*time.Minute))

	first := stored[base]
	require.NotNil(t, first)
	assert.Equal(t, "SYM", first.Symbol)
	assert.Equal(t, float64(100), first.Open)
	assert.Equal(t, float64(105), first.High)
	assert.Equal(t, float64(100), first.Low)
	assert.Equal(t, float64(105), first.Close)
	assert.Equal(t, int64(15), first.Volume)
	assert.Equal(t, int64(2), first.TradeCount)

	second := stored[base.Add(time.Minute)]
	require.NotNil(t, second)
	assert.Equal(t, float64(102), second.Open)
	assert.Equal(t, float64(102), second.Close)
	assert.Equal(t, int64(20), second.Volume)
	assert.Equal(t, int64(1), second.TradeCount)

	assert.Empty(t, agg.Status())
}

func TestProcessTick_MalformedDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		tick marketv1.Tick
	}{
		{name: "missing price", tick: marketv1.Tick{Symbol: "SYM", Timestamp: base.Add(10 * time.Second), Volume: 5}},
		{name: "missing symbol", tick: marketv1.Tick{Timestamp: base.Add(11 * time.Second), Price: 101, Volume: 5}},
		{name: "zero timestamp", tick: marketv1.Tick{Symbol: "SYM", Price: 101, Volume: 5}},
		{name: "negative volume", tick: marketv1.Tick{Symbol: "SYM", Timestamp: base.Add(12 * time.Second), Price: 101, Volume: -5}},
	}

	agg.ProcessTick(tick("SYM", base.Add(5*time.Second), 100, 10))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg.ProcessTick(tc.tick)
		})
	}
	agg.ProcessTick(tick("SYM", base.Add(30*time.Second), 104, 7))

	status := agg.Status()
	require.Len(t, status, 1)
	assert.Equal(t, int64(17), status[0].Volume)
	assert.Equal(t, int64(2), status[0].TradeCount)
}

func TestProcessTick_VWAPRunningAverage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	ticks := []struct {
		price  float64
		volume int64
	}{
		{100, 10},
		{104, 0}, // zero-volume trades must not move VWAP
		{110, 30},
		{98, 5},
	}

	var sumPV, sumV float64
	for i, tk := range ticks {
		agg.ProcessTick(tick("SYM", base.Add(time.Duration(i)*time.Second), tk.price, tk.volume))
		sumPV += tk.price * float64(tk.volume)
		sumV += float64(tk.volume)
	}

	var got *marketv1.Bar
	store.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bar *marketv1.Bar) error {
			got = bar
			return nil
		})
	agg.finalizeDue(context.Background(), base.Add(time.Minute))

	require.NotNil(t, got)
	assert.InDelta(t, sumPV/sumV, got.VWAP, 1e-9)
}

func TestProcessTick_VWAPAllZeroVolume(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(time.Second), 100, 0))
	agg.ProcessTick(tick("SYM", base.Add(2*time.Second), 120, 0))

	var got *marketv1.Bar
	store.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, bar *marketv1.Bar) error {
			got = bar
			return nil
		})
	agg.finalizeDue(context.Background(), base.Add(time.Minute))

	require.NotNil(t, got)
	// Seeded from the first tick and never NaN.
	assert.Equal(t, float64(100), got.VWAP)
	assert.Equal(t, int64(0), got.Volume)
}

func TestProcessTick_VendorHighLowPreferred(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(time.Second), 100, 1))

	wide := tick("SYM", base.Add(2*time.Second), 101, 1)
	wide.High = 110
	wide.Low = 95
	agg.ProcessTick(wide)

	status := agg.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "O:100.00 H:110.00 L:95.00 C:101.00", status[0].OHLC)
}

func TestFinalize_ExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(time.Second), 100, 1))
	agg.ProcessTick(tick("SYM", base.Add(30*time.Second), 101, 2))

	store.EXPECT().Store(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	cutoff := base.Add(2 * time.Minute)
	agg.finalizeDue(context.Background(), cutoff)
	// A second pass over the same cutoff must be a no-op: both the bar and
	// its deadline were removed together.
	agg.finalizeDue(context.Background(), cutoff)
}

func TestForceFlushAll_FreshBarAfterFlush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(5*time.Second), 100, 10))

	var flushed []*marketv1.Bar
	store.EXPECT().Store(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, bar *marketv1.Bar) error {
			flushed = append(flushed, bar)
			return nil
		})

	agg.ForceFlushAll(context.Background())
	assert.Empty(t, agg.Status())

	// A later tick in the same original minute opens a new bar rather than
	// resurrecting flushed state.
	agg.ProcessTick(tick("SYM", base.Add(40*time.Second), 107, 3))
	status := agg.Status()
	require.Len(t, status, 1)
	assert.Equal(t, int64(3), status[0].Volume)
	assert.Equal(t, "O:107.00 H:107.00 L:107.00 C:107.00", status[0].OHLC)

	agg.finalizeDue(context.Background(), base.Add(time.Minute))

	require.Len(t, flushed, 2)
	assert.Equal(t, float64(100), flushed[0].Open)
	assert.Equal(t, float64(107), flushed[1].Open)
}

func TestForceFlushAll_ErrorsSwallowedPerBucket(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("AAA", base.Add(time.Second), 100, 1))
	agg.ProcessTick(tick("BBB", base.Add(time.Second), 200, 1))

	store.EXPECT().Store(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, bar *marketv1.Bar) error {
			if bar.Symbol == "AAA" {
				return errors.New("store unavailable")
			}
			return nil
		})

	// One bucket failing must not block the other, and the failed bar is
	// dropped from live state rather than retried.
	agg.ForceFlushAll(context.Background())
	assert.Empty(t, agg.Status())
}

func TestFinalize_PublishesAfterStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	publisher := mock.NewMockBarPublisher(ctrl)
	agg := New(Config{}, store, publisher, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("SYM", base.Add(time.Second), 100, 1))

	store.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	agg.finalizeDue(context.Background(), base.Add(time.Minute))
}

func TestStatus_SortedSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{}, store, nil, newTestLogger(t))

	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	agg.ProcessTick(tick("BBB", base.Add(time.Second), 200, 1))
	agg.ProcessTick(tick("AAA", base.Add(62*time.Second), 101, 1))
	agg.ProcessTick(tick("AAA", base.Add(time.Second), 100, 1))

	status := agg.Status()
	require.Len(t, status, 3)
	assert.Equal(t, "AAA", status[0].Symbol)
	assert.Equal(t, base, status[0].BucketStart)
	assert.Equal(t, "AAA", status[1].Symbol)
	assert.Equal(t, base.Add(time.Minute), status[1].BucketStart)
	assert.Equal(t, "BBB", status[2].Symbol)
}

func TestStartStop_FlushesOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock.NewMockBarStore(ctrl)
	agg := New(Config{FlushTimeout: time.Second}, store, nil, newTestLogger(t))

	agg.Start(context.Background())

	base := time.Now().UTC().Truncate(time.Minute)
	agg.ProcessTick(tick("SYM", base.Add(time.Second), 100, 1))

	store.EXPECT().Store(gomock.Any(), gomock.Any()).Times(1).Return(nil)
	agg.Stop()
	assert.Empty(t, agg.Status())
}
