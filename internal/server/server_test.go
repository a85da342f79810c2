package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantick/barpipe/internal/aggregator"
	"github.com/quantick/barpipe/internal/domain/market/mock"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/internal/registry"
	"github.com/quantick/barpipe/internal/stream"
	"github.com/quantick/barpipe/pkg/logger"
)

type fakeAggregator struct {
	mu      sync.Mutex
	buckets []aggregator.BucketStatus
	flushed bool
}

func (f *fakeAggregator) Status() []aggregator.BucketStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]aggregator.BucketStatus(nil), f.buckets...)
}

func (f *fakeAggregator) ForceFlushAll(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed = true
	f.buckets = nil
}

type fakeVendorClient struct {
	mu         sync.Mutex
	handlers   map[streamv1.EventType][]stream.Handler
	symbols    []string
	closed     bool
	connectErr error
	onConnect  []streamv1.Event
}

func newFakeVendorClient() *fakeVendorClient {
	return &fakeVendorClient{handlers: make(map[streamv1.EventType][]stream.Handler)}
}

func (f *fakeVendorClient) On(eventType streamv1.EventType, handler stream.Handler) {
	f.mu.Lock()
	f.handlers[eventType] = append(f.handlers[eventType], handler)
	f.mu.Unlock()
}

func (f *fakeVendorClient) Connect(_ context.Context, symbols []string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.mu.Lock()
	f.symbols = symbols
	f.mu.Unlock()
	for _, ev := range f.onConnect {
		f.emit(ev)
	}
	return nil
}

func (f *fakeVendorClient) emit(event streamv1.Event) {
	f.mu.Lock()
	handlers := append([]stream.Handler(nil), f.handlers[event.Type]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
}

func (f *fakeVendorClient) Resubscribe() error { return nil }

func (f *fakeVendorClient) ActiveSymbols() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.symbols...)
}

func (f *fakeVendorClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeVendorClient) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

type serverFixture struct {
	server     *Server
	aggregator *fakeAggregator
	registry   *registry.Registry
	bars       *mock.MockBarStore
	quotes     *mock.MockQuoteStore
	client     *fakeVendorClient
}

func newFixture(t *testing.T, ctrl *gomock.Controller) *serverFixture {
	t.Helper()

	f := &serverFixture{
		aggregator: &fakeAggregator{},
		registry:   registry.New(newTestLogger(t)),
		bars:       mock.NewMockBarStore(ctrl),
		quotes:     mock.NewMockQuoteStore(ctrl),
		client:     newFakeVendorClient(),
	}
	f.server = New(
		Config{DefaultSymbols: []string{"RELIANCE", "TCS"}, SymbolLimit: 5},
		f.aggregator,
		f.registry,
		f.bars,
		f.quotes,
		func() VendorClient { return f.client },
		newTestLogger(t),
	)
	return f
}

func TestServer_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_AggregatorStatusAndFlush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.aggregator.buckets = []aggregator.BucketStatus{
		{Symbol: "RELIANCE", BucketStart: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC), Volume: 4300},
	}

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/aggregator/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, float64(1), status["live_buckets"])

	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/aggregator/flush", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.aggregator.flushed)

	var flush map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flush))
	assert.Equal(t, "flushed", flush["status"])
	assert.Equal(t, float64(1), flush["buckets"])
}

func TestServer_ConnectionCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	client := newFakeVendorClient()
	client.symbols = []string{"RELIANCE"}
	require.NoError(t, f.registry.Register(&registry.Connection{
		ID:     "conn-1",
		Client: client,
		Events: make(chan streamv1.Event, 1),
	}))

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/connections/resubscribe", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Connections []registry.Status `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Connections, 1)
	assert.Equal(t, "resubscribed", body.Connections[0].Result)

	// Reconnect is the drop-everything recovery command: the session is
	// disconnected and its record removed, not redialed in place.
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/connections/reconnect", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Connections, 1)
	assert.Equal(t, "disconnected", body.Connections[0].Result)
	assert.Equal(t, 0, f.registry.Len())
	assert.True(t, client.isClosed())
}

func TestServer_Bars(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	bars := []*marketv1.Bar{{Symbol: "RELIANCE", Close: 2952}}
	f.bars.EXPECT().GetRecent(gomock.Any(), "RELIANCE", 10).Return(bars, nil)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bars/RELIANCE?limit=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Symbol string          `json:"symbol"`
		Bars   []*marketv1.Bar `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RELIANCE", body.Symbol)
	require.Len(t, body.Bars, 1)
	assert.Equal(t, 2952.0, body.Bars[0].Close)

	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bars/RELIANCE?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_LatestQuote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.quotes.EXPECT().GetLatest(gomock.Any(), "RELIANCE").Return(&marketv1.Tick{Symbol: "RELIANCE", Price: 2950.5}, nil)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quotes/latest/RELIANCE", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var tick marketv1.Tick
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tick))
	assert.Equal(t, 2950.5, tick.Price)

	f.quotes.EXPECT().GetLatest(gomock.Any(), "GHOST").Return(nil, nil)
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quotes/latest/GHOST", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StreamSSE(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.client.onConnect = []streamv1.Event{
		{Type: streamv1.EventConnected},
		{Type: streamv1.EventTick, Tick: &marketv1.Tick{Symbol: "RELIANCE", Price: 2950.5}},
	}

	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream?symbols=reliance,tcs", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, []string{"RELIANCE", "TCS"}, f.client.ActiveSymbols())
	assert.Equal(t, 1, f.registry.Len())

	scanner := bufio.NewScanner(resp.Body)
	var payloads []string
	for scanner.Scan() && len(payloads) < 2 {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			payloads = append(payloads, strings.TrimPrefix(line, "data: "))
		}
	}
	require.Len(t, payloads, 2)

	var connected streamv1.Event
	require.NoError(t, json.Unmarshal([]byte(payloads[0]), &connected))
	assert.Equal(t, streamv1.EventConnected, connected.Type)

	var tickEvent streamv1.Event
	require.NoError(t, json.Unmarshal([]byte(payloads[1]), &tickEvent))
	assert.Equal(t, streamv1.EventTick, tickEvent.Type)
	require.NotNil(t, tickEvent.Tick)
	assert.Equal(t, 2950.5, tickEvent.Tick.Price)

	// Dropping the subscriber tears the vendor session down.
	cancel()
	assert.Eventually(t, func() bool {
		return f.registry.Len() == 0 && f.client.isClosed()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StreamConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)
	f.client.connectErr = context.DeadlineExceeded

	srv := httptest.NewServer(f.server.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, 0, f.registry.Len())
	assert.True(t, f.client.isClosed())
}
