package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quantick/barpipe/internal/aggregator"
	"github.com/quantick/barpipe/internal/domain/market"
	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/internal/registry"
	"github.com/quantick/barpipe/internal/stream"
	"github.com/quantick/barpipe/pkg/logger"
)

const (
	defaultBarLimit = 100
	maxBarLimit     = 1000
)

// BarAggregator is the aggregator surface the server exposes operationally.
type BarAggregator interface {
	Status() []aggregator.BucketStatus
	ForceFlushAll(ctx context.Context)
}

// VendorClient is one vendor stream session as the server drives it.
type VendorClient interface {
	registry.StreamClient
	Connect(ctx context.Context, symbols []string) error
	On(eventType streamv1.EventType, handler stream.Handler)
}

// ClientFactory builds a fresh vendor session for one subscriber.
type ClientFactory func() VendorClient

// Config holds the server's subscription defaults.
type Config struct {
	// DefaultSymbols is the universe streamed when a subscriber names none.
	DefaultSymbols []string
	// SymbolLimit caps the symbols one subscriber may request.
	SymbolLimit int
}

// Server exposes the live stream over SSE and the operational control
// surface over plain JSON endpoints.
type Server struct {
	cfg        Config
	aggregator BarAggregator
	registry   *registry.Registry
	bars       market.BarStore
	quotes     market.QuoteStore
	newClient  ClientFactory
	logger     logger.Interface
}

// New creates the HTTP server. quotes may be nil when the quote cache is
// disabled.
func New(
	cfg Config,
	agg BarAggregator,
	reg *registry.Registry,
	bars market.BarStore,
	quotes market.QuoteStore,
	newClient ClientFactory,
	logger logger.Interface,
) *Server {
	return &Server{
		cfg:        cfg,
		aggregator: agg,
		registry:   reg,
		bars:       bars,
		quotes:     quotes,
		newClient:  newClient,
		logger:     logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /aggregator/status", s.handleAggregatorStatus)
	mux.HandleFunc("POST /aggregator/flush", s.handleAggregatorFlush)
	mux.HandleFunc("POST /connections/reconnect", s.handleReconnect)
	mux.HandleFunc("POST /connections/resubscribe", s.handleResubscribe)
	mux.HandleFunc("GET /bars/{symbol}", s.handleBars)
	mux.HandleFunc("GET /quotes/latest/{symbol}", s.handleLatestQuote)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.registry.Len(),
		"time":        time.Now().UTC(),
	})
}

func (s *Server) handleAggregatorStatus(w http.ResponseWriter, r *http.Request) {
	buckets := s.aggregator.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"live_buckets": len(buckets),
		"buckets":      buckets,
	})
}

func (s *Server) handleAggregatorFlush(w http.ResponseWriter, r *http.Request) {
	flushed := len(s.aggregator.Status())
	s.aggregator.ForceFlushAll(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "flushed",
		"buckets": flushed,
	})
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	statuses := s.registry.ReconnectAll()
	s.writeJSON(w, http.StatusOK, map[string]any{"connections": statuses})
}

func (s *Server) handleResubscribe(w http.ResponseWriter, r *http.Request) {
	statuses := s.registry.ResubscribeAll()
	s.writeJSON(w, http.StatusOK, map[string]any{"connections": statuses})
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	limit := defaultBarLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxBarLimit {
			parsed = maxBarLimit
		}
		limit = parsed
	}

	bars, err := s.bars.GetRecent(r.Context(), symbol, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), err, logger.NewField("symbol", symbol))
		s.writeError(w, http.StatusInternalServerError, "failed to load bars")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"bars":   bars,
	})
}

func (s *Server) handleLatestQuote(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		s.writeError(w, http.StatusServiceUnavailable, "quote cache is disabled")
		return
	}

	symbol := r.PathValue("symbol")
	quote, err := s.quotes.GetLatest(r.Context(), symbol)
	if err != nil {
		s.logger.ErrorContext(r.Context(), err, logger.NewField("symbol", symbol))
		s.writeError(w, http.StatusInternalServerError, "failed to load quote")
		return
	}
	if quote == nil {
		s.writeError(w, http.StatusNotFound, "no quote for symbol")
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}

func (s *Server) symbolsFromRequest(r *http.Request) []string {
	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		return append([]string(nil), s.cfg.DefaultSymbols...)
	}

	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		symbol := strings.ToUpper(strings.TrimSpace(part))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	if s.cfg.SymbolLimit > 0 && len(symbols) > s.cfg.SymbolLimit {
		symbols = symbols[:s.cfg.SymbolLimit]
	}
	return symbols
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error(err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
