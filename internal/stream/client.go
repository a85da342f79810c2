package stream

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/quantick/barpipe/internal/domain/market"
	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

const defaultTokenCacheSize = 10000

// Config holds one vendor connection's endpoint and subscription settings.
type Config struct {
	StreamURL   string
	User        string
	Password    string
	BarInterval string
	// TokenCacheSize bounds the learned token to symbol map. Zero means the
	// default.
	TokenCacheSize int
}

// Handler receives one event from the vendor stream.
type Handler func(event streamv1.Event)

// subscribeRequest is the vendor's symbol subscription message.
type subscribeRequest struct {
	Method  string   `json:"method"`
	Symbols []string `json:"symbols"`
	Bars    string   `json:"bars"`
}

// Client maintains one websocket session against the vendor feed. It decodes
// multiplexed frames, learns the vendor's numeric instrument tokens from
// snapshot frames, pushes normalized priced ticks into the sink, and fans
// every event out to the registered handlers.
type Client struct {
	cfg    Config
	sink   market.TickSink
	logger logger.Interface
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	symbols  []string
	handlers map[streamv1.EventType][]Handler
	tokens   *tokenCache
	closed   bool

	wg sync.WaitGroup
}

// NewClient creates a disconnected client. The sink may be nil when the
// connection only serves event subscribers.
func NewClient(cfg Config, sink market.TickSink, logger logger.Interface) *Client {
	if cfg.TokenCacheSize <= 0 {
		cfg.TokenCacheSize = defaultTokenCacheSize
	}
	if cfg.BarInterval == "" {
		cfg.BarInterval = "1min"
	}

	return &Client{
		cfg:      cfg,
		sink:     sink,
		logger:   logger,
		dialer:   websocket.DefaultDialer,
		handlers: make(map[streamv1.EventType][]Handler),
		tokens:   newTokenCache(cfg.TokenCacheSize),
	}
}

// On registers a handler for one event type. Handlers run on the read loop
// goroutine and must not block.
func (c *Client) On(eventType streamv1.EventType, handler Handler) {
	c.mu.Lock()
	c.handlers[eventType] = append(c.handlers[eventType], handler)
	c.mu.Unlock()
}

// Connect dials the vendor, subscribes the given symbols and starts the read
// loop. It is an error to connect an already connected or closed client.
func (c *Client) Connect(ctx context.Context, symbols []string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.NewTracer("stream client is closed").WithCode(errors.VendorStreamError)
	}
	if c.conn != nil {
		c.mu.Unlock()
		return errors.NewTracer("stream client already connected").WithCode(errors.VendorStreamError)
	}
	c.mu.Unlock()

	return c.dial(ctx, symbols)
}

func (c *Client) dial(ctx context.Context, symbols []string) error {
	endpoint, err := url.Parse(c.cfg.StreamURL)
	if err != nil {
		return errors.TracerFromError(err).WithCode(errors.VendorStreamError)
	}
	query := endpoint.Query()
	query.Set("user", c.cfg.User)
	query.Set("password", c.cfg.Password)
	endpoint.RawQuery = query.Encode()

	conn, _, err := c.dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return errors.TracerFromError(err).WithCode(errors.VendorStreamError)
	}

	if err := conn.WriteJSON(subscribeRequest{
		Method:  "addsymbol",
		Symbols: symbols,
		Bars:    c.cfg.BarInterval,
	}); err != nil {
		conn.Close()
		return errors.TracerFromError(err).WithCode(errors.VendorStreamError)
	}

	c.mu.Lock()
	c.conn = conn
	c.symbols = append([]string(nil), symbols...)
	c.mu.Unlock()

	c.emit(streamv1.Event{Type: streamv1.EventConnected})

	c.wg.Add(1)
	go c.readLoop(conn)

	return nil
}

// Resubscribe re-sends the subscription for the connection's active symbols.
// Used after a vendor-side subscription reset without tearing the socket down.
func (c *Client) Resubscribe() error {
	c.mu.Lock()
	conn := c.conn
	symbols := append([]string(nil), c.symbols...)
	c.mu.Unlock()

	if conn == nil {
		return errors.NewTracer("stream client is not connected").WithCode(errors.VendorStreamError)
	}
	if len(symbols) == 0 {
		return errors.NewTracer("no symbols subscribed").WithCode(errors.VendorStreamError)
	}

	if err := conn.WriteJSON(subscribeRequest{
		Method:  "addsymbol",
		Symbols: symbols,
		Bars:    c.cfg.BarInterval,
	}); err != nil {
		return errors.TracerFromError(err).WithCode(errors.VendorStreamError)
	}
	return nil
}

// ActiveSymbols returns the symbols this connection is subscribed to.
func (c *Client) ActiveSymbols() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.symbols...)
}

// Close tears the session down: the socket closes, the read loop drains, and
// handlers plus the learned token map are released. Safe to call repeatedly
// and before Connect.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()

	c.mu.Lock()
	c.handlers = make(map[streamv1.EventType][]Handler)
	c.tokens.reset()
	c.symbols = nil
	c.mu.Unlock()

	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()

			if !closed {
				c.logger.Warn("vendor stream read failed", logger.NewField("error", err.Error()))
				conn.Close()
			}
			c.emit(streamv1.Event{Type: streamv1.EventDisconnected})
			return
		}
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	frame, err := streamv1.DecodeFrame(data)
	if err != nil {
		c.logger.Warn("dropping undecodable vendor frame", logger.NewField("error", err.Error()))
		return
	}

	switch frame.Kind {
	case streamv1.KindSnapshot:
		for _, record := range frame.Snapshot {
			c.tokens.put(record.Token, record.Tick.Symbol)
			tick := record.Tick
			c.emit(streamv1.Event{Type: streamv1.EventTick, Tick: &tick})
			if c.sink != nil {
				c.sink.ProcessTick(tick)
			}
		}

	case streamv1.KindBarBatch:
		for _, bar := range frame.Bars {
			symbol, ok := c.tokens.get(bar.Token)
			if !ok {
				c.logger.Debug("dropping bar for unknown token", logger.NewField("token", bar.Token))
				continue
			}
			bar.Symbol = symbol
			update := bar
			c.emit(streamv1.Event{Type: streamv1.EventBar, Bar: &update})
		}

	case streamv1.KindBidAsk:
		if frame.BidAsk == nil {
			return
		}
		symbol, ok := c.tokens.get(frame.BidAsk.Token)
		if !ok {
			c.logger.Debug("dropping bidask for unknown token", logger.NewField("token", frame.BidAsk.Token))
			return
		}
		// Bid/ask updates carry no traded price, so they reach event
		// subscribers but never the aggregation sink.
		tick := streamv1.TickFromBidAsk(symbol, frame.BidAsk)
		c.emit(streamv1.Event{Type: streamv1.EventTick, Tick: &tick})

	case streamv1.KindHeartbeat:
		c.logger.Debug("vendor heartbeat")

	case streamv1.KindFailure:
		c.logger.Warn("vendor failure acknowledgement", logger.NewField("message", frame.Message))
		c.emit(streamv1.Event{Type: streamv1.EventError, Message: frame.Message})

	default:
		c.logger.Debug("ignoring unknown vendor frame")
	}
}

func (c *Client) emit(event streamv1.Event) {
	c.mu.Lock()
	handlers := append([]Handler(nil), c.handlers[event.Type]...)
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
