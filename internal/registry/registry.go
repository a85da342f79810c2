package registry

import (
	"sync"

	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/pkg/errors"
	"github.com/quantick/barpipe/pkg/logger"
)

// StreamClient is the subset of the vendor stream client the registry drives.
//
//go:generate mockgen -source=registry.go -destination=mock/registry_mock.go -package=mock
type StreamClient interface {
	Resubscribe() error
	ActiveSymbols() []string
	Close() error
}

// Connection ties one subscriber to its vendor session: the stream client and
// the buffered channel its events are bridged onto.
type Connection struct {
	ID     string
	Client StreamClient
	Events chan streamv1.Event
}

// Status is the per-connection outcome of a registry-wide operation.
type Status struct {
	ID      string `json:"id"`
	Symbols int    `json:"symbols"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

const (
	resultDisconnected = "disconnected"
	resultResubscribed = "resubscribed"
	resultNoSymbols    = "no_symbols"
	resultError        = "error"
)

// Registry tracks every live subscriber connection so operational commands
// can act on all of them at once and teardown is race-free.
type Registry struct {
	logger logger.Interface

	mu    sync.Mutex
	conns map[string]*Connection
}

// New creates an empty registry.
func New(logger logger.Interface) *Registry {
	return &Registry{
		logger: logger,
		conns:  make(map[string]*Connection),
	}
}

// Register adds a connection under its ID. Duplicate IDs are rejected.
func (r *Registry) Register(conn *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.ID]; ok {
		return errors.NewTracer("connection already registered: " + conn.ID)
	}
	r.conns[conn.ID] = conn
	return nil
}

// Get returns the connection registered under id.
func (r *Registry) Get(id string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Teardown removes a connection, pushes a final disconnected event to its
// subscriber, closes the event channel and shuts the stream client down.
// Calling it again for the same ID is a no-op, so the HTTP layer and the
// shutdown path can both call it without coordination.
func (r *Registry) Teardown(id string) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	r.mu.Unlock()

	if !ok {
		return
	}
	r.teardown(conn)
}

// teardown removes the record and shuts the session down. Only the caller
// that wins the removal proceeds, so concurrent teardowns of the same
// connection close the client and the event channel exactly once.
func (r *Registry) teardown(conn *Connection) error {
	r.mu.Lock()
	if _, ok := r.conns[conn.ID]; !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.conns, conn.ID)
	r.mu.Unlock()

	// Close the client first: once it returns, nothing forwards events onto
	// the channel anymore and closing it is safe.
	err := conn.Client.Close()
	if err != nil {
		r.logger.Error(errors.TracerFromError(err), logger.NewField("connection_id", conn.ID))
	}

	select {
	case conn.Events <- streamv1.Event{Type: streamv1.EventDisconnected}:
	default:
	}
	close(conn.Events)

	r.logger.Info("connection torn down", logger.NewField("connection_id", conn.ID))
	return err
}

// TeardownAll tears every live connection down.
func (r *Registry) TeardownAll() {
	for _, id := range r.ids() {
		r.Teardown(id)
	}
}

// ReconnectAll is the blunt recovery command: it disconnects every live
// connection and drops its record, reporting the per-connection outcome.
// Sessions are never redialed here; each subscriber re-establishes its own
// stream on its next attach.
func (r *Registry) ReconnectAll() []Status {
	statuses := make([]Status, 0)
	for _, conn := range r.snapshot() {
		status := Status{
			ID:      conn.ID,
			Symbols: len(conn.Client.ActiveSymbols()),
			Result:  resultDisconnected,
		}
		if err := r.teardown(conn); err != nil {
			status.Result = resultError
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// ResubscribeAll re-sends every connection's symbol subscription on its
// existing socket.
func (r *Registry) ResubscribeAll() []Status {
	statuses := make([]Status, 0)
	for _, conn := range r.snapshot() {
		symbols := conn.Client.ActiveSymbols()
		status := Status{ID: conn.ID, Symbols: len(symbols)}

		switch {
		case len(symbols) == 0:
			status.Result = resultNoSymbols
		default:
			if err := conn.Client.Resubscribe(); err != nil {
				status.Result = resultError
				status.Error = err.Error()
			} else {
				status.Result = resultResubscribed
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func (r *Registry) snapshot() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

func (r *Registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	return out
}
