package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	streamv1 "github.com/quantick/barpipe/internal/domain/stream/v1"
	"github.com/quantick/barpipe/internal/registry"
	"github.com/quantick/barpipe/pkg/logger"
)

// eventBuffer sizes each subscriber's channel. A subscriber that cannot keep
// up loses events rather than backpressuring the vendor read loop.
const eventBuffer = 256

// handleStream serves one subscriber over Server-Sent Events. Each subscriber
// gets its own vendor session, registered so the control surface can act on
// it, and torn down when the subscriber disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	symbols := s.symbolsFromRequest(r)
	if len(symbols) == 0 {
		s.writeError(w, http.StatusBadRequest, "no symbols to stream")
		return
	}

	client := s.newClient()
	events := make(chan streamv1.Event, eventBuffer)
	forward := func(event streamv1.Event) {
		select {
		case events <- event:
		default:
		}
	}
	for _, eventType := range []streamv1.EventType{
		streamv1.EventConnected,
		streamv1.EventTick,
		streamv1.EventBar,
		streamv1.EventError,
		streamv1.EventDisconnected,
	} {
		client.On(eventType, forward)
	}

	id := uuid.NewString()
	conn := &registry.Connection{ID: id, Client: client, Events: events}
	if err := s.registry.Register(conn); err != nil {
		client.Close()
		s.logger.ErrorContext(r.Context(), err)
		s.writeError(w, http.StatusInternalServerError, "failed to register connection")
		return
	}

	if err := client.Connect(r.Context(), symbols); err != nil {
		s.registry.Teardown(id)
		s.logger.ErrorContext(r.Context(), err, logger.NewField("connection_id", id))
		s.writeError(w, http.StatusBadGateway, "failed to connect to vendor stream")
		return
	}

	s.logger.InfoContext(r.Context(), "stream subscriber connected",
		logger.NewField("connection_id", id),
		logger.NewField("symbols", len(symbols)),
	)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	defer s.registry.Teardown(id)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				s.logger.Error(err, logger.NewField("connection_id", id))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
