package v1

import (
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
)

// EventType discriminates the events a stream client emits to its listeners.
type EventType string

const (
	// EventConnected fires once the vendor socket is open and subscribed.
	EventConnected EventType = "connected"
	// EventTick fires for every normalized full or partial tick.
	EventTick EventType = "tick"
	// EventBar fires for vendor-aggregated bar rows.
	EventBar EventType = "bar"
	// EventError fires on vendor failure acknowledgements and socket errors.
	EventError EventType = "error"
	// EventDisconnected fires when the underlying socket closes.
	EventDisconnected EventType = "disconnected"
)

// Event is one outbound message on a subscriber's channel, tagged with a
// type discriminator for JSON delivery.
type Event struct {
	Type    EventType      `json:"type"`
	Tick    *marketv1.Tick `json:"tick,omitempty"`
	Bar     *BarUpdate     `json:"bar,omitempty"`
	Message string         `json:"message,omitempty"`
}
