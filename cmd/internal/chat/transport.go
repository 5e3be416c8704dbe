package chat

import (
	"context"
	"encoding/json"
)

// Event is one named frame received from the messaging server.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Transport is a single established bidirectional connection that exchanges
// named events with the messaging server.
//
// Contract:
//   - Events() delivers inbound events in transport arrival order and is
//     closed exactly once, when the connection drops for any reason.
//   - Emit is safe to call from multiple goroutines; frames emitted from one
//     goroutine are written in call order.
//   - Close is idempotent.
type Transport interface {
	Emit(ctx context.Context, event string, data any) error
	Events() <-chan Event
	Close() error
}

// Dialer opens a new Transport. Implementations must honor the context
// deadline; the client bounds every dial with its connect timeout.
type Dialer func(ctx context.Context) (Transport, error)
