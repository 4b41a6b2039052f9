package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

// MessageType identifies a message kind on the internal bus.
type MessageType string

const (
	MsgLoadCustomFilterInfo    MessageType = "LoadCustomFilterInfo"
	MsgSubscribeToCustomFilter MessageType = "SubscribeToCustomFilter"
	MsgRemoveAntiBannerFilter  MessageType = "RemoveAntiBannerFilter"
)

// Message is the request envelope carried over the bus.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HandlerFunc handles one message kind. One message produces at most one
// response.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Dispatcher is a typed dispatch table mapping message kinds to handlers.
// It is constructed once at startup and passed by reference to whatever owns
// the message loop; there is no global registry.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageType]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[MessageType]HandlerFunc)}
}

// Register binds a handler to a message kind. Re-registering a kind is a
// wiring bug and returns an error.
func (d *Dispatcher) Register(t MessageType, fn HandlerFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[t]; ok {
		return fmt.Errorf("messaging: handler already registered for %q", t)
	}
	d.handlers[t] = fn
	return nil
}

// Dispatch routes a message to its handler and returns the single response.
// Unknown kinds produce a validation error; handler errors propagate
// unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) (any, error) {
	d.mu.RLock()
	fn, ok := d.handlers[msg.Type]
	d.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.CodeValidation, fmt.Sprintf("unknown message type: %q", msg.Type), nil)
	}

	slog.Debug("dispatching message", "type", msg.Type)
	return fn(ctx, msg.Data)
}

// Kinds returns the registered message kinds.
func (d *Dispatcher) Kinds() []MessageType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]MessageType, 0, len(d.handlers))
	for t := range d.handlers {
		out = append(out, t)
	}
	return out
}
