package contract

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/GauravKarakoti/ConwayBets/core"
)

// Handler is the function signature every operation module must implement.
// The returned value is the operation's response (nil for operations that
// declare none) and travels back to the dispatching caller untouched.
type Handler func(ctx *Context, payload json.RawMessage) (any, error)

// MsgHandler consumes one inbound cross-chain message kind.
type MsgHandler func(ctx *Context, msg core.Message) error

// Registry maps operation and message types to handlers. Thread-safe for
// concurrent registration.
type Registry struct {
	mu   sync.RWMutex
	ops  map[core.OpType]Handler
	msgs map[core.MsgType]MsgHandler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		ops:  make(map[core.OpType]Handler),
		msgs: make(map[core.MsgType]MsgHandler),
	}
}

// Register associates typ with h. Panics on duplicate registration.
func (r *Registry) Register(typ core.OpType, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[typ]; exists {
		panic(fmt.Sprintf("contract: handler already registered for operation %q", typ))
	}
	r.ops[typ] = h
}

// RegisterMessage associates typ with h. Panics on duplicate registration.
func (r *Registry) RegisterMessage(typ core.MsgType, h MsgHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.msgs[typ]; exists {
		panic(fmt.Sprintf("contract: handler already registered for message %q", typ))
	}
	r.msgs[typ] = h
}

// Execute dispatches payload to the handler registered for typ. The
// handler's error always propagates to the caller; nothing is swallowed at
// this boundary.
func (r *Registry) Execute(typ core.OpType, ctx *Context, payload json.RawMessage) (any, error) {
	r.mu.RLock()
	h, ok := r.ops[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("contract: no handler registered for operation %q", typ)
	}
	return h(ctx, payload)
}

// ExecuteMessage dispatches an inbound message to its registered handler.
func (r *Registry) ExecuteMessage(ctx *Context, msg core.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	r.mu.RLock()
	h, ok := r.msgs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("contract: no handler registered for message %q", msg.Type)
	}
	return h(ctx, msg)
}

// globalRegistry is the package-level singleton that modules register into.
var globalRegistry = NewRegistry()

// Register adds an operation handler to the global registry.
// Module init() functions call this to self-register.
func Register(typ core.OpType, h Handler) {
	globalRegistry.Register(typ, h)
}

// RegisterMessage adds a message handler to the global registry.
func RegisterMessage(typ core.MsgType, h MsgHandler) {
	globalRegistry.RegisterMessage(typ, h)
}

// Execute dispatches against the global registry.
func Execute(typ core.OpType, ctx *Context, payload json.RawMessage) (any, error) {
	return globalRegistry.Execute(typ, ctx, payload)
}

// ExecuteMessage dispatches against the global registry.
func ExecuteMessage(ctx *Context, msg core.Message) error {
	return globalRegistry.ExecuteMessage(ctx, msg)
}
