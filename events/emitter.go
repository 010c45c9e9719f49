package events

import (
	"log"
	"sync"
)

// EventType labels what happened.
type EventType string

const (
	EventMarketCreated EventType = "market_created"
	EventBetPlaced     EventType = "bet_placed"
	EventBetApplied    EventType = "bet_applied"
	EventStateSynced   EventType = "state_synced"
	EventInitialized   EventType = "market_initialized"
	EventMessageSent   EventType = "message_sent"
)

// Event carries a typed payload emitted after a state change.
type Event struct {
	Type    EventType      `json:"type"`
	ChainID string         `json:"chain_id"`
	OpID    string         `json:"op_id,omitempty"`
	Height  uint64         `json:"height"`
	Data    map[string]any `json:"data"`
}

// Handler is a callback invoked for matching events.
type Handler func(Event)

// Emitter is a simple pub/sub broker. Subscribe before Emit.
type Emitter struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h to be called whenever typ is emitted.
func (e *Emitter) Subscribe(typ EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[typ] = append(e.handlers[typ], h)
}

// SubscribeAll registers h for every event type. Used by the event feed.
func (e *Emitter) SubscribeAll(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, h)
}

// Emit delivers ev to all subscribers for ev.Type synchronously.
// Each handler is guarded by panic recovery so a misbehaving subscriber
// cannot halt operation execution.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.handlers[ev.Type])+len(e.all))
	handlers = append(handlers, e.handlers[ev.Type]...)
	handlers = append(handlers, e.all...)
	e.mu.RUnlock()
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[events] handler panicked for %s: %v", ev.Type, r)
				}
			}()
			h(ev)
		}()
	}
}
