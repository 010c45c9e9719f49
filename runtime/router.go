package runtime

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Router connects hosts and carries envelopes between them. Delivery is
// asynchronous: Route only enqueues, DeliverPending drains in order, one
// envelope at a time per chain. It models the transport's ordering
// guarantee without reimplementing it.
type Router struct {
	mu    sync.Mutex
	hosts map[string]*Host
	queue []Envelope
}

// NewRouter creates a Router with no attached hosts.
func NewRouter() *Router {
	return &Router{hosts: make(map[string]*Host)}
}

// Attach registers h as the handler for its chain id.
func (r *Router) Attach(h *Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[h.chainID] = h
	h.router = r
}

// Route enqueues env for later delivery.
func (r *Router) Route(env Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, env)
}

// Pending returns the number of undelivered envelopes.
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// DeliverPending drains the queue, including envelopes enqueued by the
// deliveries themselves. Failed deliveries are collected and returned
// after the drain completes; one bad envelope does not block the rest.
func (r *Router) DeliverPending() error {
	var errs []error
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.mu.Unlock()
			break
		}
		env := r.queue[0]
		r.queue = r.queue[1:]
		host := r.hosts[env.To]
		r.mu.Unlock()

		if host == nil {
			log.Printf("[router] no host for chain %s, dropping envelope %s", env.To, env.ID)
			errs = append(errs, fmt.Errorf("no host for chain %s (envelope %s)", env.To, env.ID))
			continue
		}
		if err := host.DeliverMessage(env); err != nil {
			log.Printf("[router] delivery failed: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
