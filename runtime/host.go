// Package runtime is the in-process stand-in for the external microchain
// runtime. A Host owns one chain: it loads the ledger before each call,
// dispatches to the contract, persists on success, and hands queued
// outbound messages to the Router. Calls run to completion one at a time;
// a failed handler leaves the stored ledger untouched.
package runtime

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/GauravKarakoti/ConwayBets/config"
	"github.com/GauravKarakoti/ConwayBets/contract"
	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/events"
	"github.com/GauravKarakoti/ConwayBets/ledger"
	"github.com/GauravKarakoti/ConwayBets/storage"
)

// Envelope wraps a cross-chain message in transit.
type Envelope struct {
	ID   string       `json:"id"`
	From string       `json:"from"`
	To   string       `json:"to"`
	Msg  core.Message `json:"msg"`
}

// Host executes operations and inbound messages for a single chain.
type Host struct {
	mu      sync.Mutex
	db      storage.DB
	chainID string
	rules   config.Rules
	emitter *events.Emitter
	locker  FundsLocker
	router  *Router
	height  atomic.Uint64 // read lock-free by the query surface
	clock   func() int64
	outbox  []Envelope // buffered until the current call commits
}

// NewHost creates a Host for chainID backed by db.
func NewHost(db storage.DB, chainID string, rules config.Rules, emitter *events.Emitter) *Host {
	return &Host{
		db:      db,
		chainID: chainID,
		rules:   rules,
		emitter: emitter,
		locker:  NoopLocker{},
		clock:   func() int64 { return time.Now().Unix() },
	}
}

// SetLocker swaps the funds-locking capability.
func (h *Host) SetLocker(l FundsLocker) { h.locker = l }

// SetClock swaps the chain clock. Tests pin it to a fixed instant.
func (h *Host) SetClock(now func() int64) { h.clock = now }

// DB exposes the backing store for read-only query surfaces.
func (h *Host) DB() storage.DB { return h.db }

// ---- contract.Chain ----

func (h *Host) ChainID() string { return h.chainID }

func (h *Host) Height() uint64 { return h.height.Load() }

func (h *Host) Now() int64 { return h.clock() }

// Send queues msg for delivery to dest. The envelope leaves the host only
// after the surrounding call commits; a failed call drops its outbox.
func (h *Host) Send(dest string, msg core.Message) {
	h.outbox = append(h.outbox, Envelope{
		ID:   uuid.NewString(),
		From: h.chainID,
		To:   dest,
		Msg:  msg,
	})
}

func (h *Host) LockFunds(user core.AccountOwner, amount core.Amount) error {
	return h.locker.LockFunds(user, amount)
}

// ---- execution ----

// ExecuteOperation runs one operation against a freshly loaded ledger.
// On handler failure the dirty ledger, queued messages, and queued events
// are all discarded and the error returns to the caller.
func (h *Host) ExecuteOperation(op *core.Operation) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	led, err := ledger.Load(h.db)
	if err != nil {
		return nil, err
	}
	h.outbox = nil

	ctx := &contract.Context{
		Ledger:  led,
		Chain:   h,
		Op:      op,
		Rules:   h.rules,
		Emitter: h.emitter,
	}
	result, err := contract.Execute(op.Type, ctx, op.Payload)
	if err != nil {
		h.outbox = nil
		return nil, err
	}

	if err := ledger.Store(h.db, led); err != nil {
		h.outbox = nil
		return nil, err
	}
	h.height.Add(1)
	ctx.Flush()
	h.flushOutbox()
	return result, nil
}

// DeliverMessage applies one inbound envelope, with the same load/commit
// discipline as ExecuteOperation.
func (h *Host) DeliverMessage(env Envelope) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	led, err := ledger.Load(h.db)
	if err != nil {
		return err
	}
	h.outbox = nil

	ctx := &contract.Context{
		Ledger:  led,
		Chain:   h,
		Rules:   h.rules,
		Emitter: h.emitter,
	}
	if err := contract.ExecuteMessage(ctx, env.Msg); err != nil {
		h.outbox = nil
		return fmt.Errorf("deliver %s from %s: %w", env.Msg.Type, env.From, err)
	}

	if err := ledger.Store(h.db, led); err != nil {
		h.outbox = nil
		return err
	}
	h.height.Add(1)
	ctx.Flush()
	h.flushOutbox()
	return nil
}

// View loads the current committed ledger for read-only queries.
func (h *Host) View() (*ledger.Ledger, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return ledger.Load(h.db)
}

func (h *Host) flushOutbox() {
	for _, env := range h.outbox {
		if h.router == nil {
			log.Printf("[host %s] no router attached, dropping %s to %s", h.chainID, env.Msg.Type, env.To)
			continue
		}
		h.router.Route(env)
		if h.emitter != nil {
			h.emitter.Emit(events.Event{
				Type:    events.EventMessageSent,
				ChainID: h.chainID,
				Height:  h.height.Load(),
				Data: map[string]any{
					"envelope": env.ID,
					"to":       env.To,
					"msg_type": string(env.Msg.Type),
				},
			})
		}
	}
	h.outbox = nil
}
