// Package contract dispatches operations and inbound cross-chain messages
// to their registered handlers. Handlers mutate a freshly loaded ledger and
// reach the outside world only through the Chain capability, so the whole
// contract runs unchanged against the real host or a test double.
package contract

import (
	"github.com/GauravKarakoti/ConwayBets/config"
	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/events"
	"github.com/GauravKarakoti/ConwayBets/ledger"
)

// Chain is the capability surface the host runtime injects into handlers:
// identity, logical time, outbound messaging, and funds locking. Everything
// behind it (delivery ordering, persistence, sequencing) belongs to the
// host, not to handler logic.
type Chain interface {
	// ChainID returns the executing chain's identifier.
	ChainID() string
	// Height returns the chain's current logical block height.
	Height() uint64
	// Now returns the chain's clock as unix seconds.
	Now() int64
	// Send queues msg for asynchronous delivery to the dest chain. Queued
	// messages leave the chain only after the surrounding state transition
	// commits.
	Send(dest string, msg core.Message)
	// LockFunds reserves the stake before a position is recorded.
	LockFunds(user core.AccountOwner, amount core.Amount) error
}

// Context is passed to every Handler and provides the loaded ledger, the
// chain capabilities, the triggering operation (nil for inbound messages),
// the validation rules, and the event emitter.
type Context struct {
	Ledger  *ledger.Ledger
	Chain   Chain
	Op      *core.Operation
	Rules   config.Rules
	Emitter *events.Emitter

	pending []events.Event // buffered until the state transition commits
}

// Emit queues ev for publication. Subscribers see queued events only after
// the surrounding state transition commits; a failed call drops them along
// with the rest of the dirty state.
func (c *Context) Emit(ev events.Event) {
	if c.Emitter == nil {
		return
	}
	ev.ChainID = c.Chain.ChainID()
	ev.Height = c.Chain.Height()
	if c.Op != nil {
		ev.OpID = c.Op.ID
	}
	c.pending = append(c.pending, ev)
}

// Flush publishes the queued events. The host calls it once the ledger
// store succeeds.
func (c *Context) Flush() {
	if c.Emitter == nil {
		return
	}
	for _, ev := range c.pending {
		c.Emitter.Emit(ev)
	}
	c.pending = nil
}
