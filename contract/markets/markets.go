// Package markets implements the prediction-market operations and the
// cross-chain message appliers. Importing it registers the handlers.
package markets

import (
	"encoding/json"
	"fmt"

	"github.com/GauravKarakoti/ConwayBets/contract"
	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/events"
)

func init() {
	contract.Register(core.OpCreateMarket, handleCreateMarket)
	contract.Register(core.OpPlaceBet, handlePlaceBet)
	contract.RegisterMessage(core.MsgInitialize, applyInitialize)
	contract.RegisterMessage(core.MsgBet, applyBet)
	contract.RegisterMessage(core.MsgSyncState, applySyncState)
}

func handleCreateMarket(ctx *contract.Context, payload json.RawMessage) (any, error) {
	var p core.CreateMarketPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode create_market payload: %w", err)
	}

	id := ctx.Ledger.MintMarketID(ctx.Chain.ChainID())

	// The state commitment is computed by the host runtime, not here; a
	// fresh market carries the zero digest until the first sync arrives.
	market := &core.Market{
		ID:               id,
		Creator:          p.Creator,
		Title:            p.Title,
		Description:      p.Description,
		EndTime:          p.EndTime,
		Outcomes:         p.Outcomes,
		TotalLiquidity:   core.ZeroAmount(),
		OutcomeLiquidity: make([]core.Amount, len(p.Outcomes)),
		StateHash:        core.ZeroDigest,
	}
	ctx.Ledger.InsertMarket(market)

	ctx.Chain.Send(id.ChainID, core.InitializeMessage())

	ctx.Emit(events.Event{
		Type: events.EventMarketCreated,
		Data: map[string]any{
			"market":  id.Key(),
			"creator": string(p.Creator),
			"title":   p.Title,
		},
	})
	return id, nil
}

func handlePlaceBet(ctx *contract.Context, payload json.RawMessage) (any, error) {
	var p core.PlaceBetPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode place_bet payload: %w", err)
	}

	market, err := ctx.Ledger.Market(p.MarketID)
	if err != nil {
		return nil, err
	}

	if ctx.Rules.ValidateOutcomeIndex && int(p.OutcomeIndex) >= len(market.Outcomes) {
		return nil, fmt.Errorf("outcome index %d out of range (market has %d outcomes)",
			p.OutcomeIndex, len(market.Outcomes))
	}
	if ctx.Rules.RejectAfterEndTime && uint64(ctx.Chain.Now()) >= market.EndTime {
		return nil, fmt.Errorf("market %s closed at %d", p.MarketID.Key(), market.EndTime)
	}
	if ctx.Rules.RejectResolved && market.IsResolved {
		return nil, fmt.Errorf("market %s is already resolved", p.MarketID.Key())
	}

	if err := ctx.Chain.LockFunds(p.User, p.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFundsLock, err)
	}

	ctx.Chain.Send(p.MarketID.ChainID, core.NewBetMessage(core.BetMessage{
		MarketID:     p.MarketID,
		User:         p.User,
		OutcomeIndex: p.OutcomeIndex,
		Amount:       p.Amount,
	}))

	ctx.Ledger.AppendPosition(p.User, core.UserPosition{
		MarketID:     p.MarketID,
		OutcomeIndex: p.OutcomeIndex,
		Amount:       p.Amount,
		StateHash:    market.StateHash,
	})

	id := ctx.Ledger.MintBetID()

	ctx.Emit(events.Event{
		Type: events.EventBetPlaced,
		Data: map[string]any{
			"market":        p.MarketID.Key(),
			"user":          string(p.User),
			"outcome_index": p.OutcomeIndex,
			"amount":        p.Amount.String(),
			"bet_id":        id,
		},
	})
	return core.NewReceipt(id, core.StatusFinalized), nil
}

// applyInitialize acknowledges a market's home chain being notified of its
// creation. No state changes; the event feeds the indexer and clients.
func applyInitialize(ctx *contract.Context, _ core.Message) error {
	ctx.Emit(events.Event{Type: events.EventInitialized, Data: map[string]any{}})
	return nil
}

// applyBet credits an inbound stake to the addressed market's liquidity.
// A bet for an unknown market is an error, not a silent drop; the host
// surfaces it to its delivery log.
func applyBet(ctx *contract.Context, msg core.Message) error {
	b := msg.Bet
	market, err := ctx.Ledger.Market(b.MarketID)
	if err != nil {
		return fmt.Errorf("apply bet: %w", err)
	}

	market.TotalLiquidity = market.TotalLiquidity.Add(b.Amount)
	if int(b.OutcomeIndex) < len(market.OutcomeLiquidity) {
		market.OutcomeLiquidity[b.OutcomeIndex] =
			market.OutcomeLiquidity[b.OutcomeIndex].Add(b.Amount)
	}

	ctx.Emit(events.Event{
		Type: events.EventBetApplied,
		Data: map[string]any{
			"market":        b.MarketID.Key(),
			"user":          string(b.User),
			"outcome_index": b.OutcomeIndex,
			"amount":        b.Amount.String(),
		},
	})
	return nil
}

// applySyncState merges a state commitment from the market's home chain.
// Heights at or below the last accepted sync are stale and rejected.
func applySyncState(ctx *contract.Context, msg core.Message) error {
	s := msg.SyncState
	market, err := ctx.Ledger.Market(s.MarketID)
	if err != nil {
		return fmt.Errorf("sync state: %w", err)
	}
	if s.BlockHeight <= market.SyncedHeight {
		return fmt.Errorf("stale state sync for %s: height %d <= %d",
			s.MarketID.Key(), s.BlockHeight, market.SyncedHeight)
	}

	diverged := !market.StateHash.IsZero() && market.StateHash != s.StateHash
	market.StateHash = s.StateHash
	market.SyncedHeight = s.BlockHeight

	ctx.Emit(events.Event{
		Type: events.EventStateSynced,
		Data: map[string]any{
			"market":     s.MarketID.Key(),
			"state_hash": s.StateHash.Hex(),
			"height":     s.BlockHeight,
			"diverged":   diverged,
		},
	})
	return nil
}
