package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/indexer"
	"github.com/GauravKarakoti/ConwayBets/runtime"
)

// Default page shape for the markets listing.
const (
	defaultMarketsLimit  = 50
	defaultMarketsOffset = 0
)

// Handler holds all dependencies needed to serve RPC methods.
type Handler struct {
	host    *runtime.Host
	indexer *indexer.Indexer
	chainID string // expected chain_id; rejects cross-network operations
}

// NewHandler creates an RPC Handler.
func NewHandler(host *runtime.Host, idx *indexer.Indexer, chainID string) *Handler {
	return &Handler{host: host, indexer: idx, chainID: chainID}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	switch req.Method {
	case "markets":
		return h.markets(req)

	case "market":
		return h.market(req)

	case "userBets":
		return h.userBets(req)

	case "marketBets":
		return h.marketBets(req)

	case "marketsByCreator":
		return h.marketsByCreator(req)

	case "submitOperation":
		return h.submitOperation(req)

	case "chainInfo":
		return okResponse(req.ID, map[string]any{
			"chain_id": h.chainID,
			"height":   h.host.Height(),
		})

	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

func (h *Handler) markets(req Request) Response {
	params := struct {
		Limit  *int `json:"limit"`
		Offset *int `json:"offset"`
	}{}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
		}
	}
	limit := defaultMarketsLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	offset := defaultMarketsOffset
	if params.Offset != nil {
		offset = *params.Offset
	}

	led, err := h.host.View()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	page := led.PageMarkets(limit, offset)
	views := make([]MarketView, 0, len(page))
	for _, m := range page {
		views = append(views, marketView(m))
	}
	return okResponse(req.ID, views)
}

func (h *Handler) market(req Request) Response {
	var params struct {
		ChainID string `json:"chain_id"`
		ID      uint64 `json:"id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.ChainID == "" {
		return errResponse(req.ID, CodeInvalidParams, "chain_id is required")
	}

	led, err := h.host.View()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	m, err := led.Market(core.MarketId{ChainID: params.ChainID, ID: params.ID})
	if errors.Is(err, core.ErrNotFound) {
		return okResponse(req.ID, nil) // optional projection: absent → null
	}
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, marketView(m))
}

func (h *Handler) userBets(req Request) Response {
	var params struct {
		Owner string `json:"owner"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Owner == "" {
		return errResponse(req.ID, CodeInvalidParams, "owner is required")
	}

	led, err := h.host.View()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	positions := led.PositionsFor(core.AccountOwner(params.Owner))
	views := make([]PositionView, 0, len(positions))
	for _, p := range positions {
		views = append(views, positionView(p))
	}
	return okResponse(req.ID, views)
}

func (h *Handler) marketBets(req Request) Response {
	var params struct {
		ChainID string `json:"chain_id"`
		ID      uint64 `json:"id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.ChainID == "" {
		return errResponse(req.ID, CodeInvalidParams, "chain_id is required")
	}
	recs, err := h.indexer.BetsByMarket(core.MarketId{ChainID: params.ChainID, ID: params.ID}.Key())
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, recs)
}

func (h *Handler) marketsByCreator(req Request) Response {
	var params struct {
		Creator string `json:"creator"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Creator == "" {
		return errResponse(req.ID, CodeInvalidParams, "creator is required")
	}
	keys, err := h.indexer.MarketsByCreator(core.AccountOwner(params.Creator))
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, keys)
}

func (h *Handler) submitOperation(req Request) Response {
	var op core.Operation
	if err := json.Unmarshal(req.Params, &op); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	// Reject operations destined for a different network to prevent
	// cross-chain replay.
	if op.ChainID != h.chainID {
		return errResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("chain ID mismatch: got %q want %q", op.ChainID, h.chainID))
	}
	// Recompute the ID server-side; do not trust the client-provided value.
	op.ID = op.Hash()
	if err := op.Verify(); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "signature: "+err.Error())
	}

	result, err := h.host.ExecuteOperation(&op)
	if errors.Is(err, core.ErrNotFound) {
		return errResponse(req.ID, CodeNotFound, err.Error())
	}
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]any{"op_id": op.ID, "result": result})
}
