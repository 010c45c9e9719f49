package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GauravKarakoti/ConwayBets/crypto"
)

// OpType identifies the kind of state transition an operation performs.
type OpType string

const (
	OpCreateMarket OpType = "create_market"
	OpPlaceBet     OpType = "place_bet"
)

// Operation is the signed envelope for a mutating entry point.
// From holds the submitter's full hex-encoded ed25519 public key.
// Signature covers all fields except ID and Signature itself.
type Operation struct {
	ID        string          `json:"id"`
	ChainID   string          `json:"chain_id"` // target chain; rejects cross-network replay
	Type      OpType          `json:"type"`
	From      AccountOwner    `json:"from"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// signingBody holds the fields covered by the signature.
type signingBody struct {
	ChainID   string          `json:"chain_id"`
	Type      OpType          `json:"type"`
	From      AccountOwner    `json:"from"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Hash returns a deterministic hash of the operation (sans ID/Signature).
// Returns an empty string if marshalling fails (cannot happen in practice).
func (op *Operation) Hash() string {
	body := signingBody{
		ChainID:   op.ChainID,
		Type:      op.Type,
		From:      op.From,
		Timestamp: op.Timestamp,
		Payload:   op.Payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign computes the signature and sets ID.
func (op *Operation) Sign(priv crypto.PrivateKey) {
	hash := op.Hash()
	op.Signature = priv.Sign([]byte(hash))
	op.ID = hash
}

// Verify checks the signature and that From is a valid public key.
func (op *Operation) Verify() error {
	if op.From == "" {
		return errors.New("missing from field")
	}
	pub, err := crypto.PubKeyFromHex(string(op.From))
	if err != nil {
		return fmt.Errorf("invalid from (must be ed25519 pubkey hex): %w", err)
	}
	return pub.Verify([]byte(op.Hash()), op.Signature)
}

// NewOperation creates an unsigned operation with the current timestamp.
func NewOperation(chainID string, typ OpType, from AccountOwner, payload any) (*Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Operation{
		ChainID:   chainID,
		Type:      typ,
		From:      from,
		Timestamp: time.Now().UnixNano(),
		Payload:   raw,
	}, nil
}

// ---- Payload types ----

// CreateMarketPayload opens a new prediction market.
type CreateMarketPayload struct {
	Creator     AccountOwner `json:"creator"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	EndTime     uint64       `json:"end_time"` // unix seconds
	Outcomes    []string     `json:"outcomes"`
}

// PlaceBetPayload stakes an amount on one outcome of an existing market.
type PlaceBetPayload struct {
	MarketID     MarketId     `json:"market_id"`
	User         AccountOwner `json:"user"`
	OutcomeIndex uint32       `json:"outcome_index"`
	Amount       Amount       `json:"amount"`
}
