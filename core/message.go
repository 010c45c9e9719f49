package core

import (
	"encoding/json"
	"fmt"
)

// MsgType identifies the kind of cross-chain message.
type MsgType string

const (
	MsgInitialize MsgType = "initialize"
	MsgBet        MsgType = "bet"
	MsgSyncState  MsgType = "sync_state"
)

// Message is the tagged union carried between chains. Exactly one payload
// field is set, matching Type.
type Message struct {
	Type      MsgType           `json:"type"`
	Bet       *BetMessage       `json:"bet,omitempty"`
	SyncState *SyncStateMessage `json:"sync_state,omitempty"`
}

// BetMessage notifies a market's home chain of a stake placed elsewhere.
type BetMessage struct {
	MarketID     MarketId     `json:"market_id"`
	User         AccountOwner `json:"user"`
	OutcomeIndex uint32       `json:"outcome_index"`
	Amount       Amount       `json:"amount"`
}

// SyncStateMessage carries a market's state commitment from its home chain.
type SyncStateMessage struct {
	MarketID    MarketId `json:"market_id"`
	StateHash   Digest   `json:"state_hash"`
	BlockHeight uint64   `json:"block_height"`
}

// InitializeMessage builds an Initialize message.
func InitializeMessage() Message {
	return Message{Type: MsgInitialize}
}

// NewBetMessage builds a Bet message.
func NewBetMessage(b BetMessage) Message {
	return Message{Type: MsgBet, Bet: &b}
}

// NewSyncStateMessage builds a SyncState message.
func NewSyncStateMessage(s SyncStateMessage) Message {
	return Message{Type: MsgSyncState, SyncState: &s}
}

// Validate checks that the payload matches the tag.
func (m Message) Validate() error {
	switch m.Type {
	case MsgInitialize:
		return nil
	case MsgBet:
		if m.Bet == nil {
			return fmt.Errorf("message %q missing bet payload", m.Type)
		}
		return nil
	case MsgSyncState:
		if m.SyncState == nil {
			return fmt.Errorf("message %q missing sync_state payload", m.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
}

// Encode serializes the message for transport.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage inverts Encode.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, m.Validate()
}
