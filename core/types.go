package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountOwner identifies a market participant.
// It is the hex-encoded ed25519 public key of the owner (64 chars).
type AccountOwner string

// Amount is a token quantity. Rendered as a quoted decimal string in JSON.
type Amount = decimal.Decimal

// ZeroAmount returns the zero token quantity.
func ZeroAmount() Amount {
	return decimal.Zero
}

// DigestSize is the byte length of a market state-commitment digest.
const DigestSize = 32

// Digest is a fixed-size state-commitment digest. Other chains use it to
// check a market's state without fetching the full record. Rendered as
// lowercase hex in JSON.
type Digest [DigestSize]byte

// ZeroDigest is the digest of a market whose state commitment has not been
// computed yet. Freshly created markets carry it until a sync arrives.
var ZeroDigest Digest

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is all zeroes.
func (d Digest) IsZero() bool {
	return d == ZeroDigest
}

// DigestFromHex parses a 64-char lowercase hex string into a Digest.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(b) != DigestSize {
		return d, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Hex())
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := DigestFromHex(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarketId is the composite market key: the chain the market lives on plus
// a per-chain sequence number. Ordering is (ChainID, then numeric ID) so
// iteration over markets is deterministic.
type MarketId struct {
	ChainID string `json:"chain_id"`
	ID      uint64 `json:"id"`
}

// Key renders the MarketId as "<chain_id>:<id>" for use as a map key.
func (m MarketId) Key() string {
	return fmt.Sprintf("%s:%d", m.ChainID, m.ID)
}

// Less orders MarketIds by chain id first, then numerically by sequence.
func (m MarketId) Less(other MarketId) bool {
	if m.ChainID != other.ChainID {
		return m.ChainID < other.ChainID
	}
	return m.ID < other.ID
}

// ParseMarketId inverts Key().
func ParseMarketId(key string) (MarketId, error) {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return MarketId{}, fmt.Errorf("invalid market key %q", key)
	}
	id, err := strconv.ParseUint(key[i+1:], 10, 64)
	if err != nil {
		return MarketId{}, fmt.Errorf("invalid market key %q: %w", key, err)
	}
	return MarketId{ChainID: key[:i], ID: id}, nil
}

// Market is a single prediction market. Created by create_market, its
// liquidity grows as bet messages are applied on its home chain. Markets
// are never deleted.
type Market struct {
	ID               MarketId     `json:"id"`
	Creator          AccountOwner `json:"creator"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	EndTime          uint64       `json:"end_time"` // unix seconds
	Outcomes         []string     `json:"outcomes"`
	TotalLiquidity   Amount       `json:"total_liquidity"`
	OutcomeLiquidity []Amount     `json:"outcome_liquidity"`
	IsResolved       bool         `json:"is_resolved"`
	WinningOutcome   *uint32      `json:"winning_outcome"`
	StateHash        Digest       `json:"state_hash"`
	// SyncedHeight is the block height of the last accepted state sync.
	// Syncs at or below this height are stale and rejected.
	SyncedHeight uint64 `json:"synced_height"`
}

// UserPosition records a single stake. Positions are appended to the
// bettor's list in placement order and never mutated or removed.
type UserPosition struct {
	MarketID     MarketId `json:"market_id"`
	OutcomeIndex uint32   `json:"outcome_index"`
	Amount       Amount   `json:"amount"`
	// StateHash is the market digest observed when the stake was placed,
	// kept for later divergence detection.
	StateHash Digest `json:"state_hash"`
}

// Status tags a bet receipt.
type Status string

const (
	StatusFinalized Status = "finalized"
	StatusPending   Status = "pending"
)

// Receipt acknowledges a placed bet. It is returned to the caller and
// never persisted.
type Receipt struct {
	ID     uint64 `json:"id"`
	Status Status `json:"status"`
}

// NewReceipt builds a Receipt.
func NewReceipt(id uint64, status Status) Receipt {
	return Receipt{ID: id, Status: status}
}
