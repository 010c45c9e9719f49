// Package ledger holds the persisted application state: every market, every
// user position, and the id counters. The whole structure round-trips
// through the host's key-value capability as one opaque blob under a single
// well-known key; there is no partial or incremental persistence.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/storage"
)

// StateKey is the well-known storage key the ledger blob lives under.
const StateKey = "conwaybets:state"

// Ledger is the full application state. The id counters are part of the
// persisted structure so that minted ids stay monotonic across reloads and
// never collide with ids issued before a restart.
type Ledger struct {
	Markets      map[string]*core.Market                   `json:"markets"` // keyed by MarketId.Key()
	Positions    map[core.AccountOwner][]core.UserPosition `json:"user_positions"`
	NextMarketID uint64                                    `json:"next_market_id"`
	NextBetID    uint64                                    `json:"next_bet_id"`
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		Markets:   make(map[string]*core.Market),
		Positions: make(map[core.AccountOwner][]core.UserPosition),
	}
}

// Market looks up a market by id. Returns core.ErrNotFound if absent.
func (l *Ledger) Market(id core.MarketId) (*core.Market, error) {
	m, ok := l.Markets[id.Key()]
	if !ok {
		return nil, fmt.Errorf("market %s: %w", id.Key(), core.ErrNotFound)
	}
	return m, nil
}

// InsertMarket adds a market to the ledger. The caller owns id assignment.
func (l *Ledger) InsertMarket(m *core.Market) {
	l.Markets[m.ID.Key()] = m
}

// MintMarketID assigns the next market sequence number on chainID.
func (l *Ledger) MintMarketID(chainID string) core.MarketId {
	l.NextMarketID++
	return core.MarketId{ChainID: chainID, ID: l.NextMarketID}
}

// MintBetID assigns the next bet receipt id.
func (l *Ledger) MintBetID() uint64 {
	l.NextBetID++
	return l.NextBetID
}

// AllMarkets returns every market ordered by id (chain id, then sequence),
// which is creation order within a chain.
func (l *Ledger) AllMarkets() []*core.Market {
	out := make([]*core.Market, 0, len(l.Markets))
	for _, m := range l.Markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

// PageMarkets returns a window of AllMarkets. Offsets past the end yield an
// empty page.
func (l *Ledger) PageMarkets(limit, offset int) []*core.Market {
	all := l.AllMarkets()
	if offset >= len(all) || offset < 0 || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// PositionsFor returns owner's positions in placement order.
func (l *Ledger) PositionsFor(owner core.AccountOwner) []core.UserPosition {
	return l.Positions[owner]
}

// AppendPosition records a new stake for owner. Positions are append-only;
// repeated identical stakes produce repeated entries.
func (l *Ledger) AppendPosition(owner core.AccountOwner, pos core.UserPosition) {
	l.Positions[owner] = append(l.Positions[owner], pos)
}

// Encode serializes the ledger blob.
func (l *Ledger) Encode() ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("%w: encode ledger: %v", core.ErrSerialization, err)
	}
	return data, nil
}

// Decode inverts Encode.
func Decode(data []byte) (*Ledger, error) {
	l := New()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("%w: decode ledger: %v", core.ErrSerialization, err)
	}
	if l.Markets == nil {
		l.Markets = make(map[string]*core.Market)
	}
	if l.Positions == nil {
		l.Positions = make(map[core.AccountOwner][]core.UserPosition)
	}
	return l, nil
}

// Load reads the ledger blob from db. A missing key yields an empty ledger.
func Load(db storage.DB) (*Ledger, error) {
	data, err := db.Get([]byte(StateKey))
	if errors.Is(err, core.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return Decode(data)
}

// Store writes the ledger blob back to db under the well-known key.
func Store(db storage.DB, l *Ledger) error {
	data, err := l.Encode()
	if err != nil {
		return err
	}
	if err := db.Set([]byte(StateKey), data); err != nil {
		return fmt.Errorf("store ledger: %w", err)
	}
	return nil
}
