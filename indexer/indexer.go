// Package indexer maintains secondary indexes over committed contract
// events so clients can query bets by market and markets by creator
// without walking the full ledger blob.
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/events"
	"github.com/GauravKarakoti/ConwayBets/storage"
)

const (
	prefixCreatorMarkets = "idx:creator:market:"
	prefixMarketBets     = "idx:market:bet:"
)

// BetRecord is one applied bet as seen by the market's home chain.
type BetRecord struct {
	User         string `json:"user"`
	OutcomeIndex uint32 `json:"outcome_index"`
	Amount       string `json:"amount"`
}

// Indexer subscribes to contract events and updates lookup tables.
type Indexer struct {
	db      storage.DB
	emitter *events.Emitter
}

// New creates an Indexer backed by db and subscribes to relevant events.
func New(db storage.DB, emitter *events.Emitter) *Indexer {
	idx := &Indexer{db: db, emitter: emitter}
	emitter.Subscribe(events.EventMarketCreated, idx.onMarketCreated)
	emitter.Subscribe(events.EventBetApplied, idx.onBetApplied)
	return idx
}

// MarketsByCreator returns the market keys created by the given owner.
func (idx *Indexer) MarketsByCreator(creator core.AccountOwner) ([]string, error) {
	return idx.getStrings(prefixCreatorMarkets + string(creator))
}

// BetsByMarket returns the bets applied to the market with the given key.
func (idx *Indexer) BetsByMarket(marketKey string) ([]BetRecord, error) {
	data, err := idx.db.Get([]byte(prefixMarketBets + marketKey))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil // no bets yet
		}
		return nil, err
	}
	var recs []BetRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("indexer unmarshal: %w", err)
	}
	return recs, nil
}

// ---- event handlers ----

func (idx *Indexer) onMarketCreated(ev events.Event) {
	creator, _ := ev.Data["creator"].(string)
	market, _ := ev.Data["market"].(string)
	if creator == "" || market == "" {
		return
	}
	_ = idx.addString(prefixCreatorMarkets+creator, market)
}

func (idx *Indexer) onBetApplied(ev events.Event) {
	market, _ := ev.Data["market"].(string)
	user, _ := ev.Data["user"].(string)
	amount, _ := ev.Data["amount"].(string)
	outcome, _ := ev.Data["outcome_index"].(uint32)
	if market == "" || user == "" {
		return
	}
	_ = idx.addBet(prefixMarketBets+market, BetRecord{
		User:         user,
		OutcomeIndex: outcome,
		Amount:       amount,
	})
}

// ---- list helpers ----

func (idx *Indexer) getStrings(key string) ([]string, error) {
	data, err := idx.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil // empty list
		}
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("indexer unmarshal: %w", err)
	}
	return out, nil
}

func (idx *Indexer) addString(key, value string) error {
	vals, _ := idx.getStrings(key)
	vals = append(vals, value)
	data, err := json.Marshal(vals)
	if err != nil {
		return err
	}
	return idx.db.Set([]byte(key), data)
}

func (idx *Indexer) addBet(key string, rec BetRecord) error {
	recs, _ := idx.BetsByMarket(key[len(prefixMarketBets):])
	recs = append(recs, rec)
	data, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return idx.db.Set([]byte(key), data)
}
