package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/internal/testutil"
)

func newMarket(l *Ledger, chainID, title string) *core.Market {
	id := l.MintMarketID(chainID)
	m := &core.Market{
		ID:       id,
		Title:    title,
		Outcomes: []string{"Yes", "No"},
	}
	l.InsertMarket(m)
	return m
}

func TestMarketLookup(t *testing.T) {
	l := New()
	m := newMarket(l, "chain-a", "first")

	got, err := l.Market(m.ID)
	if err != nil {
		t.Fatalf("Market: %v", err)
	}
	if got.Title != "first" {
		t.Errorf("title: got %q want %q", got.Title, "first")
	}

	_, err = l.Market(core.MarketId{ChainID: "chain-a", ID: 999})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing market: got %v want ErrNotFound", err)
	}
}

func TestMintedIdsAreDistinct(t *testing.T) {
	l := New()
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id := l.MintMarketID("chain-a")
		if seen[id.Key()] {
			t.Fatalf("id %s minted twice", id.Key())
		}
		seen[id.Key()] = true
	}
}

// TestCountersSurviveReload checks that the id counters persist with the
// ledger blob, so ids minted after a reload never collide with ids issued
// before it.
func TestCountersSurviveReload(t *testing.T) {
	db := testutil.NewMemDB()

	l, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}
	before := newMarket(l, "chain-a", "pre-restart")
	if err := Store(db, l); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}
	after := newMarket(reloaded, "chain-a", "post-restart")

	if before.ID == after.ID {
		t.Fatalf("id %s reissued after reload", after.ID.Key())
	}
	if after.ID.ID != before.ID.ID+1 {
		t.Errorf("counter should continue: got %d want %d", after.ID.ID, before.ID.ID+1)
	}
}

func TestLoadMissingKeyYieldsEmptyLedger(t *testing.T) {
	l, err := Load(testutil.NewMemDB())
	if err != nil {
		t.Fatalf("Load on empty db: %v", err)
	}
	if len(l.Markets) != 0 || len(l.Positions) != 0 {
		t.Error("fresh ledger should be empty")
	}
	if l.NextMarketID != 0 || l.NextBetID != 0 {
		t.Error("fresh ledger counters should be zero")
	}
}

func TestLoadRejectsMalformedBlob(t *testing.T) {
	db := testutil.NewMemDB()
	if err := db.Set([]byte(StateKey), []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	_, err := Load(db)
	if !errors.Is(err, core.ErrSerialization) {
		t.Errorf("malformed blob: got %v want ErrSerialization", err)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	db := testutil.NewMemDB()
	l := New()
	m := newMarket(l, "chain-a", "round trip")
	owner := core.AccountOwner("aabb")
	l.AppendPosition(owner, core.UserPosition{
		MarketID:     m.ID,
		OutcomeIndex: 1,
		Amount:       decimal.NewFromInt(250),
	})
	l.MintBetID()

	if err := Store(db, l); err != nil {
		t.Fatal(err)
	}
	back, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}

	if len(back.Markets) != 1 {
		t.Fatalf("markets: got %d want 1", len(back.Markets))
	}
	got, err := back.Market(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "round trip" {
		t.Errorf("title: got %q", got.Title)
	}

	positions := back.PositionsFor(owner)
	if len(positions) != 1 {
		t.Fatalf("positions: got %d want 1", len(positions))
	}
	if !positions[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("amount: got %s want 250", positions[0].Amount)
	}

	if back.NextMarketID != l.NextMarketID || back.NextBetID != l.NextBetID {
		t.Errorf("counters must round-trip: got (%d,%d) want (%d,%d)",
			back.NextMarketID, back.NextBetID, l.NextMarketID, l.NextBetID)
	}
}

func TestPageMarkets(t *testing.T) {
	l := New()
	first := newMarket(l, "chain-a", "first")
	second := newMarket(l, "chain-a", "second")
	third := newMarket(l, "chain-a", "third")
	_ = first
	_ = third

	page := l.PageMarkets(1, 1)
	if len(page) != 1 {
		t.Fatalf("page size: got %d want 1", len(page))
	}
	if page[0].ID != second.ID {
		t.Errorf("limit=1 offset=1 should return the second market, got %s", page[0].ID.Key())
	}

	if got := l.PageMarkets(10, 0); len(got) != 3 {
		t.Errorf("full page: got %d want 3", len(got))
	}
	if got := l.PageMarkets(10, 5); got != nil {
		t.Errorf("offset past end should be empty, got %d", len(got))
	}
	if got := l.PageMarkets(0, 0); got != nil {
		t.Errorf("zero limit should be empty, got %d", len(got))
	}
}

func TestAllMarketsOrdering(t *testing.T) {
	l := New()
	// Insert out of creation sequence by minting on two chains.
	l.InsertMarket(&core.Market{ID: core.MarketId{ChainID: "b", ID: 1}})
	l.InsertMarket(&core.Market{ID: core.MarketId{ChainID: "a", ID: 10}})
	l.InsertMarket(&core.Market{ID: core.MarketId{ChainID: "a", ID: 2}})

	all := l.AllMarkets()
	wantOrder := []string{"a:2", "a:10", "b:1"}
	for i, m := range all {
		if m.ID.Key() != wantOrder[i] {
			t.Errorf("position %d: got %s want %s", i, m.ID.Key(), wantOrder[i])
		}
	}
}

func TestAppendPositionNoDedup(t *testing.T) {
	l := New()
	owner := core.AccountOwner("ccdd")
	pos := core.UserPosition{
		MarketID:     core.MarketId{ChainID: "a", ID: 1},
		OutcomeIndex: 0,
		Amount:       decimal.NewFromInt(100),
	}
	l.AppendPosition(owner, pos)
	l.AppendPosition(owner, pos)

	if got := len(l.PositionsFor(owner)); got != 2 {
		t.Errorf("identical stakes must both be recorded: got %d want 2", got)
	}
}
