package wallet

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/GauravKarakoti/ConwayBets/core"
)

func TestWalletSignsVerifiableOperations(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatal(err)
	}

	op, err := w.CreateMarket("devnet", "signed", "", 1000, []string{"Yes", "No"})
	if err != nil {
		t.Fatal(err)
	}
	if err := op.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if op.From != w.Owner() {
		t.Errorf("from: got %s want %s", op.From, w.Owner())
	}

	bet, err := w.PlaceBet("devnet", core.MarketId{ChainID: "devnet", ID: 1}, 0, decimal.NewFromInt(5))
	if err != nil {
		t.Fatal(err)
	}
	if err := bet.Verify(); err != nil {
		t.Errorf("Verify bet: %v", err)
	}
	if bet.Type != core.OpPlaceBet {
		t.Errorf("type: got %s", bet.Type)
	}
}

func TestTwoWalletsHaveDistinctOwners(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatal(err)
	}
	if a.Owner() == b.Owner() {
		t.Error("generated wallets share an owner")
	}
}
