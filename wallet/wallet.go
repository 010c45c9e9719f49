package wallet

import (
	"github.com/GauravKarakoti/ConwayBets/core"
	"github.com/GauravKarakoti/ConwayBets/crypto"
)

// Wallet holds a key pair and provides operation-building helpers.
type Wallet struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// New creates a Wallet from an existing private key.
func New(priv crypto.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public()}
}

// Generate creates a Wallet with a freshly generated key pair.
func Generate() (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(priv), nil
}

// PrivKey returns the raw private key (handle with care).
func (w *Wallet) PrivKey() crypto.PrivateKey {
	return w.priv
}

// Owner returns the account owner this wallet controls (hex pubkey).
func (w *Wallet) Owner() core.AccountOwner {
	return core.AccountOwner(w.pub.Hex())
}

// NewOperation creates a signed operation. chainID must match the target
// network.
func (w *Wallet) NewOperation(chainID string, typ core.OpType, payload any) (*core.Operation, error) {
	op, err := core.NewOperation(chainID, typ, w.Owner(), payload)
	if err != nil {
		return nil, err
	}
	op.Sign(w.priv)
	return op, nil
}

// CreateMarket creates a signed create_market operation with this wallet's
// owner as the market creator.
func (w *Wallet) CreateMarket(chainID, title, description string, endTime uint64, outcomes []string) (*core.Operation, error) {
	return w.NewOperation(chainID, core.OpCreateMarket, core.CreateMarketPayload{
		Creator:     w.Owner(),
		Title:       title,
		Description: description,
		EndTime:     endTime,
		Outcomes:    outcomes,
	})
}

// PlaceBet creates a signed place_bet operation staking amount on the
// given outcome.
func (w *Wallet) PlaceBet(chainID string, marketID core.MarketId, outcomeIndex uint32, amount core.Amount) (*core.Operation, error) {
	return w.NewOperation(chainID, core.OpPlaceBet, core.PlaceBetPayload{
		MarketID:     marketID,
		User:         w.Owner(),
		OutcomeIndex: outcomeIndex,
		Amount:       amount,
	})
}
