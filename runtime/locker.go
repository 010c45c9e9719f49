package runtime

import "github.com/GauravKarakoti/ConwayBets/core"

// FundsLocker reserves a bettor's stake before a position is recorded.
// Custody and settlement live outside this ledger; the contract only needs
// a yes/no answer before it commits the position.
type FundsLocker interface {
	LockFunds(user core.AccountOwner, amount core.Amount) error
}

// NoopLocker accepts every lock request. It is the default capability and
// matches the behavior the contract was written against.
type NoopLocker struct{}

func (NoopLocker) LockFunds(core.AccountOwner, core.Amount) error { return nil }
