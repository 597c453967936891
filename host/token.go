// Package host abstracts the capabilities the launchpad consumes from its
// host execution environment: fungible-token transfers, the AMM pool and
// position manager, signature recovery, and the logical clock.
//
// The core packages never talk to a concrete chain or database; they hold
// these interfaces and treat every call as an external operation that can
// fail. Failure of any host call aborts the enclosing launchpad operation
// with no partial state change.
//
// The package also ships in-memory fakes (see fake.go) used by the test
// suites and the demo CLI.
package host

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is the fungible-token capability. Transfers are pull-based and must
// report success or failure explicitly; there is no silent truncation — a
// transfer either moves the exact requested amount or returns an error.
type Token interface {
	// Address returns the token's identity on the host ledger.
	Address() common.Address

	// Symbol returns the token's display symbol. May be empty for
	// degenerate tokens; callers that require a real token must check.
	Symbol() string

	// Decimals returns the number of base-unit decimals.
	Decimals() uint8

	// BalanceOf returns the current balance of the owner. The returned
	// value is owned by the caller.
	BalanceOf(owner common.Address) *big.Int

	// Transfer moves amount base units from one holder to another.
	Transfer(from, to common.Address, amount *big.Int) error

	// Burn destroys amount base units held by from, reducing total supply.
	Burn(from common.Address, amount *big.Int) error
}

// TokenRegistry resolves a token address to its Token capability.
// The factory and instances look tokens up by address because launch
// parameters carry addresses, not handles.
type TokenRegistry interface {
	Token(addr common.Address) (Token, error)
}
