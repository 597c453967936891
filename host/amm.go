package host

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MintParams describes a concentrated-liquidity mint request. Token0 and
// Token1 must already be in canonical order (lower address first); the
// liquidity provisioner is responsible for that ordering.
type MintParams struct {
	Token0  common.Address
	Token1  common.Address
	FeeTier uint32

	TickLower int32
	TickUpper int32

	// Desired amounts to deposit, and the slippage floor below which the
	// mint must fail instead of depositing less.
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int

	// Payer funds the deposit; Recipient owns the minted position.
	Payer     common.Address
	Recipient common.Address
}

// MintResult reports the minted position and the amounts actually deposited,
// which may be below the desired amounts (but never below the minimums).
type MintResult struct {
	TokenID uint64
	Amount0 *big.Int
	Amount1 *big.Int
}

// AMM is the pool + position-manager capability. A position is a
// non-fungible claim identified by TokenID.
type AMM interface {
	// EnsurePool creates the pool for the pair/fee if it does not exist,
	// initializing its price at initialTick. Existing pools are left
	// untouched.
	EnsurePool(token0, token1 common.Address, feeTier uint32, initialTick int32) error

	// CurrentTick reports the pool's current price tick.
	CurrentTick(token0, token1 common.Address, feeTier uint32) (int32, error)

	// Mint deposits liquidity and returns the new position. The deposit is
	// atomic: on error no funds move and no position exists.
	Mint(p MintParams) (MintResult, error)

	// TransferPosition moves ownership of a position. Fails if from is not
	// the current owner.
	TransferPosition(tokenID uint64, from, to common.Address) error

	// PositionOwner reports the current owner of a position.
	PositionOwner(tokenID uint64) (common.Address, error)
}
