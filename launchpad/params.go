// Package launchpad implements the fundraising-instance core: immutable
// launch parameters, policy validation, the contribution ledger, vesting
// math, the derived status machine and the Instance orchestrator that ties
// them to the host environment.
package launchpad

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/launchforge/go-launchpad/inter"
)

// RateScale is the denominator of every fractional rate in the system:
// exchange rates, release rates, the liquidity rate and slippage rates are
// all expressed in parts per 100000.
const RateScale = 100000

// LaunchpadParams is the immutable configuration of one sale. It is
// validated once at initialization and never changes afterwards.
type LaunchpadParams struct {
	// SaleToken is the token being distributed; QuoteToken is the currency
	// participants pay with.
	SaleToken  common.Address
	QuoteToken common.Address

	// Owner runs the sale: receives the residual sweep on success and the
	// unsold tokens on failure.
	Owner common.Address

	// StartDate and EndDate bound the contribution window.
	StartDate inter.Timestamp
	EndDate   inter.Timestamp

	// ExchangeRate is the amount of sale token per unit of quote token,
	// scaled by RateScale and corrected for the decimals of both tokens at
	// conversion time.
	ExchangeRate uint64

	// Vesting schedule: after EndDate an InitialReleaseRate fraction
	// unlocks immediately, a CliffReleaseRate fraction unlocks after
	// CliffDuration, and the remainder unlocks in equal steps of
	// ReleaseInterval seconds across ReleaseDuration seconds starting at
	// the cliff.
	ReleaseDuration    uint64
	ReleaseInterval    uint64
	CliffDuration      uint64
	InitialReleaseRate uint64
	CliffReleaseRate   uint64

	// SoftCap is the minimum raise for the sale to succeed; HardCap is the
	// maximum the ledger will accept. Both in quote base units.
	SoftCap *big.Int
	HardCap *big.Int
}

// Copy returns a deep copy. LaunchpadParams holds *big.Int fields, so a
// plain struct copy would share cap values with the original.
func (p *LaunchpadParams) Copy() LaunchpadParams {
	cp := *p
	cp.SoftCap = new(big.Int).Set(p.SoftCap)
	cp.HardCap = new(big.Int).Set(p.HardCap)
	return cp
}

// Vesting bundles the schedule fields for the vesting calculator.
func (p *LaunchpadParams) Vesting() VestingSchedule {
	return VestingSchedule{
		EndDate:            p.EndDate,
		CliffDuration:      p.CliffDuration,
		ReleaseDuration:    p.ReleaseDuration,
		ReleaseInterval:    p.ReleaseInterval,
		InitialReleaseRate: p.InitialReleaseRate,
		CliffReleaseRate:   p.CliffReleaseRate,
	}
}

// LiquidityParams configures the liquidity bootstrapping that runs when the
// sale succeeds. Ticks are in the canonical pool orientation (token0 =
// lower address).
type LiquidityParams struct {
	// Rate is the share of the raised quote funds reserved for liquidity,
	// scaled by RateScale. Policy bounds it to [20%, 100%].
	Rate uint64

	// FeeTier selects the pool (100, 500, 3000 or 10000).
	FeeTier uint32

	// PriceTick is the expected pool price; TickLower/TickUpper bound the
	// position's range.
	PriceTick int32
	TickLower int32
	TickUpper int32

	// LockDuration is how long past EndDate the minted position stays
	// locked inside the instance before the owner may withdraw it.
	LockDuration uint64
}

// SaleAmountForQuote converts a quote amount into sale-token base units at
// the configured exchange rate, correcting for the decimal difference
// between the two tokens. The result is floor-divided.
func (p *LaunchpadParams) SaleAmountForQuote(quote *big.Int, saleDecimals, quoteDecimals uint8) *big.Int {
	out := new(big.Int).Mul(quote, new(big.Int).SetUint64(p.ExchangeRate))
	if saleDecimals >= quoteDecimals {
		out.Mul(out, pow10(saleDecimals-quoteDecimals))
	} else {
		out.Div(out, pow10(quoteDecimals-saleDecimals))
	}
	return out.Div(out, big.NewInt(RateScale))
}

// applyRate returns amount * rate / RateScale, floor-divided.
func applyRate(amount *big.Int, rate uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(rate))
	return out.Div(out, big.NewInt(RateScale))
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
