package launchpad

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/launchforge/go-launchpad/inter"
	"github.com/launchforge/go-launchpad/liquidity"
)

// ValidateParams checks a launch configuration against the policy bounds.
// All-or-nothing: the first violation aborts initialization with a distinct
// ErrBounds reason and nothing is recorded. The checks are stateless — they
// depend only on the arguments.
func ValidateParams(p *LaunchpadParams, liq *LiquidityParams, pol Policy, now inter.Timestamp) error {
	if p.SaleToken == p.QuoteToken {
		return boundsErrf("sale token and quote token are the same")
	}
	if p.Owner == (common.Address{}) || p.SaleToken == (common.Address{}) || p.QuoteToken == (common.Address{}) {
		return boundsErrf("zero address in params")
	}

	if p.StartDate < now.Add(pol.MinStartDelay) {
		return boundsErrf("start date %d is less than %d seconds ahead", p.StartDate, pol.MinStartDelay)
	}
	if p.StartDate > now.Add(pol.MaxStartDelay) {
		return boundsErrf("start date %d is more than %d seconds ahead", p.StartDate, pol.MaxStartDelay)
	}
	if p.EndDate < p.StartDate.Add(pol.MinSaleDuration) {
		return boundsErrf("sale shorter than %d seconds", pol.MinSaleDuration)
	}
	if p.EndDate > p.StartDate.Add(pol.MaxSaleDuration) {
		return boundsErrf("sale longer than %d seconds", pol.MaxSaleDuration)
	}

	if p.ExchangeRate == 0 {
		return boundsErrf("zero exchange rate")
	}

	if p.ReleaseDuration == 0 || p.ReleaseInterval == 0 {
		return boundsErrf("zero release duration or interval")
	}
	if p.ReleaseInterval >= p.ReleaseDuration {
		return boundsErrf("release interval %d must be smaller than duration %d", p.ReleaseInterval, p.ReleaseDuration)
	}
	if p.ReleaseDuration%p.ReleaseInterval != 0 {
		return boundsErrf("release interval %d does not divide duration %d", p.ReleaseInterval, p.ReleaseDuration)
	}
	// bound each rate before summing, so the sum cannot wrap
	if p.InitialReleaseRate > RateScale || p.CliffReleaseRate > RateScale {
		return boundsErrf("release rate exceeds 100%%")
	}
	if p.InitialReleaseRate+p.CliffReleaseRate > RateScale {
		return boundsErrf("initial + cliff release rates exceed 100%%")
	}
	if p.CliffDuration > pol.MaxCliffDuration {
		return boundsErrf("cliff duration %d exceeds %d", p.CliffDuration, pol.MaxCliffDuration)
	}

	if p.SoftCap == nil || p.HardCap == nil || p.SoftCap.Sign() <= 0 || p.HardCap.Sign() <= 0 {
		return boundsErrf("caps must be positive")
	}
	if p.SoftCap.Cmp(p.HardCap) > 0 {
		return boundsErrf("soft cap exceeds hard cap")
	}

	if liq.Rate < pol.MinLiquidityRate || liq.Rate > RateScale {
		return boundsErrf("liquidity rate %d outside [%d, %d]", liq.Rate, pol.MinLiquidityRate, RateScale)
	}

	spacing, err := liquidity.TickSpacing(liq.FeeTier)
	if err != nil {
		return boundsErrf("%v", err)
	}
	if !liquidity.Aligned(liq.TickLower, spacing) || !liquidity.Aligned(liq.TickUpper, spacing) {
		return boundsErrf("tick bounds not aligned to spacing %d", spacing)
	}
	if liq.TickLower < liquidity.MinTick || liq.TickUpper > liquidity.MaxTick {
		return boundsErrf("tick bounds outside price space")
	}
	if !(liq.TickLower < liq.PriceTick && liq.PriceTick < liq.TickUpper) {
		return boundsErrf("price tick %d not strictly inside [%d, %d]", liq.PriceTick, liq.TickLower, liq.TickUpper)
	}
	if liq.TickUpper-liq.TickLower <= pol.MinTickRangeMultiplier*spacing {
		return boundsErrf("tick range narrower than %d spacings", pol.MinTickRangeMultiplier)
	}

	if liq.LockDuration == 0 {
		return boundsErrf("zero liquidity lock duration")
	}
	return nil
}
