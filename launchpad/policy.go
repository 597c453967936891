package launchpad

// Policy bundles the platform-wide bounds that launch parameters are
// validated against, plus the tolerances of the liquidity-creation protocol.
// Presets exist for production and development so simulations and tests can
// run an accelerated lifecycle without touching the validation logic.
type Policy struct {
	// StartDate must fall inside [now+MinStartDelay, now+MaxStartDelay].
	MinStartDelay uint64
	MaxStartDelay uint64

	// EndDate-StartDate must fall inside [MinSaleDuration, MaxSaleDuration].
	MinSaleDuration uint64
	MaxSaleDuration uint64

	// CliffDuration is capped at MaxCliffDuration.
	MaxCliffDuration uint64

	// MinLiquidityRate is the lower bound of LiquidityParams.Rate, scaled
	// by RateScale. The upper bound is always RateScale (100%).
	MinLiquidityRate uint64

	// MinTickRangeMultiplier requires TickUpper-TickLower to exceed this
	// many tick spacings, so positions cannot be degenerately narrow.
	MinTickRangeMultiplier int32

	// MaxPriceDrift is the tolerated distance in ticks between the pool
	// price and the configured PriceTick at liquidity-creation time.
	MaxPriceDrift int32

	// SlippageRate scales desired deposit amounts down to the accepted
	// minimums at mint time, in parts per RateScale.
	SlippageRate uint64

	// InfoChangeDeadline is how long before StartDate the info CID
	// freezes: changes require more than this many seconds remaining.
	InfoChangeDeadline uint64
}

// DefaultPolicy returns the production bounds.
func DefaultPolicy() Policy {
	return Policy{
		MinStartDelay:          24 * 60 * 60,      // announced at least a day ahead
		MaxStartDelay:          90 * 24 * 60 * 60, // and at most a quarter ahead
		MinSaleDuration:        60 * 60,
		MaxSaleDuration:        30 * 24 * 60 * 60,
		MaxCliffDuration:       365 * 24 * 60 * 60,
		MinLiquidityRate:       20000, // 20%
		MinTickRangeMultiplier: 10,
		MaxPriceDrift:          100,
		SlippageRate:           98000, // accept a 2% shortfall
		InfoChangeDeadline:     24 * 60 * 60,
	}
}

// DevPolicy returns accelerated bounds for tests, simulations and the demo
// CLI: sales can start within a minute and run for minutes instead of days.
// Tolerances (drift, slippage, liquidity rate) match production so the
// protocol paths behave identically.
func DevPolicy() Policy {
	cfg := DefaultPolicy()
	cfg.MinStartDelay = 10
	cfg.MaxStartDelay = 24 * 60 * 60
	cfg.MinSaleDuration = 60
	cfg.MaxSaleDuration = 24 * 60 * 60
	cfg.MaxCliffDuration = 24 * 60 * 60
	cfg.InfoChangeDeadline = 30
	return cfg
}
