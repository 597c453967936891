// Package liquidity bootstraps a locked concentrated-liquidity position out
// of a successful sale: it canonicalizes the token pair, validates the pool
// price against the configured tick, computes the paired deposit amounts and
// mints through the host position manager.
package liquidity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tick bounds of the concentrated-liquidity price space. A tick t encodes
// the price 1.0001^t of token1 in terms of token0, both in base units.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// pricePrecision is the number of fractional digits kept while
// exponentiating. Intermediate rounding keeps the representation bounded;
// the relative error stays far below one base unit for any realistic amount.
const pricePrecision int32 = 40

// tickBase is 1.0001, the price ratio of two adjacent ticks.
var tickBase = decimal.New(10001, -4)

// TickSpacing returns the tick spacing for a supported fee tier.
// Fee tiers are in hundredths of a basis point: 100 = 0.01%, 500 = 0.05%,
// 3000 = 0.3%, 10000 = 1%.
func TickSpacing(feeTier uint32) (int32, error) {
	switch feeTier {
	case 100:
		return 1, nil
	case 500:
		return 10, nil
	case 3000:
		return 60, nil
	case 10000:
		return 200, nil
	default:
		return 0, fmt.Errorf("unsupported fee tier %d", feeTier)
	}
}

// Aligned reports whether a tick sits on the spacing grid.
func Aligned(tick, spacing int32) bool {
	return tick%spacing == 0
}

// PriceAtTick computes 1.0001^tick: the amount of token1 base units one
// token0 base unit is worth at that tick. Exponentiation by squaring with
// bounded intermediate precision.
func PriceAtTick(tick int32) decimal.Decimal {
	exp := tick
	if exp < 0 {
		exp = -exp
	}
	result := decimal.New(1, 0)
	pow := tickBase
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(pow).Round(pricePrecision)
		}
		pow = pow.Mul(pow).Round(pricePrecision)
		exp >>= 1
	}
	if tick < 0 {
		result = decimal.New(1, 0).DivRound(result, pricePrecision)
	}
	return result
}
