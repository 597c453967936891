package liquidity

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/launchforge/go-launchpad/host"
)

// Request describes one liquidity-bootstrapping run. QuoteAmount is the
// portion of the raised funds reserved for liquidity; the sale-token side is
// computed from the pool price at PriceTick. All ticks are expressed in the
// canonical pool orientation (token0 = lower address).
type Request struct {
	SaleToken  common.Address
	QuoteToken common.Address

	// QuoteAmount of quote-token base units to deposit.
	QuoteAmount *big.Int

	FeeTier   uint32
	PriceTick int32
	TickLower int32
	TickUpper int32

	// MaxDrift is the tolerated distance, in ticks, between the pool's
	// current price and PriceTick. A pool that has drifted further is
	// assumed manipulated and the run is aborted.
	MaxDrift int32

	// SlippageRate scales the desired amounts down to the accepted
	// minimums, in parts per 100000 (98000 accepts a 2% shortfall).
	SlippageRate uint64

	// Payer funds the deposit, Recipient owns the minted position.
	// For a launchpad instance both are the instance itself.
	Payer     common.Address
	Recipient common.Address
}

// Result reports the minted position and the deposited amounts in canonical
// token order.
type Result struct {
	TokenID uint64
	Amount0 *big.Int
	Amount1 *big.Int
}

// Provisioner mints locked liquidity positions through the host AMM.
type Provisioner struct {
	AMM host.AMM
}

// Canonical orders a token pair by address, the pool convention.
// Returns the pair and whether the order was swapped.
func Canonical(a, b common.Address) (token0, token1 common.Address, swapped bool) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b, false
	}
	return b, a, true
}

// Provision runs the full bootstrapping sequence: ensure the pool exists,
// re-validate its price, compute the paired sale-token amount, apply the
// slippage floor and mint. A failure at any step aborts with no position
// minted and no funds moved.
func (p Provisioner) Provision(req Request) (Result, error) {
	token0, token1, _ := Canonical(req.SaleToken, req.QuoteToken)

	if err := p.AMM.EnsurePool(token0, token1, req.FeeTier, req.PriceTick); err != nil {
		return Result{}, fmt.Errorf("ensure pool: %v", err)
	}

	current, err := p.AMM.CurrentTick(token0, token1, req.FeeTier)
	if err != nil {
		return Result{}, fmt.Errorf("read pool tick: %v", err)
	}
	drift := int64(current) - int64(req.PriceTick)
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(req.MaxDrift) {
		return Result{}, fmt.Errorf("pool price drifted %d ticks from %d (max %d)", drift, req.PriceTick, req.MaxDrift)
	}

	saleAmount := PairedSaleAmount(req.QuoteAmount, req.PriceTick, req.SaleToken == token0)

	amount0, amount1 := saleAmount, req.QuoteAmount
	if req.QuoteToken == token0 {
		amount0, amount1 = req.QuoteAmount, saleAmount
	}

	res, err := p.AMM.Mint(host.MintParams{
		Token0:         token0,
		Token1:         token1,
		FeeTier:        req.FeeTier,
		TickLower:      req.TickLower,
		TickUpper:      req.TickUpper,
		Amount0Desired: amount0,
		Amount1Desired: amount1,
		Amount0Min:     scaleDown(amount0, req.SlippageRate),
		Amount1Min:     scaleDown(amount1, req.SlippageRate),
		Payer:          req.Payer,
		Recipient:      req.Recipient,
	})
	if err != nil {
		return Result{}, fmt.Errorf("mint position: %v", err)
	}
	return Result{TokenID: res.TokenID, Amount0: res.Amount0, Amount1: res.Amount1}, nil
}

// PairedSaleAmount computes how many sale-token base units pair against the
// quote amount at the price encoded by tick. saleIsToken0 states which side
// of the canonical pair the sale token is on; the tick prices token1 in
// token0 units, so the conversion direction depends on it.
func PairedSaleAmount(quoteAmount *big.Int, tick int32, saleIsToken0 bool) *big.Int {
	price := PriceAtTick(tick)
	quote := decimal.NewFromBigInt(quoteAmount, 0)
	var sale decimal.Decimal
	if saleIsToken0 {
		// quote is token1: amount0 = amount1 / price
		sale = quote.DivRound(price, pricePrecision)
	} else {
		// quote is token0: amount1 = amount0 * price
		sale = quote.Mul(price)
	}
	return sale.Floor().BigInt()
}

// scaleDown returns amount * rate / 100000, the slippage floor.
func scaleDown(amount *big.Int, rate uint64) *big.Int {
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(rate))
	return out.Div(out, big.NewInt(100000))
}
