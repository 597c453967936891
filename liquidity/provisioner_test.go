package liquidity

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/launchforge/go-launchpad/host"
)

var (
	lowAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	highAddr = common.HexToAddress("0x9999999999999999999999999999999999999999")
	payer    = common.HexToAddress("0xabcd")
)

func TestCanonical(t *testing.T) {
	require := require.New(t)

	t0, t1, swapped := Canonical(lowAddr, highAddr)
	require.Equal(lowAddr, t0)
	require.Equal(highAddr, t1)
	require.False(swapped)

	t0, t1, swapped = Canonical(highAddr, lowAddr)
	require.Equal(lowAddr, t0)
	require.Equal(highAddr, t1)
	require.True(swapped)
}

func TestPairedSaleAmount(t *testing.T) {
	require := require.New(t)

	// At tick 0 the price is 1: both sides pair equally.
	require.Equal(int64(50000),
		PairedSaleAmount(big.NewInt(50000), 0, true).Int64())
	require.Equal(int64(50000),
		PairedSaleAmount(big.NewInt(50000), 0, false).Int64())

	// Tick 6932 prices token1 at ~2.00004 token0 units.
	// Sale on token0: sale = quote / price, floored.
	require.Equal(int64(24999),
		PairedSaleAmount(big.NewInt(50000), 6932, true).Int64())
	// Sale on token1: sale = quote * price, floored.
	require.Equal(int64(100001),
		PairedSaleAmount(big.NewInt(50000), 6932, false).Int64())
}

type provisionFixture struct {
	env  *host.FakeHost
	prov Provisioner
	sale *host.FakeToken
	quot *host.FakeToken
	req  Request
}

func newProvisionFixture(t *testing.T, saleAddr, quoteAddr common.Address) *provisionFixture {
	env := host.NewFakeHost(1700000000)
	sale := env.Tokens.NewToken(saleAddr, "SALE", 6)
	quot := env.Tokens.NewToken(quoteAddr, "USDX", 6)
	sale.Mint(payer, big.NewInt(1000000))
	quot.Mint(payer, big.NewInt(1000000))

	return &provisionFixture{
		env:  env,
		prov: Provisioner{AMM: env.AMM},
		sale: sale,
		quot: quot,
		req: Request{
			SaleToken:    saleAddr,
			QuoteToken:   quoteAddr,
			QuoteAmount:  big.NewInt(50000),
			FeeTier:      3000,
			PriceTick:    0,
			TickLower:    -6000,
			TickUpper:    6000,
			MaxDrift:     100,
			SlippageRate: 98000,
			Payer:        payer,
			Recipient:    payer,
		},
	}
}

func TestProvision_saleIsToken0(t *testing.T) {
	require := require.New(t)
	f := newProvisionFixture(t, lowAddr, highAddr)

	res, err := f.prov.Provision(f.req)
	require.NoError(err)
	require.Equal(uint64(1), res.TokenID)
	// token0 = sale, token1 = quote, paired 1:1 at tick 0.
	require.Equal(int64(50000), res.Amount0.Int64())
	require.Equal(int64(50000), res.Amount1.Int64())
	require.Equal(int64(950000), f.sale.BalanceOf(payer).Int64())
	require.Equal(int64(950000), f.quot.BalanceOf(payer).Int64())
}

func TestProvision_saleIsToken1(t *testing.T) {
	require := require.New(t)
	// Same run with the sale token on the high address: the canonical pair
	// flips but the deposit is identical.
	f := newProvisionFixture(t, highAddr, lowAddr)

	res, err := f.prov.Provision(f.req)
	require.NoError(err)
	require.Equal(int64(50000), res.Amount0.Int64())
	require.Equal(int64(50000), res.Amount1.Int64())
	require.Equal(int64(950000), f.sale.BalanceOf(payer).Int64())
	require.Equal(int64(950000), f.quot.BalanceOf(payer).Int64())
}

func TestProvision_rejectsDriftedPool(t *testing.T) {
	require := require.New(t)
	f := newProvisionFixture(t, lowAddr, highAddr)

	// Pool pre-exists with a price 101 ticks away from the target.
	require.NoError(f.env.AMM.EnsurePool(lowAddr, highAddr, 3000, 101))

	_, err := f.prov.Provision(f.req)
	require.Error(err)
	require.Contains(err.Error(), "drifted")
	require.Equal(int64(1000000), f.sale.BalanceOf(payer).Int64(), "nothing moved")

	// Drift exactly at the limit is accepted.
	require.NoError(f.env.AMM.SetTick(lowAddr, highAddr, 3000, 100))
	_, err = f.prov.Provision(f.req)
	require.NoError(err)
}

func TestProvision_slippageFloor(t *testing.T) {
	require := require.New(t)
	f := newProvisionFixture(t, lowAddr, highAddr)

	// Deposits landing at 97% of desired break the 98% floor.
	f.env.AMM.MintHaircut = 97000
	_, err := f.prov.Provision(f.req)
	require.Error(err)
	require.Contains(err.Error(), "slippage")

	// 98% exactly passes.
	f.env.AMM.MintHaircut = 98000
	res, err := f.prov.Provision(f.req)
	require.NoError(err)
	require.Equal(int64(49000), res.Amount0.Int64())
}

func TestProvision_mintFailureMovesNothing(t *testing.T) {
	require := require.New(t)
	f := newProvisionFixture(t, lowAddr, highAddr)

	f.env.AMM.MintErr = errors.New("mint rejected")
	_, err := f.prov.Provision(f.req)
	require.Error(err)
	require.Equal(int64(1000000), f.sale.BalanceOf(payer).Int64())
	require.Equal(int64(1000000), f.quot.BalanceOf(payer).Int64())
}
