package test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/launchforge/go-launchpad/factory"
	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/launchpad"
)

// Package test runs full lifecycles through the real factory and instance
// code against the in-memory host, with production signature recovery:
// - a successful sale: deploy, contribute, bootstrap liquidity, vest, sweep
// - a failed sale: deadline below soft cap, refunds both ways
// - an administrative cancellation after success
//
// These tests exercise the same wiring the demo command uses, so a change
// that breaks the platform end to end fails here even when every package
// passes in isolation.

const disclaimerText = "I accept all risks of participating in this sale."

type platform struct {
	env   *host.FakeHost
	f     *factory.Factory
	fee   *host.FakeToken
	sale  *host.FakeToken
	quote *host.FakeToken

	admin          common.Address
	creatorKey     *ecdsa.PrivateKey
	creator        common.Address
	verifierKey    *ecdsa.PrivateKey
	disclaimerHash common.Hash
}

func newPlatform(t *testing.T) *platform {
	env := host.NewFakeHost(1700000000)
	fee := env.Tokens.NewToken(common.HexToAddress("0xfe"), "LFG", 18)
	sale := env.Tokens.NewToken(common.HexToAddress("0x51"), "SALE", 6)
	quote := env.Tokens.NewToken(common.HexToAddress("0xc1"), "USDX", 6)

	admin := common.HexToAddress("0xad")
	creatorKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate creator key: %v", err)
	}
	creator := crypto.PubkeyToAddress(creatorKey.PublicKey)
	verifierKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate verifier key: %v", err)
	}
	verifier := crypto.PubkeyToAddress(verifierKey.PublicKey)

	f := factory.New(factory.Config{
		Address:   common.HexToAddress("0xf0"),
		Owner:     admin,
		FeeToken:  fee.Address(),
		Tokens:    env.Tokens,
		AMM:       env.AMM,
		Recoverer: host.EcdsaRecoverer{},
		Clock:     env.Clock,
		Policy:    launchpad.DevPolicy(),
	})

	if err := f.UpdateImplementation(admin, common.HexToAddress("0x1111"), big.NewInt(10)); err != nil {
		t.Fatalf("enable implementation: %v", err)
	}
	if err := f.UpdateQuoteToken(admin, quote.Address(), big.NewInt(1000), big.NewInt(1000000)); err != nil {
		t.Fatalf("allowlist quote token: %v", err)
	}
	if err := f.UpdateVerifier(admin, verifier, true); err != nil {
		t.Fatalf("enable verifier: %v", err)
	}
	hash := crypto.Keccak256Hash([]byte(disclaimerText))
	if err := f.UpdateDisclaimerMessage(admin, hash, disclaimerText); err != nil {
		t.Fatalf("register disclaimer: %v", err)
	}

	fee.Mint(creator, big.NewInt(1000))
	sale.Mint(creator, big.NewInt(10000000))

	return &platform{
		env: env, f: f, fee: fee, sale: sale, quote: quote,
		admin: admin, creatorKey: creatorKey, creator: creator,
		verifierKey: verifierKey, disclaimerHash: hash,
	}
}

func (pl *platform) deploy(t *testing.T) (*launchpad.Instance, *launchpad.LaunchpadParams) {
	now := pl.env.Clock.Now()
	params := &launchpad.LaunchpadParams{
		SaleToken:          pl.sale.Address(),
		QuoteToken:         pl.quote.Address(),
		Owner:              pl.creator,
		StartDate:          now.Add(1000),
		EndDate:            now.Add(1000 + 7200),
		ExchangeRate:       100000, // 1 SALE per USDX, both 6 decimals
		ReleaseDuration:    400,
		ReleaseInterval:    100,
		InitialReleaseRate: 25000,
		SoftCap:            big.NewInt(50000),
		HardCap:            big.NewInt(100000),
	}
	liq := &launchpad.LiquidityParams{
		Rate:         50000,
		FeeTier:      3000,
		PriceTick:    0,
		TickLower:    -6000,
		TickUpper:    6000,
		LockDuration: 300,
	}

	creatorSig, err := crypto.Sign(pl.disclaimerHash.Bytes(), pl.creatorKey)
	if err != nil {
		t.Fatalf("sign disclaimer: %v", err)
	}
	digest := factory.ParamsDigest(params, liq, "bafyintegration")
	verifierSig, err := crypto.Sign(digest.Bytes(), pl.verifierKey)
	if err != nil {
		t.Fatalf("sign params digest: %v", err)
	}

	inst, err := pl.f.DeployLaunchpad(pl.creator, common.HexToAddress("0x1111"),
		params, liq, "bafyintegration", pl.disclaimerHash, creatorSig, verifierSig)
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	return inst, params
}

// newBuyer creates a funded participant with a signed disclaimer.
func (pl *platform) newBuyer(t *testing.T, funds int64) (common.Address, []byte) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate buyer key: %v", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	pl.quote.Mint(addr, big.NewInt(funds))
	sig, err := crypto.Sign(pl.disclaimerHash.Bytes(), key)
	if err != nil {
		t.Fatalf("sign disclaimer: %v", err)
	}
	return addr, sig
}

// TestLifecycle_success drives a sale from deployment to the final sweep:
// the hard cap is hit early, the owner bootstraps liquidity before the end
// date, participants claim along the vesting schedule and the owner unlocks
// the position after the lock expires.
func TestLifecycle_success(t *testing.T) {
	pl := newPlatform(t)
	inst, params := pl.deploy(t)

	if got := inst.Status(); got != launchpad.StatusPending {
		t.Fatalf("status after deploy = %s, want Pending", got)
	}

	pl.env.Clock.SetNow(params.StartDate)
	alice, aliceSig := pl.newBuyer(t, 60000)
	bob, bobSig := pl.newBuyer(t, 60000)

	if err := inst.Buy(alice, big.NewInt(60000), aliceSig); err != nil {
		t.Fatalf("alice buy: %v", err)
	}
	// Bob's contribution is clipped to the remaining 40000.
	if err := inst.Buy(bob, big.NewInt(60000), bobSig); err != nil {
		t.Fatalf("bob buy: %v", err)
	}
	if got := inst.TotalRaised(); got.Int64() != 100000 {
		t.Fatalf("raised = %s, want 100000", got)
	}
	if got := pl.quote.BalanceOf(bob); got.Int64() != 20000 {
		t.Fatalf("bob keeps %s, want the 20000 excess", got)
	}
	if got := inst.Status(); got != launchpad.StatusSucceeded {
		t.Fatalf("status at hard cap = %s, want Succeeded", got)
	}

	// Early success: the owner bootstraps liquidity before the end date.
	if err := inst.CreateLiquidity(pl.creator); err != nil {
		t.Fatalf("create liquidity: %v", err)
	}
	if got := inst.Status(); got != launchpad.StatusDone {
		t.Fatalf("status after liquidity = %s, want Done", got)
	}
	posOwner, err := pl.env.AMM.PositionOwner(inst.LiquidityTokenID())
	if err != nil {
		t.Fatalf("position owner: %v", err)
	}
	if posOwner != inst.Address() {
		t.Fatalf("position owned by %s, want the instance", posOwner.Hex())
	}

	// At the end date the initial 25% unlocks.
	pl.env.Clock.SetNow(params.EndDate)
	if err := inst.UserClaim(alice); err != nil {
		t.Fatalf("alice initial claim: %v", err)
	}
	if got := pl.sale.BalanceOf(alice); got.Int64() != 15000 {
		t.Fatalf("alice claimed %s, want 15000 (25%% of 60000)", got)
	}

	// Past the full schedule everyone gets the rest.
	pl.env.Clock.SetNow(params.EndDate.Add(401))
	if err := inst.UserClaim(alice); err != nil {
		t.Fatalf("alice final claim: %v", err)
	}
	if err := inst.UserClaim(bob); err != nil {
		t.Fatalf("bob claim: %v", err)
	}
	if got := pl.sale.BalanceOf(alice); got.Int64() != 60000 {
		t.Fatalf("alice total = %s, want 60000", got)
	}
	if got := pl.sale.BalanceOf(bob); got.Int64() != 40000 {
		t.Fatalf("bob total = %s, want 40000", got)
	}

	// The owner sweeps the residual quote (the half not sent to the pool).
	ownerQuoteBefore := pl.quote.BalanceOf(pl.creator)
	if err := inst.OwnerClaim(pl.creator); err != nil {
		t.Fatalf("owner claim: %v", err)
	}
	gained := new(big.Int).Sub(pl.quote.BalanceOf(pl.creator), ownerQuoteBefore)
	if gained.Int64() != 50000 {
		t.Fatalf("owner swept %s quote, want 50000", gained)
	}

	// The lock expired long ago at this point: the position moves out.
	if err := inst.UnlockLiquidity(pl.creator); err != nil {
		t.Fatalf("unlock liquidity: %v", err)
	}
	posOwner, err = pl.env.AMM.PositionOwner(inst.LiquidityTokenID())
	if err != nil {
		t.Fatalf("position owner: %v", err)
	}
	if posOwner != pl.creator {
		t.Fatalf("position owned by %s, want the creator", posOwner.Hex())
	}
}

// TestLifecycle_failure runs a sale that misses its soft cap: contributions
// flow back to the participants and the escrowed sale tokens back to the
// owner.
func TestLifecycle_failure(t *testing.T) {
	pl := newPlatform(t)
	inst, params := pl.deploy(t)

	pl.env.Clock.SetNow(params.StartDate)
	alice, aliceSig := pl.newBuyer(t, 10000)
	if err := inst.Buy(alice, big.NewInt(10000), aliceSig); err != nil {
		t.Fatalf("alice buy: %v", err)
	}

	pl.env.Clock.SetNow(params.EndDate)
	if got := inst.Status(); got != launchpad.StatusFailed {
		t.Fatalf("status past deadline = %s, want Failed", got)
	}

	if err := inst.CreateLiquidity(pl.creator); err == nil {
		t.Fatal("liquidity creation succeeded on a failed sale")
	}
	if err := inst.UserClaim(alice); err == nil {
		t.Fatal("claim succeeded on a failed sale")
	}

	if err := inst.UserRefund(alice); err != nil {
		t.Fatalf("alice refund: %v", err)
	}
	if got := pl.quote.BalanceOf(alice); got.Int64() != 10000 {
		t.Fatalf("alice refunded %s, want 10000", got)
	}

	saleBefore := pl.sale.BalanceOf(pl.creator)
	if err := inst.OwnerRefund(pl.creator); err != nil {
		t.Fatalf("owner refund: %v", err)
	}
	regained := new(big.Int).Sub(pl.sale.BalanceOf(pl.creator), saleBefore)
	// The full funding comes back: 100000 sellout + 50000 liquidity reserve.
	if regained.Int64() != 150000 {
		t.Fatalf("owner regained %s sale tokens, want 150000", regained)
	}
}

// TestLifecycle_adminCancel cancels a succeeded sale through the factory
// before liquidity exists; participants fall through to the refund path.
func TestLifecycle_adminCancel(t *testing.T) {
	pl := newPlatform(t)
	inst, params := pl.deploy(t)

	pl.env.Clock.SetNow(params.StartDate)
	alice, aliceSig := pl.newBuyer(t, 100000)
	if err := inst.Buy(alice, big.NewInt(100000), aliceSig); err != nil {
		t.Fatalf("alice buy: %v", err)
	}
	if got := inst.Status(); got != launchpad.StatusSucceeded {
		t.Fatalf("status = %s, want Succeeded", got)
	}

	if err := pl.f.CancelLaunchpad(pl.admin, inst.Address(), "regulatory hold"); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if got := inst.Status(); got != launchpad.StatusCanceled {
		t.Fatalf("status = %s, want Canceled", got)
	}
	if got := inst.CancelReason(); got != "regulatory hold" {
		t.Fatalf("cancel reason = %q", got)
	}

	if err := inst.UserRefund(alice); err != nil {
		t.Fatalf("alice refund: %v", err)
	}
	if got := pl.quote.BalanceOf(alice); got.Int64() != 100000 {
		t.Fatalf("alice refunded %s, want 100000", got)
	}
	if err := inst.OwnerRefund(pl.creator); err != nil {
		t.Fatalf("owner refund: %v", err)
	}
}
