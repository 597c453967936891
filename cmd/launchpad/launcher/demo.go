package launcher

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/launchforge/go-launchpad/factory"
	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/inter"
	"github.com/launchforge/go-launchpad/launchpad"
)

// runDemo plays a complete sale lifecycle against the in-memory host:
// registry setup, authorized deployment, contributions up to the hard cap,
// early liquidity creation, vesting claims, the owner sweep and the
// liquidity unlock. Everything runs on the fake clock, so the whole
// lifecycle takes milliseconds of wall time.
func runDemo(ctx *cli.Context) error {
	log := logrus.WithField("cmd", "demo")

	genesis := inter.Timestamp(1700000000)
	env := host.NewFakeHost(genesis)

	admin := common.HexToAddress("0x0000000000000000000000000000000000000a01")
	factoryAddr := common.HexToAddress("0x0000000000000000000000000000000000000f00")
	implAddr := common.HexToAddress("0x0000000000000000000000000000000000000111")

	feeTok := env.Tokens.NewToken(common.HexToAddress("0x00000000000000000000000000000000000000fe"), "LFG", 18)
	quoteTok := env.Tokens.NewToken(common.HexToAddress("0x0000000000000000000000000000000000000c01"), "USDX", 6)
	saleTok := env.Tokens.NewToken(common.HexToAddress("0x00000000000000000000000000000000000005a1"), "DEMO", 18)

	creatorKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	creator := crypto.PubkeyToAddress(creatorKey.PublicKey)
	verifierKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	verifier := crypto.PubkeyToAddress(verifierKey.PublicKey)

	f := factory.New(factory.Config{
		Address:   factoryAddr,
		Owner:     admin,
		FeeToken:  feeTok.Address(),
		Tokens:    env.Tokens,
		AMM:       env.AMM,
		Recoverer: host.EcdsaRecoverer{},
		Clock:     env.Clock,
		Policy:    launchpad.DevPolicy(),
	})

	fee := new(big.Int).Mul(big.NewInt(10), exp10(18)) // 10 LFG per deployment
	if err := f.UpdateImplementation(admin, implAddr, fee); err != nil {
		return err
	}
	if err := f.UpdateQuoteToken(admin, quoteTok.Address(), new(big.Int).Mul(big.NewInt(1000), exp10(6)), new(big.Int).Mul(big.NewInt(100000000), exp10(6))); err != nil {
		return err
	}
	if err := f.UpdateVerifier(admin, verifier, true); err != nil {
		return err
	}
	disclaimer := "I understand that participating in this sale is at my own risk."
	disclaimerHash := crypto.Keccak256Hash([]byte(disclaimer))
	if err := f.UpdateDisclaimerMessage(admin, disclaimerHash, disclaimer); err != nil {
		return err
	}

	hardCap := new(big.Int).Mul(new(big.Int).SetUint64(ctx.Uint64("demo.hardcap")), exp10(6))
	now := env.Clock.Now()
	params := &launchpad.LaunchpadParams{
		SaleToken:          saleTok.Address(),
		QuoteToken:         quoteTok.Address(),
		Owner:              creator,
		StartDate:          now.Add(60),
		EndDate:            now.Add(60 + 3600),
		ExchangeRate:       50000, // 0.5 DEMO per USDX
		ReleaseDuration:    400,
		ReleaseInterval:    100,
		CliffDuration:      0,
		InitialReleaseRate: 25000, // 25% at sale end
		CliffReleaseRate:   0,
		SoftCap:            new(big.Int).Div(hardCap, big.NewInt(2)),
		HardCap:            hardCap,
	}
	liq := &launchpad.LiquidityParams{
		Rate:         30000, // 30% of the raise
		FeeTier:      3000,
		PriceTick:    0,
		TickLower:    -6000,
		TickUpper:    6000,
		LockDuration: 300,
	}
	infoCID := "bafybeidemoscenario"

	// The creator funds the deployment fee and the sale-token escrow.
	feeTok.Mint(creator, fee)
	saleTok.Mint(creator, new(big.Int).Mul(big.NewInt(1000000000), exp10(18)))

	creatorSig, err := crypto.Sign(disclaimerHash.Bytes(), creatorKey)
	if err != nil {
		return err
	}
	digest := factory.ParamsDigest(params, liq, infoCID)
	verifierSig, err := crypto.Sign(digest.Bytes(), verifierKey)
	if err != nil {
		return err
	}

	inst, err := f.DeployLaunchpad(creator, implAddr, params, liq, infoCID, disclaimerHash, creatorSig, verifierSig)
	if err != nil {
		return fmt.Errorf("deploy: %v", err)
	}
	log.WithField("instance", inst.Address().Hex()).Info("launchpad deployed")

	// Contributions: the participants jointly fill the hard cap, so the
	// sale succeeds before the end date.
	n := ctx.Uint64("demo.participants")
	if n == 0 {
		return fmt.Errorf("need at least one participant")
	}
	env.Clock.SetNow(params.StartDate)
	share := new(big.Int).Div(hardCap, new(big.Int).SetUint64(n))
	buyers := make([]common.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		buyer := crypto.PubkeyToAddress(key.PublicKey)
		buyers = append(buyers, buyer)

		amount := new(big.Int).Set(share)
		if i == n-1 {
			amount.Sub(hardCap, new(big.Int).Mul(share, new(big.Int).SetUint64(n-1)))
		}
		quoteTok.Mint(buyer, amount)
		sig, err := signDisclaimer(disclaimerHash, key)
		if err != nil {
			return err
		}
		if err := inst.Buy(buyer, amount, sig); err != nil {
			return fmt.Errorf("buy by %s: %v", buyer.Hex(), err)
		}
	}
	log.WithFields(logrus.Fields{
		"raised":       inst.TotalRaised().String(),
		"participants": inst.ParticipantCount(),
		"status":       inst.Status().String(),
	}).Info("sale filled")

	// Hard cap reached before the end date: only the owner may bootstrap
	// liquidity this early.
	if err := inst.CreateLiquidity(creator); err != nil {
		return fmt.Errorf("create liquidity: %v", err)
	}
	log.WithField("positionID", inst.LiquidityTokenID()).Info("liquidity created")

	// Vesting: 25% at sale end, remainder in four steps of 100 seconds.
	env.Clock.SetNow(params.EndDate.Add(150))
	for _, b := range buyers {
		if err := inst.UserClaim(b); err != nil {
			return fmt.Errorf("first claim by %s: %v", b.Hex(), err)
		}
	}
	env.Clock.SetNow(params.EndDate.Add(401))
	for _, b := range buyers {
		if err := inst.UserClaim(b); err != nil {
			return fmt.Errorf("final claim by %s: %v", b.Hex(), err)
		}
		log.WithFields(logrus.Fields{
			"buyer":   b.Hex(),
			"claimed": saleTok.BalanceOf(b).String(),
		}).Info("vesting complete")
	}

	if err := inst.OwnerClaim(creator); err != nil {
		return fmt.Errorf("owner claim: %v", err)
	}
	if err := inst.UnlockLiquidity(creator); err != nil {
		return fmt.Errorf("unlock liquidity: %v", err)
	}

	log.WithFields(logrus.Fields{
		"status":        inst.Status().String(),
		"events":        len(inst.Events()),
		"ownerQuote":    quoteTok.BalanceOf(creator).String(),
		"ownerSaleLeft": saleTok.BalanceOf(creator).String(),
	}).Info("demo finished")
	return nil
}

func signDisclaimer(hash common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash.Bytes(), key)
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
