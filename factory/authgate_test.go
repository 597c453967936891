package factory

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/launchpad"
)

const disclaimerText = "I accept all risks of participating in this sale."

func newKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func sign(t *testing.T, digest common.Hash, key *ecdsa.PrivateKey) []byte {
	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)
	return sig
}

func testParams() (*launchpad.LaunchpadParams, *launchpad.LiquidityParams) {
	p := &launchpad.LaunchpadParams{
		SaleToken:          common.HexToAddress("0x51"),
		QuoteToken:         common.HexToAddress("0xc1"),
		Owner:              common.HexToAddress("0xaa"),
		StartDate:          1700001000,
		EndDate:            1700008200,
		ExchangeRate:       50000,
		ReleaseDuration:    400,
		ReleaseInterval:    100,
		InitialReleaseRate: 25000,
		SoftCap:            big.NewInt(50000),
		HardCap:            big.NewInt(100000),
	}
	liq := &launchpad.LiquidityParams{
		Rate:         30000,
		FeeTier:      3000,
		TickLower:    -6000,
		TickUpper:    6000,
		LockDuration: 300,
	}
	return p, liq
}

func TestAuthGate_authorize(t *testing.T) {
	require := require.New(t)

	creatorKey, creator := newKey(t)
	verifierKey, verifier := newKey(t)
	strangerKey, _ := newKey(t)

	gate := NewAuthGate(host.EcdsaRecoverer{})
	gate.SetVerifier(verifier, true)

	hash := crypto.Keccak256Hash([]byte(disclaimerText))
	require.NoError(gate.SetDisclaimerMessage(hash, disclaimerText))

	p, liq := testParams()
	digest := ParamsDigest(p, liq, "bafytest")

	creatorSig := sign(t, hash, creatorKey)
	verifierSig := sign(t, digest, verifierKey)

	got, err := gate.Authorize(creator, digest, hash, creatorSig, verifierSig)
	require.NoError(err)
	require.Equal(verifier, got)

	// The disclaimer signature must come from the caller.
	_, err = gate.Authorize(common.HexToAddress("0x99"), digest, hash, creatorSig, verifierSig)
	require.ErrorIs(err, launchpad.ErrAuthorization)

	// A malformed creator signature is rejected outright.
	_, err = gate.Authorize(creator, digest, hash, creatorSig[:64], verifierSig)
	require.ErrorIs(err, launchpad.ErrAuthorization)

	// The attestation must come from an enabled verifier.
	strangerSig := sign(t, digest, strangerKey)
	_, err = gate.Authorize(creator, digest, hash, creatorSig, strangerSig)
	require.ErrorIs(err, launchpad.ErrAuthorization)

	// A disabled verifier no longer passes.
	gate.SetVerifier(verifier, false)
	_, err = gate.Authorize(creator, digest, hash, creatorSig, verifierSig)
	require.ErrorIs(err, launchpad.ErrAuthorization)

	// An unregistered disclaimer blocks everything.
	gate.SetVerifier(verifier, true)
	other := crypto.Keccak256Hash([]byte("other notice"))
	otherSig := sign(t, other, creatorKey)
	_, err = gate.Authorize(creator, digest, other, otherSig, verifierSig)
	require.ErrorIs(err, launchpad.ErrAuthorization)
}

func TestAuthGate_revokedDisclaimer(t *testing.T) {
	require := require.New(t)

	creatorKey, creator := newKey(t)
	verifierKey, verifier := newKey(t)

	gate := NewAuthGate(host.EcdsaRecoverer{})
	gate.SetVerifier(verifier, true)

	hash := crypto.Keccak256Hash([]byte(disclaimerText))
	require.NoError(gate.SetDisclaimerMessage(hash, disclaimerText))
	require.Equal(disclaimerText, gate.DisclaimerMessage(hash))

	// Revoke: the empty message deletes the entry.
	require.NoError(gate.SetDisclaimerMessage(hash, ""))
	require.Equal("", gate.DisclaimerMessage(hash))

	p, liq := testParams()
	digest := ParamsDigest(p, liq, "bafytest")
	_, err := gate.Authorize(creator, digest, hash,
		sign(t, hash, creatorKey), sign(t, digest, verifierKey))
	require.ErrorIs(err, launchpad.ErrAuthorization)
}

func TestAuthGate_disclaimerMustMatchHash(t *testing.T) {
	require := require.New(t)

	gate := NewAuthGate(host.EcdsaRecoverer{})
	wrong := crypto.Keccak256Hash([]byte("something else"))
	err := gate.SetDisclaimerMessage(wrong, disclaimerText)
	require.ErrorIs(err, launchpad.ErrBounds)
	require.Equal("", gate.DisclaimerMessage(wrong))
}

func TestParamsDigest_bindsEveryField(t *testing.T) {
	require := require.New(t)

	p, liq := testParams()
	base := ParamsDigest(p, liq, "bafytest")

	// Deterministic.
	require.Equal(base, ParamsDigest(p, liq, "bafytest"))

	// Any change to any input produces a different digest.
	p2 := p.Copy()
	p2.ExchangeRate++
	require.NotEqual(base, ParamsDigest(&p2, liq, "bafytest"))

	p3 := p.Copy()
	p3.HardCap = big.NewInt(100001)
	require.NotEqual(base, ParamsDigest(&p3, liq, "bafytest"))

	liq2 := *liq
	liq2.TickLower = -6060
	require.NotEqual(base, ParamsDigest(p, &liq2, "bafytest"))

	liq3 := *liq
	liq3.LockDuration++
	require.NotEqual(base, ParamsDigest(p, &liq3, "bafytest"))

	require.NotEqual(base, ParamsDigest(p, liq, "bafyother"))
}
