// Package factory implements the deployment side of the launchpad platform:
// the registries (implementations, quote tokens, verifiers, disclaimers),
// the two-signature authorization gate, and the factory that instantiates
// funded launchpad instances.
package factory

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/launchpad"
)

// AuthGate verifies the two-party authorization required before a
// deployment:
//
//   - the creator's disclaimer signature: the caller must have signed the
//     hash of a registered, non-revoked disclaimer message, acknowledging
//     the legal notice;
//   - the verifier's attestation: an allow-listed verifier must have signed
//     the digest of the exact launch parameters being deployed.
//
// Both recoveries must succeed; a malformed signature is rejected, never
// silently mapped to some identity.
type AuthGate struct {
	rec         host.Recoverer
	verifiers   map[common.Address]bool
	disclaimers map[common.Hash]string
}

// NewAuthGate creates an empty gate using the given recovery capability.
func NewAuthGate(rec host.Recoverer) *AuthGate {
	return &AuthGate{
		rec:         rec,
		verifiers:   make(map[common.Address]bool),
		disclaimers: make(map[common.Hash]string),
	}
}

// SetVerifier enables or disables a verifier identity.
func (g *AuthGate) SetVerifier(addr common.Address, enabled bool) {
	g.verifiers[addr] = enabled
}

// IsVerifier reports whether the identity is an enabled verifier.
func (g *AuthGate) IsVerifier(addr common.Address) bool {
	return g.verifiers[addr]
}

// SetDisclaimerMessage registers a disclaimer text under its keccak hash.
// An empty message revokes the hash. A non-empty message must actually hash
// to the given key, so the registry can never hold a text its key does not
// commit to.
func (g *AuthGate) SetDisclaimerMessage(hash common.Hash, message string) error {
	if message == "" {
		delete(g.disclaimers, hash)
		return nil
	}
	if crypto.Keccak256Hash([]byte(message)) != hash {
		return fmt.Errorf("%w: message does not hash to %s", launchpad.ErrBounds, hash.Hex())
	}
	g.disclaimers[hash] = message
	return nil
}

// DisclaimerMessage returns the registered text, empty if revoked/unknown.
func (g *AuthGate) DisclaimerMessage(hash common.Hash) string {
	return g.disclaimers[hash]
}

// Authorize runs the full two-signature check and returns the attesting
// verifier. Every failure is an ErrAuthorization.
func (g *AuthGate) Authorize(caller common.Address, paramsDigest, disclaimerHash common.Hash, creatorSig, verifierSig []byte) (common.Address, error) {
	if g.disclaimers[disclaimerHash] == "" {
		return common.Address{}, fmt.Errorf("%w: disclaimer %s is not registered", launchpad.ErrAuthorization, disclaimerHash.Hex())
	}

	creator, err := g.rec.Recover(disclaimerHash, creatorSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: creator signature: %v", launchpad.ErrAuthorization, err)
	}
	if creator != caller {
		return common.Address{}, fmt.Errorf("%w: disclaimer signed by %s, not the caller", launchpad.ErrAuthorization, creator.Hex())
	}

	verifier, err := g.rec.Recover(paramsDigest, verifierSig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: verifier signature: %v", launchpad.ErrAuthorization, err)
	}
	if !g.verifiers[verifier] {
		return common.Address{}, fmt.Errorf("%w: %s is not an enabled verifier", launchpad.ErrAuthorization, verifier.Hex())
	}
	return verifier, nil
}

// ParamsDigest computes the canonical digest a verifier signs: a keccak over
// the fixed-width packing of every launch parameter plus the info CID.
// Fixed-width concatenation (addresses 20 bytes, integers big-endian,
// caps left-padded to 32 bytes) so an on-chain verifier can reproduce the
// digest with packed ABI encoding.
func ParamsDigest(p *launchpad.LaunchpadParams, liq *launchpad.LiquidityParams, infoCID string) common.Hash {
	buf := make([]byte, 0, 256+len(infoCID))

	buf = append(buf, p.SaleToken.Bytes()...)
	buf = append(buf, p.QuoteToken.Bytes()...)
	buf = append(buf, p.Owner.Bytes()...)
	buf = appendUint64(buf, uint64(p.StartDate))
	buf = appendUint64(buf, uint64(p.EndDate))
	buf = appendUint64(buf, p.ExchangeRate)
	buf = appendUint64(buf, p.ReleaseDuration)
	buf = appendUint64(buf, p.ReleaseInterval)
	buf = appendUint64(buf, p.CliffDuration)
	buf = appendUint64(buf, p.InitialReleaseRate)
	buf = appendUint64(buf, p.CliffReleaseRate)
	buf = append(buf, common.LeftPadBytes(p.SoftCap.Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(p.HardCap.Bytes(), 32)...)

	buf = appendUint64(buf, liq.Rate)
	buf = appendUint32(buf, liq.FeeTier)
	buf = appendUint32(buf, uint32(liq.PriceTick))
	buf = appendUint32(buf, uint32(liq.TickLower))
	buf = appendUint32(buf, uint32(liq.TickUpper))
	buf = appendUint64(buf, liq.LockDuration)

	buf = append(buf, []byte(infoCID)...)
	return crypto.Keccak256Hash(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
