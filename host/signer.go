package host

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the expected length of a recoverable signature:
// 32 bytes R, 32 bytes S, 1 byte recovery id.
const SignatureLength = 65

// ErrRecovery is returned when a signature cannot be recovered at all, as
// opposed to recovering cleanly to an unexpected signer. Callers rely on the
// distinction: a malformed signature is rejected outright, never silently
// mapped to some identity.
var ErrRecovery = errors.New("signature recovery failed")

// Recoverer is the signature-recovery capability: given a 32-byte digest and
// a signature, report the identity that produced it.
type Recoverer interface {
	Recover(digest common.Hash, sig []byte) (common.Address, error)
}

// EcdsaRecoverer recovers secp256k1 signatures in the standard
// [R || S || V] layout, V in {0, 1}. This is the production implementation.
type EcdsaRecoverer struct{}

// Recover implements Recoverer.
func (EcdsaRecoverer) Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature is %d bytes, want %d", ErrRecovery, len(sig), SignatureLength)
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrRecovery, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// StaticRecoverer is a deterministic fake for tests and simulations: it maps
// a signature's first byte to a configured signer, so a test can mint
// "signatures" without key material. A nil entry or unknown byte fails with
// ErrRecovery.
type StaticRecoverer map[byte]common.Address

// Recover implements Recoverer.
func (s StaticRecoverer) Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) == 0 {
		return common.Address{}, fmt.Errorf("%w: empty signature", ErrRecovery)
	}
	signer, ok := s[sig[0]]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: unknown test signature 0x%02x", ErrRecovery, sig[0])
	}
	return signer, nil
}
