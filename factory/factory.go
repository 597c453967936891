package factory

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/inter"
	"github.com/launchforge/go-launchpad/launchpad"
)

// QuoteTokenBounds is the allowlist entry of a quote token: the window the
// soft cap of a sale denominated in it must fall into.
type QuoteTokenBounds struct {
	MinSoftCap *big.Int
	MaxSoftCap *big.Int
}

// Deployment is the registry record of one deployed instance.
type Deployment struct {
	Creator common.Address
	Time    inter.Timestamp
	Block   uint64
}

// Config wires a factory to its host environment. Everything here is set
// once at construction; the factory clones the relevant parts into every
// instance it deploys.
type Config struct {
	// Address is the factory's identity on the host ledger; instance
	// addresses derive from it.
	Address common.Address

	// Owner administrates the registries and may force-cancel instances.
	Owner common.Address

	// FeeToken is the token the deployment fee is burned in.
	FeeToken common.Address

	Tokens    host.TokenRegistry
	AMM       host.AMM
	Recoverer host.Recoverer
	Clock     host.Clock

	Policy launchpad.Policy

	// Log is the base logger. Optional; defaults to the standard logger.
	Log *logrus.Entry
}

// Factory authorizes and instantiates launchpad instances. It owns the
// platform registries as explicit configuration tables — instances hold a
// reference back to the factory identity, never to ambient globals.
type Factory struct {
	mu   sync.Mutex
	busy bool

	cfg  Config
	gate *AuthGate
	log  *logrus.Entry

	implementations map[common.Address]*big.Int
	quoteTokens     map[common.Address]QuoteTokenBounds

	launchpads  []common.Address
	deployments map[common.Address]Deployment
	instances   map[common.Address]*launchpad.Instance
	nonce       uint64

	events []launchpad.Event
}

// New creates a factory with empty registries.
func New(cfg Config) *Factory {
	base := cfg.Log
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Factory{
		cfg:             cfg,
		gate:            NewAuthGate(cfg.Recoverer),
		log:             base.WithField("factory", cfg.Address.Hex()),
		implementations: make(map[common.Address]*big.Int),
		quoteTokens:     make(map[common.Address]QuoteTokenBounds),
		deployments:     make(map[common.Address]Deployment),
		instances:       make(map[common.Address]*launchpad.Instance),
	}
}

// UpdateImplementation sets the deployment fee of an implementation.
// Fee zero (or nil) disables it. Owner-only.
func (f *Factory) UpdateImplementation(caller, impl common.Address, fee *big.Int) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.exit()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if fee == nil {
		fee = new(big.Int)
	}
	if fee.Sign() < 0 {
		return fmt.Errorf("%w: negative fee", launchpad.ErrBounds)
	}
	f.implementations[impl] = new(big.Int).Set(fee)
	f.record(ImplementationUpdated{Implementation: impl, Fee: new(big.Int).Set(fee)})
	return nil
}

// UpdateQuoteToken allowlists a quote token with its soft-cap window, or
// delists it when both bounds are nil. Owner-only.
func (f *Factory) UpdateQuoteToken(caller, token common.Address, minSoftCap, maxSoftCap *big.Int) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.exit()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if minSoftCap == nil && maxSoftCap == nil {
		delete(f.quoteTokens, token)
		f.record(QuoteTokenUpdated{Token: token})
		return nil
	}
	if minSoftCap == nil || maxSoftCap == nil || minSoftCap.Sign() <= 0 || minSoftCap.Cmp(maxSoftCap) > 0 {
		return fmt.Errorf("%w: soft cap bounds must satisfy 0 < min <= max", launchpad.ErrBounds)
	}
	f.quoteTokens[token] = QuoteTokenBounds{
		MinSoftCap: new(big.Int).Set(minSoftCap),
		MaxSoftCap: new(big.Int).Set(maxSoftCap),
	}
	f.record(QuoteTokenUpdated{Token: token, MinSoftCap: minSoftCap, MaxSoftCap: maxSoftCap})
	return nil
}

// UpdateVerifier enables or disables a verifier. Owner-only.
func (f *Factory) UpdateVerifier(caller, verifier common.Address, enabled bool) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.exit()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.gate.SetVerifier(verifier, enabled)
	f.record(VerifierUpdated{Verifier: verifier, Enabled: enabled})
	return nil
}

// UpdateDisclaimerMessage registers or revokes a disclaimer text.
// Owner-only; a non-empty message must hash to the given key.
func (f *Factory) UpdateDisclaimerMessage(caller common.Address, hash common.Hash, message string) error {
	if err := f.enter(); err != nil {
		return err
	}
	defer f.exit()
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if err := f.gate.SetDisclaimerMessage(hash, message); err != nil {
		return err
	}
	f.record(DisclaimerMessageUpdated{Hash: hash, Revoked: message == ""})
	return nil
}

// DeployLaunchpad authorizes and instantiates a new sale:
//
//  1. the quote token must be allow-listed and the soft cap inside its
//     window (with 0 < softCap <= hardCap);
//  2. the caller must present a valid disclaimer signature and an enabled
//     verifier's attestation over these exact parameters;
//  3. the implementation must carry a nonzero deployment fee;
//  4. a fresh instance is instantiated and initialized, yielding the
//     required sale-token funding;
//  5. the funding is pulled from the caller into the instance and the fee
//     burned from the caller, in that order — the burn is irreversible, so
//     a failed burn hands the escrowed funding back; only after both is the
//     instance registered.
//
// The returned instance is live immediately; its lifecycle is governed by
// its own clock-derived status.
func (f *Factory) DeployLaunchpad(caller, impl common.Address, params *launchpad.LaunchpadParams, liq *launchpad.LiquidityParams, infoCID string, disclaimerHash common.Hash, creatorSig, verifierSig []byte) (*launchpad.Instance, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	defer f.exit()

	// 1. quote-token gate
	bounds, ok := f.quoteTokens[params.QuoteToken]
	if !ok {
		return nil, fmt.Errorf("%w: quote token %s is not allow-listed", launchpad.ErrBounds, params.QuoteToken.Hex())
	}
	if params.SoftCap == nil || params.HardCap == nil || params.SoftCap.Sign() <= 0 || params.SoftCap.Cmp(params.HardCap) > 0 {
		return nil, fmt.Errorf("%w: need 0 < softCap <= hardCap", launchpad.ErrBounds)
	}
	if params.SoftCap.Cmp(bounds.MinSoftCap) < 0 || params.SoftCap.Cmp(bounds.MaxSoftCap) > 0 {
		return nil, fmt.Errorf("%w: soft cap outside [%s, %s]", launchpad.ErrBounds, bounds.MinSoftCap, bounds.MaxSoftCap)
	}

	// 2. two-signature authorization
	digest := ParamsDigest(params, liq, infoCID)
	verifier, err := f.gate.Authorize(caller, digest, disclaimerHash, creatorSig, verifierSig)
	if err != nil {
		return nil, err
	}

	// 3. fee gate
	fee := f.implementations[impl]
	if fee == nil || fee.Sign() == 0 {
		return nil, fmt.Errorf("%w: implementation %s is not enabled", launchpad.ErrBounds, impl.Hex())
	}

	// 4. instantiate and initialize
	saleTok, err := f.cfg.Tokens.Token(params.SaleToken)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve sale token: %v", launchpad.ErrExternal, err)
	}
	var symbol string
	var decimals uint8
	f.external(func() error {
		symbol = saleTok.Symbol()
		decimals = saleTok.Decimals()
		return nil
	})
	if symbol == "" || decimals == 0 {
		return nil, fmt.Errorf("%w: sale token must have a symbol and nonzero decimals", launchpad.ErrBounds)
	}

	addr := crypto.CreateAddress(f.cfg.Address, f.nonce)
	inst := launchpad.NewInstance(addr, launchpad.InstanceConfig{
		Factory:   f.cfg.Address,
		AMM:       f.cfg.AMM,
		Tokens:    f.cfg.Tokens,
		Recoverer: f.cfg.Recoverer,
		Clock:     f.cfg.Clock,
		Policy:    f.cfg.Policy,
		Log:       f.cfg.Log,
	})
	funding, err := inst.Initialize(params, liq, infoCID, disclaimerHash, symbol, decimals)
	if err != nil {
		return nil, err
	}

	// 5. funding and fee burn; registry writes come last so a failed
	// external call leaves no record of the discarded instance
	feeTok, err := f.cfg.Tokens.Token(f.cfg.FeeToken)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve fee token: %v", launchpad.ErrExternal, err)
	}
	if err := f.external(func() error {
		// escrow first, burn last: the burn is irreversible, so it must be
		// the final fund movement, with the escrow handed back if it fails
		if err := saleTok.Transfer(caller, addr, funding); err != nil {
			return fmt.Errorf("fund instance: %v", err)
		}
		if err := feeTok.Burn(caller, fee); err != nil {
			if rb := saleTok.Transfer(addr, caller, funding); rb != nil {
				return fmt.Errorf("burn deployment fee: %v (escrow return failed: %v)", err, rb)
			}
			return fmt.Errorf("burn deployment fee: %v", err)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", launchpad.ErrExternal, err)
	}

	f.nonce++
	f.launchpads = append(f.launchpads, addr)
	f.deployments[addr] = Deployment{
		Creator: caller,
		Time:    f.cfg.Clock.Now(),
		Block:   f.cfg.Clock.BlockNumber(),
	}
	f.instances[addr] = inst

	f.record(LaunchpadDeployed{
		Implementation: impl,
		Instance:       addr,
		Creator:        caller,
		Verifier:       verifier,
		Fee:            new(big.Int).Set(fee),
		Funding:        funding,
		InfoCID:        infoCID,
	})
	return inst, nil
}

// CancelLaunchpad is the factory owner's administrative override: it
// delegates to the instance's own cancel with the factory as the caller.
func (f *Factory) CancelLaunchpad(caller, instance common.Address, reason string) error {
	f.mu.Lock()
	if err := f.requireOwner(caller); err != nil {
		f.mu.Unlock()
		return err
	}
	inst, ok := f.instances[instance]
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: unknown instance %s", launchpad.ErrBounds, instance.Hex())
	}
	return inst.Cancel(f.cfg.Address, reason)
}

// Launchpad returns the address of the i-th deployed instance.
func (f *Factory) Launchpad(i int) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < 0 || i >= len(f.launchpads) {
		return common.Address{}, fmt.Errorf("%w: index %d out of range", launchpad.ErrBounds, i)
	}
	return f.launchpads[i], nil
}

// LaunchpadsLength returns the number of deployed instances.
func (f *Factory) LaunchpadsLength() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.launchpads)
}

// Instance returns the live instance handle at the address.
func (f *Factory) Instance(addr common.Address) (*launchpad.Instance, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.instances[addr]
	return inst, ok
}

// DeploymentOf returns the registry record of a deployed instance.
func (f *Factory) DeploymentOf(addr common.Address) (Deployment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deployments[addr]
	return d, ok
}

// FeeOf returns the configured deployment fee, zero when disabled.
func (f *Factory) FeeOf(impl common.Address) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fee := f.implementations[impl]; fee != nil {
		return new(big.Int).Set(fee)
	}
	return new(big.Int)
}

// QuoteToken returns the allowlist bounds of a quote token.
func (f *Factory) QuoteToken(token common.Address) (QuoteTokenBounds, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.quoteTokens[token]
	return b, ok
}

// IsVerifier reports whether the identity is an enabled verifier.
func (f *Factory) IsVerifier(addr common.Address) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gate.IsVerifier(addr)
}

// DisclaimerMessage returns the registered disclaimer text, empty if
// revoked or unknown.
func (f *Factory) DisclaimerMessage(hash common.Hash) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gate.DisclaimerMessage(hash)
}

// Events returns the factory's recorded event log.
func (f *Factory) Events() []launchpad.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]launchpad.Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *Factory) requireOwner(caller common.Address) error {
	if caller != f.cfg.Owner {
		return fmt.Errorf("%w: caller is not the factory owner", launchpad.ErrAuthorization)
	}
	return nil
}

// enter acquires the state lock for the duration of an operation and marks
// it in progress. DeployLaunchpad moves funds and must not be re-entered
// through a token callback: while the lock is released around an external
// call the busy flag rejects re-entry here.
func (f *Factory) enter() error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return fmt.Errorf("%w: another operation is in progress", launchpad.ErrState)
	}
	f.busy = true
	return nil
}

func (f *Factory) exit() {
	f.busy = false
	f.mu.Unlock()
}

// external runs a host call with the state lock released; the busy flag set
// in enter keeps mutations from interleaving.
func (f *Factory) external(fn func() error) error {
	f.mu.Unlock()
	defer f.mu.Lock()
	return fn()
}

func (f *Factory) record(ev launchpad.Event) {
	f.events = append(f.events, ev)
	f.log.WithFields(ev.Fields()).Info(ev.Name())
}
