package launchpad

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/launchforge/go-launchpad/host"
	"github.com/launchforge/go-launchpad/inter"
	"github.com/launchforge/go-launchpad/liquidity"
)

// InstanceConfig is the shared immutable wiring every instance deployed by
// one factory embeds: the host capabilities, the policy bounds and the
// factory's own identity. The factory sets it once at construction and
// clones it into each new instance; per-instance mutable state is allocated
// fresh per instantiation.
type InstanceConfig struct {
	// Factory is the deploying factory's identity; it shares cancel rights
	// with the owner.
	Factory common.Address

	AMM       host.AMM
	Tokens    host.TokenRegistry
	Recoverer host.Recoverer
	Clock     host.Clock

	Policy Policy

	// Log is the base logger. Optional; defaults to the standard logger.
	Log *logrus.Entry
}

// Instance is one fundraising campaign with its own ledger and lifecycle.
// It is created by the factory, initialized exactly once, and never
// destroyed: claim and refund paths stay callable indefinitely in its
// terminal state.
//
// The execution model is single-writer: a mutating operation holds the state
// lock from entry to exit, releasing it only around external token and pool
// calls. While such a call runs the busy flag stays set, so a callback
// re-entering the instance is rejected with ErrState instead of deadlocking,
// and no other mutation can interleave with the call. Every operation either
// completes fully or leaves no visible change.
type Instance struct {
	mu   sync.Mutex
	busy bool

	cfg  InstanceConfig
	addr common.Address
	log  *logrus.Entry

	initialized bool
	params      LaunchpadParams
	liq         LiquidityParams
	infoCID     string

	// disclaimerHash is the registered legal notice every buyer must have
	// signed; recorded at initialization by the factory.
	disclaimerHash common.Hash

	saleToken  host.Token
	quoteToken host.Token
	saleSymbol string
	saleDec    uint8
	quoteDec   uint8

	ledger *ContributionLedger

	liquidityTokenID uint64
	canceled         bool
	cancelReason     string

	events []Event
}

// NewInstance allocates an uninitialized instance at the given host address.
// Called by the factory; the instance accepts no operation until
// Initialize has run.
func NewInstance(addr common.Address, cfg InstanceConfig) *Instance {
	base := cfg.Log
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Instance{
		cfg:    cfg,
		addr:   addr,
		log:    base.WithField("instance", addr.Hex()),
		ledger: NewContributionLedger(),
	}
}

// Initialize validates the launch configuration, binds the token
// capabilities and returns the total sale-token amount the factory must
// fund the instance with: the amount sold at hard cap plus the liquidity
// reserve at hard cap. Runs exactly once.
func (in *Instance) Initialize(params *LaunchpadParams, liq *LiquidityParams, infoCID string, disclaimerHash common.Hash, saleSymbol string, saleDecimals uint8) (*big.Int, error) {
	if err := in.enter(); err != nil {
		return nil, err
	}
	defer in.exit()

	if in.initialized {
		return nil, stateErrf("already initialized")
	}
	if err := ValidateParams(params, liq, in.cfg.Policy, in.cfg.Clock.Now()); err != nil {
		return nil, err
	}

	saleTok, err := in.cfg.Tokens.Token(params.SaleToken)
	if err != nil {
		return nil, externErrf("resolve sale token: %v", err)
	}
	quoteTok, err := in.cfg.Tokens.Token(params.QuoteToken)
	if err != nil {
		return nil, externErrf("resolve quote token: %v", err)
	}

	in.params = params.Copy()
	in.liq = *liq
	in.infoCID = infoCID
	in.disclaimerHash = disclaimerHash
	in.saleToken = saleTok
	in.quoteToken = quoteTok
	in.saleSymbol = saleSymbol
	in.saleDec = saleDecimals
	in.quoteDec = quoteTok.Decimals()
	in.initialized = true

	// Funding covers a full sell-out plus the liquidity deposit if every
	// quote unit up to the hard cap arrives.
	funding := in.params.SaleAmountForQuote(in.params.HardCap, in.saleDec, in.quoteDec)
	reserve := in.params.SaleAmountForQuote(applyRate(in.params.HardCap, in.liq.Rate), in.saleDec, in.quoteDec)
	funding.Add(funding, reserve)

	in.log.WithFields(logrus.Fields{
		"saleToken":  params.SaleToken.Hex(),
		"quoteToken": params.QuoteToken.Hex(),
		"owner":      params.Owner.Hex(),
		"funding":    funding.String(),
	}).Info("launchpad initialized")
	return new(big.Int).Set(funding), nil
}

// Address returns the instance's identity on the host ledger.
func (in *Instance) Address() common.Address { return in.addr }

// Owner returns the sale owner.
func (in *Instance) Owner() common.Address { return in.params.Owner }

// Params returns a copy of the immutable launch parameters.
func (in *Instance) Params() LaunchpadParams {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.params.Copy()
}

// LiquidityParams returns the liquidity configuration.
func (in *Instance) LiquidityParams() LiquidityParams {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.liq
}

// InfoCID returns the current info document CID.
func (in *Instance) InfoCID() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.infoCID
}

// CancelReason returns the recorded reason if the sale was canceled.
func (in *Instance) CancelReason() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cancelReason
}

// TotalRaised returns the running quote total.
func (in *Instance) TotalRaised() *big.Int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ledger.TotalRaised()
}

// ParticipantCount returns the number of distinct contributors.
func (in *Instance) ParticipantCount() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ledger.ParticipantCount()
}

// BuyCount returns the number of accepted buy calls.
func (in *Instance) BuyCount() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ledger.BuyCount()
}

// LiquidityTokenID returns the minted position id, zero while none exists.
func (in *Instance) LiquidityTokenID() uint64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.liquidityTokenID
}

// Events returns the recorded event log.
func (in *Instance) Events() []Event {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]Event, len(in.events))
	copy(out, in.events)
	return out
}

// Status derives the lifecycle state from the current logical time and the
// persisted fields. Transitions are never stored.
func (in *Instance) Status() Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.statusLocked()
}

func (in *Instance) statusLocked() Status {
	return deriveStatus(in.cfg.Clock.Now(), &in.params, in.ledger.totalRaised, in.liquidityTokenID, in.canceled)
}

// ChangeInfoCID updates the info document. Owner-only, and only while more
// than the policy deadline remains before the sale starts.
func (in *Instance) ChangeInfoCID(caller common.Address, cid string) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if caller != in.params.Owner {
		return authErrf("only the owner may change the info CID")
	}
	if in.cfg.Clock.Now().Add(in.cfg.Policy.InfoChangeDeadline) >= in.params.StartDate {
		return boundsErrf("info CID frozen within %d seconds of start", in.cfg.Policy.InfoChangeDeadline)
	}
	ev := InfoCIDChanged{Old: in.infoCID, New: cid}
	in.infoCID = cid
	in.record(ev)
	return nil
}

// Cancel permanently cancels the sale. Owner or factory only; allowed from
// Pending, or from Succeeded while no liquidity exists yet. Once set the
// flag never clears.
func (in *Instance) Cancel(caller common.Address, reason string) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if caller != in.params.Owner && caller != in.cfg.Factory {
		return authErrf("only the owner or the factory may cancel")
	}
	switch st := in.statusLocked(); st {
	case StatusPending:
	case StatusSucceeded:
		// liquidityTokenID == 0 is implied: with liquidity the status
		// would be Done
	default:
		return stateErrf("cannot cancel in status %s", st)
	}
	in.canceled = true
	in.cancelReason = reason
	in.record(Canceled{By: caller, Reason: reason})
	return nil
}

// Buy contributes quoteAmount to the sale. Allowed only while Active; the
// owner may not buy. The accepted amount is clipped so the running total
// never exceeds the hard cap — excess is silently clipped, not rejected.
// The buyer must present a valid signature over the registered disclaimer.
func (in *Instance) Buy(caller common.Address, quoteAmount *big.Int, disclaimerSig []byte) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if st := in.statusLocked(); st != StatusActive {
		return stateErrf("buy requires Active, not %s", st)
	}
	if caller == in.params.Owner {
		return authErrf("the owner may not buy")
	}
	if quoteAmount == nil || quoteAmount.Sign() <= 0 {
		return boundsErrf("zero buy amount")
	}
	signer, err := in.cfg.Recoverer.Recover(in.disclaimerHash, disclaimerSig)
	if err != nil {
		return authErrf("disclaimer signature: %v", err)
	}
	if signer != caller {
		return authErrf("disclaimer signed by %s, not the buyer", signer.Hex())
	}

	accepted := in.ledger.Clip(quoteAmount, in.params.HardCap)
	if accepted.Sign() == 0 {
		return boundsErrf("sale is full")
	}
	if err := in.external(func() error {
		return in.quoteToken.Transfer(caller, in.addr, accepted)
	}); err != nil {
		return externErrf("pull quote tokens: %v", err)
	}
	in.ledger.Credit(caller, accepted)
	in.record(TokenBought{
		Buyer:       caller,
		QuoteAmount: accepted,
		TokenAmount: in.params.SaleAmountForQuote(accepted, in.saleDec, in.quoteDec),
	})
	return nil
}

// UserClaim releases the caller's currently unlocked, not yet released sale
// tokens. Allowed only in Done; callable repeatedly as vesting unlocks
// more. Fails with ErrBounds while nothing is releasable.
func (in *Instance) UserClaim(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if st := in.statusLocked(); st != StatusDone {
		return stateErrf("claim requires Done, not %s", st)
	}
	releasable := in.releasableLocked(caller, in.cfg.Clock.Now())
	if releasable.Sign() <= 0 {
		return boundsErrf("nothing releasable")
	}
	if err := in.external(func() error {
		return in.saleToken.Transfer(in.addr, caller, releasable)
	}); err != nil {
		return externErrf("transfer sale tokens: %v", err)
	}
	in.ledger.Release(caller, releasable)
	in.record(UserClaimed{Participant: caller, Amount: releasable})
	return nil
}

// OwnerClaim sweeps the residual balances to the owner once liquidity
// exists: the full remaining quote balance, and the sale balance beyond
// what participants are still owed. Allowed only in Done.
func (in *Instance) OwnerClaim(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if caller != in.params.Owner {
		return authErrf("only the owner may claim")
	}
	if st := in.statusLocked(); st != StatusDone {
		return stateErrf("owner claim requires Done, not %s", st)
	}

	var quoteResidual, saleBalance *big.Int
	in.external(func() error {
		quoteResidual = in.quoteToken.BalanceOf(in.addr)
		saleBalance = in.saleToken.BalanceOf(in.addr)
		return nil
	})

	sold := in.params.SaleAmountForQuote(in.ledger.TotalRaised(), in.saleDec, in.quoteDec)
	owed := sold.Sub(sold, in.ledger.TotalReleased())
	saleResidual := new(big.Int).Sub(saleBalance, owed)
	if saleResidual.Sign() < 0 {
		saleResidual.SetInt64(0)
	}
	if quoteResidual.Sign() == 0 && saleResidual.Sign() == 0 {
		return boundsErrf("nothing to claim")
	}

	if err := in.external(func() error {
		if quoteResidual.Sign() > 0 {
			if err := in.quoteToken.Transfer(in.addr, caller, quoteResidual); err != nil {
				return fmt.Errorf("transfer quote residual: %v", err)
			}
		}
		if saleResidual.Sign() > 0 {
			if err := in.saleToken.Transfer(in.addr, caller, saleResidual); err != nil {
				return fmt.Errorf("transfer sale residual: %v", err)
			}
		}
		return nil
	}); err != nil {
		return externErrf("%v", err)
	}
	in.record(OwnerClaimed{Owner: caller, QuoteAmount: quoteResidual, SaleAmount: saleResidual})
	return nil
}

// UserRefund returns the caller's full contributed quote amount, once,
// zeroing the ledger entry. Allowed only in Failed or Canceled.
func (in *Instance) UserRefund(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if st := in.statusLocked(); st != StatusFailed && st != StatusCanceled {
		return stateErrf("refund requires Failed or Canceled, not %s", st)
	}
	amount := in.ledger.ContributionOf(caller)
	if amount.Sign() == 0 {
		return boundsErrf("nothing to refund")
	}
	if err := in.external(func() error {
		return in.quoteToken.Transfer(in.addr, caller, amount)
	}); err != nil {
		return externErrf("refund quote tokens: %v", err)
	}
	in.ledger.Refund(caller)
	in.record(UserRefunded{Participant: caller, Amount: amount})
	return nil
}

// OwnerRefund sweeps the instance's sale-token balance back to the owner
// after a failure or cancellation.
func (in *Instance) OwnerRefund(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if caller != in.params.Owner {
		return authErrf("only the owner may refund")
	}
	if st := in.statusLocked(); st != StatusFailed && st != StatusCanceled {
		return stateErrf("owner refund requires Failed or Canceled, not %s", st)
	}
	var balance *big.Int
	in.external(func() error {
		balance = in.saleToken.BalanceOf(in.addr)
		return nil
	})
	if balance.Sign() == 0 {
		return boundsErrf("nothing to refund")
	}
	if err := in.external(func() error {
		return in.saleToken.Transfer(in.addr, caller, balance)
	}); err != nil {
		return externErrf("refund sale tokens: %v", err)
	}
	in.record(OwnerRefunded{Owner: caller, Amount: balance})
	return nil
}

// CreateLiquidity bootstraps the AMM position from the liquidity-reserved
// share of the raised funds. Allowed only in Succeeded with no liquidity
// yet; before EndDate (hard cap hit early) only the owner may trigger it,
// afterwards anyone. Recording the returned position id is the single write
// that flips the status to Done. A failed mint aborts the whole operation:
// no position id, status remains Succeeded.
func (in *Instance) CreateLiquidity(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if st := in.statusLocked(); st != StatusSucceeded {
		return stateErrf("liquidity creation requires Succeeded, not %s", st)
	}
	now := in.cfg.Clock.Now()
	if now < in.params.EndDate && caller != in.params.Owner {
		return authErrf("before the end date only the owner may create liquidity")
	}

	quoteReserve := applyRate(in.ledger.TotalRaised(), in.liq.Rate)
	prov := liquidity.Provisioner{AMM: in.cfg.AMM}
	req := liquidity.Request{
		SaleToken:    in.params.SaleToken,
		QuoteToken:   in.params.QuoteToken,
		QuoteAmount:  quoteReserve,
		FeeTier:      in.liq.FeeTier,
		PriceTick:    in.liq.PriceTick,
		TickLower:    in.liq.TickLower,
		TickUpper:    in.liq.TickUpper,
		MaxDrift:     in.cfg.Policy.MaxPriceDrift,
		SlippageRate: in.cfg.Policy.SlippageRate,
		Payer:        in.addr,
		Recipient:    in.addr,
	}
	var res liquidity.Result
	if err := in.external(func() error {
		var err error
		res, err = prov.Provision(req)
		return err
	}); err != nil {
		return externErrf("create liquidity: %v", err)
	}
	in.liquidityTokenID = res.TokenID
	in.record(LiquidityCreated{TokenID: res.TokenID, Amount0: res.Amount0, Amount1: res.Amount1})
	return nil
}

// UnlockLiquidity transfers the minted position to the owner once the lock
// has expired. Owner-only; requires a position and
// now > EndDate + LockDuration.
func (in *Instance) UnlockLiquidity(caller common.Address) error {
	if err := in.enter(); err != nil {
		return err
	}
	defer in.exit()

	if caller != in.params.Owner {
		return authErrf("only the owner may unlock liquidity")
	}
	if in.liquidityTokenID == 0 {
		return stateErrf("no liquidity position exists")
	}
	if in.cfg.Clock.Now() <= in.params.EndDate.Add(in.liq.LockDuration) {
		return boundsErrf("liquidity locked until %d", in.params.EndDate.Add(in.liq.LockDuration))
	}
	if err := in.external(func() error {
		return in.cfg.AMM.TransferPosition(in.liquidityTokenID, in.addr, caller)
	}); err != nil {
		return externErrf("transfer position: %v", err)
	}
	in.record(LiquidityUnlocked{TokenID: in.liquidityTokenID, To: caller})
	return nil
}

// ParticipantTotalTokenAmount returns the sale tokens the participant's
// contribution purchases in total.
func (in *Instance) ParticipantTotalTokenAmount(p common.Address) *big.Int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.params.SaleAmountForQuote(in.ledger.ContributionOf(p), in.saleDec, in.quoteDec)
}

// ParticipantUnlockedAmount returns how many of the participant's tokens
// the vesting schedule has unlocked at the given time.
func (in *Instance) ParticipantUnlockedAmount(p common.Address, at inter.Timestamp) *big.Int {
	in.mu.Lock()
	defer in.mu.Unlock()
	total := in.params.SaleAmountForQuote(in.ledger.ContributionOf(p), in.saleDec, in.quoteDec)
	return UnlockedAmount(total, at, in.params.Vesting())
}

// ParticipantUnclaimedAmount returns what the participant could claim right
// now: unlocked minus already released.
func (in *Instance) ParticipantUnclaimedAmount(p common.Address) *big.Int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.releasableLocked(p, in.cfg.Clock.Now())
}

// BalanceOf is the read-only token-style view of a participant's position.
func (in *Instance) BalanceOf(p common.Address) *big.Int {
	return in.ParticipantTotalTokenAmount(p)
}

// Transfer always fails: contributed and vesting positions are not a
// tradable asset.
func (in *Instance) Transfer(from, to common.Address, amount *big.Int) error {
	return stateErrf("launchpad positions are not transferable")
}

// Approve always fails for the same reason as Transfer.
func (in *Instance) Approve(owner, spender common.Address, amount *big.Int) error {
	return stateErrf("launchpad positions are not transferable")
}

func (in *Instance) releasableLocked(p common.Address, at inter.Timestamp) *big.Int {
	total := in.params.SaleAmountForQuote(in.ledger.ContributionOf(p), in.saleDec, in.quoteDec)
	unlocked := UnlockedAmount(total, at, in.params.Vesting())
	return unlocked.Sub(unlocked, in.ledger.ReleasedOf(p))
}

// enter acquires the state lock for the duration of an operation and marks
// it in progress. The busy flag is only observable while the lock is
// released around an external call (see external): a callback that re-enters
// the instance fails here instead of observing ledger state mid-update.
func (in *Instance) enter() error {
	in.mu.Lock()
	if in.busy {
		in.mu.Unlock()
		return stateErrf("another operation is in progress")
	}
	in.busy = true
	return nil
}

func (in *Instance) exit() {
	in.busy = false
	in.mu.Unlock()
}

// external runs a host call with the state lock released, so read-only views
// stay responsive while the call is in flight. Mutations cannot interleave:
// the busy flag set in enter rejects them until the operation exits.
func (in *Instance) external(fn func() error) error {
	in.mu.Unlock()
	defer in.mu.Lock()
	return fn()
}

func (in *Instance) record(ev Event) {
	in.events = append(in.events, ev)
	in.log.WithFields(ev.Fields()).Info(ev.Name())
}
