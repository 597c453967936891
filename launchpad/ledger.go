package launchpad

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ContributionLedger tracks per-participant contributed quote amounts and
// released sale amounts, with the aggregate counters the status machine and
// the claim paths derive from.
//
// Invariant: the sum of all contributed entries equals TotalRaised at every
// instant, and TotalRaised never exceeds the hard cap it is credited
// against.
type ContributionLedger struct {
	contributed map[common.Address]*big.Int
	released    map[common.Address]*big.Int

	totalRaised   *big.Int
	totalReleased *big.Int

	participantCount uint64
	buyCount         uint64
}

// NewContributionLedger returns an empty ledger.
func NewContributionLedger() *ContributionLedger {
	return &ContributionLedger{
		contributed:   make(map[common.Address]*big.Int),
		released:      make(map[common.Address]*big.Int),
		totalRaised:   new(big.Int),
		totalReleased: new(big.Int),
	}
}

// Clip returns how much of amount the ledger can accept without the running
// total exceeding hardCap. Zero when the sale is full.
func (l *ContributionLedger) Clip(amount, hardCap *big.Int) *big.Int {
	room := new(big.Int).Sub(hardCap, l.totalRaised)
	if room.Sign() <= 0 {
		return new(big.Int)
	}
	if amount.Cmp(room) < 0 {
		return new(big.Int).Set(amount)
	}
	return room
}

// Credit records a contribution. The caller is responsible for clipping the
// amount first (see Clip); Credit itself applies it unconditionally.
// Increments the participant count on a first contribution and the buy
// count on every call.
func (l *ContributionLedger) Credit(p common.Address, amount *big.Int) {
	c, ok := l.contributed[p]
	if !ok {
		c = new(big.Int)
		l.contributed[p] = c
		l.participantCount++
	} else if c.Sign() == 0 {
		// a refunded participant contributing again counts as new
		l.participantCount++
	}
	c.Add(c, amount)
	l.totalRaised.Add(l.totalRaised, amount)
	l.buyCount++
}

// ContributionOf returns the participant's contributed quote amount.
func (l *ContributionLedger) ContributionOf(p common.Address) *big.Int {
	if c, ok := l.contributed[p]; ok {
		return new(big.Int).Set(c)
	}
	return new(big.Int)
}

// ReleasedOf returns the sale-token amount already released to the
// participant.
func (l *ContributionLedger) ReleasedOf(p common.Address) *big.Int {
	if r, ok := l.released[p]; ok {
		return new(big.Int).Set(r)
	}
	return new(big.Int)
}

// Release records amount sale tokens as released to the participant.
func (l *ContributionLedger) Release(p common.Address, amount *big.Int) {
	r, ok := l.released[p]
	if !ok {
		r = new(big.Int)
		l.released[p] = r
	}
	r.Add(r, amount)
	l.totalReleased.Add(l.totalReleased, amount)
}

// Refund zeroes the participant's contribution and returns the refunded
// amount, keeping the sum invariant by decrementing the running total.
func (l *ContributionLedger) Refund(p common.Address) *big.Int {
	c, ok := l.contributed[p]
	if !ok || c.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Set(c)
	l.totalRaised.Sub(l.totalRaised, c)
	c.SetInt64(0)
	return out
}

// TotalRaised returns the running quote total.
func (l *ContributionLedger) TotalRaised() *big.Int {
	return new(big.Int).Set(l.totalRaised)
}

// TotalReleased returns the total sale tokens released so far.
func (l *ContributionLedger) TotalReleased() *big.Int {
	return new(big.Int).Set(l.totalReleased)
}

// ParticipantCount returns the number of distinct contributors.
func (l *ContributionLedger) ParticipantCount() uint64 { return l.participantCount }

// BuyCount returns the number of successful buy calls.
func (l *ContributionLedger) BuyCount() uint64 { return l.buyCount }
