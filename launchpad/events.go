package launchpad

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Event is a record of a state change. Instances (and the factory) append
// events to an inspectable log and mirror them to structured logging.
type Event interface {
	// Name is the stable event identifier.
	Name() string
	// Fields returns the event payload for structured logging.
	Fields() logrus.Fields
}

// TokenBought records an accepted contribution. QuoteAmount is the amount
// actually credited after hard-cap clipping, TokenAmount the sale tokens it
// purchases.
type TokenBought struct {
	Buyer       common.Address
	QuoteAmount *big.Int
	TokenAmount *big.Int
}

func (e TokenBought) Name() string { return "TokenBought" }

func (e TokenBought) Fields() logrus.Fields {
	return logrus.Fields{"buyer": e.Buyer.Hex(), "quoteAmount": e.QuoteAmount.String(), "tokenAmount": e.TokenAmount.String()}
}

// UserClaimed records a vesting release to a participant.
type UserClaimed struct {
	Participant common.Address
	Amount      *big.Int
}

func (e UserClaimed) Name() string { return "UserClaimed" }

func (e UserClaimed) Fields() logrus.Fields {
	return logrus.Fields{"participant": e.Participant.Hex(), "amount": e.Amount.String()}
}

// OwnerClaimed records the owner's residual sweep after liquidity creation.
type OwnerClaimed struct {
	Owner       common.Address
	QuoteAmount *big.Int
	SaleAmount  *big.Int
}

func (e OwnerClaimed) Name() string { return "OwnerClaimed" }

func (e OwnerClaimed) Fields() logrus.Fields {
	return logrus.Fields{"owner": e.Owner.Hex(), "quoteAmount": e.QuoteAmount.String(), "saleAmount": e.SaleAmount.String()}
}

// UserRefunded records a full refund of a participant's contribution.
type UserRefunded struct {
	Participant common.Address
	Amount      *big.Int
}

func (e UserRefunded) Name() string { return "UserRefunded" }

func (e UserRefunded) Fields() logrus.Fields {
	return logrus.Fields{"participant": e.Participant.Hex(), "amount": e.Amount.String()}
}

// OwnerRefunded records the sweep of unsold sale tokens back to the owner.
type OwnerRefunded struct {
	Owner  common.Address
	Amount *big.Int
}

func (e OwnerRefunded) Name() string { return "OwnerRefunded" }

func (e OwnerRefunded) Fields() logrus.Fields {
	return logrus.Fields{"owner": e.Owner.Hex(), "amount": e.Amount.String()}
}

// Canceled records the permanent cancellation of the sale.
type Canceled struct {
	By     common.Address
	Reason string
}

func (e Canceled) Name() string { return "Canceled" }

func (e Canceled) Fields() logrus.Fields {
	return logrus.Fields{"by": e.By.Hex(), "reason": e.Reason}
}

// InfoCIDChanged records a pre-start update of the sale's info document.
type InfoCIDChanged struct {
	Old string
	New string
}

func (e InfoCIDChanged) Name() string { return "InfoCIDChanged" }

func (e InfoCIDChanged) Fields() logrus.Fields {
	return logrus.Fields{"old": e.Old, "new": e.New}
}

// LiquidityCreated records the minted pool position.
type LiquidityCreated struct {
	TokenID uint64
	Amount0 *big.Int
	Amount1 *big.Int
}

func (e LiquidityCreated) Name() string { return "LiquidityCreated" }

func (e LiquidityCreated) Fields() logrus.Fields {
	return logrus.Fields{"tokenID": e.TokenID, "amount0": e.Amount0.String(), "amount1": e.Amount1.String()}
}

// LiquidityUnlocked records the transfer of the position to the owner after
// the lock expired.
type LiquidityUnlocked struct {
	TokenID uint64
	To      common.Address
}

func (e LiquidityUnlocked) Name() string { return "LiquidityUnlocked" }

func (e LiquidityUnlocked) Fields() logrus.Fields {
	return logrus.Fields{"tokenID": e.TokenID, "to": e.To.Hex()}
}
