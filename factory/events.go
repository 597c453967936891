package factory

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Factory events implement the same launchpad.Event interface as instance
// events, so one event log consumer handles both.

// LaunchpadDeployed records a successful deployment.
type LaunchpadDeployed struct {
	Implementation common.Address
	Instance       common.Address
	Creator        common.Address
	Verifier       common.Address
	Fee            *big.Int
	Funding        *big.Int
	InfoCID        string
}

func (e LaunchpadDeployed) Name() string { return "LaunchpadDeployed" }

func (e LaunchpadDeployed) Fields() logrus.Fields {
	return logrus.Fields{
		"implementation": e.Implementation.Hex(),
		"instance":       e.Instance.Hex(),
		"creator":        e.Creator.Hex(),
		"verifier":       e.Verifier.Hex(),
		"fee":            e.Fee.String(),
		"funding":        e.Funding.String(),
		"infoCID":        e.InfoCID,
	}
}

// ImplementationUpdated records a fee change (fee 0 disables).
type ImplementationUpdated struct {
	Implementation common.Address
	Fee            *big.Int
}

func (e ImplementationUpdated) Name() string { return "ImplementationUpdated" }

func (e ImplementationUpdated) Fields() logrus.Fields {
	return logrus.Fields{"implementation": e.Implementation.Hex(), "fee": e.Fee.String()}
}

// QuoteTokenUpdated records an allowlist change. Nil bounds delist.
type QuoteTokenUpdated struct {
	Token      common.Address
	MinSoftCap *big.Int
	MaxSoftCap *big.Int
}

func (e QuoteTokenUpdated) Name() string { return "QuoteTokenUpdated" }

func (e QuoteTokenUpdated) Fields() logrus.Fields {
	f := logrus.Fields{"token": e.Token.Hex()}
	if e.MinSoftCap != nil {
		f["minSoftCap"] = e.MinSoftCap.String()
		f["maxSoftCap"] = e.MaxSoftCap.String()
	} else {
		f["delisted"] = true
	}
	return f
}

// VerifierUpdated records an allowlist change.
type VerifierUpdated struct {
	Verifier common.Address
	Enabled  bool
}

func (e VerifierUpdated) Name() string { return "VerifierUpdated" }

func (e VerifierUpdated) Fields() logrus.Fields {
	return logrus.Fields{"verifier": e.Verifier.Hex(), "enabled": e.Enabled}
}

// DisclaimerMessageUpdated records a disclaimer registration or revocation.
type DisclaimerMessageUpdated struct {
	Hash    common.Hash
	Revoked bool
}

func (e DisclaimerMessageUpdated) Name() string { return "DisclaimerMessageUpdated" }

func (e DisclaimerMessageUpdated) Fields() logrus.Fields {
	return logrus.Fields{"hash": e.Hash.Hex(), "revoked": e.Revoked}
}
