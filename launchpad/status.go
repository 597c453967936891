package launchpad

import (
	"math/big"

	"github.com/launchforge/go-launchpad/inter"
)

// Status is the lifecycle state of a launchpad instance. It is derived,
// never stored: every read recomputes it from the current logical time and
// the persisted fields, so there are no missed transitions and no timers.
type Status uint8

const (
	// StatusPending: the sale has not opened yet.
	StatusPending Status = iota

	// StatusActive: contributions are being accepted.
	StatusActive

	// StatusSucceeded: the soft cap was met by the deadline, or the hard
	// cap was hit early. Not terminal — liquidity creation moves the
	// instance to Done, and it can still be canceled while no liquidity
	// exists.
	StatusSucceeded

	// StatusDone: liquidity was created; claims are open. Terminal.
	StatusDone

	// StatusFailed: the deadline passed below the soft cap. Terminal.
	StatusFailed

	// StatusCanceled: the sale was canceled. Terminal, highest priority.
	StatusCanceled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Active"
	case StatusSucceeded:
		return "Succeeded"
	case StatusDone:
		return "Done"
	case StatusFailed:
		return "Failed"
	case StatusCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// deriveStatus computes the status from the defining facts, in strict
// priority order: cancellation, then existing liquidity, then the time
// window, then the caps.
func deriveStatus(now inter.Timestamp, p *LaunchpadParams, raised *big.Int, liquidityTokenID uint64, canceled bool) Status {
	switch {
	case canceled:
		return StatusCanceled
	case liquidityTokenID > 0:
		return StatusDone
	case now < p.StartDate:
		return StatusPending
	case now >= p.EndDate:
		if raised.Cmp(p.SoftCap) >= 0 {
			return StatusSucceeded
		}
		return StatusFailed
	case raised.Cmp(p.HardCap) >= 0:
		return StatusSucceeded
	default:
		return StatusActive
	}
}
