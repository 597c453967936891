package launchpad

import (
	"math/big"

	"github.com/launchforge/go-launchpad/inter"
)

// VestingSchedule is the time-gated release schedule applied to every
// participant's purchased tokens. All rates are scaled by RateScale.
type VestingSchedule struct {
	EndDate            inter.Timestamp
	CliffDuration      uint64
	ReleaseDuration    uint64
	ReleaseInterval    uint64
	InitialReleaseRate uint64
	CliffReleaseRate   uint64
}

// UnlockedAmount computes how many of total tokens are unlocked at the given
// time. Pure and monotonic non-decreasing in now.
//
// The schedule has three components:
//   - an initial fraction unlocked at EndDate,
//   - a cliff fraction unlocked at EndDate+CliffDuration,
//   - the remainder unlocked in equal steps of ReleaseInterval seconds
//     starting at the cliff, fully unlocked after ReleaseDuration.
//
// The step unlock is a step function, not continuous: the per-step amount is
// floor-divided, so the last partial step may under-unlock by up to
// intervalCount-1 base units until the final boundary, where the result
// snaps to the full locked amount.
func UnlockedAmount(total *big.Int, now inter.Timestamp, s VestingSchedule) *big.Int {
	unlocked := new(big.Int)
	if now < s.EndDate {
		return unlocked
	}

	initial := applyRate(total, s.InitialReleaseRate)
	unlocked.Add(unlocked, initial)

	releaseStart := s.EndDate.Add(s.CliffDuration)
	cliff := new(big.Int)
	if now >= releaseStart {
		cliff = applyRate(total, s.CliffReleaseRate)
		unlocked.Add(unlocked, cliff)
	}

	locked := new(big.Int).Sub(total, initial)
	locked.Sub(locked, applyRate(total, s.CliffReleaseRate))

	switch {
	case now < releaseStart:
		// nothing of the locked remainder yet
	case now >= releaseStart.Add(s.ReleaseDuration):
		unlocked.Add(unlocked, locked)
	default:
		elapsed := now.Sub(releaseStart)
		steps := new(big.Int).SetUint64(elapsed / s.ReleaseInterval)
		intervalCount := new(big.Int).SetUint64(s.ReleaseDuration / s.ReleaseInterval)
		perStep := new(big.Int).Div(locked, intervalCount)
		unlocked.Add(unlocked, perStep.Mul(perStep, steps))
	}
	return unlocked
}
