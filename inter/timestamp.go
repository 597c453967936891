// Package inter defines the base types shared by every other package of the
// launchpad module. The central type is Timestamp, the logical clock value
// used for all time-gated behavior (sale windows, vesting boundaries,
// liquidity locks).
//
// Time never comes from the wall clock inside the core packages: status and
// vesting are recomputed from an injected host clock at call time, so tests
// and simulations can drive the lifecycle deterministically.
package inter

import "time"

// Timestamp is a point in logical time, counted in seconds since the Unix
// epoch. Seconds (not nanoseconds) because every time-gated rule in the
// launchpad (sale windows, cliffs, release intervals, lock durations) is
// expressed in whole seconds.
type Timestamp uint64

// FromTime converts a standard library time.Time into a Timestamp.
// Times before the epoch clamp to zero rather than wrapping.
func FromTime(t time.Time) Timestamp {
	u := t.Unix()
	if u < 0 {
		return 0
	}
	return Timestamp(u)
}

// Time converts the Timestamp back into a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns the Timestamp shifted forward by the given number of seconds.
func (t Timestamp) Add(seconds uint64) Timestamp {
	return t + Timestamp(seconds)
}

// Sub returns the number of seconds between t and earlier (t - earlier).
// Returns zero if earlier is in the future relative to t.
func (t Timestamp) Sub(earlier Timestamp) uint64 {
	if earlier > t {
		return 0
	}
	return uint64(t - earlier)
}
