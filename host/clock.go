package host

import (
	"time"

	"github.com/launchforge/go-launchpad/inter"
)

// Clock is the logical time source. Status derivation and vesting math are
// pure functions of Clock.Now(); nothing in the launchpad schedules timers.
type Clock interface {
	// Now returns the current logical time.
	Now() inter.Timestamp

	// BlockNumber returns the current logical block height, recorded in
	// deployment registries.
	BlockNumber() uint64
}

// SystemClock reads the wall clock. Block numbers are not meaningful for a
// wall clock; it reports the Unix second as a stand-in so records remain
// monotonic.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() inter.Timestamp {
	return inter.FromTime(time.Now())
}

// BlockNumber implements Clock.
func (SystemClock) BlockNumber() uint64 {
	return uint64(time.Now().Unix())
}
