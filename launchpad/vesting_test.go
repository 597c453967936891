package launchpad

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/launchforge/go-launchpad/inter"
)

// TestUnlockedAmount_stepSchedule walks the canonical four-step schedule:
// 1000 tokens, 100 seconds release duration in 25-second intervals, no
// initial or cliff release.
func TestUnlockedAmount_stepSchedule(t *testing.T) {
	require := require.New(t)

	s := VestingSchedule{
		EndDate:         1000,
		ReleaseDuration: 100,
		ReleaseInterval: 25,
	}
	total := big.NewInt(1000)

	cases := []struct {
		now  inter.Timestamp
		want int64
	}{
		{999, 0},    // before sale end nothing unlocks
		{1000, 0},   // at end, before the first interval boundary
		{1010, 0},   // still inside the first interval
		{1025, 250}, // one step
		{1050, 500}, // two steps
		{1099, 750}, // three steps, the fourth not yet reached
		{1100, 1000},
		{1101, 1000}, // snaps to full at the final boundary
	}
	for _, c := range cases {
		got := UnlockedAmount(total, c.now, s)
		require.Equal(c.want, got.Int64(), "at t=%d", c.now)
	}
}

// TestUnlockedAmount_initialAndCliff verifies the upfront fraction at sale
// end and the cliff fraction at the cliff boundary.
func TestUnlockedAmount_initialAndCliff(t *testing.T) {
	require := require.New(t)

	s := VestingSchedule{
		EndDate:            1000,
		CliffDuration:      50,
		ReleaseDuration:    100,
		ReleaseInterval:    25,
		InitialReleaseRate: 10000, // 10%
		CliffReleaseRate:   20000, // 20%
	}
	total := big.NewInt(1000)

	// Before the sale ends: nothing.
	require.Equal(int64(0), UnlockedAmount(total, 999, s).Int64())
	// At sale end: only the initial 10%.
	require.Equal(int64(100), UnlockedAmount(total, 1000, s).Int64())
	// Just before the cliff: still only the initial fraction.
	require.Equal(int64(100), UnlockedAmount(total, 1049, s).Int64())
	// At the cliff: +20%, interval release starts but no step has passed.
	require.Equal(int64(300), UnlockedAmount(total, 1050, s).Int64())
	// One step into the linear release: locked = 700, 4 steps of 175.
	require.Equal(int64(475), UnlockedAmount(total, 1075, s).Int64())
	// Past the full schedule: everything.
	require.Equal(int64(1000), UnlockedAmount(total, 1150, s).Int64())
	require.Equal(int64(1000), UnlockedAmount(total, 9999, s).Int64())
}

// TestUnlockedAmount_floorThenSnap verifies that the per-step amount is
// floor-divided and the final boundary snaps to the exact total.
func TestUnlockedAmount_floorThenSnap(t *testing.T) {
	require := require.New(t)

	s := VestingSchedule{
		EndDate:         0,
		ReleaseDuration: 100,
		ReleaseInterval: 25,
	}
	total := big.NewInt(1003) // 1003/4 floors to 250 per step

	require.Equal(int64(250), UnlockedAmount(total, 25, s).Int64())
	require.Equal(int64(750), UnlockedAmount(total, 99, s).Int64())
	// The last partial step under-unlocks by the rounding remainder...
	require.Equal(int64(750), UnlockedAmount(total, 99, s).Int64())
	// ...until the final boundary restores the full amount.
	require.Equal(int64(1003), UnlockedAmount(total, 100, s).Int64())
}

// TestUnlockedAmount_monotonic sweeps the whole schedule and checks the
// result never decreases.
func TestUnlockedAmount_monotonic(t *testing.T) {
	require := require.New(t)

	s := VestingSchedule{
		EndDate:            1000,
		CliffDuration:      30,
		ReleaseDuration:    90,
		ReleaseInterval:    30,
		InitialReleaseRate: 5000,
		CliffReleaseRate:   15000,
	}
	total := big.NewInt(123457)

	prev := new(big.Int)
	for now := inter.Timestamp(990); now <= 1150; now++ {
		got := UnlockedAmount(total, now, s)
		require.True(got.Cmp(prev) >= 0, "decreased at t=%d: %s -> %s", now, prev, got)
		prev = got
	}
	require.Equal(total.String(), prev.String(), "full amount after the schedule")
}
