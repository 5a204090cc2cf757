package alloc

import (
	"testing"

	"github.com/kegliz/leqo-compile/leqo/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateGreedy_NonOverlappingIntervalsShareSlot(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := []Interval{
		{ID: "a", Birth: 0, Death: 2},
		{ID: "b", Birth: 2, Death: 4}, // a dies exactly when b is born: may reuse a's slot
	}
	asn, err := AllocateGreedy(intervals)
	require.NoError(err)
	assert.Equal(1, asn.Width)
	assert.Equal(asn.SlotOf["a"], asn.SlotOf["b"])
}

func TestAllocateGreedy_OverlappingIntervalsGetDistinctSlots(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := []Interval{
		{ID: "a", Birth: 0, Death: 3},
		{ID: "b", Birth: 1, Death: 2},
	}
	asn, err := AllocateGreedy(intervals)
	require.NoError(err)
	assert.Equal(2, asn.Width)
	assert.NotEqual(asn.SlotOf["a"], asn.SlotOf["b"])
}

func TestAllocateGreedy_OutputQubitLivesForever(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := BuildIntervals([]Usage{
		{ID: "internal", BirthRank: 0, LastUseRank: 1},
		{ID: "out", BirthRank: 0, LastUseRank: 1, Output: true},
	})
	asn, err := AllocateGreedy(intervals)
	require.NoError(err)
	assert.Equal(Infinite, intervals[1].Death)
	assert.NotEqual(asn.SlotOf["internal"], asn.SlotOf["out"])
}

func TestAllocateGreedy_Deterministic(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := []Interval{
		{ID: "z", Birth: 0, Death: 5},
		{ID: "a", Birth: 0, Death: 3},
		{ID: "m", Birth: 1, Death: 2},
	}
	asn1, err := AllocateGreedy(intervals)
	require.NoError(err)
	asn2, err := AllocateGreedy(intervals)
	require.NoError(err)
	assert.Equal(asn1, asn2)
}

func TestAllocateGreedy_PinnedOverlapInfeasible(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := []Interval{
		{ID: "a", Birth: 0, Death: 3, Pinned: true, PinnedSlot: 0},
		{ID: "b", Birth: 1, Death: 2, Pinned: true, PinnedSlot: 0},
	}
	_, err := AllocateGreedy(intervals)
	require.Error(err)
	assert.True(cerr.Is(err, cerr.AllocationInfeasible))
}

func TestUniqueSlot_FallbackGivesEveryQubitItsOwnSlot(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	intervals := []Interval{
		{ID: "a", Birth: 0, Death: 1},
		{ID: "b", Birth: 1, Death: 2},
		{ID: "c", Birth: 2, Death: 3},
	}
	asn, err := UniqueSlot(intervals)
	require.NoError(err)
	assert.Equal(3, asn.Width)
}

func TestRegistry_DefaultsRegistered(t *testing.T) {
	assert := assert.New(t)
	names := Default.Names()
	assert.Contains(names, "greedy-interval")
	assert.Contains(names, "unique-slot")

	_, err := Default.Get("does-not-exist")
	assert.Error(err)
}
