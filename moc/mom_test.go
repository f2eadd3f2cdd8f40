package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomSumRestrictedFullyCoveredEqualsTotal(t *testing.T) {
	u1 := Hpx.Uniq(2, 3)
	u2 := Hpx.Uniq(2, 7)
	mom := NewMom(Hpx, []MomEntry{{Uniq: u1, Value: 0.4}, {Uniq: u2, Value: 0.6}})

	full := Full[uint64](Hpx, 5)
	sum, err := mom.SumRestricted(full)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestMomSumRestrictedEmptyIsZero(t *testing.T) {
	u1 := Hpx.Uniq(2, 3)
	mom := NewMom(Hpx, []MomEntry{{Uniq: u1, Value: 1.0}})
	empty := Empty[uint64](Hpx, 5)
	sum, err := mom.SumRestricted(empty)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum)
}

func TestMomFilterAreaWeightedDropsUncoveredEntries(t *testing.T) {
	u1 := Hpx.Uniq(2, 3)
	u2 := Hpx.Uniq(2, 7)
	mom := NewMom(Hpx, []MomEntry{{Uniq: u1, Value: 1.0}, {Uniq: u2, Value: 1.0}})

	covering := FromCells[uint64](Hpx, 5, []Cell{{Depth: 2, Idx: 3}}, 64)
	filtered, err := mom.FilterAreaWeighted(covering)
	require.NoError(t, err)
	require.Len(t, filtered.Entries, 1)
	assert.Equal(t, u1, filtered.Entries[0].Uniq)
	assert.InDelta(t, 1.0, filtered.Entries[0].Value, 1e-9)
}

func TestMomMaxAndTotal(t *testing.T) {
	mom := NewMom(Hpx, []MomEntry{{Uniq: 1, Value: 0.2}, {Uniq: 2, Value: 0.7}, {Uniq: 3, Value: 0.1}})
	best, ok := mom.Max()
	require.True(t, ok)
	assert.Equal(t, uint64(2), best.Uniq)
	assert.InDelta(t, 1.0, mom.Total(), 1e-9)
}

func TestMomMaxOnEmpty(t *testing.T) {
	mom := NewMom(Hpx, nil)
	_, ok := mom.Max()
	assert.False(t, ok)
}
