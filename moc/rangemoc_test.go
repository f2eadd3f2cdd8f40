package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeNeighbours(depth uint8, idx uint64) []uint64 {
	if idx == 0 {
		return nil
	}
	return []uint64{idx - 1}
}

func TestRangeMOCOrRejectsMismatchedQuantity(t *testing.T) {
	space := RangeMOC[uint64]{Q: Hpx, DepthMax: 5}
	time := RangeMOC[uint64]{Q: Time, DepthMax: 5}

	_, err := space.Or(time)
	require.Error(t, err)
	var mocErr *Error
	require.ErrorAs(t, err, &mocErr)
	assert.Equal(t, BadInvariant, mocErr.Kind)
}

func TestRangeMOCCellFractionFullyCovered(t *testing.T) {
	m := FromCells[uint64](Hpx, 5, []Cell{{Depth: 2, Idx: 3}}, 64)
	assert.Equal(t, 1.0, m.CellFraction(2, 3))
}

func TestRangeMOCCellFractionPartiallyCovered(t *testing.T) {
	lo, hi := CellToRange(Hpx, 64, 2, 3)
	half := lo + (hi-lo)/2
	m := RangeMOC[uint64]{Q: Hpx, DepthMax: 5, Ranges: NewRanges([]Range[uint64]{{lo, half}})}
	frac := m.CellFraction(2, 3)
	assert.Greater(t, frac, 0.0)
	assert.Less(t, frac, 1.0)
}

func TestRangeMOCCellFractionUncoveredIsZero(t *testing.T) {
	m := RangeMOC[uint64]{Q: Hpx, DepthMax: 5}
	assert.Equal(t, 0.0, m.CellFraction(2, 3))
}

func TestRangeMOCNotIsInvolution(t *testing.T) {
	m := FromCells[uint64](Hpx, 5, []Cell{{Depth: 2, Idx: 3}, {Depth: 2, Idx: 7}}, 64)
	got := m.Not().Not()
	assert.True(t, Equal[uint64](got.Ranges, m.Ranges))
}

func TestRangeMOCExpandGrowsCoverage(t *testing.T) {
	m := FromCells[uint64](Hpx, 5, []Cell{{Depth: 5, Idx: 10}}, 64)
	grown := m.Expand(fakeNeighbours)
	assert.True(t, grown.Contains(5, 10))
	assert.True(t, grown.Contains(5, 9))
}

func TestRangeMOCContractFixedPoints(t *testing.T) {
	full := Full[uint64](Hpx, 5)
	empty := Empty[uint64](Hpx, 5)
	// Full and Empty are fixed points of Expand under any neighbour
	// function (Or-ing more into everything changes nothing, and Cells()
	// of nothing yields nothing to expand from), so Contract =
	// Not-Expand-Not must fix them too regardless of fakeNeighbours'
	// specific shape.
	assert.True(t, Equal[uint64](full.Contract(fakeNeighbours).Ranges, full.Ranges))
	assert.True(t, Equal[uint64](empty.Contract(fakeNeighbours).Ranges, empty.Ranges))
}

func TestFromUniqRejectsDepthBeyondMax(t *testing.T) {
	u := Hpx.Uniq(5, 0)
	_, err := FromUniq[uint64](Hpx, 3, []uint64{u})
	require.Error(t, err)
}

func TestFromUniqBuildsExpectedCells(t *testing.T) {
	u1 := Hpx.Uniq(1, 0)
	u2 := Hpx.Uniq(3, 2)
	m, err := FromUniq[uint64](Hpx, 5, []uint64{u1, u2})
	require.NoError(t, err)
	assert.True(t, m.Contains(1, 0))
	assert.True(t, m.Contains(3, 2))
}
