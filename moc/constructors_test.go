package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeo is a deterministic stand-in for internal/healpixgeo, returning a
// fixed small pixel set so constructors.go's wiring can be tested without
// a real HEALPix dependency.
type fakeGeo struct {
	pixels []uint64
}

func (g fakeGeo) QueryDisc(order uint8, lonRad, latRad, radiusRad float64, inclusive bool) ([]uint64, error) {
	return g.pixels, nil
}
func (g fakeGeo) QueryPolygon(order uint8, vertsDeg [][2]float64) ([]uint64, error) {
	return g.pixels, nil
}
func (g fakeGeo) QueryBox(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return g.pixels, nil
}
func (g fakeGeo) QueryZone(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error) {
	return g.pixels, nil
}
func (g fakeGeo) QueryEllipse(order uint8, lonRad, latRad, aRad, bRad, paRad float64) ([]uint64, error) {
	return g.pixels, nil
}
func (g fakeGeo) Ang2Pix(order uint8, lonRad, latRad float64) (uint64, error) {
	if len(g.pixels) == 0 {
		return 0, nil
	}
	return g.pixels[0], nil
}

func TestFromConeBuildsCellsFromGeo(t *testing.T) {
	geo := fakeGeo{pixels: []uint64{3, 4, 5}}
	m, err := FromCone[uint64](geo, 4, 0, 0, 0.1)
	require.NoError(t, err)
	assert.True(t, m.Contains(4, 3))
	assert.True(t, m.Contains(4, 5))
}

func TestFromPositionsBuildsOneCellPerPosition(t *testing.T) {
	geo := fakeGeo{pixels: []uint64{42}}
	m, err := FromPositions[uint64](geo, 4, []Position{{LonRad: 0, LatRad: 0}, {LonRad: 1, LatRad: 1}})
	require.NoError(t, err)
	assert.True(t, m.Contains(4, 42))
}

func TestFromMultiOrderMapRespectsCumulativeThreshold(t *testing.T) {
	entries := []MomEntry{
		{Uniq: Hpx.Uniq(2, 0), Value: 0.1},
		{Uniq: Hpx.Uniq(2, 1), Value: 0.2},
		{Uniq: Hpx.Uniq(2, 2), Value: 0.7},
	}
	m, err := FromMultiOrderMap[uint64](Hpx, 5, entries, 0.5, 1.0, Descending, true)
	require.NoError(t, err)
	// Descending order visits the 0.7 entry first; its cumulative span
	// [0, 0.7) overlaps [0.5, 1.0), and with noSplit the straddling cell
	// is kept whole, so it must be included.
	assert.True(t, m.Contains(2, 2))
}

func TestFromMultiOrderMapSplitsStraddlingCellsWhenAllowed(t *testing.T) {
	// A single depth-0 cell covering the whole cumulative range [0,1);
	// cumulFrom/cumulTo (0.6,1.0) isn't aligned to any depth-1 or
	// depth-2 child boundary, forcing real recursion: depth-1 child 3
	// ([0.75,1.0)) is fully inside and kept whole, depth-1 children 0/1
	// are fully outside and dropped, and depth-1 child 2 ([0.5,0.75))
	// straddles and is split again into depth-2 grandchildren, the
	// finest of which (grandchild 1, [0.5625,0.625)) still straddles
	// the boundary at depth_max and is therefore included whole.
	entries := []MomEntry{{Uniq: Hpx.Uniq(0, 0), Value: 1.0}}
	m, err := FromMultiOrderMap[uint64](Hpx, 2, entries, 0.6, 1.0, Ascending, false)
	require.NoError(t, err)

	assert.True(t, m.Contains(1, 3))
	assert.True(t, m.Contains(2, 9))
	assert.True(t, m.Contains(2, 10))
	assert.True(t, m.Contains(2, 11))
	assert.False(t, m.Contains(1, 0))
	assert.False(t, m.Contains(1, 1))
	assert.False(t, m.Contains(2, 8))
}

func TestFromMultiOrderMapNoSplitKeepsStraddlingCellWhole(t *testing.T) {
	entries := []MomEntry{{Uniq: Hpx.Uniq(0, 0), Value: 1.0}}
	m, err := FromMultiOrderMap[uint64](Hpx, 2, entries, 0.6, 1.0, Ascending, true)
	require.NoError(t, err)
	assert.True(t, m.Contains(0, 0))
}

func TestFromMultiOrderMapRejectsDepthBeyondMax(t *testing.T) {
	entries := []MomEntry{{Uniq: Hpx.Uniq(5, 0), Value: 1.0}}
	_, err := FromMultiOrderMap[uint64](Hpx, 3, entries, 0, 1, Ascending, true)
	require.Error(t, err)
}

func TestFromSkymapDelegatesToMultiOrderMap(t *testing.T) {
	pixels := []SkymapPixel{{Value: 0.3}, {Value: 0.7}}
	m, err := FromSkymap[uint64](Hpx, 2, pixels, 0.5, 1.0, Descending)
	require.NoError(t, err)
	assert.True(t, m.Contains(2, 1))
}
