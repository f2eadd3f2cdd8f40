package mocset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moclib/go-moc/moc"
)

func regionAt(q moc.Quantity, depth uint8, idx uint64) moc.RangeMOC[uint64] {
	lo, hi := moc.CellToRange(q, 64, depth, idx)
	rs := moc.NewRanges([]moc.Range[uint64]{{Lo: lo, Hi: hi}})
	return moc.RangeMOC[uint64]{Q: q, DepthMax: depth, Ranges: rs}
}

func TestQueryFindsIntersectingSlotSequential(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "query.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		cellEntryU32(1, 2, 5),
		cellEntryU32(2, 2, 100),
	}))

	results, err := Query(path, regionAt(moc.Hpx, 2, 5), false, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].ID)
}

func TestQueryParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queryp.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		cellEntryU32(1, 2, 5),
		cellEntryU32(2, 2, 100),
		cellEntryU32(3, 2, 5),
	}))

	seq, err := Query(path, regionAt(moc.Hpx, 2, 5), false, 0)
	require.NoError(t, err)
	par, err := Query(path, regionAt(moc.Hpx, 2, 5), false, 4)
	require.NoError(t, err)

	ids := func(rs []QueryResult) []uint64 {
		out := make([]uint64, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}
	assert.ElementsMatch(t, ids(seq), ids(par))
}

func TestQueryExcludesDeprecatedUnlessRequested(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queryd.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		cellEntryU32(-1, 2, 5),
	}))

	none, err := Query(path, regionAt(moc.Hpx, 2, 5), false, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	withDep, err := Query(path, regionAt(moc.Hpx, 2, 5), true, 0)
	require.NoError(t, err)
	assert.Len(t, withDep, 1)
}
