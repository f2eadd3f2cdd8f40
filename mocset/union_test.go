package mocset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moclib/go-moc/moc"
)

func cellEntryU32(signedID int64, depth uint8, idx uint64) Entry {
	lo, hi := moc.CellToRange(moc.Hpx, 32, depth, idx)
	rs := moc.NewRanges([]moc.Range[uint32]{{Lo: uint32(lo), Hi: uint32(hi)}})
	return Entry{SignedID: signedID, Depth: depth, Data: moc.Encode[uint32](rs)}
}

func TestUnionCombinesMatchingSlots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "union.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		cellEntryU32(1, 2, 5),
		cellEntryU32(2, 2, 100),
	}))

	result, err := Union(path, moc.Hpx, 2, UnionFilter{})
	require.NoError(t, err)
	assert.True(t, result.Contains(2, 5))
	assert.True(t, result.Contains(2, 100))
}

func TestUnionExcludesDeprecatedByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "union2.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		cellEntryU32(1, 2, 5),
		cellEntryU32(-2, 2, 100),
	}))

	result, err := Union(path, moc.Hpx, 2, UnionFilter{})
	require.NoError(t, err)
	assert.True(t, result.Contains(2, 5))
	assert.False(t, result.Contains(2, 100))

	withDeprecated, err := Union(path, moc.Hpx, 2, UnionFilter{IncludeDeprecated: true})
	require.NoError(t, err)
	assert.True(t, withDeprecated.Contains(2, 100))
}
