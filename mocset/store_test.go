package mocset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moclib/go-moc/moc"
)

func encodeU32(lo, hi uint32) []byte {
	rs := moc.NewRanges([]moc.Range[uint32]{{Lo: lo, Hi: hi}})
	return moc.Encode[uint32](rs)
}

func TestMakeThenOpenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.mocset")

	entries := []Entry{
		{SignedID: 1, Depth: 5, Data: encodeU32(0, 10)},
		{SignedID: -2, Depth: 5, Data: encodeU32(20, 30)},
		{SignedID: 3, Depth: 5, Data: encodeU32(40, 50)},
	}
	require.NoError(t, Make(path, 1, entries))

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	hdr, err := store.Header()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), hdr.N128)
	assert.Equal(t, StatusValid, hdr.Meta[0].Status)
	assert.Equal(t, StatusDeprecated, hdr.Meta[1].Status)
	assert.Equal(t, uint64(2), hdr.Meta[1].ID)
	assert.Equal(t, StatusValid, hdr.Meta[2].Status)
	assert.Equal(t, StatusVoid, hdr.Meta[3].Status)

	data, err := store.SlotBytes(0)
	require.NoError(t, err)
	assert.Equal(t, encodeU32(0, 10), data)
}

func TestMakeRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.mocset")
	entries := []Entry{
		{SignedID: 1, Depth: 5, Data: encodeU32(0, 10)},
		{SignedID: 1, Depth: 5, Data: encodeU32(20, 30)},
	}
	err := Make(path, 1, entries)
	require.Error(t, err)
}

func TestMakeRejectsOverCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overcap.mocset")
	entries := make([]Entry, 200)
	for i := range entries {
		entries[i] = Entry{SignedID: int64(i + 1), Depth: 5, Data: encodeU32(0, 1)}
	}
	err := Make(path, 1, entries)
	require.Error(t, err)
}
