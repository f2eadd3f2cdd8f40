package mocset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeDropsRemovedEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "purge.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		{SignedID: 1, Depth: 5, Data: encodeU32(0, 10)},
		{SignedID: 2, Depth: 5, Data: encodeU32(20, 30)},
		{SignedID: 3, Depth: 5, Data: encodeU32(40, 50)},
	}))
	require.NoError(t, ChangeStatus(path, StatusRemoved, []uint64{2}))

	require.NoError(t, Purge(path, 0))

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()
	rows, err := List(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	ids := map[uint64]bool{}
	for _, r := range rows {
		ids[r.ID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[3])
	assert.False(t, ids[2])
}
