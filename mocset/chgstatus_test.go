package mocset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeThreeEntryStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chg.mocset")
	require.NoError(t, Make(path, 1, []Entry{
		{SignedID: 1, Depth: 5, Data: encodeU32(0, 10)},
		{SignedID: 2, Depth: 5, Data: encodeU32(20, 30)},
		{SignedID: 3, Depth: 5, Data: encodeU32(40, 50)},
	}))
	return path
}

func TestChangeStatusValidToDeprecated(t *testing.T) {
	path := makeThreeEntryStore(t)
	require.NoError(t, ChangeStatus(path, StatusDeprecated, []uint64{1}))

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()
	hdr, err := store.Header()
	require.NoError(t, err)
	assert.Equal(t, StatusDeprecated, hdr.Meta[0].Status)
}

func TestChangeStatusRejectsReinstateOfRemoved(t *testing.T) {
	path := makeThreeEntryStore(t)
	require.NoError(t, ChangeStatus(path, StatusRemoved, []uint64{2}))
	err := ChangeStatus(path, StatusValid, []uint64{2})
	require.Error(t, err)
}

func TestChangeStatusRejectsUnknownID(t *testing.T) {
	path := makeThreeEntryStore(t)
	err := ChangeStatus(path, StatusRemoved, []uint64{999})
	require.Error(t, err)
}
