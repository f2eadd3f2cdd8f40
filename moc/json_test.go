package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	m := FromCells[uint64](Hpx, 10, []Cell{
		{Depth: 2, Idx: 1}, {Depth: 2, Idx: 5}, {Depth: 4, Idx: 20},
	}, 64)

	data, err := ToJSON[uint64](m)
	require.NoError(t, err)

	back, err := FromJSON[uint64](Hpx, 10, data)
	require.NoError(t, err)
	assert.True(t, Equal[uint64](m.Ranges, back.Ranges))
}

func TestJSONRejectsMalformed(t *testing.T) {
	_, err := FromJSON[uint64](Hpx, 10, []byte("not json"))
	require.Error(t, err)
}
