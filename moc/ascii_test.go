package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASCIIRoundTrip(t *testing.T) {
	m := FromCells[uint64](Hpx, 10, []Cell{
		{Depth: 1, Idx: 0},
		{Depth: 3, Idx: 1},
		{Depth: 3, Idx: 2},
	}, 64)

	text := ToASCII[uint64](m)
	back, err := FromASCII[uint64](Hpx, 10, text)
	require.NoError(t, err)
	assert.True(t, Equal[uint64](m.Ranges, back.Ranges))
}

func TestASCIIDecodesPerDepthAbsoluteIndices(t *testing.T) {
	m, err := FromASCII[uint64](Time, 3, "1/0 3/5-6")
	require.NoError(t, err)
	require.Equal(t, 2, m.Ranges.Len())

	lo0, hi0 := m.Ranges.At(0)
	assert.Equal(t, uint64(0), uint64(lo0))
	assert.Equal(t, uint64(1)<<60, uint64(hi0))

	lo1, hi1 := m.Ranges.At(1)
	assert.Equal(t, 5*(uint64(1)<<58), uint64(lo1))
	assert.Equal(t, 7*(uint64(1)<<58), uint64(hi1))
}

func TestASCIIRejectsIndexWithoutDepth(t *testing.T) {
	_, err := FromASCII[uint64](Hpx, 10, "5")
	require.Error(t, err)
}

func TestASCII2RoundTrip(t *testing.T) {
	m := newRangeMOC2[uint32, uint32](Time, Hpx, 10, 10, []Elem2[uint32, uint32]{
		mkElem(0, 5, 0, 3),
		mkElem(5, 10, 10, 15),
	})

	text := ToASCII2(m)
	back, err := FromASCII2[uint32, uint32](Time, Hpx, 10, 10, text)
	require.NoError(t, err)

	require.Equal(t, len(m.Elems), len(back.Elems))
	for i, e := range m.Elems {
		assert.Equal(t, e.D1, back.Elems[i].D1)
		assert.True(t, Equal[uint32](e.D2, back.Elems[i].D2))
	}
}

func TestASCII2RejectsMissingSeparator(t *testing.T) {
	_, err := FromASCII2[uint32, uint32](Time, Hpx, 10, 10, "t10/0-4 s0/0")
	require.Error(t, err)
}
