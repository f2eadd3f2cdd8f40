package mocset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaEntryRoundTrip(t *testing.T) {
	e := MetaEntry{Status: StatusValid, Depth: 10, ID: 123456}
	got := DecodeMetaEntry(EncodeMetaEntry(e))
	assert.Equal(t, e, got)
}

func TestCapacityFormula(t *testing.T) {
	assert.Equal(t, uint64(127), Capacity(1))
	assert.Equal(t, uint64(255), Capacity(2))
}

func TestHeaderSerializeDeserializeRoundTrip(t *testing.T) {
	h := NewHeader(1)
	h.Meta[0] = MetaEntry{Status: StatusValid, Depth: 5, ID: 7}
	h.Meta[3] = MetaEntry{Status: StatusDeprecated, Depth: 2, ID: 99}
	h.Index[0] = uint64(HeaderLen(1))
	h.Index[1] = uint64(HeaderLen(1)) + 16

	buf := SerializeHeader(h)
	assert.Equal(t, int(HeaderLen(1)), len(buf))

	back, err := DeserializeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h.N128, back.N128)
	assert.Equal(t, h.Meta, back.Meta)
	assert.Equal(t, h.Index, back.Index)
}

func TestDeserializeHeaderRejectsTruncatedData(t *testing.T) {
	_, err := DeserializeHeader([]byte{1, 0, 0, 0, 0, 0, 0, 0})
	require.Error(t, err)
}

func TestSplitSignedIDNegativeMeansDeprecated(t *testing.T) {
	id, deprecated, err := SplitSignedID(-42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.True(t, deprecated)
}

func TestSplitSignedIDPositiveMeansNotDeprecated(t *testing.T) {
	id, deprecated, err := SplitSignedID(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.False(t, deprecated)
}

func TestSplitSignedIDRejectsTooLarge(t *testing.T) {
	_, _, err := SplitSignedID(int64(MaxID) + 1)
	require.Error(t, err)
}

func TestRangeWidthPicksByDepth(t *testing.T) {
	assert.Equal(t, 4, RangeWidth(13))
	assert.Equal(t, 8, RangeWidth(14))
}
