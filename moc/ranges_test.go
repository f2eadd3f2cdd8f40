package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rs(pairs ...uint32) Ranges[uint32] {
	var out []Range[uint32]
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Range[uint32]{pairs[i], pairs[i+1]})
	}
	return NewRanges(out)
}

func TestNewRangesCoalescesOverlapsAndTouching(t *testing.T) {
	got := rs(0, 3, 3, 6, 10, 12, 11, 20)
	want := rs(0, 6, 10, 20)
	assert.True(t, Equal[uint32](got, want))
}

func TestOrIsCommutativeAndIdentity(t *testing.T) {
	a := rs(0, 5, 10, 15)
	b := rs(3, 12)
	empty := Ranges[uint32]{}
	assert.True(t, Equal[uint32](Or[uint32](a, b), Or[uint32](b, a)))
	assert.True(t, Equal[uint32](Or[uint32](a, empty), a))
}

func TestAndMatchesIntersectionOfPoints(t *testing.T) {
	a := rs(0, 5, 10, 20)
	b := rs(3, 12, 18, 25)
	got := And[uint32](a, b)
	want := rs(3, 5, 10, 12, 18, 20)
	assert.True(t, Equal[uint32](got, want))
}

func TestMinusRemovesOverlap(t *testing.T) {
	a := rs(0, 20)
	b := rs(5, 10, 15, 18)
	got := Minus[uint32](a, b)
	want := rs(0, 5, 10, 15, 18, 20)
	assert.True(t, Equal[uint32](got, want))
}

func TestMinusAcrossMultipleAIntervals(t *testing.T) {
	// a single b interval spanning past the end of the first a interval
	// must still be usable against the second a interval (regression for
	// over-advancing the b cursor).
	a := rs(0, 5, 8, 20)
	b := rs(3, 15)
	got := Minus[uint32](a, b)
	want := rs(0, 3, 15, 20)
	assert.True(t, Equal[uint32](got, want))
}

func TestXorIsSymmetricDifference(t *testing.T) {
	a := rs(0, 10)
	b := rs(5, 15)
	got := Xor[uint32](a, b)
	want := rs(0, 5, 10, 15)
	assert.True(t, Equal[uint32](got, want))
}

func TestXorSelfIsEmpty(t *testing.T) {
	a := rs(0, 10, 20, 30)
	got := Xor[uint32](a, a)
	assert.True(t, got.IsEmpty())
}

func TestNotComplementsWithinDomain(t *testing.T) {
	a := rs(2, 5, 8, 10)
	got := Not[uint32](a, 10)
	want := rs(0, 2, 5, 8)
	assert.True(t, Equal[uint32](got, want))
}

func TestNotOfNotIsIdentity(t *testing.T) {
	a := rs(2, 5, 8, 10, 15, 18)
	domain := uint32(20)
	got := Not[uint32](Not[uint32](a, domain), domain)
	assert.True(t, Equal[uint32](got, a))
}

func TestOrAndDeMorgan(t *testing.T) {
	a := rs(0, 5, 10, 15)
	b := rs(3, 12)
	domain := uint32(20)

	lhs := Not[uint32](Or[uint32](a, b), domain)
	rhs := And[uint32](Not[uint32](a, domain), Not[uint32](b, domain))
	assert.True(t, Equal[uint32](lhs, rhs))
}

func TestContainsAndIntersects(t *testing.T) {
	a := rs(5, 10, 20, 30)
	assert.True(t, Contains[uint32](a, 7))
	assert.False(t, Contains[uint32](a, 15))
	assert.True(t, Intersects[uint32](a, 8, 22))
	assert.False(t, Intersects[uint32](a, 10, 20))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := rs(0, 5, 100, 200)
	encoded := Encode[uint32](a)
	decoded := Decode[uint32](encoded)
	assert.True(t, Equal[uint32](a, decoded))
}

func TestBorrowedRangesMatchesOwned(t *testing.T) {
	a := rs(1, 4, 9, 30)
	encoded := Encode[uint32](a)
	borrowed := NewBorrowedRanges[uint32](encoded)
	assert.Equal(t, a.Len(), borrowed.Len())
	for i := 0; i < a.Len(); i++ {
		wantLo, wantHi := a.At(i)
		gotLo, gotHi := borrowed.At(i)
		assert.Equal(t, wantLo, gotLo)
		assert.Equal(t, wantHi, gotHi)
	}
	assert.True(t, Equal[uint32](a, borrowed))
}
