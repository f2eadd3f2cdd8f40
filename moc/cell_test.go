package moc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellToRangeAndBackRoundTrips(t *testing.T) {
	const bitLen = 64
	for depth := uint8(0); depth <= 6; depth++ {
		idx := uint64(5)
		if idx >= Hpx.NCells(depth) {
			continue
		}
		lo, hi := CellToRange(Hpx, bitLen, depth, idx)
		cells := RangeToCells(Hpx, bitLen, lo, hi)
		// the minimal decomposition of an exact single cell's own range
		// must be that cell itself.
		assert.Equal(t, []Cell{{Depth: depth, Idx: idx}}, cells)
	}
}

func TestRangeToCellsCoversWholeRangeExactly(t *testing.T) {
	const bitLen = 64
	lo, hi := CellToRange(Hpx, bitLen, 2, 3)
	cells := RangeToCells(Hpx, bitLen, lo, hi+uint64(1)<<Hpx.Shift(2, bitLen))

	var total uint64
	for _, c := range cells {
		cLo, cHi := CellToRange(Hpx, bitLen, c.Depth, c.Idx)
		total += cHi - cLo
	}
	assert.Equal(t, hi-lo+uint64(1)<<Hpx.Shift(2, bitLen), total)
}

func TestCellsToRangesRoundTripsThroughCellToRange(t *testing.T) {
	cells := []Cell{{Depth: 1, Idx: 0}, {Depth: 3, Idx: 1}, {Depth: 3, Idx: 2}}
	got := CellsToRanges[uint64](Hpx, cells)

	var want []Cell
	for i := 0; i < got.Len(); i++ {
		lo, hi := got.At(i)
		want = append(want, RangeToCells(Hpx, 64, uint64(lo), uint64(hi))...)
	}
	// re-decomposing the built ranges must reproduce a cell set covering
	// the same total span as the input (spec.md §8 property 1).
	var gotTotal, wantTotal uint64
	for i := 0; i < got.Len(); i++ {
		lo, hi := got.At(i)
		gotTotal += uint64(hi) - uint64(lo)
	}
	for _, c := range want {
		lo, hi := CellToRange(Hpx, 64, c.Depth, c.Idx)
		wantTotal += hi - lo
	}
	assert.Equal(t, gotTotal, wantTotal)
}
