package moc

// Cell is a single hierarchical cell (depth, idx) with idx < NCells(depth).
type Cell struct {
	Depth uint8
	Idx   uint64
}

// CellRange is a contiguous run of same-depth cells [Lo, Hi).
type CellRange struct {
	Depth  uint8
	Lo, Hi uint64
}

// CellToRange converts a cell at depth d into its [lo, hi) span expressed
// in the quantity's depth-max index units, per spec.md §4.2.
func CellToRange(q Quantity, bitLen int, depth uint8, idx uint64) (uint64, uint64) {
	s := q.Shift(depth, bitLen)
	lo := idx << s
	hi := (idx + 1) << s
	return lo, hi
}

// RangeToCells greedily decomposes [lo, hi) into the minimal list of
// cells, per spec.md §4.2: at each step pick the coarsest depth (the
// largest cell) whose cell boundary divides lo and whose cell fits before hi.
func RangeToCells(q Quantity, bitLen int, lo, hi uint64) []Cell {
	maxDepth := q.MaxDepth(bitLen)
	var cells []Cell
	for lo < hi {
		// Find the smallest depth (largest shift, i.e. coarsest cell)
		// such that lo is a multiple of the cell size and the cell fits.
		var chosenDepth uint8
		found := false
		for d := uint8(0); d <= maxDepth; d++ {
			s := q.Shift(d, bitLen)
			size := uint64(1) << s
			if lo%size == 0 && lo+size <= hi {
				chosenDepth = d
				found = true
				break
			}
		}
		if !found {
			chosenDepth = maxDepth
		}
		s := q.Shift(chosenDepth, bitLen)
		size := uint64(1) << s
		cells = append(cells, Cell{Depth: chosenDepth, Idx: lo >> s})
		lo += size
	}
	return cells
}

// CellsToRanges reassembles a (not necessarily minimal) list of cells
// into a sorted, coalesced Ranges; the round-trip with RangeToCells is
// required to be the identity (spec.md §8 property 1).
func CellsToRanges[T Idx](q Quantity, cells []Cell) Ranges[T] {
	bitLen := BitLen[T]()
	raw := make([]rawRange, 0, len(cells))
	for _, c := range cells {
		lo, hi := CellToRange(q, bitLen, c.Depth, c.Idx)
		raw = append(raw, rawRange{lo, hi})
	}
	return newRangesFromRaw[T](raw)
}
