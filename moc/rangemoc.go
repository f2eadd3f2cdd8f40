package moc

import "github.com/RoaringBitmap/roaring/roaring64"

// RangeMOC is the eager, range-encoded coverage map of spec.md §3.2: a
// quantity tag, the finest depth actually used, and the sorted disjoint
// non-adjacent ranges (in depth-max index units for the quantity's index
// width).
type RangeMOC[T Idx] struct {
	Q        Quantity
	DepthMax uint8
	Ranges   Ranges[T]
}

// Empty returns the empty MOC for q at depthMax.
func Empty[T Idx](q Quantity, depthMax uint8) RangeMOC[T] {
	return RangeMOC[T]{Q: q, DepthMax: depthMax}
}

// Full returns a MOC covering the entire domain at depthMax.
func Full[T Idx](q Quantity, depthMax uint8) RangeMOC[T] {
	upper := q.DomainUpper(BitLen[T]())
	return RangeMOC[T]{Q: q, DepthMax: depthMax, Ranges: NewRanges([]Range[T]{{0, T(upper)}})}
}

// FromCells builds a RangeMOC from a list of (possibly mixed-depth)
// cells, per spec.md §4.3's bounded-buffer constructor.
func FromCells[T Idx](q Quantity, depthMax uint8, cells []Cell, capacity int) RangeMOC[T] {
	b := NewBuilder[T](q, depthMax, capacity)
	for _, c := range cells {
		b.PushCell(c.Depth, c.Idx)
	}
	return RangeMOC[T]{Q: q, DepthMax: depthMax, Ranges: b.Finalize()}
}

// FromUniq builds a RangeMOC from a NUNIQ list: each uniq is decoded to
// (depth, idx), converted to a range at its own depth, and the whole set
// is OR'd together — spec.md §4.3's "split by depth, degrade each bucket,
// OR coarsest-first" is subsumed here because Or/Builder already coalesce
// regardless of input order.
func FromUniq[T Idx](q Quantity, depthMax uint8, uniqs []uint64) (RangeMOC[T], error) {
	b := NewBuilder[T](q, depthMax, 64)
	for _, u := range uniqs {
		d, idx, err := q.UniqToDepthIdx(u)
		if err != nil {
			return RangeMOC[T]{}, err
		}
		if d > depthMax {
			return RangeMOC[T]{}, NewError(OutOfRange, "uniq depth exceeds requested depth_max", nil)
		}
		b.PushCell(d, idx)
	}
	return RangeMOC[T]{Q: q, DepthMax: depthMax, Ranges: b.Finalize()}, nil
}

func sameKind[T Idx](a, b RangeMOC[T]) error {
	if a.Q != b.Q {
		return NewError(BadInvariant, "cannot combine MOCs of different quantities", nil)
	}
	return nil
}

// Or returns the union, at the finer (larger) of the two depth_max values
// (ranges are expressed in a fixed depth-max index space per
// quantity+width — see qty.go — so neither operand needs converting).
func (m RangeMOC[T]) Or(o RangeMOC[T]) (RangeMOC[T], error) {
	if err := sameKind(m, o); err != nil {
		return RangeMOC[T]{}, err
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: maxU8(m.DepthMax, o.DepthMax), Ranges: Or[T](m.Ranges, o.Ranges)}, nil
}

// And returns the intersection.
func (m RangeMOC[T]) And(o RangeMOC[T]) (RangeMOC[T], error) {
	if err := sameKind(m, o); err != nil {
		return RangeMOC[T]{}, err
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: maxU8(m.DepthMax, o.DepthMax), Ranges: And[T](m.Ranges, o.Ranges)}, nil
}

// Minus returns the set difference m \ o.
func (m RangeMOC[T]) Minus(o RangeMOC[T]) (RangeMOC[T], error) {
	if err := sameKind(m, o); err != nil {
		return RangeMOC[T]{}, err
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: maxU8(m.DepthMax, o.DepthMax), Ranges: Minus[T](m.Ranges, o.Ranges)}, nil
}

// Xor returns the symmetric difference.
func (m RangeMOC[T]) Xor(o RangeMOC[T]) (RangeMOC[T], error) {
	if err := sameKind(m, o); err != nil {
		return RangeMOC[T]{}, err
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: maxU8(m.DepthMax, o.DepthMax), Ranges: Xor[T](m.Ranges, o.Ranges)}, nil
}

// Not returns the complement within the full domain.
func (m RangeMOC[T]) Not() RangeMOC[T] {
	upper := T(m.Q.DomainUpper(BitLen[T]()))
	return RangeMOC[T]{Q: m.Q, DepthMax: m.DepthMax, Ranges: Not[T](m.Ranges, upper)}
}

// Degrade returns m re-expressed with depth_max lowered to newDepth, per
// spec.md §4.1/§8 property 4. newDepth must be <= m.DepthMax.
func (m RangeMOC[T]) Degrade(newDepth uint8) (RangeMOC[T], error) {
	if newDepth > m.DepthMax {
		return RangeMOC[T]{}, NewError(OutOfRange, "degrade target depth exceeds current depth_max", nil)
	}
	return RangeMOC[T]{Q: m.Q, DepthMax: newDepth, Ranges: Degrade[T](m.Ranges, m.Q, newDepth)}, nil
}

// Cells returns the minimal mixed-depth cell cover of m.
func (m RangeMOC[T]) Cells() []Cell {
	bitLen := BitLen[T]()
	var cells []Cell
	for i := 0; i < m.Ranges.Len(); i++ {
		lo, hi := m.Ranges.At(i)
		cells = append(cells, RangeToCells(m.Q, bitLen, uint64(lo), uint64(hi))...)
	}
	return cells
}

// Contains reports whether cell (depth, idx) is (at least partially)
// covered.
func (m RangeMOC[T]) Contains(depth uint8, idx uint64) bool {
	lo, hi := CellToRange(m.Q, BitLen[T](), depth, idx)
	return Intersects[T](m.Ranges, T(lo), T(hi))
}

// CellFraction returns |cell ∩ M| / |cell| for cell (depth, idx), per
// spec.md §4.1; result is always in [0, 1] (spec.md §8 property 5).
func (m RangeMOC[T]) CellFraction(depth uint8, idx uint64) float64 {
	lo, hi := CellToRange(m.Q, BitLen[T](), depth, idx)
	cellLen := hi - lo
	if cellLen == 0 {
		return 0
	}
	inter := And[T](m.Ranges, NewRanges([]Range[T]{{T(lo), T(hi)}}))
	var covered uint64
	for i := 0; i < inter.Len(); i++ {
		iLo, iHi := inter.At(i)
		covered += uint64(iHi) - uint64(iLo)
	}
	return float64(covered) / float64(cellLen)
}

// NeighbourFunc looks up the (up to 8, usually 4 for interior cells)
// nested-index neighbours of a depth-max cell. Injected rather than
// imported so the core algebra package has no dependency on a HEALPix
// library — see internal/healpixgeo for the concrete implementation.
type NeighbourFunc func(depth uint8, idx uint64) []uint64

// Expand grows m by one depth-max cell in every direction (spatial
// quantities only), per spec.md §4.1. Cells sharing neighbours (every
// interior edge of a packed region does) are deduplicated through a
// per-depth roaring64.Bitmap before they ever reach the builder — the
// same "accumulate into a bitmap set, then fold into ranges" shape as
// the teacher's bitmapMultiPolygon boundary set.
func (m RangeMOC[T]) Expand(nf NeighbourFunc) RangeMOC[T] {
	seen := map[uint8]*roaring64.Bitmap{}
	b := NewBuilder[T](m.Q, m.DepthMax, 64)
	pushUnique := func(depth uint8, idx uint64) {
		bm, ok := seen[depth]
		if !ok {
			bm = roaring64.New()
			seen[depth] = bm
		}
		if bm.CheckedAdd(idx) {
			b.PushCell(depth, idx)
		}
	}
	for _, c := range m.Cells() {
		pushUnique(c.Depth, c.Idx)
		for _, n := range nf(c.Depth, c.Idx) {
			pushUnique(c.Depth, n)
		}
	}
	grown := RangeMOC[T]{Q: m.Q, DepthMax: m.DepthMax, Ranges: b.Finalize()}
	merged, _ := m.Or(grown)
	return merged
}

// Contract shrinks m by one depth-max cell, implemented as the
// complement-expand-complement identity from spec.md §4.1.
func (m RangeMOC[T]) Contract(nf NeighbourFunc) RangeMOC[T] {
	return m.Not().Expand(nf).Not()
}

// ExternalBorder returns the cells added by Expand that were not already
// in m.
func (m RangeMOC[T]) ExternalBorder(nf NeighbourFunc) (RangeMOC[T], error) {
	return m.Expand(nf).Minus(m)
}

// InternalBorder returns the cells that Contract removes from m.
func (m RangeMOC[T]) InternalBorder(nf NeighbourFunc) (RangeMOC[T], error) {
	return m.Minus(m.Contract(nf))
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
