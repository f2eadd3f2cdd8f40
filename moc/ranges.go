package moc

import (
	"encoding/binary"
	"sort"
)

// Range is a single half-open interval [Lo, Hi) of a generic index type.
type Range[T Idx] struct {
	Lo, Hi T
}

// RangeReader is satisfied by both the owned Ranges[T] and the
// mmap-backed BorrowedRanges[T], per spec.md §9's "treat [borrowed] as a
// read-only façade with the same algebra as the owned form". All
// set-operators below accept either.
type RangeReader[T Idx] interface {
	Len() int
	At(i int) (T, T)
}

// Ranges is a sorted, disjoint, non-adjacent (coalesced) sequence of
// half-open ranges: the owned form of spec.md §3.2.
type Ranges[T Idx] struct {
	r []Range[T]
}

func (rs Ranges[T]) Len() int { return len(rs.r) }

func (rs Ranges[T]) At(i int) (T, T) { return rs.r[i].Lo, rs.r[i].Hi }

// IsEmpty reports whether the MOC covers nothing.
func (rs Ranges[T]) IsEmpty() bool { return len(rs.r) == 0 }

// Slice exposes the underlying ranges read-only.
func (rs Ranges[T]) Slice() []Range[T] { return rs.r }

// rawRange is the untyped (uint64) working representation used while
// building Ranges[T] from cells/uniq/positions, where T may be narrower
// than uint64.
type rawRange struct {
	Lo, Hi uint64
}

// accumulator appends (lo, hi) pairs in non-decreasing Lo order, coalescing
// overlapping or touching runs as it goes. This is the "small merging
// buffer" referenced in spec.md §4.1's degrade algorithm and reused by
// every set operator here.
type accumulator struct {
	out []rawRange
}

func (a *accumulator) push(lo, hi uint64) {
	if lo >= hi {
		return
	}
	if n := len(a.out); n > 0 && lo <= a.out[n-1].Hi {
		if hi > a.out[n-1].Hi {
			a.out[n-1].Hi = hi
		}
		return
	}
	a.out = append(a.out, rawRange{lo, hi})
}

func newRangesFromRaw[T Idx](raw []rawRange) Ranges[T] {
	if len(raw) == 0 {
		return Ranges[T]{}
	}
	sort.Slice(raw, func(i, j int) bool {
		if raw[i].Lo != raw[j].Lo {
			return raw[i].Lo < raw[j].Lo
		}
		return raw[i].Hi < raw[j].Hi
	})
	acc := accumulator{}
	for _, r := range raw {
		acc.push(r.Lo, r.Hi)
	}
	out := make([]Range[T], len(acc.out))
	for i, r := range acc.out {
		out[i] = Range[T]{Lo: T(r.Lo), Hi: T(r.Hi)}
	}
	return Ranges[T]{r: out}
}

// NewRanges builds a coalesced Ranges[T] from an arbitrary (possibly
// unsorted, possibly overlapping) list of ranges.
func NewRanges[T Idx](ranges []Range[T]) Ranges[T] {
	raw := make([]rawRange, len(ranges))
	for i, r := range ranges {
		raw[i] = rawRange{uint64(r.Lo), uint64(r.Hi)}
	}
	return newRangesFromRaw[T](raw)
}

func readerToRaw[T Idx](a RangeReader[T]) []rawRange {
	raw := make([]rawRange, a.Len())
	for i := 0; i < a.Len(); i++ {
		lo, hi := a.At(i)
		raw[i] = rawRange{uint64(lo), uint64(hi)}
	}
	return raw
}

// Or computes the union A ∪ B. Empty is the identity.
func Or[T Idx](a, b RangeReader[T]) Ranges[T] {
	raw := append(readerToRaw[T](a), readerToRaw[T](b)...)
	return newRangesFromRaw[T](raw)
}

// And computes the intersection A ∩ B via a two-pointer sweep advancing
// whichever side has the smaller Hi, per spec.md §4.1.
func And[T Idx](a, b RangeReader[T]) Ranges[T] {
	acc := accumulator{}
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		aLo, aHi := a.At(i)
		bLo, bHi := b.At(j)
		lo := uint64(aLo)
		if uint64(bLo) > lo {
			lo = uint64(bLo)
		}
		hi := uint64(aHi)
		if uint64(bHi) < hi {
			hi = uint64(bHi)
		}
		acc.push(lo, hi)
		switch {
		case aHi < bHi:
			i++
		case bHi < aHi:
			j++
		default:
			i++
			j++
		}
	}
	out := make([]Range[T], len(acc.out))
	for k, r := range acc.out {
		out[k] = Range[T]{T(r.Lo), T(r.Hi)}
	}
	return Ranges[T]{r: out}
}

// Minus computes the difference A \ B.
func Minus[T Idx](a, b RangeReader[T]) Ranges[T] {
	acc := accumulator{}
	j := 0
	for i := 0; i < a.Len(); i++ {
		aLo, aHi := a.At(i)
		lo, hi := uint64(aLo), uint64(aHi)
		for j < b.Len() {
			_, bHi := b.At(j)
			if uint64(bHi) <= lo {
				j++
				continue
			}
			break
		}
		cur := lo
		k := j
		for k < b.Len() {
			bLo, bHi := b.At(k)
			if uint64(bLo) >= hi {
				break
			}
			if uint64(bLo) > cur {
				acc.push(cur, uint64(bLo))
			}
			if uint64(bHi) > cur {
				cur = uint64(bHi)
			}
			if uint64(bHi) >= hi {
				break
			}
			k++
		}
		if cur < hi {
			acc.push(cur, hi)
		}
	}
	out := make([]Range[T], len(acc.out))
	for k, r := range acc.out {
		out[k] = Range[T]{T(r.Lo), T(r.Hi)}
	}
	return Ranges[T]{r: out}
}

// Xor computes the symmetric difference A △ B via an endpoint sweep:
// break the combined range into maximal sub-intervals where membership in
// A and B is constant, and keep those where exactly one side contains the
// interval, per spec.md §4.1.
func Xor[T Idx](a, b RangeReader[T]) Ranges[T] {
	var points []uint64
	for i := 0; i < a.Len(); i++ {
		lo, hi := a.At(i)
		points = append(points, uint64(lo), uint64(hi))
	}
	for i := 0; i < b.Len(); i++ {
		lo, hi := b.At(i)
		points = append(points, uint64(lo), uint64(hi))
	}
	if len(points) == 0 {
		return Ranges[T]{}
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	uniq := points[:1]
	for _, p := range points[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	acc := accumulator{}
	for k := 0; k+1 < len(uniq); k++ {
		lo, hi := uniq[k], uniq[k+1]
		inA := pointInRaw(a, lo)
		inB := pointInRaw(b, lo)
		if inA != inB {
			acc.push(lo, hi)
		}
	}
	out := make([]Range[T], len(acc.out))
	for k, r := range acc.out {
		out[k] = Range[T]{T(r.Lo), T(r.Hi)}
	}
	return Ranges[T]{r: out}
}

// Not computes the complement of A within [0, domainUpper), per spec.md
// §4.1: the gap before the first range, the gaps between ranges, and the
// gap after the last range.
func Not[T Idx](a RangeReader[T], domainUpper T) Ranges[T] {
	acc := accumulator{}
	prev := uint64(0)
	for i := 0; i < a.Len(); i++ {
		lo, hi := a.At(i)
		acc.push(prev, uint64(lo))
		prev = uint64(hi)
	}
	acc.push(prev, uint64(domainUpper))
	out := make([]Range[T], len(acc.out))
	for k, r := range acc.out {
		out[k] = Range[T]{T(r.Lo), T(r.Hi)}
	}
	return Ranges[T]{r: out}
}

// pointInRaw reports whether v falls inside some [lo,hi) of a, via binary
// search over a's sorted ranges.
func pointInRaw[T Idx](a RangeReader[T], v uint64) bool {
	n := a.Len()
	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		mLo, mHi := a.At(mid)
		switch {
		case v < uint64(mLo):
			hi = mid - 1
		case v >= uint64(mHi):
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// Contains reports whether v belongs to some range of a.
func Contains[T Idx](a RangeReader[T], v T) bool {
	return pointInRaw[T](a, uint64(v))
}

// Intersects reports whether [lo, hi) overlaps any range of a.
func Intersects[T Idx](a RangeReader[T], lo, hi T) bool {
	n := a.Len()
	// binary search for the first range whose Hi > lo
	idx := sort.Search(n, func(i int) bool {
		_, h := a.At(i)
		return uint64(h) > uint64(lo)
	})
	if idx >= n {
		return false
	}
	aLo, _ := a.At(idx)
	return uint64(aLo) < uint64(hi)
}

// Equal reports whether two range readers describe the same set.
func Equal[T Idx](a, b RangeReader[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		aLo, aHi := a.At(i)
		bLo, bHi := b.At(i)
		if aLo != bLo || aHi != bHi {
			return false
		}
	}
	return true
}

// BorrowedRanges is a zero-copy, read-only view of range data stored as
// raw little-endian (Lo, Hi) pairs in a byte slice — the form mocset
// reads directly out of its mmap'd data area, per spec.md §9.
type BorrowedRanges[T Idx] struct {
	data []byte
}

// NewBorrowedRanges wraps data, which must hold len(data)/(2*sizeof(T))
// little-endian (Lo, Hi) pairs.
func NewBorrowedRanges[T Idx](data []byte) BorrowedRanges[T] {
	return BorrowedRanges[T]{data: data}
}

func (b BorrowedRanges[T]) elemSize() int { return BitLen[T]() / 8 }

func (b BorrowedRanges[T]) Len() int {
	sz := b.elemSize()
	if sz == 0 {
		return 0
	}
	return len(b.data) / (2 * sz)
}

func (b BorrowedRanges[T]) At(i int) (T, T) {
	sz := b.elemSize()
	off := i * 2 * sz
	return T(readUint(b.data[off:off+sz])), T(readUint(b.data[off+sz : off+2*sz]))
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func writeUint(b []byte, v uint64) {
	switch len(b) {
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}

// Encode serialises Ranges[T] to raw little-endian (Lo, Hi) pairs, the
// wire form mocset stores in its data area (spec.md §3.5).
func Encode[T Idx](rs Ranges[T]) []byte {
	sz := BitLen[T]() / 8
	out := make([]byte, len(rs.r)*2*sz)
	for i, r := range rs.r {
		off := i * 2 * sz
		writeUint(out[off:off+sz], uint64(r.Lo))
		writeUint(out[off+sz:off+2*sz], uint64(r.Hi))
	}
	return out
}

// Decode parses the wire form produced by Encode back into an owned
// Ranges[T].
func Decode[T Idx](data []byte) Ranges[T] {
	br := NewBorrowedRanges[T](data)
	out := make([]Range[T], br.Len())
	for i := 0; i < br.Len(); i++ {
		lo, hi := br.At(i)
		out[i] = Range[T]{lo, hi}
	}
	return Ranges[T]{r: out}
}
