package moc

import "github.com/cespare/xxhash/v2"

// Elem2 is one row of a 2-D MOC: a first-dimension range paired with the
// set of second-dimension cells associated with it, per spec.md §3.4
// (e.g. one time range plus the sky coverage observed during it).
type Elem2[T1, T2 Idx] struct {
	D1 Range[T1]
	D2 Ranges[T2]
}

// RangeMOC2 is a Space-Time or Space-Frequency coverage map: a sorted,
// disjoint list of Elem2 rows. Adjacent rows whose D2 sets are equal are
// kept merged by construction, per spec.md §4.4's "coalesce D1 ranges that
// carry an identical D2 set" invariant.
type RangeMOC2[T1, T2 Idx] struct {
	Q1, Q2               Quantity
	DepthMax1, DepthMax2 uint8
	Elems                []Elem2[T1, T2]
}

// d2Hash is the xxhash digest of a D2 set's wire encoding, used as a cheap
// pre-filter before the exact Equal check when deciding whether two
// adjacent rows can merge — the same hash-then-verify shape the teacher
// uses in its tile writer to dedupe identical tile bodies cheaply before
// trusting the match.
func d2Hash[T Idx](rs Ranges[T]) uint64 {
	return xxhash.Sum64(Encode[T](rs))
}

func d2Equal[T Idx](a, b Ranges[T]) bool {
	if d2Hash(a) != d2Hash(b) {
		return false
	}
	return Equal[T](a, b)
}

// coalesce2 merges adjacent rows whose D1 ranges touch and whose D2 sets
// are equal, keeping RangeMOC2 in its canonical minimal form.
func coalesce2[T1, T2 Idx](rows []Elem2[T1, T2]) []Elem2[T1, T2] {
	if len(rows) == 0 {
		return rows
	}
	out := rows[:1]
	for _, r := range rows[1:] {
		last := &out[len(out)-1]
		if uint64(last.D1.Hi) == uint64(r.D1.Lo) && d2Equal(last.D2, r.D2) {
			last.D1.Hi = r.D1.Hi
			continue
		}
		out = append(out, r)
	}
	return out
}

func newRangeMOC2[T1, T2 Idx](q1, q2 Quantity, d1, d2 uint8, rows []Elem2[T1, T2]) RangeMOC2[T1, T2] {
	return RangeMOC2[T1, T2]{Q1: q1, Q2: q2, DepthMax1: d1, DepthMax2: d2, Elems: coalesce2(rows)}
}

func sameKind2[T1, T2 Idx](a, b RangeMOC2[T1, T2]) error {
	if a.Q1 != b.Q1 || a.Q2 != b.Q2 {
		return NewError(BadInvariant, "cannot combine 2-D MOCs of different quantities", nil)
	}
	return nil
}

// d1Breakpoints collects every distinct D1 endpoint across both operands,
// the grid the merge-sweep below walks one cell at a time.
func d1Breakpoints[T1, T2 Idx](a, b RangeMOC2[T1, T2]) []uint64 {
	var pts []uint64
	for _, e := range a.Elems {
		pts = append(pts, uint64(e.D1.Lo), uint64(e.D1.Hi))
	}
	for _, e := range b.Elems {
		pts = append(pts, uint64(e.D1.Lo), uint64(e.D1.Hi))
	}
	if len(pts) == 0 {
		return nil
	}
	// insertion sort + unique: the endpoint count here is small relative
	// to the per-row D2 sets these feed into.
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j] < pts[j-1]; j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
		}
	}
	uniq := pts[:1]
	for _, p := range pts[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	return uniq
}

func d2At[T1, T2 Idx](m RangeMOC2[T1, T2], d1 uint64) Ranges[T2] {
	for _, e := range m.Elems {
		if d1 >= uint64(e.D1.Lo) && d1 < uint64(e.D1.Hi) {
			return e.D2
		}
	}
	return Ranges[T2]{}
}

// Or computes the union of two Space-Time/Space-Frequency MOCs, per
// spec.md §4.4: at each D1 sub-interval, the D2 set is the union of
// whichever operand(s) cover that interval.
func (m RangeMOC2[T1, T2]) Or(o RangeMOC2[T1, T2]) (RangeMOC2[T1, T2], error) {
	if err := sameKind2(m, o); err != nil {
		return RangeMOC2[T1, T2]{}, err
	}
	pts := d1Breakpoints(m, o)
	var rows []Elem2[T1, T2]
	for k := 0; k+1 < len(pts); k++ {
		lo, hi := pts[k], pts[k+1]
		aD2 := d2At(m, lo)
		bD2 := d2At(o, lo)
		if aD2.IsEmpty() && bD2.IsEmpty() {
			continue
		}
		rows = append(rows, Elem2[T1, T2]{D1: Range[T1]{T1(lo), T1(hi)}, D2: Or[T2](aD2, bD2)})
	}
	return newRangeMOC2(m.Q1, m.Q2, maxU8(m.DepthMax1, o.DepthMax1), maxU8(m.DepthMax2, o.DepthMax2), rows), nil
}

// And computes the intersection: a D1 sub-interval survives only where
// both operands have non-empty D2 sets, and the surviving D2 set is their
// intersection, per spec.md §4.4.
func (m RangeMOC2[T1, T2]) And(o RangeMOC2[T1, T2]) (RangeMOC2[T1, T2], error) {
	if err := sameKind2(m, o); err != nil {
		return RangeMOC2[T1, T2]{}, err
	}
	pts := d1Breakpoints(m, o)
	var rows []Elem2[T1, T2]
	for k := 0; k+1 < len(pts); k++ {
		lo, hi := pts[k], pts[k+1]
		aD2 := d2At(m, lo)
		bD2 := d2At(o, lo)
		if aD2.IsEmpty() || bD2.IsEmpty() {
			continue
		}
		d2 := And[T2](aD2, bD2)
		if d2.IsEmpty() {
			continue
		}
		rows = append(rows, Elem2[T1, T2]{D1: Range[T1]{T1(lo), T1(hi)}, D2: d2})
	}
	return newRangeMOC2(m.Q1, m.Q2, maxU8(m.DepthMax1, o.DepthMax1), maxU8(m.DepthMax2, o.DepthMax2), rows), nil
}

// Minus computes m \ o: where o fully covers a D1 interval's D2 set the
// interval is dropped, otherwise the surviving D2 set is the difference,
// per spec.md §4.4.
func (m RangeMOC2[T1, T2]) Minus(o RangeMOC2[T1, T2]) (RangeMOC2[T1, T2], error) {
	if err := sameKind2(m, o); err != nil {
		return RangeMOC2[T1, T2]{}, err
	}
	pts := d1Breakpoints(m, o)
	var rows []Elem2[T1, T2]
	for k := 0; k+1 < len(pts); k++ {
		lo, hi := pts[k], pts[k+1]
		aD2 := d2At(m, lo)
		if aD2.IsEmpty() {
			continue
		}
		bD2 := d2At(o, lo)
		d2 := Minus[T2](aD2, bD2)
		if d2.IsEmpty() {
			continue
		}
		rows = append(rows, Elem2[T1, T2]{D1: Range[T1]{T1(lo), T1(hi)}, D2: d2})
	}
	return newRangeMOC2(m.Q1, m.Q2, maxU8(m.DepthMax1, o.DepthMax1), maxU8(m.DepthMax2, o.DepthMax2), rows), nil
}

// SpaceFold projects a Space-X MOC2 down to a 1-D RangeMOC over the first
// (time/frequency) axis, restricted to rows whose D2 (space) set
// intersects filter, per spec.md §4.4's space_fold: "given a space query,
// return the union of D1 for every row whose D2 intersects it" (used e.g.
// to recover "when was this patch of sky observed").
func (m RangeMOC2[T1, T2]) SpaceFold(filter RangeMOC[T2]) RangeMOC[T1] {
	b := NewBuilder[T1](m.Q1, m.DepthMax1, 64)
	for _, e := range m.Elems {
		inter := And[T2](e.D2, filter.Ranges)
		if inter.IsEmpty() {
			continue
		}
		b.PushRawRange(uint64(e.D1.Lo), uint64(e.D1.Hi))
	}
	return RangeMOC[T1]{Q: m.Q1, DepthMax: m.DepthMax1, Ranges: b.Finalize()}
}

// TimeFold projects a Space-X MOC2 down to a 1-D RangeMOC over the space
// axis, restricted to rows whose D1 (time/frequency) range intersects
// filter, per spec.md §4.4's time_fold: "given a time query, return the
// union of D2 for every row whose D1 intersects it" (used e.g. to recover
// "what sky area was observed during this time window").
func (m RangeMOC2[T1, T2]) TimeFold(filter RangeMOC[T1]) RangeMOC[T2] {
	b := NewBuilder[T2](m.Q2, m.DepthMax2, 64)
	for _, e := range m.Elems {
		if !Intersects[T1](filter.Ranges, e.D1.Lo, e.D1.Hi) {
			continue
		}
		for i := 0; i < e.D2.Len(); i++ {
			lo, hi := e.D2.At(i)
			b.PushRawRange(uint64(lo), uint64(hi))
		}
	}
	return RangeMOC[T2]{Q: m.Q2, DepthMax: m.DepthMax2, Ranges: b.Finalize()}
}
