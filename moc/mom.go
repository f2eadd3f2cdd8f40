package moc

// Mom is a Multi-Ordered Map: a function from hierarchical cells (mixed
// depths allowed) to numeric values, typically probability densities or
// per-cell areas, per spec.md §9's glossary entry. FromMultiOrderMap (in
// constructors.go) turns one into a RangeMOC via threshold selection; the
// operations here instead combine a Mom with an existing RangeMOC.
type Mom struct {
	Q       Quantity
	Entries []MomEntry
}

// NewMom wraps a flat (uniq, value) list.
func NewMom(q Quantity, entries []MomEntry) Mom {
	return Mom{Q: q, Entries: entries}
}

// SumRestricted returns the sum of entry values whose cell is (at least
// partially) covered by moc, each weighted by its covered cell fraction —
// spec.md §3.3's "sum restricted to MOC" operation. This is the
// probability-in-region computation (e.g. "how much of this skymap's
// probability falls inside this footprint").
func (m Mom) SumRestricted(moc RangeMOC[uint64]) (float64, error) {
	var total float64
	for _, e := range m.Entries {
		d, idx, err := m.Q.UniqToDepthIdx(e.Uniq)
		if err != nil {
			return 0, err
		}
		frac := moc.CellFraction(d, idx)
		if frac == 0 {
			continue
		}
		total += e.Value * frac
	}
	return total, nil
}

// FilterAreaWeighted returns a copy of m's entries with each value scaled
// by its cell's coverage fraction inside moc, per spec.md §3.3's "filter
// with area weights" and the CellFraction reweighting spec.md §4.1
// documents. Entries with zero overlap are dropped.
func (m Mom) FilterAreaWeighted(moc RangeMOC[uint64]) (Mom, error) {
	out := make([]MomEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		d, idx, err := m.Q.UniqToDepthIdx(e.Uniq)
		if err != nil {
			return Mom{}, err
		}
		frac := moc.CellFraction(d, idx)
		if frac == 0 {
			continue
		}
		out = append(out, MomEntry{Uniq: e.Uniq, Value: e.Value * frac})
	}
	return Mom{Q: m.Q, Entries: out}, nil
}

// Max returns the entry with the largest value, and false if m is empty.
func (m Mom) Max() (MomEntry, bool) {
	if len(m.Entries) == 0 {
		return MomEntry{}, false
	}
	best := m.Entries[0]
	for _, e := range m.Entries[1:] {
		if e.Value > best.Value {
			best = e
		}
	}
	return best, true
}

// Total returns the sum of every entry's value, the normalisation
// denominator FromMultiOrderMap's cumulative walk divides by.
func (m Mom) Total() float64 {
	var total float64
	for _, e := range m.Entries {
		total += e.Value
	}
	return total
}
