package moc

// Geo is the thin seam moc's spatial constructors call through to reach
// HEALPix geometry, injected rather than imported directly so the core
// algebra package stays free of a HEALPix dependency — see
// internal/healpixgeo for the concrete implementation, and rangemoc.go's
// NeighbourFunc for the same pattern applied to Expand/Contract.
type Geo interface {
	QueryDisc(order uint8, lonRad, latRad, radiusRad float64, inclusive bool) ([]uint64, error)
	QueryPolygon(order uint8, vertsDeg [][2]float64) ([]uint64, error)
	QueryBox(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error)
	QueryZone(order uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) ([]uint64, error)
	QueryEllipse(order uint8, lonRad, latRad, aRad, bRad, paRad float64) ([]uint64, error)
	Ang2Pix(order uint8, lonRad, latRad float64) (uint64, error)
}

// Position is a single (lon, lat) sky coordinate in radians, the input
// shape for FromPositions per spec.md §4.3.
type Position struct {
	LonRad, LatRad float64
}

func cellsAtDepth(depth uint8, idxs []uint64) []Cell {
	cells := make([]Cell, len(idxs))
	for i, idx := range idxs {
		cells[i] = Cell{Depth: depth, Idx: idx}
	}
	return cells
}

// FromPositions builds a Space RangeMOC containing the depthMax-level cell
// of every position, per spec.md §4.3.
func FromPositions[T Idx](geo Geo, depthMax uint8, positions []Position) (RangeMOC[T], error) {
	b := NewBuilder[T](Hpx, depthMax, 64)
	for _, p := range positions {
		idx, err := geo.Ang2Pix(depthMax, p.LonRad, p.LatRad)
		if err != nil {
			return RangeMOC[T]{}, NewError(FormatError, "position to pixel failed", err)
		}
		b.PushCell(depthMax, idx)
	}
	return RangeMOC[T]{Q: Hpx, DepthMax: depthMax, Ranges: b.Finalize()}, nil
}

// FromCone builds a Space RangeMOC covering a cone (disc) centred at
// (lonRad, latRad) with opening radiusRad, per spec.md §4.3.
func FromCone[T Idx](geo Geo, depthMax uint8, lonRad, latRad, radiusRad float64) (RangeMOC[T], error) {
	idxs, err := geo.QueryDisc(depthMax, lonRad, latRad, radiusRad, true)
	if err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "cone query failed", err)
	}
	return FromCells[T](Hpx, depthMax, cellsAtDepth(depthMax, idxs), 64), nil
}

// FromBox builds a Space RangeMOC covering an axis-aligned lon/lat box
// (degrees), per spec.md §4.3.
func FromBox[T Idx](geo Geo, depthMax uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) (RangeMOC[T], error) {
	idxs, err := geo.QueryBox(depthMax, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg)
	if err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "box query failed", err)
	}
	return FromCells[T](Hpx, depthMax, cellsAtDepth(depthMax, idxs), 64), nil
}

// FromZone builds a Space RangeMOC covering a declination/right-ascension
// zone, per spec.md §4.3.
func FromZone[T Idx](geo Geo, depthMax uint8, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg float64) (RangeMOC[T], error) {
	idxs, err := geo.QueryZone(depthMax, minLonDeg, minLatDeg, maxLonDeg, maxLatDeg)
	if err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "zone query failed", err)
	}
	return FromCells[T](Hpx, depthMax, cellsAtDepth(depthMax, idxs), 64), nil
}

// FromEllipse builds a Space RangeMOC covering an elliptical region
// centred at (lonRad, latRad), per spec.md §4.3.
func FromEllipse[T Idx](geo Geo, depthMax uint8, lonRad, latRad, aRad, bRad, paRad float64) (RangeMOC[T], error) {
	idxs, err := geo.QueryEllipse(depthMax, lonRad, latRad, aRad, bRad, paRad)
	if err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "ellipse query failed", err)
	}
	return FromCells[T](Hpx, depthMax, cellsAtDepth(depthMax, idxs), 64), nil
}

// FromPolygon builds a Space RangeMOC covering a closed (lon, lat)-degree
// polygon, per spec.md §4.3.
func FromPolygon[T Idx](geo Geo, depthMax uint8, vertsDeg [][2]float64) (RangeMOC[T], error) {
	idxs, err := geo.QueryPolygon(depthMax, vertsDeg)
	if err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "polygon query failed", err)
	}
	return FromCells[T](Hpx, depthMax, cellsAtDepth(depthMax, idxs), 64), nil
}

// MomEntry is one (uniq, value) pair of a Multi-Order Map, per spec.md
// §3.3/§4.3.
type MomEntry struct {
	Uniq  uint64
	Value float64
}

// SelectOrder controls which end of a sorted-by-value MOM the threshold
// walk starts from, per spec.md §4.3.
type SelectOrder uint8

const (
	// Ascending accumulates from the lowest-value cells first.
	Ascending SelectOrder = iota
	// Descending accumulates from the highest-value cells first.
	Descending
)

// FromMultiOrderMap selects the minimal set of MOM cells whose cumulative
// value reaches cumulFrom..cumulTo of the map's total, per spec.md §4.3. If
// noSplit is true, a cell straddling the cumulative threshold is included
// whole rather than degraded/split; otherwise the straddling cell is
// recursively split into its children (assumed equal-valued, per HEALPix/
// binary subdivision) down to depthMax, re-testing the cumulative fraction
// at each level, so only the children overlapping [cumulFrom, cumulTo)
// survive; a child still straddling a boundary at depthMax is kept whole.
func FromMultiOrderMap[T Idx](q Quantity, depthMax uint8, entries []MomEntry, cumulFrom, cumulTo float64, order SelectOrder, noSplit bool) (RangeMOC[T], error) {
	sorted := make([]MomEntry, len(entries))
	copy(sorted, entries)
	sortMomEntries(sorted, order)

	var total float64
	for _, e := range sorted {
		total += e.Value
	}
	if total <= 0 {
		return RangeMOC[T]{Q: q, DepthMax: depthMax}, nil
	}

	b := NewBuilder[T](q, depthMax, 64)
	var cum float64
	for _, e := range sorted {
		lowerFrac := cum / total
		cum += e.Value
		upperFrac := cum / total

		if upperFrac <= cumulFrom || lowerFrac >= cumulTo {
			continue
		}

		d, idx, err := q.UniqToDepthIdx(e.Uniq)
		if err != nil {
			return RangeMOC[T]{}, err
		}
		if d > depthMax {
			return RangeMOC[T]{}, NewError(OutOfRange, "mom cell depth exceeds depth_max", nil)
		}

		if noSplit || (lowerFrac >= cumulFrom && upperFrac <= cumulTo) {
			b.PushCell(d, idx)
			continue
		}

		// Cell straddles a boundary and splitting is allowed: recurse
		// into its children down to depthMax, re-testing each child's
		// cumulative-fraction sub-interval.
		splitCell[T](b, q, depthMax, d, idx, lowerFrac, upperFrac, cumulFrom, cumulTo)
	}
	return RangeMOC[T]{Q: q, DepthMax: depthMax, Ranges: b.Finalize()}, nil
}

// splitCell recursively subdivides the cell (depth, idx), which spans the
// cumulative-fraction interval [lowerFrac, upperFrac) under the assumption
// that its value is distributed equally across its children, and pushes
// only the portion(s) that fall inside [cumulFrom, cumulTo). Recursion
// stops at depthMax, where a still-straddling cell is included whole
// (the range model has no finer cell left to cut it with).
func splitCell[T Idx](b *Builder[T], q Quantity, depthMax uint8, depth uint8, idx uint64, lowerFrac, upperFrac, cumulFrom, cumulTo float64) {
	if upperFrac <= cumulFrom || lowerFrac >= cumulTo {
		return
	}
	if (lowerFrac >= cumulFrom && upperFrac <= cumulTo) || depth >= depthMax {
		b.PushCell(depth, idx)
		return
	}
	nChildren := uint64(1) << uint(q.Dim())
	childSpan := (upperFrac - lowerFrac) / float64(nChildren)
	for k := uint64(0); k < nChildren; k++ {
		childLower := lowerFrac + float64(k)*childSpan
		splitCell[T](b, q, depthMax, depth+1, idx*nChildren+k, childLower, childLower+childSpan, cumulFrom, cumulTo)
	}
}

func sortMomEntries(entries []MomEntry, order SelectOrder) {
	less := func(i, j int) bool { return entries[i].Value < entries[j].Value }
	if order == Descending {
		less = func(i, j int) bool { return entries[i].Value > entries[j].Value }
	}
	// simple insertion sort: MOM entry counts are small relative to cell
	// counts elsewhere in this package, and this avoids pulling in sort
	// just for a signature mismatch with the closure above.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// SkymapPixel is one equal-area pixel of a fixed-order probability skymap,
// implicitly ordered (pixel i covers nested index i), per spec.md §4.3.
type SkymapPixel struct {
	Value float64
}

// FromSkymap selects the minimal set of fixed-order skymap pixels whose
// cumulative probability reaches cumulFrom..cumulTo, per spec.md §4.3. It
// is FromMultiOrderMap specialised to a single implicit depth.
func FromSkymap[T Idx](q Quantity, depth uint8, pixels []SkymapPixel, cumulFrom, cumulTo float64, order SelectOrder) (RangeMOC[T], error) {
	entries := make([]MomEntry, len(pixels))
	for i, p := range pixels {
		entries[i] = MomEntry{Uniq: q.Uniq(depth, uint64(i)), Value: p.Value}
	}
	return FromMultiOrderMap[T](q, depth, entries, cumulFrom, cumulTo, order, true)
}
