package moc

// FITSKeywords documents the subset of MOC FITS BINTABLE header keywords
// spec.md §6.1 names, for a future writer — this package does not parse
// or produce FITS itself (no FITS library exists anywhere the rest of
// this module's dependency stack draws from, and spec.md §1 lists FITS
// parsing as an external-collaborator non-goal beyond the shape of the
// iterators it exposes to the core, which CellSource/RangeSource below
// satisfy).
type FITSKeywords struct {
	// MOCDIM is one of SPACE, TIME, FREQUENCY, TIME.SPACE, FREQUENCY.SPACE.
	MOCDIM string
	// MOCVERS is the MOC standard version a writer targets. "2.1" is the
	// canonical value a future writer in this package should emit; no
	// open question remains about which version to target, since no
	// writer exists yet to need one.
	MOCVERS string
	// ORDERING is one of NUNIQ, RANGE, RANGE29, NESTED, RING.
	ORDERING string
	// COORDSYS is 'C' for space MOCs.
	COORDSYS string
	// TIMESYS is one of TCB, JD.
	TIMESYS string
	// MOCORDER / MOCORD_S / MOCORD_T / MOCORD_F record depth_max for the
	// 1-D and 2-D forms respectively.
	MOCORDER string
	MOCORDS  string
	MOCORDT  string
	MOCORDF  string
	// TFORM1 is one of 1B, 1I, 1J, 1K, 2K, naming the column's FITS type.
	TFORM1 string
}

// CellSource is the minimal read shape a FITS (or any future) binary MOC
// reader needs to expose to feed moc.FromCells/moc.Builder, per spec.md
// §1's "FITS/ASCII/JSON parsers beyond iterator shape" scoping.
type CellSource interface {
	Next() (depth uint8, idx uint64, ok bool)
}

// RangeSource is the range-shaped analogue of CellSource, for a FITS
// RANGE/RANGE29 column.
type RangeSource interface {
	Next() (lo, hi uint64, ok bool)
}

// FromFITS is not implemented: see the FITSKeywords doc comment above. It
// returns an explicit Unsupported error rather than omitting the symbol,
// per spec.md §7's requirement that unsupported operations fail loudly.
func FromFITS[T Idx](Quantity, uint8, []byte) (RangeMOC[T], error) {
	return RangeMOC[T]{}, NewError(Unsupported, "FITS decoding is not implemented", nil)
}

// ToFITS is not implemented: see FromFITS.
func ToFITS[T Idx](RangeMOC[T]) ([]byte, error) {
	return nil, NewError(Unsupported, "FITS encoding is not implemented", nil)
}
