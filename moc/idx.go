// Package moc implements range-encoded Multi-Order Coverage maps (MOCs):
// compact, lossless representations of subsets of hierarchically
// subdivided 1-D domains (HEALPix sky pixels, time, and frequency), the
// set algebra over them, and their 2-D cross products.
package moc

import "math/bits"

// Idx is the index type family a quantity is instantiated over: an
// unsigned integer wide enough to address every cell at its domain's
// deepest supported depth.
type Idx interface {
	~uint16 | ~uint32 | ~uint64
}

// Zero returns the identity element for an Idx type.
func Zero[T Idx]() T { return T(0) }

// One returns the multiplicative unit for an Idx type.
func One[T Idx]() T { return T(1) }

// BitLen returns the number of bits in T's representation.
func BitLen[T Idx]() int {
	var z T
	switch any(z).(type) {
	case uint16:
		return 16
	case uint32:
		return 32
	default:
		return 64
	}
}

// ToU64 widens any Idx value to uint64 for storage/interop.
func ToU64[T Idx](v T) uint64 {
	return uint64(v)
}

// FromU64 narrows a uint64 to T; callers are responsible for ensuring v
// fits (the quantity layer never produces out-of-range values for its own
// depth/width combination).
func FromU64[T Idx](v uint64) T {
	return T(v)
}

// LeadingZeros64 is a small wrapper kept next to the Idx helpers so
// callers needing bit-position math (uniq/zuniq decode) don't have to
// import math/bits directly throughout the package.
func LeadingZeros64(v uint64) int {
	return bits.LeadingZeros64(v)
}

// TrailingZeros64 returns the position of the lowest set bit, used to
// strip the zuniq depth marker.
func TrailingZeros64(v uint64) int {
	return bits.TrailingZeros64(v)
}
