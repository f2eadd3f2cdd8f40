// Package mocset implements the on-disk MocSet registry: a single file
// holding many MOCs behind a fixed-size header of packed (flag, depth,
// id) meta entries and a CSR-style cumulative byte-offset index, per
// spec.md §3.5.
package mocset

import (
	"encoding/binary"

	"github.com/moclib/go-moc/moc"
)

// Status is the 2-bit flag packed into the top byte of a meta entry.
type Status uint8

const (
	StatusVoid       Status = 0b00
	StatusRemoved    Status = 0b01
	StatusDeprecated Status = 0b10
	StatusValid      Status = 0b11
)

func (s Status) String() string {
	switch s {
	case StatusVoid:
		return "void"
	case StatusRemoved:
		return "removed"
	case StatusDeprecated:
		return "deprecated"
	case StatusValid:
		return "valid"
	default:
		return "unknown"
	}
}

const (
	// n128Bytes is the fixed-size leading capacity field.
	n128Bytes = 8
	// MetaEntryBytes is the width of one packed (flag, depth, id) entry.
	MetaEntryBytes = 8
	// IndexEntryBytes is the width of one cumulative byte-offset entry.
	IndexEntryBytes = 8
	// MaxID is the largest identifier a 48-bit meta field can hold.
	MaxID = uint64(1)<<48 - 1
)

// Capacity returns the number of MOC slots a file with the given n128
// parameter can hold: n128*128 - 1, per spec.md §3.5.
func Capacity(n128 uint64) uint64 {
	if n128 == 0 {
		return 0
	}
	return n128*128 - 1
}

// HeaderLen returns the total header size in bytes: n128*2048, page-
// aligned per spec.md §5.
func HeaderLen(n128 uint64) uint64 {
	return n128 * 2048
}

// metaRegionLen is M = n128*1024 - 8 bytes of 8-byte meta entries.
func metaRegionLen(n128 uint64) uint64 {
	return n128*1024 - n128Bytes
}

// indexRegionLen is I = n128*1024 bytes of 8-byte cumulative offsets.
func indexRegionLen(n128 uint64) uint64 {
	return n128 * 1024
}

func metaRegionOffset() uint64 { return n128Bytes }

func indexRegionOffset(n128 uint64) uint64 {
	return metaRegionOffset() + metaRegionLen(n128)
}

// DataRegionOffset is where the concatenated MOC range arrays begin.
func DataRegionOffset(n128 uint64) uint64 {
	return HeaderLen(n128)
}

// MetaEntry is the decoded form of one 8-byte meta slot.
type MetaEntry struct {
	Status Status
	Depth  uint8
	ID     uint64
}

// EncodeMetaEntry packs (flag, depth, id) into the 64-bit little-endian
// layout of spec.md §3.5: bits 63..56 flag, 55..48 depth, 47..0 id.
func EncodeMetaEntry(e MetaEntry) uint64 {
	return uint64(e.Status)<<56 | uint64(e.Depth)<<48 | (e.ID & MaxID)
}

// DecodeMetaEntry reverses EncodeMetaEntry.
func DecodeMetaEntry(v uint64) MetaEntry {
	return MetaEntry{
		Status: Status(v >> 56),
		Depth:  uint8((v >> 48) & 0xFF),
		ID:     v & MaxID,
	}
}

// Header is the parsed in-memory form of a MocSet file's fixed header.
type Header struct {
	N128  uint64
	Meta  []MetaEntry // len == Capacity(N128)
	Index []uint64    // len == Capacity(N128)+1, CSR-style cumulative byte offsets
}

// NewHeader allocates an empty header (all slots void, index all zero)
// sized for n128.
func NewHeader(n128 uint64) Header {
	cap := Capacity(n128)
	h := Header{
		N128:  n128,
		Meta:  make([]MetaEntry, cap),
		Index: make([]uint64, cap+1),
	}
	return h
}

// SerializeHeader writes h into a freshly allocated, page-aligned byte
// buffer of length HeaderLen(h.N128), per spec.md §3.5. Grounded on the
// teacher's fixed-offset little-endian header packing.
func SerializeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen(h.N128))
	binary.LittleEndian.PutUint64(buf[0:8], h.N128)

	metaOff := metaRegionOffset()
	for i, m := range h.Meta {
		off := metaOff + uint64(i)*MetaEntryBytes
		binary.LittleEndian.PutUint64(buf[off:off+8], EncodeMetaEntry(m))
	}

	idxOff := indexRegionOffset(h.N128)
	for i, v := range h.Index {
		off := idxOff + uint64(i)*IndexEntryBytes
		binary.LittleEndian.PutUint64(buf[off:off+8], v)
	}
	return buf
}

// DeserializeHeader parses the fixed header out of d, which must be at
// least HeaderLen(n128) bytes for the n128 encoded in its first 8 bytes.
func DeserializeHeader(d []byte) (Header, error) {
	if len(d) < n128Bytes {
		return Header{}, moc.NewError(moc.FormatError, "mocset file shorter than the n128 field", nil)
	}
	n128 := binary.LittleEndian.Uint64(d[0:8])
	if n128 == 0 {
		return Header{}, moc.NewError(moc.FormatError, "mocset n128 must be >= 1", nil)
	}
	want := HeaderLen(n128)
	if uint64(len(d)) < want {
		return Header{}, moc.NewError(moc.FormatError, "mocset file shorter than its declared header", nil)
	}

	cap := Capacity(n128)
	h := Header{N128: n128, Meta: make([]MetaEntry, cap), Index: make([]uint64, cap+1)}

	metaOff := metaRegionOffset()
	for i := range h.Meta {
		off := metaOff + uint64(i)*MetaEntryBytes
		h.Meta[i] = DecodeMetaEntry(binary.LittleEndian.Uint64(d[off : off+8]))
	}

	idxOff := indexRegionOffset(n128)
	for i := range h.Index {
		off := idxOff + uint64(i)*IndexEntryBytes
		h.Index[i] = binary.LittleEndian.Uint64(d[off : off+8])
	}
	return h, nil
}

// SplitSignedID separates the CLI-facing signed identifier convention
// (negative sign means "store as deprecated") from the 48-bit unsigned id
// field the meta entry actually carries, per spec.md §4.5's make contract.
func SplitSignedID(signedID int64) (id uint64, deprecated bool, err error) {
	deprecated = signedID < 0
	abs := signedID
	if deprecated {
		abs = -abs
	}
	if abs < 0 || uint64(abs) > MaxID {
		return 0, false, moc.NewError(moc.OutOfRange, "mocset id exceeds 48 bits", nil)
	}
	return uint64(abs), deprecated, nil
}

// RangeWidth picks the on-disk range-pair width for a MOC stored at the
// given depth: u32 for depth <= 13, u64 otherwise, per spec.md §3.5.
func RangeWidth(depth uint8) int {
	if depth <= 13 {
		return 4
	}
	return 8
}
