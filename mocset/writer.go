package mocset

import (
	"encoding/binary"
	"os"

	"github.com/moclib/go-moc/moc"
)

// maxStorableDepth bounds the depth field mocset will accept for any
// entry, regardless of which quantity (space/time/frequency) it belongs
// to — the file format itself is quantity-agnostic (§3.5 stores only
// flag/depth/id), so this is the widest MaxDepth across all three
// quantities (Time's 61, per qty.go) rather than a per-quantity check,
// which is the caller's responsibility.
const maxStorableDepth = 61

// Entry is one MOC to store: a caller-chosen signed identifier (negative
// sign requests the initial status be deprecated, per spec.md §4.5), its
// depth_max, and its raw little-endian (lo,hi) range-pair bytes as
// produced by moc.Encode.
type Entry struct {
	SignedID int64
	Depth    uint8
	Data     []byte
}

// Make creates a fresh MocSet file at path sized for n128, populating it
// with entries in slot order 0..len(entries)-1. Rejects duplicate ids and
// lists larger than Capacity(n128), per spec.md §4.5.
func Make(path string, n128 uint64, entries []Entry) error {
	cap := Capacity(n128)
	if uint64(len(entries)) > cap {
		return moc.NewError(moc.Capacity, "mocset entry count exceeds capacity", nil)
	}

	seen := map[uint64]bool{}
	hdr := NewHeader(n128)
	var data []byte
	offset := uint64(0)
	for i, e := range entries {
		id, deprecated, err := SplitSignedID(e.SignedID)
		if err != nil {
			return err
		}
		if seen[id] {
			return moc.NewError(moc.Duplicate, "duplicate mocset id in make list", nil)
		}
		seen[id] = true
		if e.Depth > maxStorableDepth {
			return moc.NewError(moc.OutOfRange, "mocset entry depth exceeds the storable maximum", nil)
		}

		status := StatusValid
		if deprecated {
			status = StatusDeprecated
		}
		hdr.Meta[i] = MetaEntry{Status: status, Depth: e.Depth, ID: id}
		data = append(data, e.Data...)
		offset += uint64(len(e.Data))
		hdr.Index[i+1] = offset
	}

	buf := SerializeHeader(hdr)
	buf = append(buf, data...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return moc.NewError(moc.IoError, "writing mocset temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return moc.NewError(moc.IoError, "renaming mocset temp file into place", err)
	}
	return nil
}

// Append adds one more MOC to an existing MocSet file, writing the
// slot's data, then its index entry, then its meta entry — in that
// order — per spec.md §4.5's critical write-order invariant, so a
// lock-free reader never observes a half-written slot.
func Append(path string, e Entry) error {
	unlock, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer unlock()

	id, deprecated, err := SplitSignedID(e.SignedID)
	if err != nil {
		return err
	}
	if e.Depth > maxStorableDepth {
		return moc.NewError(moc.OutOfRange, "mocset entry depth exceeds the storable maximum", nil)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return moc.NewError(moc.IoError, "opening mocset file for append", err)
	}
	defer f.Close()

	hdrBuf := make([]byte, n128Bytes)
	if _, err := f.ReadAt(hdrBuf, 0); err != nil {
		return moc.NewError(moc.IoError, "reading mocset n128 field", err)
	}
	n128 := binary.LittleEndian.Uint64(hdrBuf)
	fullHdrBuf := make([]byte, HeaderLen(n128))
	if _, err := f.ReadAt(fullHdrBuf, 0); err != nil {
		return moc.NewError(moc.IoError, "reading mocset header", err)
	}
	hdr, err := DeserializeHeader(fullHdrBuf)
	if err != nil {
		return err
	}

	slot := -1
	for i, m := range hdr.Meta {
		if m.Status == StatusVoid {
			slot = i
			break
		}
		if m.ID == id && (m.Status == StatusValid || m.Status == StatusDeprecated) {
			return moc.NewError(moc.Duplicate, "mocset id already present", nil)
		}
	}
	if slot == -1 {
		return moc.NewError(moc.Capacity, "mocset file is full", nil)
	}

	dataBase := DataRegionOffset(n128)
	writeOffset := dataBase + hdr.Index[slot]
	if _, err := f.WriteAt(e.Data, int64(writeOffset)); err != nil {
		return moc.NewError(moc.IoError, "writing mocset slot data", err)
	}
	if err := f.Sync(); err != nil {
		return moc.NewError(moc.IoError, "fsyncing mocset data", err)
	}

	newEnd := hdr.Index[slot] + uint64(len(e.Data))
	idxEntryOffset := indexRegionOffset(n128) + uint64(slot+1)*IndexEntryBytes
	if err := pwriteUint64(f, idxEntryOffset, newEnd); err != nil {
		return moc.NewError(moc.IoError, "writing mocset index entry", err)
	}
	if err := f.Sync(); err != nil {
		return moc.NewError(moc.IoError, "fsyncing mocset index", err)
	}

	status := StatusValid
	if deprecated {
		status = StatusDeprecated
	}
	metaEntryOffset := metaRegionOffset() + uint64(slot)*MetaEntryBytes
	metaVal := EncodeMetaEntry(MetaEntry{Status: status, Depth: e.Depth, ID: id})
	if err := pwriteUint64(f, metaEntryOffset, metaVal); err != nil {
		return moc.NewError(moc.IoError, "writing mocset meta entry", err)
	}
	return f.Sync()
}

func pwriteUint64(f *os.File, offset uint64, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := f.WriteAt(b[:], int64(offset))
	return err
}
