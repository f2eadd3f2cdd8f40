package mocset

import (
	"encoding/binary"
	"os"

	"github.com/moclib/go-moc/moc"
)

// allowedTransition reports whether from -> to is one of the transitions
// spec.md §4.5 permits: valid<->deprecated, {valid,deprecated}->removed.
// A removed slot is terminal and is never reinstated.
func allowedTransition(from, to Status) bool {
	switch {
	case from == to:
		return true
	case from == StatusValid && to == StatusDeprecated:
		return true
	case from == StatusDeprecated && to == StatusValid:
		return true
	case (from == StatusValid || from == StatusDeprecated) && to == StatusRemoved:
		return true
	default:
		return false
	}
}

// ChangeStatus rewrites the meta entries for the given ids to newStatus,
// taking the writer lock for the duration. An id not found, or whose
// current status cannot legally move to newStatus, aborts the whole call
// without writing anything — per the teacher's in-place rewrite pattern,
// reused here as "validate every id first, write second".
func ChangeStatus(path string, newStatus Status, ids []uint64) error {
	unlock, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return moc.NewError(moc.IoError, "opening mocset file for chgstatus", err)
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

	want := map[uint64]bool{}
	for _, id := range ids {
		want[id] = true
	}

	slots := make([]int, 0, len(ids))
	for i, m := range hdr.Meta {
		if m.Status == StatusVoid || !want[m.ID] {
			continue
		}
		if !allowedTransition(m.Status, newStatus) {
			return moc.NewError(moc.BadInvariant, "mocset status transition not permitted", nil)
		}
		slots = append(slots, i)
		delete(want, m.ID)
	}
	if len(want) > 0 {
		return moc.NewError(moc.NotFound, "mocset chgstatus referenced an id that was not found", nil)
	}

	for _, slot := range slots {
		m := hdr.Meta[slot]
		m.Status = newStatus
		off := metaRegionOffset() + uint64(slot)*MetaEntryBytes
		if err := pwriteUint64(f, off, EncodeMetaEntry(m)); err != nil {
			return moc.NewError(moc.IoError, "writing mocset meta entry", err)
		}
	}
	return f.Sync()
}
