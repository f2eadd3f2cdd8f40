package mocset

import (
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/moclib/go-moc/moc"
)

// Purge rewrites path into a compacted copy holding only valid/deprecated
// slots, optionally resized to newN128 (0 keeps the existing n128), then
// renames the compacted copy over the original — atomic from a reader's
// perspective, per spec.md §4.5/§5. Grounded on the teacher's resolve-
// into-tmpfile-then-rename Cluster shape.
func Purge(path string, newN128 uint64) error {
	unlock, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer unlock()

	store, err := Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	hdr, err := store.Header()
	if err != nil {
		return err
	}

	n128 := hdr.N128
	if newN128 != 0 {
		n128 = newN128
	}

	var kept []Entry
	bar := progressbar.Default(int64(len(hdr.Meta)))
	for i, m := range hdr.Meta {
		bar.Add(1)
		if m.Status != StatusValid && m.Status != StatusDeprecated {
			continue
		}
		data, err := store.SlotBytes(i)
		if err != nil {
			return err
		}
		signedID := int64(m.ID)
		if m.Status == StatusDeprecated {
			signedID = -signedID
		}
		cp := make([]byte, len(data))
		copy(cp, data)
		kept = append(kept, Entry{SignedID: signedID, Depth: m.Depth, Data: cp})
	}

	if uint64(len(kept)) > Capacity(n128) {
		return moc.NewError(moc.Capacity, "mocset purge target n128 is too small for the surviving entries", nil)
	}

	tmpPath := path + ".purge"
	if err := Make(tmpPath, n128, kept); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return moc.NewError(moc.IoError, "renaming purged mocset file into place", err)
	}
	return nil
}
