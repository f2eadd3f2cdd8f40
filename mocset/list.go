package mocset

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// ListEntry is one printable row of a mocset list, per spec.md §4.5's
// "(id, status, depth, n_ranges, byte_range)" contract.
type ListEntry struct {
	Slot      int
	ID        uint64
	Status    Status
	Depth     uint8
	NRanges   int
	ByteStart uint64
	ByteEnd   uint64
}

// List collects a printable row for every non-void slot in the file.
func List(path string) ([]ListEntry, error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	hdr, err := store.Header()
	if err != nil {
		return nil, err
	}

	var rows []ListEntry
	for i, m := range hdr.Meta {
		if m.Status == StatusVoid {
			continue
		}
		width := RangeWidth(m.Depth)
		nRanges := int((hdr.Index[i+1] - hdr.Index[i]) / uint64(2*width))
		rows = append(rows, ListEntry{
			Slot:      i,
			ID:        m.ID,
			Status:    m.Status,
			Depth:     m.Depth,
			NRanges:   nRanges,
			ByteStart: hdr.Index[i],
			ByteEnd:   hdr.Index[i+1],
		})
	}
	return rows, nil
}

// WriteList prints rows in the teacher's tabular archive-info style, with
// byte counts rendered via go-humanize.
func WriteList(w io.Writer, rows []ListEntry) {
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\tdepth=%d\tranges=%d\tbytes=%s\n",
			r.ID, r.Status, r.Depth, r.NRanges, humanize.Bytes(r.ByteEnd-r.ByteStart))
	}
}
