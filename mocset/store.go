package mocset

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/moclib/go-moc/moc"
)

// Store is a read-only, mmap-backed view of a MocSet file. Per spec.md
// §5, readers take no lock: the write-order invariant in writer.go
// guarantees a meta entry never advertises a slot before its data and
// index entry are durable, so a concurrent mmap read always sees either
// the old or the fully-written new state.
type Store struct {
	file *os.File
	data []byte
	hdr  Header
}

// Open mmaps path read-only and parses its header.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, moc.NewError(moc.IoError, "opening mocset file", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, moc.NewError(moc.IoError, "stat mocset file", err)
	}
	if info.Size() < n128Bytes {
		f.Close()
		return nil, moc.NewError(moc.FormatError, "mocset file too small to hold a header", nil)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, moc.NewError(moc.IoError, "mmap mocset file", err)
	}

	hdr, err := DeserializeHeader(data)
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}

	return &Store{file: f, data: data, hdr: hdr}, nil
}

// Close unmaps and closes the backing file.
func (s *Store) Close() error {
	if err := unix.Munmap(s.data); err != nil {
		return moc.NewError(moc.IoError, "munmap mocset file", err)
	}
	return s.file.Close()
}

// Header returns the store's parsed header. Re-reads the live meta/index
// arrays out of the mmap so concurrent append/chgstatus by another
// process are observed on each call.
func (s *Store) Header() (Header, error) {
	return DeserializeHeader(s.data)
}

// SlotBytes returns the raw little-endian range-pair bytes for a slot,
// found via the CSR-style cumulative index: data[index[slot]:index[slot+1]).
func (s *Store) SlotBytes(slot int) ([]byte, error) {
	hdr, err := s.Header()
	if err != nil {
		return nil, err
	}
	if slot < 0 || slot >= len(hdr.Meta) {
		return nil, moc.NewError(moc.OutOfRange, "mocset slot index out of range", nil)
	}
	base := DataRegionOffset(hdr.N128)
	lo := base + hdr.Index[slot]
	hi := base + hdr.Index[slot+1]
	if hi < lo || hi > uint64(len(s.data)) {
		return nil, moc.NewError(moc.FormatError, "mocset slot index entries are inconsistent", nil)
	}
	return s.data[lo:hi], nil
}

// Slots iterates every non-void meta entry alongside its slot number.
func (s *Store) Slots() ([]int, []MetaEntry, error) {
	hdr, err := s.Header()
	if err != nil {
		return nil, nil, err
	}
	var slots []int
	var metas []MetaEntry
	for i, m := range hdr.Meta {
		if m.Status == StatusVoid {
			continue
		}
		slots = append(slots, i)
		metas = append(metas, m)
	}
	return slots, metas, nil
}

// Path returns the file path the store was opened from.
func (s *Store) Path() string { return s.file.Name() }
