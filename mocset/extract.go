package mocset

import (
	"github.com/moclib/go-moc/moc"
)

// ExtractRaw returns the raw little-endian (lo,hi) range-pair bytes and
// depth_max stored for id, without decoding them — the width (u32 vs
// u64) is implied by depth via RangeWidth, per spec.md §3.5.
func ExtractRaw(path string, id uint64) (data []byte, depth uint8, err error) {
	store, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer store.Close()

	hdr, err := store.Header()
	if err != nil {
		return nil, 0, err
	}
	for i, m := range hdr.Meta {
		if m.Status == StatusRemoved || m.Status == StatusVoid || m.ID != id {
			continue
		}
		raw, err := store.SlotBytes(i)
		if err != nil {
			return nil, 0, err
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		return cp, m.Depth, nil
	}
	return nil, 0, moc.NewError(moc.NotFound, "mocset id not found", nil)
}

// ExtractU32 reads id back out as a RangeMOC[uint32]; errors if id's
// stored depth implies the wide (u64) range encoding instead.
func ExtractU32(path string, id uint64, q moc.Quantity) (moc.RangeMOC[uint32], error) {
	data, depth, err := ExtractRaw(path, id)
	if err != nil {
		return moc.RangeMOC[uint32]{}, err
	}
	if RangeWidth(depth) != 4 {
		return moc.RangeMOC[uint32]{}, moc.NewError(moc.BadInvariant, "mocset entry is stored at u64 width, not u32", nil)
	}
	return moc.RangeMOC[uint32]{Q: q, DepthMax: depth, Ranges: moc.Decode[uint32](data)}, nil
}

// ExtractU64 reads id back out as a RangeMOC[uint64]; errors if id's
// stored depth implies the narrow (u32) range encoding instead.
func ExtractU64(path string, id uint64, q moc.Quantity) (moc.RangeMOC[uint64], error) {
	data, depth, err := ExtractRaw(path, id)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	if RangeWidth(depth) != 8 {
		return moc.RangeMOC[uint64]{}, moc.NewError(moc.BadInvariant, "mocset entry is stored at u32 width, not u64", nil)
	}
	return moc.RangeMOC[uint64]{Q: q, DepthMax: depth, Ranges: moc.Decode[uint64](data)}, nil
}
