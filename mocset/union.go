package mocset

import (
	"github.com/schollz/progressbar/v3"

	"github.com/moclib/go-moc/moc"
)

// UnionFilter selects which mocset slots Union folds in.
type UnionFilter struct {
	IncludeDeprecated bool
	IDs               []uint64 // nil/empty means "all matching slots"
}

func (f UnionFilter) matches(m MetaEntry) bool {
	if m.Status == StatusVoid || m.Status == StatusRemoved {
		return false
	}
	if m.Status == StatusDeprecated && !f.IncludeDeprecated {
		return false
	}
	if len(f.IDs) == 0 {
		return true
	}
	for _, id := range f.IDs {
		if id == m.ID {
			return true
		}
	}
	return false
}

// Union folds every slot matching filter into a single RangeMOC[uint64]
// at targetDepth, via moc.KWayOr, per spec.md §4.1.1/§4.5. Each slot is
// first re-expressed as a width-independent cell list (Cell{Depth,Idx}
// is the same regardless of the slot's native u32/u64 storage width)
// then rebuilt at targetDepth, so slots stored at different widths
// combine correctly — grounded on the teacher's Cluster whole-archive
// fold shape.
func Union(path string, q moc.Quantity, targetDepth uint8, filter UnionFilter) (moc.RangeMOC[uint64], error) {
	store, err := Open(path)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	defer store.Close()

	hdr, err := store.Header()
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}

	var perMOC []moc.Ranges[uint64]
	bar := progressbar.Default(int64(len(hdr.Meta)))
	for i, m := range hdr.Meta {
		bar.Add(1)
		if !filter.matches(m) {
			continue
		}
		raw, err := store.SlotBytes(i)
		if err != nil {
			return moc.RangeMOC[uint64]{}, err
		}

		var cells []moc.Cell
		if RangeWidth(m.Depth) == 4 {
			cells = moc.RangeMOC[uint32]{Q: q, DepthMax: m.Depth, Ranges: moc.Decode[uint32](raw)}.Cells()
		} else {
			cells = moc.RangeMOC[uint64]{Q: q, DepthMax: m.Depth, Ranges: moc.Decode[uint64](raw)}.Cells()
		}

		b := moc.NewBuilder[uint64](q, targetDepth, 64)
		for _, c := range cells {
			b.PushCell(c.Depth, c.Idx)
		}
		perMOC = append(perMOC, moc.Degrade[uint64](b.Finalize(), q, targetDepth))
	}

	return moc.RangeMOC[uint64]{Q: q, DepthMax: targetDepth, Ranges: moc.KWayOr(perMOC)}, nil
}
