package mocset

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/moclib/go-moc/moc"
)

// QueryResult is one matching slot from Query: the stored id plus the
// fraction of that MOC's area/duration covered by the query region.
type QueryResult struct {
	ID       uint64
	Fraction float64
}

// toCommonDepth re-expresses a stored slot's raw bytes as a RangeMOC[uint64]
// degraded to depth, reusing the width-independent cell trick from union.go.
func toCommonDepth(q moc.Quantity, raw []byte, nativeDepth, depth uint8) moc.RangeMOC[uint64] {
	var cells []moc.Cell
	if RangeWidth(nativeDepth) == 4 {
		cells = moc.RangeMOC[uint32]{Q: q, DepthMax: nativeDepth, Ranges: moc.Decode[uint32](raw)}.Cells()
	} else {
		cells = moc.RangeMOC[uint64]{Q: q, DepthMax: nativeDepth, Ranges: moc.Decode[uint64](raw)}.Cells()
	}
	b := moc.NewBuilder[uint64](q, depth, 64)
	for _, c := range cells {
		b.PushCell(c.Depth, c.Idx)
	}
	return moc.RangeMOC[uint64]{Q: q, DepthMax: depth, Ranges: moc.Degrade[uint64](b.Finalize(), q, depth)}
}

// Query tests region (expressed at region.DepthMax) against every
// non-removed slot of path (deprecated slots only when includeDeprecated
// is set), reporting ids that intersect. Per spec.md §5, a parallelism > 1
// spawns a fixed-size errgroup worker pool over (meta, byte-range) pairs —
// each worker reads its own slot bytes out of the shared read-only mmap,
// so no synchronization is required; workers finish in no fixed order,
// matching the teacher's parallel block-transfer shape in extract.go.
// parallelism <= 1 runs sequentially and
// preserves slot order; the parallel path sorts by id afterwards purely
// for deterministic output, not because the spec requires ordering.
func Query(path string, region moc.RangeMOC[uint64], includeDeprecated bool, parallelism int) ([]QueryResult, error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	hdr, err := store.Header()
	if err != nil {
		return nil, err
	}

	type job struct {
		slot int
		m    MetaEntry
	}
	var jobs []job
	for i, m := range hdr.Meta {
		if m.Status == StatusVoid || m.Status == StatusRemoved {
			continue
		}
		if m.Status == StatusDeprecated && !includeDeprecated {
			continue
		}
		jobs = append(jobs, job{slot: i, m: m})
	}

	test := func(j job) (QueryResult, bool, error) {
		raw, err := store.SlotBytes(j.slot)
		if err != nil {
			return QueryResult{}, false, err
		}
		slotMOC := toCommonDepth(region.Q, raw, j.m.Depth, region.DepthMax)
		inter := moc.And[uint64](slotMOC.Ranges, region.Ranges)
		if inter.IsEmpty() {
			return QueryResult{}, false, nil
		}
		frac := rangesLength(inter) / rangesLength(slotMOC.Ranges)
		return QueryResult{ID: j.m.ID, Fraction: frac}, true, nil
	}

	if parallelism <= 1 {
		var results []QueryResult
		for _, j := range jobs {
			r, ok, err := test(j)
			if err != nil {
				return nil, err
			}
			if ok {
				results = append(results, r)
			}
		}
		return results, nil
	}

	var mu sync.Mutex
	var results []QueryResult
	g := new(errgroup.Group)
	sem := make(chan struct{}, parallelism)
	for _, j := range jobs {
		j := j
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			r, ok, err := test(j)
			if err != nil {
				return err
			}
			if ok {
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, k int) bool { return results[i].ID < results[k].ID })
	return results, nil
}

func rangesLength(rs moc.Ranges[uint64]) float64 {
	total := 0.0
	for i := 0; i < rs.Len(); i++ {
		lo, hi := rs.At(i)
		total += float64(hi - lo)
	}
	return total
}
