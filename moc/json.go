package moc

import (
	"encoding/json"
	"strconv"
)

// ToJSON renders the Aladin JSON MOC form: {"depth": [idx, ...], ...},
// per spec.md §6.1. Indices are listed individually (no range
// compression), matching Aladin's own json MOC export.
func ToJSON[T Idx](m RangeMOC[T]) ([]byte, error) {
	out := map[string][]uint64{}
	for _, c := range m.Cells() {
		key := strconv.Itoa(int(c.Depth))
		out[key] = append(out[key], c.Idx)
	}
	for k := range out {
		sortU64(out[k])
	}
	return json.Marshal(out)
}

// FromJSON parses an Aladin JSON MOC back into cells at depthMax, per
// spec.md §6.1/§8's JSON round-trip property.
func FromJSON[T Idx](q Quantity, depthMax uint8, data []byte) (RangeMOC[T], error) {
	var raw map[string][]uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return RangeMOC[T]{}, NewError(FormatError, "invalid Aladin JSON MOC", err)
	}
	var cells []Cell
	for k, idxs := range raw {
		d, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return RangeMOC[T]{}, NewError(FormatError, "invalid JSON depth key: "+k, err)
		}
		for _, idx := range idxs {
			cells = append(cells, Cell{Depth: uint8(d), Idx: idx})
		}
	}
	return FromCells[T](q, depthMax, cells, 64), nil
}
