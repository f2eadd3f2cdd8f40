package moc

import (
	"fmt"
	"strconv"
	"strings"
)

// ToASCII renders an IVOA ASCII MOC string: "d/i1 i2-i3 ..." with a new
// "d/" prefix whenever the depth changes, per spec.md §6.1. Consecutive
// cell indices at the same depth are compressed into an inclusive
// "lo-hi" range; isolated indices are written bare.
func ToASCII[T Idx](m RangeMOC[T]) string {
	cells := m.Cells()
	byDepth := map[uint8][]uint64{}
	var depths []uint8
	for _, c := range cells {
		if _, ok := byDepth[c.Depth]; !ok {
			depths = append(depths, c.Depth)
		}
		byDepth[c.Depth] = append(byDepth[c.Depth], c.Idx)
	}
	sortU8(depths)

	var sb strings.Builder
	for di, d := range depths {
		idxs := byDepth[d]
		sortU64(idxs)
		if di > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d/", d)
		writeRuns(&sb, idxs)
	}
	return sb.String()
}

func writeRuns(sb *strings.Builder, idxs []uint64) {
	i := 0
	first := true
	for i < len(idxs) {
		j := i
		for j+1 < len(idxs) && idxs[j+1] == idxs[j]+1 {
			j++
		}
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		if j == i {
			fmt.Fprintf(sb, "%d", idxs[i])
		} else {
			fmt.Fprintf(sb, "%d-%d", idxs[i], idxs[j])
		}
		i = j + 1
	}
}

// FromASCII parses an IVOA ASCII MOC string back into cells at depthMax,
// per spec.md §6.1/§8's ASCII round-trip property.
func FromASCII[T Idx](q Quantity, depthMax uint8, s string) (RangeMOC[T], error) {
	var cells []Cell
	var depth uint8
	haveDepth := false

	for _, tok := range strings.Fields(s) {
		rest := tok
		if slash := strings.IndexByte(tok, '/'); slash >= 0 {
			d, err := strconv.ParseUint(tok[:slash], 10, 8)
			if err != nil {
				return RangeMOC[T]{}, NewError(FormatError, "bad ASCII depth prefix: "+tok, err)
			}
			depth = uint8(d)
			haveDepth = true
			rest = tok[slash+1:]
		} else if !haveDepth {
			return RangeMOC[T]{}, NewError(FormatError, "ASCII index with no preceding depth: "+tok, nil)
		}
		if rest == "" {
			continue
		}
		lo, hi, err := parseRun(rest)
		if err != nil {
			return RangeMOC[T]{}, err
		}
		for idx := lo; idx <= hi; idx++ {
			cells = append(cells, Cell{Depth: depth, Idx: idx})
			if idx == hi {
				break // guards against hi == ^uint64(0) wraparound
			}
		}
	}
	return FromCells[T](q, depthMax, cells, 64), nil
}

func parseRun(s string) (uint64, uint64, error) {
	if dash := strings.IndexByte(s, '-'); dash > 0 {
		lo, err := strconv.ParseUint(s[:dash], 10, 64)
		if err != nil {
			return 0, 0, NewError(FormatError, "bad ASCII run: "+s, err)
		}
		hi, err := strconv.ParseUint(s[dash+1:], 10, 64)
		if err != nil {
			return 0, 0, NewError(FormatError, "bad ASCII run: "+s, err)
		}
		return lo, hi, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, 0, NewError(FormatError, "bad ASCII index: "+s, err)
	}
	return v, v, nil
}

// ToASCII2 renders a 2-D ST-MOC/SF-MOC ASCII string: one "t<depth/run> |
// s<ascii>" line per Elem2 row, per spec.md §6.1's "2-D form separates the
// two dims with s/t markers". The D1 side is always a single depth/run
// token, since an Elem2's D1 is already one contiguous range expressed in
// depth_max1 units; the D2 side reuses the ordinary IVOA depth-grouped
// rendering from ToASCII since a row's D2 is a real, possibly multi-depth,
// MOC. Rows are separated by newlines and each row's t and s sides by "|",
// so a D2 side spanning several depth groups can't be mistaken for the
// start of the next row.
func ToASCII2[T1, T2 Idx](m RangeMOC2[T1, T2]) string {
	var sb strings.Builder
	for i, e := range m.Elems {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteByte('t')
		sb.WriteString(formatDepthRun(m.DepthMax1, uint64(e.D1.Lo), uint64(e.D1.Hi)))
		sb.WriteString(" | s")
		sb.WriteString(ToASCII(RangeMOC[T2]{Q: m.Q2, DepthMax: m.DepthMax2, Ranges: e.D2}))
	}
	return sb.String()
}

// FromASCII2 parses the ToASCII2 form back into a RangeMOC2, per spec.md
// §8's ASCII round-trip property extended to the 2-D form.
func FromASCII2[T1, T2 Idx](q1, q2 Quantity, depthMax1, depthMax2 uint8, s string) (RangeMOC2[T1, T2], error) {
	var rows []Elem2[T1, T2]
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			return RangeMOC2[T1, T2]{}, NewError(FormatError, "2-D ASCII row missing '|' separator: "+line, nil)
		}
		tTok := strings.TrimSpace(parts[0])
		sTok := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(tTok, "t") {
			return RangeMOC2[T1, T2]{}, NewError(FormatError, "2-D ASCII row missing 't' marker: "+line, nil)
		}
		if !strings.HasPrefix(sTok, "s") {
			return RangeMOC2[T1, T2]{}, NewError(FormatError, "2-D ASCII row missing 's' marker: "+line, nil)
		}
		depth, lo, hi, err := parseDepthRun(tTok[1:])
		if err != nil {
			return RangeMOC2[T1, T2]{}, err
		}
		if depth != depthMax1 {
			return RangeMOC2[T1, T2]{}, NewError(BadInvariant, "2-D ASCII row t-depth does not match depth_max1", nil)
		}
		d2, err := FromASCII[T2](q2, depthMax2, sTok[1:])
		if err != nil {
			return RangeMOC2[T1, T2]{}, err
		}
		rows = append(rows, Elem2[T1, T2]{D1: Range[T1]{T1(lo), T1(hi)}, D2: d2.Ranges})
	}
	return newRangeMOC2(q1, q2, depthMax1, depthMax2, rows), nil
}

// formatDepthRun renders the half-open [lo, hi) span at depth as a single
// IVOA depth/run token, e.g. "10/5-8" or "10/5" for a one-wide span.
func formatDepthRun(depth uint8, lo, hi uint64) string {
	if hi == lo+1 {
		return fmt.Sprintf("%d/%d", depth, lo)
	}
	return fmt.Sprintf("%d/%d-%d", depth, lo, hi-1)
}

// parseDepthRun parses a single "depth/lo[-hi]" token into a half-open
// [lo, hi) span at depth.
func parseDepthRun(tok string) (depth uint8, lo, hi uint64, err error) {
	slash := strings.IndexByte(tok, '/')
	if slash < 0 {
		return 0, 0, 0, NewError(FormatError, "missing depth prefix: "+tok, nil)
	}
	d, err := strconv.ParseUint(tok[:slash], 10, 8)
	if err != nil {
		return 0, 0, 0, NewError(FormatError, "bad depth prefix: "+tok, err)
	}
	incLo, incHi, err := parseRun(tok[slash+1:])
	if err != nil {
		return 0, 0, 0, err
	}
	return uint8(d), incLo, incHi + 1, nil
}

func sortU8(s []uint8) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func sortU64(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
