package termmatrix

import (
	"log/slog"
	"sort"
)

// Conform projects the matrix onto a target ordered vocabulary: columns whose
// term is absent from the target are dropped, target terms absent from the
// matrix become zero columns, and all columns are reordered to match the
// target exactly. Row count and order are unchanged.
//
// Any two matrices conformed to the same target are column-compatible by
// construction, and conforming twice to the same target is a no-op.
func (m *Matrix) Conform(target []string) *Matrix {
	out := &Matrix{
		terms:    append([]string(nil), target...),
		index:    make(map[string]int, len(target)),
		rowStart: make([]int, 1, m.Rows()+1),
	}
	for j, t := range target {
		out.index[t] = j
	}

	// old column -> new column, -1 for dropped
	remap := make([]int, m.Cols())
	for j, t := range m.terms {
		if nj, ok := out.index[t]; ok {
			remap[j] = nj
		} else {
			remap[j] = -1
		}
	}

	type entry struct {
		col int
		val float64
	}
	row := make([]entry, 0, 64)
	for i := 0; i < m.Rows(); i++ {
		cols, vals := m.Row(i)
		row = row[:0]
		for k, j := range cols {
			if nj := remap[j]; nj >= 0 && vals[k] != 0 {
				row = append(row, entry{nj, vals[k]})
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
		for _, e := range row {
			out.colIdx = append(out.colIdx, e.col)
			out.vals = append(out.vals, e.val)
		}
		out.rowStart = append(out.rowStart, len(out.vals))
	}

	slog.Debug("matrix conformed", "fromCols", m.Cols(), "toCols", len(target))
	return out
}
