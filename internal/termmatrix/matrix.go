// Package termmatrix implements the document-by-term matrix backing the
// vocabulary reduction pipeline.
//
// Matrices are stored compressed-sparse-row: review vocabularies are large
// but each document touches a tiny fraction of the columns. Rows correspond
// 1:1 with documents in a fixed order and columns 1:1 with an ordered term
// snapshot. Matrices are never mutated after construction; every transform
// returns a fresh matrix.
package termmatrix

import (
	"log/slog"
	"sort"
)

// Matrix is an immutable sparse documents-by-terms matrix.
type Matrix struct {
	terms    []string
	index    map[string]int
	rowStart []int // len = rows+1
	colIdx   []int
	vals     []float64
}

// Build constructs a term-count matrix over vocabulary terms. Tokens absent
// from the vocabulary are ignored; duplicate tokens accumulate counts.
func Build(tokenized [][]string, terms []string) *Matrix {
	m := &Matrix{
		terms:    append([]string(nil), terms...),
		index:    make(map[string]int, len(terms)),
		rowStart: make([]int, 1, len(tokenized)+1),
	}
	for i, t := range m.terms {
		m.index[t] = i
	}

	counts := make(map[int]float64)
	for _, tokens := range tokenized {
		clear(counts)
		for _, t := range tokens {
			if j, ok := m.index[t]; ok {
				counts[j]++
			}
		}
		m.appendRow(counts)
	}

	slog.Debug("term matrix built", "rows", m.Rows(), "cols", m.Cols(), "nonzeros", len(m.vals))
	return m
}

// appendRow adds one row from a column->value map, keeping column indices
// sorted within the row.
func (m *Matrix) appendRow(entries map[int]float64) {
	cols := make([]int, 0, len(entries))
	for j, v := range entries {
		if v != 0 {
			cols = append(cols, j)
		}
	}
	sort.Ints(cols)
	for _, j := range cols {
		m.colIdx = append(m.colIdx, j)
		m.vals = append(m.vals, entries[j])
	}
	m.rowStart = append(m.rowStart, len(m.vals))
}

// Rows returns the number of document rows.
func (m *Matrix) Rows() int { return len(m.rowStart) - 1 }

// Cols returns the number of term columns.
func (m *Matrix) Cols() int { return len(m.terms) }

// Terms returns the column terms in order. The returned slice is a copy.
func (m *Matrix) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Term returns the term labeling column j.
func (m *Matrix) Term(j int) string { return m.terms[j] }

// Row returns the sparse entries of row i. The returned slices are views
// into the matrix and must not be modified.
func (m *Matrix) Row(i int) (cols []int, vals []float64) {
	lo, hi := m.rowStart[i], m.rowStart[i+1]
	return m.colIdx[lo:hi], m.vals[lo:hi]
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// RowSubset returns a new matrix containing the given rows, in the given
// order, over the same column set.
func (m *Matrix) RowSubset(rows []int) *Matrix {
	out := &Matrix{
		terms:    m.terms,
		index:    m.index,
		rowStart: make([]int, 1, len(rows)+1),
	}
	for _, i := range rows {
		cols, vals := m.Row(i)
		out.colIdx = append(out.colIdx, cols...)
		out.vals = append(out.vals, vals...)
		out.rowStart = append(out.rowStart, len(out.vals))
	}
	return out
}

// ColumnMoments computes the per-column mean and sample variance over the
// given row subset in a single pass over the subset's non-zero entries.
// Implicit zeros are accounted for without materializing them. With fewer
// than two rows every variance is zero.
func (m *Matrix) ColumnMoments(rows []int) (means, variances []float64) {
	nCols := m.Cols()
	means = make([]float64, nCols)
	variances = make([]float64, nCols)
	n := float64(len(rows))
	if n == 0 {
		return means, variances
	}

	sum := make([]float64, nCols)
	sumSq := make([]float64, nCols)
	for _, i := range rows {
		cols, vals := m.Row(i)
		for k, j := range cols {
			sum[j] += vals[k]
			sumSq[j] += vals[k] * vals[k]
		}
	}

	for j := 0; j < nCols; j++ {
		means[j] = sum[j] / n
		if n > 1 {
			// sample variance via the sum-of-squares identity; clamp tiny
			// negative values caused by cancellation
			v := (sumSq[j] - n*means[j]*means[j]) / (n - 1)
			if v < 0 {
				v = 0
			}
			variances[j] = v
		}
	}
	return means, variances
}

// columnDocFreq counts, per column, the number of rows with a non-zero entry.
func (m *Matrix) columnDocFreq() []int {
	df := make([]int, m.Cols())
	for _, j := range m.colIdx {
		df[j]++
	}
	return df
}
