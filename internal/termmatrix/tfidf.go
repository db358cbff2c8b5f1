package termmatrix

import (
	"log/slog"
	"math"
)

// TFIDF reweights a count matrix: term frequency is the count divided by the
// row total, inverse document frequency is ln(N/df) over the matrix's rows.
// Columns that appear in no document keep zero weight. The receiver is not
// modified.
func (m *Matrix) TFIDF() *Matrix {
	n := m.Rows()
	df := m.columnDocFreq()

	idf := make([]float64, m.Cols())
	for j, d := range df {
		if d > 0 {
			idf[j] = math.Log(float64(n) / float64(d))
		}
	}

	out := &Matrix{
		terms:    m.terms,
		index:    m.index,
		rowStart: append([]int(nil), m.rowStart...),
		colIdx:   append([]int(nil), m.colIdx...),
		vals:     make([]float64, len(m.vals)),
	}

	for i := 0; i < n; i++ {
		lo, hi := m.rowStart[i], m.rowStart[i+1]
		var total float64
		for _, v := range m.vals[lo:hi] {
			total += v
		}
		if total == 0 {
			continue
		}
		for k := lo; k < hi; k++ {
			tf := m.vals[k] / total
			out.vals[k] = tf * idf[m.colIdx[k]]
		}
	}

	slog.Debug("TF-IDF weighting applied", "rows", n, "cols", m.Cols())
	return out
}
