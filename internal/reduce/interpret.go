package reduce

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Moments is the storage capability the interpretability filter needs from a
// term matrix: column labels and per-column moment statistics over a row
// subset. Keeping this an interface leaves the dense-versus-sparse choice to
// the matrix implementation.
type Moments interface {
	Rows() int
	Cols() int
	Term(j int) string
	ColumnMoments(rows []int) (means, variances []float64)
}

// TermStat is the two-sample separation statistic for one term.
//
// T follows IEEE semantics for the degenerate cases: when both in-class
// variances are zero it is NaN for equal class means (undefined, unranked)
// and infinite for differing means (maximal separation).
type TermStat struct {
	Term   string
	Col    int
	T      float64
	PosVar float64
	NegVar float64
}

// Statistics computes a Welch-style difference-of-means statistic per term
// column, comparing documents labeled positive against documents labeled
// negative.
func Statistics(m Moments, y []int) ([]TermStat, error) {
	if m.Rows() != len(y) {
		return nil, fmt.Errorf("matrix has %d rows but %d labels", m.Rows(), len(y))
	}

	var posRows, negRows []int
	for i, label := range y {
		if label > 0 {
			posRows = append(posRows, i)
		} else {
			negRows = append(negRows, i)
		}
	}

	posMean, posVar := m.ColumnMoments(posRows)
	negMean, negVar := m.ColumnMoments(negRows)
	nPos := float64(len(posRows))
	nNeg := float64(len(negRows))

	stats := make([]TermStat, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		se := math.Sqrt(posVar[j]/nPos + negVar[j]/nNeg)
		stats[j] = TermStat{
			Term:   m.Term(j),
			Col:    j,
			T:      (posMean[j] - negMean[j]) / se,
			PosVar: posVar[j],
			NegVar: negVar[j],
		}
	}
	return stats, nil
}

// Selection is the interpretability filter's output.
type Selection struct {
	Terms    []string // final vocabulary, original column order
	Positive []string // ranked top-K terms with a positive statistic
	Negative []string // ranked top-K terms with a negative statistic
	Rescued  []string // terms kept for zero variance within a class
}

// Filter keeps the topK terms by absolute statistic, then unions in every
// term whose variance is exactly zero within either class: such a term's
// presence is perfectly determined inside that class, which makes it
// maximally interpretable even when its statistic did not rank.
//
// NaN statistics are never ranked. Ties at the topK boundary break by
// original column order, first encountered wins. The rescue union is
// deliberately applied even to terms the ranking already kept; dropping the
// redundancy could silently lose degenerate terms whose statistic is NaN.
func Filter(stats []TermStat, topK int) Selection {
	ranked := make([]int, 0, len(stats))
	for i := range stats {
		if !math.IsNaN(stats[i].T) {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		ta := math.Abs(stats[ranked[a]].T)
		tb := math.Abs(stats[ranked[b]].T)
		if ta != tb {
			return ta > tb
		}
		return stats[ranked[a]].Col < stats[ranked[b]].Col
	})
	if topK > len(ranked) {
		topK = len(ranked)
	}
	if topK < 0 {
		topK = 0
	}
	top := ranked[:topK]

	keep := make(map[int]struct{}, len(top))
	var sel Selection
	for _, i := range top {
		keep[i] = struct{}{}
		switch {
		case stats[i].T > 0:
			sel.Positive = append(sel.Positive, stats[i].Term)
		case stats[i].T < 0:
			sel.Negative = append(sel.Negative, stats[i].Term)
		}
	}

	for i := range stats {
		if stats[i].PosVar == 0 || stats[i].NegVar == 0 {
			sel.Rescued = append(sel.Rescued, stats[i].Term)
			keep[i] = struct{}{}
		}
	}

	// emit the union in original column order
	cols := make([]int, 0, len(keep))
	for i := range keep {
		cols = append(cols, i)
	}
	sort.Ints(cols)
	for _, i := range cols {
		sel.Terms = append(sel.Terms, stats[i].Term)
	}

	slog.Debug("interpretability filter complete",
		"ranked", len(ranked),
		"topK", topK,
		"rescued", len(sel.Rescued),
		"selected", len(sel.Terms))
	return sel
}
