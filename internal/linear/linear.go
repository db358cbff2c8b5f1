// Package linear provides sparse regularized logistic regression for the
// vocabulary reduction and classification stages.
//
// Two solvers are exposed: an L1-penalized proximal-gradient path solver used
// for sparse term selection, and an L2-penalized fit used for the final
// classifier. Both operate on the same sparse problem representation. Labels
// are handled internally as -1/+1.
package linear

import (
	"math"
)

// Feature is one non-zero entry of a sparse example row.
type Feature struct {
	Index int
	Value float64
}

// RowSource is the capability a matrix must provide to be turned into a
// Problem: dimensions and sparse row access.
type RowSource interface {
	Rows() int
	Cols() int
	Row(i int) (cols []int, vals []float64)
}

// Problem is a labeled sparse dataset.
type Problem struct {
	N int // number of feature columns
	X [][]Feature
	Y []float64 // -1 or +1 per row
}

// NewProblem copies a row source and binary 0/1 labels into solver form.
// len(y) must equal src.Rows().
func NewProblem(src RowSource, y []int) *Problem {
	p := &Problem{
		N: src.Cols(),
		X: make([][]Feature, src.Rows()),
		Y: make([]float64, len(y)),
	}
	for i := 0; i < src.Rows(); i++ {
		cols, vals := src.Row(i)
		row := make([]Feature, len(cols))
		for k := range cols {
			row[k] = Feature{Index: cols[k], Value: vals[k]}
		}
		p.X[i] = row
	}
	for i, label := range y {
		if label > 0 {
			p.Y[i] = 1
		} else {
			p.Y[i] = -1
		}
	}
	return p
}

// Subset returns a problem containing the given rows, in the given order.
// Feature rows are shared with the receiver, not copied.
func (p *Problem) Subset(rows []int) *Problem {
	sub := &Problem{
		N: p.N,
		X: make([][]Feature, len(rows)),
		Y: make([]float64, len(rows)),
	}
	for k, i := range rows {
		sub.X[k] = p.X[i]
		sub.Y[k] = p.Y[i]
	}
	return sub
}

// Model is a fitted logistic regression: a weight per feature column plus an
// unpenalized intercept. Read-only after fitting.
type Model struct {
	Weights []float64
	Bias    float64
}

// Dot returns the linear score of a sparse row.
func (m *Model) Dot(row []Feature) float64 {
	z := m.Bias
	for _, f := range row {
		z += m.Weights[f.Index] * f.Value
	}
	return z
}

// Predict returns the probability of the positive class for a sparse row.
func (m *Model) Predict(row []Feature) float64 {
	return sigmoid(m.Dot(row))
}

// PredictSparse returns the positive-class probability for a row given as
// parallel column/value slices, avoiding a Feature conversion.
func (m *Model) PredictSparse(cols []int, vals []float64) float64 {
	z := m.Bias
	for k, j := range cols {
		z += m.Weights[j] * vals[k]
	}
	return sigmoid(z)
}

// ActiveCount returns the number of non-zero weights.
func (m *Model) ActiveCount() int {
	n := 0
	for _, w := range m.Weights {
		if w != 0 {
			n++
		}
	}
	return n
}

// MeanDeviance returns the average binomial deviance (-2 * mean log
// likelihood) of the model on p. Lower is better.
func (m *Model) MeanDeviance(p *Problem) float64 {
	if len(p.X) == 0 {
		return 0
	}
	var total float64
	for i, row := range p.X {
		// log(1 + exp(-y*z)) evaluated stably
		yz := p.Y[i] * m.Dot(row)
		total += logistLoss(yz)
	}
	return 2 * total / float64(len(p.X))
}

// logistLoss computes log(1+exp(-yz)) without overflow for large |yz|.
func logistLoss(yz float64) float64 {
	if yz > 0 {
		return math.Log1p(math.Exp(-yz))
	}
	return -yz + math.Log1p(math.Exp(yz))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
