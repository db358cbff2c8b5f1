// Package train fits the final ridge logistic classifier with k-fold
// cross-validated penalty selection.
package train

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/wjonasreger/text-classification-interpretation/internal/linear"
	"github.com/wjonasreger/text-classification-interpretation/internal/termmatrix"
)

// ErrColumnMismatch reports a scoring matrix whose column set or order does
// not match the classifier's vocabulary. Callers must conform the matrix to
// the classifier's terms before scoring.
var ErrColumnMismatch = errors.New("matrix columns do not match classifier vocabulary")

// Config controls cross-validated training.
type Config struct {
	Folds   int
	Lambdas []float64 // ridge penalties to search
	Tol     float64
	MaxIter int
	Seed    int64 // fold assignment seed
}

// DefaultConfig returns the standard training settings: 5 folds over a
// log-spaced penalty grid.
func DefaultConfig() Config {
	return Config{
		Folds:   5,
		Lambdas: []float64{10, 1, 0.1, 0.01, 0.001, 0.0001},
		Tol:     1e-5,
		MaxIter: 1000,
		Seed:    1,
	}
}

// Classifier is a trained ridge logistic model bound to one vocabulary and
// one penalty. Read-only after Fit.
type Classifier struct {
	model  *linear.Model
	terms  []string
	Lambda float64
}

// Terms returns the vocabulary the classifier was trained on, in column
// order. The returned slice is a copy.
func (c *Classifier) Terms() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Weight returns the fitted coefficient for column j.
func (c *Classifier) Weight(j int) float64 { return c.model.Weights[j] }

// Fit selects the ridge penalty by k-fold cross-validation on mean held-out
// deviance, then refits on every training row at the winning penalty.
// Penalties tying on deviance resolve to the first in cfg.Lambdas.
func Fit(m *termmatrix.Matrix, y []int, cfg Config) (*Classifier, error) {
	n := m.Rows()
	if n != len(y) {
		return nil, fmt.Errorf("matrix has %d rows but %d labels", n, len(y))
	}
	if len(cfg.Lambdas) == 0 {
		return nil, fmt.Errorf("no penalties to search")
	}
	folds := cfg.Folds
	if folds < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", folds)
	}
	if folds > n {
		slog.Debug("more folds than rows, using leave-one-out", "folds", folds, "rows", n)
		folds = n
	}

	prob := linear.NewProblem(m, y)

	// seeded permutation and contiguous fold boundaries over it
	perm := rand.New(rand.NewSource(cfg.Seed)).Perm(n)
	foldStart := make([]int, folds+1)
	for i := 0; i <= folds; i++ {
		foldStart[i] = i * n / folds
	}

	bestLambda := cfg.Lambdas[0]
	bestDeviance := 0.0
	for li, lambda := range cfg.Lambdas {
		var total float64
		for f := 0; f < folds; f++ {
			begin, end := foldStart[f], foldStart[f+1]
			heldOut := perm[begin:end]
			kept := make([]int, 0, n-(end-begin))
			kept = append(kept, perm[:begin]...)
			kept = append(kept, perm[end:]...)

			model := linear.FitRidge(prob.Subset(kept), lambda, cfg.Tol, cfg.MaxIter)
			held := prob.Subset(heldOut)
			total += model.MeanDeviance(held) * float64(len(heldOut))
		}
		avg := total / float64(n)
		slog.Debug("cross-validation fold sweep", "lambda", lambda, "meanDeviance", avg)
		if li == 0 || avg < bestDeviance {
			bestDeviance = avg
			bestLambda = lambda
		}
	}

	final := linear.FitRidge(prob, bestLambda, cfg.Tol, cfg.MaxIter)
	slog.Debug("classifier trained", "lambda", bestLambda, "meanDeviance", bestDeviance, "terms", m.Cols())

	return &Classifier{
		model:  final,
		terms:  m.Terms(),
		Lambda: bestLambda,
	}, nil
}

// Predict scores every row of a matrix conformed to the classifier's
// vocabulary, returning the probability of positive sentiment per document.
// A column set or order mismatch is fatal; conform first.
func (c *Classifier) Predict(m *termmatrix.Matrix) ([]float64, error) {
	if m.Cols() != len(c.terms) {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrColumnMismatch, m.Cols(), len(c.terms))
	}
	for j, term := range c.terms {
		if m.Term(j) != term {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrColumnMismatch, j, m.Term(j), term)
		}
	}

	probs := make([]float64, m.Rows())
	for i := range probs {
		cols, vals := m.Row(i)
		probs[i] = c.model.PredictSparse(cols, vals)
	}
	return probs, nil
}
