// Package reduce shrinks a term matrix to a small interpretable vocabulary.
//
// Two reductions are implemented: sparse selection, which keeps the terms an
// L1-penalized logistic model assigns non-zero weight at the largest model
// size under a target budget, and the interpretability filter, which ranks
// terms by a two-sample class-separation statistic.
package reduce

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/wjonasreger/text-classification-interpretation/internal/linear"
	"github.com/wjonasreger/text-classification-interpretation/internal/termmatrix"
)

// ErrNoFeasiblePenalty reports that no penalty on the regularization path
// produced an active term count at or below the requested target.
var ErrNoFeasiblePenalty = errors.New("no penalty on the path meets the target term count")

// SparseConfig controls the L1 path fit behind sparse term selection.
type SparseConfig struct {
	PathLength int     // number of penalties on the path
	PathRatio  float64 // weakest penalty as a fraction of the critical penalty
	Tol        float64
	MaxIter    int
}

// DefaultSparseConfig returns the standard path settings.
func DefaultSparseConfig() SparseConfig {
	return SparseConfig{
		PathLength: 50,
		PathRatio:  1e-3,
		Tol:        1e-5,
		MaxIter:    1000,
	}
}

// SelectTerms fits an L1 regularization path on the matrix and labels, then
// picks the penalty whose active term count is the largest value not
// exceeding target. When several penalties tie at that count, the first one
// encountered scanning from the weakest penalty to the strongest wins, so the
// least-penalized model of that size is kept. The selected terms are returned
// in the matrix's column order.
func SelectTerms(m *termmatrix.Matrix, y []int, target int, cfg SparseConfig) ([]string, error) {
	if m.Rows() != len(y) {
		return nil, fmt.Errorf("matrix has %d rows but %d labels", m.Rows(), len(y))
	}
	if target < 0 {
		return nil, fmt.Errorf("invalid target term count %d", target)
	}

	prob := linear.NewProblem(m, y)
	lambdas := linear.DefaultLambdas(prob, cfg.PathLength, cfg.PathRatio)
	steps := linear.LassoPath(prob, lambdas, cfg.Tol, cfg.MaxIter)
	if len(steps) == 0 {
		return nil, ErrNoFeasiblePenalty
	}

	// largest active count under budget, then its first occurrence from the
	// weakest penalty
	best := -1
	for _, s := range steps {
		if s.Active <= target && s.Active > best {
			best = s.Active
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: target %d", ErrNoFeasiblePenalty, target)
	}

	var chosen *linear.PathStep
	for i := range steps {
		if steps[i].Active == best {
			chosen = &steps[i]
			break
		}
	}

	var terms []string
	for j, w := range chosen.Model.Weights {
		if w != 0 {
			terms = append(terms, m.Term(j))
		}
	}

	slog.Debug("sparse selection complete",
		"target", target,
		"selected", len(terms),
		"penalty", chosen.Lambda)
	return terms, nil
}
