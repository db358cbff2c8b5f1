package linear

import (
	"log/slog"
	"math"
	"sort"
)

// PathStep is one point on an L1 regularization path.
type PathStep struct {
	Lambda float64
	Model  Model
	Active int // non-zero weight count at this penalty
}

// DefaultLambdas generates a log-spaced penalty sequence for a problem,
// from the smallest penalty that zeroes every weight down to that value
// times ratio, count values in total. The sequence is returned strongest
// penalty first, which is also the fitting order.
func DefaultLambdas(p *Problem, count int, ratio float64) []float64 {
	n := float64(len(p.X))
	if n == 0 || count < 1 {
		return nil
	}

	// with all weights zero and the intercept at its optimum, the predicted
	// probability is the positive-class share; the largest gradient entry of
	// the unpenalized loss is the critical penalty
	var pos float64
	for _, y := range p.Y {
		if y > 0 {
			pos++
		}
	}
	pbar := pos / n

	grad := make([]float64, p.N)
	for i, row := range p.X {
		y01 := 0.0
		if p.Y[i] > 0 {
			y01 = 1
		}
		r := pbar - y01
		for _, f := range row {
			grad[f.Index] += r * f.Value
		}
	}
	lambdaMax := 0.0
	for _, g := range grad {
		if a := math.Abs(g) / n; a > lambdaMax {
			lambdaMax = a
		}
	}
	if lambdaMax == 0 {
		lambdaMax = 1e-3 // degenerate labels or all-zero features
	}

	lambdas := make([]float64, count)
	if count == 1 {
		lambdas[0] = lambdaMax
		return lambdas
	}
	logMax := math.Log(lambdaMax)
	logMin := math.Log(lambdaMax * ratio)
	for i := 0; i < count; i++ {
		frac := float64(i) / float64(count-1)
		lambdas[i] = math.Exp(logMax + frac*(logMin-logMax))
	}
	return lambdas
}

// LassoPath fits an L1-penalized logistic regression at every penalty in
// lambdas using proximal gradient descent with warm starts. Fitting runs from
// the strongest penalty to the weakest so each solution seeds the next; the
// returned steps are ordered weakest penalty first, matching the selection
// scan order of the reducers.
func LassoPath(p *Problem, lambdas []float64, tol float64, maxIter int) []PathStep {
	if len(p.X) == 0 || len(lambdas) == 0 {
		return nil
	}

	// fit strongest to weakest regardless of caller ordering
	descending := append([]float64(nil), lambdas...)
	sort.Sort(sort.Reverse(sort.Float64Slice(descending)))

	n := float64(len(p.X))
	step := 1 / lipschitz(p)

	w := make([]float64, p.N)
	bias := 0.0
	grad := make([]float64, p.N)

	steps := make([]PathStep, 0, len(descending))
	for _, lambda := range descending {
		for iter := 0; iter < maxIter; iter++ {
			// gradient of the average logistic loss at (w, bias)
			for j := range grad {
				grad[j] = 0
			}
			gradBias := 0.0
			for i, row := range p.X {
				z := bias
				for _, f := range row {
					z += w[f.Index] * f.Value
				}
				r := -p.Y[i] * sigmoid(-p.Y[i]*z)
				gradBias += r
				for _, f := range row {
					grad[f.Index] += r * f.Value
				}
			}

			// proximal step: gradient descent then soft-thresholding;
			// the intercept is never penalized
			maxDelta := 0.0
			for j := range w {
				next := softThreshold(w[j]-step*grad[j]/n, step*lambda)
				if d := math.Abs(next - w[j]); d > maxDelta {
					maxDelta = d
				}
				w[j] = next
			}
			nextBias := bias - step*gradBias/n
			if d := math.Abs(nextBias - bias); d > maxDelta {
				maxDelta = d
			}
			bias = nextBias

			if maxDelta < tol {
				break
			}
		}

		model := Model{Weights: append([]float64(nil), w...), Bias: bias}
		steps = append(steps, PathStep{
			Lambda: lambda,
			Model:  model,
			Active: model.ActiveCount(),
		})
	}

	// reverse to weakest-first for the selection scan
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	slog.Debug("lasso path fitted",
		"penalties", len(steps),
		"largestActive", steps[0].Active,
		"smallestActive", steps[len(steps)-1].Active)
	return steps
}

// lipschitz bounds the gradient Lipschitz constant of the average logistic
// loss, including the implicit all-ones intercept column.
func lipschitz(p *Problem) float64 {
	n := float64(len(p.X))
	sumSq := n // intercept column
	for _, row := range p.X {
		for _, f := range row {
			sumSq += f.Value * f.Value
		}
	}
	l := 0.25 * sumSq / n
	if l <= 0 {
		return 1
	}
	return l
}

// softThreshold is the proximal operator of the L1 penalty.
func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}
