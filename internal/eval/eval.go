// Package eval scores held-out documents: ROC curve and area under it.
package eval

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Result holds an ROC sweep. TPR, FPR, and Cutoffs are parallel; the curve
// runs from the all-negative corner to the all-positive corner.
type Result struct {
	TPR     []float64
	FPR     []float64
	Cutoffs []float64
	AUC     float64
}

// Evaluate sweeps every decision threshold over predicted probabilities and
// ground-truth labels, returning the ROC curve and its area. AUC depends only
// on the rank order of the scores, so any strictly increasing rescaling of
// the probabilities leaves it unchanged.
func Evaluate(probs []float64, labels []int) (Result, error) {
	if len(probs) != len(labels) {
		return Result{}, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}
	if len(probs) == 0 {
		return Result{}, fmt.Errorf("nothing to evaluate")
	}

	// stat.ROC wants scores ascending with classes aligned
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return probs[order[a]] < probs[order[b]] })

	scores := make([]float64, len(probs))
	classes := make([]bool, len(probs))
	for k, i := range order {
		scores[k] = probs[i]
		classes[k] = labels[i] == 1
	}

	tpr, fpr, cutoffs := stat.ROC(nil, scores, classes, nil)
	auc := integrate.Trapezoidal(fpr, tpr)

	slog.Debug("evaluation complete", "documents", len(probs), "auc", auc)
	return Result{TPR: tpr, FPR: fpr, Cutoffs: cutoffs, AUC: auc}, nil
}

// WriteROC writes the ROC sweep as a tab-separated table of cutoff, false
// positive rate, and true positive rate.
func WriteROC(w io.Writer, r Result) error {
	if _, err := fmt.Fprintln(w, "cutoff\tfpr\ttpr"); err != nil {
		return fmt.Errorf("failed to write ROC header: %w", err)
	}
	for i := range r.TPR {
		if _, err := fmt.Fprintf(w, "%g\t%.6f\t%.6f\n", r.Cutoffs[i], r.FPR[i], r.TPR[i]); err != nil {
			return fmt.Errorf("failed to write ROC row: %w", err)
		}
	}
	return nil
}
