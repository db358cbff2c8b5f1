package train

import (
	"errors"
	"testing"

	"github.com/wjonasreger/text-classification-interpretation/internal/termmatrix"
)

// trainingMatrix returns a separable corpus large enough for 5-fold CV.
func trainingMatrix() (*termmatrix.Matrix, []int) {
	var docs [][]string
	var y []int
	for i := 0; i < 15; i++ {
		docs = append(docs, []string{"great", "movie"})
		y = append(y, 1)
		docs = append(docs, []string{"awful", "movie"})
		y = append(y, 0)
	}
	return termmatrix.Build(docs, []string{"great", "movie", "awful"}), y
}

func TestFit(t *testing.T) {
	m, y := trainingMatrix()
	clf, err := Fit(m, y, DefaultConfig())
	if err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}

	if len(clf.Terms()) != 3 {
		t.Fatalf("Terms() = %v, want 3 terms", clf.Terms())
	}

	probs, err := clf.Predict(m)
	if err != nil {
		t.Fatalf("Predict() unexpected error: %v", err)
	}
	for i, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("prob[%d] = %v, outside [0,1]", i, p)
		}
		if y[i] == 1 && p < 0.5 {
			t.Errorf("positive document %d scored %v", i, p)
		}
		if y[i] == 0 && p > 0.5 {
			t.Errorf("negative document %d scored %v", i, p)
		}
	}

	// the signed weights should match the term directions
	if clf.Weight(0) <= 0 {
		t.Errorf("weight(great) = %v, want > 0", clf.Weight(0))
	}
	if clf.Weight(2) >= 0 {
		t.Errorf("weight(awful) = %v, want < 0", clf.Weight(2))
	}
}

func TestFitReproducible(t *testing.T) {
	m, y := trainingMatrix()
	cfg := DefaultConfig()
	cfg.Seed = 7

	a, err := Fit(m, y, cfg)
	if err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}
	b, err := Fit(m, y, cfg)
	if err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}
	if a.Lambda != b.Lambda {
		t.Errorf("same seed selected different penalties: %v vs %v", a.Lambda, b.Lambda)
	}
}

func TestFitValidation(t *testing.T) {
	m, y := trainingMatrix()

	if _, err := Fit(m, y[:3], DefaultConfig()); err == nil {
		t.Error("expected error on label count mismatch")
	}

	cfg := DefaultConfig()
	cfg.Folds = 1
	if _, err := Fit(m, y, cfg); err == nil {
		t.Error("expected error on single fold")
	}

	cfg = DefaultConfig()
	cfg.Lambdas = nil
	if _, err := Fit(m, y, cfg); err == nil {
		t.Error("expected error on empty penalty grid")
	}
}

func TestPredictColumnMismatch(t *testing.T) {
	m, y := trainingMatrix()
	clf, err := Fit(m, y, DefaultConfig())
	if err != nil {
		t.Fatalf("Fit() unexpected error: %v", err)
	}

	// wrong column count
	narrow := m.Conform([]string{"great", "awful"})
	if _, err := clf.Predict(narrow); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("Predict() error = %v, want ErrColumnMismatch", err)
	}

	// right count, wrong order
	reordered := m.Conform([]string{"awful", "movie", "great"})
	if _, err := clf.Predict(reordered); !errors.Is(err, ErrColumnMismatch) {
		t.Errorf("Predict() error = %v, want ErrColumnMismatch", err)
	}

	// conforming to the classifier's own terms always scores cleanly
	conformed := reordered.Conform(clf.Terms())
	if _, err := clf.Predict(conformed); err != nil {
		t.Errorf("Predict() after Conform unexpected error: %v", err)
	}
}
