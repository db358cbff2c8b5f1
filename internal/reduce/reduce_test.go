package reduce

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/wjonasreger/text-classification-interpretation/internal/termmatrix"
)

// toyMatrix is the canonical 4-document corpus: two positives containing
// "great", two negatives containing "awful", all four sharing "movie".
func toyMatrix() (*termmatrix.Matrix, []int) {
	docs := [][]string{
		{"great", "movie"},
		{"great", "movie"},
		{"awful", "movie"},
		{"awful", "movie"},
	}
	return termmatrix.Build(docs, []string{"great", "movie", "awful"}), []int{1, 1, 0, 0}
}

// sentimentMatrix is a larger separable corpus with some uninformative terms.
func sentimentMatrix() (*termmatrix.Matrix, []int) {
	var docs [][]string
	var y []int
	for i := 0; i < 10; i++ {
		pos := []string{"great", "movie"}
		neg := []string{"awful", "movie"}
		if i%2 == 0 {
			pos = append(pos, "popcorn")
			neg = append(neg, "popcorn")
		}
		if i%3 == 0 {
			pos = append(pos, "fine")
			neg = append(neg, "dull")
		}
		docs = append(docs, pos)
		y = append(y, 1)
		docs = append(docs, neg)
		y = append(y, 0)
	}
	terms := []string{"great", "movie", "awful", "popcorn", "fine", "dull"}
	return termmatrix.Build(docs, terms), y
}

func TestStatisticsToyCorpus(t *testing.T) {
	m, y := toyMatrix()
	stats, err := Statistics(m, y)
	if err != nil {
		t.Fatalf("Statistics() unexpected error: %v", err)
	}

	byTerm := make(map[string]TermStat)
	for _, s := range stats {
		byTerm[s.Term] = s
	}

	// "great" separates perfectly in the positive direction
	if !math.IsInf(byTerm["great"].T, 1) {
		t.Errorf("T(great) = %v, want +Inf", byTerm["great"].T)
	}
	// "awful" separates perfectly in the negative direction
	if !math.IsInf(byTerm["awful"].T, -1) {
		t.Errorf("T(awful) = %v, want -Inf", byTerm["awful"].T)
	}
	// "movie" is constant with equal means: statistic undefined
	if !math.IsNaN(byTerm["movie"].T) {
		t.Errorf("T(movie) = %v, want NaN", byTerm["movie"].T)
	}
}

func TestStatisticsLabelMismatch(t *testing.T) {
	m, _ := toyMatrix()
	if _, err := Statistics(m, []int{1, 0}); err == nil {
		t.Error("Statistics() expected error on label mismatch, got nil")
	}
}

func TestFilterToyCorpus(t *testing.T) {
	m, y := toyMatrix()
	stats, err := Statistics(m, y)
	if err != nil {
		t.Fatalf("Statistics() unexpected error: %v", err)
	}

	sel := Filter(stats, 2)

	// ranked terms: great positive, awful negative
	if len(sel.Positive) != 1 || sel.Positive[0] != "great" {
		t.Errorf("Positive = %v, want [great]", sel.Positive)
	}
	if len(sel.Negative) != 1 || sel.Negative[0] != "awful" {
		t.Errorf("Negative = %v, want [awful]", sel.Negative)
	}

	// every term here has zero variance in at least one class, so all are
	// rescued and the union holds all three, in column order
	want := []string{"great", "movie", "awful"}
	if len(sel.Terms) != len(want) {
		t.Fatalf("Terms = %v, want %v", sel.Terms, want)
	}
	for i := range want {
		if sel.Terms[i] != want[i] {
			t.Errorf("Terms[%d] = %q, want %q", i, sel.Terms[i], want[i])
		}
	}
}

func TestFilterKeepsAllZeroVarianceTerms(t *testing.T) {
	m, y := toyMatrix()
	stats, _ := Statistics(m, y)

	// even with topK 0, degeneracy rescues keep perfectly-separating terms
	sel := Filter(stats, 0)
	for _, s := range stats {
		if s.PosVar == 0 || s.NegVar == 0 {
			found := false
			for _, term := range sel.Terms {
				if term == s.Term {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("zero-variance term %q missing from selection", s.Term)
			}
		}
	}
}

func TestFilterTopKBoundary(t *testing.T) {
	stats := []TermStat{
		{Term: "a", Col: 0, T: 2.0, PosVar: 1, NegVar: 1},
		{Term: "b", Col: 1, T: -2.0, PosVar: 1, NegVar: 1},
		{Term: "c", Col: 2, T: 1.0, PosVar: 1, NegVar: 1},
	}
	// tie at |T|=2 between columns 0 and 1; topK=1 keeps the earlier column
	sel := Filter(stats, 1)
	if len(sel.Terms) != 1 || sel.Terms[0] != "a" {
		t.Errorf("Terms = %v, want [a] (first-encountered tie-break)", sel.Terms)
	}
}

func TestFilterZeroStatisticExcludedFromPartitions(t *testing.T) {
	stats := []TermStat{
		{Term: "pos", Col: 0, T: 1.5, PosVar: 1, NegVar: 1},
		{Term: "flat", Col: 1, T: 0, PosVar: 1, NegVar: 1},
		{Term: "neg", Col: 2, T: -1.5, PosVar: 1, NegVar: 1},
	}
	sel := Filter(stats, 3)
	for _, term := range append(append([]string(nil), sel.Positive...), sel.Negative...) {
		if term == "flat" {
			t.Error("zero-statistic term appeared in a directional partition")
		}
	}
	// but it does remain in the selected vocabulary via ranking
	found := false
	for _, term := range sel.Terms {
		if term == "flat" {
			found = true
		}
	}
	if !found {
		t.Error("zero-statistic term missing from selected vocabulary")
	}
}

func TestSelectTerms(t *testing.T) {
	m, y := sentimentMatrix()
	cfg := DefaultSparseConfig()
	cfg.MaxIter = 2000
	cfg.Tol = 1e-7

	terms, err := SelectTerms(m.TFIDF(), y, 2, cfg)
	if err != nil {
		t.Fatalf("SelectTerms() unexpected error: %v", err)
	}
	if len(terms) > 2 {
		t.Fatalf("selected %d terms, want <= 2", len(terms))
	}
	// the survivors must be the class markers, not the noise terms
	for _, term := range terms {
		if term != "great" && term != "awful" {
			t.Errorf("selected uninformative term %q", term)
		}
	}
}

func TestSelectTermsNeverExceedsTarget(t *testing.T) {
	m, y := sentimentMatrix()
	cfg := DefaultSparseConfig()

	for _, target := range []int{0, 1, 3, 10, 100} {
		terms, err := SelectTerms(m.TFIDF(), y, target, cfg)
		if err != nil {
			t.Fatalf("SelectTerms(target=%d) unexpected error: %v", target, err)
		}
		if len(terms) > target {
			t.Errorf("SelectTerms(target=%d) selected %d terms", target, len(terms))
		}
	}
}

func TestSelectTermsPreservesColumnOrder(t *testing.T) {
	m, y := sentimentMatrix()
	terms, err := SelectTerms(m.TFIDF(), y, 100, DefaultSparseConfig())
	if err != nil {
		t.Fatalf("SelectTerms() unexpected error: %v", err)
	}

	order := make(map[string]int)
	for i, term := range m.Terms() {
		order[term] = i
	}
	for i := 1; i < len(terms); i++ {
		if order[terms[i]] <= order[terms[i-1]] {
			t.Fatalf("selected terms out of column order: %v", terms)
		}
	}
}

func TestSelectTermsInvalidInput(t *testing.T) {
	m, y := toyMatrix()

	if _, err := SelectTerms(m, y[:2], 2, DefaultSparseConfig()); err == nil {
		t.Error("expected error on row/label mismatch")
	}
	if _, err := SelectTerms(m, y, -1, DefaultSparseConfig()); err == nil {
		t.Error("expected error on negative target")
	}
}

func TestErrNoFeasiblePenaltyIsSentinel(t *testing.T) {
	err := fmt.Errorf("final reduction: %w", ErrNoFeasiblePenalty)
	if !errors.Is(err, ErrNoFeasiblePenalty) {
		t.Error("wrapped sentinel not matched by errors.Is")
	}
}
