// Package vocab maintains ordered term vocabularies and the corpus-level
// frequency statistics used to prune them.
package vocab

import (
	"log/slog"
)

// Vocabulary is an ordered set of unique terms. Order is first-seen order
// from the token streams; it carries no meaning except that it defines the
// column order of matrices built against this vocabulary.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// New builds a vocabulary from terms, dropping duplicates and preserving the
// order of first appearance.
func New(terms []string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int, len(terms))}
	for _, t := range terms {
		if _, ok := v.index[t]; ok {
			continue
		}
		v.index[t] = len(v.terms)
		v.terms = append(v.terms, t)
	}
	return v
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms returns the terms in vocabulary order. The returned slice is a copy.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the position of term in the vocabulary.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Has reports whether term is in the vocabulary.
func (v *Vocabulary) Has(term string) bool {
	_, ok := v.index[term]
	return ok
}

// Stats holds per-term corpus frequencies: total occurrences and the number
// of distinct documents each term appears in.
type Stats struct {
	TermCount map[string]int
	DocCount  map[string]int
	Docs      int
}

// Count scans tokenized documents and returns the full vocabulary in
// first-seen order along with its frequency statistics.
func Count(tokenized [][]string) (*Vocabulary, *Stats) {
	stats := &Stats{
		TermCount: make(map[string]int),
		DocCount:  make(map[string]int),
		Docs:      len(tokenized),
	}

	var order []string
	for _, tokens := range tokenized {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if stats.TermCount[t] == 0 {
				order = append(order, t)
			}
			stats.TermCount[t]++
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				stats.DocCount[t]++
			}
		}
	}

	slog.Debug("vocabulary counted", "terms", len(order), "documents", stats.Docs)
	return New(order), stats
}

// PruneConfig sets the frequency thresholds for vocabulary pruning.
type PruneConfig struct {
	MinCount   int     // minimum total term count
	MinDocProp float64 // minimum share of documents containing the term
	MaxDocProp float64 // maximum share of documents containing the term
}

// Prune removes terms that are too rare or too common, preserving the order
// of the surviving terms. An empty result is valid; callers must tolerate it.
func Prune(v *Vocabulary, stats *Stats, cfg PruneConfig) *Vocabulary {
	if stats.Docs == 0 {
		return New(nil)
	}

	var kept []string
	for _, t := range v.terms {
		if stats.TermCount[t] < cfg.MinCount {
			continue
		}
		prop := float64(stats.DocCount[t]) / float64(stats.Docs)
		if prop < cfg.MinDocProp || prop > cfg.MaxDocProp {
			continue
		}
		kept = append(kept, t)
	}

	slog.Debug("vocabulary pruned", "before", v.Len(), "after", len(kept))
	return New(kept)
}
