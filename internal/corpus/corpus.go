// Package corpus loads labeled review data and manages the train/test split.
//
// The expected input is a tab-separated file with a header row naming at
// least the id, sentiment, and review columns. An ordinal score column is
// accepted and retained but plays no role in modeling.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
)

// Document is one review record. Immutable once loaded.
type Document struct {
	ID        string
	Sentiment int // binary label: 1 positive, 0 negative
	Score     int // ordinal rating, unused by the model
	Review    string
}

// requiredColumns must all appear in the header row; score is optional.
var requiredColumns = []string{"id", "sentiment", "review"}

// Load reads a tab-separated corpus from r. The header row is mandatory and
// must name the id, sentiment, and review columns; column order is taken from
// the header, not assumed. A missing required column or an unparsable row is
// fatal per the strict all-or-nothing loading contract.
func Load(r io.Reader) ([]Document, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("corpus header missing required column %q", name)
		}
	}
	scoreCol, hasScore := cols["score"]

	var docs []Document
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus row %d: %w", line, err)
		}
		if len(record) < len(cols) {
			return nil, fmt.Errorf("corpus row %d has %d fields, want %d", line, len(record), len(cols))
		}

		sentiment, err := strconv.Atoi(record[cols["sentiment"]])
		if err != nil {
			return nil, fmt.Errorf("corpus row %d has invalid sentiment %q: %w", line, record[cols["sentiment"]], err)
		}
		if sentiment != 0 && sentiment != 1 {
			return nil, fmt.Errorf("corpus row %d has non-binary sentiment %d", line, sentiment)
		}

		doc := Document{
			ID:        record[cols["id"]],
			Sentiment: sentiment,
			Review:    record[cols["review"]],
		}
		if hasScore {
			// the score is informational only; a blank or malformed value
			// is tolerated rather than failing the load
			if score, err := strconv.Atoi(record[scoreCol]); err == nil {
				doc.Score = score
			}
		}
		docs = append(docs, doc)
	}

	slog.Debug("corpus loaded", "documents", len(docs))
	return docs, nil
}

// Split partitions document indices into train and test sets by a seeded
// shuffle. ratio is the train share (e.g. 0.8). The same seed always yields
// the same partition, which is what makes pipeline runs reproducible.
func Split(n int, ratio float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	cut := int(float64(n) * ratio)
	train = append([]int(nil), perm[:cut]...)
	test = append([]int(nil), perm[cut:]...)
	slog.Debug("corpus split", "train", len(train), "test", len(test), "seed", seed)
	return train, test
}

// Labels extracts the sentiment column for a subset of documents, aligned to
// the order of rows.
func Labels(docs []Document, rows []int) []int {
	y := make([]int, len(rows))
	for i, r := range rows {
		y[i] = docs[r].Sentiment
	}
	return y
}

// WriteVocabulary writes the final vocabulary artifact: one term per line,
// no header, in vocabulary order.
func WriteVocabulary(w io.Writer, terms []string) error {
	for _, term := range terms {
		if _, err := fmt.Fprintln(w, term); err != nil {
			return fmt.Errorf("failed to write vocabulary: %w", err)
		}
	}
	return nil
}

// WritePredictions writes the prediction artifact: a tab-separated table of
// document id and predicted probability of positive sentiment, one row per
// scored document in input order.
func WritePredictions(w io.Writer, ids []string, probs []float64) error {
	if len(ids) != len(probs) {
		return fmt.Errorf("prediction count mismatch: %d ids, %d probabilities", len(ids), len(probs))
	}
	if _, err := fmt.Fprintln(w, "id\tprob"); err != nil {
		return fmt.Errorf("failed to write prediction header: %w", err)
	}
	for i, id := range ids {
		if _, err := fmt.Fprintf(w, "%s\t%.6f\n", id, probs[i]); err != nil {
			return fmt.Errorf("failed to write prediction row: %w", err)
		}
	}
	return nil
}
