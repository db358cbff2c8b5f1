// Package app contains the core pipeline logic for the interpret CLI tool.
// It wires corpus loading, vocabulary pruning, term reduction, training, and
// evaluation together, separated from CLI concerns.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wjonasreger/text-classification-interpretation/internal/corpus"
	"github.com/wjonasreger/text-classification-interpretation/internal/eval"
	"github.com/wjonasreger/text-classification-interpretation/internal/fetch"
	"github.com/wjonasreger/text-classification-interpretation/internal/normalize"
	"github.com/wjonasreger/text-classification-interpretation/internal/reduce"
	"github.com/wjonasreger/text-classification-interpretation/internal/spinner"
	"github.com/wjonasreger/text-classification-interpretation/internal/termmatrix"
	"github.com/wjonasreger/text-classification-interpretation/internal/train"
	"github.com/wjonasreger/text-classification-interpretation/internal/vocab"
)

// Config holds all configuration options for the interpret application.
type Config struct {
	Source         string  // URL, file path, or "-" for stdin
	VocabOut       string  // path for the selected-term list ("" skips the write)
	PredictionsOut string  // path for the test-set prediction TSV ("" skips the write)
	ROCOut         string  // path for the ROC curve TSV ("" skips the write)

	SplitRatio float64 // fraction of documents assigned to the training split
	Seed       int64   // seed for the split permutation and fold assignment

	MinCount   int     // minimum total occurrences for a vocabulary term
	MinDocProp float64 // minimum document proportion for a vocabulary term
	MaxDocProp float64 // maximum document proportion for a vocabulary term
	NGramMax   int     // longest n-gram order to generate
	Stem       bool    // apply Snowball stemming before n-gram assembly

	CoarseTerms int // term budget for the first sparse reduction
	FilterTerms int // top-K budget for the interpretability filter
	TargetTerms int // term budget for the final sparse reduction

	Folds int // cross-validation folds for penalty selection

	Quiet bool // suppress progress output
	Debug bool
}

// DefaultConfig returns the pipeline configuration used when no flags
// override it.
func DefaultConfig() Config {
	return Config{
		SplitRatio:  0.8,
		Seed:        1,
		MinCount:    10,
		MinDocProp:  0.001,
		MaxDocProp:  0.5,
		NGramMax:    4,
		CoarseTerms: 10000,
		FilterTerms: 2000,
		TargetTerms: 1000,
		Folds:       5,
	}
}

// Summary reports what the pipeline produced, for logging and for callers
// that want the results without re-reading the output files.
type Summary struct {
	Documents      int      // documents loaded from the source
	Vocabulary     int      // vocabulary size after frequency pruning
	Terms          []string // final model terms, in column order
	Positive       []string // interpretable terms associated with positive reviews
	Negative       []string // interpretable terms associated with negative reviews
	AUC            float64  // area under the ROC curve on the test split
	TestDocuments  int      // documents in the held-out split
	TrainDocuments int      // documents in the training split
}

// Run executes the full interpretation pipeline with the given configuration.
//
// Processing stages:
//  1. Load and tokenize the labeled corpus (loadCorpus, tokenize)
//  2. Build the pruned vocabulary and TF-IDF matrix
//  3. Reduce terms on the training split (sparse pass, statistic filter,
//     sparse pass again)
//  4. Cross-validate a ridge classifier and score the held-out split
//
// ctx allows for cancellation of fetching and the long fitting stages.
func Run(ctx context.Context, cfg Config) (*Summary, error) {
	if cfg.Source == "" {
		return nil, fmt.Errorf("no source provided")
	}
	if cfg.SplitRatio <= 0 || cfg.SplitRatio >= 1 {
		return nil, fmt.Errorf("split ratio must be in (0, 1), got %v", cfg.SplitRatio)
	}

	var sp *spinner.Spinner
	if !cfg.Quiet {
		sp = spinner.New(ctx, os.Stderr, "Loading corpus...")
		sp.Start()
		defer sp.Stop()
	}
	progress := func(message string) {
		if sp != nil {
			sp.UpdateMessage(message)
		}
	}

	docs, err := loadCorpus(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	slog.Info("corpus loaded", "documents", len(docs))

	progress("Tokenizing reviews...")
	tokenized, err := tokenize(ctx, docs, cfg)
	if err != nil {
		return nil, err
	}

	progress("Building vocabulary...")
	tfidf, vocabSize, err := buildMatrix(tokenized, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("vocabulary pruned", "terms", vocabSize)

	trainRows, testRows := corpus.Split(len(docs), cfg.SplitRatio, cfg.Seed)
	trainM := tfidf.RowSubset(trainRows)
	trainY := corpus.Labels(docs, trainRows)

	progress("Reducing terms...")
	reduced, positive, negative, err := reduceTerms(ctx, trainM, trainY, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("terms reduced", "terms", reduced.Cols())

	progress("Cross-validating classifier...")
	clf, err := fitClassifier(ctx, reduced, trainY, cfg)
	if err != nil {
		return nil, err
	}

	progress("Scoring held-out reviews...")
	testM := tfidf.RowSubset(testRows).Conform(clf.Terms())
	probs, err := clf.Predict(testM)
	if err != nil {
		return nil, fmt.Errorf("scoring held-out split: %w", err)
	}

	result, err := eval.Evaluate(probs, corpus.Labels(docs, testRows))
	if err != nil {
		return nil, fmt.Errorf("evaluating predictions: %w", err)
	}
	slog.Info("evaluation complete", "auc", result.AUC, "test_documents", len(testRows))

	if err := writeArtifacts(cfg, docs, testRows, probs, clf.Terms(), result); err != nil {
		return nil, err
	}

	return &Summary{
		Documents:      len(docs),
		Vocabulary:     vocabSize,
		Terms:          clf.Terms(),
		Positive:       positive,
		Negative:       negative,
		AUC:            result.AUC,
		TestDocuments:  len(testRows),
		TrainDocuments: len(trainRows),
	}, nil
}

// loadCorpus fetches the source and parses it as a labeled review TSV.
func loadCorpus(ctx context.Context, source string) ([]corpus.Document, error) {
	reader, err := fetch.Open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch corpus: %w", err)
	}
	defer reader.Close()

	docs, err := corpus.Load(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("corpus %q contains no documents", source)
	}
	return docs, nil
}

// tokenize converts each review into its n-gram token stream, checking for
// cancellation between documents since large corpora take a while here.
func tokenize(ctx context.Context, docs []corpus.Document, cfg Config) ([][]string, error) {
	normCfg := normalize.DefaultConfig()
	if cfg.NGramMax > 0 {
		normCfg.NGramMax = cfg.NGramMax
	}
	normCfg.Stem = cfg.Stem
	normalizer := normalize.New(normCfg)

	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tokenization canceled: %w", err)
		}
		tokenized[i] = normalizer.Tokens(doc.Review)
	}
	return tokenized, nil
}

// buildMatrix counts terms over the whole corpus, prunes the vocabulary by
// frequency, and produces the TF-IDF weighted term matrix.
func buildMatrix(tokenized [][]string, cfg Config) (*termmatrix.Matrix, int, error) {
	counted, stats := vocab.Count(tokenized)
	pruned := vocab.Prune(counted, stats, vocab.PruneConfig{
		MinCount:   cfg.MinCount,
		MinDocProp: cfg.MinDocProp,
		MaxDocProp: cfg.MaxDocProp,
	})
	if pruned.Len() == 0 {
		return nil, 0, fmt.Errorf("no vocabulary terms survive pruning (min count %d, doc proportion [%v, %v])",
			cfg.MinCount, cfg.MinDocProp, cfg.MaxDocProp)
	}

	counts := termmatrix.Build(tokenized, pruned.Terms())
	return counts.TFIDF(), pruned.Len(), nil
}

// reduceTerms runs the three-stage term reduction on the training split:
// a coarse sparse pass, the interpretability filter, and a final sparse pass.
// It returns the reduced matrix plus the directional term partitions.
func reduceTerms(ctx context.Context, m *termmatrix.Matrix, y []int, cfg Config) (*termmatrix.Matrix, []string, []string, error) {
	sparseCfg := reduce.DefaultSparseConfig()

	coarse, err := reduce.SelectTerms(m, y, cfg.CoarseTerms, sparseCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("coarse reduction: %w", err)
	}
	m = m.Conform(coarse)
	slog.Debug("coarse reduction complete", "terms", len(coarse))

	if err := ctx.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("term reduction canceled: %w", err)
	}

	stats, err := reduce.Statistics(m, y)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("term statistics: %w", err)
	}
	sel := reduce.Filter(stats, cfg.FilterTerms)
	m = m.Conform(sel.Terms)
	slog.Debug("interpretability filter complete",
		"terms", len(sel.Terms), "rescued", len(sel.Rescued))

	if err := ctx.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("term reduction canceled: %w", err)
	}

	final, err := reduce.SelectTerms(m, y, cfg.TargetTerms, sparseCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("final reduction: %w", err)
	}
	m = m.Conform(final)

	return m, sel.Positive, sel.Negative, nil
}

// fitClassifier cross-validates the ridge penalty and refits on the full
// training split.
func fitClassifier(ctx context.Context, m *termmatrix.Matrix, y []int, cfg Config) (*train.Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training canceled: %w", err)
	}

	trainCfg := train.DefaultConfig()
	if cfg.Folds > 0 {
		trainCfg.Folds = cfg.Folds
	}
	trainCfg.Seed = cfg.Seed

	clf, err := train.Fit(m, y, trainCfg)
	if err != nil {
		return nil, fmt.Errorf("training classifier: %w", err)
	}
	slog.Info("classifier trained", "lambda", clf.Lambda, "terms", len(clf.Terms()))
	return clf, nil
}

// writeArtifacts emits the requested output files. Empty paths skip the
// corresponding artifact.
func writeArtifacts(cfg Config, docs []corpus.Document, testRows []int, probs []float64, terms []string, result eval.Result) error {
	if cfg.VocabOut != "" {
		if err := writeFile(cfg.VocabOut, func(f *os.File) error {
			return corpus.WriteVocabulary(f, terms)
		}); err != nil {
			return fmt.Errorf("writing vocabulary: %w", err)
		}
	}

	if cfg.PredictionsOut != "" {
		ids := make([]string, len(testRows))
		for i, row := range testRows {
			ids[i] = docs[row].ID
		}
		if err := writeFile(cfg.PredictionsOut, func(f *os.File) error {
			return corpus.WritePredictions(f, ids, probs)
		}); err != nil {
			return fmt.Errorf("writing predictions: %w", err)
		}
	}

	if cfg.ROCOut != "" {
		if err := writeFile(cfg.ROCOut, func(f *os.File) error {
			return eval.WriteROC(f, result)
		}); err != nil {
			return fmt.Errorf("writing ROC curve: %w", err)
		}
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
