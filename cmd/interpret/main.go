package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/wjonasreger/text-classification-interpretation/internal/app"

	"github.com/spf13/cobra"
)

// buildConfig constructs an app.Config from command flags and arguments
func buildConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	cfg := app.DefaultConfig()

	// use the positional argument as the source, stdin when absent
	switch len(args) {
	case 0:
		cfg.Source = "-"
	case 1:
		cfg.Source = args[0]
	default:
		return app.Config{}, fmt.Errorf("expected a single corpus source, got %d", len(args))
	}

	cfg.VocabOut, _ = cmd.Flags().GetString("vocab-out")
	cfg.PredictionsOut, _ = cmd.Flags().GetString("predictions-out")
	cfg.ROCOut, _ = cmd.Flags().GetString("roc-out")

	cfg.SplitRatio, _ = cmd.Flags().GetFloat64("split")
	cfg.Seed, _ = cmd.Flags().GetInt64("seed")

	cfg.MinCount, _ = cmd.Flags().GetInt("min-count")
	cfg.MinDocProp, _ = cmd.Flags().GetFloat64("min-doc-prop")
	cfg.MaxDocProp, _ = cmd.Flags().GetFloat64("max-doc-prop")
	cfg.NGramMax, _ = cmd.Flags().GetInt("ngram-max")
	cfg.Stem, _ = cmd.Flags().GetBool("stem")

	cfg.CoarseTerms, _ = cmd.Flags().GetInt("coarse-terms")
	cfg.FilterTerms, _ = cmd.Flags().GetInt("filter-terms")
	cfg.TargetTerms, _ = cmd.Flags().GetInt("target-terms")
	cfg.Folds, _ = cmd.Flags().GetInt("folds")

	cfg.Quiet, _ = cmd.Flags().GetBool("quiet")
	cfg.Debug, _ = cmd.Flags().GetBool("debug")

	return cfg, nil
}

// setupLogger configures the default slog logger based on debug and quiet modes
func setupLogger(debug, quiet bool) {
	var level slog.Level
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// printSummary reports the pipeline outcome on stdout: the AUC plus the most
// interpretable terms for each sentiment direction.
func printSummary(s *app.Summary) {
	fmt.Printf("documents: %d (train %d, test %d)\n", s.Documents, s.TrainDocuments, s.TestDocuments)
	fmt.Printf("vocabulary: %d pruned, %d in final model\n", s.Vocabulary, len(s.Terms))
	fmt.Printf("test AUC: %.4f\n", s.AUC)

	if len(s.Positive) > 0 {
		fmt.Printf("positive terms: %s\n", strings.Join(head(s.Positive, 20), ", "))
	}
	if len(s.Negative) > 0 {
		fmt.Printf("negative terms: %s\n", strings.Join(head(s.Negative, 20), ", "))
	}
}

func head(xs []string, n int) []string {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}

var rootCmd = &cobra.Command{
	Use:   "interpret [source]",
	Short: "A CLI tool for interpretable sentiment classification",
	Long: `Interpret trains a sentiment classifier over a labeled review corpus and
reduces it to a small, human-readable vocabulary of sentiment-bearing terms.
The source may be a URL, a local file, or standard input.

Examples:
  interpret reviews.tsv
  interpret https://example.com/reviews.tsv --vocab-out vocab.txt
  cat reviews.tsv | interpret --predictions-out preds.tsv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := buildConfig(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		setupLogger(config.Debug, config.Quiet)

		// context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		summary, err := app.Run(ctx, config)
		if err != nil {
			return fmt.Errorf("interpret failed: %w", err)
		}

		printSummary(summary)
		return nil
	},
}

func init() {
	// output artifacts
	rootCmd.Flags().StringP("vocab-out", "o", "", "Write the final model vocabulary to this file")
	rootCmd.Flags().StringP("predictions-out", "p", "", "Write test-set predictions (TSV) to this file")
	rootCmd.Flags().String("roc-out", "", "Write the ROC curve (TSV) to this file")

	// corpus handling
	rootCmd.Flags().Float64("split", 0.8, "Fraction of documents used for training")
	rootCmd.Flags().Int64("seed", 1, "Seed for the train/test split and fold assignment")

	// vocabulary construction
	rootCmd.Flags().Int("min-count", 10, "Minimum total occurrences for a vocabulary term")
	rootCmd.Flags().Float64("min-doc-prop", 0.001, "Minimum document proportion for a vocabulary term")
	rootCmd.Flags().Float64("max-doc-prop", 0.5, "Maximum document proportion for a vocabulary term")
	rootCmd.Flags().IntP("ngram-max", "n", 4, "Longest n-gram order to generate")
	rootCmd.Flags().Bool("stem", false, "Apply Snowball stemming before n-gram assembly")

	// term reduction budgets
	rootCmd.Flags().Int("coarse-terms", 10000, "Term budget for the first sparse reduction")
	rootCmd.Flags().Int("filter-terms", 2000, "Term budget for the interpretability filter")
	rootCmd.Flags().Int("target-terms", 1000, "Term budget for the final sparse reduction")
	rootCmd.Flags().Int("folds", 5, "Cross-validation folds for penalty selection")

	// other flags
	rootCmd.Flags().BoolP("quiet", "q", false, "Suppress progress and info messages")
	rootCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	_ = rootCmd.Flags().MarkHidden("debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
