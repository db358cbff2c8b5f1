// Package normalize turns raw review markup into the n-gram token streams
// the vocabulary and matrix builders consume.
//
// The stages are fixed: strip HTML, tokenize, lowercase, drop stop words and
// non-word tokens, optionally stem, then emit unigrams through n-grams joined
// with underscores. Every stage is pure; the same input always produces the
// same token stream.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// DefaultStopWords is the fixed set of common English function words excluded
// from the vocabulary. Deliberately small: aggressive stop lists would erase
// the bigrams ("not good", "waste of") that make the final terms readable.
var DefaultStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "their", "they", "his", "her",
	"she", "he", "a", "an", "and", "is", "was", "are", "were",
	"him", "himself", "has", "have", "it", "its", "the", "us",
}

// wordRegex accepts tokens made of letters, digits, and internal apostrophes.
var wordRegex = regexp.MustCompile(`^[a-z0-9]+(?:'[a-z]+)?$`)

// Config controls normalization. The zero value is not usable; construct with
// DefaultConfig and override fields as needed.
type Config struct {
	StopWords []string
	NGramMin  int
	NGramMax  int
	Stem      bool // apply English Snowball stemming before n-gram assembly
}

// DefaultConfig returns the standard normalization settings: unigrams through
// 4-grams over the fixed stop list, no stemming.
func DefaultConfig() Config {
	return Config{
		StopWords: DefaultStopWords,
		NGramMin:  1,
		NGramMax:  4,
	}
}

// Normalizer converts review text into n-gram tokens.
type Normalizer struct {
	cfg       Config
	stopWords map[string]struct{}
}

// New creates a Normalizer for the given configuration.
func New(cfg Config) *Normalizer {
	if cfg.NGramMin < 1 {
		cfg.NGramMin = 1
	}
	if cfg.NGramMax < cfg.NGramMin {
		cfg.NGramMax = cfg.NGramMin
	}
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{cfg: cfg, stopWords: stop}
}

// Tokens runs the full normalization pipeline on one review and returns its
// n-gram tokens in text order. The result may be empty for degenerate input.
func (n *Normalizer) Tokens(review string) []string {
	text := StripHTML(review)
	words := n.words(text)
	return n.ngrams(words)
}

// StripHTML removes markup from a review, returning the concatenated text
// content. Reviews frequently carry <br /> runs and stray inline tags; input
// that fails to parse as HTML is returned unchanged.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		slog.Debug("HTML parse failed, keeping raw text", "error", err)
		return s
	}
	// breaks and block boundaries become spaces so adjacent words don't fuse
	doc.Find("br").ReplaceWithHtml(" ")
	return doc.Text()
}

// words tokenizes stripped text into lowercase word tokens with stop words
// and non-word tokens removed.
func (n *Normalizer) words(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		slog.Debug("tokenization failed", "error", err)
		return nil
	}

	var words []string
	for _, tok := range doc.Tokens() {
		w := strings.ToLower(tok.Text)
		if !wordRegex.MatchString(w) {
			continue
		}
		if _, stop := n.stopWords[w]; stop {
			continue
		}
		if n.cfg.Stem {
			if stemmed, err := snowball.Stem(w, "english", true); err == nil {
				w = stemmed
			}
		}
		words = append(words, w)
	}
	return words
}

// ngrams assembles n-grams of each configured order, shorter orders first,
// joining constituent words with underscores.
func (n *Normalizer) ngrams(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	var grams []string
	for size := n.cfg.NGramMin; size <= n.cfg.NGramMax; size++ {
		for i := 0; i+size <= len(words); i++ {
			if size == 1 {
				grams = append(grams, words[i])
				continue
			}
			grams = append(grams, strings.Join(words[i:i+size], "_"))
		}
	}
	return grams
}
