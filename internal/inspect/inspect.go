// Package inspect exposes the linguistic analysis of a document for diagnostics.
package inspect

import (
	"fmt"
	"strings"

	"github.com/spigell/profile-matcher/internal/nlp"
)

const minTokenLen = 3

var contentPOS = map[string]struct{}{
	nlp.NOUN:  {},
	nlp.PROPN: {},
	nlp.VERB:  {},
}

// Record is one content token.
type Record struct {
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
}

// Inspector reports content tokens of a text.
type Inspector struct {
	analyzer nlp.Analyzer
}

// New returns an Inspector backed by analyzer.
func New(analyzer nlp.Analyzer) *Inspector {
	return &Inspector{analyzer: analyzer}
}

// Tokens returns nouns, proper nouns and verbs of text in order, skipping stop
// words, punctuation and tokens shorter than three characters.
func (i *Inspector) Tokens(text string) ([]Record, error) {
	analysis, err := i.analyzer.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyzing text: %w", err)
	}

	records := make([]Record, 0, len(analysis.Tokens))
	for _, t := range analysis.Tokens {
		if t.IsStop || t.IsPunct {
			continue
		}
		if _, ok := contentPOS[t.POS]; !ok {
			continue
		}
		if len([]rune(strings.TrimSpace(t.Text))) < minTokenLen {
			continue
		}
		records = append(records, Record{Text: t.Text, Lemma: t.Lemma, POS: t.POS, Dep: t.Dep})
	}

	return records, nil
}

// Preprocess lowercases text and joins the lemmas of its non-stop, non-punctuation tokens.
func (i *Inspector) Preprocess(text string) (string, error) {
	analysis, err := i.analyzer.Analyze(strings.ToLower(text))
	if err != nil {
		return "", fmt.Errorf("analyzing text: %w", err)
	}

	lemmas := make([]string, 0, len(analysis.Tokens))
	for _, t := range analysis.Tokens {
		if t.IsStop || t.IsPunct || strings.TrimSpace(t.Text) == "" {
			continue
		}
		lemmas = append(lemmas, t.Lemma)
	}

	return strings.Join(lemmas, " "), nil
}
