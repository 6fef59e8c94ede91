// Package phrase finds controlled-vocabulary phrases in text.
package phrase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/profile-matcher/internal/nlp"
	"github.com/spigell/profile-matcher/internal/vocabulary"
	"go.uber.org/zap"
)

// Categorized maps every category to the phrases found for it, in text order.
// Repeated occurrences are kept.
type Categorized map[vocabulary.Category][]string

// NewCategorized returns a Categorized with an empty list for every category.
func NewCategorized() Categorized {
	c := make(Categorized, len(vocabulary.Categories))
	for _, category := range vocabulary.Categories {
		c[category] = []string{}
	}
	return c
}

// Unique returns the distinct phrases of category in first-seen order.
func (c Categorized) Unique(category vocabulary.Category) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(c[category]))
	for _, p := range c[category] {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

type pattern struct {
	entry  string
	tokens []string
}

// Matcher categorizes text against a vocabulary registry.
type Matcher struct {
	analyzer nlp.Analyzer
	registry *vocabulary.Registry
	logger   *zap.Logger

	// patterns indexed by their first token
	byFirst map[string][]pattern
}

// NewMatcher tokenizes every vocabulary entry once with analyzer.
func NewMatcher(analyzer nlp.Analyzer, registry *vocabulary.Registry, logger *zap.Logger) (*Matcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Matcher{
		analyzer: analyzer,
		registry: registry,
		logger:   logger,
		byFirst:  make(map[string][]pattern),
	}

	seen := make(map[string]struct{})
	for _, entry := range registry.All() {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}

		analysis, err := analyzer.Analyze(entry)
		if err != nil {
			return nil, fmt.Errorf("analyzing vocabulary entry %q: %w", entry, err)
		}
		if len(analysis.Tokens) == 0 {
			continue
		}

		tokens := make([]string, len(analysis.Tokens))
		for i, t := range analysis.Tokens {
			tokens[i] = strings.ToLower(t.Text)
		}

		m.byFirst[tokens[0]] = append(m.byFirst[tokens[0]], pattern{entry: entry, tokens: tokens})
	}

	for first := range m.byFirst {
		patterns := m.byFirst[first]
		sort.SliceStable(patterns, func(i, j int) bool {
			return len(patterns[i].tokens) < len(patterns[j].tokens)
		})
	}

	return m, nil
}

// Categorize lowercases text and reports every vocabulary entry occurring in it
// as a contiguous token sequence. The reported phrase is the vocabulary entry,
// not the covered text, so "data   scientist" reports "data scientist".
// Matches are ordered by start token, shorter first. Empty text yields empty
// lists for all categories.
func (m *Matcher) Categorize(text string) (Categorized, error) {
	result := NewCategorized()
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	analysis, err := m.analyzer.Analyze(strings.ToLower(text))
	if err != nil {
		return nil, fmt.Errorf("analyzing text: %w", err)
	}

	tokens := make([]string, len(analysis.Tokens))
	for i, t := range analysis.Tokens {
		tokens[i] = strings.ToLower(t.Text)
	}

	matched := 0
	for start := range tokens {
		for _, p := range m.byFirst[tokens[start]] {
			if !matchesAt(tokens, start, p.tokens) {
				continue
			}

			if m.registry.Ignored(p.entry) {
				continue
			}

			category, ok := m.registry.Lookup(p.entry)
			if !ok {
				continue
			}

			result[category] = append(result[category], p.entry)
			matched++
		}
	}

	m.logger.Debug("categorized text",
		zap.Int("tokens", len(tokens)),
		zap.Int("matches", matched),
	)

	return result, nil
}

func matchesAt(tokens []string, start int, pattern []string) bool {
	if start+len(pattern) > len(tokens) {
		return false
	}
	for i, tok := range pattern {
		if tokens[start+i] != tok {
			return false
		}
	}
	return true
}
