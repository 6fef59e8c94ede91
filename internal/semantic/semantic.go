// Package semantic pairs query phrases with the most similar noun phrases of a text.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/profile-matcher/internal/ai"
	"github.com/spigell/profile-matcher/internal/nlp"
	"go.uber.org/zap"
)

const (
	// DefaultTopN is the number of matches kept when none is configured.
	DefaultTopN = 5
	// DefaultThreshold is the minimum similarity for a match.
	DefaultThreshold = 0.8

	minCandidateLen = 2
	maxCandidateLen = 50
)

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("semantic threshold must be within [0, 1]")

// Match pairs a query phrase with its most similar candidate phrase.
type Match struct {
	Query     string  `json:"query"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Matcher finds semantic matches using an analyzer for candidate extraction
// and an embedder for similarity.
type Matcher struct {
	analyzer nlp.Analyzer
	embedder ai.Embedder
	logger   *zap.Logger
}

// NewMatcher returns a Matcher. A nil logger disables logging.
func NewMatcher(analyzer nlp.Analyzer, embedder ai.Embedder, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{analyzer: analyzer, embedder: embedder, logger: logger}
}

// ValidateThreshold reports ErrInvalidThreshold for values outside [0, 1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// Candidates returns the distinct noun phrases of text eligible for matching,
// in first-seen order.
func (m *Matcher) Candidates(text string) ([]string, error) {
	analysis, err := m.analyzer.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("analyzing target text: %w", err)
	}

	seen := make(map[string]struct{})
	var out []string
	for _, chunk := range analysis.Chunks {
		phrase := strings.TrimSpace(chunk.Text)
		if n := len([]rune(phrase)); n <= minCandidateLen || n >= maxCandidateLen {
			continue
		}

		root := analysis.ChunkRoot(chunk)
		if root.IsStop || root.IsPunct {
			continue
		}

		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}

	return out, nil
}

// Match returns at most topN matches, one per distinct query phrase, whose
// unrounded similarity is at least threshold. Scores are rounded to two decimals
// after that check and sorted descending.
// Equal scores keep query order.
func (m *Matcher) Match(ctx context.Context, queries []string, text string, topN int, threshold float64) ([]Match, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	if len(queries) == 0 || topN <= 0 {
		return []Match{}, nil
	}

	candidates, err := m.Candidates(text)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	queryVectors, err := ai.EmbedChecked(ctx, m.embedder, queries)
	if err != nil {
		return nil, fmt.Errorf("embedding query phrases: %w", err)
	}

	candidateVectors, err := ai.EmbedChecked(ctx, m.embedder, candidates)
	if err != nil {
		return nil, fmt.Errorf("embedding candidate phrases: %w", err)
	}

	similarity, err := ai.CosineMatrix(queryVectors, candidateVectors)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for i, query := range queries {
		best, bestScore := -1, 0.0
		for j, score := range similarity[i] {
			if score > bestScore {
				best, bestScore = j, score
			}
		}

		if best < 0 || bestScore < threshold {
			continue
		}
		if _, ok := seen[query]; ok {
			continue
		}
		seen[query] = struct{}{}

		matches = append(matches, Match{
			Query:     query,
			Candidate: candidates[best],
			Score:     round2(bestScore),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}

	m.logger.Debug("semantic matching finished",
		zap.Int("queries", len(queries)),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
