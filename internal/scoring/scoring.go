// Package scoring combines phrase overlap and semantic similarity into a
// ranked match of documents against a student's preferences.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spigell/profile-matcher/internal/ai"
	"github.com/spigell/profile-matcher/internal/documents"
	"github.com/spigell/profile-matcher/internal/phrase"
	"github.com/spigell/profile-matcher/internal/vocabulary"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyPreferences is returned when a preference set has no phrases.
	ErrEmptyPreferences = errors.New("preferences must contain at least one skill or role")
	// ErrInvalidWeights is returned for negative, non-finite or all-zero weights.
	ErrInvalidWeights = errors.New("invalid scoring weights")
)

// Preferences is a student's desired phrases, normalized, distinct and sorted.
type Preferences struct {
	Student string
	Phrases []string
}

// NewPreferences builds the desired phrase set as the union of skills and roles.
func NewPreferences(student string, skills, roles []string) Preferences {
	seen := make(map[string]struct{})
	var phrases []string
	for _, list := range [][]string{skills, roles} {
		for _, p := range list {
			p = vocabulary.Normalize(p)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			phrases = append(phrases, p)
		}
	}
	sort.Strings(phrases)

	return Preferences{Student: strings.TrimSpace(student), Phrases: phrases}
}

// Validate returns ErrEmptyPreferences when there is nothing to match.
func (p Preferences) Validate() error {
	if len(p.Phrases) == 0 {
		return ErrEmptyPreferences
	}
	return nil
}

// Query is the text embedded for the semantic score.
func (p Preferences) Query() string {
	return strings.Join(p.Phrases, " ")
}

// Weights of the phrase and semantic scores in the combined score.
type Weights struct {
	Phrase   float64
	Semantic float64
}

// DefaultWeights weigh both signals equally.
func DefaultWeights() Weights {
	return Weights{Phrase: 0.5, Semantic: 0.5}
}

// Validate rejects weights that cannot produce a meaningful ranking.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Phrase, w.Semantic} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: phrase=%v semantic=%v", ErrInvalidWeights, w.Phrase, w.Semantic)
		}
	}
	if w.Phrase == 0 && w.Semantic == 0 {
		return fmt.Errorf("%w: both weights are zero", ErrInvalidWeights)
	}
	return nil
}

// Combine returns the weighted sum of both scores.
func (w Weights) Combine(phraseScore, semanticScore float64) float64 {
	return w.Phrase*phraseScore + w.Semantic*semanticScore
}

// Result describes how well one document matches a preference set.
type Result struct {
	DocumentID    string   `json:"document_id"`
	PhraseScore   float64  `json:"phrase_score"`
	SemanticScore float64  `json:"semantic_score"`
	Common        []string `json:"common"`
	Combined      float64  `json:"combined_score"`
}

// Categorizer extracts categorized vocabulary phrases from text.
type Categorizer interface {
	Categorize(text string) (phrase.Categorized, error)
}

// Recorder observes scored documents.
type Recorder interface {
	DocumentScored(d time.Duration)
}

// Scorer computes match results.
type Scorer struct {
	categorizer Categorizer
	embedder    ai.Embedder
	weights     Weights
	workers     int
	recorder    Recorder
	logger      *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers bounds the number of documents scored concurrently by ScoreAll.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRecorder reports every scored document to r.
func WithRecorder(r Recorder) Option {
	return func(s *Scorer) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScorer validates weights and returns a Scorer. Weights that do not sum to
// one are accepted with a warning.
func NewScorer(categorizer Categorizer, embedder ai.Embedder, weights Weights, opts ...Option) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		categorizer: categorizer,
		embedder:    embedder,
		weights:     weights,
		workers:     1,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if sum := weights.Phrase + weights.Semantic; math.Abs(sum-1) > 1e-9 {
		s.logger.Warn("scoring weights do not sum to one, combined scores are not bounded by 1",
			zap.Float64("phrase_weight", weights.Phrase),
			zap.Float64("semantic_weight", weights.Semantic),
		)
	}

	return s, nil
}

// Score matches one document. categorized must come from the document text.
// The phrase score is |desired ∩ candidate| / |desired|.
func (s *Scorer) Score(ctx context.Context, prefs Preferences, doc documents.Document, categorized phrase.Categorized) (Result, error) {
	if err := prefs.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()

	candidate := make(map[string]struct{})
	for _, category := range []vocabulary.Category{vocabulary.Skills, vocabulary.Roles} {
		for _, p := range categorized[category] {
			candidate[p] = struct{}{}
		}
	}

	common := make([]string, 0)
	for _, p := range prefs.Phrases {
		if _, ok := candidate[p]; ok {
			common = append(common, p)
		}
	}

	phraseScore := float64(len(common)) / float64(len(prefs.Phrases))

	vectors, err := ai.EmbedChecked(ctx, s.embedder, []string{prefs.Query(), doc.Text})
	if err != nil {
		return Result{}, fmt.Errorf("embedding document %s: %w", doc.ID, err)
	}

	semanticScore, err := ai.Cosine(vectors[0], vectors[1])
	if err != nil {
		return Result{}, fmt.Errorf("comparing document %s: %w", doc.ID, err)
	}

	result := Result{
		DocumentID:    doc.ID,
		PhraseScore:   phraseScore,
		SemanticScore: semanticScore,
		Common:        common,
		Combined:      s.weights.Combine(phraseScore, semanticScore),
	}

	if s.recorder != nil {
		s.recorder.DocumentScored(time.Since(start))
	}

	s.logger.Debug("document scored",
		zap.String("document", doc.ID),
		zap.Float64("phrase_score", phraseScore),
		zap.Float64("semantic_score", semanticScore),
		zap.Float64("combined_score", result.Combined),
	)

	return result, nil
}

// ScoreAll categorizes and scores every document concurrently and returns the
// ranked results. The first failure cancels the remaining work.
func (s *Scorer) ScoreAll(ctx context.Context, prefs Preferences, docs []documents.Document) ([]Result, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, doc := range docs {
		g.Go(func() error {
			categorized, err := s.categorizer.Categorize(doc.Text)
			if err != nil {
				return fmt.Errorf("categorizing document %s: %w", doc.ID, err)
			}

			res, err := s.Score(gctx, prefs, doc, categorized)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("documents scored",
		zap.String("student", prefs.Student),
		zap.Int("documents", len(docs)),
		zap.Strings("preferences", prefs.Phrases),
	)

	return Rank(results), nil
}

// Rank returns results sorted by combined score, highest first. Equal scores
// keep their input order.
func Rank(results []Result) []Result {
	ranked := append([]Result(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Combined > ranked[j].Combined
	})
	return ranked
}
