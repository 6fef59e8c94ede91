// Package hashing provides an offline embedder based on feature hashing of
// lemmas and character trigrams.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/spigell/profile-matcher/internal/nlp"
)

const (
	// DefaultDimensions is used when a non-positive dimension is configured.
	DefaultDimensions = 256

	lemmaWeight   = 1.0
	trigramWeight = 0.5
)

// Embedder hashes content words into a fixed number of buckets.
type Embedder struct {
	analyzer   nlp.Analyzer
	dimensions int
}

// New returns a hashing embedder using analyzer for tokenization.
func New(analyzer nlp.Analyzer, dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{analyzer: analyzer, dimensions: dimensions}
}

// Model identifies the embedder in logs and cache keys.
func (e *Embedder) Model() string {
	return fmt.Sprintf("hashing-%d", e.dimensions)
}

// Embed returns one L2-normalized vector per text. Texts without content words map to the zero vector.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vec, err := e.embed(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Embedder) embed(text string) ([]float32, error) {
	vec := make([]float64, e.dimensions)

	analysis, err := e.analyzer.Analyze(strings.ToLower(text))
	if err != nil {
		return nil, fmt.Errorf("analyzing text: %w", err)
	}

	for _, tok := range analysis.Tokens {
		if tok.IsStop || tok.IsPunct {
			continue
		}

		lemma := strings.ToLower(tok.Lemma)
		e.add(vec, "w:"+lemma, lemmaWeight)

		padded := "#" + lemma + "#"
		runes := []rune(padded)
		for j := 0; j+3 <= len(runes); j++ {
			e.add(vec, "t:"+string(runes[j:j+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	out := make([]float32, e.dimensions)
	if norm == 0 {
		return out, nil
	}

	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}

	return out, nil
}

func (e *Embedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}
