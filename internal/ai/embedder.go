// Package ai defines the embedding service used for semantic similarity.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedResponse is returned when an embedder yields the wrong number of vectors.
	ErrMalformedResponse = errors.New("malformed embedding response")
	// ErrDimensionMismatch is returned when vectors of different length are compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedder encodes texts into fixed-dimension vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// EmbedChecked calls e and verifies that one non-empty vector was returned per text.
func EmbedChecked(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts", ErrMalformedResponse, e.Model(), len(vectors), len(texts))
	}

	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: %s returned an empty vector at %d", ErrMalformedResponse, e.Model(), i)
		}
	}

	return vectors, nil
}

// Cosine returns the cosine similarity of a and b. Zero vectors have similarity 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// CosineMatrix returns the pairwise similarities between rows and cols.
func CosineMatrix(rows, cols [][]float32) ([][]float64, error) {
	matrix := make([][]float64, len(rows))
	for i, r := range rows {
		matrix[i] = make([]float64, len(cols))
		for j, c := range cols {
			score, err := Cosine(r, c)
			if err != nil {
				return nil, err
			}
			matrix[i][j] = score
		}
	}
	return matrix, nil
}
