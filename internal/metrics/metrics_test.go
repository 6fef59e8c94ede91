package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (stubEmbedder) Model() string { return "stub" }

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.DocumentScored(10 * time.Millisecond)
	m.DocumentScored(20 * time.Millisecond)
	m.SemanticMatchesFound(3)
	m.SemanticMatchesFound(0)
	m.CacheHits(4)
	m.CacheMisses(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsScored))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SemanticMatches))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ScoringDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.DocumentScored(time.Second)
	m.SemanticMatchesFound(1)
	m.CacheHits(1)
	m.CacheMisses(1)
	require.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "metrics.prom")))

	e := stubEmbedder{}
	assert.Equal(t, e, m.InstrumentEmbedder(e))
}

func TestInstrumentEmbedder(t *testing.T) {
	t.Parallel()

	m := New()

	ok := m.InstrumentEmbedder(stubEmbedder{})
	_, err := ok.Embed(context.Background(), []string{"python", "sql"})
	require.NoError(t, err)
	assert.Equal(t, "stub", ok.Model())

	upstream := errors.New("unavailable")
	failing := m.InstrumentEmbedder(stubEmbedder{err: upstream})
	_, err = failing.Embed(context.Background(), []string{"go"})
	assert.ErrorIs(t, err, upstream)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingRequests.WithLabelValues("stub", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingRequests.WithLabelValues("stub", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EmbeddingTexts))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.DocumentScored(time.Millisecond)

	path := filepath.Join(t.TempDir(), "profile_matcher.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "profile_matcher_documents_scored_total 1"))
}
