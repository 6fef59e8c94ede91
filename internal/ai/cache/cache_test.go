package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) Model() string { return "counting" }

type recorder struct {
	hits, misses int
}

func (r *recorder) CacheHits(n int)   { r.hits += n }
func (r *recorder) CacheMisses(n int) { r.misses += n }

func TestEmbedderServesRepeatsFromMemory(t *testing.T) {
	t.Parallel()

	next := &countingEmbedder{}
	rec := &recorder{}
	e := New(next, WithRecorder(rec))

	first, err := e.Embed(context.Background(), []string{"python", "sql"})
	require.NoError(t, err)

	second, err := e.Embed(context.Background(), []string{"sql", "go", "python"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"python", "sql"}, {"go"}}, next.calls)
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, []float32{2, 1}, second[1])
	assert.Equal(t, 2, rec.hits)
	assert.Equal(t, 3, rec.misses)
	assert.Equal(t, "counting", e.Model())
}

func TestEmbedderReturnsCopies(t *testing.T) {
	t.Parallel()

	e := New(&countingEmbedder{})

	first, err := e.Embed(context.Background(), []string{"python"})
	require.NoError(t, err)
	first[0][0] = 42

	second, err := e.Embed(context.Background(), []string{"python"})
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 1}, second[0])
}

func TestEmbedderPropagatesErrors(t *testing.T) {
	t.Parallel()

	upstream := errors.New("quota exceeded")
	e := New(&countingEmbedder{err: upstream})

	_, err := e.Embed(context.Background(), []string{"python"})
	assert.ErrorIs(t, err, upstream)
}

func TestEmbedderUsesDiskStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	first := &countingEmbedder{}
	_, err = New(first, WithStore(store)).Embed(context.Background(), []string{"machine learning"})
	require.NoError(t, err)
	require.Len(t, first.calls, 1)

	second := &countingEmbedder{}
	vectors, err := New(second, WithStore(store)).Embed(context.Background(), []string{"machine learning"})
	require.NoError(t, err)

	assert.Empty(t, second.calls)
	assert.Equal(t, [][]float32{{16, 1}}, vectors)

	entries, err := filepath.Glob(filepath.Join(dir, "*.bin"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiskStoreRejectsCorruptEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.bin"), []byte{3, 0, 0, 0, 1}, 0o644))

	_, ok, err := store.Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	vec := []float32{0.25, -1.5, 3}
	got, err := decode(encode(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	_, err = decode([]byte{1, 0})
	assert.Error(t, err)
}
