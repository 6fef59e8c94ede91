// Package cache memoizes embeddings in memory and in an optional backing store.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"strings"
	"sync"

	"github.com/spigell/profile-matcher/internal/ai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store persists vectors by key.
type Store interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Put(ctx context.Context, key string, vec []float32) error
}

// Recorder receives cache hit and miss counts.
type Recorder interface {
	CacheHits(n int)
	CacheMisses(n int)
}

// Embedder wraps another embedder with a cache.
type Embedder struct {
	next   ai.Embedder
	store  Store
	rec    Recorder
	logger *zap.Logger

	mu     sync.RWMutex
	memory map[string][]float32
	group  singleflight.Group
}

// Option configures the cache.
type Option func(*Embedder)

// WithStore adds a backing store consulted after the memory cache.
func WithStore(s Store) Option {
	return func(e *Embedder) { e.store = s }
}

// WithRecorder reports hits and misses to r.
func WithRecorder(r Recorder) Option {
	return func(e *Embedder) { e.rec = r }
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Embedder) {
		if l != nil {
			e.logger = l
		}
	}
}

// New wraps next.
func New(next ai.Embedder, opts ...Option) *Embedder {
	e := &Embedder{
		next:   next,
		logger: zap.NewNop(),
		memory: make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the wrapped model name.
func (e *Embedder) Model() string {
	return e.next.Model()
}

// Embed serves cached vectors and embeds the rest in one call to the wrapped embedder.
// Concurrent identical requests share a single upstream call.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missing []int
	for i, text := range texts {
		keys[i] = e.key(text)
		if vec, ok := e.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, i)
	}

	e.record(len(texts)-len(missing), len(missing))

	if len(missing) == 0 {
		return out, nil
	}

	missingTexts := make([]string, len(missing))
	missingKeys := make([]string, len(missing))
	for j, i := range missing {
		missingTexts[j] = texts[i]
		missingKeys[j] = keys[i]
	}

	v, err, _ := e.group.Do(strings.Join(missingKeys, ","), func() (any, error) {
		vectors, err := ai.EmbedChecked(ctx, e.next, missingTexts)
		if err != nil {
			return nil, err
		}
		for j, vec := range vectors {
			e.remember(ctx, missingKeys[j], vec)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}

	vectors := v.([][]float32)
	for j, i := range missing {
		out[i] = clone(vectors[j])
	}

	return out, nil
}

func (e *Embedder) key(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, e.next.Model())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	e.mu.RLock()
	vec, ok := e.memory[key]
	e.mu.RUnlock()
	if ok {
		return clone(vec), true
	}

	if e.store == nil {
		return nil, false
	}

	vec, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	e.memory[key] = clone(vec)
	e.mu.Unlock()

	return vec, true
}

func (e *Embedder) remember(ctx context.Context, key string, vec []float32) {
	e.mu.Lock()
	e.memory[key] = clone(vec)
	e.mu.Unlock()

	if e.store == nil {
		return
	}

	if err := e.store.Put(ctx, key, vec); err != nil {
		e.logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (e *Embedder) record(hits, misses int) {
	if e.rec == nil {
		return
	}
	e.rec.CacheHits(hits)
	e.rec.CacheMisses(misses)
}

func clone(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
