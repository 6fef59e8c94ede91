package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/spigell/profile-matcher/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

type fakeModels struct {
	mu     sync.Mutex
	queue  []fakeResponse
	calls  int
	models []string
	sizes  []int
	tasks  []string
}

func (f *fakeModels) enqueue(resp *genai.EmbedContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.models = append(f.models, model)
	f.sizes = append(f.sizes, len(contents))
	if config != nil {
		f.tasks = append(f.tasks, config.TaskType)
	}

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func embeddings(vectors ...[]float32) *genai.EmbedContentResponse {
	resp := &genai.EmbedContentResponse{}
	for _, v := range vectors {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: v})
	}
	return resp
}

func noWait(t *testing.T) {
	t.Helper()
	original := wait
	wait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { wait = original })
}

func TestEmbedderEmbed(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(embeddings([]float32{1, 0}, []float32{0, 1}), nil)

	e := newEmbedder(models, Config{}, zap.NewNop())

	vectors, err := e.Embed(context.Background(), []string{"python", "sql"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 2 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}

	if e.Model() != defaultModel || models.models[0] != defaultModel {
		t.Fatalf("expected default model, got %q", models.models)
	}

	if models.tasks[0] != taskType {
		t.Fatalf("expected task type %q, got %q", taskType, models.tasks[0])
	}
}

func TestEmbedderBatches(t *testing.T) {
	models := &fakeModels{}

	texts := make([]string, maxBatchSize+1)
	first := make([][]float32, maxBatchSize)
	for i := range texts {
		texts[i] = "text"
	}
	for i := range first {
		first[i] = []float32{1}
	}
	models.enqueue(embeddings(first...), nil)
	models.enqueue(embeddings([]float32{2}), nil)

	e := newEmbedder(models, Config{Model: "custom"}, zap.NewNop())

	vectors, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != len(texts) || vectors[maxBatchSize][0] != 2 {
		t.Fatalf("unexpected vectors count %d", len(vectors))
	}

	if len(models.sizes) != 2 || models.sizes[0] != maxBatchSize || models.sizes[1] != 1 {
		t.Fatalf("unexpected batch sizes: %v", models.sizes)
	}
}

func TestEmbedderRetriesOnTemporaryError(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(embeddings([]float32{1}), nil)

	e := newEmbedder(models, Config{MaxRetries: 2}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestEmbedderStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	e := newEmbedder(models, Config{MaxRetries: 2}, zap.NewNop())

	_, err := e.Embed(context.Background(), []string{"python"})
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected api error to propagate, got %v", err)
	}

	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestEmbedderDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	e := newEmbedder(models, Config{MaxRetries: 3}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if models.calls != 1 {
		t.Fatalf("expected single call, got %d", models.calls)
	}
}

func TestEmbedderDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	e := newEmbedder(models, Config{MaxRetries: 3}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error")
	}

	if models.calls != 1 {
		t.Fatalf("expected single call, got %d", models.calls)
	}
}

func TestEmbedderMalformedResponse(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(embeddings([]float32{1}), nil)

	e := newEmbedder(models, Config{}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"a", "b"}); !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	delay, retry := retryDelay(genai.APIError{Code: http.StatusTooManyRequests, Message: "Retry in 5s"}, 1)
	if !retry || delay != 5*time.Second {
		t.Fatalf("expected 5s retry, got %v %v", delay, retry)
	}

	delay, retry = retryDelay(genai.APIError{Code: http.StatusBadGateway}, 2)
	if !retry || delay != 2*retryBackoff {
		t.Fatalf("expected linear backoff, got %v %v", delay, retry)
	}

	if _, retry := retryDelay(errors.New("plain"), 1); retry {
		t.Fatalf("plain errors must not be retried")
	}
}
