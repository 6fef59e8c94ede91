// Package gemini implements the embedding service on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/profile-matcher/internal/ai"
	"github.com/spigell/profile-matcher/internal/logger"
	"github.com/spigell/profile-matcher/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel        = "text-embedding-004"
	defaultMaxRetries   = 3
	defaultMaxLogLength = 200
	// Gemini accepts at most 100 contents per embedding request.
	maxBatchSize = 100

	taskType        = "SEMANTIC_SIMILARITY"
	retryBackoff    = 2 * time.Second
	maxQuotaBackoff = 30 * time.Second
)

var wait = utils.WaitFor

var retryAfterRe = regexp.MustCompile(`retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

type embedContentAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder wraps the Google GenAI client to embed texts.
type Embedder struct {
	models     embedContentAPI
	model      string
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger
}

// Config configures the Gemini embedder.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// NewEmbedder creates an Embedder configured for the Gemini API backend.
func NewEmbedder(ctx context.Context, cfg Config, log *zap.Logger) (*Embedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, log), nil
}

func newEmbedder(models embedContentAPI, cfg Config, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Embedder{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLen,
		logger:     logger.WithCommonFields(log, "gemini", model),
	}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

// Embed returns one vector per text, batching requests as the API requires.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}

	e.logger.Debug("gemini embed content request",
		zap.Int("texts", len(texts)),
		zap.Int("first_text_length", utf8.RuneCountInString(texts[0])),
		zap.String("first_text_preview", utils.TruncateForLog(texts[0], e.maxLogLen)),
	)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: taskType})
		if err == nil {
			return e.vectors(resp, len(texts))
		}

		lastErr = err
		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Warn("gemini embed content failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

func (e *Embedder) vectors(resp *genai.EmbedContentResponse, expected int) ([][]float32, error) {
	if resp == nil || len(resp.Embeddings) != expected {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("%w: gemini api returned %d embeddings for %d texts", ai.ErrMalformedResponse, got, expected)
	}

	out := make([][]float32, expected)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: gemini api returned empty embedding at %d", ai.ErrMalformedResponse, i)
		}
		out[i] = emb.Values
	}

	e.logger.Debug("gemini embed content response",
		zap.Int("embeddings", len(out)),
		zap.Int("dimensions", len(out[0])),
	)

	return out, nil
}

// retryDelay reports whether err is temporary and how long to wait before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		if m := retryAfterRe.FindStringSubmatch(strings.ToLower(apiErr.Message)); m != nil {
			seconds, perr := strconv.ParseFloat(m[1], 64)
			if perr == nil {
				delay := time.Duration(seconds * float64(time.Second))
				if delay > maxQuotaBackoff {
					return 0, false
				}
				return delay, true
			}
		}
		return retryBackoff * time.Duration(attempt), true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return retryBackoff * time.Duration(attempt), true
	default:
		return 0, false
	}
}
