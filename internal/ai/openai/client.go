// Package openai implements the embedding service against OpenAI-compatible
// /embeddings endpoints.
package openai

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spigell/profile-matcher/internal/ai"
	"github.com/spigell/profile-matcher/internal/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"

	contentType     = "application/json"
	acceptEncoding  = "gzip"
	maxResponseSize = 64 << 20
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client embeds texts through a single POST {BaseURL}/embeddings call per batch.
type Client struct {
	HTTPClient *http.Client

	baseURL string
	apiKey  string
	model   string
	logger  *zap.Logger
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New returns a client for cfg.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		logger:     logger.WithCommonFields(log, "openai", model),
	}, nil
}

// Model returns the embedding model name.
func (c *Client) Model() string {
	return c.model
}

// Embed returns one vector per text in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}

	parsed, err := c.parseResponse(resp)
	if err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ai.ErrMalformedResponse, len(parsed.Data), len(texts))
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	out := make([][]float32, len(parsed.Data))
	for i, item := range parsed.Data {
		out[i] = item.Embedding
	}

	return out, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	return resp, nil
}

func (c *Client) parseResponse(resp *http.Response) (*embeddingResponse, error) {
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(io.LimitReader(body, maxResponseSize)).Decode(&parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("bad status: %s", resp.Status)
		}
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("bad status: %s: %s", resp.Status, parsed.Error.Message)
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return &parsed, nil
}
