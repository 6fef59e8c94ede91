package openai

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spigell/profile-matcher/internal/ai"
	"go.uber.org/zap"
)

func TestClientEmbed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 2 {
			t.Errorf("unexpected request body: %+v", req)
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		// indexes out of order
		_, _ = gz.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	c, err := New(Config{BaseURL: server.URL + "/v1/", APIKey: "secret", Model: "test-model"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors, err := c.Embed(context.Background(), []string{"python", "sql"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "api error message",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"invalid key","type":"auth"}}`,
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "invalid key") {
					t.Fatalf("expected api error message, got %v", err)
				}
			},
		},
		{
			name:   "wrong vector count",
			status: http.StatusOK,
			body:   `{"data":[{"index":0,"embedding":[1]}]}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ai.ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ai.ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := New(Config{BaseURL: server.URL, APIKey: "secret"}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = c.Embed(context.Background(), []string{"a", "b"})
			tt.check(t, err)
		})
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, nil); err == nil {
		t.Fatalf("expected error without api key")
	}
}
