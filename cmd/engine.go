package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/ai"
	"github.com/spigell/profile-matcher/internal/ai/cache"
	"github.com/spigell/profile-matcher/internal/ai/gemini"
	"github.com/spigell/profile-matcher/internal/ai/hashing"
	"github.com/spigell/profile-matcher/internal/ai/openai"
	"github.com/spigell/profile-matcher/internal/inspect"
	"github.com/spigell/profile-matcher/internal/logger"
	"github.com/spigell/profile-matcher/internal/metrics"
	"github.com/spigell/profile-matcher/internal/nlp"
	"github.com/spigell/profile-matcher/internal/phrase"
	"github.com/spigell/profile-matcher/internal/scoring"
	"github.com/spigell/profile-matcher/internal/secrets"
	"github.com/spigell/profile-matcher/internal/semantic"
	"github.com/spigell/profile-matcher/internal/vocabulary"
)

const (
	providerHashing = "hashing"
	providerGemini  = "gemini"
	providerOpenAI  = "openai"
)

// engine holds every component of a matching run. It is built once per command.
type engine struct {
	config    *Config
	logger    *zap.Logger
	analyzer  nlp.Analyzer
	registry  *vocabulary.Registry
	embedder  ai.Embedder
	phrases   *phrase.Matcher
	semantic  *semantic.Matcher
	scorer    *scoring.Scorer
	inspector *inspect.Inspector
	metrics   *metrics.Metrics

	closers []func() error
}

// setup builds the logger and reads the config the way every command needs them.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	return logger, config
}

// newEngine builds the text components: analyzer, vocabulary, phrase matcher
// and inspector. Commands that need embeddings call enableEmbedding next.
func newEngine(config *Config, log *zap.Logger) (*engine, error) {
	e := &engine{
		config:   config,
		logger:   log,
		analyzer: nlp.NewEnglish(),
		metrics:  metrics.New(),
	}

	registry := vocabulary.Default()
	if path := strings.TrimSpace(config.VocabularyFile); path != "" {
		loaded, err := vocabulary.Load(path)
		if err != nil {
			return nil, err
		}
		registry = loaded
		log.Info("vocabulary loaded", zap.String("path", path))
	}
	e.registry = registry

	phrases, err := phrase.NewMatcher(e.analyzer, registry, log.Named("phrase"))
	if err != nil {
		return nil, fmt.Errorf("building phrase matcher: %w", err)
	}
	e.phrases = phrases

	e.inspector = inspect.New(e.analyzer)

	return e, nil
}

// enableEmbedding builds the embedding service, the semantic matcher and the scorer.
func (e *engine) enableEmbedding(ctx context.Context) error {
	if err := semantic.ValidateThreshold(e.config.Semantic.Threshold); err != nil {
		return err
	}

	embedder, err := e.newEmbedder(ctx, e.config.Embedding)
	if err != nil {
		return err
	}
	e.embedder = embedder

	e.semantic = semantic.NewMatcher(e.analyzer, embedder, e.logger.Named("semantic"))

	scorer, err := scoring.NewScorer(e.phrases, embedder,
		scoring.Weights{Phrase: e.config.Scoring.PhraseWeight, Semantic: e.config.Scoring.SemanticWeight},
		scoring.WithWorkers(e.config.Scoring.Workers),
		scoring.WithRecorder(e.metrics),
		scoring.WithLogger(e.logger.Named("scoring")),
	)
	if err != nil {
		return err
	}
	e.scorer = scorer

	return nil
}

// newEmbedder builds the configured provider. Remote providers are throttled;
// every provider is instrumented and cached.
func (e *engine) newEmbedder(ctx context.Context, cfg *EmbeddingConfig) (ai.Embedder, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var base ai.Embedder
	switch provider {
	case "", providerHashing:
		provider = providerHashing
		base = hashing.New(e.analyzer, cfg.Dimensions)
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		client, err := gemini.NewEmbedder(ctx, gemini.Config{
			APIKey:       apiKey,
			Model:        cfg.Gemini.Model,
			MaxRetries:   cfg.Gemini.MaxRetries,
			MaxLogLength: cfg.Gemini.MaxLogLength,
		}, e.logger)
		if err != nil {
			return nil, err
		}
		base = ai.Throttle(client, cfg.RequestsPerSecond, cfg.Burst)
	case providerOpenAI:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			Env:  "OPENAI_API_KEY",
			File: cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}

		client, err := openai.New(openai.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		}, e.logger)
		if err != nil {
			return nil, err
		}
		base = ai.Throttle(client, cfg.RequestsPerSecond, cfg.Burst)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	opts := []cache.Option{
		cache.WithRecorder(e.metrics),
		cache.WithLogger(e.logger),
	}

	store, err := e.newCacheStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, cache.WithStore(store))
	}

	embedder := cache.New(e.metrics.InstrumentEmbedder(base), opts...)

	logger.WithCommonFields(e.logger, provider, embedder.Model()).Info("embedding service ready")

	return embedder, nil
}

func (e *engine) newCacheStore(ctx context.Context, cfg *CacheConfig) (cache.Store, error) {
	if cfg == nil {
		return nil, nil
	}

	if cfg.Redis != nil && strings.TrimSpace(cfg.Redis.Addr) != "" {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, store.Close)
		e.logger.Info("using redis embedding cache", zap.String("addr", cfg.Redis.Addr))
		return store, nil
	}

	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		store, err := cache.NewDiskStore(dir)
		if err != nil {
			return nil, err
		}
		e.logger.Info("using disk embedding cache", zap.String("dir", dir))
		return store, nil
	}

	return nil, nil
}

// Close writes the metrics textfile and releases external connections.
func (e *engine) Close() {
	if path := e.metricsPath(); path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			e.logger.Warn("writing metrics textfile", zap.String("path", path), zap.Error(err))
		} else {
			e.logger.Debug("metrics written", zap.String("path", path))
		}
	}

	for _, closer := range e.closers {
		if err := closer(); err != nil {
			e.logger.Warn("closing resource", zap.Error(err))
		}
	}
	e.closers = nil
}

func (e *engine) metricsPath() string {
	if e.config == nil || e.config.Metrics == nil {
		return ""
	}
	return strings.TrimSpace(e.config.Metrics.Textfile)
}

// withTimeout applies scoring.timeout when it is set.
func (e *engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Scoring.Timeout > 0 {
		return context.WithTimeout(ctx, e.config.Scoring.Timeout)
	}
	return context.WithCancel(ctx)
}
