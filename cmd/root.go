package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "profile-matcher"
)

type Config struct {
	VocabularyFile string           `mapstructure:"vocabulary-file"`
	Documents      *DocumentsConfig `mapstructure:"documents"`
	Scoring        *ScoringConfig   `mapstructure:"scoring"`
	Semantic       *SemanticConfig  `mapstructure:"semantic"`
	Embedding      *EmbeddingConfig `mapstructure:"embedding"`
	Metrics        *MetricsConfig   `mapstructure:"metrics"`
}

type DocumentsConfig struct {
	Dir         string   `mapstructure:"dir"`
	Exclude     []string `mapstructure:"exclude"`
	ExcludeFile string   `mapstructure:"exclude-file"`
}

type ScoringConfig struct {
	PhraseWeight     float64       `mapstructure:"phrase-weight"`
	SemanticWeight   float64       `mapstructure:"semantic-weight"`
	Workers          int           `mapstructure:"workers"`
	MinCombinedScore float64       `mapstructure:"min-combined-score"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type SemanticConfig struct {
	TopN      int     `mapstructure:"top-n"`
	Threshold float64 `mapstructure:"threshold"`
}

type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"`
	Dimensions        int           `mapstructure:"dimensions"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
	Burst             int           `mapstructure:"burst"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
	OpenAI            *OpenAIConfig `mapstructure:"openai"`
	Cache             *CacheConfig  `mapstructure:"cache"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	BaseURL    string        `mapstructure:"base-url"`
	Model      string        `mapstructure:"model"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Dir   string       `mapstructure:"dir"`
	Redis *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "profile-matcher matches student skill and role preferences against mentor profiles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"embedding.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"embedding.openai.api-key-file": "OPENAI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is profile-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("documents.dir", "Data/Mentor")
	viper.SetDefault("scoring.phrase-weight", 0.5)
	viper.SetDefault("scoring.semantic-weight", 0.5)
	viper.SetDefault("scoring.workers", 4)
	viper.SetDefault("semantic.top-n", 5)
	viper.SetDefault("semantic.threshold", 0.8)
	viper.SetDefault("embedding.provider", providerHashing)
	viper.SetDefault("embedding.dimensions", 256)
	viper.SetDefault("embedding.burst", 1)
	viper.SetDefault("embedding.gemini.model", "text-embedding-004")
	viper.SetDefault("embedding.gemini.max-retries", 3)
	viper.SetDefault("embedding.gemini.max-log-length", 200)
	viper.SetDefault("embedding.openai.base-url", "https://api.openai.com/v1")
	viper.SetDefault("embedding.openai.model", "text-embedding-3-small")
	viper.SetDefault("embedding.openai.timeout", 30*time.Second)
	viper.SetDefault("embedding.cache.redis.ttl", 24*time.Hour)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must exist and parse.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// Without a config file the defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
