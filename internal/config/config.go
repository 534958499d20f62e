package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Optional: the offline pipeline runs without a database.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"lexcorpus-artifacts"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	InputDir    string `envconfig:"INPUT_DIR" default:"."`
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"processed"`
	SourcesFile string `envconfig:"SOURCES_FILE"`
	Workers     int    `envconfig:"WORKERS" default:"4"`

	// Static bearer key for the search API; empty disables authentication.
	APIKey string `envconfig:"API_KEY"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LEXCORPUS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("failed to process config: LEXCORPUS_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	if cfg.EmbeddingDimensions < 1 {
		return nil, fmt.Errorf("failed to process config: LEXCORPUS_EMBEDDING_DIMENSIONS must be positive, got %d", cfg.EmbeddingDimensions)
	}

	return &cfg, nil
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
