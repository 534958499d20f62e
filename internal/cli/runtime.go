package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/lexcorpus/internal/config"
	"github.com/cloo-solutions/lexcorpus/internal/database"
	"github.com/cloo-solutions/lexcorpus/internal/openai"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/cloo-solutions/lexcorpus/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"
)

// InitTelemetry starts Sentry when a DSN is configured and returns the flush
// function. Sampling is 100% in development and 10% elsewhere.
func InitTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}

// OpenArtifactStore returns the S3 store when S3 is configured and preferS3 is
// set, otherwise a local store rooted at dir.
func OpenArtifactStore(ctx context.Context, cfg *config.Config, dir string, preferS3 bool) (storage.ArtifactStore, error) {
	if preferS3 && cfg.HasS3() {
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("artifacts: s3://%s", cfg.S3Bucket)
		return client, nil
	}

	store, err := storage.NewLocalStore(dir)
	if err != nil {
		return nil, err
	}
	log.Printf("artifacts: %s", dir)
	return store, nil
}

// OpenDatabase connects to DATABASE_URL and, unless skipMigrate is set,
// applies pending migrations from migrationsDir.
func OpenDatabase(ctx context.Context, cfg *config.Config, migrationsDir string, skipMigrate bool) (*pgxpool.Pool, error) {
	if !cfg.HasDatabase() {
		return nil, fmt.Errorf("LEXCORPUS_DATABASE_URL is not set")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	log.Println("connected to database")

	if !skipMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL, migrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return pool, nil
}

// NewEmbedder builds the OpenAI embeddings client from configuration.
func NewEmbedder(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, openai.ErrNoAPIKey
	}
	if cfg.EmbeddingDimensions != openai.DefaultEmbeddingDimensions {
		log.Printf("warning: embedding dimensions %d differ from the chunks.embedding column (%d)",
			cfg.EmbeddingDimensions, openai.DefaultEmbeddingDimensions)
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	}), nil
}
