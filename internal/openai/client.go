package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-3-small
	DefaultEmbeddingDimensions = 1536
	// DefaultBatchSize is the number of texts sent per embeddings request
	DefaultBatchSize = 100
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("LEXCORPUS_OPENAI_API_KEY environment variable not set")
	// ErrCountMismatch is returned when the API answers with fewer vectors than inputs
	ErrCountMismatch = errors.New("embedding count does not match input count")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        EmbeddingAPI
	dimensions int
	batchSize  int
}

type OpenAIAdapter struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIAdapter requests vectors of the given length from the model; zero
// keeps the model's native size. ada-002 has a fixed size and never receives
// the parameter.
func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel, dimensions int) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if model == openai.AdaEmbeddingV2 {
		dimensions = 0
	}
	return &OpenAIAdapter{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

// CreateEmbeddings calls the OpenAI API to create one embedding per input text
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      a.model,
		Dimensions: a.dimensions,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	BatchSize           int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return newClient(NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel, dimensions), dimensions, cfg.BatchSize)
}

func newClient(api EmbeddingAPI, dimensions, batchSize int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Client{api: api, dimensions: dimensions, batchSize: batchSize}
}

// NewClientFromEnv creates a new OpenAI client using LEXCORPUS_OPENAI_API_KEY
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("LEXCORPUS_OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// Dimensions returns the vector length every embedding is checked against.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embeddings, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings embeds texts in batches, preserving input order.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if text == "" {
			return nil, ErrEmptyText
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		batch := texts[start:end]

		embeddings, err := c.api.CreateEmbeddings(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding: %w", err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(embeddings), len(batch))
		}
		for _, embedding := range embeddings {
			if len(embedding) != c.dimensions {
				return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), c.dimensions)
			}
		}
		out = append(out, embeddings...)
	}

	return out, nil
}
