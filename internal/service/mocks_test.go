package service

import (
	"context"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the OpenAI client
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) ReplaceSource(ctx context.Context, source string, chunks []domain.IndexedChunk) error {
	args := m.Called(ctx, source, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters ChunkFilters, limit int) ([]*domain.SearchResult, error) {
	args := m.Called(ctx, embedding, filters, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SearchResult), args.Error(1)
}

func (m *MockChunkRepository) GetByID(ctx context.Context, id string) (*domain.IndexedChunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexedChunk), args.Error(1)
}

func (m *MockChunkRepository) ListBySource(ctx context.Context, source string, cursor *pagination.Cursor, limit int) (*ChunkPageResult, error) {
	args := m.Called(ctx, source, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChunkPageResult), args.Error(1)
}

type MockIndexJobRepository struct {
	mock.Mock
}

func (m *MockIndexJobRepository) Create(ctx context.Context, job *domain.IndexJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockIndexJobRepository) GetByID(ctx context.Context, id string) (*domain.IndexJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexJob), args.Error(1)
}

func (m *MockIndexJobRepository) UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

type fixedUUIDGenerator struct {
	ids []string
	n   int
}

func (g *fixedUUIDGenerator) NewString() string {
	id := g.ids[g.n%len(g.ids)]
	g.n++
	return id
}

type testTxRepos struct {
	chunks    ChunkRepositoryInterface
	indexJobs IndexJobRepositoryInterface
}

func (t *testTxRepos) Chunks() ChunkRepositoryInterface {
	return t.chunks
}

func (t *testTxRepos) IndexJobs() IndexJobRepositoryInterface {
	return t.indexJobs
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
