package handlers

import (
	"context"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/stretchr/testify/mock"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, q domain.SearchQuery) ([]*domain.SearchResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SearchResult), args.Error(1)
}

func (m *MockSearchService) GetChunk(ctx context.Context, id string) (*domain.IndexedChunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexedChunk), args.Error(1)
}

func (m *MockSearchService) ListSourceChunks(ctx context.Context, source, cursor string, limit int) (*service.ChunkPageResult, error) {
	args := m.Called(ctx, source, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChunkPageResult), args.Error(1)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Head(ctx context.Context, key string) (*storage.ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ObjectMetadata), args.Error(1)
}

func (m *MockArtifactStore) Location(key string) string {
	return "mem://" + key
}

type MockSigningStore struct {
	MockArtifactStore
}

func (m *MockSigningStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
