package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testRecord = domain.ChunkRecord{
	ID:           "law_0001",
	Title:        "목적 제1조",
	Text:         "이 법은 상속에 관한 사항을 규정함을 목적으로 한다.",
	Source:       "law.pdf",
	Category:     "법령",
	ArticleID:    "제1조",
	ArticleTitle: "목적",
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSearchHandler_Search(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("Search", mock.Anything, domain.SearchQuery{Query: "상속", Category: "법령", Limit: 5}).
		Return([]*domain.SearchResult{{Chunk: testRecord, Score: 0.8}}, nil)

	body, _ := json.Marshal(SearchRequest{Query: "상속", Category: "법령", Limit: 5})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	NewSearchHandler(svc).Search(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data SearchResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "law_0001", resp.Data.Results[0].ID)
	assert.Equal(t, "제1조", resp.Data.Results[0].ArticleID)
	assert.InDelta(t, 0.8, resp.Data.Results[0].Score, 1e-9)
	svc.AssertExpectations(t)
}

func TestSearchHandler_Search_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty query", domain.ErrEmptyQuery, http.StatusBadRequest},
		{"no embedder", domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSearchService)
			svc.On("Search", mock.Anything, mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":""}`))
			w := httptest.NewRecorder()

			NewSearchHandler(svc).Search(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSearchHandler_Search_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()

	NewSearchHandler(new(MockSearchService)).Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_GetChunk(t *testing.T) {
	svc := new(MockSearchService)
	indexedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc.On("GetChunk", mock.Anything, "law_0001").
		Return(&domain.IndexedChunk{ChunkRecord: testRecord, Seq: 3, IndexedAt: indexedAt}, nil)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/chunks/law_0001", nil), map[string]string{"id": "law_0001"})
	w := httptest.NewRecorder()

	NewSearchHandler(svc).GetChunk(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChunkDetailResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "law_0001", resp.Data.ID)
	assert.Equal(t, 3, resp.Data.Seq)
	assert.Equal(t, "2026-10-01T12:00:00Z", resp.Data.IndexedAt)
}

func TestSearchHandler_GetChunk_NotFound(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("GetChunk", mock.Anything, "nope").Return(nil, domain.ErrChunkNotFound)

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/chunks/nope", nil), map[string]string{"id": "nope"})
	w := httptest.NewRecorder()

	NewSearchHandler(svc).GetChunk(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchHandler_ListSourceChunks(t *testing.T) {
	svc := new(MockSearchService)
	page := &service.ChunkPageResult{
		Items:      []*domain.IndexedChunk{{ChunkRecord: testRecord}},
		NextCursor: "abc",
		HasMore:    true,
	}
	svc.On("ListSourceChunks", mock.Anything, "law.pdf", "cur", 25).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/sources/law.pdf/chunks?cursor=cur&limit=25", nil)
	req = withURLParams(req, map[string]string{"source": "law.pdf"})
	w := httptest.NewRecorder()

	NewSearchHandler(svc).ListSourceChunks(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChunkListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.True(t, resp.Data.HasMore)
	assert.Equal(t, "abc", resp.Data.NextCursor)
	svc.AssertExpectations(t)
}

func TestSearchHandler_ListSourceChunks_InvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sources/law.pdf/chunks?limit=abc", nil)
	req = withURLParams(req, map[string]string{"source": "law.pdf"})
	w := httptest.NewRecorder()

	NewSearchHandler(new(MockSearchService)).ListSourceChunks(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHandler_ListSourceChunks_InvalidCursor(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("ListSourceChunks", mock.Anything, "law.pdf", "%%%", 0).Return(nil, domain.ErrInvalidCursor)

	req := httptest.NewRequest(http.MethodGet, "/sources/law.pdf/chunks?cursor=%25%25%25", nil)
	req = withURLParams(req, map[string]string{"source": "law.pdf"})
	w := httptest.NewRecorder()

	NewSearchHandler(svc).ListSourceChunks(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
