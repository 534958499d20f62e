package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/api"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/go-chi/chi/v5"
)

type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) ([]*domain.SearchResult, error)
	GetChunk(ctx context.Context, id string) (*domain.IndexedChunk, error)
	ListSourceChunks(ctx context.Context, source, cursor string, limit int) (*service.ChunkPageResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Limit    int    `json:"limit"`
}

type SearchResultResponse struct {
	domain.ChunkRecord
	Score float64 `json:"score"`
}

type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []SearchResultResponse `json:"results"`
}

type ChunkDetailResponse struct {
	domain.ChunkRecord
	Seq       int    `json:"seq"`
	IndexedAt string `json:"indexed_at"`
}

type ChunkListResponse struct {
	Items      []ChunkDetailResponse `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
}

func chunkToResponse(c *domain.IndexedChunk) ChunkDetailResponse {
	return ChunkDetailResponse{
		ChunkRecord: c.ChunkRecord,
		Seq:         c.Seq,
		IndexedAt:   c.IndexedAt.UTC().Format(time.RFC3339),
	}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.svc.Search(r.Context(), domain.SearchQuery{
		Query:    req.Query,
		Category: req.Category,
		Source:   req.Source,
		Limit:    req.Limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := SearchResponse{Query: req.Query, Results: make([]SearchResultResponse, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, SearchResultResponse{ChunkRecord: res.Chunk, Score: res.Score})
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *SearchHandler) GetChunk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	chunk, err := h.svc.GetChunk(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, chunkToResponse(chunk))
}

func (h *SearchHandler) ListSourceChunks(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if source == "" {
		api.Error(w, http.StatusBadRequest, "source is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.ListSourceChunks(r.Context(), source, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ChunkListResponse{
		Items:      make([]ChunkDetailResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, c := range page.Items {
		resp.Items = append(resp.Items, chunkToResponse(c))
	}

	api.Success(w, http.StatusOK, resp)
}
