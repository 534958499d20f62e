package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/api"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

const (
	defaultPreviewPrefix = "preview"
	defaultPreviewSource = "inline"
)

// DocumentProcessor normalizes and chunks raw text.
type DocumentProcessor interface {
	Process(raw string, doc domain.SourceDocument) ([]domain.ChunkRecord, error)
}

type ChunkHandler struct {
	chunker DocumentProcessor
}

func NewChunkHandler(chunker DocumentProcessor) *ChunkHandler {
	return &ChunkHandler{chunker: chunker}
}

type ChunkRequest struct {
	Text     string `json:"text"`
	Mode     string `json:"mode"`
	IDPrefix string `json:"id_prefix"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

type ChunkResponse struct {
	Count   int                  `json:"count"`
	Records []domain.ChunkRecord `json:"records"`
}

// Preview chunks the posted text without touching storage or the index.
func (h *ChunkHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			api.HandleError(w, err)
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	doc := domain.SourceDocument{
		RawName:  orDefault(req.Source, defaultPreviewSource),
		Mode:     mode,
		IDPrefix: orDefault(req.IDPrefix, defaultPreviewPrefix),
		Category: req.Category,
	}

	records, err := h.chunker.Process(req.Text, doc)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if records == nil {
		records = []domain.ChunkRecord{}
	}

	api.Success(w, http.StatusOK, ChunkResponse{Count: len(records), Records: records})
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
