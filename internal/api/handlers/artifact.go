package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/api"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/go-chi/chi/v5"
)

type ArtifactStore interface {
	Head(ctx context.Context, key string) (*storage.ObjectMetadata, error)
	Location(key string) string
}

// URLSigner is implemented by stores that can hand out direct download links.
type URLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

type ArtifactHandler struct {
	store ArtifactStore
}

func NewArtifactHandler(store ArtifactStore) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

type ArtifactResponse struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	ContentLength int64  `json:"content_length"`
	ContentType   string `json:"content_type,omitempty"`
	ETag          string `json:"etag,omitempty"`
	LastModified  string `json:"last_modified,omitempty"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	meta, err := h.store.Head(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ArtifactResponse{
		Name:          name,
		Location:      h.store.Location(name),
		ContentLength: meta.ContentLength,
		ContentType:   meta.ContentType,
		ETag:          meta.ETag,
	}
	if !meta.LastModified.IsZero() {
		resp.LastModified = meta.LastModified.UTC().Format(time.RFC3339)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *ArtifactHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	signer, ok := h.store.(URLSigner)
	if !ok {
		api.Error(w, http.StatusNotImplemented, "download urls require object storage")
		return
	}

	// presigning succeeds for missing keys, so check existence first
	if _, err := h.store.Head(r.Context(), name); err != nil {
		api.HandleError(w, err)
		return
	}

	url, err := signer.GenerateDownloadURL(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadURLResponse{DownloadURL: url})
}
