package server

import (
	"net/http"

	"github.com/cloo-solutions/lexcorpus/internal/api"
	"github.com/cloo-solutions/lexcorpus/internal/api/handlers"
	"github.com/cloo-solutions/lexcorpus/internal/api/middleware"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes int64 = 5 * 1024 * 1024

// RouterConfig wires handlers into the router. A nil AuthValidator leaves the
// retrieval routes open; a nil SearchHandler or ArtifactHandler makes their
// routes answer 503.
type RouterConfig struct {
	AuthValidator   middleware.AuthValidator
	ChunkHandler    *handlers.ChunkHandler
	SearchHandler   *handlers.SearchHandler
	ArtifactHandler *handlers.ArtifactHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chunk", cfg.ChunkHandler.Preview)

	r.Group(func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		if cfg.SearchHandler != nil {
			r.Post("/search", cfg.SearchHandler.Search)
			r.Get("/chunks/{id}", cfg.SearchHandler.GetChunk)
			r.Get("/sources/{source}/chunks", cfg.SearchHandler.ListSourceChunks)
		} else {
			r.Post("/search", unavailable(domain.ErrIndexUnavailable))
			r.Get("/chunks/{id}", unavailable(domain.ErrIndexUnavailable))
			r.Get("/sources/{source}/chunks", unavailable(domain.ErrIndexUnavailable))
		}

		if cfg.ArtifactHandler != nil {
			r.Route("/artifacts/{name}", func(r chi.Router) {
				r.Get("/", cfg.ArtifactHandler.Get)
				r.Get("/url", cfg.ArtifactHandler.GetDownloadURL)
			})
		}
	})

	return r
}

func unavailable(err error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.HandleError(w, err)
	}
}
