package middleware

import (
	"net/http"

	"github.com/cloo-solutions/lexcorpus/internal/api"
)

// MaxBodyBytes caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are rejected up front; the rest get a MaxBytesReader,
// which handlers surface as 413 through api.HandleError.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Body == nil || r.Body == http.NoBody:
			case r.ContentLength > limit:
				api.HandleError(w, &http.MaxBytesError{Limit: limit})
				return
			default:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
