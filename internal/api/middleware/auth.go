package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/api"
	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

type contextKey string

const (
	PrincipalKey     contextKey = "principal"
	principalSlotKey contextKey = "principal_slots"
)

// AuthValidator resolves a bearer token to a principal name.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// APIKeyAuth requires "Authorization: Bearer <key>" on every request.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, "invalid authorization format")
				return
			}

			principal, err := validator.ValidateAPIKey(r.Context(), strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid api key")
				return
			}

			reportPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), PrincipalKey, principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	api.JSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: msg, Code: domain.ErrCodeUnauthorized})
}

// withPrincipalSlot registers slot to receive the principal once auth runs
// further down the chain. Outer middleware see it after next returns.
func withPrincipalSlot(r *http.Request, slot *string) *http.Request {
	prev, _ := r.Context().Value(principalSlotKey).([]*string)
	slots := make([]*string, 0, len(prev)+1)
	slots = append(slots, prev...)
	slots = append(slots, slot)
	return r.WithContext(context.WithValue(r.Context(), principalSlotKey, slots))
}

func reportPrincipal(ctx context.Context, principal string) {
	slots, _ := ctx.Value(principalSlotKey).([]*string)
	for _, slot := range slots {
		*slot = principal
	}
}

// GetPrincipal returns the authenticated principal, or "" on open routes.
func GetPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(PrincipalKey).(string)
	return principal
}
