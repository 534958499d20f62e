package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

const apiKeyPrefix = "lxc_"

// StaticKeyPrincipal is the principal reported for requests carrying the
// configured API key.
const StaticKeyPrincipal = "static-key"

// AuthService validates bearer tokens against the single configured API key.
type AuthService struct {
	keyHash []byte
}

// NewAuthService creates an AuthService for key. An empty key disables
// authentication; check Enabled before installing the middleware.
func NewAuthService(key string) *AuthService {
	if key == "" {
		return &AuthService{}
	}
	return &AuthService{keyHash: hashToken(key)}
}

// Enabled reports whether an API key is configured.
func (s *AuthService) Enabled() bool {
	return len(s.keyHash) > 0
}

func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !s.Enabled() || token == "" {
		return "", domain.ErrInvalidAPIKey
	}

	if subtle.ConstantTimeCompare(hashToken(token), s.keyHash) != 1 {
		return "", domain.ErrInvalidAPIKey
	}

	return StaticKeyPrincipal, nil
}

// GenerateAPIKey returns a fresh random key in the lxc_<64 hex> format.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

// IsValidAPIToken reports whether token has the format GenerateAPIKey produces.
func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
