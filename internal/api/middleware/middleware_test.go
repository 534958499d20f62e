package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesInvalidHeader(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	for _, bad := range []string{"has space", strings.Repeat("x", 129), "tab\there"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEqual(t, bad, seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	}
}

func TestMaxBodyBytes_StreamedBody(t *testing.T) {
	handler := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		assert.Error(t, err)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large"))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMaxBodyBytes(t *testing.T) {
	handler := MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body too large")
}

func TestAccessLog_RecordsPrincipal(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	validator := new(MockAuthValidator)
	validator.On("ValidateAPIKey", mock.Anything, "lxc_token").Return("static-key", nil)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := AccessLog(APIKeyAuth(validator)(inner))

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Authorization", "Bearer lxc_token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	require.NotEmpty(t, line)
	assert.Contains(t, line, `"principal":"static-key"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"path":"/search"`)
}

func TestSentryMiddleware_PassesThroughWithoutClient(t *testing.T) {
	var called bool
	handler := SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.NotNil(t, r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background()))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPrincipalSlots_AllReceivePrincipal(t *testing.T) {
	var outer, inner string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withPrincipalSlot(req, &outer)
	req = withPrincipalSlot(req, &inner)

	reportPrincipal(req.Context(), "static-key")

	assert.Equal(t, "static-key", outer)
	assert.Equal(t, "static-key", inner)
}

func TestAccessLog_RoutePattern(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	r := chi.NewRouter()
	r.Use(AccessLog)
	r.Get("/chunks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/chunks/minlaw_0001", nil))

	var entry accessLogEntry
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line[strings.Index(line, "{"):]), &entry))
	assert.Equal(t, "/chunks/{id}", entry.Route)
	assert.Equal(t, "/chunks/minlaw_0001", entry.Path)
	assert.Equal(t, http.StatusOK, entry.Status)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4312"
	assert.Equal(t, "10.0.0.5", clientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestHTTPStatusToSpanStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusOK, httpStatusToSpanStatus(http.StatusOK))
	assert.Equal(t, sentry.SpanStatusUnauthenticated, httpStatusToSpanStatus(http.StatusUnauthorized))
	assert.Equal(t, sentry.SpanStatusNotFound, httpStatusToSpanStatus(http.StatusNotFound))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, httpStatusToSpanStatus(http.StatusBadRequest))
	assert.Equal(t, sentry.SpanStatusUnavailable, httpStatusToSpanStatus(http.StatusServiceUnavailable))
	assert.Equal(t, sentry.SpanStatusInternalError, httpStatusToSpanStatus(http.StatusInternalServerError))
}
