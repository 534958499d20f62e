package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			log.Printf("response encode error: %v", err)
		}
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps domain errors, including wrapped ones, to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type.
// Causes of 5xx errors are logged, not returned to the client.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)
	resp := ErrorResponse{Error: err.Error()}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		if status >= http.StatusInternalServerError {
			resp.Error = domainErr.Message
		}
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		if domainErr == nil {
			resp.Error = http.StatusText(status)
		}
	}

	JSON(w, status, resp)
}
