package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIClientWithCmd resolves credentials from the --api-key and --api-url
// flags of cmd, then the environment (including .env), then the global config.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var flagKey, flagURL string
	if cmd != nil {
		flagKey, _ = cmd.Flags().GetString("api-key")
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	creds, err := ResolveCredentials(flagKey, flagURL)
	if err != nil {
		return nil, err
	}
	return NewAPIClientWithConfig(creds.APIKey, creds.APIURL), nil
}

// NewAPIClientWithConfig creates an APIClient with explicit settings.
func NewAPIClientWithConfig(apiKey, baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body interface{}) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// GetData performs a GET request and decodes the data envelope into out.
func (c *APIClient) GetData(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	return decodeData(resp, out)
}

// PostData performs a POST request and decodes the data envelope into out.
func (c *APIClient) PostData(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return err
	}
	return decodeData(resp, out)
}

func decodeData(resp *APIResponse, out interface{}) error {
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(respBody)),
			}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiResp.Code,
			Message:    apiResp.Error,
		}
	}

	return &apiResp, nil
}
