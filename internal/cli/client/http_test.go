package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	t        *testing.T
	lastAuth string
	lastPath string
	lastBody map[string]interface{}
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lastAuth = r.Header.Get("Authorization")
	f.lastPath = r.URL.RequestURI()
	f.lastBody = nil
	if r.Body != nil && r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.body))
}

func newFakeAPI(t *testing.T, status int, body string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{t: t, status: status, body: body}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

// runClientCmd runs cmd as a child of a root carrying the persistent flags.
func runClientCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "lexcorpus"}
	root.PersistentFlags().Bool("output", false, "")
	root.PersistentFlags().String("api-key", "", "")
	root.PersistentFlags().String("api-url", "", "")
	root.AddCommand(cmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAPIClient_SendsBearerOnlyWithKey(t *testing.T) {
	f, srv := newFakeAPI(t, http.StatusOK, `{"data":{"status":"ok"}}`)

	_, err := NewAPIClientWithConfig("", srv.URL).Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	assert.Empty(t, f.lastAuth)

	_, err = NewAPIClientWithConfig(validKey, srv.URL+"/").Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+validKey, f.lastAuth)
	assert.Equal(t, "/health", f.lastPath)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	_, srv := newFakeAPI(t, http.StatusNotFound, `{"error":"[NOT_FOUND] chunk not found","code":"NOT_FOUND"}`)

	_, err := NewAPIClientWithConfig("", srv.URL).Get(context.Background(), "/chunks/x", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestAPIClient_NonJSONError(t *testing.T) {
	_, srv := newFakeAPI(t, http.StatusBadGateway, "bad gateway")

	_, err := NewAPIClientWithConfig("", srv.URL).Get(context.Background(), "/health", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestSearchCmd(t *testing.T) {
	useTempConfigDir(t)
	f, srv := newFakeAPI(t, http.StatusOK, `{"data":{"query":"상속 순위","results":[`+
		`{"id":"law_0001","title":"목적 제1조","text":"이 법은 상속에 관한 사항을 규정한다.","source":"law.pdf","category":"법령","score":0.91}]}}`)

	out, err := runClientCmd(t, SearchCmd(), "search", "--api-url", srv.URL, "-c", "법령", "상속", "순위")
	require.NoError(t, err)

	assert.Equal(t, "/search", f.lastPath)
	assert.Equal(t, "상속 순위", f.lastBody["query"])
	assert.Equal(t, "법령", f.lastBody["category"])
	assert.Contains(t, out, "Found 1 results")
	assert.Contains(t, out, "law_0001")
	assert.Contains(t, out, "0.910")
}

func TestGetCmd_JSON(t *testing.T) {
	useTempConfigDir(t)
	f, srv := newFakeAPI(t, http.StatusOK, `{"data":{"id":"law_0001","title":"목적 제1조","text":"본문","source":"law.pdf","category":"법령","seq":0}}`)

	out, err := runClientCmd(t, GetCmd(), "get", "--api-url", srv.URL, "--output", "law_0001")
	require.NoError(t, err)

	assert.Equal(t, "/chunks/law_0001", f.lastPath)
	var chunk Chunk
	require.NoError(t, json.Unmarshal([]byte(out), &chunk))
	assert.Equal(t, "law_0001", chunk.ID)
}

func TestChunksCmd_Pagination(t *testing.T) {
	useTempConfigDir(t)
	f, srv := newFakeAPI(t, http.StatusOK, `{"data":{"items":[{"id":"law_0001","title":"목적 제1조","seq":0}],"next_cursor":"abc","has_more":true}}`)

	out, err := runClientCmd(t, ChunksCmd(), "chunks", "--api-url", srv.URL, "--cursor", "xyz", "-n", "1", "law.pdf")
	require.NoError(t, err)

	assert.Equal(t, "/sources/law.pdf/chunks?cursor=xyz&limit=1", f.lastPath)
	assert.Contains(t, out, "law_0001")
	assert.Contains(t, out, "--cursor abc")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "짧은 글", truncateRunes("짧은 글", 10))
	assert.Equal(t, "가나...", truncateRunes("가나다라마바", 5))
	assert.Equal(t, "a b", truncateRunes("a\nb", 10))
}
