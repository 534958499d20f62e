//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/api/handlers"
	"github.com/cloo-solutions/lexcorpus/internal/chunker"
	"github.com/cloo-solutions/lexcorpus/internal/repository"
	"github.com/cloo-solutions/lexcorpus/internal/server"
	"github.com/cloo-solutions/lexcorpus/internal/service"
	"github.com/cloo-solutions/lexcorpus/internal/storage"
	"github.com/cloo-solutions/lexcorpus/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDims = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	Indexer      *service.IndexService
	BinaryDir    string
	APIKey       string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts Postgres and RustFS and serves the API against them
// with a deterministic embedder.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "e2e-artifacts",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	apiKey, err := service.GenerateAPIKey()
	if err != nil {
		t.Fatalf("failed to generate API key: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	embedder := hashEmbedder{}
	indexer := service.NewIndexService(s3Client, embedder, repository.NewTxRunner(pool))
	serverURL, serverCloser := startServer(t, pool, s3Client, embedder, apiKey, port)

	env := &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		Indexer:      indexer,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
	t.Cleanup(env.cleanup)
	return env
}

func (e *E2ETestEnv) cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the lexcorpus CLI
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "lexcorpus-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "lexcorpus"), "./cmd/lexcorpus")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build lexcorpus: %v\n%s", err, out)
	}
}

// RunCLI runs the lexcorpus CLI in workDir against the test server.
func (e *E2ETestEnv) RunCLI(workDir string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "lexcorpus"), args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"LEXCORPUS_API_KEY="+e.APIKey,
		"LEXCORPUS_API_URL="+e.ServerURL,
		"LEXCORPUS_DATABASE_URL=",
		"LEXCORPUS_S3_ENDPOINT=",
		"LEXCORPUS_OPENAI_API_KEY=",
		"LEXCORPUS_SENTRY_DSN=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse is the {"data"} / {"error","code"} envelope of the API.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// HTTPError is returned for 4xx/5xx responses.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Get calls the API; authToken may be empty.
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.call(http.MethodGet, path, nil, authToken)
}

// Post sends body as JSON; authToken may be empty.
func (e *E2ETestEnv) Post(path string, body any, authToken string) (*APIResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}
	return e.call(http.MethodPost, path, bytes.NewReader(payload), authToken)
}

func (e *E2ETestEnv) call(method, path string, body io.Reader, authToken string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: undecodable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Code: apiResp.Code, Message: apiResp.Error}
	}
	return &apiResp, nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// hashEmbedder maps text to a fixed unit vector derived from its SHA-256,
// so identical texts embed identically without calling OpenAI.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return hashVector(text), nil
}

func (hashEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashVector(text)
	}
	return out, nil
}

func hashVector(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, embeddingDims)
	for i := 0; i < len(sum); i += 4 {
		idx := int(binary.BigEndian.Uint32(sum[i:i+4]) % embeddingDims)
		vec[idx] += 1
	}
	vec[0] += 0.5
	return vec
}

func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, embedder service.EmbeddingClient, apiKey string, port int) (string, func()) {
	searchSvc := service.NewSearchService(repository.NewChunkRepository(pool), embedder)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:   service.NewAuthService(apiKey),
		ChunkHandler:    handlers.NewChunkHandler(chunker.New(chunker.DefaultConfig())),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
		ArtifactHandler: handlers.NewArtifactHandler(s3Client),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
