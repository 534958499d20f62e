// Package testutil starts the containers used by integration and e2e tests:
// Postgres with pgvector for the chunk index and RustFS for S3 artifacts.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/lexcorpus/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	rustfsImage   = "rustfs/rustfs:latest"

	// RustFSAccessKey and RustFSSecretKey are the credentials of the RustFS container.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"

	dbName     = "lexcorpus"
	dbUser     = "lexcorpus"
	dbPassword = "lexcorpus"
)

// PostgresContainer is a running pgvector-enabled Postgres.
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewPostgresContainer starts Postgres and fails the test if it cannot.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": dbPassword,
				"POSTGRES_DB":       dbName,
			},
			// postgres restarts once after initdb
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, port := endpoint(ctx, t, container, "5432/tcp")
	return &PostgresContainer{Container: container, Host: host, Port: port}
}

// ConnectionString returns a DSN suitable for LEXCORPUS_DATABASE_URL.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, pc.Host, pc.Port, dbName)
}

// Terminate stops and removes the container.
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// RustFSContainer is a running S3-compatible RustFS server.
type RustFSContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewRustFSContainer starts RustFS and fails the test if it cannot.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	t.Helper()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        rustfsImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"RUSTFS_ACCESS_KEY": RustFSAccessKey,
				"RUSTFS_SECRET_KEY": RustFSSecretKey,
			},
			WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start rustfs container: %v", err)
	}

	host, port := endpoint(ctx, t, container, "9000/tcp")
	return &RustFSContainer{Container: container, Host: host, Port: port}
}

// Endpoint returns the RustFS endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

// Terminate stops and removes the container.
func (rc *RustFSContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(rc.Container)
}

func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, port string) (string, string) {
	t.Helper()
	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get mapped port %s: %v", port, err)
	}
	return host, mapped.Port()
}

// NewTestPool applies the migrations in migrationsDir with the same
// golang-migrate path lexcorpusd uses, then opens a pool. The pool is closed
// when the test ends.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()
	dsn := pc.ConnectionString()

	var pool *pgxpool.Pool
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		if pool, err = database.NewPool(ctx, database.Config{URL: dsn, MaxConns: 8}); err == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.RunMigrations(dsn, migrationsDir); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return pool
}

// TruncateAll empties the lexcorpus tables between subtests.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE TABLE index_jobs, chunks"); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
