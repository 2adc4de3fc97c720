//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Shared test container for all tests
var sharedTestContainer *testContainer

type testContainer struct {
	container testcontainers.Container
	connStr   string
	host      string
	port      int
}

// TestMain sets up a shared PostgreSQL container for all tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "quarry_test",
			"POSTGRES_USER":     "quarry_test",
			"POSTGRES_PASSWORD": "quarry_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container port: %v\n", err)
		os.Exit(1)
	}

	connStr := fmt.Sprintf("postgres://quarry_test:quarry_test@%s:%s/quarry_test?sslmode=disable",
		host, port.Port())

	sharedTestContainer = &testContainer{
		container: container,
		connStr:   connStr,
		host:      host,
		port:      port.Int(),
	}

	exitCode := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
	}

	os.Exit(exitCode)
}

// resetDatabase truncates all catalog tables so every test starts from
// an empty catalog while reusing the shared container.
func resetDatabase(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, sharedTestContainer.connStr)
	if err != nil {
		t.Fatalf("failed to connect for reset: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, "TRUNCATE assets, folders CASCADE")
	if err != nil {
		// Tables do not exist yet on the very first run.
		t.Logf("reset skipped: %v", err)
	}
}

// setupTestStore creates a store against the shared container with a
// clean catalog.
func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := NewPostgresStore(ctx, &PostgresStoreConfig{
		Host:        sharedTestContainer.host,
		Port:        sharedTestContainer.port,
		Database:    "quarry_test",
		User:        "quarry_test",
		Password:    "quarry_test",
		SSLMode:     "disable",
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("failed to create postgres store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	resetDatabase(t)
	return store
}
