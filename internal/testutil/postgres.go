package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
)

// DefaultPostgresImage is used unless ROTZ_TEST_POSTGRES_IMAGE is set.
const DefaultPostgresImage = "postgres:16-alpine"

// PostgresContainer is a throwaway PostgreSQL server for store tests.
type PostgresContainer struct {
	// Config connects to the container's database.
	Config config.DatabaseConfig
}

// NewPostgresContainer starts PostgreSQL in a container that is terminated
// when the test ends. Tests calling it are skipped under -short.
//
// Precondition: Docker must be available.
// Postcondition: Returns a server accepting connections, or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in -short mode")
	}
	ctx := context.Background()
	start := time.Now()

	image := os.Getenv("ROTZ_TEST_POSTGRES_IMAGE")
	if image == "" {
		image = DefaultPostgresImage
	}
	const user, password, name = "rotz", "rotz", "rotz_test"

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     user,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       name,
			},
			// The server logs readiness twice: once for the init run, once for
			// the real start.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v [%s]", image, err, time.Since(start))
	}
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	t.Logf("%s ready on %s:%s [%s]", image, host, port.Port(), time.Since(start))

	return &PostgresContainer{Config: config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            user,
		Password:        password,
		Name:            name,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}}
}

// DSN returns the connection string for the container's database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}
