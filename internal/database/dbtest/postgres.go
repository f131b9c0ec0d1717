// Package dbtest starts a throwaway PostgreSQL container for integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/roomieradar/roomieradar/internal/database"
)

const (
	user     = "roomie"
	password = "roomie"
	dbName   = "roomieradar_test"
)

// StartPostgres launches postgres:16-alpine, applies the schema and returns a
// connected DB. The container is terminated when the test finishes. Callers
// should skip in -short mode before calling it.
func StartPostgres(t testing.TB) *database.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.NewConnection(ctx, database.Config{
		Host:     host,
		Port:     port.Port(),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}
