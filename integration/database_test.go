//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackend runs the store-backed commands against one database backend.
func exerciseBackend(t *testing.T, backend, connStr string) {
	dir := writeFixture(t)
	env := []string{
		"SAFEPATH_CACHE_BACKEND=" + backend,
		"SAFEPATH_CACHE_DB_CONNECT=" + connStr,
		"SAFEPATH_HISTORY_BACKEND=" + backend,
		"SAFEPATH_HISTORY_DB_CONNECT=" + connStr,
	}

	_, err := runSafepath(t, dir, env, "cache", "clear")
	require.NoError(t, err)

	_, err = runSafepath(t, dir, env, "history", "clear")
	require.NoError(t, err)

	_, err = runSafepath(t, dir, env, "history", "migrate")
	require.NoError(t, err)

	routeArgs := []string{"route", "1", "4", "--input", "segments.csv", "--provider", "mock",
		"--provider-latency", "0s", "--provider-seed", "7", "--output", "json"}
	first, err := runSafepath(t, dir, env, routeArgs...)
	require.NoError(t, err)
	second, err := runSafepath(t, dir, env, routeArgs...)
	require.NoError(t, err)
	assert.Contains(t, first, `"provider_route"`)
	assert.Contains(t, second, `"provider_route"`)

	_, err = runSafepath(t, dir, env, "scores", "--input", "segments.csv")
	require.NoError(t, err)

	out, err := runSafepath(t, dir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Entries: 0", "mock answers are not cached")

	out, err = runSafepath(t, dir, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 3")

	out, err = runSafepath(t, dir, env, "history", "list", "--runs", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "segments")
}

// TestSafepathWithMySQL tests the safepath CLI with a MySQL backend.
func TestSafepathWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "safepath",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/safepath?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestSafepathWithPostgres tests the safepath CLI with a PostgreSQL backend.
func TestSafepathWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}
