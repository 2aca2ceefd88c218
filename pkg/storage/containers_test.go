package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("container backed storage test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func TestPostgresStorage(t *testing.T) {
	skipWithoutDocker(t)
	ctx := context.Background()

	ctr, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("taskboard_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStorage(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	runStorageSuite(t, s)
}

func TestRedisStorage(t *testing.T) {
	skipWithoutDocker(t)
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	s, err := NewRedisStorage(ctx, "redis://"+endpoint, "test[1]")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runStorageSuite(t, s)
}
