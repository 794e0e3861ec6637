package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore connects to DATABASE_URL and migrates into a throwaway schema
func testStore(t *testing.T) (*EndpointStore, *pgxpool.Pool) {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, databaseURL)
	require.NoError(t, err)
	schema := "endpoints_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	config, err := pgxpool.ParseConfig(databaseURL)
	require.NoError(t, err)
	config.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, config)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Migrate(ctx, pool), "schema must be re-appliable")
	return NewEndpointStore(pool), pool
}

func insertEndpoint(t *testing.T, pool *pgxpool.Pool, service, url string, active bool, updatedAt time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO api_endpoints (service_type, endpoint_url, is_active, updated_at) VALUES ($1, $2, $3, $4)`,
		service, url, active, updatedAt)
	require.NoError(t, err)
}

func TestEndpointStore_ActiveEndpoints(t *testing.T) {
	store, pool := testStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := store.ActiveEndpoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	insertEndpoint(t, pool, "gas", "https://gas.old/upload", true, base)
	insertEndpoint(t, pool, "gas", "https://gas.new/upload", true, base.Add(time.Hour))
	insertEndpoint(t, pool, "electricity", "https://elec.newest/upload", false, base.Add(2*time.Hour))
	insertEndpoint(t, pool, "electricity", "https://elec.live/upload", true, base)
	insertEndpoint(t, pool, "meter", "https://meter.off/upload", false, base)

	got, err = store.ActiveEndpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"gas":         "https://gas.new/upload",
		"electricity": "https://elec.live/upload",
	}, got)
}

func TestEndpointStore_SetEndpointLeavesOneActive(t *testing.T) {
	store, pool := testStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	insertEndpoint(t, pool, "gas", "https://gas.a/upload", true, base)
	insertEndpoint(t, pool, "gas", "https://gas.b/upload", true, base.Add(time.Hour))
	insertEndpoint(t, pool, "meter", "https://meter/upload", true, base)

	require.NoError(t, store.SetEndpoint(ctx, "gas", "https://gas.c/upload"))

	var active int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM api_endpoints WHERE service_type = 'gas' AND is_active`).Scan(&active))
	assert.Equal(t, 1, active)

	got, err := store.ActiveEndpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://gas.c/upload", got["gas"])
	assert.Equal(t, "https://meter/upload", got["meter"])
}

func TestEndpointStore_QueryErrorIsWrapped(t *testing.T) {
	store, pool := testStore(t)
	pool.Close()

	_, err := store.ActiveEndpoints(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query endpoints")
}
