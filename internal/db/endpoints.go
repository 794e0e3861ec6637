package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// activeEndpointsQuery picks the most recently updated active row per service
const activeEndpointsQuery = `
	SELECT DISTINCT ON (service_type) service_type, endpoint_url
	FROM api_endpoints
	WHERE is_active = true
	ORDER BY service_type, updated_at DESC`

// EndpointStore reads billing endpoint overrides from the api_endpoints table
type EndpointStore struct {
	pool *pgxpool.Pool
}

// NewEndpointStore creates a store on pool
func NewEndpointStore(pool *pgxpool.Pool) *EndpointStore {
	return &EndpointStore{pool: pool}
}

// ActiveEndpoints returns service_type -> endpoint_url for active rows only
func (s *EndpointStore) ActiveEndpoints(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, activeEndpointsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoints: %w", err)
	}
	defer rows.Close()

	endpoints := make(map[string]string)
	for rows.Next() {
		var serviceType, endpointURL string
		if err := rows.Scan(&serviceType, &endpointURL); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		endpoints[serviceType] = endpointURL
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read endpoints: %w", err)
	}
	return endpoints, nil
}

// SetEndpoint makes url the only active endpoint for serviceType
func (s *EndpointStore) SetEndpoint(ctx context.Context, serviceType, url string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE api_endpoints SET is_active = false, updated_at = now() WHERE service_type = $1 AND is_active`,
		serviceType); err != nil {
		return fmt.Errorf("failed to deactivate endpoints: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO api_endpoints (service_type, endpoint_url, is_active) VALUES ($1, $2, true)`,
		serviceType, url); err != nil {
		return fmt.Errorf("failed to insert endpoint: %w", err)
	}

	return tx.Commit(ctx)
}

// Schema creates the endpoint table; used by billctl migrate
const Schema = `
CREATE TABLE IF NOT EXISTS api_endpoints (
	id           SERIAL PRIMARY KEY,
	service_type TEXT        NOT NULL,
	endpoint_url TEXT        NOT NULL,
	is_active    BOOLEAN     NOT NULL DEFAULT true,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS api_endpoints_service_active_idx
	ON api_endpoints (service_type) WHERE is_active;`

// Migrate applies Schema
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
