package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catalog-cms/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema holds the DDL for the catalogue document table.
const Schema = `
	CREATE TABLE IF NOT EXISTS catalog_documents (
		name TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// postgresRepository implements CatalogRepository by storing the whole
// product array as one JSONB document per catalogue name.
type postgresRepository struct {
	pool   *pgxpool.Pool
	name   string
	logger zerolog.Logger
}

// NewPostgresRepository creates a PostgreSQL-backed catalogue repository.
func NewPostgresRepository(pool *pgxpool.Pool, name string, logger zerolog.Logger) CatalogRepository {
	return &postgresRepository{
		pool:   pool,
		name:   name,
		logger: logger.With().Str("repository", "catalog-postgres").Str("catalog", name).Logger(),
	}
}

// EnsureSchema creates the catalogue document table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// Name identifies the backend in logs.
func (r *postgresRepository) Name() string {
	return "postgres"
}

// Load reads the full product array.
func (r *postgresRepository) Load(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT body
		FROM catalog_documents
		WHERE name = $1
	`

	var body []byte
	err := r.pool.QueryRow(ctx, query, r.name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Msg("catalog document does not exist yet")
			return []model.Product{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to query catalog document")
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode catalog document")
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// Save replaces the stored product array.
func (r *postgresRepository) Save(ctx context.Context, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}

	body, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	query := `
		INSERT INTO catalog_documents (name, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, r.name, string(body)); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to save catalog document")
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("catalog document written")

	return nil
}
