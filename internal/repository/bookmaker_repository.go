package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/odds-aggregator/internal/database"
	"github.com/yourusername/odds-aggregator/internal/models"
)

// PostgresBookmakerRepository implements BookmakerRepository for PostgreSQL
type PostgresBookmakerRepository struct {
	db *database.DB
}

// NewPostgresBookmakerRepository creates a new bookmaker repository
func NewPostgresBookmakerRepository(db *database.DB) BookmakerRepository {
	return &PostgresBookmakerRepository{db: db}
}

// Upsert creates or updates a bookmaker row keyed by key
func (r *PostgresBookmakerRepository) Upsert(ctx context.Context, bookmaker *models.Bookmaker) error {
	query := `
		INSERT INTO bookmakers (key, title, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE SET
			title = EXCLUDED.title,
			updated_at = NOW()
	`

	if _, err := r.db.GetPool().Exec(ctx, query, bookmaker.Key, bookmaker.Title); err != nil {
		return fmt.Errorf("failed to upsert bookmaker: %w", err)
	}

	return nil
}

// GetByKey retrieves a bookmaker by its key
func (r *PostgresBookmakerRepository) GetByKey(ctx context.Context, key string) (*models.Bookmaker, error) {
	query := `
		SELECT key, title, created_at, updated_at
		FROM bookmakers
		WHERE key = $1
	`

	bookmaker := &models.Bookmaker{}
	err := r.db.GetPool().QueryRow(ctx, query, key).Scan(
		&bookmaker.Key, &bookmaker.Title, &bookmaker.CreatedAt, &bookmaker.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmaker: %w", err)
	}

	return bookmaker, nil
}
