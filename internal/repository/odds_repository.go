package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/odds-aggregator/internal/database"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Upsert creates or updates the single odds row for the unique
// (game, bookmaker, market, outcome) key. History is preserved in
// line_movements, never by appending odds rows.
func (r *PostgresOddsRepository) Upsert(ctx context.Context, odds *models.Odds) error {
	query := `
		INSERT INTO odds (game_id, bookmaker_key, market, outcome_type, price, point, last_update, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (game_id, bookmaker_key, market, outcome_type) DO UPDATE SET
			price = EXCLUDED.price,
			point = EXCLUDED.point,
			last_update = EXCLUDED.last_update,
			updated_at = NOW()
	`

	var point *string
	if odds.Point != nil {
		s := odds.Point.String()
		point = &s
	}

	_, err := r.db.GetPool().Exec(ctx, query,
		odds.GameID, odds.BookmakerKey, string(odds.Market), string(odds.OutcomeType),
		odds.Price.String(), point, odds.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert odds: %w", err)
	}

	return nil
}

// Get retrieves the odds row for one unique key
func (r *PostgresOddsRepository) Get(ctx context.Context, gameID, bookmakerKey string, market normalize.MarketKey, outcomeType normalize.OutcomeType) (*models.Odds, error) {
	query := `
		SELECT game_id, bookmaker_key, market, outcome_type, price, point, last_update, created_at, updated_at
		FROM odds
		WHERE game_id = $1 AND bookmaker_key = $2 AND market = $3 AND outcome_type = $4
	`

	odds := &models.Odds{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID, bookmakerKey, string(market), string(outcomeType)).Scan(
		&odds.GameID, &odds.BookmakerKey, &odds.Market, &odds.OutcomeType,
		&odds.Price, &odds.Point, &odds.LastUpdate, &odds.CreatedAt, &odds.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}

	return odds, nil
}

// GetByGame retrieves all odds rows for a game
func (r *PostgresOddsRepository) GetByGame(ctx context.Context, gameID string) ([]*models.Odds, error) {
	query := `
		SELECT game_id, bookmaker_key, market, outcome_type, price, point, last_update, created_at, updated_at
		FROM odds
		WHERE game_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds by game: %w", err)
	}
	defer rows.Close()

	var result []*models.Odds
	for rows.Next() {
		odds := &models.Odds{}
		err := rows.Scan(
			&odds.GameID, &odds.BookmakerKey, &odds.Market, &odds.OutcomeType,
			&odds.Price, &odds.Point, &odds.LastUpdate, &odds.CreatedAt, &odds.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds: %w", err)
		}
		result = append(result, odds)
	}

	return result, rows.Err()
}
