package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/database"
	"github.com/yourusername/odds-aggregator/internal/models"
)

// PostgresMovementRepository implements MovementRepository for PostgreSQL
type PostgresMovementRepository struct {
	db *database.DB
}

// NewPostgresMovementRepository creates a new line movement repository
func NewPostgresMovementRepository(db *database.DB) MovementRepository {
	return &PostgresMovementRepository{db: db}
}

// Create appends a line movement record. Movement rows are never updated.
func (r *PostgresMovementRepository) Create(ctx context.Context, movement *models.LineMovement) error {
	query := `
		INSERT INTO line_movements (id, game_id, bookmaker_key, market, outcome_type, old_value, new_value, movement, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		movement.ID, movement.GameID, movement.BookmakerKey,
		string(movement.Market), string(movement.OutcomeType),
		movement.OldValue.String(), movement.NewValue.String(), movement.Movement.String(),
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create line movement: %w", err)
	}

	return nil
}

// GetByGame retrieves all movements for a game within a trailing window,
// most recent first
func (r *PostgresMovementRepository) GetByGame(ctx context.Context, gameID string, window time.Duration) ([]*models.LineMovement, error) {
	query := `
		SELECT id, game_id, bookmaker_key, market, outcome_type, old_value, new_value, movement, created_at
		FROM line_movements
		WHERE game_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to query line movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows)
}

// GetBigMovers retrieves movements within a trailing window whose absolute
// magnitude meets the threshold, most recent first, joined with the parent
// game for display context.
func (r *PostgresMovementRepository) GetBigMovers(ctx context.Context, window time.Duration, minMovement decimal.Decimal, limit int) ([]*models.LineMovement, error) {
	query := `
		SELECT m.id, m.game_id, m.bookmaker_key, m.market, m.outcome_type, m.old_value, m.new_value, m.movement, m.created_at,
			g.id, g.sport_key, g.home_team, g.away_team, g.commence_time, g.completed, g.home_score, g.away_score, g.source, g.created_at, g.updated_at
		FROM line_movements m
		JOIN games g ON g.id = m.game_id
		WHERE m.created_at >= $1 AND ABS(m.movement) >= $2
		ORDER BY m.created_at DESC
		LIMIT $3
	`

	rows, err := r.db.GetPool().Query(ctx, query, time.Now().Add(-window), minMovement.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query big movers: %w", err)
	}
	defer rows.Close()

	var movements []*models.LineMovement
	for rows.Next() {
		movement := &models.LineMovement{Game: &models.Game{}}
		err := rows.Scan(
			&movement.ID, &movement.GameID, &movement.BookmakerKey, &movement.Market, &movement.OutcomeType,
			&movement.OldValue, &movement.NewValue, &movement.Movement, &movement.CreatedAt,
			&movement.Game.ID, &movement.Game.SportKey, &movement.Game.HomeTeam, &movement.Game.AwayTeam,
			&movement.Game.CommenceTime, &movement.Game.Completed, &movement.Game.HomeScore, &movement.Game.AwayScore,
			&movement.Game.Source, &movement.Game.CreatedAt, &movement.Game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan big mover: %w", err)
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

func scanMovements(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.LineMovement, error) {
	var movements []*models.LineMovement
	for rows.Next() {
		movement := &models.LineMovement{}
		err := rows.Scan(
			&movement.ID, &movement.GameID, &movement.BookmakerKey, &movement.Market, &movement.OutcomeType,
			&movement.OldValue, &movement.NewValue, &movement.Movement, &movement.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line movement: %w", err)
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}
