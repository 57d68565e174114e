package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/odds-aggregator/internal/database"
	"github.com/yourusername/odds-aggregator/internal/models"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Upsert creates or updates a game row keyed by ID. Scores, the completed
// flag and the commence time are updated in place on conflict.
func (r *PostgresGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, sport_key, home_team, away_team, commence_time, completed, home_score, away_score, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			commence_time = EXCLUDED.commence_time,
			completed = EXCLUDED.completed,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.SportKey, game.HomeTeam, game.AwayTeam, game.CommenceTime,
		game.Completed, game.HomeScore, game.AwayScore, game.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its namespaced ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `
		SELECT id, sport_key, home_team, away_team, commence_time, completed, home_score, away_score, source, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.SportKey, &game.HomeTeam, &game.AwayTeam, &game.CommenceTime,
		&game.Completed, &game.HomeScore, &game.AwayScore, &game.Source,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetUpcoming retrieves games that have not yet started for a sport
func (r *PostgresGameRepository) GetUpcoming(ctx context.Context, sportKey string, limit int) ([]*models.Game, error) {
	query := `
		SELECT id, sport_key, home_team, away_team, commence_time, completed, home_score, away_score, source, created_at, updated_at
		FROM games
		WHERE sport_key = $1 AND completed = FALSE AND commence_time > NOW()
		ORDER BY commence_time ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, sportKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.SportKey, &game.HomeTeam, &game.AwayTeam, &game.CommenceTime,
			&game.Completed, &game.HomeScore, &game.AwayScore, &game.Source,
			&game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
