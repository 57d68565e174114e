// Package repository provides persistence for games, bookmakers, odds and
// line movements. Every write is an upsert-by-key; only line movements are
// append-only.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// GameRepository persists games keyed by namespaced event ID.
type GameRepository interface {
	Upsert(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	GetUpcoming(ctx context.Context, sportKey string, limit int) ([]*models.Game, error)
}

// BookmakerRepository persists bookmakers keyed by their lowercase key.
type BookmakerRepository interface {
	Upsert(ctx context.Context, bookmaker *models.Bookmaker) error
	GetByKey(ctx context.Context, key string) (*models.Bookmaker, error)
}

// OddsRepository persists quotes uniquely keyed by
// (gameID, bookmakerKey, market, outcomeType).
type OddsRepository interface {
	Upsert(ctx context.Context, odds *models.Odds) error
	Get(ctx context.Context, gameID, bookmakerKey string, market normalize.MarketKey, outcomeType normalize.OutcomeType) (*models.Odds, error)
	GetByGame(ctx context.Context, gameID string) ([]*models.Odds, error)
}

// MovementRepository persists append-only line movement records.
type MovementRepository interface {
	Create(ctx context.Context, movement *models.LineMovement) error
	GetByGame(ctx context.Context, gameID string, window time.Duration) ([]*models.LineMovement, error)
	GetBigMovers(ctx context.Context, window time.Duration, minMovement decimal.Decimal, limit int) ([]*models.LineMovement, error)
}

// Repositories holds all repository implementations
type Repositories struct {
	Game      GameRepository
	Bookmaker BookmakerRepository
	Odds      OddsRepository
	Movement  MovementRepository
}
