package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// Odds is one persisted quote, uniquely keyed by
// (GameID, BookmakerKey, Market, OutcomeType). A new ingestion for the same
// key updates the row in place; history lives only in LineMovement.
type Odds struct {
	GameID       string                `db:"game_id" json:"game_id" validate:"required"`
	BookmakerKey string                `db:"bookmaker_key" json:"bookmaker_key" validate:"required"`
	Market       normalize.MarketKey   `db:"market" json:"market" validate:"required,oneof=h2h spreads totals"`
	OutcomeType  normalize.OutcomeType `db:"outcome_type" json:"outcome_type" validate:"required,oneof=home away over under"`
	Price        decimal.Decimal       `db:"price" json:"price"`
	Point        *decimal.Decimal      `db:"point" json:"point"`
	LastUpdate   time.Time             `db:"last_update" json:"last_update"`
	CreatedAt    time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time             `db:"updated_at" json:"updated_at"`
}

// Key returns the unique odds key as a single string, useful for logging
// and in-memory indexing.
func (o *Odds) Key() string {
	return o.GameID + "/" + o.BookmakerKey + "/" + string(o.Market) + "/" + string(o.OutcomeType)
}
