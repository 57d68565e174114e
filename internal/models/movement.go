package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// LineMovement records a change in the stored point (line) value for one
// odds key. Rows are append-only and never updated. Only the point
// dimension is tracked; price-only changes do not produce movements.
type LineMovement struct {
	ID           uuid.UUID             `db:"id" json:"id"`
	GameID       string                `db:"game_id" json:"game_id" validate:"required"`
	BookmakerKey string                `db:"bookmaker_key" json:"bookmaker_key" validate:"required"`
	Market       normalize.MarketKey   `db:"market" json:"market"`
	OutcomeType  normalize.OutcomeType `db:"outcome_type" json:"outcome_type"`
	OldValue     decimal.Decimal       `db:"old_value" json:"old_value"`
	NewValue     decimal.Decimal       `db:"new_value" json:"new_value"`
	Movement     decimal.Decimal       `db:"movement" json:"movement"`
	CreatedAt    time.Time             `db:"created_at" json:"created_at"`

	// Joined for display context in big-mover queries; not a column of the
	// line_movements table itself.
	Game *Game `db:"-" json:"game,omitempty"`
}

// NewLineMovement builds a movement record for a point change, computing
// the signed delta.
func NewLineMovement(gameID, bookmakerKey string, market normalize.MarketKey, outcomeType normalize.OutcomeType, oldValue, newValue decimal.Decimal) *LineMovement {
	return &LineMovement{
		ID:           uuid.New(),
		GameID:       gameID,
		BookmakerKey: bookmakerKey,
		Market:       market,
		OutcomeType:  outcomeType,
		OldValue:     oldValue,
		NewValue:     newValue,
		Movement:     newValue.Sub(oldValue),
		CreatedAt:    time.Now().UTC(),
	}
}
