package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

func TestNewLineMovement(t *testing.T) {
	m := NewLineMovement(
		"primary_odds:ev1", "draftkings",
		normalize.MarketSpreads, normalize.OutcomeHome,
		decimal.RequireFromString("-3.5"), decimal.RequireFromString("-4.5"),
	)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.True(t, m.Movement.Equal(decimal.RequireFromString("-1")))
	assert.False(t, m.CreatedAt.IsZero())
}

func TestNewLineMovement_PositiveDelta(t *testing.T) {
	m := NewLineMovement(
		"g", "b",
		normalize.MarketTotals, normalize.OutcomeOver,
		decimal.RequireFromString("47.5"), decimal.RequireFromString("49"),
	)
	assert.True(t, m.Movement.Equal(decimal.RequireFromString("1.5")))
}
