package models

import (
	"time"
)

// Game represents a sporting event persisted in the canonical store. Games
// are upserted by ID; mutable fields (scores, completed flag, commence time)
// are updated in place on conflict.
type Game struct {
	ID           string    `db:"id" json:"id" validate:"required"`
	SportKey     string    `db:"sport_key" json:"sport_key" validate:"required"`
	HomeTeam     string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam     string    `db:"away_team" json:"away_team" validate:"required"`
	CommenceTime time.Time `db:"commence_time" json:"commence_time" validate:"required"`
	Completed    bool      `db:"completed" json:"completed"`
	HomeScore    *int      `db:"home_score" json:"home_score"`
	AwayScore    *int      `db:"away_score" json:"away_score"`
	Source       string    `db:"source" json:"source"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsUpcoming checks if the game hasn't started yet
func (g *Game) IsUpcoming() bool {
	return !g.Completed && g.CommenceTime.After(time.Now())
}
