package models

import "time"

// Bookmaker represents a sportsbook known to the system, upserted by its
// stable lowercase key.
type Bookmaker struct {
	Key       string    `db:"key" json:"key" validate:"required,lowercase"`
	Title     string    `db:"title" json:"title" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
