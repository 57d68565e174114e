package repository

import (
	"fmt"

	"github.com/yourusername/odds-aggregator/internal/database"
)

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:      NewPostgresGameRepository(db),
		Bookmaker: NewPostgresBookmakerRepository(db),
		Odds:      NewPostgresOddsRepository(db),
		Movement:  NewPostgresMovementRepository(db),
	}, nil
}
