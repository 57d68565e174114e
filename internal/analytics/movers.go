package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/repository"
)

// Defaults applied when a movers query leaves a parameter unset.
var (
	DefaultMoversWindow = 24 * time.Hour
	DefaultMinMovement  = decimal.NewFromInt(1)
	DefaultMoversLimit  = 10
)

// MoversQuery parameterises a big-movers lookup. Zero values fall back to
// the package defaults.
type MoversQuery struct {
	Window      time.Duration
	MinMovement decimal.Decimal
	Limit       int
}

func (q MoversQuery) normalized() MoversQuery {
	if q.Window <= 0 {
		q.Window = DefaultMoversWindow
	}
	if q.MinMovement.IsZero() {
		q.MinMovement = DefaultMinMovement
	}
	if q.Limit <= 0 {
		q.Limit = DefaultMoversLimit
	}
	return q
}

// MoverAnalyzer serves line movement queries from the movement repository.
type MoverAnalyzer struct {
	movements repository.MovementRepository
}

// NewMoverAnalyzer creates an analyzer over the movement repository
func NewMoverAnalyzer(movements repository.MovementRepository) *MoverAnalyzer {
	return &MoverAnalyzer{movements: movements}
}

// BigMovers returns the largest recent line movements, most recent first,
// with the parent game joined for context.
func (a *MoverAnalyzer) BigMovers(ctx context.Context, query MoversQuery) ([]*models.LineMovement, error) {
	q := query.normalized()
	return a.movements.GetBigMovers(ctx, q.Window, q.MinMovement, q.Limit)
}

// GameMovements returns every movement for one game within the window,
// most recent first.
func (a *MoverAnalyzer) GameMovements(ctx context.Context, gameID string, window time.Duration) ([]*models.LineMovement, error) {
	if window <= 0 {
		window = DefaultMoversWindow
	}
	return a.movements.GetByGame(ctx, gameID, window)
}
