// Package ingest writes normalized events into the canonical store and
// detects line movements against previously stored odds.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/metrics"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
	"github.com/yourusername/odds-aggregator/internal/repository"
)

// Stats summarises what one ApplyEvents call wrote.
type Stats struct {
	GamesUpdated     int
	BooksUpdated     int
	OddsUpdated      int
	MovementsCreated int
}

// Syncer applies normalized events to the repositories. Per-row failures are
// logged and skipped so one bad row never aborts a whole sync.
type Syncer struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

// NewSyncer creates a syncer over the given repositories
func NewSyncer(repos *repository.Repositories, logger *logrus.Logger) *Syncer {
	return &Syncer{repos: repos, logger: logger}
}

// ApplyEvents upserts every event, its bookmakers and its odds rows. A line
// movement record is created whenever the stored point for an odds key
// differs from the incoming one. Price-only changes update the odds row
// without producing a movement.
func (s *Syncer) ApplyEvents(ctx context.Context, sportKey, source string, events []normalize.Event) (*Stats, error) {
	stats := &Stats{}
	seenBooks := make(map[string]bool)

	for i := range events {
		event := &events[i]

		game := gameFromEvent(sportKey, source, event)
		if err := s.repos.Game.Upsert(ctx, game); err != nil {
			s.logger.WithError(err).WithField("game_id", game.ID).Error("Failed to upsert game")
			continue
		}
		stats.GamesUpdated++

		for _, quote := range event.Bookmakers {
			if !seenBooks[quote.Key] {
				bookmaker := &models.Bookmaker{Key: quote.Key, Title: quote.Title}
				if err := s.repos.Bookmaker.Upsert(ctx, bookmaker); err != nil {
					s.logger.WithError(err).WithField("bookmaker", quote.Key).Error("Failed to upsert bookmaker")
					continue
				}
				seenBooks[quote.Key] = true
				stats.BooksUpdated++
			}

			for _, market := range quote.Markets {
				for _, outcome := range market.Outcomes {
					moved, err := s.applyOutcome(ctx, game.ID, &quote, market.Key, &outcome)
					if err != nil {
						s.logger.WithError(err).WithFields(logrus.Fields{
							"game_id":   game.ID,
							"bookmaker": quote.Key,
							"market":    market.Key,
							"outcome":   outcome.Type,
						}).Error("Failed to apply odds")
						continue
					}
					stats.OddsUpdated++
					if moved {
						stats.MovementsCreated++
						metrics.LineMovementsTotal.Inc()
					}
				}
			}
		}
	}

	return stats, nil
}

// applyOutcome upserts one odds row and reports whether a line movement was
// recorded for it.
func (s *Syncer) applyOutcome(ctx context.Context, gameID string, quote *normalize.BookmakerQuote, market normalize.MarketKey, outcome *normalize.Outcome) (bool, error) {
	previous, err := s.repos.Odds.Get(ctx, gameID, quote.Key, market, outcome.Type)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("failed to read previous odds: %w", err)
	}

	odds := &models.Odds{
		GameID:       gameID,
		BookmakerKey: quote.Key,
		Market:       market,
		OutcomeType:  outcome.Type,
		Price:        outcome.Price,
		Point:        outcome.Point,
		LastUpdate:   quote.LastUpdate,
	}
	if err := s.repos.Odds.Upsert(ctx, odds); err != nil {
		return false, err
	}

	// Movements track the point dimension only. A movement needs a previous
	// point and a new point that differs from it.
	if previous == nil || previous.Point == nil || outcome.Point == nil {
		return false, nil
	}
	if previous.Point.Equal(*outcome.Point) {
		return false, nil
	}

	movement := models.NewLineMovement(gameID, quote.Key, market, outcome.Type, *previous.Point, *outcome.Point)
	if err := s.repos.Movement.Create(ctx, movement); err != nil {
		return false, fmt.Errorf("failed to record line movement: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"game_id":   gameID,
		"bookmaker": quote.Key,
		"market":    market,
		"outcome":   outcome.Type,
		"old_value": movement.OldValue,
		"new_value": movement.NewValue,
		"movement":  movement.Movement,
	}).Info("Line movement detected")

	return true, nil
}

func gameFromEvent(sportKey, source string, event *normalize.Event) *models.Game {
	return &models.Game{
		ID:           event.ID,
		SportKey:     sportKey,
		HomeTeam:     event.HomeTeam,
		AwayTeam:     event.AwayTeam,
		CommenceTime: event.CommenceTime,
		Completed:    event.Completed,
		HomeScore:    event.HomeScore,
		AwayScore:    event.AwayScore,
		Source:       source,
	}
}
