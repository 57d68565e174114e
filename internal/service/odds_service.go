// Package service exposes the application's operations: running syncs and
// answering queries over the stored data.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/aggregator"
	"github.com/yourusername/odds-aggregator/internal/analytics"
	"github.com/yourusername/odds-aggregator/internal/config"
	"github.com/yourusername/odds-aggregator/internal/ingest"
	"github.com/yourusername/odds-aggregator/internal/metrics"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
	"github.com/yourusername/odds-aggregator/internal/provider"
	"github.com/yourusername/odds-aggregator/internal/repository"
)

const (
	sportsCacheTTL     = 1 * time.Hour
	sportsCacheCleanup = 10 * time.Minute
	sportsCacheKey     = "sports"
)

// OddsService ties the aggregator, the persistence sync and the analytics
// layer together behind one facade. It is what the CLI and the scheduler
// call.
type OddsService struct {
	cfg        *config.Config
	agg        *aggregator.Aggregator
	syncer     *ingest.Syncer
	repos      *repository.Repositories
	movers     *analytics.MoverAnalyzer
	providers  []provider.Provider
	sportCache *cache.Cache
	logger     *logrus.Logger
}

// NewOddsService creates the service facade
func NewOddsService(cfg *config.Config, providers []provider.Provider, repos *repository.Repositories, logger *logrus.Logger) *OddsService {
	return &OddsService{
		cfg:        cfg,
		agg:        aggregator.New(providers, logger),
		syncer:     ingest.NewSyncer(repos, logger),
		repos:      repos,
		movers:     analytics.NewMoverAnalyzer(repos.Movement),
		providers:  providers,
		sportCache: cache.New(sportsCacheTTL, sportsCacheCleanup),
		logger:     logger,
	}
}

// SyncSport runs one full sync cycle for a configured sport: fetch through
// the aggregator, persist through the syncer, report the outcome. Provider
// failures end up in the result's Errors, never as a Go error; only
// persistence-level failures abort the sync.
func (s *OddsService) SyncSport(ctx context.Context, sportCfg config.SportSyncConfig) (*aggregator.SyncResult, error) {
	start := time.Now()

	fetched := s.agg.Fetch(ctx, sportCfg.Key, aggregator.Options{
		Providers: sportCfg.Providers,
		Combine:   sportCfg.Combine,
		Limit:     s.cfg.Sync.EventLimit,
	})

	result := &aggregator.SyncResult{
		SportKey: sportCfg.Key,
		Source:   fetched.Source,
		Skipped:  fetched.Skipped,
		Errors:   fetched.Errors,
	}

	if len(fetched.Events) > 0 {
		stats, err := s.syncer.ApplyEvents(ctx, sportCfg.Key, fetched.Source, fetched.Events)
		if err != nil {
			return nil, fmt.Errorf("failed to apply events for %s: %w", sportCfg.Key, err)
		}
		result.GamesUpdated = stats.GamesUpdated
		result.BooksUpdated = stats.BooksUpdated
		result.OddsUpdated = stats.OddsUpdated
		result.MovementsCreated = stats.MovementsCreated
	}

	metrics.ObserveSync(sportCfg.Key, result.Source, time.Since(start), result.GamesUpdated, result.Skipped, len(result.Errors))

	s.logger.WithFields(logrus.Fields{
		"sport":     result.SportKey,
		"source":    result.Source,
		"games":     result.GamesUpdated,
		"odds":      result.OddsUpdated,
		"movements": result.MovementsCreated,
		"skipped":   result.Skipped,
		"errors":    len(result.Errors),
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("Sync completed")

	return result, nil
}

// SyncAll runs SyncSport for every configured sport sequentially. One
// sport's persistence failure does not stop the rest.
func (s *OddsService) SyncAll(ctx context.Context) ([]*aggregator.SyncResult, error) {
	results := make([]*aggregator.SyncResult, 0, len(s.cfg.Sync.Sports))
	var firstErr error

	for _, sportCfg := range s.cfg.Sync.Sports {
		result, err := s.SyncSport(ctx, sportCfg)
		if err != nil {
			s.logger.WithError(err).WithField("sport", sportCfg.Key).Error("Sport sync failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, result)
	}

	return results, firstErr
}

// SyncSportByKey resolves a sport key against the configured sports and
// syncs it.
func (s *OddsService) SyncSportByKey(ctx context.Context, sportKey string) (*aggregator.SyncResult, error) {
	for _, sportCfg := range s.cfg.Sync.Sports {
		if sportCfg.Key == sportKey {
			return s.SyncSport(ctx, sportCfg)
		}
	}
	return nil, fmt.Errorf("sport %q is not configured for sync", sportKey)
}

// GetBestOdds returns the best available price per (market, outcome) for one
// game, across every bookmaker with stored odds.
func (s *OddsService) GetBestOdds(ctx context.Context, gameID string) (*models.Game, []analytics.BestQuote, error) {
	if gameID == "" {
		return nil, nil, models.ErrInvalidID
	}

	game, err := s.repos.Game.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	odds, err := s.repos.Odds.GetByGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	return game, analytics.BestOdds(odds), nil
}

// GetLineMovements returns one game's recent line movements, most recent
// first.
func (s *OddsService) GetLineMovements(ctx context.Context, gameID string, window time.Duration) ([]*models.LineMovement, error) {
	if gameID == "" {
		return nil, models.ErrInvalidID
	}
	return s.movers.GameMovements(ctx, gameID, window)
}

// GetBigMovers returns the largest recent line movements across all games.
func (s *OddsService) GetBigMovers(ctx context.Context, query analytics.MoversQuery) ([]*models.LineMovement, error) {
	return s.movers.BigMovers(ctx, query)
}

// GetUpcomingGames returns stored games that have not started yet.
func (s *OddsService) GetUpcomingGames(ctx context.Context, sportKey string, limit int) ([]*models.Game, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repos.Game.GetUpcoming(ctx, sportKey, limit)
}

// ListSports returns the union of sports offered by every enabled provider,
// deduplicated by key and cached for an hour. Individual provider failures
// are logged and skipped.
func (s *OddsService) ListSports(ctx context.Context) ([]normalize.Sport, error) {
	if cached, found := s.sportCache.Get(sportsCacheKey); found {
		return cached.([]normalize.Sport), nil
	}

	byKey := make(map[string]normalize.Sport)
	fetched := 0
	for _, p := range s.providers {
		if !p.IsEnabled() {
			continue
		}
		sports, err := p.FetchSports(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("provider", p.Name()).Warn("Failed to list sports")
			continue
		}
		fetched++
		for _, sport := range sports {
			if _, seen := byKey[sport.Key]; !seen {
				byKey[sport.Key] = sport
			}
		}
	}

	if fetched == 0 {
		return nil, fmt.Errorf("no provider could list sports")
	}

	sports := make([]normalize.Sport, 0, len(byKey))
	for _, sport := range byKey {
		sports = append(sports, sport)
	}
	sort.Slice(sports, func(i, j int) bool { return sports[i].Key < sports[j].Key })

	s.sportCache.Set(sportsCacheKey, sports, cache.DefaultExpiration)
	return sports, nil
}
