// Package aggregator orchestrates fetching across providers: preference-
// ordered fallback by default, parallel settle-all merging in combine mode.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/metrics"
	"github.com/yourusername/odds-aggregator/internal/normalize"
	"github.com/yourusername/odds-aggregator/internal/provider"
)

// Aggregator fans requests out to providers and decides which provider's
// data wins per event. It never touches persistent storage.
type Aggregator struct {
	providers map[string]provider.Provider
	logger    *logrus.Logger
}

// New creates an aggregator over the given providers.
func New(providers []provider.Provider, logger *logrus.Logger) *Aggregator {
	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Aggregator{providers: byName, logger: logger}
}

// Fetch retrieves normalized events for a sport according to opts. It
// always returns a result; provider failures are collected into
// FetchResult.Errors and never surfaced as a Go error.
func (a *Aggregator) Fetch(ctx context.Context, sportKey string, opts Options) *FetchResult {
	if opts.Combine {
		return a.fetchCombined(ctx, sportKey, opts)
	}
	return a.fetchWithFallback(ctx, sportKey, opts)
}

// fetchWithFallback tries providers in preference order and accepts the
// first non-empty result. A provider failing or returning zero events falls
// through to the next.
func (a *Aggregator) fetchWithFallback(ctx context.Context, sportKey string, opts Options) *FetchResult {
	result := &FetchResult{}

	for _, name := range opts.Providers {
		events, err := a.fetchOne(ctx, name, sportKey, opts.Limit)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		valid, skipped := filterValid(events)
		result.Skipped += skipped

		if len(valid) == 0 {
			a.logger.WithFields(logrus.Fields{
				"provider": name,
				"sport":    sportKey,
			}).Debug("provider returned no usable events, falling back")
			continue
		}

		result.Events = valid
		result.Source = name
		return result
	}

	return result
}

// fetchCombined fetches from every configured provider in parallel with a
// settle-all policy, then merges events across sources by case-insensitive
// (home, away) team matching. When the same game appears from two sources,
// the version with strictly more bookmaker quotes wins.
func (a *Aggregator) fetchCombined(ctx context.Context, sportKey string, opts Options) *FetchResult {
	type settled struct {
		events []normalize.Event
		err    error
	}

	outcomes := make([]settled, len(opts.Providers))
	var wg sync.WaitGroup
	for i, name := range opts.Providers {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			events, err := a.fetchOne(ctx, name, sportKey, opts.Limit)
			outcomes[i] = settled{events: events, err: err}
		}(i, name)
	}
	wg.Wait()

	result := &FetchResult{Source: CombinedSource}
	merged := make(map[string]int) // team key -> index into result.Events

	// Merge in preference order so event IDs are deterministic when quote
	// counts tie.
	for i, name := range opts.Providers {
		if outcomes[i].err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, outcomes[i].err))
			continue
		}

		valid, skipped := filterValid(outcomes[i].events)
		result.Skipped += skipped

		for _, event := range valid {
			key := teamKey(event)
			idx, seen := merged[key]
			if !seen {
				merged[key] = len(result.Events)
				result.Events = append(result.Events, event)
				continue
			}

			existing := &result.Events[idx]
			if len(event.Bookmakers) > len(existing.Bookmakers) {
				enrichScores(&event, existing)
				*existing = event
			} else {
				enrichScores(existing, &event)
			}
		}
	}

	if len(result.Events) == 0 && len(result.Errors) == len(opts.Providers) {
		result.Source = ""
	}

	return result
}

// fetchOne calls a single provider, recording fetch latency.
func (a *Aggregator) fetchOne(ctx context.Context, name, sportKey string, limit int) ([]normalize.Event, error) {
	p, ok := a.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not configured")
	}
	if !p.IsEnabled() {
		return nil, provider.NewError(name, provider.ErrCodeDisabled, "provider is disabled", provider.ErrProviderDisabled)
	}

	start := time.Now()
	events, err := p.FetchOdds(ctx, sportKey, limit)
	metrics.ObserveProviderFetch(name, time.Since(start), err)

	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"provider": name,
			"sport":    sportKey,
		}).Warn("provider fetch failed")
		return nil, err
	}

	return events, nil
}

// filterValid splits events into those passing basic shape validation and a
// count of those skipped.
func filterValid(events []normalize.Event) ([]normalize.Event, int) {
	valid := make([]normalize.Event, 0, len(events))
	skipped := 0
	for _, event := range events {
		if !event.Valid() {
			skipped++
			continue
		}
		valid = append(valid, event)
	}
	return valid, skipped
}

// teamKey builds the case-insensitive merge key for combine mode. Exact
// string equality only; no alias matching ("LA Rams" and "Los Angeles
// Rams" stay distinct).
func teamKey(event normalize.Event) string {
	return strings.ToLower(event.HomeTeam) + "|" + strings.ToLower(event.AwayTeam)
}

// enrichScores copies scores and the completed flag from src onto dst when
// dst lacks them. Scoreboard-sourced events carry no bookmaker quotes, so
// they lose merges but still contribute scores this way.
func enrichScores(dst, src *normalize.Event) {
	if dst.HomeScore == nil && src.HomeScore != nil {
		dst.HomeScore = src.HomeScore
	}
	if dst.AwayScore == nil && src.AwayScore != nil {
		dst.AwayScore = src.AwayScore
	}
	if !dst.Completed && src.Completed {
		dst.Completed = true
	}
}
