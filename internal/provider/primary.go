package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

const primaryName = "primary_odds"

// PrimaryOddsClient implements Provider for the primary odds API. The
// upstream quotes American odds, which pass through to the canonical price
// unchanged.
type PrimaryOddsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// NewPrimaryOddsClient creates a new primary odds API client. A missing API
// key fails at construction rather than on first request.
func NewPrimaryOddsClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) (*PrimaryOddsClient, error) {
	if enabled && apiKey == "" {
		return nil, NewError(primaryName, ErrCodeAuthenticationFailed, "API key is required", ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}
	return &PrimaryOddsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (c *PrimaryOddsClient) Name() string { return primaryName }

// IsEnabled returns whether this provider is enabled
func (c *PrimaryOddsClient) IsEnabled() bool { return c.enabled }

// FetchOdds retrieves upcoming events with bookmaker quotes for a sport
func (c *PrimaryOddsClient) FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error) {
	if !c.enabled {
		return nil, NewError(primaryName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	endpoint := fmt.Sprintf("%s/sports/%s/odds?apiKey=%s&regions=us&markets=h2h,spreads,totals&oddsFormat=american",
		c.baseURL, url.PathEscape(sportKey), url.QueryEscape(c.apiKey))

	raw, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewError(primaryName, ErrCodeInvalidData, "failed to parse odds response", err)
	}

	events := make([]normalize.Event, 0, len(payload))
	for _, item := range payload {
		event, ok := c.convertEvent(item, sportKey)
		if !ok {
			continue
		}
		events = append(events, event)
		if limit > 0 && len(events) >= limit {
			break
		}
	}

	return events, nil
}

// FetchSports retrieves the sport catalog
func (c *PrimaryOddsClient) FetchSports(ctx context.Context) ([]normalize.Sport, error) {
	if !c.enabled {
		return nil, NewError(primaryName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	raw, err := c.getJSON(ctx, fmt.Sprintf("%s/sports?apiKey=%s", c.baseURL, url.QueryEscape(c.apiKey)))
	if err != nil {
		return nil, err
	}

	var payload []map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewError(primaryName, ErrCodeInvalidData, "failed to parse sports response", err)
	}

	sports := make([]normalize.Sport, 0, len(payload))
	for _, item := range payload {
		key := normalize.FieldString(item, "key", "sport_key")
		if key == "" {
			continue
		}
		sports = append(sports, normalize.Sport{
			Key:    key,
			Title:  normalize.FieldString(item, "title", "name"),
			Group:  normalize.FieldString(item, "group"),
			Active: normalize.FieldBool(item, "active"),
		})
	}

	return sports, nil
}

// getJSON executes a GET and maps non-2xx statuses to typed errors.
func (c *PrimaryOddsClient) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, NewError(primaryName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(primaryName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, NewHTTPError(primaryName, ErrCodeAuthenticationFailed, resp.StatusCode, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewHTTPError(primaryName, ErrCodeRateLimitExceeded, resp.StatusCode, body)
	case resp.StatusCode != http.StatusOK:
		return nil, NewHTTPError(primaryName, ErrCodeServerError, resp.StatusCode, body)
	}

	return body, nil
}

// convertEvent maps one upstream event object to the canonical schema. A
// missing or unparseable commence time rejects the whole event.
func (c *PrimaryOddsClient) convertEvent(item map[string]any, sportKey string) (normalize.Event, bool) {
	id := normalize.FieldString(item, "id", "event_id", "eventId")
	if id == "" {
		return normalize.Event{}, false
	}

	commence := normalize.FieldTime(item, "commence_time", "commenceTime", "start_time", "startTime")
	if commence.IsZero() {
		c.logger.WithField("event_id", id).Debug("dropping event with unparseable commence time")
		return normalize.Event{}, false
	}

	event := normalize.Event{
		ID:           primaryName + ":" + id,
		SportKey:     normalize.FieldString(item, "sport_key", "sportKey"),
		HomeTeam:     normalize.FieldString(item, "home_team", "homeTeam"),
		AwayTeam:     normalize.FieldString(item, "away_team", "awayTeam"),
		CommenceTime: commence,
		Completed:    normalize.FieldBool(item, "completed"),
	}
	if event.SportKey == "" {
		event.SportKey = sportKey
	}

	for _, score := range normalize.ObjectSlice(item, "scores") {
		name := normalize.FieldString(score, "name", "team")
		value := normalize.FieldInt(score, "score", "points")
		if value == nil {
			continue
		}
		switch name {
		case event.HomeTeam:
			event.HomeScore = value
		case event.AwayTeam:
			event.AwayScore = value
		}
	}

	for _, book := range normalize.ObjectSlice(item, "bookmakers", "sites") {
		quote, ok := c.convertBookmaker(book, event)
		if !ok {
			continue
		}
		event.Bookmakers = append(event.Bookmakers, quote)
	}

	return event, true
}

func (c *PrimaryOddsClient) convertBookmaker(book map[string]any, event normalize.Event) (normalize.BookmakerQuote, bool) {
	key := normalize.FieldString(book, "key", "site_key", "bookmaker_key")
	if key == "" {
		return normalize.BookmakerQuote{}, false
	}

	lastUpdate := normalize.FieldTime(book, "last_update", "lastUpdate", "last_updated")
	if lastUpdate.IsZero() {
		lastUpdate = time.Now().UTC()
	}

	quote := normalize.BookmakerQuote{
		Key:        key,
		Title:      normalize.FieldString(book, "title", "site_nice", "name"),
		LastUpdate: lastUpdate,
	}
	if quote.Title == "" {
		quote.Title = key
	}

	for _, market := range normalize.ObjectSlice(book, "markets", "odds") {
		marketKey := normalize.FieldString(market, "key", "market_key")
		if !normalize.KnownMarket(marketKey) {
			continue
		}

		converted := normalize.Market{Key: normalize.MarketKey(marketKey)}
		for _, outcome := range normalize.ObjectSlice(market, "outcomes") {
			normalized, ok := c.convertOutcome(outcome, converted.Key, event)
			if !ok {
				continue
			}
			converted.Outcomes = append(converted.Outcomes, normalized)
		}

		if len(converted.Outcomes) > 0 {
			quote.Markets = append(quote.Markets, converted)
		}
	}

	return quote, len(quote.Markets) > 0
}

func (c *PrimaryOddsClient) convertOutcome(outcome map[string]any, market normalize.MarketKey, event normalize.Event) (normalize.Outcome, bool) {
	outcomeType, ok := normalize.ClassifyOutcome(normalize.OutcomeContext{
		Name:     normalize.FieldString(outcome, "name", "label"),
		Marker:   normalize.FieldString(outcome, "home_away", "side"),
		HomeTeam: event.HomeTeam,
		AwayTeam: event.AwayTeam,
		Market:   market,
	})
	if !ok {
		return normalize.Outcome{}, false
	}

	// Upstream is American odds already; no conversion on the way in.
	price, err := normalize.ParsePrice(firstPresent(outcome, "price", "odds"))
	if err != nil {
		return normalize.Outcome{}, false
	}

	normalized := normalize.Outcome{Type: outcomeType, Price: price}
	if point := normalize.FieldNumber(outcome, "point", "line", "handicap"); point != nil {
		p, err := normalize.ParsePrice(*point)
		if err == nil {
			normalized.Point = &p
		}
	}

	return normalized, true
}

// firstPresent returns the raw value of the first key present in m.
func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
