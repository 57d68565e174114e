package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

const arbitrageName = "arbitrage"

// ArbitrageClient implements Provider for the arbitrage-data API. Results
// are cursor-paginated; the cursor is followed until it is exhausted or a
// page or item cap is reached. Quotes arrive as decimal odds and are
// converted to American.
type ArbitrageClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	maxPages   int
	logger     *logrus.Logger
}

// defaultMaxPages bounds cursor-following when the caller sets no item cap.
const defaultMaxPages = 5

// NewArbitrageClient creates a new arbitrage-data API client
func NewArbitrageClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) (*ArbitrageClient, error) {
	if enabled && apiKey == "" {
		return nil, NewError(arbitrageName, ErrCodeAuthenticationFailed, "API key is required", ErrMissingCredential)
	}
	return &ArbitrageClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		maxPages:   defaultMaxPages,
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (c *ArbitrageClient) Name() string { return arbitrageName }

// IsEnabled returns whether this provider is enabled
func (c *ArbitrageClient) IsEnabled() bool { return c.enabled }

// FetchOdds retrieves events for a sport, following the pagination cursor
func (c *ArbitrageClient) FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error) {
	if !c.enabled {
		return nil, NewError(arbitrageName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	var events []normalize.Event
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		payload, err := c.getPage(ctx, sportKey, cursor)
		if err != nil {
			return nil, err
		}

		for _, item := range normalize.ObjectSlice(payload, "data", "events", "items") {
			event, ok := c.convertEvent(item, sportKey)
			if !ok {
				continue
			}
			events = append(events, event)
			if limit > 0 && len(events) >= limit {
				return events, nil
			}
		}

		cursor = normalize.FieldString(payload, "next_cursor", "nextCursor", "cursor")
		if cursor == "" {
			break
		}
	}

	return events, nil
}

// FetchSports retrieves the sport catalog
func (c *ArbitrageClient) FetchSports(ctx context.Context) ([]normalize.Sport, error) {
	if !c.enabled {
		return nil, NewError(arbitrageName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	payload, err := c.getObject(ctx, c.baseURL+"/v1/sports")
	if err != nil {
		return nil, err
	}

	var sports []normalize.Sport
	for _, item := range normalize.ObjectSlice(payload, "data", "sports") {
		key := normalize.FieldString(item, "key", "sport_key", "slug")
		if key == "" {
			continue
		}
		sports = append(sports, normalize.Sport{
			Key:    key,
			Title:  normalize.FieldString(item, "title", "name"),
			Active: normalize.FieldBool(item, "active"),
		})
	}

	return sports, nil
}

func (c *ArbitrageClient) getPage(ctx context.Context, sportKey, cursor string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/v1/odds?sport=%s", c.baseURL, url.QueryEscape(sportKey))
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}
	return c.getObject(ctx, endpoint)
}

func (c *ArbitrageClient) getObject(ctx context.Context, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewError(arbitrageName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewError(arbitrageName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(arbitrageName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, NewHTTPError(arbitrageName, ErrCodeAuthenticationFailed, resp.StatusCode, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewHTTPError(arbitrageName, ErrCodeRateLimitExceeded, resp.StatusCode, body)
	case resp.StatusCode != http.StatusOK:
		return nil, NewHTTPError(arbitrageName, ErrCodeServerError, resp.StatusCode, body)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(arbitrageName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return payload, nil
}

func (c *ArbitrageClient) convertEvent(item map[string]any, sportKey string) (normalize.Event, bool) {
	id := normalize.FieldString(item, "id", "event_id", "match_id")
	if id == "" {
		return normalize.Event{}, false
	}

	commence := normalize.FieldTime(item, "starts_at", "start_time", "commence_time")
	if commence.IsZero() {
		c.logger.WithField("event_id", id).Debug("dropping event with unparseable start time")
		return normalize.Event{}, false
	}

	event := normalize.Event{
		ID:           arbitrageName + ":" + id,
		SportKey:     sportKey,
		HomeTeam:     normalize.FieldString(item, "home", "home_team", "team1"),
		AwayTeam:     normalize.FieldString(item, "away", "away_team", "team2"),
		CommenceTime: commence,
	}
	if event.HomeTeam == "" || event.AwayTeam == "" {
		return normalize.Event{}, false
	}

	for _, book := range normalize.ObjectSlice(item, "bookmakers", "books") {
		quote, ok := c.convertBookmaker(book, event)
		if !ok {
			continue
		}
		event.Bookmakers = append(event.Bookmakers, quote)
	}

	return event, true
}

func (c *ArbitrageClient) convertBookmaker(book map[string]any, event normalize.Event) (normalize.BookmakerQuote, bool) {
	name := normalize.FieldString(book, "name", "bookmaker", "key")
	if name == "" {
		return normalize.BookmakerQuote{}, false
	}

	lastUpdate := normalize.FieldTime(book, "updated_at", "last_update")
	if lastUpdate.IsZero() {
		lastUpdate = time.Now().UTC()
	}

	quote := normalize.BookmakerQuote{
		Key:        bookmakerKey(name),
		Title:      name,
		LastUpdate: lastUpdate,
	}

	for _, rawMarket := range normalize.ObjectSlice(book, "markets", "lines") {
		marketKey := normalize.FieldString(rawMarket, "key", "type", "market")
		if !normalize.KnownMarket(marketKey) {
			continue
		}

		market := normalize.Market{Key: normalize.MarketKey(marketKey)}
		for _, outcome := range normalize.ObjectSlice(rawMarket, "outcomes", "selections") {
			normalized, ok := c.convertOutcome(outcome, market.Key, event)
			if !ok {
				continue
			}
			market.Outcomes = append(market.Outcomes, normalized)
		}

		if len(market.Outcomes) > 0 {
			quote.Markets = append(quote.Markets, market)
		}
	}

	return quote, len(quote.Markets) > 0
}

func (c *ArbitrageClient) convertOutcome(outcome map[string]any, market normalize.MarketKey, event normalize.Event) (normalize.Outcome, bool) {
	outcomeType, ok := normalize.ClassifyOutcome(normalize.OutcomeContext{
		Name:     normalize.FieldString(outcome, "name", "selection", "label"),
		Marker:   normalize.FieldString(outcome, "side", "position"),
		HomeTeam: event.HomeTeam,
		AwayTeam: event.AwayTeam,
		Market:   market,
	})
	if !ok {
		return normalize.Outcome{}, false
	}

	// Quotes are decimal odds; canonical storage is American.
	n := normalize.FieldNumber(outcome, "odds", "price", "decimal_odds")
	if n == nil {
		return normalize.Outcome{}, false
	}
	dec, err := normalize.ParsePrice(*n)
	if err != nil {
		return normalize.Outcome{}, false
	}
	price, err := normalize.DecimalToAmerican(dec)
	if err != nil {
		return normalize.Outcome{}, false
	}

	normalized := normalize.Outcome{Type: outcomeType, Price: price}
	if point := normalize.FieldNumber(outcome, "points", "line", "handicap"); point != nil {
		p, err := normalize.ParsePrice(*point)
		if err == nil {
			normalized.Point = &p
		}
	}

	return normalized, true
}
