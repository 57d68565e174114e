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

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

const sportsDataName = "sportsdata"

// SportsDataClient implements Provider for the secondary sports-data API.
// The upstream returns hypermedia-style payloads where team identity and
// bookmaker quotes hide behind "$ref" links that must be expanded with
// follow-up requests. Expansion is capped per event and any failed hop
// skips only that piece of data. Quotes arrive as decimal odds and are
// converted to American on the way in.
type SportsDataClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
}

// maxOddsRefs bounds how many quote links are expanded per event, keeping
// latency bounded even when the upstream lists dozens of books.
const maxOddsRefs = 8

// NewSportsDataClient creates a new sports-data API client
func NewSportsDataClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *logrus.Logger) (*SportsDataClient, error) {
	if enabled && apiKey == "" {
		return nil, NewError(sportsDataName, ErrCodeAuthenticationFailed, "API key is required", ErrMissingCredential)
	}
	if baseURL == "" {
		baseURL = "https://sports.core.api.espn.com/v2"
	}
	return &SportsDataClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (c *SportsDataClient) Name() string { return sportsDataName }

// IsEnabled returns whether this provider is enabled
func (c *SportsDataClient) IsEnabled() bool { return c.enabled }

// FetchOdds retrieves events for a sport, expanding quote links per event
func (c *SportsDataClient) FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error) {
	if !c.enabled {
		return nil, NewError(sportsDataName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	endpoint := fmt.Sprintf("%s/sports/%s/events", c.baseURL, url.PathEscape(sportKey))
	payload, err := c.getObject(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	items := normalize.ObjectSlice(payload, "events", "items")
	events := make([]normalize.Event, 0, len(items))
	for _, item := range items {
		event, ok := c.convertEvent(ctx, item, sportKey)
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

// FetchSports retrieves the league catalog
func (c *SportsDataClient) FetchSports(ctx context.Context) ([]normalize.Sport, error) {
	if !c.enabled {
		return nil, NewError(sportsDataName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	payload, err := c.getObject(ctx, c.baseURL+"/sports")
	if err != nil {
		return nil, err
	}

	var sports []normalize.Sport
	for _, item := range normalize.ObjectSlice(payload, "sports", "leagues", "items") {
		key := normalize.FieldString(item, "slug", "key", "abbreviation")
		if key == "" {
			continue
		}
		sports = append(sports, normalize.Sport{
			Key:    key,
			Title:  normalize.FieldString(item, "name", "displayName", "title"),
			Active: true,
		})
	}

	return sports, nil
}

func (c *SportsDataClient) convertEvent(ctx context.Context, item map[string]any, sportKey string) (normalize.Event, bool) {
	id := normalize.FieldString(item, "id", "uid", "event_id")
	if id == "" {
		return normalize.Event{}, false
	}

	commence := normalize.FieldTime(item, "date", "startDate", "commence_time")
	if commence.IsZero() {
		c.logger.WithField("event_id", id).Debug("dropping event with unparseable start date")
		return normalize.Event{}, false
	}

	event := normalize.Event{
		ID:           sportsDataName + ":" + id,
		SportKey:     sportKey,
		CommenceTime: commence,
	}

	competition := item
	if competitions := normalize.ObjectSlice(item, "competitions"); len(competitions) > 0 {
		competition = competitions[0]
	}

	if status := normalize.FieldMap(competition, "status"); status != nil {
		if statusType := normalize.FieldMap(status, "type"); statusType != nil {
			event.Completed = normalize.FieldBool(statusType, "completed")
		}
	}

	for _, competitor := range normalize.ObjectSlice(competition, "competitors") {
		c.applyCompetitor(ctx, competitor, &event)
	}

	if event.HomeTeam == "" || event.AwayTeam == "" {
		return normalize.Event{}, false
	}

	// Quote expansion: the first hop resolves the odds collection, a second
	// nested hop resolves each quote's bookmaker identity.
	if oddsRef := refURL(competition, "odds"); oddsRef != "" {
		c.expandOdds(ctx, oddsRef, &event)
	}

	return event, true
}

// applyCompetitor fills one side of the event from a competitor object,
// following the team "$ref" link when the name is not inline. A failed team
// hop leaves that side empty; the event is then dropped by the caller.
func (c *SportsDataClient) applyCompetitor(ctx context.Context, competitor map[string]any, event *normalize.Event) {
	name := ""
	if team := normalize.FieldMap(competitor, "team"); team != nil {
		name = normalize.FieldString(team, "displayName", "name")
		if name == "" {
			if ref := refURL(competitor, "team"); ref != "" {
				if resolved, err := c.getObject(ctx, ref); err == nil {
					name = normalize.FieldString(resolved, "displayName", "name")
				} else {
					c.logger.WithError(err).Debug("team link expansion failed")
				}
			}
		}
	}
	if name == "" {
		name = normalize.FieldString(competitor, "name", "displayName")
	}
	if name == "" {
		return
	}

	score := normalize.FieldInt(competitor, "score", "points")

	switch strings.ToLower(normalize.FieldString(competitor, "homeAway", "home_away", "side")) {
	case "home":
		event.HomeTeam = name
		event.HomeScore = score
	case "away":
		event.AwayTeam = name
		event.AwayScore = score
	}
}

// expandOdds follows the odds link and converts each quote, resolving the
// nested provider link for bookmaker identity. Any failed hop skips that
// bookmaker's data and continues with the rest.
func (c *SportsDataClient) expandOdds(ctx context.Context, oddsRef string, event *normalize.Event) {
	payload, err := c.getObject(ctx, oddsRef)
	if err != nil {
		c.logger.WithError(err).WithField("event_id", event.ID).Debug("odds link expansion failed")
		return
	}

	items := normalize.ObjectSlice(payload, "items", "odds")
	for i, item := range items {
		if i >= maxOddsRefs {
			break
		}

		bookKey, bookTitle := c.resolveBookmaker(ctx, item)
		if bookKey == "" {
			continue
		}

		quote := normalize.BookmakerQuote{
			Key:        bookKey,
			Title:      bookTitle,
			LastUpdate: time.Now().UTC(),
		}
		if updated := normalize.FieldTime(item, "lastModified", "last_update"); !updated.IsZero() {
			quote.LastUpdate = updated
		}

		if market, ok := c.convertMoneyline(item, event); ok {
			quote.Markets = append(quote.Markets, market)
		}
		if market, ok := c.convertSpread(item, event); ok {
			quote.Markets = append(quote.Markets, market)
		}
		if market, ok := c.convertTotal(item); ok {
			quote.Markets = append(quote.Markets, market)
		}

		if len(quote.Markets) > 0 {
			event.Bookmakers = append(event.Bookmakers, quote)
		}
	}
}

// resolveBookmaker returns the bookmaker key and title for one quote,
// following the provider "$ref" when identity is not inline.
func (c *SportsDataClient) resolveBookmaker(ctx context.Context, item map[string]any) (string, string) {
	provider := normalize.FieldMap(item, "provider", "bookmaker")
	if provider != nil {
		name := normalize.FieldString(provider, "name", "displayName")
		if name != "" {
			return bookmakerKey(name), name
		}
	}

	ref := refURL(item, "provider", "bookmaker")
	if ref == "" {
		return "", ""
	}
	resolved, err := c.getObject(ctx, ref)
	if err != nil {
		c.logger.WithError(err).Debug("provider link expansion failed")
		return "", ""
	}
	name := normalize.FieldString(resolved, "name", "displayName")
	if name == "" {
		return "", ""
	}
	return bookmakerKey(name), name
}

func (c *SportsDataClient) convertMoneyline(item map[string]any, event *normalize.Event) (normalize.Market, bool) {
	market := normalize.Market{Key: normalize.MarketH2H}

	pairs := []struct {
		obj    map[string]any
		marker string
	}{
		{normalize.FieldMap(item, "homeTeamOdds", "home_odds"), "home"},
		{normalize.FieldMap(item, "awayTeamOdds", "away_odds"), "away"},
	}
	for _, pair := range pairs {
		if pair.obj == nil {
			continue
		}
		price, ok := c.americanPrice(pair.obj, "moneyLine", "price", "value")
		if !ok {
			continue
		}
		outcomeType, ok := normalize.ClassifyOutcome(normalize.OutcomeContext{
			Marker:   pair.marker,
			HomeTeam: event.HomeTeam,
			AwayTeam: event.AwayTeam,
			Market:   normalize.MarketH2H,
		})
		if !ok {
			continue
		}
		market.Outcomes = append(market.Outcomes, normalize.Outcome{Type: outcomeType, Price: price})
	}

	return market, len(market.Outcomes) > 0
}

func (c *SportsDataClient) convertSpread(item map[string]any, event *normalize.Event) (normalize.Market, bool) {
	spread := normalize.FieldNumber(item, "spread", "pointSpread")
	if spread == nil {
		return normalize.Market{}, false
	}

	market := normalize.Market{Key: normalize.MarketSpreads}

	pairs := []struct {
		obj    map[string]any
		marker string
		point  float64
	}{
		{normalize.FieldMap(item, "homeTeamOdds", "home_odds"), "home", *spread},
		{normalize.FieldMap(item, "awayTeamOdds", "away_odds"), "away", -*spread},
	}
	for _, pair := range pairs {
		if pair.obj == nil {
			continue
		}
		price, ok := c.americanPrice(pair.obj, "spreadOdds", "spread_price", "price")
		if !ok {
			continue
		}
		outcomeType, ok := normalize.ClassifyOutcome(normalize.OutcomeContext{
			Marker:   pair.marker,
			HomeTeam: event.HomeTeam,
			AwayTeam: event.AwayTeam,
			Market:   normalize.MarketSpreads,
		})
		if !ok {
			continue
		}
		point, err := normalize.ParsePrice(pair.point)
		if err != nil {
			continue
		}
		market.Outcomes = append(market.Outcomes, normalize.Outcome{Type: outcomeType, Price: price, Point: &point})
	}

	return market, len(market.Outcomes) > 0
}

func (c *SportsDataClient) convertTotal(item map[string]any) (normalize.Market, bool) {
	total := normalize.FieldNumber(item, "overUnder", "total", "over_under")
	if total == nil {
		return normalize.Market{}, false
	}
	point, err := normalize.ParsePrice(*total)
	if err != nil {
		return normalize.Market{}, false
	}

	market := normalize.Market{Key: normalize.MarketTotals}

	pairs := []struct {
		keys   []string
		marker string
	}{
		{[]string{"overOdds", "over_price"}, "over"},
		{[]string{"underOdds", "under_price"}, "under"},
	}
	for _, pair := range pairs {
		price, ok := c.americanPrice(item, pair.keys...)
		if !ok {
			continue
		}
		outcomeType, ok := normalize.ClassifyOutcome(normalize.OutcomeContext{
			Marker: pair.marker,
			Market: normalize.MarketTotals,
		})
		if !ok {
			continue
		}
		p := point
		market.Outcomes = append(market.Outcomes, normalize.Outcome{Type: outcomeType, Price: price, Point: &p})
	}

	return market, len(market.Outcomes) > 0
}

// americanPrice reads a decimal-odds field and converts it to the canonical
// American representation.
func (c *SportsDataClient) americanPrice(m map[string]any, keys ...string) (decimal.Decimal, bool) {
	n := normalize.FieldNumber(m, keys...)
	if n == nil {
		return decimal.Zero, false
	}
	dec, err := normalize.ParsePrice(*n)
	if err != nil {
		return decimal.Zero, false
	}
	american, err := normalize.DecimalToAmerican(dec)
	if err != nil {
		c.logger.WithError(err).Debug("dropping quote with invalid decimal odds")
		return decimal.Zero, false
	}
	return american, true
}

// getObject executes a GET and decodes a JSON object, mapping non-2xx
// statuses to typed errors.
func (c *SportsDataClient) getObject(ctx context.Context, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewError(sportsDataName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewError(sportsDataName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(sportsDataName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, NewHTTPError(sportsDataName, ErrCodeAuthenticationFailed, resp.StatusCode, body)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewHTTPError(sportsDataName, ErrCodeRateLimitExceeded, resp.StatusCode, body)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewHTTPError(sportsDataName, ErrCodeNotFound, resp.StatusCode, body)
	case resp.StatusCode != http.StatusOK:
		return nil, NewHTTPError(sportsDataName, ErrCodeServerError, resp.StatusCode, body)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(sportsDataName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return payload, nil
}

// refURL extracts a "$ref" link from a nested object field.
func refURL(m map[string]any, keys ...string) string {
	for _, key := range keys {
		child := normalize.FieldMap(m, key)
		if child == nil {
			continue
		}
		if ref := normalize.FieldString(child, "$ref", "href", "ref"); ref != "" {
			return ref
		}
	}
	return ""
}

// bookmakerKey converts a display name to a stable lowercase key.
func bookmakerKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
