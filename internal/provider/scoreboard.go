package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

const scoreboardName = "scoreboard"

// ScoreboardClient implements Provider for the undocumented public
// scoreboard feed. It requires no credential, carries no bookmaker quotes,
// and exists to supply schedules, scores and completed flags when the paid
// providers have nothing for a sport.
type ScoreboardClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     *logrus.Logger
}

// sportPaths maps canonical sport keys onto the feed's path segments. The
// feed is undocumented, so unknown sports fall back to the key itself.
var sportPaths = map[string]string{
	"NFL": "football/nfl",
	"NBA": "basketball/nba",
	"MLB": "baseball/mlb",
	"NHL": "hockey/nhl",
}

// NewScoreboardClient creates a new public scoreboard client
func NewScoreboardClient(httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger *logrus.Logger) *ScoreboardClient {
	if baseURL == "" {
		baseURL = "https://site.api.espn.com/apis/site/v2/sports"
	}
	return &ScoreboardClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the provider name
func (c *ScoreboardClient) Name() string { return scoreboardName }

// IsEnabled returns whether this provider is enabled
func (c *ScoreboardClient) IsEnabled() bool { return c.enabled }

// FetchOdds retrieves scheduled and live events. Scoreboard events never
// carry bookmaker quotes.
func (c *ScoreboardClient) FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error) {
	if !c.enabled {
		return nil, NewError(scoreboardName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}

	path, ok := sportPaths[strings.ToUpper(sportKey)]
	if !ok {
		path = url.PathEscape(strings.ToLower(sportKey))
	}

	endpoint := fmt.Sprintf("%s/%s/scoreboard", c.baseURL, path)
	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, NewError(scoreboardName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(scoreboardName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewHTTPError(scoreboardName, ErrCodeRateLimitExceeded, resp.StatusCode, body)
	case resp.StatusCode != http.StatusOK:
		return nil, NewHTTPError(scoreboardName, ErrCodeServerError, resp.StatusCode, body)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewError(scoreboardName, ErrCodeInvalidData, "failed to parse scoreboard response", err)
	}

	items := normalize.ObjectSlice(payload, "events", "games")
	events := make([]normalize.Event, 0, len(items))
	for _, item := range items {
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

// FetchSports returns the fixed set of leagues the feed is known to carry.
func (c *ScoreboardClient) FetchSports(ctx context.Context) ([]normalize.Sport, error) {
	if !c.enabled {
		return nil, NewError(scoreboardName, ErrCodeDisabled, "provider is disabled", ErrProviderDisabled)
	}
	sports := make([]normalize.Sport, 0, len(sportPaths))
	for key := range sportPaths {
		sports = append(sports, normalize.Sport{Key: key, Title: key, Active: true})
	}
	return sports, nil
}

func (c *ScoreboardClient) convertEvent(item map[string]any, sportKey string) (normalize.Event, bool) {
	id := normalize.FieldString(item, "id", "uid", "gameId")
	if id == "" {
		return normalize.Event{}, false
	}

	commence := normalize.FieldTime(item, "date", "startTime", "start_time")
	if commence.IsZero() {
		c.logger.WithField("event_id", id).Debug("dropping scoreboard event with unparseable date")
		return normalize.Event{}, false
	}

	event := normalize.Event{
		ID:           scoreboardName + ":" + id,
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
		name := ""
		if team := normalize.FieldMap(competitor, "team"); team != nil {
			name = normalize.FieldString(team, "displayName", "name", "shortDisplayName")
		}
		if name == "" {
			name = normalize.FieldString(competitor, "name", "displayName")
		}
		if name == "" {
			continue
		}

		score := normalize.FieldInt(competitor, "score", "points")

		switch strings.ToLower(normalize.FieldString(competitor, "homeAway", "home_away")) {
		case "home":
			event.HomeTeam = name
			event.HomeScore = score
		case "away":
			event.AwayTeam = name
			event.AwayScore = score
		}
	}

	if event.HomeTeam == "" || event.AwayTeam == "" {
		return normalize.Event{}, false
	}

	return event, true
}
