package provider

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

const primaryOddsPayload = `[
	{
		"id": "ev1",
		"sport_key": "americanfootball_nfl",
		"commence_time": "2026-01-15T18:30:00Z",
		"home_team": "Kansas City Chiefs",
		"away_team": "Buffalo Bills",
		"bookmakers": [
			{
				"key": "draftkings",
				"title": "DraftKings",
				"last_update": "2026-01-15T12:00:00Z",
				"markets": [
					{
						"key": "h2h",
						"outcomes": [
							{"name": "Kansas City Chiefs", "price": -150},
							{"name": "Buffalo Bills", "price": 130}
						]
					},
					{
						"key": "spreads",
						"outcomes": [
							{"name": "Kansas City Chiefs", "price": -110, "point": -3.5},
							{"name": "Buffalo Bills", "price": -110, "point": 3.5}
						]
					},
					{
						"key": "exotic_parlay",
						"outcomes": [{"name": "whatever", "price": 500}]
					}
				]
			}
		]
	},
	{
		"id": "ev2",
		"commence_time": "not a date",
		"home_team": "A",
		"away_team": "B"
	}
]`

func TestPrimaryOddsClient_FetchOdds(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/americanfootball_nfl/odds", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(primaryOddsPayload))
	})

	client, err := NewPrimaryOddsClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)

	events, err := client.FetchOdds(context.Background(), "americanfootball_nfl", 0)
	require.NoError(t, err)

	// ev2 has an unparseable commence time and is dropped.
	require.Len(t, events, 1)
	event := events[0]

	assert.Equal(t, "primary_odds:ev1", event.ID)
	assert.Equal(t, "Kansas City Chiefs", event.HomeTeam)
	assert.Equal(t, "Buffalo Bills", event.AwayTeam)

	require.Len(t, event.Bookmakers, 1)
	quote := event.Bookmakers[0]
	assert.Equal(t, "draftkings", quote.Key)

	// The unknown market type is filtered out.
	require.Len(t, quote.Markets, 2)

	h2h := quote.Markets[0]
	assert.Equal(t, normalize.MarketH2H, h2h.Key)
	require.Len(t, h2h.Outcomes, 2)
	assert.Equal(t, normalize.OutcomeHome, h2h.Outcomes[0].Type)
	assert.True(t, h2h.Outcomes[0].Price.Equal(decimal.NewFromInt(-150)))
	assert.Equal(t, normalize.OutcomeAway, h2h.Outcomes[1].Type)

	spreads := quote.Markets[1]
	assert.Equal(t, normalize.MarketSpreads, spreads.Key)
	require.Len(t, spreads.Outcomes, 2)
	require.NotNil(t, spreads.Outcomes[0].Point)
	assert.True(t, spreads.Outcomes[0].Point.Equal(decimal.RequireFromString("-3.5")))
}

func TestPrimaryOddsClient_Limit(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "a", "commence_time": "2026-01-15T18:30:00Z", "home_team": "A", "away_team": "B"},
			{"id": "b", "commence_time": "2026-01-15T19:30:00Z", "home_team": "C", "away_team": "D"}
		]`))
	})

	client, err := NewPrimaryOddsClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)

	events, err := client.FetchOdds(context.Background(), "nfl", 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPrimaryOddsClient_RateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	client, err := NewPrimaryOddsClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)

	_, err = client.FetchOdds(context.Background(), "nfl", 0)
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))

	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), calls.Load())
}

func TestPrimaryOddsClient_AuthError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, err := NewPrimaryOddsClient(testHTTPClient(), server.URL, "bad-key", true, testLogger())
	require.NoError(t, err)

	_, err = client.FetchOdds(context.Background(), "nfl", 0)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestPrimaryOddsClient_MissingKey(t *testing.T) {
	_, err := NewPrimaryOddsClient(testHTTPClient(), "", "", true, testLogger())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))

	// A disabled provider may be constructed without a key.
	client, err := NewPrimaryOddsClient(testHTTPClient(), "", "", false, testLogger())
	require.NoError(t, err)
	assert.False(t, client.IsEnabled())

	_, err = client.FetchOdds(context.Background(), "nfl", 0)
	assert.Error(t, err)
}

func TestPrimaryOddsClient_FetchSports(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"key": "americanfootball_nfl", "title": "NFL", "group": "American Football", "active": true},
			{"title": "no key, dropped"}
		]`))
	})

	client, err := NewPrimaryOddsClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)

	sports, err := client.FetchSports(context.Background())
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, "americanfootball_nfl", sports[0].Key)
	assert.True(t, sports[0].Active)
}
