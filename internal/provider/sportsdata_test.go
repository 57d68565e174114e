package provider

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// sportsDataMux serves the hypermedia-style API: an event list whose odds
// and team identity hide behind $ref links.
func sportsDataMux(baseURL func() string, failOddsHop, failProviderHop bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sports/nfl/events":
			fmt.Fprintf(w, `{
				"events": [
					{
						"id": "401",
						"date": "2026-01-15T18:30:00Z",
						"competitions": [
							{
								"competitors": [
									{"homeAway": "home", "team": {"displayName": "Kansas City Chiefs"}, "score": "21"},
									{"homeAway": "away", "team": {"$ref": "%s/teams/2"}}
								],
								"status": {"type": {"completed": false}},
								"odds": {"$ref": "%s/events/401/odds"}
							}
						]
					}
				]
			}`, baseURL(), baseURL())
		case "/teams/2":
			fmt.Fprint(w, `{"displayName": "Buffalo Bills"}`)
		case "/events/401/odds":
			if failOddsHop {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{
				"items": [
					{
						"provider": {"$ref": "%s/providers/58"},
						"spread": -3.5,
						"overUnder": 47.5,
						"homeTeamOdds": {"moneyLine": 1.6667, "spreadOdds": 1.9091},
						"awayTeamOdds": {"moneyLine": 2.5, "spreadOdds": 1.9091},
						"overOdds": 1.9091,
						"underOdds": 1.9091
					}
				]
			}`, baseURL())
		case "/providers/58":
			if failProviderHop {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"name": "Caesars Sportsbook"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newSportsDataClient(t *testing.T, failOddsHop, failProviderHop bool) *SportsDataClient {
	t.Helper()
	var serverURL string
	server := newTestServer(t, sportsDataMux(func() string { return serverURL }, failOddsHop, failProviderHop))
	serverURL = server.URL

	client, err := NewSportsDataClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)
	return client
}

func TestSportsDataClient_FetchOdds(t *testing.T) {
	client := newSportsDataClient(t, false, false)

	events, err := client.FetchOdds(context.Background(), "nfl", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "sportsdata:401", event.ID)
	assert.Equal(t, "Kansas City Chiefs", event.HomeTeam)
	// Away team identity came through the team $ref hop.
	assert.Equal(t, "Buffalo Bills", event.AwayTeam)
	require.NotNil(t, event.HomeScore)
	assert.Equal(t, 21, *event.HomeScore)

	require.Len(t, event.Bookmakers, 1)
	quote := event.Bookmakers[0]
	assert.Equal(t, "caesars_sportsbook", quote.Key)
	assert.Equal(t, "Caesars Sportsbook", quote.Title)

	require.Len(t, quote.Markets, 3)

	h2h := quote.Markets[0]
	assert.Equal(t, normalize.MarketH2H, h2h.Key)
	require.Len(t, h2h.Outcomes, 2)
	// 1.6667 decimal converts to about -150 American.
	assert.True(t, h2h.Outcomes[0].Price.Equal(decimal.NewFromInt(-150)),
		"got %s", h2h.Outcomes[0].Price)
	// 2.5 decimal converts to +150.
	assert.True(t, h2h.Outcomes[1].Price.Equal(decimal.NewFromInt(150)))

	spreads := quote.Markets[1]
	assert.Equal(t, normalize.MarketSpreads, spreads.Key)
	require.Len(t, spreads.Outcomes, 2)
	assert.True(t, spreads.Outcomes[0].Point.Equal(decimal.RequireFromString("-3.5")))
	// The away side takes the negated spread.
	assert.True(t, spreads.Outcomes[1].Point.Equal(decimal.RequireFromString("3.5")))

	totals := quote.Markets[2]
	assert.Equal(t, normalize.MarketTotals, totals.Key)
	require.Len(t, totals.Outcomes, 2)
	assert.Equal(t, normalize.OutcomeOver, totals.Outcomes[0].Type)
	assert.True(t, totals.Outcomes[0].Point.Equal(decimal.RequireFromString("47.5")))
}

func TestSportsDataClient_OddsHopFailureTolerated(t *testing.T) {
	client := newSportsDataClient(t, true, false)

	// The event survives with schedule data only when the odds hop fails.
	events, err := client.FetchOdds(context.Background(), "nfl", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Bookmakers)
	assert.Equal(t, "Buffalo Bills", events[0].AwayTeam)
}

func TestSportsDataClient_ProviderHopFailureSkipsBookmaker(t *testing.T) {
	client := newSportsDataClient(t, false, true)

	events, err := client.FetchOdds(context.Background(), "nfl", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	// Without bookmaker identity the quote is unusable and skipped.
	assert.Empty(t, events[0].Bookmakers)
}

func TestSportsDataClient_FetchSports(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports", r.URL.Path)
		fmt.Fprint(w, `{"sports": [{"slug": "nfl", "name": "National Football League"}]}`)
	})

	client, err := NewSportsDataClient(testHTTPClient(), server.URL, "test-key", true, testLogger())
	require.NoError(t, err)

	sports, err := client.FetchSports(context.Background())
	require.NoError(t, err)
	require.Len(t, sports, 1)
	assert.Equal(t, "nfl", sports[0].Key)
	assert.Equal(t, "National Football League", sports[0].Title)
}

func TestSportsDataClient_MissingKey(t *testing.T) {
	_, err := NewSportsDataClient(testHTTPClient(), "", "", true, testLogger())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestSportsDataClient_DefaultBaseURL(t *testing.T) {
	client, err := NewSportsDataClient(testHTTPClient(), "", "test-key", true, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "https://sports.core.api.espn.com/v2", client.baseURL)
}
