package aggregator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-aggregator/internal/normalize"
	"github.com/yourusername/odds-aggregator/internal/provider"
)

type stubProvider struct {
	name    string
	enabled bool
	events  []normalize.Event
	err     error
	calls   int
}

func (s *stubProvider) FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *stubProvider) FetchSports(ctx context.Context) ([]normalize.Sport, error) {
	return nil, nil
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) IsEnabled() bool { return s.enabled }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func makeEvent(id, home, away string, bookmakers int) normalize.Event {
	event := normalize.Event{
		ID:           id,
		HomeTeam:     home,
		AwayTeam:     away,
		CommenceTime: time.Date(2026, 1, 15, 18, 30, 0, 0, time.UTC),
	}
	for i := 0; i < bookmakers; i++ {
		event.Bookmakers = append(event.Bookmakers, normalize.BookmakerQuote{
			Key:        "book" + string(rune('a'+i)),
			Title:      "Book",
			LastUpdate: event.CommenceTime,
			Markets: []normalize.Market{{
				Key: normalize.MarketH2H,
				Outcomes: []normalize.Outcome{
					{Type: normalize.OutcomeHome, Price: decimal.NewFromInt(-110)},
					{Type: normalize.OutcomeAway, Price: decimal.NewFromInt(-110)},
				},
			}},
		})
	}
	return event
}

func TestFetch_FallbackUsesFirstProvider(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, events: []normalize.Event{
		makeEvent("first:1", "Team A", "Team B", 1),
	}}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		makeEvent("second:1", "Team A", "Team B", 2),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"first", "second"}})

	assert.Equal(t, "first", result.Source)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "first:1", result.Events[0].ID)
	assert.Zero(t, second.calls)
	assert.Empty(t, result.Errors)
}

func TestFetch_FallbackOnError(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true,
		err: provider.NewError("first", provider.ErrCodeRateLimitExceeded, "too many requests", provider.ErrRateLimitExceeded)}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		makeEvent("second:1", "Team A", "Team B", 1),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"first", "second"}})

	assert.Equal(t, "second", result.Source)
	require.Len(t, result.Events, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "first")
}

func TestFetch_FallbackOnEmptyResult(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		makeEvent("second:1", "Team A", "Team B", 1),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"first", "second"}})

	assert.Equal(t, "second", result.Source)
	// An empty result is not an error, just a fall-through.
	assert.Empty(t, result.Errors)
}

func TestFetch_SkippedCountsInvalidEvents(t *testing.T) {
	invalid := normalize.Event{ID: "first:bad", HomeTeam: "Team A"} // no away team, no time
	first := &stubProvider{name: "first", enabled: true, events: []normalize.Event{
		invalid,
		makeEvent("first:1", "Team A", "Team B", 1),
	}}

	agg := New([]provider.Provider{first}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"first"}})

	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Events, 1)
}

func TestFetch_AllProvidersFail(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, err: assert.AnError}
	second := &stubProvider{name: "second", enabled: false}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"first", "second"}})

	assert.Empty(t, result.Source)
	assert.Empty(t, result.Events)
	assert.Len(t, result.Errors, 2)
}

func TestFetch_UnknownProvider(t *testing.T) {
	agg := New(nil, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{Providers: []string{"ghost"}})

	assert.Empty(t, result.Events)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ghost")
}

func TestFetch_CombineMergesByTeams(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, events: []normalize.Event{
		makeEvent("first:1", "Kansas City Chiefs", "Buffalo Bills", 1),
		makeEvent("first:2", "Dallas Cowboys", "New York Giants", 2),
	}}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		// Same matchup, different case, more bookmakers: this version wins.
		makeEvent("second:1", "KANSAS CITY CHIEFS", "buffalo bills", 3),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{
		Providers: []string{"first", "second"},
		Combine:   true,
	})

	assert.Equal(t, CombinedSource, result.Source)
	require.Len(t, result.Events, 2)

	byID := map[string]normalize.Event{}
	for _, event := range result.Events {
		byID[event.ID] = event
	}
	winner, ok := byID["second:1"]
	require.True(t, ok, "the version with more bookmakers should win the merge")
	assert.Len(t, winner.Bookmakers, 3)
	assert.Contains(t, byID, "first:2")
}

func TestFetch_CombineTieKeepsPreferredProvider(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, events: []normalize.Event{
		makeEvent("first:1", "Team A", "Team B", 2),
	}}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		makeEvent("second:1", "Team A", "Team B", 2),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{
		Providers: []string{"first", "second"},
		Combine:   true,
	})

	require.Len(t, result.Events, 1)
	// Equal quote counts keep the version from the earlier provider.
	assert.Equal(t, "first:1", result.Events[0].ID)
}

func TestFetch_CombineEnrichesScoresFromQuotelessSource(t *testing.T) {
	quoted := makeEvent("first:1", "Team A", "Team B", 2)

	score := 27
	scored := makeEvent("scoreboard:1", "Team A", "Team B", 0)
	scored.HomeScore = &score
	scored.Completed = true

	first := &stubProvider{name: "first", enabled: true, events: []normalize.Event{quoted}}
	board := &stubProvider{name: "scoreboard", enabled: true, events: []normalize.Event{scored}}

	agg := New([]provider.Provider{first, board}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{
		Providers: []string{"first", "scoreboard"},
		Combine:   true,
	})

	require.Len(t, result.Events, 1)
	merged := result.Events[0]
	// The quoted version wins the merge but picks up the scoreboard's data.
	assert.Equal(t, "first:1", merged.ID)
	assert.Len(t, merged.Bookmakers, 2)
	require.NotNil(t, merged.HomeScore)
	assert.Equal(t, 27, *merged.HomeScore)
	assert.True(t, merged.Completed)
}

func TestFetch_CombineAllFail(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, err: assert.AnError}
	second := &stubProvider{name: "second", enabled: true, err: assert.AnError}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{
		Providers: []string{"first", "second"},
		Combine:   true,
	})

	assert.Empty(t, result.Source)
	assert.Len(t, result.Errors, 2)
}

func TestFetch_CombinePartialFailureStillMerges(t *testing.T) {
	first := &stubProvider{name: "first", enabled: true, err: assert.AnError}
	second := &stubProvider{name: "second", enabled: true, events: []normalize.Event{
		makeEvent("second:1", "Team A", "Team B", 1),
	}}

	agg := New([]provider.Provider{first, second}, quietLogger())
	result := agg.Fetch(context.Background(), "nfl", Options{
		Providers: []string{"first", "second"},
		Combine:   true,
	})

	assert.Equal(t, CombinedSource, result.Source)
	assert.Len(t, result.Events, 1)
	assert.Len(t, result.Errors, 1)
}
