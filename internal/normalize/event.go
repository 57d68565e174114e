// Package normalize defines the canonical event schema shared by every
// provider adapter, and the coercion helpers used to map loosely-shaped
// upstream JSON into it.
package normalize

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketKey identifies a bet type.
type MarketKey string

const (
	MarketH2H     MarketKey = "h2h"
	MarketSpreads MarketKey = "spreads"
	MarketTotals  MarketKey = "totals"
)

// KnownMarket reports whether key is one of the canonical market keys.
// Unrecognized upstream market types are dropped during normalization.
func KnownMarket(key string) bool {
	switch MarketKey(key) {
	case MarketH2H, MarketSpreads, MarketTotals:
		return true
	}
	return false
}

// OutcomeType identifies one side of a market.
type OutcomeType string

const (
	OutcomeHome  OutcomeType = "home"
	OutcomeAway  OutcomeType = "away"
	OutcomeOver  OutcomeType = "over"
	OutcomeUnder OutcomeType = "under"
)

// Event is the canonical representation of one sporting event, assembled by
// a provider adapter from its upstream payload. Events are ephemeral: they
// are built per sync cycle, handed to the persistence sync, and discarded.
type Event struct {
	// ID is namespaced with the source provider's key so that the same
	// real-world game fetched from two providers never collides.
	ID           string           `json:"id"`
	SportKey     string           `json:"sport_key"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	CommenceTime time.Time        `json:"commence_time"`
	Completed    bool             `json:"completed"`
	HomeScore    *int             `json:"home_score,omitempty"`
	AwayScore    *int             `json:"away_score,omitempty"`
	Bookmakers   []BookmakerQuote `json:"bookmakers"`
}

// BookmakerQuote holds one sportsbook's quotes for one event.
type BookmakerQuote struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market holds one bet type offered by one book for one event.
type Market struct {
	Key      MarketKey `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one side of a market. Price is always American odds; adapters
// receiving decimal-style quotes convert before emitting.
type Outcome struct {
	Type  OutcomeType      `json:"outcome_type"`
	Price decimal.Decimal  `json:"price"`
	Point *decimal.Decimal `json:"point,omitempty"`
}

// Sport describes one league offered by a provider.
type Sport struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Group  string `json:"group,omitempty"`
	Active bool   `json:"active"`
}

// Valid reports whether the event passes the basic shape checks required
// before persistence: both teams present and a real commence time. Events
// failing this are counted as skipped, never stored.
func (e *Event) Valid() bool {
	return e.HomeTeam != "" && e.AwayTeam != "" && !e.CommenceTime.IsZero()
}
