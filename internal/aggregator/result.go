package aggregator

import "github.com/yourusername/odds-aggregator/internal/normalize"

// Options controls one sync for one sport.
type Options struct {
	// Providers is the preference-ordered list of provider names. Order may
	// differ per sport.
	Providers []string
	// Combine fetches from every reachable provider in parallel and merges,
	// instead of falling back through the preference order.
	Combine bool
	// Limit caps the number of events requested per provider. <= 0 means
	// no cap.
	Limit int
}

// FetchResult is the aggregator's output: the normalized events to persist
// plus the bookkeeping the caller surfaces in its SyncResult.
type FetchResult struct {
	Events  []normalize.Event
	Source  string
	Skipped int
	Errors  []string
}

// SyncResult is the structured outcome of a full sync operation for one
// sport. A sync always produces a result; provider failures are captured in
// Errors rather than propagated.
type SyncResult struct {
	SportKey         string   `json:"sport_key"`
	Source           string   `json:"source"`
	GamesUpdated     int      `json:"games_updated"`
	OddsUpdated      int      `json:"odds_updated"`
	BooksUpdated     int      `json:"books_updated"`
	MovementsCreated int      `json:"movements_created"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors"`
}

// CombinedSource is reported as the source when combine mode merged
// multiple providers.
const CombinedSource = "combined"
