package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

func odds(book string, market normalize.MarketKey, outcome normalize.OutcomeType, price string) *models.Odds {
	return &models.Odds{
		GameID:       "primary_odds:ev1",
		BookmakerKey: book,
		Market:       market,
		OutcomeType:  outcome,
		Price:        decimal.RequireFromString(price),
	}
}

func TestBestOdds_PicksHighestAmericanPrice(t *testing.T) {
	input := []*models.Odds{
		odds("draftkings", normalize.MarketH2H, normalize.OutcomeHome, "-110"),
		odds("fanduel", normalize.MarketH2H, normalize.OutcomeHome, "-105"),
		odds("caesars", normalize.MarketH2H, normalize.OutcomeHome, "-120"),
		odds("draftkings", normalize.MarketH2H, normalize.OutcomeAway, "130"),
		odds("fanduel", normalize.MarketH2H, normalize.OutcomeAway, "150"),
	}

	quotes := BestOdds(input)
	require.Len(t, quotes, 2)

	byOutcome := map[normalize.OutcomeType]BestQuote{}
	for _, q := range quotes {
		byOutcome[q.OutcomeType] = q
	}

	// -105 beats -110 and -120 for the bettor.
	home := byOutcome[normalize.OutcomeHome]
	assert.Equal(t, "fanduel", home.BookmakerKey)
	assert.True(t, home.Price.Equal(decimal.RequireFromString("-105")))

	// +150 beats +130.
	away := byOutcome[normalize.OutcomeAway]
	assert.Equal(t, "fanduel", away.BookmakerKey)
	assert.True(t, away.Price.Equal(decimal.RequireFromString("150")))
}

func TestBestOdds_PositiveBeatsNegative(t *testing.T) {
	input := []*models.Odds{
		odds("a", normalize.MarketH2H, normalize.OutcomeHome, "-105"),
		odds("b", normalize.MarketH2H, normalize.OutcomeHome, "150"),
	}

	quotes := BestOdds(input)
	require.Len(t, quotes, 1)
	assert.Equal(t, "b", quotes[0].BookmakerKey)
}

func TestBestOdds_TieKeepsFirstSeen(t *testing.T) {
	input := []*models.Odds{
		odds("first", normalize.MarketH2H, normalize.OutcomeHome, "-110"),
		odds("second", normalize.MarketH2H, normalize.OutcomeHome, "-110"),
	}

	quotes := BestOdds(input)
	require.Len(t, quotes, 1)
	assert.Equal(t, "first", quotes[0].BookmakerKey)
}

func TestBestOdds_GroupsByMarketAndOutcome(t *testing.T) {
	input := []*models.Odds{
		odds("a", normalize.MarketH2H, normalize.OutcomeHome, "-110"),
		odds("a", normalize.MarketSpreads, normalize.OutcomeHome, "-115"),
		odds("a", normalize.MarketTotals, normalize.OutcomeOver, "-105"),
		odds("a", normalize.MarketTotals, normalize.OutcomeUnder, "-115"),
	}

	quotes := BestOdds(input)
	assert.Len(t, quotes, 4)
}

func TestBestOdds_Empty(t *testing.T) {
	assert.Empty(t, BestOdds(nil))
	assert.Empty(t, BestOdds([]*models.Odds{}))
}

func TestBestOdds_ImpliedProbability(t *testing.T) {
	input := []*models.Odds{
		odds("draftkings", normalize.MarketH2H, normalize.OutcomeAway, "150"),
		odds("fanduel", normalize.MarketH2H, normalize.OutcomeHome, "-200"),
	}

	quotes := BestOdds(input)
	require.Len(t, quotes, 2)

	byOutcome := map[normalize.OutcomeType]BestQuote{}
	for _, q := range quotes {
		byOutcome[q.OutcomeType] = q
	}

	// +150 -> decimal 2.5 -> 40%; -200 -> decimal 1.5 -> 66.6667%.
	assert.True(t, byOutcome[normalize.OutcomeAway].ImpliedProbability.Equal(decimal.RequireFromString("0.4")))
	assert.True(t, byOutcome[normalize.OutcomeHome].ImpliedProbability.Equal(decimal.RequireFromString("0.666667")))
}
