// Package analytics answers read-side questions over stored odds: best
// available prices per outcome and the biggest recent line movements.
package analytics

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-aggregator/internal/models"
	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// BestQuote is the winning quote for one outcome of one market across all
// bookmakers offering it.
type BestQuote struct {
	Market             normalize.MarketKey   `json:"market"`
	OutcomeType        normalize.OutcomeType `json:"outcome_type"`
	BookmakerKey       string                `json:"bookmaker_key"`
	Price              decimal.Decimal       `json:"price"`
	Point              *decimal.Decimal      `json:"point,omitempty"`
	ImpliedProbability decimal.Decimal       `json:"implied_probability"`
}

// BestOdds picks, for every (market, outcome) pair present in the input, the
// bookmaker offering the best American price. Ties keep the first-seen
// bookmaker in input order. The input is typically one game's odds rows.
func BestOdds(odds []*models.Odds) []BestQuote {
	type pairKey struct {
		market  normalize.MarketKey
		outcome normalize.OutcomeType
	}

	best := make(map[pairKey]*models.Odds)
	var order []pairKey

	for _, o := range odds {
		key := pairKey{o.Market, o.OutcomeType}
		current, seen := best[key]
		if !seen {
			best[key] = o
			order = append(order, key)
			continue
		}
		if normalize.BetterAmericanPrice(o.Price, current.Price) {
			best[key] = o
		}
	}

	quotes := make([]BestQuote, 0, len(order))
	for _, key := range order {
		o := best[key]
		quotes = append(quotes, BestQuote{
			Market:             o.Market,
			OutcomeType:        o.OutcomeType,
			BookmakerKey:       o.BookmakerKey,
			Price:              o.Price,
			Point:              o.Point,
			ImpliedProbability: impliedFromAmerican(o.Price),
		})
	}
	return quotes
}

// impliedFromAmerican returns the implied win probability for an American
// price, or zero when the price is malformed.
func impliedFromAmerican(price decimal.Decimal) decimal.Decimal {
	dec, err := normalize.AmericanToDecimal(price)
	if err != nil {
		return decimal.Zero
	}
	implied, err := normalize.ImpliedProbability(dec)
	if err != nil {
		return decimal.Zero
	}
	return implied
}
