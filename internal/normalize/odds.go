package normalize

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Odds-format conversion. The canonical stored price is always American
// odds; decimal odds exist only as an internal representation for
// best-price comparison and for adapters whose upstreams quote
// decimal/payout-style prices.

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalTwo     = decimal.NewFromInt(2)
	decimalHundred = decimal.NewFromInt(100)
)

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.6667.
func AmericanToDecimal(american decimal.Decimal) (decimal.Decimal, error) {
	if american.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid american odds: cannot be 0")
	}
	if american.IsPositive() {
		return american.Div(decimalHundred).Add(decimalOne), nil
	}
	return decimalHundred.Div(american.Abs()).Add(decimalOne), nil
}

// DecimalToAmerican converts decimal odds to American odds.
// 2.50 -> +150, 1.6667 -> -150.
func DecimalToAmerican(dec decimal.Decimal) (decimal.Decimal, error) {
	if dec.LessThanOrEqual(decimalOne) {
		return decimal.Zero, fmt.Errorf("invalid decimal odds: must be > 1.0, got %s", dec)
	}
	if dec.GreaterThanOrEqual(decimalTwo) {
		return dec.Sub(decimalOne).Mul(decimalHundred).Round(0), nil
	}
	return decimalHundred.Neg().Div(dec.Sub(decimalOne)).Round(0), nil
}

// ParsePrice parses an upstream price value into a decimal, rejecting
// values that did not survive numeric coercion.
func ParsePrice(v any) (decimal.Decimal, error) {
	n := ToNumberOrNil(v)
	if n == nil {
		return decimal.Zero, fmt.Errorf("unparseable price value: %v", v)
	}
	return decimal.NewFromFloat(*n), nil
}

// ImpliedProbability returns the implied win probability for decimal odds.
func ImpliedProbability(dec decimal.Decimal) (decimal.Decimal, error) {
	if dec.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("invalid decimal odds: must be > 0, got %s", dec)
	}
	return decimalOne.DivRound(dec, 6), nil
}

// BetterAmericanPrice reports whether candidate is a strictly better price
// for the bettor than current. American odds compare by plain numeric
// ordering: +150 beats +130, and -105 beats -110.
func BetterAmericanPrice(candidate, current decimal.Decimal) bool {
	return candidate.GreaterThan(current)
}
