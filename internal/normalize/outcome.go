package normalize

import "strings"

// Outcome classification maps provider-specific outcome name fields onto the
// canonical OutcomeType values. The rules are an ordered table of
// (predicate, outcome) pairs evaluated deterministically; if no rule
// matches, the outcome is dropped rather than stored with a guessed type.

// OutcomeContext carries everything known about one upstream outcome when
// classifying it.
type OutcomeContext struct {
	Name     string    // outcome/selection name as sent by the provider
	Marker   string    // explicit home/away marker field, if the provider has one
	HomeTeam string
	AwayTeam string
	Market   MarketKey
}

type outcomeRule struct {
	name  string
	match func(OutcomeContext) (OutcomeType, bool)
}

// Moneyline and spread outcomes resolve against team identity; totals
// resolve against over/under literals. Rule order matters: explicit markers
// win over name matching, exact name matches win over containment.
var sideRules = []outcomeRule{
	{
		name: "explicit marker",
		match: func(c OutcomeContext) (OutcomeType, bool) {
			switch strings.ToLower(strings.TrimSpace(c.Marker)) {
			case "home":
				return OutcomeHome, true
			case "away":
				return OutcomeAway, true
			}
			return "", false
		},
	},
	{
		name: "exact team name",
		match: func(c OutcomeContext) (OutcomeType, bool) {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return "", false
			}
			if strings.EqualFold(name, c.HomeTeam) {
				return OutcomeHome, true
			}
			if strings.EqualFold(name, c.AwayTeam) {
				return OutcomeAway, true
			}
			return "", false
		},
	},
	{
		name: "team name containment",
		match: func(c OutcomeContext) (OutcomeType, bool) {
			name := strings.ToLower(strings.TrimSpace(c.Name))
			if name == "" {
				return "", false
			}
			home := strings.ToLower(c.HomeTeam)
			away := strings.ToLower(c.AwayTeam)
			if home != "" && (strings.Contains(name, home) || strings.Contains(home, name)) {
				return OutcomeHome, true
			}
			if away != "" && (strings.Contains(name, away) || strings.Contains(away, name)) {
				return OutcomeAway, true
			}
			return "", false
		},
	},
	{
		name: "home/away literal",
		match: func(c OutcomeContext) (OutcomeType, bool) {
			name := strings.ToLower(c.Name)
			switch {
			case strings.Contains(name, "home"):
				return OutcomeHome, true
			case strings.Contains(name, "away"):
				return OutcomeAway, true
			}
			return "", false
		},
	},
}

var totalsRules = []outcomeRule{
	{
		name: "over/under literal",
		match: func(c OutcomeContext) (OutcomeType, bool) {
			name := strings.ToLower(c.Name)
			marker := strings.ToLower(c.Marker)
			switch {
			case strings.Contains(name, "over") || strings.Contains(marker, "over"):
				return OutcomeOver, true
			case strings.Contains(name, "under") || strings.Contains(marker, "under"):
				return OutcomeUnder, true
			}
			return "", false
		},
	},
}

// ClassifyOutcome resolves an upstream outcome to its canonical type. The
// second return value is false when no rule matched; callers must drop the
// outcome in that case.
func ClassifyOutcome(c OutcomeContext) (OutcomeType, bool) {
	rules := sideRules
	if c.Market == MarketTotals {
		rules = totalsRules
	}
	for _, rule := range rules {
		if outcome, ok := rule.match(c); ok {
			return outcome, true
		}
	}
	return "", false
}
