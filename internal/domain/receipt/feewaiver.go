package receipt

import "github.com/shopspring/decimal"

// FeeWaiverRule grants free delivery for orders composed exclusively of
// one category once they reach a minimum amount. Rules are supplied by
// configuration; the renderer only explains them, the storefront backend
// owns the actual fee computation.
type FeeWaiverRule struct {
	CategoryTag  string
	MinimumOrder decimal.Decimal
	WaivedFee    decimal.Decimal
}

// MatchRule returns the rule for the given category tag, if any.
// An empty tag (mixed-category order) never matches.
func MatchRule(rules []FeeWaiverRule, categoryTag string) (FeeWaiverRule, bool) {
	if categoryTag == "" {
		return FeeWaiverRule{}, false
	}
	for _, r := range rules {
		if r.CategoryTag == categoryTag {
			return r, true
		}
	}
	return FeeWaiverRule{}, false
}
