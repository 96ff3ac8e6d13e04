package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MatchRules selects every active rule whose amount band contains total and
// returns them in chain order: sort_order ascending, id as the tiebreaker.
// Band edges are inclusive on both sides.
func MatchRules(rules []ApprovalRule, total decimal.Decimal) []ApprovalRule {
	matched := make([]ApprovalRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if total.LessThan(rule.MinAmount) {
			continue
		}
		if rule.MaxAmount != nil && total.GreaterThan(*rule.MaxAmount) {
			continue
		}
		matched = append(matched, rule)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].SortOrder != matched[j].SortOrder {
			return matched[i].SortOrder < matched[j].SortOrder
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}
