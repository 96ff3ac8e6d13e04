package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BillingCycle is a line item's recurrence tag. The multiplier scales
// rate x qty into the amount quoted for the item.
type BillingCycle string

const (
	CycleOnetime    BillingCycle = "ONETIME"
	CycleMonthly    BillingCycle = "MONTHLY"
	CycleHalfYearly BillingCycle = "HALF_YEARLY"
	CycleAnnual     BillingCycle = "ANNUAL"
)

var cycleMultipliers = map[BillingCycle]decimal.Decimal{
	CycleOnetime:    decimal.NewFromInt(1),
	CycleMonthly:    decimal.NewFromInt(1),
	CycleHalfYearly: decimal.NewFromInt(6),
	CycleAnnual:     decimal.NewFromInt(12),
}

// NormalizeCycle maps free-form input to one of the four allowed tags.
// Unrecognized or absent values default to ONETIME.
func NormalizeCycle(v string) BillingCycle {
	cycle := BillingCycle(strings.ToUpper(strings.TrimSpace(v)))
	if _, ok := cycleMultipliers[cycle]; !ok {
		return CycleOnetime
	}
	return cycle
}

// CycleMultiplier returns the multiplier for a normalized cycle.
func CycleMultiplier(cycle BillingCycle) decimal.Decimal {
	if mult, ok := cycleMultipliers[cycle]; ok {
		return mult
	}
	return cycleMultipliers[CycleOnetime]
}
