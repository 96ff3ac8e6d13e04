// Package pricing is the monetary recalculation engine. It is a total
// function of the quote's line items, discount, and resolved jurisdiction;
// callers must run it before trusting any stored total. All math uses
// arbitrary-precision decimals; rounding happens only at presentation.
package pricing

import "github.com/shopspring/decimal"

// LineItem is one quote line as fed into the engine.
type LineItem struct {
	Qty          decimal.Decimal
	Rate         decimal.Decimal
	BillingCycle string
}

// Input is everything the engine needs. CompanyState is the issuing branch's
// registered state ("" when no branch is linked); CustomerState is the
// client-branch state or the quote's free-text billing state.
type Input struct {
	Currency      string
	Discount      decimal.Decimal
	GSTApplicable bool
	CompanyState  string
	CustomerState string
	Items         []LineItem
}

// ItemResult carries the normalized cycle and derived amount for one line.
type ItemResult struct {
	BillingCycle BillingCycle
	Amount       decimal.Decimal
}

// Totals is the canonical money state of a quote.
// Total == Subtotal - Discount + Tax, always.
type Totals struct {
	Items    []ItemResult
	Subtotal decimal.Decimal
	Tax      TaxBreakdown
	Total    decimal.Decimal
}

// Recalculate computes every derived monetary field from scratch. Idempotent:
// same input, same output, no incremental patching.
func Recalculate(in Input) Totals {
	out := Totals{
		Items:    make([]ItemResult, len(in.Items)),
		Subtotal: decimal.Zero,
	}

	for i, item := range in.Items {
		cycle := NormalizeCycle(item.BillingCycle)
		amount := item.Qty.Mul(item.Rate).Mul(CycleMultiplier(cycle))
		out.Items[i] = ItemResult{BillingCycle: cycle, Amount: amount}
		out.Subtotal = out.Subtotal.Add(amount)
	}

	out.Tax = ComputeTax(in, out.Subtotal)
	out.Total = out.Subtotal.Sub(in.Discount).Add(out.Tax.Total)
	return out
}
