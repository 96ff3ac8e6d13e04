package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCycleMultiplierLaw(t *testing.T) {
	in := Input{
		Currency: "INR",
		Discount: decimal.Zero,
		Items: []LineItem{
			{Qty: d("2"), Rate: d("100"), BillingCycle: "HALF_YEARLY"},
		},
	}

	out := Recalculate(in)

	assert.True(t, out.Items[0].Amount.Equal(d("1200")), "got %s", out.Items[0].Amount)
	assert.Equal(t, CycleHalfYearly, out.Items[0].BillingCycle)
}

func TestNormalizeCycleDefaultsToOnetime(t *testing.T) {
	assert.Equal(t, CycleOnetime, NormalizeCycle(""))
	assert.Equal(t, CycleOnetime, NormalizeCycle("WEEKLY"))
	assert.Equal(t, CycleMonthly, NormalizeCycle(" monthly "))
	assert.Equal(t, CycleAnnual, NormalizeCycle("ANNUAL"))
}

func TestRecalculateIdempotent(t *testing.T) {
	in := Input{
		Currency:      "INR",
		Discount:      d("50"),
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "Karnataka",
		Items: []LineItem{
			{Qty: d("1"), Rate: d("500"), BillingCycle: "ONETIME"},
			{Qty: d("3"), Rate: d("100"), BillingCycle: "MONTHLY"},
		},
	}

	first := Recalculate(in)
	second := Recalculate(in)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Total.Equal(second.Tax.Total))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestTotalInvariant(t *testing.T) {
	in := Input{
		Currency:      "INR",
		Discount:      d("100"),
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "Kerala",
		Items: []LineItem{
			{Qty: d("2"), Rate: d("300"), BillingCycle: "ONETIME"},
		},
	}

	out := Recalculate(in)

	expected := out.Subtotal.Sub(in.Discount).Add(out.Tax.Total)
	assert.True(t, out.Total.Equal(expected))
}
