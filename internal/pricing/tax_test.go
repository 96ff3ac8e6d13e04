package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTaxIntraState(t *testing.T) {
	in := Input{
		Currency:      "INR",
		Discount:      decimal.Zero,
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "karnataka", // case-insensitive match
		Items: []LineItem{
			{Qty: d("1"), Rate: d("1000"), BillingCycle: "ONETIME"},
		},
	}

	out := Recalculate(in)

	assert.True(t, out.Tax.CGST.Equal(d("90")), "cgst %s", out.Tax.CGST)
	assert.True(t, out.Tax.SGST.Equal(d("90")), "sgst %s", out.Tax.SGST)
	assert.True(t, out.Tax.IGST.IsZero())
	assert.True(t, out.Total.Equal(d("1180")), "total %s", out.Total)
}

func TestTaxInterState(t *testing.T) {
	in := Input{
		Currency:      "INR",
		Discount:      decimal.Zero,
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "Maharashtra",
		Items: []LineItem{
			{Qty: d("1"), Rate: d("1000"), BillingCycle: "ONETIME"},
		},
	}

	out := Recalculate(in)

	assert.True(t, out.Tax.IGST.Equal(d("180")), "igst %s", out.Tax.IGST)
	assert.True(t, out.Tax.CGST.IsZero())
	assert.True(t, out.Tax.SGST.IsZero())
	assert.True(t, out.Total.Equal(d("1180")), "total %s", out.Total)
}

func TestTaxZeroForNonINR(t *testing.T) {
	in := Input{
		Currency:      "USD",
		Discount:      d("10"),
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "Karnataka",
		Items: []LineItem{
			{Qty: d("1"), Rate: d("1000"), BillingCycle: "ONETIME"},
		},
	}

	out := Recalculate(in)

	assert.True(t, out.Tax.CGST.IsZero())
	assert.True(t, out.Tax.SGST.IsZero())
	assert.True(t, out.Tax.IGST.IsZero())
	assert.True(t, out.Total.Equal(d("990")))
}

func TestTaxZeroWhenJurisdictionIndeterminate(t *testing.T) {
	base := Input{
		Currency:      "INR",
		GSTApplicable: true,
		Items: []LineItem{
			{Qty: d("1"), Rate: d("1000"), BillingCycle: "ONETIME"},
		},
	}

	missingCompany := base
	missingCompany.CustomerState = "Karnataka"
	assert.True(t, Recalculate(missingCompany).Tax.Total.IsZero())

	missingCustomer := base
	missingCustomer.CompanyState = "Karnataka"
	assert.True(t, Recalculate(missingCustomer).Tax.Total.IsZero())

	gstOff := base
	gstOff.CompanyState = "Karnataka"
	gstOff.CustomerState = "Karnataka"
	gstOff.GSTApplicable = false
	assert.True(t, Recalculate(gstOff).Tax.Total.IsZero())
}

func TestTaxableBaseClampedAtZero(t *testing.T) {
	in := Input{
		Currency:      "INR",
		Discount:      d("5000"), // discount exceeds subtotal
		GSTApplicable: true,
		CompanyState:  "Karnataka",
		CustomerState: "Karnataka",
		Items: []LineItem{
			{Qty: d("1"), Rate: d("1000"), BillingCycle: "ONETIME"},
		},
	}

	out := Recalculate(in)

	// No tax on a negative base, and no error either.
	assert.True(t, out.Tax.Total.IsZero())
	assert.True(t, out.Total.Equal(d("-4000")))
}
