package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GST rates. Intra-state supplies split 18% into equal CGST and SGST halves;
// inter-state supplies carry the full rate as IGST.
var (
	halfRate = decimal.NewFromInt(9).Div(decimal.NewFromInt(100))
	fullRate = decimal.NewFromInt(18).Div(decimal.NewFromInt(100))
)

// TaxBreakdown carries the GST components of a quote.
type TaxBreakdown struct {
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	IGST  decimal.Decimal
	Total decimal.Decimal
}

func zeroTax() TaxBreakdown {
	return TaxBreakdown{
		CGST:  decimal.Zero,
		SGST:  decimal.Zero,
		IGST:  decimal.Zero,
		Total: decimal.Zero,
	}
}

// ComputeTax derives GST from the taxable base and the resolved jurisdiction.
// It never fails: indeterminate jurisdiction, foreign currency, or a disabled
// GST flag all degrade to zero tax.
func ComputeTax(in Input, subtotal decimal.Decimal) TaxBreakdown {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "INR"
	}
	// Domestic GST regime does not apply cross-currency.
	if currency != "INR" {
		return zeroTax()
	}

	companyState := strings.TrimSpace(in.CompanyState)
	if companyState == "" {
		return zeroTax()
	}

	customerState := strings.TrimSpace(in.CustomerState)
	if customerState == "" || !in.GSTApplicable {
		return zeroTax()
	}

	base := subtotal.Sub(in.Discount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	var breakdown TaxBreakdown
	if strings.EqualFold(companyState, customerState) {
		breakdown.CGST = base.Mul(halfRate)
		breakdown.SGST = base.Mul(halfRate)
		breakdown.IGST = decimal.Zero
	} else {
		breakdown.IGST = base.Mul(fullRate)
		breakdown.CGST = decimal.Zero
		breakdown.SGST = decimal.Zero
	}
	breakdown.Total = breakdown.CGST.Add(breakdown.SGST).Add(breakdown.IGST)
	return breakdown
}
