package format

import (
	"github.com/shopspring/decimal"
)

// Money renders an amount without trailing zeros: "250", "99.9",
// "10.55".
func Money(amount decimal.Decimal, currency string) string {
	rendered := amount.String()
	if currency == "" {
		return rendered
	}
	return rendered + " " + currency
}
