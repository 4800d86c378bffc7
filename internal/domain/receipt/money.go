package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount with fixed two-decimal Brazilian currency
// formatting, e.g. "R$ 12,50".
func FormatBRL(amount decimal.Decimal) string {
	return "R$ " + strings.ReplaceAll(amount.StringFixed(2), ".", ",")
}
