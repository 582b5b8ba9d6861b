// Package format renders decimal money amounts for people.
package format

import (
	"github.com/iwvelando/loan-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NumericCurrency returns an amount rounded to the cent with thousands
// separators and no currency symbol (e.g., "-1,234.56"). The value never
// passes through float64.
func NumericCurrency(amount decimal.Decimal) string {
	rounded := mathutil.RoundCent(amount.Abs())
	fixed := mathutil.FormatCent(rounded)

	sign := ""
	if amount.IsNegative() && !rounded.IsZero() {
		sign = "-"
	}
	p := message.NewPrinter(language.English)
	return sign + p.Sprintf("%d", rounded.IntPart()) + fixed[len(fixed)-3:]
}

