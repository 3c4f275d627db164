package present

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats d as US dollars with thousands separators, e.g.
// $1,234,567.89. The fractional part is taken from the exact decimal value.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + fixed
	}
	return sign + "$" + printer.Sprintf("%d", n) + "." + frac
}

// Count formats n with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percent formats part/total as a percentage with one decimal place.
func Percent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return printer.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
