package quotation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders d with two decimals and thousands separators, e.g.
// "1,234,567.80".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
