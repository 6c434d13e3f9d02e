package analytics

import (
	"strings"

	"github.com/shopspring/decimal"
)

const Currency = "₹"

var thousand = decimal.NewFromInt(1000)

// FormatMoney: от 1000 целые рупии с разделителями ("₹12,345"), меньше два знака ("₹99.50").
func FormatMoney(d decimal.Decimal) string {
	if d.IsZero() {
		return Currency + "0"
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	if d.LessThan(thousand) {
		return sign + Currency + d.StringFixed(2)
	}
	return sign + Currency + groupThousands(d.Round(0).String())
}

func groupThousands(digits string) string {
	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
