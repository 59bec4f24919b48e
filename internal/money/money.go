// Package money formats GBP amounts for en-GB quote screens and exports.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Currency is the ISO code every amount in this service is expressed in.
	Currency = "GBP"
	symbol   = "£"
)

// Round rounds v half away from zero to places decimals.
// NaN and infinities round to zero.
func Round(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

// Headline formats a figure with no decimal places, e.g. £1,300.
func Headline(v float64) string {
	return format(v, 0)
}

// Itemised formats a line-item figure with two decimals, e.g. £1,300.00.
func Itemised(v float64) string {
	return format(v, 2)
}

// Percent formats a percentage to one decimal place, e.g. 23.1%.
func Percent(v float64) string {
	return Round(v, 1).StringFixed(1) + "%"
}

func format(v float64, places int32) string {
	d := Round(v, places)
	negative := d.IsNegative()

	raw := d.Abs().StringFixed(places)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	b.WriteString(groupThousands(intPart))
	if places > 0 {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// groupThousands inserts a comma between every group of three digits.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
