// Package money provides exact decimal arithmetic for billing amounts and
// the Indonesian locale formatting used on invoices and captions.
package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Zero is the default for every optional cost field.
var Zero = decimal.Zero

// Parse converts a request string into a decimal amount. Empty input
// parses to zero.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// FormatRupiah formats an amount as "Rp 1.500.000" with id-ID thousands
// grouping. Whole-rupiah amounts carry no decimal places; fractional
// amounts keep two, separated by a comma.
func FormatRupiah(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs()
	intPart := abs.Truncate(0)

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("Rp ")
	b.WriteString(groupThousands(intPart.String()))

	if frac := abs.Sub(intPart); !frac.IsZero() {
		// StringFixed(2) yields "0.50"; keep the two digits after the dot.
		b.WriteString(",")
		b.WriteString(frac.StringFixed(2)[2:])
	}
	return b.String()
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatLongDate renders a date the way invoices print it: "2 Januari 2026".
func FormatLongDate(t time.Time) string {
	return t.Format("2") + " " + indonesianMonths[t.Month()-1] + " " + t.Format("2006")
}

// FormatShortDate renders a date as "2/1/2026" (day/month/year).
func FormatShortDate(t time.Time) string {
	return t.Format("2/1/2006")
}

// FormatTimestamp renders a generation timestamp for the invoice footer.
func FormatTimestamp(t time.Time) string {
	return FormatLongDate(t) + " " + t.Format("15.04")
}
