// Package pricing converts between marketing price strings and numbers.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Parse extracts the dollar amount from strings such as "$425,000",
// "425000", "$1.2M" or "From $389K". ok is false when no number is present.
func Parse(s string) (amount float64, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return 0, false
	}

	end := start
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == ',' || s[end] == '.') {
		end++
	}

	num := strings.ReplaceAll(s[start:end], ",", "")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	if end < len(s) {
		switch s[end] {
		case 'K':
			v *= 1_000
		case 'M':
			v *= 1_000_000
		}
	}
	return v, true
}

// Format renders a whole-dollar amount with grouping, e.g. "$425,000".
// Negative amounts render as "-$2,500".
func Format(amount float64) string {
	rounded := int64(math.Round(amount))
	if rounded < 0 {
		return "-$" + printer.Sprintf("%d", -rounded)
	}
	return "$" + printer.Sprintf("%d", rounded)
}

// FormatDelta renders a signed price modifier, e.g. "+$1,250" or "-$300".
// Zero renders as "Included".
func FormatDelta(amount float64) string {
	switch {
	case amount > 0:
		return "+" + Format(amount)
	case amount < 0:
		return Format(amount)
	}
	return "Included"
}
