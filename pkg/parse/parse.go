// Package parse provides fail-soft field parsers for the raw string
// fragments found in bank export files. Malformed dates and amounts are a
// normal occurrence in real exports (summary rows, headers, blank lines), so
// these functions report failure with a boolean instead of an error.
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; the first full match wins.
var dateLayouts = []string{
	"02/01/2006",      // 30/01/2026
	"02 Jan 2006",     // 30 Jan 2026
	"02-01-2006",      // 30-01-2026
	"2006-01-02",      // 2026-01-30
	"02 January 2006", // 30 January 2026
}

var (
	// localCurrencyChars matches the letters and symbols banks prepend to
	// local-currency amounts (SGD markers, dollar sign) plus embedded
	// whitespace.
	localCurrencyChars = regexp.MustCompile(`[SGD$\s]`)

	maskedCardBullets = regexp.MustCompile(`[•X]{4}[-\s]*[•X]{4}[-\s]*[•X]{4}[-\s]*\d{4}`)
	maskedCardLiteral = regexp.MustCompile(`XXXX-XXXX-XXXX-\d{4}`)
	refNumber         = regexp.MustCompile(`Ref No:\s*\d+`)
	trailingGeoCode   = regexp.MustCompile(`\s+(SG|SGP|MY|GB|US|AU|IN|GBR|MYR|USD|AUD)\s*$`)
)

// trimQuoted strips surrounding whitespace and one layer of wrapping double
// quotes.
func trimQuoted(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// ParseDate parses the date formats that appear across supported bank
// exports. The second return value is false when the input is empty or
// matches no supported format.
func ParseDate(s string) (time.Time, bool) {
	s = trimQuoted(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses an amount string into a decimal. It handles currency
// markers, thousands separators, quoted values, and both negative notations
// (leading minus and accounting parentheses). The second return value is
// false when no decimal remains.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = trimQuoted(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = localCurrencyChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")

	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// CleanDescription folds a raw description into one line and strips the
// noise banks embed in it: masked card numbers, reference-number fragments,
// and a trailing country/currency code. Idempotent.
func CleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	s = maskedCardBullets.ReplaceAllString(s, "")
	s = maskedCardLiteral.ReplaceAllString(s, "")
	s = refNumber.ReplaceAllString(s, "")
	s = trailingGeoCode.ReplaceAllString(s, "")

	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
