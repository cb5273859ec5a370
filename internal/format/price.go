// Package format holds the display rules shared by the summarizer and the card presenter.
package format

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LakhsPerCrore is the scale between the two display units
const LakhsPerCrore = 100.0

// PriceLakhs formats a canonical lakh amount: values >= 100 lakhs render as crores,
// smaller values as lakhs, both with two decimals. Nil renders as "N/A".
func PriceLakhs(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "N/A"
	}
	return PriceLakhsValue(*v)
}

// PriceLakhsValue is PriceLakhs for a known amount
func PriceLakhsValue(v float64) string {
	if v >= LakhsPerCrore {
		return fmt.Sprintf("₹%.2f Cr", v/LakhsPerCrore)
	}
	return fmt.Sprintf("₹%.2f L", v)
}

// PriceSlug renders a price for use inside a URL slug, e.g. "1-20-cr" or "85-l"
func PriceSlug(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "price-na"
	}
	p := *v
	if p >= LakhsPerCrore {
		return strings.ReplaceAll(fmt.Sprintf("%.2f", p/LakhsPerCrore), ".", "-") + "-cr"
	}
	if math.Abs(p-math.Round(p)) < 1e-6 {
		return fmt.Sprintf("%d-l", int(math.Round(p)))
	}
	return strings.ReplaceAll(fmt.Sprintf("%.2f", p), ".", "-") + "-l"
}

// Slugify lowercases s, strips currency symbols and replaces every rune outside
// [a-z0-9-] with a hyphen. Runs of hyphens collapse to one.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.Is(unicode.Sc, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Title converts a normalized lowercase value to display case.
// A Caser carries state, so one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
