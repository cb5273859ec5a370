package dataset

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	lakhSuffixRe = regexp.MustCompile(`\b\d+(?:\.\d+)?\s*l\b`)
	intRe        = regexp.MustCompile(`\d+`)
)

// ParsePriceLakhs converts listing price text to lakhs. It understands crore and lakh
// units ("1.2 Cr", "85 Lakh", "85L"), thousands ("950k") and raw rupee amounts
// (anything above 100000 is divided by one lakh). Unparseable input returns nil.
func ParsePriceLakhs(s string) *float64 {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("₹", "", ",", "", "rs.", "", "inr", "").Replace(v)
	v = strings.TrimSpace(v)
	if v == "" || v == "nan" || v == "na" || v == "n/a" {
		return nil
	}

	first := func() (float64, bool) {
		m := numberRe.FindString(v)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	}

	switch {
	case strings.Contains(v, "cr"):
		if f, ok := first(); ok {
			return price(f * 100)
		}
		return nil
	case strings.Contains(v, "lakh") || strings.Contains(v, "lac") || lakhSuffixRe.MatchString(v):
		if f, ok := first(); ok {
			return price(f)
		}
		return nil
	case strings.HasSuffix(v, "k"):
		if f, ok := first(); ok {
			return price(f / 100)
		}
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	if f > 100000 {
		f /= 100000
	}
	return price(f)
}

func price(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// NormalizeBHK extracts the bedroom count from configuration text ("3 BHK", "2.5BHK" -> 2).
// Studios and zero counts are unknown.
func NormalizeBHK(s string) *int {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || strings.Contains(v, "studio") {
		return nil
	}
	m := intRe.FindString(v)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// SplitAddress takes city and locality from the last two comma-separated parts of a
// full address. A single part is treated as the locality.
func SplitAddress(full string) (city, locality string) {
	var parts []string
	for _, p := range strings.Split(full, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", normalizePlace(parts[0])
	}
	return normalizePlace(parts[len(parts)-1]), normalizePlace(parts[len(parts)-2])
}

// SplitAmenities splits a pipe, semicolon or comma separated amenity list
func SplitAmenities(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	sep := ","
	switch {
	case strings.Contains(s, "|"):
		sep = "|"
	case strings.Contains(s, ";"):
		sep = ";"
	}
	var out []string
	for _, a := range strings.Split(s, sep) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
