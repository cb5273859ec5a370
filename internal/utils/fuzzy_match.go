package utils

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Matcher scores lexical similarity between a query term and a field value in [0, 1].
type Matcher interface {
	Name() string
	Available() bool
	Similarity(term, value string) float64
}

// NewMatcher returns the fuzzy matcher when enabled, else the exact-substring matcher
func NewMatcher(fuzzyEnabled bool) Matcher {
	if fuzzyEnabled {
		return FuzzyMatcher{}
	}
	return SubstringMatcher{}
}

// FuzzyMatcher scores the best-aligned window of the longer string against the shorter
// one using normalized Levenshtein distance (a partial ratio).
type FuzzyMatcher struct{}

func (FuzzyMatcher) Name() string    { return "fuzzy" }
func (FuzzyMatcher) Available() bool { return true }

func (FuzzyMatcher) Similarity(term, value string) float64 {
	return PartialRatio(term, value)
}

// SubstringMatcher is the deterministic fallback: 1 when term occurs in value, else 0
type SubstringMatcher struct{}

func (SubstringMatcher) Name() string    { return "substring" }
func (SubstringMatcher) Available() bool { return true }

func (SubstringMatcher) Similarity(term, value string) float64 {
	term = normalizeTerm(term)
	value = normalizeTerm(value)
	if term == "" || value == "" {
		return 0
	}
	if strings.Contains(value, term) {
		return 1
	}
	return 0
}

// PartialRatio slides the shorter string over the longer and returns the best
// 1 - distance/length score over windows one rune shorter, equal and one rune longer.
// Exact substrings score 1.
func PartialRatio(a, b string) float64 {
	a = normalizeTerm(a)
	b = normalizeTerm(b)
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(string(longer), string(shorter)) {
		return 1
	}

	s := string(shorter)
	n := len(shorter)
	best := 0.0
	for w := n - 1; w <= n+1; w++ {
		if w < 1 || w > len(longer) {
			continue
		}
		denom := float64(n)
		if w > n {
			denom = float64(w)
		}
		for i := 0; i+w <= len(longer); i++ {
			d := levenshtein.ComputeDistance(s, string(longer[i:i+w]))
			if score := 1 - float64(d)/denom; score > best {
				best = score
			}
		}
	}
	return best
}

func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// amenityAliases maps each canonical amenity to the spellings seen in listings and queries
var amenityAliases = map[string][]string{
	"gym":           {"gym", "gymnasium", "fitness", "fitness center", "fitness centre", "health club"},
	"swimming pool": {"swimming pool", "pool", "swimming"},
	"parking":       {"parking", "car park", "covered parking", "car parking", "garage"},
	"clubhouse":     {"clubhouse", "club house", "club"},
	"garden":        {"garden", "landscaped garden", "green area", "lawn"},
	"security":      {"security", "24x7 security", "24-hour security", "cctv", "gated", "gated community"},
	"lift":          {"lift", "lifts", "elevator", "elevators"},
	"power backup":  {"power backup", "power back up", "backup", "generator", "dg backup"},
	"playground":    {"playground", "play area", "kids play area", "children's play area", "kids area"},
	"jogging track": {"jogging track", "jogging", "walking track", "running track"},
	"tennis court":  {"tennis court", "tennis"},
	"balcony":       {"balcony", "terrace"},
	"intercom":      {"intercom"},
	"fire safety":   {"fire safety", "fire fighting", "fire alarm", "sprinklers"},
}

// AmenityVocabulary returns every alias/canonical pair, longest alias first
func AmenityVocabulary() []AmenityAlias {
	var out []AmenityAlias
	for canonical, aliases := range amenityAliases {
		for _, a := range aliases {
			out = append(out, AmenityAlias{Alias: a, Canonical: canonical})
		}
	}
	sortAliases(out)
	return out
}

// AmenityAlias pairs a surface form with its canonical amenity name
type AmenityAlias struct {
	Alias     string
	Canonical string
}

func sortAliases(a []AmenityAlias) {
	sort.Slice(a, func(i, j int) bool {
		if len(a[i].Alias) != len(a[j].Alias) {
			return len(a[i].Alias) > len(a[j].Alias)
		}
		return a[i].Alias < a[j].Alias
	})
}

// NormalizeAmenity maps a free-form amenity to its canonical name. Unknown values are
// returned lowercased and trimmed, with ok false.
func NormalizeAmenity(amenity string) (canonical string, ok bool) {
	s := normalizeTerm(amenity)
	if s == "" {
		return "", false
	}
	if _, exists := amenityAliases[s]; exists {
		return s, true
	}
	for c, aliases := range amenityAliases {
		for _, a := range aliases {
			if s == a {
				return c, true
			}
		}
	}
	return s, false
}

// FuzzyMatchAmenity reports whether a listing amenity satisfies a requested one.
// Both sides are canonicalized; otherwise any alias of the request occurring in the
// listing's text counts.
func FuzzyMatchAmenity(requested, amenity string) bool {
	req, _ := NormalizeAmenity(requested)
	have := normalizeTerm(amenity)
	if req == "" || have == "" {
		return false
	}
	if c, _ := NormalizeAmenity(have); c == req {
		return true
	}
	if strings.Contains(have, req) {
		return true
	}
	for _, alias := range amenityAliases[req] {
		if containsWord(have, alias) {
			return true
		}
	}
	return false
}

// containsWord reports whether phrase occurs in s on word boundaries
func containsWord(s, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		leftOK := i == 0 || s[i-1] == ' '
		rightOK := end == len(s) || s[end] == ' '
		if leftOK && rightOK {
			return true
		}
		start = i + 1
	}
}

// HasAllAmenities reports whether every requested amenity is matched by one of have
func HasAllAmenities(requested, have []string) bool {
	for _, r := range requested {
		found := false
		for _, h := range have {
			if FuzzyMatchAmenity(r, h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
