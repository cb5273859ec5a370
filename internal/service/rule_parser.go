package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	porterstemmer "github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"

	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

// Vocabulary is the place-name lookup the rule-based parser matches against
type Vocabulary interface {
	Cities() []string
	Localities() []string
	CityOfLocality(locality string) (string, bool)
}

const (
	numPattern  = `(\d+(?:\.\d+)?)`
	unitPattern = `(crores?|cr|lakhs?|lacs?|l|k)`
)

var (
	digitCommaRe = regexp.MustCompile(`(\d),(\d)`)
	currencyRe   = regexp.MustCompile(`₹|\brs\b\.?|\binr\b`)

	bhkRe = regexp.MustCompile(`\b(\d{1,2})\s*-?\s*(?:bhk|bed(?:room)?s?|br)\b`)

	budgetBetweenRe = regexp.MustCompile(`\bbetween\s+` + numPattern + `\s*` + unitPattern + `?\s+(?:and|to|-)\s+` + numPattern + `\s*` + unitPattern + `?\b`)
	budgetRangeRe   = regexp.MustCompile(`\b` + numPattern + `\s*` + unitPattern + `?\s*(?:to|-)\s*` + numPattern + `\s*` + unitPattern + `\b`)
	budgetMaxRe     = regexp.MustCompile(`\b(?:under|below|within|upto|up\s+to|less\s+than|not\s+more\s+than|max(?:imum)?|budget(?:\s+of)?)\s+` + numPattern + `\s*` + unitPattern + `?\b`)
	budgetMinRe     = regexp.MustCompile(`\b(?:above|over|min(?:imum)?|more\s+than|at\s+least)\s+` + numPattern + `\s*` + unitPattern + `?\b`)
	budgetAmountRe  = regexp.MustCompile(`\b` + numPattern + `\s*` + unitPattern + `\b`)
)

type possessionRule struct {
	re     *regexp.Regexp
	status model.PossessionStatus
}

// Longer phrases come first so "ready to move" is consumed before "ready".
var possessionRules = []possessionRule{
	{regexp.MustCompile(`\bready[\s-]+to[\s-]+move\b`), model.PossessionReady},
	{regexp.MustCompile(`\bunder[\s-]+construction\b`), model.PossessionUnderConstruction},
	{regexp.MustCompile(`\bnew[\s-]+launch(?:es)?\b`), model.PossessionUnderConstruction},
	{regexp.MustCompile(`\bready\b`), model.PossessionReady},
	{regexp.MustCompile(`\brtm\b`), model.PossessionReady},
	{regexp.MustCompile(`\bupcoming\b`), model.PossessionUnderConstruction},
	{regexp.MustCompile(`\blaunching\b`), model.PossessionUnderConstruction},
	{regexp.MustCompile(`\buc\b`), model.PossessionUnderConstruction},
}

var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "in": true, "at": true, "on": true, "of": true, "and": true,
	"or": true, "with": true, "for": true, "near": true, "nearby": true, "around": true, "to": true,
	"is": true, "are": true, "any": true, "some": true, "me": true, "i": true, "want": true,
	"need": true, "looking": true, "show": true, "find": true, "please": true, "have": true, "has": true,
	"flat": true, "flats": true, "apartment": true, "apartments": true, "home": true, "homes": true,
	"house": true, "property": true, "properties": true, "bhk": true, "under": true, "below": true,
	"within": true, "upto": true, "up": true, "budget": true, "above": true, "over": true,
	"between": true, "price": true, "cost": true, "lakh": true, "lakhs": true, "cr": true, "crore": true,
	"crores": true, "rs": true, "from": true, "min": true, "-": true, ".": true,
}

type placeMatcher struct {
	name string
	re   *regexp.Regexp
}

type amenityMatcher struct {
	canonical string
	re        *regexp.Regexp
}

// RuleBasedParser is the deterministic, I/O-free parser
type RuleBasedParser struct {
	vocab      Vocabulary
	cities     []placeMatcher
	localities []placeMatcher
	amenities  []amenityMatcher
	stems      map[string]utils.AmenityAlias
}

// NewRuleBasedParser precompiles the place and amenity matchers. vocab may be nil.
func NewRuleBasedParser(vocab Vocabulary) *RuleBasedParser {
	p := &RuleBasedParser{vocab: vocab, stems: map[string]utils.AmenityAlias{}}
	if vocab != nil {
		p.cities = compilePlaces(vocab.Cities())
		p.localities = compilePlaces(vocab.Localities())
	}
	for _, a := range utils.AmenityVocabulary() {
		p.amenities = append(p.amenities, amenityMatcher{
			canonical: a.Canonical,
			re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(a.Alias) + `s?\b`),
		})
		if !strings.Contains(a.Alias, " ") {
			st := stem(a.Alias)
			if _, taken := p.stems[st]; !taken {
				p.stems[st] = a
			}
		}
	}
	return p
}

func compilePlaces(names []string) []placeMatcher {
	sorted := append([]string(nil), names...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	out := make([]placeMatcher, 0, len(sorted))
	for _, n := range sorted {
		if n == "" {
			continue
		}
		out = append(out, placeMatcher{name: n, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`)})
	}
	return out
}

func (p *RuleBasedParser) Name() string    { return "rule-based" }
func (p *RuleBasedParser) Available() bool { return true }

// Parse never returns an error
func (p *RuleBasedParser) Parse(_ context.Context, text string) (model.Filter, error) {
	return p.ParseText(text), nil
}

// ParseText applies the rules in priority order. Each rule blanks out the span it used.
func (p *RuleBasedParser) ParseText(text string) model.Filter {
	var f model.Filter
	s := prepareQuery(text)
	if strings.TrimSpace(s) == "" {
		return f
	}

	if loc := bhkRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil && n > 0 {
			f.BHK = &n
		}
		s = blank(s, loc[0], loc[1])
	}

	for _, rule := range possessionRules {
		if loc := rule.re.FindStringIndex(s); loc != nil {
			status := rule.status
			f.Possession = &status
			s = blank(s, loc[0], loc[1])
			break
		}
	}

	s = parseBudget(s, &f)

	// a locality may contain a city name ("thane west"), so it is located before the city
	// match and its span is hidden from the city pass
	var locality *placeMatcher
	var localitySpan []int
	for i := range p.localities {
		if loc := p.localities[i].re.FindStringIndex(s); loc != nil {
			locality, localitySpan = &p.localities[i], loc
			break
		}
	}
	citySearch := s
	if localitySpan != nil {
		citySearch = blank(s, localitySpan[0], localitySpan[1])
	}
	for _, c := range p.cities {
		if loc := c.re.FindStringIndex(citySearch); loc != nil {
			f.City = model.StringPtr(c.name)
			s = blank(s, loc[0], loc[1])
			break
		}
	}
	if locality != nil {
		f.Locality = model.StringPtr(locality.name)
		s = blank(s, localitySpan[0], localitySpan[1])
		if f.City == nil {
			if city, ok := p.vocab.CityOfLocality(locality.name); ok {
				f.City = model.StringPtr(city)
			}
		}
	}

	s = p.parseAmenities(s, &f)
	f.FreeTextTerms = leftoverTerms(s)
	return f
}

func prepareQuery(text string) string {
	s := strings.ToLower(norm.NFKC.String(text))
	for digitCommaRe.MatchString(s) {
		s = digitCommaRe.ReplaceAllString(s, "$1$2")
	}
	s = currencyRe.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return ' '
	}, s)
}

// blank replaces s[i:j] with spaces, keeping byte offsets stable
func blank(s string, i, j int) string {
	return s[:i] + strings.Repeat(" ", j-i) + s[j:]
}

func parseBudget(s string, f *model.Filter) string {
	if m := budgetBetweenRe.FindStringSubmatchIndex(s); m != nil {
		setRange(f, s, m)
		return blank(s, m[0], m[1])
	}
	if m := budgetRangeRe.FindStringSubmatchIndex(s); m != nil {
		setRange(f, s, m)
		return blank(s, m[0], m[1])
	}

	// a cue followed by an amount that is not money ("min 2 parking") is left for free text
	if m := budgetMaxRe.FindStringSubmatchIndex(s); m != nil {
		if v, ok := toLakhs(group(s, m, 1), group(s, m, 2)); ok {
			f.BudgetLakhsMax = &v
			s = blank(s, m[0], m[1])
		}
	}
	if m := budgetMinRe.FindStringSubmatchIndex(s); m != nil {
		if v, ok := toLakhs(group(s, m, 1), group(s, m, 2)); ok {
			f.BudgetLakhsMin = &v
			s = blank(s, m[0], m[1])
		}
	}
	if !f.HasBudget() {
		if m := budgetAmountRe.FindStringSubmatchIndex(s); m != nil {
			if v, ok := toLakhs(group(s, m, 1), group(s, m, 2)); ok {
				f.BudgetLakhsMax = &v
				s = blank(s, m[0], m[1])
			}
		}
	}
	if f.BudgetLakhsMin != nil && f.BudgetLakhsMax != nil && *f.BudgetLakhsMin > *f.BudgetLakhsMax {
		f.BudgetLakhsMin, f.BudgetLakhsMax = f.BudgetLakhsMax, f.BudgetLakhsMin
	}
	return s
}

// setRange reads groups (lo, loUnit, hi, hiUnit); a unit on the upper bound applies to both
func setRange(f *model.Filter, s string, m []int) {
	loUnit, hiUnit := group(s, m, 2), group(s, m, 4)
	if loUnit == "" {
		loUnit = hiUnit
	}
	lo, okLo := toLakhs(group(s, m, 1), loUnit)
	hi, okHi := toLakhs(group(s, m, 3), hiUnit)
	if okLo {
		f.BudgetLakhsMin = &lo
	}
	if okHi {
		f.BudgetLakhsMax = &hi
	}
	if okLo && okHi && lo > hi {
		f.BudgetLakhsMin, f.BudgetLakhsMax = f.BudgetLakhsMax, f.BudgetLakhsMin
	}
}

func group(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

// toLakhs converts an amount to lakhs. A unit-less value is only money when it reads as
// raw rupees (100000 and above); anything smaller is a year, a count or noise.
func toLakhs(num, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	switch {
	case strings.HasPrefix(unit, "cr"):
		return v * 100, true
	case unit == "k":
		return v / 100, true
	case unit != "":
		return v, true
	case v >= 100000:
		return v / 100000, true
	}
	return 0, false
}

type amenityHit struct {
	pos       int
	canonical string
}

func (p *RuleBasedParser) parseAmenities(s string, f *model.Filter) string {
	var hits []amenityHit
	for _, a := range p.amenities {
		for {
			loc := a.re.FindStringIndex(s)
			if loc == nil {
				break
			}
			hits = append(hits, amenityHit{pos: loc[0], canonical: a.canonical})
			s = blank(s, loc[0], loc[1])
		}
	}

	for _, tok := range tokenSpans(s) {
		word := s[tok[0]:tok[1]]
		alias, ok := p.stems[stem(word)]
		// inflections only: "elevators" matches "elevator", "general" does not match "generator"
		if !ok || !strings.HasPrefix(word, alias.Alias[:len(alias.Alias)-1]) {
			continue
		}
		hits = append(hits, amenityHit{pos: tok[0], canonical: alias.Canonical})
		s = blank(s, tok[0], tok[1])
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	seen := map[string]bool{}
	for _, h := range hits {
		if !seen[h.canonical] {
			seen[h.canonical] = true
			f.Amenities = append(f.Amenities, h.canonical)
		}
	}
	return s
}

// tokenSpans returns the byte offsets of each whitespace-separated token
func tokenSpans(s string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(s)})
	}
	return spans
}

func leftoverTerms(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, ".-")
		if tok == "" || fillerWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func stem(word string) (out string) {
	defer func() {
		if recover() != nil {
			out = word
		}
	}()
	return porterstemmer.StemString(word)
}
