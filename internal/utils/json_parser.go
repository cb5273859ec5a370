package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be recovered from model output
var ErrNoJSON = errors.New("no JSON object found in model output")

var (
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	controlCharRe   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes a JSON object from model output into target. It accepts bare JSON,
// JSON inside a markdown fence, JSON surrounded by prose, and the usual small mistakes
// (trailing commas, unquoted keys, single-quoted strings).
func ParseAIJSON(input string, target interface{}) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty model output: %w", ErrNoJSON)
	}

	for _, candidate := range jsonCandidates(input) {
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
		if repaired := repairJSON(candidate); repaired != candidate {
			if err := json.Unmarshal([]byte(repaired), target); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrNoJSON, truncateString(input, 100))
}

// jsonCandidates lists the substrings worth decoding, most specific first
func jsonCandidates(input string) []string {
	candidates := []string{input}
	if m := fencedJSONRe.FindStringSubmatch(input); len(m) > 1 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if start := strings.IndexByte(input, '{'); start >= 0 {
		if obj := balancedObject(input[start:]); obj != "" {
			candidates = append(candidates, obj)
		}
	}
	return candidates
}

// balancedObject returns the prefix of s that closes the first '{', honouring string literals
func balancedObject(s string) string {
	depth := 0
	inString := false
	escape := false
	for i, ch := range s {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	s = controlCharRe.ReplaceAllString(s, "")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = singleToDoubleQuotes(s)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	return s
}

// singleToDoubleQuotes swaps single quotes that open or close a value. A quote with
// word runes on both sides is an apostrophe and is kept.
func singleToDoubleQuotes(s string) string {
	runes := []rune(s)
	inDouble := false
	escape := false
	for i, ch := range runes {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			before := i > 0 && isWordRune(runes[i-1])
			after := i+1 < len(runes) && isWordRune(runes[i+1])
			if !(before && after) {
				runes[i] = '"'
			}
		}
	}
	return string(runes)
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
