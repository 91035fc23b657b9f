package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/layoutguard/internal/suite"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values. A pattern
// wrapped in slashes ("/^home/") is a regular expression; anything else is a
// case-insensitive substring.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

func (p Pattern) String() string {
	return p.raw
}

// Entries keeps the entries whose test name or file path matches any pattern.
// With no patterns every entry is kept.
func Entries(entries []suite.Entry, patterns []Pattern) []suite.Entry {
	if len(patterns) == 0 {
		return entries
	}
	result := make([]suite.Entry, 0, len(entries))
	for _, entry := range entries {
		if matchesAny(entry, patterns) {
			result = append(result, entry)
		}
	}
	return result
}

func matchesAny(entry suite.Entry, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(entry.Test.Name) || pattern.Match(entry.Path) {
			return true
		}
	}
	return false
}
