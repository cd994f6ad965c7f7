package database

import "strings"

const (
	wildcardAny    = '%'
	wildcardSingle = '_'
)

// Pattern matches catalog keys against a wildcard expression: % matches any
// run of characters (including none), _ matches exactly one character and
// every other character matches itself, case-sensitively.
type Pattern struct {
	raw   []rune
	exact bool
}

func CompilePattern(raw string) Pattern {
	return Pattern{
		raw:   []rune(raw),
		exact: !strings.ContainsAny(raw, "%_"),
	}
}

// Literal reports whether the pattern contains no wildcards.
func (p Pattern) Literal() bool {
	return p.exact
}

func (p Pattern) String() string {
	return string(p.raw)
}

func (p Pattern) Match(value string) bool {
	if p.exact {
		return string(p.raw) == value
	}

	text := []rune(value)
	pi, ti := 0, 0
	star, mark := -1, 0

	for ti < len(text) {
		switch {
		case pi < len(p.raw) && p.raw[pi] == wildcardAny:
			star, mark = pi, ti
			pi++
		case pi < len(p.raw) && (p.raw[pi] == wildcardSingle || p.raw[pi] == text[ti]):
			pi++
			ti++
		case star >= 0:
			// let the last % swallow one more character and retry
			mark++
			pi, ti = star+1, mark
		default:
			return false
		}
	}

	for pi < len(p.raw) && p.raw[pi] == wildcardAny {
		pi++
	}
	return pi == len(p.raw)
}

// Filter returns the values that match, preserving their order.
func (p Pattern) Filter(values []string) []string {
	matched := make([]string, 0, len(values))
	for _, value := range values {
		if p.Match(value) {
			matched = append(matched, value)
		}
	}
	return matched
}
