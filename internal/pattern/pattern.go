package pattern

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Pattern is either an exact byte sequence or a compiled regular expression.
// The zero value is the empty exact pattern.
//
// Regular expressions only match valid UTF-8 input; any operation on invalid
// input reports no match.
type Pattern struct {
	exact []byte
	re    *regexp.Regexp
}

// Exact returns a pattern matching b byte for byte.
func Exact(b []byte) Pattern {
	return Pattern{exact: append([]byte(nil), b...)}
}

// Text returns an exact pattern for s.
func Text(s string) Pattern {
	return Pattern{exact: []byte(s)}
}

// Regex compiles expr into a regular-expression pattern.
func Regex(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern %q: %w", expr, err)
	}
	return Pattern{re: re}, nil
}

// MustRegex is like Regex but panics on an invalid expression. It is meant for
// patterns written as literals in playbook code.
func MustRegex(expr string) Pattern {
	p, err := Regex(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// IsRegex reports whether p is a regular-expression pattern.
func (p Pattern) IsRegex() bool {
	return p.re != nil
}

func (p Pattern) String() string {
	if p.re != nil {
		return "/" + p.re.String() + "/"
	}
	return fmt.Sprintf("%q", p.exact)
}

// Contains reports whether p occurs anywhere in data.
func (p Pattern) Contains(data []byte) bool {
	if p.re == nil {
		return Contains(data, p.exact)
	}
	if !utf8.Valid(data) {
		return false
	}
	return p.re.Match(data)
}

// ContainsOnce reports whether p occurs in data exactly once, without
// overlapping.
func (p Pattern) ContainsOnce(data []byte) bool {
	if p.re == nil {
		return ContainsOnce(data, p.exact)
	}
	_, ok := p.matchOnce(data)
	return ok
}

// ReplaceOnce substitutes the sole occurrence of p in data with replacement.
// Regex replacements are literal; submatch references are not expanded.
func (p Pattern) ReplaceOnce(data, replacement []byte) ([]byte, bool) {
	if p.re == nil {
		return ReplaceOnce(data, p.exact, replacement)
	}
	loc, ok := p.matchOnce(data)
	if !ok {
		return nil, false
	}
	return splice(data, loc[0], loc[1], replacement), true
}

// matchOnce returns the bounds of the only regex match in data. An empty match
// in empty data counts as no match, the same as an empty exact pattern;
// anchors such as ^ or \z match once in any other data.
func (p Pattern) matchOnce(data []byte) ([]int, bool) {
	if !utf8.Valid(data) {
		return nil, false
	}
	matches := p.re.FindAllIndex(data, 2)
	if len(matches) != 1 {
		return nil, false
	}
	loc := matches[0]
	if len(data) == 0 && loc[0] == loc[1] {
		return nil, false
	}
	return loc, true
}
