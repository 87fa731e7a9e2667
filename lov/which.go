package lov

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Method reports whether value matches pattern.
type Method func(value, pattern string) bool

// Matching methods for WhichLoV and WhichTag.
var (
	Equal     Method = func(v, p string) bool { return v == p }
	Contains  Method = strings.Contains
	HasPrefix Method = strings.HasPrefix
	HasSuffix Method = strings.HasSuffix
	// Glob matches a doublestar pattern against the whole value.
	Glob Method = func(v, p string) bool {
		ok, err := doublestar.Match(p, v)
		return err == nil && ok
	}
	// Regexp matches a regular expression anchored at the start of the
	// value; the end is left open. Invalid expressions never match.
	Regexp Method = func(v, p string) bool {
		ok, err := regexp.MatchString(`^(?:`+p+`)`, v)
		return err == nil && ok
	}
)

// WhichLoV returns, for each value, the 1-based index of the first list
// holding a matching pattern, or 0 when nothing matches. Lists are tried in
// order, patterns within a list in order.
func WhichLoV(values []string, lovs [][]string, method Method) []int {
	if method == nil {
		method = Equal
	}
	out := make([]int, len(values))
	for i, v := range values {
	lists:
		for n, lov := range lovs {
			for _, p := range lov {
				if method(v, p) {
					out[i] = n + 1
					break lists
				}
			}
		}
	}
	return out
}

// WhichTag tags each value with the tag of the first matching list of t.
// Unmatched values get na, unless donor has an entry at the same index, in
// which case the donor value is used.
func WhichTag(values []string, t *TagLoV, na string, donor []string, method Method) []string {
	idx := WhichLoV(values, t.LoVs(), method)
	tags := t.Tags()
	out := make([]string, len(values))
	for i, n := range idx {
		switch {
		case n > 0:
			out[i] = tags[n-1]
		case i < len(donor):
			out[i] = donor[i]
		default:
			out[i] = na
		}
	}
	return out
}
