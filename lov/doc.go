// Package lov holds tagged lists of values and a matcher that assigns tags
// to a column of strings.
//
// A TagLoV keeps tags in insertion order. It can be built from the several
// input shapes that configuration files tend to use, each with its own
// constructor:
//
//	FromMap(map[string][]string{"ONE": {"1", "one"}})    // tags sorted
//	FromPairs(Pair{"ONE", []string{"1", "one"}})
//	FromRows([]string{"ONE", "1", "one"})
//	Parse([]any{map[string]any{"ONE": "1, one"}}, ",")  // decoded config
package lov
