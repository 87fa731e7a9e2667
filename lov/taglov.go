package lov

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/dendrascience/amshared/util"
	"github.com/pkg/errors"
)

// TagLoV is an ordered mapping from tag to list of values. Tags whose
// values came from a mapping also keep that mapping as misc data.
type TagLoV struct {
	tags []string
	data map[string][]string
	misc map[string]map[string]any
}

// Pair is one tag with its values.
type Pair struct {
	Tag    string
	Values []string
}

// New returns an empty TagLoV.
func New() *TagLoV {
	return &TagLoV{data: map[string][]string{}, misc: map[string]map[string]any{}}
}

// FromMap builds a TagLoV from m with tags in sorted order.
func FromMap(m map[string][]string) *TagLoV {
	t := New()
	for _, tag := range slices.Sorted(maps.Keys(m)) {
		t.Add(tag, m[tag]...)
	}
	return t
}

// FromPairs builds a TagLoV in the order of pairs. A repeated tag keeps its
// first position and its last values.
func FromPairs(pairs ...Pair) *TagLoV {
	t := New()
	for _, p := range pairs {
		t.Add(p.Tag, p.Values...)
	}
	return t
}

// FromRows builds a TagLoV from rows whose first field is the tag and the
// rest its values. Empty rows are skipped.
func FromRows(rows ...[]string) *TagLoV {
	t := New()
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		t.Add(row[0], row[1:]...)
	}
	return t
}

// Parse builds a TagLoV from a decoded configuration value. Accepted shapes:
//
//   - string: a single tag without values
//   - map[string]any: tags in sorted order
//   - []any of the above, or of rows ([]any / []string) holding the tag
//     followed by its values
//
// A value list given as a string is split on sep (on white space when sep is
// empty). A value list given as a mapping contributes its keys, in sorted
// order, and is kept as misc data. Values of any other type give an empty
// list.
func Parse(src any, sep string) (*TagLoV, error) {
	t := New()
	switch s := src.(type) {
	case *TagLoV:
		return s.Clone(), nil
	case string:
		t.Add(s)
		return t, nil
	case map[string]any:
		t.addMapping(s, sep)
		return t, nil
	case [][]string:
		return FromRows(s...), nil
	case []any:
		for _, entry := range s {
			if err := t.addEntry(entry, sep); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
	return nil, errors.Errorf("lov: unsupported source %T", src)
}

func (t *TagLoV) addEntry(entry any, sep string) error {
	switch e := entry.(type) {
	case map[string]any:
		t.addMapping(e, sep)
	case string:
		t.Add(e)
	case []string:
		if len(e) > 0 {
			t.Add(e[0], e[1:]...)
		}
	case []any:
		switch len(e) {
		case 0:
		case 1:
			t.Add(fmt.Sprint(e[0]))
		case 2:
			t.setValue(fmt.Sprint(e[0]), e[1], sep)
		default:
			t.setValue(fmt.Sprint(e[0]), e[1:], sep)
		}
	default:
		return errors.Errorf("lov: unsupported entry %T", entry)
	}
	return nil
}

func (t *TagLoV) addMapping(m map[string]any, sep string) {
	for _, tag := range slices.Sorted(maps.Keys(m)) {
		t.setValue(tag, m[tag], sep)
	}
}

func (t *TagLoV) setValue(tag string, v any, sep string) {
	switch lov := v.(type) {
	case string:
		t.Add(tag, splitStrip(lov, sep)...)
	case []string:
		t.Add(tag, lov...)
	case []any:
		values := make([]string, len(lov))
		for i, x := range lov {
			values[i] = fmt.Sprint(x)
		}
		t.Add(tag, values...)
	case map[string]any:
		t.Add(tag, slices.Sorted(maps.Keys(lov))...)
		t.misc[tag] = maps.Clone(lov)
	default:
		t.Add(tag)
	}
}

func splitStrip(s, sep string) []string {
	if sep == "" {
		return strings.Fields(s)
	}
	return util.Split(s, sep, 0, 0, "")
}

// Add sets the values of tag, appending the tag when it is new.
func (t *TagLoV) Add(tag string, values ...string) *TagLoV {
	if _, ok := t.data[tag]; !ok {
		t.tags = append(t.tags, tag)
	}
	t.data[tag] = append([]string{}, values...)
	return t
}

// Contains reports whether tag is present.
func (t *TagLoV) Contains(tag string) bool {
	_, ok := t.data[tag]
	return ok
}

// Tags returns the tags in order.
func (t *TagLoV) Tags() []string {
	return slices.Clone(t.tags)
}

// Values returns the values of tag.
func (t *TagLoV) Values(tag string) ([]string, bool) {
	v, ok := t.data[tag]
	return v, ok
}

// Misc returns the mapping a tag's values were taken from, if any.
func (t *TagLoV) Misc(tag string) (map[string]any, bool) {
	m, ok := t.misc[tag]
	return m, ok
}

// Len returns the number of tags.
func (t *TagLoV) Len() int {
	return len(t.tags)
}

// LoVs returns every list of values in tag order.
func (t *TagLoV) LoVs() [][]string {
	out := make([][]string, len(t.tags))
	for i, tag := range t.tags {
		out[i] = t.data[tag]
	}
	return out
}

// Zip yields (tag, value) for every value in order.
func (t *TagLoV) Zip() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, tag := range t.tags {
			for _, v := range t.data[tag] {
				if !yield(tag, v) {
					return
				}
			}
		}
	}
}

// Export returns one single-entry mapping per tag. With a non-empty sep the
// values are joined into one string.
func (t *TagLoV) Export(sep string) []map[string]any {
	out := make([]map[string]any, len(t.tags))
	for i, tag := range t.tags {
		if sep != "" {
			out[i] = map[string]any{tag: strings.Join(t.data[tag], sep)}
		} else {
			out[i] = map[string]any{tag: slices.Clone(t.data[tag])}
		}
	}
	return out
}

// Map applies fn to each list of values together with its misc data.
func (t *TagLoV) Map(fn func(lov []string, misc map[string]any) any) map[string]any {
	out := make(map[string]any, len(t.tags))
	for _, tag := range t.tags {
		out[tag] = fn(t.data[tag], t.misc[tag])
	}
	return out
}

// Clone returns a copy whose tags, values and misc maps are independent of t.
func (t *TagLoV) Clone() *TagLoV {
	c := New()
	for _, tag := range t.tags {
		c.Add(tag, t.data[tag]...)
	}
	for tag, m := range t.misc {
		c.misc[tag] = maps.Clone(m)
	}
	return c
}
