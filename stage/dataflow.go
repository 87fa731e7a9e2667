package stage

import (
	"iter"
)

// Entry is one request item: metadata plus optional content.
type Entry struct {
	Meta    map[string]any
	Content any
}

// Record is the result of one operation on one stored object. An empty
// Meta means nothing was done.
type Record struct {
	Meta    map[string]any
	Content any
}

// Empty reports whether the operation produced nothing.
func (r Record) Empty() bool {
	return len(r.Meta) == 0
}

// Failed reports whether the record carries an error kind.
func (r Record) Failed() bool {
	_, ok := r.Meta[KeyError]
	return ok && r.Meta[KeyPayload] == false
}

// ErrorKind returns the stored error kind, or "".
func (r Record) ErrorKind() string {
	s, _ := r.Meta[KeyError].(string)
	return s
}

// Dataflow turns a request into entries. Accepted shapes:
//
//   - Entry, *Entry, []Entry and iter.Seq[Entry]
//   - map[string]any: bare metadata, no content
//   - [2]any{map[string]any, content}: a metadata/content pair
//   - []map[string]any and []any: each element parsed on its own
//   - nil: no entries
//   - anything else, strings included: content with empty metadata
func Dataflow(x any) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		parseDataflow(x, yield)
	}
}

// ParseDataflow collects Dataflow(x).
func ParseDataflow(x any) []Entry {
	var out []Entry
	for e := range Dataflow(x) {
		out = append(out, e)
	}
	return out
}

func parseDataflow(x any, yield func(Entry) bool) bool {
	switch v := x.(type) {
	case nil:
		return true
	case Entry:
		return yield(v)
	case *Entry:
		if v == nil {
			return true
		}
		return yield(*v)
	case []Entry:
		for _, e := range v {
			if !yield(e) {
				return false
			}
		}
		return true
	case iter.Seq[Entry]:
		for e := range v {
			if !yield(e) {
				return false
			}
		}
		return true
	case func(func(Entry) bool):
		for e := range v {
			if !yield(e) {
				return false
			}
		}
		return true
	case map[string]any:
		return yield(Entry{Meta: v})
	case *MetaData:
		return yield(Entry{Meta: v.Data()})
	case [2]any:
		if m, ok := v[0].(map[string]any); ok {
			return yield(Entry{Meta: m, Content: v[1]})
		}
		return yield(Entry{Meta: map[string]any{}, Content: v})
	case []map[string]any:
		for _, m := range v {
			if !yield(Entry{Meta: m}) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range v {
			if !parseDataflow(item, yield) {
				return false
			}
		}
		return true
	}
	return yield(Entry{Meta: map[string]any{}, Content: x})
}
