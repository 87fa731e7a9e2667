package stage

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strings"
)

// MetaData is a normalized metadata record. The reserved keys are resolved
// once in NewMetaData; every other key is carried through unchanged.
type MetaData struct {
	data   map[string]any
	suffix *string
}

// replacement lists what a reserved key becomes when its value is blank,
// true, false or absent. A nil replacement removes the key.
type replacement struct {
	empty, isTrue, isFalse, absent any
}

var replacements = []struct {
	key string
	rep replacement
}{
	{KeyPayload, replacement{true, true, false, true}},
	{KeyRubric, replacement{RubricEmpty, RubricEmpty, RubricEmpty, RubricEmpty}},
	{KeyName, replacement{Heap, Heap, Heap, Heap}},
	{KeyPart, replacement{nil, Wild, nil, nil}},
	{KeyFormat, replacement{"", "", "", ""}},
}

// NewMetaData copies src and resolves the reserved keys.
//
// A part of false together with no name selects every atomic name. Integral
// numeric parts, such as the float64 produced by JSON decoding, become int.
func NewMetaData(src map[string]any) *MetaData {
	data := make(map[string]any, len(src)+len(replacements))
	maps.Copy(data, src)

	if part, ok := data[KeyPart]; ok && part == false {
		if name, ok := data[KeyName]; !ok || name == nil {
			data[KeyName] = Wild
		}
	}
	for _, r := range replacements {
		replaceValue(data, r.key, r.rep)
	}
	if part, ok := data[KeyPart]; ok {
		data[KeyPart] = normalizePart(part)
	}
	return &MetaData{data: data}
}

func replaceValue(data map[string]any, key string, rep replacement) {
	v, ok := data[key]
	out := v
	switch {
	case !ok || v == nil:
		out = rep.absent
	case v == false:
		out = rep.isFalse
	case v == true:
		out = rep.isTrue
	case isBlank(v):
		out = rep.empty
	}
	if out == nil {
		delete(data, key)
		return
	}
	data[key] = out
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s) == ""
	case []byte:
		return strings.TrimSpace(string(s)) == ""
	}
	return false
}

func normalizePart(v any) any {
	switch p := v.(type) {
	case float64:
		if p == math.Trunc(p) && !math.IsInf(p, 0) {
			return int(p)
		}
	case float32:
		if float64(p) == math.Trunc(float64(p)) {
			return int(p)
		}
	case json.Number:
		if n, err := p.Int64(); err == nil {
			return int(n)
		}
	case int8:
		return int(p)
	case int16:
		return int(p)
	case int32:
		return int(p)
	case int64:
		return int(p)
	case uint8:
		return int(p)
	case uint16:
		return int(p)
	case uint32:
		return int(p)
	}
	return v
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Get returns the value stored under key.
func (m *MetaData) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Set stores value under key without renormalizing.
func (m *MetaData) Set(key string, value any) {
	m.data[key] = value
}

// Delete removes key.
func (m *MetaData) Delete(key string) {
	delete(m.data, key)
}

// Rubric returns the rubric path, "" for the top level.
func (m *MetaData) Rubric() string {
	return stringOf(m.data[KeyRubric])
}

// Name returns the object name, Heap when none was given.
func (m *MetaData) Name() string {
	return stringOf(m.data[KeyName])
}

// Format returns the driver key of the content.
func (m *MetaData) Format() string {
	return stringOf(m.data[KeyFormat])
}

// Part returns the part value and whether it is present.
func (m *MetaData) Part() (any, bool) {
	v, ok := m.data[KeyPart]
	return v, ok
}

// PartNumber returns the part as an int when it is an integer.
func (m *MetaData) PartNumber() (int, bool) {
	n, ok := m.data[KeyPart].(int)
	return n, ok
}

// PartString renders the part as used in file names.
func (m *MetaData) PartString() string {
	v, ok := m.data[KeyPart]
	if !ok {
		return ""
	}
	return stringOf(v)
}

// IsWildPart reports whether the part selects every part.
func (m *MetaData) IsWildPart() bool {
	return m.data[KeyPart] == Wild
}

// Payload reports whether the record participates in dispatch.
func (m *MetaData) Payload() bool {
	return truthy(m.data[KeyPayload])
}

// IsAtomic reports whether the record is a single object rather than a part
// of a multipart object or the heap.
func (m *MetaData) IsAtomic() bool {
	_, hasPart := m.data[KeyPart]
	return m.Name() != Heap && !hasPart
}

// Suffix is the content file extension, "." + format, unless overridden.
func (m *MetaData) Suffix() string {
	if m.suffix != nil {
		return *m.suffix
	}
	if f := m.Format(); f != "" {
		return "." + f
	}
	return ""
}

// SetSuffix overrides the content file extension.
func (m *MetaData) SetSuffix(sfx string) {
	m.suffix = &sfx
}

// ResetSuffix drops a suffix override.
func (m *MetaData) ResetSuffix() {
	m.suffix = nil
}

// Data returns a shallow copy of the record.
func (m *MetaData) Data() map[string]any {
	return maps.Clone(m.data)
}

// Clone returns an independent copy, suffix override included.
func (m *MetaData) Clone() *MetaData {
	c := &MetaData{data: maps.Clone(m.data)}
	if m.suffix != nil {
		sfx := *m.suffix
		c.suffix = &sfx
	}
	return c
}

func (m *MetaData) String() string {
	name := m.Name()
	if p := m.PartString(); p != "" {
		name += "/" + p
	}
	if r := m.Rubric(); r != "" {
		return r + "/" + name
	}
	return name
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	}
	return true
}
