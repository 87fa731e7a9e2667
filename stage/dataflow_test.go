package stage

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDataflow(t *testing.T) {
	meta := map[string]any{KeyName: "x"}
	seq := func(yield func(Entry) bool) {
		yield(Entry{Meta: meta, Content: 1})
	}
	tests := []struct {
		name string
		in   any
		want []Entry
	}{
		{name: "nil", in: nil, want: nil},
		{name: "bare metadata", in: meta, want: []Entry{{Meta: meta}}},
		{name: "pair", in: [2]any{meta, "hi"}, want: []Entry{{Meta: meta, Content: "hi"}}},
		{name: "pair without mapping is content", in: [2]any{1, 2},
			want: []Entry{{Meta: map[string]any{}, Content: [2]any{1, 2}}}},
		{name: "string", in: "hello", want: []Entry{{Meta: map[string]any{}, Content: "hello"}}},
		{name: "number", in: 3.5, want: []Entry{{Meta: map[string]any{}, Content: 3.5}}},
		{name: "entry", in: Entry{Meta: meta, Content: 1}, want: []Entry{{Meta: meta, Content: 1}}},
		{name: "entry pointer", in: &Entry{Meta: meta}, want: []Entry{{Meta: meta}}},
		{name: "entries", in: []Entry{{Meta: meta}, {Meta: meta, Content: 2}},
			want: []Entry{{Meta: meta}, {Meta: meta, Content: 2}}},
		{name: "iterator", in: seq, want: []Entry{{Meta: meta, Content: 1}}},
		{name: "mapping list", in: []map[string]any{meta, meta}, want: []Entry{{Meta: meta}, {Meta: meta}}},
		{name: "mixed list", in: []any{meta, [2]any{meta, "c"}, "s", nil},
			want: []Entry{{Meta: meta}, {Meta: meta, Content: "c"}, {Meta: map[string]any{}, Content: "s"}}},
		{name: "nested list", in: []any{[]any{meta}}, want: []Entry{{Meta: meta}}},
		{name: "metadata value", in: NewMetaData(meta),
			want: []Entry{{Meta: NewMetaData(meta).Data()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDataflow(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDataflow() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDataflowStopsEarly(t *testing.T) {
	flow := []any{map[string]any{}, map[string]any{}, map[string]any{}}
	var n int
	for range Dataflow(flow) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d entries, want 2", n)
	}
	if got := len(slices.Collect(Dataflow(flow))); got != 3 {
		t.Errorf("collected %d entries, want 3", got)
	}
}
