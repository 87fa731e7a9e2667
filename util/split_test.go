package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		s    string
		sep  string
		min  int
		max  int
		pad  string
		want []string
	}{
		{name: "no separator keeps string", s: " a, b ", want: []string{" a, b "}},
		{name: "separator trims fields", s: " a, b ,c", sep: ",", want: []string{"a", "b", "c"}},
		{name: "separator absent trims", s: "  a  ", sep: ",", want: []string{"a"}},
		{name: "pad to min", s: "a,b", sep: ",", min: 4, pad: "-", want: []string{"a", "b", "-", "-"}},
		{name: "cut to max", s: "a,b,c", sep: ",", max: 2, want: []string{"a", "b"}},
		{name: "pad then cut", s: "a", sep: ",", min: 3, max: 2, want: []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.s, tt.sep, tt.min, tt.max, tt.pad)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
