package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/dendrascience/amshared/stage"
	"github.com/pkg/errors"
)

// readDataflow decodes a JSON request from path, or stdin for "" and "-".
//
// The request is one object (bare metadata) or an array of items. Each item
// is an object, or a two element array [metadata, content].
func readDataflow(path string, stdin io.Reader) ([]any, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "decode dataflow")
	}
	return toDataflow(v)
}

func toDataflow(v any) ([]any, error) {
	switch x := v.(type) {
	case map[string]any:
		return []any{x}, nil
	case []any:
		out := make([]any, 0, len(x))
		for i, item := range x {
			switch it := item.(type) {
			case map[string]any:
				out = append(out, it)
			case []any:
				m, ok := pairMeta(it)
				if !ok {
					return nil, errors.Errorf("item %d: expected [metadata, content]", i)
				}
				out = append(out, [2]any{m, it[1]})
			default:
				return nil, errors.Errorf("item %d: expected object or pair, got %T", i, item)
			}
		}
		return out, nil
	}
	return nil, errors.Errorf("expected object or array, got %T", v)
}

func pairMeta(item []any) (map[string]any, bool) {
	if len(item) != 2 {
		return nil, false
	}
	m, ok := item[0].(map[string]any)
	return m, ok
}

// withDefaultFormat fills the format of entries that name none.
func withDefaultFormat(flow []any, format string) []any {
	out := make([]any, 0, len(flow))
	for _, e := range stage.ParseDataflow(flow) {
		meta := e.Meta
		if _, ok := meta[stage.KeyFormat]; !ok {
			meta[stage.KeyFormat] = format
		}
		out = append(out, [2]any{meta, e.Content})
	}
	return out
}

// writeRecords prints one JSON object per record.
func writeRecords(w io.Writer, recs []stage.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range recs {
		out := map[string]any{"meta": rec.Meta}
		if rec.Content != nil {
			out["content"] = stage.Tolerant(rec.Content)
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
