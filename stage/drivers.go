package stage

import (
	"bufio"
	"bytes"
	"encoding"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"time"

	"github.com/dendrascience/amshared/driverpack"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const driverFileMode = 0o644

// Driver reads and writes content of one format.
type Driver interface {
	Read(path string) (any, error)
	Write(content any, path string) error
}

// Drivers maps format names to drivers.
type Drivers = driverpack.Pack[Driver]

// DriverFuncs adapts a pair of functions to Driver. A nil function reports
// ErrNotImplemented.
type DriverFuncs struct {
	ReadFunc  func(path string) (any, error)
	WriteFunc func(content any, path string) error
}

// Read calls ReadFunc.
func (d DriverFuncs) Read(path string) (any, error) {
	if d.ReadFunc == nil {
		return nil, ErrNotImplemented
	}
	return d.ReadFunc(path)
}

// Write calls WriteFunc.
func (d DriverFuncs) Write(content any, path string) error {
	if d.WriteFunc == nil {
		return ErrNotImplemented
	}
	return d.WriteFunc(content, path)
}

func init() {
	for _, v := range []any{
		map[string]any{},
		map[string]string{},
		map[string]int{},
		map[string]int64{},
		map[string]float64{},
		map[string]bool{},
		map[string][]any{},
		map[string][]string{},
		map[string]map[string]any{},
		map[int]any{},
		map[any]any{},
		[]any{},
		[][]any{},
		[][]string{},
		[]map[string]any{},
		[]map[string]string{},
		time.Time{},
	} {
		gob.Register(v)
	}
}

// registerGob registers the concrete types held by v, descending into maps,
// slices and arrays whose elements are interfaces. Types gob refuses are
// left to the encoder to report.
func registerGob(v any) {
	if v == nil {
		return
	}
	seen := map[reflect.Type]bool{}
	var walk func(rv reflect.Value, depth int)
	walk = func(rv reflect.Value, depth int) {
		for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return
			}
			rv = rv.Elem()
		}
		if depth > 32 {
			return
		}
		t := rv.Type()
		if !seen[t] {
			seen[t] = true
			func() {
				defer func() { _ = recover() }()
				gob.Register(rv.Interface())
			}()
		}
		switch rv.Kind() {
		case reflect.Map:
			if t.Elem().Kind() != reflect.Interface && t.Key().Kind() != reflect.Interface {
				return
			}
			iter := rv.MapRange()
			for iter.Next() {
				walk(iter.Key(), depth+1)
				walk(iter.Value(), depth+1)
			}
		case reflect.Slice, reflect.Array:
			if t.Elem().Kind() != reflect.Interface {
				return
			}
			for i := range rv.Len() {
				walk(rv.Index(i), depth+1)
			}
		}
	}
	walk(reflect.ValueOf(v), 0)
}

// GobDriver stores any gob-encodable value. It is the default for records
// without a format. Common map and slice types are registered up front;
// other concrete types are registered when first written, so reading them
// back in a fresh process needs a gob.Register call by the caller.
type GobDriver struct{}

type gobEnvelope struct {
	Value any
}

func (GobDriver) Read(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var env gobEnvelope
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&env); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return env.Value, nil
}

func (GobDriver) Write(content any, path string) error {
	registerGob(content)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobEnvelope{Value: content}); err != nil {
		return errors.Wrapf(ErrUnsupportedContent, "gob: %v", err)
	}
	return os.WriteFile(path, buf.Bytes(), driverFileMode)
}

// TextDriver stores content as plain text. Nil writes an empty file.
type TextDriver struct{}

func (TextDriver) Read(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (TextDriver) Write(content any, path string) error {
	var s string
	switch c := content.(type) {
	case nil:
	case string:
		s = c
	case []byte:
		s = string(c)
	case fmt.Stringer:
		s = c.String()
	case encoding.TextMarshaler:
		b, err := c.MarshalText()
		if err != nil {
			return errors.Wrapf(ErrUnsupportedContent, "text: %v", err)
		}
		s = string(b)
	default:
		s = fmt.Sprint(c)
	}
	return os.WriteFile(path, []byte(s), driverFileMode)
}

// JSONDriver stores content as JSON. Values JSON cannot represent are
// coerced before encoding: named numeric types become plain numbers, arrays
// and iterators become lists, anything else unrepresentable becomes null.
type JSONDriver struct{}

func (JSONDriver) Read(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var v any
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return v, nil
}

func (JSONDriver) Write(content any, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Tolerant(content)); err != nil {
		return errors.Wrapf(ErrUnsupportedContent, "json: %v", err)
	}
	return os.WriteFile(path, buf.Bytes(), driverFileMode)
}

// YAMLDriver stores content as YAML.
type YAMLDriver struct{}

func (YAMLDriver) Read(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return v, nil
}

func (YAMLDriver) Write(content any, path string) error {
	b, err := yaml.Marshal(Tolerant(content))
	if err != nil {
		return errors.Wrapf(ErrUnsupportedContent, "yaml: %v", err)
	}
	return os.WriteFile(path, b, driverFileMode)
}

// BytesDriver stores raw bytes. It accepts []byte, string and io.Reader.
type BytesDriver struct{}

func (BytesDriver) Read(path string) (any, error) {
	return os.ReadFile(path)
}

func (BytesDriver) Write(content any, path string) error {
	switch c := content.(type) {
	case []byte:
		return os.WriteFile(path, c, driverFileMode)
	case string:
		return os.WriteFile(path, []byte(c), driverFileMode)
	case io.Reader:
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, driverFileMode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, c); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return errors.Wrapf(ErrUnsupportedContent, "bin: %T", content)
}

// DefaultDrivers returns a fresh registry with the built-in formats.
func DefaultDrivers() *Drivers {
	gobDriver := driverpack.Value[Driver](GobDriver{})
	text := driverpack.Value[Driver](TextDriver{})
	yamlDriver := driverpack.Value[Driver](YAMLDriver{})
	return driverpack.New(map[string]driverpack.Factory[Driver]{
		"":     gobDriver,
		"gob":  gobDriver,
		"txt":  text,
		"html": text,
		"json": driverpack.Value[Driver](JSONDriver{}),
		"yaml": yamlDriver,
		"yml":  yamlDriver,
		"bin":  driverpack.Value[Driver](BytesDriver{}),
	})
}

// TolerantSeqLimit caps the items Tolerant collects from one iterator or
// channel.
const TolerantSeqLimit = 1 << 20

// Tolerant converts v into a tree of JSON-friendly values. Values it cannot
// represent become nil.
//
// Iterators (func(yield func(T) bool)) are drained until they finish or
// TolerantSeqLimit items were collected; an iterator that ignores yield's
// result or blocks stalls the write. Channels give only the values that can
// be received without blocking, so an open channel contributes what is
// buffered.
func Tolerant(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}
	if m, ok := v.(json.Marshaler); ok {
		if _, err := m.MarshalJSON(); err != nil {
			return nil
		}
		return v
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return string(rv.Bytes())
		}
		return tolerantList(rv)
	case reflect.Array:
		return tolerantList(rv)
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			for k.Kind() == reflect.Interface && !k.IsNil() {
				k = k.Elem()
			}
			switch k.Kind() {
			case reflect.String, reflect.Bool,
				reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
				reflect.Float32, reflect.Float64:
				out[fmt.Sprint(k.Interface())] = Tolerant(iter.Value().Interface())
			default:
				return nil
			}
		}
		return out
	case reflect.Pointer, reflect.Interface:
		return Tolerant(rv.Elem().Interface())
	case reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return nil
		}
		return out
	case reflect.Func:
		return tolerantSeq(rv)
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return nil
		}
		out := []any{}
		for len(out) < TolerantSeqLimit {
			x, ok := rv.TryRecv()
			if !ok {
				break
			}
			out = append(out, Tolerant(x.Interface()))
		}
		return out
	}
	return nil
}

func tolerantList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = Tolerant(rv.Index(i).Interface())
	}
	return out
}

// tolerantSeq drains a func(yield func(T) bool) iterator into a list of at
// most TolerantSeqLimit items. Other functions become nil.
func tolerantSeq(rv reflect.Value) any {
	t := rv.Type()
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return nil
	}
	yt := t.In(0)
	if yt.Kind() != reflect.Func || yt.NumIn() != 1 || yt.NumOut() != 1 || yt.Out(0).Kind() != reflect.Bool {
		return nil
	}
	out := []any{}
	yield := reflect.MakeFunc(yt, func(args []reflect.Value) []reflect.Value {
		if len(out) >= TolerantSeqLimit {
			return []reflect.Value{reflect.ValueOf(false)}
		}
		out = append(out, Tolerant(args[0].Interface()))
		return []reflect.Value{reflect.ValueOf(len(out) < TolerantSeqLimit)}
	})
	rv.Call([]reflect.Value{yield})
	return out
}
