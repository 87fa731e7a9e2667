package driverpack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type greeter struct {
	greeting string
	built    int
}

func TestPackGetCachesInSingletonMode(t *testing.T) {
	builds := 0
	p := New(map[string]Factory[*greeter]{
		"hello": func(key string, _ *Pack[*greeter]) (*greeter, error) {
			builds++
			return &greeter{greeting: key, built: builds}, nil
		},
	})

	first, err := p.Get("hello")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, _ := p.Get("hello")
	if first != second {
		t.Errorf("singleton pack returned two instances")
	}
	if builds != 1 {
		t.Errorf("factory called %d times, want 1", builds)
	}
}

func TestPackGetWithoutSingleton(t *testing.T) {
	builds := 0
	p := New(map[string]Factory[int]{
		"n": func(string, *Pack[int]) (int, error) {
			builds++
			return builds, nil
		},
	}, WithSingleton(false))

	a, _ := p.Get("n")
	b, _ := p.Get("n")
	if a == b {
		t.Errorf("non-singleton pack reused instance %d", a)
	}
}

func TestPackMissingKey(t *testing.T) {
	p := New[string](nil)
	_, err := p.Get("nope")
	if !errors.Is(err, ErrNoFactory) {
		t.Errorf("Get() error = %v, want ErrNoFactory", err)
	}
}

func TestPackFactoryDependencies(t *testing.T) {
	p := New(map[string]Factory[string]{
		"base": Value("base"),
		"derived": func(key string, p *Pack[string]) (string, error) {
			base, err := p.Get("base")
			if err != nil {
				return "", err
			}
			sep, _ := p.Arg("sep")
			return base + sep.(string) + key, nil
		},
	}, WithArg("sep", "/"))

	got, err := p.Get("derived")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "base/derived" {
		t.Errorf("Get() = %q, want %q", got, "base/derived")
	}
}

func TestPackCycle(t *testing.T) {
	p := New(map[string]Factory[int]{
		"a": func(_ string, p *Pack[int]) (int, error) { return p.Get("b") },
		"b": func(_ string, p *Pack[int]) (int, error) { return p.Get("a") },
	})
	if _, err := p.Get("a"); !errors.Is(err, ErrCycle) {
		t.Errorf("Get() error = %v, want ErrCycle", err)
	}
}

func TestPackSetPopKeys(t *testing.T) {
	p := New(map[string]Factory[int]{"one": Value(1)})
	p.Set("two", Value(2)).Set("three", Value(3)).Pop("one")

	if diff := cmp.Diff([]string{"three", "two"}, p.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if p.Has("one") {
		t.Errorf("Has(one) = true after Pop")
	}

	v, _ := p.Get("two")
	p.Set("two", Value(22))
	if v2, _ := p.Get("two"); v2 != 22 || v != 2 {
		t.Errorf("Set did not replace cached instance: got %d then %d", v, v2)
	}
}

func TestPackClone(t *testing.T) {
	p := New(map[string]Factory[int]{"one": Value(1)}, WithArg("x", 1))
	c := p.Clone()
	c.Pop("one")
	c.SetArg("x", 2)

	if !p.Has("one") {
		t.Errorf("Pop on clone affected original")
	}
	if v, _ := p.Arg("x"); v != 1 {
		t.Errorf("SetArg on clone affected original: %v", v)
	}
}
