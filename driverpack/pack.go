package driverpack

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// Factory builds the value for key.
type Factory[T any] func(key string, p *Pack[T]) (T, error)

// Value returns a factory that always yields v.
func Value[T any](v T) Factory[T] {
	return func(string, *Pack[T]) (T, error) { return v, nil }
}

// Pack holds factories, their cached instances and free-form arguments that
// factories may read.
type Pack[T any] struct {
	mu        sync.Mutex
	factories map[string]Factory[T]
	instances map[string]T
	building  map[string]bool
	args      map[string]any
	singleton bool
}

type Option func(*options)

type options struct {
	singleton bool
	args      map[string]any
}

// WithSingleton toggles per-key caching. It is on by default.
func WithSingleton(on bool) Option {
	return func(o *options) { o.singleton = on }
}

// WithArg seeds an argument visible to factories through Arg.
func WithArg(key string, v any) Option {
	return func(o *options) { o.args[key] = v }
}

// New creates a pack from factories. The map is copied.
func New[T any](factories map[string]Factory[T], opts ...Option) *Pack[T] {
	o := options{singleton: true, args: map[string]any{}}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pack[T]{
		factories: make(map[string]Factory[T], len(factories)),
		instances: map[string]T{},
		building:  map[string]bool{},
		args:      o.args,
		singleton: o.singleton,
	}
	for k, f := range factories {
		p.factories[k] = f
	}
	return p
}

// Set registers f under key, dropping any cached instance.
func (p *Pack[T]) Set(key string, f Factory[T]) *Pack[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[key] = f
	delete(p.instances, key)
	return p
}

// Pop removes key and its cached instance.
func (p *Pack[T]) Pop(key string) *Pack[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.factories, key)
	delete(p.instances, key)
	return p
}

// Has reports whether a factory is registered for key.
func (p *Pack[T]) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.factories[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (p *Pack[T]) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.factories))
	for k := range p.factories {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetArg stores an argument for factories.
func (p *Pack[T]) SetArg(key string, v any) *Pack[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.args[key] = v
	return p
}

// Arg returns the argument stored under key.
func (p *Pack[T]) Arg(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.args[key]
	return v, ok
}

// Get returns the instance for key, building it when needed.
func (p *Pack[T]) Get(key string) (T, error) {
	var zero T
	p.mu.Lock()
	if v, ok := p.instances[key]; ok && p.singleton {
		p.mu.Unlock()
		return v, nil
	}
	f, ok := p.factories[key]
	if !ok {
		p.mu.Unlock()
		return zero, errors.Wrapf(ErrNoFactory, "key %q", key)
	}
	if p.building[key] {
		p.mu.Unlock()
		return zero, errors.Wrapf(ErrCycle, "key %q", key)
	}
	p.building[key] = true
	p.mu.Unlock()

	v, err := f(key, p)

	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.building, key)
	if err != nil {
		return zero, errors.Wrapf(err, "build %q", key)
	}
	if p.singleton {
		p.instances[key] = v
	}
	return v, nil
}

// Clone copies the factories and arguments into a new pack with an empty
// cache.
func (p *Pack[T]) Clone() *Pack[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := &Pack[T]{
		factories: make(map[string]Factory[T], len(p.factories)),
		instances: map[string]T{},
		building:  map[string]bool{},
		args:      make(map[string]any, len(p.args)),
		singleton: p.singleton,
	}
	for k, f := range p.factories {
		c.factories[k] = f
	}
	for k, v := range p.args {
		c.args[k] = v
	}
	return c
}
