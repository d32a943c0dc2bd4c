package container

import (
	"fmt"
	"iter"
	"reflect"
)

// ── Typed resolution helpers ──────────────────────────────────────────────────
//
// The helpers work on any ResolutionRoot, so application code gets the same
// API whether it holds the kernel or a root handed out by an extension.
//
//	weapon, err := container.Get[Weapon](root, container.Named("blade"))

// GetOption adjusts the request built by the helpers.
type GetOption func(*getOptions)

type getOptions struct {
	constraint Constraint
	parameters []Parameter
}

// Named restricts resolution to bindings registered under name.
func Named(name string) GetOption {
	return WithConstraint(NameConstraint(name))
}

// WithConstraint restricts resolution to bindings whose metadata satisfies c.
func WithConstraint(c Constraint) GetOption {
	return func(o *getOptions) { o.constraint = c }
}

// WithParameters supplies parameters to the resolution.
func WithParameters(ps ...Parameter) GetOption {
	return func(o *getOptions) { o.parameters = append(o.parameters, ps...) }
}

func buildOptions(opts []GetOption) getOptions {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GetService resolves exactly one instance of service.
func GetService(root ResolutionRoot, service reflect.Type, opts ...GetOption) (any, error) {
	o := buildOptions(opts)
	req := root.CreateRequest(service, o.constraint, o.parameters, false, true)
	results, err := root.Resolve(req)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBinding, service)
	}
	return results[0], nil
}

// Get resolves exactly one T.
func Get[T any](root ResolutionRoot, opts ...GetOption) (T, error) {
	var zero T
	v, err := GetService(root, reflect.TypeFor[T](), opts...)
	if err != nil {
		return zero, err
	}
	return cast[T](v)
}

// TryGet resolves T if a single binding matches. It reports false when
// nothing or more than one binding matches.
func TryGet[T any](root ResolutionRoot, opts ...GetOption) (T, bool, error) {
	var zero T
	o := buildOptions(opts)
	req := root.CreateRequest(reflect.TypeFor[T](), o.constraint, o.parameters, true, true)
	results, err := root.Resolve(req)
	if err != nil || len(results) == 0 {
		return zero, false, err
	}
	v, err := cast[T](results[0])
	return v, err == nil, err
}

// MustGet is Get that panics on failure. Use it in wiring code only.
func MustGet[T any](root ResolutionRoot, opts ...GetOption) T {
	v, err := Get[T](root, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// GetAll yields every T the root can produce. Each iteration issues a new
// request, so the sequence can be ranged over more than once.
func GetAll[T any](root ResolutionRoot, opts ...GetOption) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		o := buildOptions(opts)
		req := root.CreateRequest(reflect.TypeFor[T](), o.constraint, o.parameters, true, false)
		results, err := root.Resolve(req)
		if err != nil {
			yield(zero, err)
			return
		}
		for _, r := range results {
			v, err := cast[T](r)
			if !yield(v, err) {
				return
			}
		}
	}
}

func cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, reflect.TypeFor[T](), v)
	}
	return t, nil
}
