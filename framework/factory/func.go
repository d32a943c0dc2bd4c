package factory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/km-arc/go-preservation/framework/container"
)

// Func creates a T on every call. Inject it wherever a component needs to
// create dependencies on demand:
//
//	type Armory struct{ forge factory.Func[Weapon] }
//
//	func NewArmory(forge factory.Func[Weapon]) *Armory { return &Armory{forge} }
//
// The root behind a Func comes from the container's RootFactory, so with
// context preservation installed the created values resolve as if they were
// injected where the Func was.
type Func[T any] struct {
	root container.ResolutionRoot
}

// NewFunc returns a Func resolving through root.
func NewFunc[T any](root container.ResolutionRoot) Func[T] {
	return Func[T]{root: root}
}

// Call resolves a new T, passing params to the resolution.
func (f Func[T]) Call(params ...container.Parameter) (T, error) {
	if f.root == nil {
		var zero T
		return zero, fmt.Errorf("%w: %s was not created by a container", container.ErrInvalidService, reflect.TypeFor[Func[T]]())
	}
	return container.Get[T](f.root, container.WithParameters(params...))
}

// Root returns the resolution root the Func resolves through.
func (f Func[T]) Root() container.ResolutionRoot { return f.root }

func (Func[T]) bind(root container.ResolutionRoot) any { return Func[T]{root: root} }

// ── Lazy ──────────────────────────────────────────────────────────────────────

// Lazy resolves its value on first access and keeps it.
//
//	type Armory struct{ spare *factory.Lazy[Weapon] }
type Lazy[T any] struct {
	once  sync.Once
	fn    Func[T]
	value T
	err   error
}

// Value resolves the value the first time it is called and returns the
// same result afterwards.
func (l *Lazy[T]) Value() (T, error) {
	l.once.Do(func() { l.value, l.err = l.fn.Call() })
	return l.value, l.err
}

// Deferred marks Lazy as a deferred-value wrapper.
func (*Lazy[T]) Deferred() {}

// build resolves the Func backing a new Lazy as a child of the Lazy's own
// activation.
func (*Lazy[T]) build(ctx *container.Context) (any, error) {
	funcType := reflect.TypeFor[Func[T]]()
	target := container.NewTarget(reflect.TypeFor[*Lazy[T]](), "Value", "value", funcType)
	req := ctx.Request().CreateChild(funcType, ctx, target)

	results, err := ctx.Kernel().Resolve(req)
	if err != nil {
		return nil, err
	}
	fn, ok := results[0].(Func[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s resolved to %T", container.ErrTypeMismatch, funcType, results[0])
	}
	return &Lazy[T]{fn: fn}, nil
}

// ── Implicit bindings ─────────────────────────────────────────────────────────

type funcMaker interface {
	bind(root container.ResolutionRoot) any
}

type lazyMaker interface {
	build(ctx *container.Context) (any, error)
}

var (
	funcMakerType = reflect.TypeFor[funcMaker]()
	lazyMakerType = reflect.TypeFor[lazyMaker]()
)

// resolveMissing provides implicit bindings for every Func and Lazy type.
func resolveMissing(req container.Request) []*container.Binding {
	t := req.Service()
	switch {
	case t.Kind() != reflect.Pointer && t.Implements(funcMakerType):
		maker := reflect.Zero(t).Interface().(funcMaker)
		// types embedding a Func promote bind but are not Funcs themselves
		if reflect.TypeOf(maker.bind(nil)) != t {
			return nil
		}
		return []*container.Binding{container.NewBinding(t, func(ctx *container.Context) (any, error) {
			rootFactory, err := container.Get[container.RootFactory](ctx.Kernel())
			if err != nil {
				return nil, err
			}
			return maker.bind(rootFactory(ctx)), nil
		})}
	case t.Kind() == reflect.Pointer && t.Implements(lazyMakerType):
		maker := reflect.Zero(t).Interface().(lazyMaker)
		return []*container.Binding{container.NewBinding(t, maker.build)}
	}
	return nil
}
