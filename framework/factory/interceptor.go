package factory

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-preservation/framework/container"
)

// Interceptor backs interface factories. Each factory method forwards to
// Get or GetService:
//
//	type WeaponFactory interface{ CreateWeapon() (Weapon, error) }
//
//	type weaponFactory struct{ *factory.Interceptor }
//
//	func (f weaponFactory) CreateWeapon() (Weapon, error) {
//	    return factory.Get[Weapon](f.Interceptor)
//	}
//
//	factory.Bind(c, func(i *factory.Interceptor) WeaponFactory { return weaponFactory{i} })
type Interceptor struct {
	root container.ResolutionRoot
}

var interceptorType = reflect.TypeFor[*Interceptor]()

// Root returns the resolution root the interceptor forwards to.
func (i *Interceptor) Root() container.ResolutionRoot { return i.root }

// GetService resolves service through the interceptor's root.
func (i *Interceptor) GetService(service reflect.Type, opts ...container.GetOption) (any, error) {
	return container.GetService(i.root, service, opts...)
}

// Get resolves a T through the interceptor's root.
func Get[T any](i *Interceptor, opts ...container.GetOption) (T, error) {
	return container.Get[T](i.root, opts...)
}

// newInterceptor receives its root through an indirection target so that
// the root sees past the interceptor and the factory it serves.
func newInterceptor(ctx *container.Context) (any, error) {
	target := container.NewTarget(interceptorType, container.ConstructorMember, "root", container.ResolutionRootType()).AsIndirection()
	root, err := resolveChild[container.ResolutionRoot](ctx, target)
	if err != nil {
		return nil, err
	}
	return &Interceptor{root: root}, nil
}

// Bind binds the factory interface F. build wraps the interceptor created
// for each activation of F.
func Bind[F any](c *container.Container, build func(*Interceptor) F) *container.BindingBuilder {
	if build == nil {
		panic(fmt.Sprintf("factory: nil build func for %s", reflect.TypeFor[F]()))
	}
	return container.Bind[F](c).ToMethod(func(ctx *container.Context) (any, error) {
		target := container.NewTarget(reflect.TypeFor[F](), "proxy", "interceptor", interceptorType).AsIndirection()
		i, err := resolveChild[*Interceptor](ctx, target)
		if err != nil {
			return nil, err
		}
		return build(i), nil
	})
}

func resolveChild[T any](ctx *container.Context, target *container.Target) (T, error) {
	var zero T
	req := ctx.Request().CreateChild(target.Type(), ctx, target)
	results, err := ctx.Kernel().Resolve(req)
	if err != nil {
		return zero, err
	}
	v, ok := results[0].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s resolved to %T", container.ErrTypeMismatch, target, results[0])
	}
	return v, nil
}
