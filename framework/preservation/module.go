package preservation

import (
	"reflect"

	"github.com/km-arc/go-preservation/framework/container"
)

// Module installs context preservation into a container:
//
//   - the discovery Strategy is added to the activation strategies
//   - container.ResolutionRoot is rebound to *Root
//   - container.RootFactory is rebound so factories get roots that resolve
//     on behalf of the object the factory was injected into
//
//	registry.Register(&preservation.Module{})
type Module struct {
	container.BaseProvider

	// FrameMatchers overrides DefaultFrameMatchers when set.
	FrameMatchers []FrameMatcher
}

func (m *Module) Register(app *container.Container) {
	matchers := m.FrameMatchers
	if len(matchers) == 0 {
		matchers = DefaultFrameMatchers()
	}

	app.AddStrategy(NewStrategy(
		WithFrameMatchers(matchers...),
		WithStrategyLogger(app.Logger()),
	))

	app.Rebind(container.ResolutionRootType()).To(NewRoot)

	f := frames(matchers)
	app.Rebind(container.RootFactoryType()).ToConstant(container.RootFactory(func(ctx *container.Context) container.ResolutionRoot {
		parent, target := f.discover(ctx.Request())
		return NewBoundRoot(ctx.Kernel(), parent, target)
	}))

	log := app.Logger()
	log.Debug().Int("frame_matchers", len(matchers)).Msg("context preservation installed")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// RootFor returns a root bound to ctx at the target ctx was activated for.
// Custom factories use it to resolve dependencies as children of their own
// activation.
//
//	container.Bind[Weapon](c).ToMethod(func(ctx *container.Context) (any, error) {
//	    return preservation.Get[*Sword](ctx)
//	})
func RootFor(ctx *container.Context) *Root {
	return NewBoundRoot(ctx.Kernel(), ctx, ctx.Request().Target())
}

// Get resolves T through RootFor(ctx).
func Get[T any](ctx *container.Context, opts ...container.GetOption) (T, error) {
	return container.Get[T](RootFor(ctx), opts...)
}

// GetService resolves service through RootFor(ctx).
func GetService(ctx *container.Context, service reflect.Type, opts ...container.GetOption) (any, error) {
	return container.GetService(RootFor(ctx), service, opts...)
}

// GetGeneric resolves the instantiation of def matching ctx's generic
// arguments through RootFor(ctx).
func GetGeneric(ctx *container.Context, def *container.Generic, opts ...container.GetOption) (any, error) {
	return RootFor(ctx).GetGeneric(def, opts...)
}

// BindInterfaceToBinding binds I so that it resolves whatever B resolves to,
// with B's resolution seeing I's activation as its parent. The usual use is
// exposing one singleton under several interfaces.
//
//	container.Bind[*Armory](c).To(NewArmory).InSingletonScope()
//	preservation.BindInterfaceToBinding[Inventory, *Armory](c)
func BindInterfaceToBinding[I, B any](c *container.Container) *container.BindingBuilder {
	return container.Bind[I](c).ToMethod(func(ctx *container.Context) (any, error) {
		return Get[B](ctx)
	})
}
