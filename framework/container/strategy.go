package container

import "io"

// ActivationStrategy hooks into every activation. Activate runs after the
// instance was created and injected; Deactivate runs when it is released.
type ActivationStrategy interface {
	Activate(ctx *Context, instance any) error
	Deactivate(ctx *Context, instance any) error
}

// BaseStrategy is an embeddable no-op ActivationStrategy.
type BaseStrategy struct{}

func (BaseStrategy) Activate(*Context, any) error   { return nil }
func (BaseStrategy) Deactivate(*Context, any) error { return nil }

// MissingBindingResolver contributes bindings for a service nobody bound.
// The container caches what it returns as implicit bindings.
type MissingBindingResolver func(req Request) []*Binding

// disposalStrategy closes released instances that hold resources.
type disposalStrategy struct{ BaseStrategy }

func (disposalStrategy) Deactivate(_ *Context, instance any) error {
	if closer, ok := instance.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
