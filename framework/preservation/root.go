package preservation

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-preservation/framework/container"
)

// Root is a resolution root that resolves as if every request it issues had
// been made at the injection point the root itself was injected into.
//
// A root created by the kernel starts unbound. The discovery Strategy binds
// it once, during the same activation, to the context of the object that
// received it. Unbound roots behave exactly like the kernel.
type Root struct {
	kernel container.Kernel

	// nil until bound; written once before the root is handed out
	anc *ancestor
}

var _ container.ResolutionRoot = (*Root)(nil)

// NewRoot returns an unbound root. It is the constructor the Module binds
// for container.ResolutionRoot.
func NewRoot(kernel container.Kernel) *Root {
	return &Root{kernel: kernel}
}

// NewBoundRoot returns a root that resolves on behalf of ctx at target.
// A nil ctx yields an unbound root.
func NewBoundRoot(kernel container.Kernel, ctx *container.Context, target *container.Target) *Root {
	return &Root{kernel: kernel, anc: newAncestor(ctx, target)}
}

// Bound reports whether the root has an ancestor context.
func (r *Root) Bound() bool { return r.anc != nil }

// Ancestor returns the context and target the root resolves on behalf of.
func (r *Root) Ancestor() (*container.Context, *container.Target, bool) {
	if r.anc == nil {
		return nil, nil, false
	}
	return r.anc.ctx, r.anc.target, true
}

// InheritedParameters returns the ancestor's parameters that flow into
// every request the root creates.
func (r *Root) InheritedParameters() []container.Parameter {
	if r.anc == nil {
		return nil
	}
	return r.anc.inherited
}

func (r *Root) bind(ctx *container.Context, target *container.Target) {
	r.anc = newAncestor(ctx, target)
}

// CreateRequest builds a request for service. A bound root merges the
// inherited parameters after the explicit ones and grafts the request onto
// its ancestor.
func (r *Root) CreateRequest(service reflect.Type, constraint container.Constraint, parameters []container.Parameter, optional, unique bool) container.Request {
	if r.anc == nil {
		return r.kernel.CreateRequest(service, constraint, parameters, optional, unique)
	}
	merged := container.UnionParameters(parameters, r.anc.inherited)
	inner := r.kernel.CreateRequest(service, constraint, merged, optional, unique)
	return newRequest(inner, r.anc)
}

func (r *Root) CanResolve(req container.Request, ignoreImplicitBindings bool) bool {
	return r.kernel.CanResolve(req, ignoreImplicitBindings)
}

func (r *Root) Resolve(req container.Request) ([]any, error) {
	return r.kernel.Resolve(req)
}

func (r *Root) Inject(instance any, parameters ...container.Parameter) error {
	return r.kernel.Inject(instance, parameters...)
}

func (r *Root) Release(instance any) bool {
	return r.kernel.Release(instance)
}

// GetGeneric resolves the instantiation of def that matches the generic
// arguments of the ancestor context.
func (r *Root) GetGeneric(def *container.Generic, opts ...container.GetOption) (any, error) {
	if r.anc == nil {
		return nil, fmt.Errorf("%w: %s cannot be closed without an ancestor context", container.ErrInvalidService, def.Name())
	}
	closed, err := def.Close(r.anc.ctx.GenericArguments()...)
	if err != nil {
		return nil, err
	}
	return container.GetService(r, closed, opts...)
}

func (r *Root) String() string {
	if r.anc == nil {
		return "preservation.Root(unbound)"
	}
	return fmt.Sprintf("preservation.Root(%s)", container.Chain(r.anc.ctx.Request()))
}
