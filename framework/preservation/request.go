package preservation

import (
	"reflect"

	"github.com/km-arc/go-preservation/framework/container"
)

// ancestor is the activation a root resolves on behalf of. A nil *ancestor
// means the root is unbound.
type ancestor struct {
	ctx       *container.Context
	target    *container.Target
	inherited []container.Parameter
}

func newAncestor(ctx *container.Context, target *container.Target) *ancestor {
	if ctx == nil {
		return nil
	}
	return &ancestor{
		ctx:       ctx,
		target:    target,
		inherited: container.InheritableParameters(ctx.Parameters()),
	}
}

// request grafts a freshly created request onto an ancestor context. It
// answers for the requested service from inner and for its position in the
// chain from the ancestor.
type request struct {
	inner container.Request
	anc   *ancestor
}

var _ container.Request = (*request)(nil)

func newRequest(inner container.Request, anc *ancestor) *request {
	return &request{inner: inner, anc: anc}
}

func (r *request) Service() reflect.Type             { return r.inner.Service() }
func (r *request) Constraint() container.Constraint  { return r.inner.Constraint() }
func (r *request) Parameters() []container.Parameter { return r.inner.Parameters() }
func (r *request) Matches(b *container.Binding) bool { return r.inner.Matches(b) }
func (r *request) Optional() bool                    { return r.inner.Optional() }
func (r *request) SetOptional(v bool)                { r.inner.SetOptional(v) }
func (r *request) Unique() bool                      { return r.inner.Unique() }
func (r *request) SetUnique(v bool)                  { r.inner.SetUnique(v) }
func (r *request) ForceUnique() bool                 { return r.inner.ForceUnique() }
func (r *request) SetForceUnique(v bool)             { r.inner.SetForceUnique(v) }

// ParentRequest is the request the ancestor context was activated for.
func (r *request) ParentRequest() container.Request { return r.anc.ctx.Request() }

// ParentContext is the ancestor context itself.
func (r *request) ParentContext() *container.Context { return r.anc.ctx }

// Target is the injection point the root was injected into.
func (r *request) Target() *container.Target { return r.anc.target }

// Depth is strictly greater than both the inner request's depth and the
// ancestor request's depth.
func (r *request) Depth() int {
	return r.inner.Depth() + r.anc.ctx.Request().Depth() + 1
}

// CreateChild is not rewritten: children chain through this request
// because the container derives their parent from the child's parent
// context.
func (r *request) CreateChild(service reflect.Type, parentCtx *container.Context, target *container.Target) container.Request {
	return r.inner.CreateChild(service, parentCtx, target)
}
