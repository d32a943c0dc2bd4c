package container

import (
	"reflect"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context is the state of one activation: the request it satisfies, the
// binding chosen for it and the parameters in effect. Only the kernel
// creates contexts; everything else reads them.
type Context struct {
	id         string
	kernel     Kernel
	request    Request
	binding    *Binding
	parameters []Parameter
	generics   []reflect.Type

	// set while the binding's factory runs
	active atomic.Bool
}

// NewContext builds a context outside the kernel's resolve path. It is meant
// for tests and for code that activates bindings by hand. b may be nil, in
// which case only the request's parameters are in effect.
func NewContext(kernel Kernel, req Request, b *Binding, generics ...reflect.Type) *Context {
	return newContext(kernel, req, b, generics)
}

func newContext(kernel Kernel, req Request, b *Binding, generics []reflect.Type) *Context {
	var bound []Parameter
	if b != nil {
		bound = b.Parameters()
	}
	return &Context{
		id:         uuid.NewString(),
		kernel:     kernel,
		request:    req,
		binding:    b,
		parameters: UnionParameters(req.Parameters(), bound),
		generics:   generics,
	}
}

// ID identifies the activation in log output.
func (ctx *Context) ID() string { return ctx.id }

// Kernel returns the kernel that created the context.
func (ctx *Context) Kernel() Kernel { return ctx.kernel }

func (ctx *Context) Request() Request  { return ctx.request }
func (ctx *Context) Binding() *Binding { return ctx.binding }

// Parameters returns the request's parameters followed by the binding's.
func (ctx *Context) Parameters() []Parameter { return ctx.parameters }

// GenericArguments returns the type arguments an open generic binding was
// closed with, or nil.
func (ctx *Context) GenericArguments() []reflect.Type { return slices.Clone(ctx.generics) }
