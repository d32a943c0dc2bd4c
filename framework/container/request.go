package container

import (
	"reflect"
	"strings"
)

// Request describes what is being resolved and where it sits in the chain
// of resolutions that led to it.
//
// ParentRequest and ParentContext are either both nil (a top-level request)
// or both set. Depth is 0 for top-level requests and parent depth + 1
// otherwise.
type Request interface {
	Service() reflect.Type
	Constraint() Constraint
	Parameters() []Parameter

	ParentRequest() Request
	ParentContext() *Context
	Target() *Target
	Depth() int

	Optional() bool
	SetOptional(bool)
	Unique() bool
	SetUnique(bool)
	ForceUnique() bool
	SetForceUnique(bool)

	// Matches applies the request's constraint to a candidate binding.
	Matches(b *Binding) bool

	// CreateChild builds the request for a dependency of the activation
	// described by parentCtx.
	CreateChild(service reflect.Type, parentCtx *Context, target *Target) Request
}

type request struct {
	service    reflect.Type
	constraint Constraint
	parameters []Parameter

	parentRequest Request
	parentContext *Context
	target        *Target
	depth         int

	optional    bool
	unique      bool
	forceUnique bool
}

func newRequest(service reflect.Type, constraint Constraint, parameters []Parameter, optional, unique bool) *request {
	return &request{
		service:    service,
		constraint: constraint,
		parameters: parameters,
		optional:   optional,
		unique:     unique,
	}
}

func (r *request) Service() reflect.Type   { return r.service }
func (r *request) Constraint() Constraint  { return r.constraint }
func (r *request) Parameters() []Parameter { return r.parameters }
func (r *request) ParentRequest() Request  { return r.parentRequest }
func (r *request) ParentContext() *Context { return r.parentContext }
func (r *request) Target() *Target         { return r.target }
func (r *request) Depth() int              { return r.depth }

func (r *request) Optional() bool        { return r.optional }
func (r *request) SetOptional(v bool)    { r.optional = v }
func (r *request) Unique() bool          { return r.unique }
func (r *request) SetUnique(v bool)      { r.unique = v }
func (r *request) ForceUnique() bool     { return r.forceUnique }
func (r *request) SetForceUnique(v bool) { r.forceUnique = v }

func (r *request) Matches(b *Binding) bool {
	return r.constraint == nil || r.constraint(b.Metadata())
}

func (r *request) CreateChild(service reflect.Type, parentCtx *Context, target *Target) Request {
	// the parent is whatever request the context was activated for, which
	// may be a decorated one
	parent := parentCtx.Request()
	child := &request{
		service:       service,
		parameters:    InheritableParameters(parentCtx.Parameters()),
		parentRequest: parent,
		parentContext: parentCtx,
		target:        target,
		depth:         parent.Depth() + 1,
		unique:        true,
	}
	if target != nil {
		child.optional = target.Optional()
	}
	return child
}

// Chain renders req and its ancestors, outermost first.
func Chain(req Request) string {
	var parts []string
	for r := req; r != nil; r = r.ParentRequest() {
		if r.Service() == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, r.Service().String())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " → ")
}
