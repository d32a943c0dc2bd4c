package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultMaxDepth bounds how deep a request chain may grow before resolution
// is aborted with ErrMaxDepthExceeded.
const DefaultMaxDepth = 64

// ── Capabilities ──────────────────────────────────────────────────────────────

// ResolutionRoot is anything that can be asked for instances on demand.
// The container is one; extensions may rebind it for application code.
type ResolutionRoot interface {
	// CanResolve reports whether at least one binding matches req. When
	// ignoreImplicitBindings is true only explicit bindings are considered.
	CanResolve(req Request, ignoreImplicitBindings bool) bool

	// Resolve activates every binding selected for req.
	Resolve(req Request) ([]any, error)

	// CreateRequest builds a top-level request for service.
	CreateRequest(service reflect.Type, constraint Constraint, parameters []Parameter, optional, unique bool) Request

	// Inject performs property injection on an instance the container did
	// not create and runs the activation strategies on it.
	Inject(instance any, parameters ...Parameter) error

	// Release deactivates a cached instance. It reports whether the instance
	// was managed by the container.
	Release(instance any) bool
}

// Kernel is the container's own resolution root. It is bound to the
// container and never rebound, so extensions can always reach the real
// kernel even after ResolutionRoot has been replaced.
type Kernel interface {
	ResolutionRoot
	kernel()
}

// RootFactory returns a resolution root for the given context. Factories use
// it to obtain the root their generated functions resolve through.
type RootFactory func(ctx *Context) ResolutionRoot

// Deferred marks services that wrap a value resolved later (lazy values).
type Deferred interface {
	Deferred()
}

var (
	kernelType         = reflect.TypeFor[Kernel]()
	resolutionRootType = reflect.TypeFor[ResolutionRoot]()
	rootFactoryType    = reflect.TypeFor[RootFactory]()
	deferredType       = reflect.TypeFor[Deferred]()
)

// ResolutionRootType is the service type application code depends on.
func ResolutionRootType() reflect.Type { return resolutionRootType }

// RootFactoryType is the service type of the RootFactory capability.
func RootFactoryType() reflect.Type { return rootFactoryType }

// IsDeferred reports whether t is a deferred-value wrapper.
func IsDeferred(t reflect.Type) bool {
	return t != nil && t.Implements(deferredType)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the dependency injection kernel.
//
// It supports:
//   - Bind / Rebind / Unbind by service type, open generic bindings
//   - constructor, method and constant bindings, transient or singleton
//   - conditions over the request chain (WhenInjectedInto, WhenParentNamed, ...)
//   - named bindings, metadata constraints, constructor and property parameters
//   - activation strategies run after every activation
//   - missing-binding resolvers that contribute implicit bindings
type Container struct {
	mu sync.RWMutex

	// service → explicit and cached implicit bindings
	bindings map[reflect.Type][]*Binding

	// bindings registered against an open generic definition
	generics []*Binding

	strategies []ActivationStrategy
	resolvers  []MissingBindingResolver

	log      zerolog.Logger
	maxDepth int
	implicit bool
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for activation tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) { c.log = l }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *Container) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithImplicitBindings enables or disables missing-binding resolvers.
func WithImplicitBindings(enabled bool) Option {
	return func(c *Container) { c.implicit = enabled }
}

// New creates a container bound to itself as Kernel and ResolutionRoot.
func New(opts ...Option) *Container {
	c := &Container{
		bindings: make(map[reflect.Type][]*Binding),
		log:      zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
		implicit: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Bind(kernelType).ToConstant(c)
	c.Bind(resolutionRootType).ToConstant(c)
	c.Bind(rootFactoryType).ToConstant(RootFactory(kernelRoot))
	c.strategies = append(c.strategies, disposalStrategy{})
	return c
}

func (c *Container) kernel() {}

// Logger returns the container's logger so extensions can log alongside it.
func (c *Container) Logger() zerolog.Logger { return c.log }

func kernelRoot(ctx *Context) ResolutionRoot { return ctx.Kernel() }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a new binding for service and returns its builder.
//
//	c.Bind(reflect.TypeFor[Weapon]()).To(NewSword).WhenInjectedInto(reflect.TypeFor[*Warrior]())
func (c *Container) Bind(service reflect.Type) *BindingBuilder {
	if service == nil {
		panic("container: cannot bind a nil service type")
	}
	b := newBinding(service)

	c.mu.Lock()
	c.bindings[service] = append(c.bindings[service], b)
	c.mu.Unlock()

	return &BindingBuilder{container: c, binding: b}
}

// Rebind drops every binding for service and starts a new one.
func (c *Container) Rebind(service reflect.Type) *BindingBuilder {
	c.Unbind(service)
	return c.Bind(service)
}

// Unbind removes all bindings for service.
func (c *Container) Unbind(service reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, service)
}

// BindGeneric registers a binding for every closed type of def.
func (c *Container) BindGeneric(def *Generic) *BindingBuilder {
	if def == nil {
		panic("container: cannot bind a nil generic definition")
	}
	b := newBinding(nil)
	b.generic = def

	c.mu.Lock()
	c.generics = append(c.generics, b)
	c.mu.Unlock()

	return &BindingBuilder{container: c, binding: b}
}

// Bind is the generic form of Container.Bind.
func Bind[T any](c *Container) *BindingBuilder {
	return c.Bind(reflect.TypeFor[T]())
}

// Rebind is the generic form of Container.Rebind.
func Rebind[T any](c *Container) *BindingBuilder {
	return c.Rebind(reflect.TypeFor[T]())
}

// Bound reports whether service has at least one explicit binding.
func (c *Container) Bound(service reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.bindings[service] {
		if !b.implicit {
			return true
		}
	}
	return false
}

// Bindings returns a copy of the bindings registered for service.
func (c *Container) Bindings(service reflect.Type) []*Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.bindings[service])
}

// AddStrategy appends an activation strategy. Strategies run in
// registration order after every activation.
func (c *Container) AddStrategy(s ActivationStrategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategies = append(c.strategies, s)
}

// AddMissingBindingResolver appends a source of implicit bindings.
func (c *Container) AddMissingBindingResolver(r MissingBindingResolver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolvers = append(c.resolvers, r)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// CreateRequest builds a top-level request.
func (c *Container) CreateRequest(service reflect.Type, constraint Constraint, parameters []Parameter, optional, unique bool) Request {
	return newRequest(service, constraint, parameters, optional, unique)
}

// CanResolve reports whether any binding satisfies req.
func (c *Container) CanResolve(req Request, ignoreImplicitBindings bool) bool {
	if req == nil || req.Service() == nil {
		return false
	}
	for _, cand := range c.candidates(req, !ignoreImplicitBindings) {
		if ignoreImplicitBindings && cand.binding.implicit {
			continue
		}
		if cand.binding.Matches(req) && req.Matches(cand.binding) {
			return true
		}
	}
	return false
}

// Resolve selects the bindings matching req and activates each of them.
func (c *Container) Resolve(req Request) ([]any, error) {
	if req == nil || req.Service() == nil {
		return nil, fmt.Errorf("%w: request has no service type", ErrInvalidService)
	}
	if req.Depth() > c.maxDepth {
		return nil, newActivationError(req, fmt.Errorf("%w: depth %d", ErrMaxDepthExceeded, req.Depth()))
	}

	selected := c.pick(req)
	if len(selected) == 0 {
		if req.Optional() {
			return nil, nil
		}
		c.log.Debug().
			Str("service", req.Service().String()).
			Int("depth", req.Depth()).
			Msg("no matching binding")
		return nil, newActivationError(req, ErrNoBinding)
	}
	if req.Unique() && len(selected) > 1 {
		if req.Optional() && !req.ForceUnique() {
			return nil, nil
		}
		return nil, newActivationError(req, fmt.Errorf("%w: %d bindings match", ErrAmbiguousBinding, len(selected)))
	}

	results := make([]any, 0, len(selected))
	for _, cand := range selected {
		ctx := newContext(c, req, cand.binding, cand.generics)
		instance, err := c.activate(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, instance)
	}
	return results, nil
}

type candidate struct {
	binding  *Binding
	generics []reflect.Type
}

// pick applies conditions and constraints, then precedence:
// conditional bindings beat unconditional ones, which beat implicit ones.
func (c *Container) pick(req Request) []candidate {
	var conditional, plain, implicit []candidate
	for _, cand := range c.candidates(req, true) {
		b := cand.binding
		if !b.Matches(req) || !req.Matches(b) {
			continue
		}
		switch {
		case b.implicit:
			implicit = append(implicit, cand)
		case b.IsConditional():
			conditional = append(conditional, cand)
		default:
			plain = append(plain, cand)
		}
	}

	if !req.Unique() {
		if len(conditional)+len(plain) > 0 {
			return slices.Concat(conditional, plain)
		}
		return implicit
	}
	switch {
	case len(conditional) > 0:
		return conditional
	case len(plain) > 0:
		return plain
	default:
		return implicit
	}
}

// candidates returns explicit and generic bindings for req's service. When
// none exist and implicit bindings are allowed the missing-binding resolvers
// are consulted and their bindings are cached as implicit.
func (c *Container) candidates(req Request, allowImplicit bool) []candidate {
	service := req.Service()

	c.mu.RLock()
	out := make([]candidate, 0, len(c.bindings[service]))
	for _, b := range c.bindings[service] {
		out = append(out, candidate{binding: b})
	}
	for _, b := range c.generics {
		if args, ok := b.generic.Arguments(service); ok {
			out = append(out, candidate{binding: b, generics: args})
		}
	}
	resolvers := c.resolvers
	c.mu.RUnlock()

	if len(out) > 0 || !allowImplicit || !c.implicit {
		return out
	}

	var found []*Binding
	for _, resolve := range resolvers {
		found = append(found, resolve(req)...)
	}
	if len(found) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another goroutine may have cached them first
	if existing := c.bindings[service]; len(existing) > 0 {
		found = existing
	} else {
		for _, b := range found {
			b.implicit = true
		}
		c.bindings[service] = found
	}
	for _, b := range found {
		out = append(out, candidate{binding: b})
	}
	return out
}

// activate runs the binding's factory for ctx, caches singletons and runs
// the activation strategies.
func (c *Container) activate(ctx *Context) (any, error) {
	b := ctx.binding
	if err := checkCircular(ctx); err != nil {
		return nil, err
	}
	if b.create == nil {
		return nil, newActivationError(ctx.request, fmt.Errorf("%w: binding %s has no implementation", ErrInvalidService, b))
	}

	if b.scope == Singleton {
		b.mu.Lock()
		defer b.mu.Unlock()
		if instance, ok := b.cachedFor(ctx.request.Service()); ok {
			return instance, nil
		}
	}

	ctx.active.Store(true)
	instance, err := b.create(ctx)
	ctx.active.Store(false)
	if err != nil {
		var ae *ActivationError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, newActivationError(ctx.request, err)
	}

	c.mu.RLock()
	strategies := slices.Clone(c.strategies)
	c.mu.RUnlock()
	for _, s := range strategies {
		if err := s.Activate(ctx, instance); err != nil {
			return nil, newActivationError(ctx.request, err)
		}
	}

	if b.scope == Singleton {
		b.store(ctx.request.Service(), instance, ctx)
	}

	c.log.Debug().
		Str("context", ctx.id).
		Str("service", ctx.request.Service().String()).
		Str("binding", b.String()).
		Int("depth", ctx.request.Depth()).
		Msg("activated")

	return instance, nil
}

// checkCircular walks the ancestor contexts looking for an activation of the
// same binding that is still in flight.
func checkCircular(ctx *Context) error {
	for p := ctx.request.ParentContext(); p != nil; p = p.request.ParentContext() {
		if p.binding == ctx.binding && p.active.Load() {
			return newActivationError(ctx.request, ErrCircularDependency)
		}
	}
	return nil
}

// ── Inject / Release ──────────────────────────────────────────────────────────

// Inject fills the tagged fields of instance and runs the activation
// strategies on it. The container does not take ownership of instance.
func (c *Container) Inject(instance any, parameters ...Parameter) error {
	t := reflect.TypeOf(instance)
	if t == nil {
		return fmt.Errorf("%w: cannot inject into nil", ErrInvalidService)
	}

	req := c.CreateRequest(t, nil, parameters, false, false)
	b := NewBinding(t, func(*Context) (any, error) { return instance, nil })
	ctx := newContext(c, req, b, nil)

	if err := injectProperties(ctx, instance); err != nil {
		return err
	}

	c.mu.RLock()
	strategies := slices.Clone(c.strategies)
	c.mu.RUnlock()
	for _, s := range strategies {
		if err := s.Activate(ctx, instance); err != nil {
			return newActivationError(req, err)
		}
	}
	return nil
}

// Release deactivates a cached singleton instance and drops it from its
// binding so the next resolution builds a fresh one.
func (c *Container) Release(instance any) bool {
	t := reflect.TypeOf(instance)
	if t == nil || !t.Comparable() {
		return false
	}

	c.mu.RLock()
	var (
		owner   *Binding
		service reflect.Type
	)
	find := func(b *Binding) {
		if owner != nil {
			return
		}
		if s, ok := b.holds(instance); ok {
			owner, service = b, s
		}
	}
	for _, bs := range c.bindings {
		for _, b := range bs {
			find(b)
		}
	}
	for _, b := range c.generics {
		find(b)
	}
	strategies := slices.Clone(c.strategies)
	c.mu.RUnlock()

	if owner == nil {
		return false
	}

	ctx := owner.evict(service)

	for _, s := range strategies {
		if err := s.Deactivate(ctx, instance); err != nil {
			c.log.Warn().Err(err).Str("binding", owner.String()).Msg("deactivation failed")
		}
	}
	return true
}
