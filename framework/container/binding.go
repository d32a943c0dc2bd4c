package container

import (
	"fmt"
	"reflect"
	"sync"
)

// Factory creates an instance for the given activation context.
type Factory func(ctx *Context) (any, error)

// ── Metadata ──────────────────────────────────────────────────────────────────

// Metadata is the name and key/value data attached to a binding. Request
// constraints are evaluated against it.
type Metadata struct {
	name   string
	values map[string]any
}

// Name returns the binding name, or "" for unnamed bindings.
func (m *Metadata) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Has reports whether key was set with WithMetadata.
func (m *Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the metadata value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Constraint filters bindings by their metadata.
type Constraint func(*Metadata) bool

// NameConstraint matches bindings registered under name.
func NameConstraint(name string) Constraint {
	return func(m *Metadata) bool { return m.Name() == name }
}

// ── Binding ───────────────────────────────────────────────────────────────────

// Binding maps a service type to the factory that produces it.
type Binding struct {
	service  reflect.Type
	generic  *Generic
	implType reflect.Type

	create     Factory
	scope      Scope
	metadata   *Metadata
	condition  func(Request) bool
	parameters []Parameter
	implicit   bool

	// singleton cache, keyed by the resolved service so that an open generic
	// binding keeps one instance per closed type
	mu    sync.Mutex
	cache map[reflect.Type]cached
}

type cached struct {
	instance any
	context  *Context
}

func newBinding(service reflect.Type) *Binding {
	return &Binding{
		service:  service,
		metadata: &Metadata{values: make(map[string]any)},
	}
}

// NewBinding returns a transient binding for service backed by create.
// Missing-binding resolvers use it to contribute implicit bindings.
func NewBinding(service reflect.Type, create Factory) *Binding {
	b := newBinding(service)
	b.create = create
	return b
}

// Service returns the bound type, or nil for open generic bindings.
func (b *Binding) Service() reflect.Type { return b.service }

// Generic returns the open generic definition of the binding, if any.
func (b *Binding) Generic() *Generic { return b.generic }

// Scope returns the binding's lifetime.
func (b *Binding) Scope() Scope { return b.scope }

// Metadata returns the binding's name and metadata.
func (b *Binding) Metadata() *Metadata { return b.metadata }

// Parameters returns the parameters attached to the binding.
func (b *Binding) Parameters() []Parameter { return b.parameters }

// IsConditional reports whether the binding carries a condition.
func (b *Binding) IsConditional() bool { return b.condition != nil }

// IsImplicit reports whether the binding came from a missing-binding resolver.
func (b *Binding) IsImplicit() bool { return b.implicit }

// Matches evaluates the binding's condition against req.
func (b *Binding) Matches(req Request) bool {
	return b.condition == nil || b.condition(req)
}

// cachedFor returns the singleton instance held for service. Callers hold b.mu.
func (b *Binding) cachedFor(service reflect.Type) (any, bool) {
	c, ok := b.cache[service]
	return c.instance, ok
}

// store caches instance for service. Callers hold b.mu.
func (b *Binding) store(service reflect.Type, instance any, ctx *Context) {
	if b.cache == nil {
		b.cache = make(map[reflect.Type]cached)
	}
	b.cache[service] = cached{instance: instance, context: ctx}
}

// holds reports the service under which instance is cached.
func (b *Binding) holds(instance any) (reflect.Type, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for service, c := range b.cache {
		if c.instance == nil || !reflect.TypeOf(c.instance).Comparable() {
			continue
		}
		if c.instance == instance {
			return service, true
		}
	}
	return nil, false
}

// evict drops the instance cached for service and returns the context it
// was activated in.
func (b *Binding) evict(service reflect.Type) *Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.cache[service]
	delete(b.cache, service)
	return c.context
}

func (b *Binding) String() string {
	service := "<nil>"
	switch {
	case b.service != nil:
		service = b.service.String()
	case b.generic != nil:
		service = b.generic.Name() + "[...]"
	}
	if b.implType != nil {
		service += " → " + b.implType.String()
	}
	if name := b.metadata.Name(); name != "" {
		service += fmt.Sprintf(" (%q)", name)
	}
	return service
}

// ── BindingBuilder ────────────────────────────────────────────────────────────

// BindingBuilder configures a binding returned by Container.Bind.
//
//	c.Bind(reflect.TypeFor[Weapon]()).
//	    To(NewSword).
//	    Named("blade").
//	    InSingletonScope()
type BindingBuilder struct {
	container *Container
	binding   *Binding
}

// To binds the service to a constructor function. The constructor may take
// any number of injectable parameters and must return the implementation,
// optionally followed by an error.
func (bb *BindingBuilder) To(constructor any) *BindingBuilder {
	ctor, err := newConstructor(constructor)
	if err != nil {
		panic(fmt.Sprintf("container: %s: %v", bb.binding, err))
	}
	if s := bb.binding.service; s != nil && !ctor.out.AssignableTo(s) {
		panic(fmt.Sprintf("container: %s: constructor returns %s, not assignable to %s", bb.binding, ctor.out, s))
	}
	bb.binding.implType = ctor.out
	bb.binding.create = ctor.factory()
	return bb
}

// ToSelf binds a concrete pointer-to-struct service to a zero value of itself
// with property injection applied.
func (bb *BindingBuilder) ToSelf() *BindingBuilder {
	s := bb.binding.service
	if s == nil || s.Kind() != reflect.Pointer || s.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("container: %s: ToSelf needs a pointer to struct", bb.binding))
	}
	bb.binding.implType = s
	bb.binding.create = func(ctx *Context) (any, error) {
		instance := reflect.New(s.Elem()).Interface()
		if err := injectProperties(ctx, instance); err != nil {
			return nil, err
		}
		return instance, nil
	}
	return bb
}

// ToMethod binds the service to an arbitrary factory.
func (bb *BindingBuilder) ToMethod(create Factory) *BindingBuilder {
	if create == nil {
		panic(fmt.Sprintf("container: %s: nil factory", bb.binding))
	}
	bb.binding.create = create
	return bb
}

// ToConstant binds the service to a pre-built value. The binding becomes a
// singleton so Release can find the value.
func (bb *BindingBuilder) ToConstant(value any) *BindingBuilder {
	if s := bb.binding.service; s != nil && value != nil && !reflect.TypeOf(value).AssignableTo(s) {
		panic(fmt.Sprintf("container: %s: constant of type %T is not assignable", bb.binding, value))
	}
	if value != nil {
		bb.binding.implType = reflect.TypeOf(value)
	}
	bb.binding.create = func(*Context) (any, error) { return value, nil }
	bb.binding.scope = Singleton
	return bb
}

// InSingletonScope caches the first activation and returns it thereafter.
func (bb *BindingBuilder) InSingletonScope() *BindingBuilder {
	bb.binding.scope = Singleton
	return bb
}

// InTransientScope creates a fresh instance on every activation (default).
func (bb *BindingBuilder) InTransientScope() *BindingBuilder {
	bb.binding.scope = Transient
	return bb
}

// Named sets the binding name matched by Named constraints and
// WhenParentNamed conditions.
func (bb *BindingBuilder) Named(name string) *BindingBuilder {
	bb.binding.metadata.name = name
	return bb
}

// WithMetadata attaches a key/value pair to the binding.
func (bb *BindingBuilder) WithMetadata(key string, value any) *BindingBuilder {
	bb.binding.metadata.values[key] = value
	return bb
}

// WithConstructorArgument supplies a named constructor argument on every
// activation of this binding.
func (bb *BindingBuilder) WithConstructorArgument(name string, value any) *BindingBuilder {
	return bb.WithParameter(ConstructorArgument(name, value))
}

// WithPropertyValue supplies a value for an exported field on every
// activation of this binding.
func (bb *BindingBuilder) WithPropertyValue(name string, value any) *BindingBuilder {
	return bb.WithParameter(PropertyValue(name, value))
}

// WithParameter attaches an arbitrary parameter to the binding.
func (bb *BindingBuilder) WithParameter(p Parameter) *BindingBuilder {
	bb.binding.parameters = append(bb.binding.parameters, p)
	return bb
}

// Binding returns the binding under construction.
func (bb *BindingBuilder) Binding() *Binding { return bb.binding }
