package container

import (
	"fmt"
	"reflect"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider is a module that installs bindings and strategies into a
// container.
//
// Register runs first for every eager provider. Boot runs after all of them
// have been registered, so it may resolve bindings contributed by others.
//
//	type WeaponsProvider struct{ container.BaseProvider }
//
//	func (p *WeaponsProvider) Register(app *container.Container) {
//	    container.Bind[Weapon](app).To(NewSword).WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())
//	    container.Bind[*WeaponFactory](app).To(NewWeaponFactory)
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides lists the service types the provider binds. Only deferred
	// providers need it.
	Provides() []reflect.Type

	// IsDeferred returns true if the provider should be registered only when
	// one of its Provides() types is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)        {}
func (p *BaseProvider) Provides() []reflect.Type { return nil }
func (p *BaseProvider) IsDeferred() bool         { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred ones.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	loading    sync.Mutex // serialises deferred loads
	eager      []ServiceProvider
	deferred   map[reflect.Type]ServiceProvider // service → provider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[reflect.Type]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, service := range provider.Provides() {
			r.deferred[service] = provider
		}
		r.mu.Unlock()
		r.interceptDeferred(provider)
		return
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	log := r.app.Logger()
	log.Debug().Str("provider", fmt.Sprintf("%T", provider)).Msg("provider registered")

	// registered after Boot: boot it right away
	if booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred binds a placeholder for each deferred service. The first
// resolution of any of them drops the placeholders, registers the provider
// for real and resolves the original request again.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, service := range provider.Provides() {
		r.app.Bind(service).ToMethod(func(ctx *Context) (any, error) {
			r.load(provider)

			results, err := ctx.Kernel().Resolve(ctx.Request())
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return nil, nil
			}
			return results[0], nil
		})
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.loading.Lock()
	defer r.loading.Unlock()

	r.mu.Lock()
	pending := false
	for _, service := range provider.Provides() {
		if r.deferred[service] == provider {
			pending = true
			delete(r.deferred, service)
		}
	}
	booted := r.booted
	r.mu.Unlock()

	if !pending {
		return
	}
	for _, service := range provider.Provides() {
		r.app.Unbind(service)
	}
	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
	log := r.app.Logger()
	log.Debug().Str("provider", fmt.Sprintf("%T", provider)).Msg("deferred provider loaded")
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
