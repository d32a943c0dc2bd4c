// Package container provides a reflection-based dependency injection kernel
// and the service provider system used to configure it.
//
// # Overview
//
// Services are keyed by reflect.Type. Every resolution is described by a
// Request that links to the Request and Context of the activation that
// asked for it, so bindings can be conditioned on where a value is injected
// and on who is asking for it.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(log))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot(); everything can be resolved after this
//  4. Resolve
//
// # Bindings
//
//	// Transient: new instance every resolution
//	container.Bind[Weapon](c).To(NewSword)
//
//	// Singleton: created once, reused
//	container.Bind[*Armory](c).To(NewArmory).InSingletonScope()
//
//	// Pre-built value
//	container.Bind[*config.Config](c).ToConstant(cfg)
//
//	// Arbitrary factory
//	container.Bind[Shield](c).ToMethod(func(ctx *container.Context) (any, error) {
//	    return &Buckler{}, nil
//	})
//
// # Resolving
//
//	weapon, err := container.Get[Weapon](c)
//	blade := container.MustGet[Weapon](c, container.Named("blade"))
//	for w, err := range container.GetAll[Weapon](c) { ... }
//
// # Conditional Bindings
//
//	container.Bind[Weapon](c).To(NewSword).WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())
//	container.Bind[Weapon](c).To(NewDagger).WhenParentNamed("Warrior")
//
// # Parameters
//
// Constructor arguments and property values can be supplied per binding or
// per request. Inherited parameters flow to every request created below the
// one they were given to.
//
//	root := c // or any ResolutionRoot
//	container.Get[*Parent](root, container.WithParameters(
//	    container.InheritedConstructorArgument("name", "TheName"),
//	))
//
// # Constructor Injection
//
// Constructor parameters are resolved positionally. A parameter struct
// embedding container.In is injected field by field, with targets named by
// the inject tag:
//
//	type ChildParams struct {
//	    container.In
//	    Name string `inject:"name"`
//	}
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    container.Bind[*Mailer](app).To(NewMailer).InSingletonScope()
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool { return true }
//	func (p *HeavyProvider) Provides() []reflect.Type {
//	    return []reflect.Type{reflect.TypeFor[*Heavy]()}
//	}
package container
