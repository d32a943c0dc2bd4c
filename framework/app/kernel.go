package app

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-preservation/framework/config"
	"github.com/km-arc/go-preservation/framework/container"
	"github.com/km-arc/go-preservation/framework/logging"
	"github.com/km-arc/go-preservation/framework/providers"
)

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can
// call app.Bind(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	config *config.Config
	log    zerolog.Logger
}

// New loads configuration from envFiles and the environment, builds the
// logger and the kernel, and registers the core providers.
func New(envFiles ...string) *Application {
	return NewWithConfig(config.Load(envFiles...))
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) *Application {
	log := logging.New(cfg.Log)

	c := container.New(
		container.WithLogger(logging.Component(log, "kernel")),
		container.WithMaxDepth(cfg.Kernel.MaxDepth),
		container.WithImplicitBindings(cfg.Kernel.ImplicitBindings),
	)
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
		config:    cfg,
		log:       log,
	}

	for _, p := range providers.Core(cfg) {
		registry.Register(p)
	}

	log.Debug().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Env).
		Int("max_depth", cfg.Kernel.MaxDepth).
		Msg("application created")
	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config returns the configuration the application was created with.
func (a *Application) Config() *config.Config { return a.config }

// Log returns the application logger.
func (a *Application) Log() zerolog.Logger { return a.log }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
