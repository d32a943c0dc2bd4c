package providers

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-preservation/framework/config"
	"github.com/km-arc/go-preservation/framework/container"
	"github.com/km-arc/go-preservation/framework/factory"
	"github.com/km-arc/go-preservation/framework/logging"
	"github.com/km-arc/go-preservation/framework/preservation"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound services:
//   - *config.Config
//   - config.KernelConfig
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	container.Bind[*config.Config](app).ToConstant(cfg)
	container.Bind[config.KernelConfig](app).ToConstant(cfg.Kernel)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider exposes the kernel's logger to application code.
//
// Bound services:
//   - zerolog.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	container.Bind[zerolog.Logger](app).ToConstant(logging.Component(app.Logger(), "app"))
}

// ── Extensions ────────────────────────────────────────────────────────────────

// Core returns the providers every application loads, in registration
// order: configuration, logging, factories, context preservation.
func Core(cfg *config.Config) []container.ServiceProvider {
	return []container.ServiceProvider{
		&ConfigServiceProvider{Config: cfg},
		&LoggingServiceProvider{},
		&factory.Module{},
		&preservation.Module{},
	}
}
