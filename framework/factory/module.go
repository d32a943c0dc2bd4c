// Package factory provides the on-demand creation helpers application code
// depends on instead of the container: Func, Lazy and interface factories
// built on an Interceptor.
package factory

import (
	"github.com/km-arc/go-preservation/framework/container"
)

// Module registers implicit bindings for Func and Lazy and binds the
// Interceptor used by interface factories.
type Module struct {
	container.BaseProvider
}

func (m *Module) Register(app *container.Container) {
	app.AddMissingBindingResolver(resolveMissing)
	container.Bind[*Interceptor](app).ToMethod(newInterceptor)
}
