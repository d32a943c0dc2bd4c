package container

// Scope is the lifetime of instances produced by a binding.
type Scope int

const (
	// Transient bindings create a new instance per activation.
	Transient Scope = iota
	// Singleton bindings create one instance and cache it on the binding.
	Singleton
)

func (s Scope) String() string {
	if s == Singleton {
		return "singleton"
	}
	return "transient"
}
