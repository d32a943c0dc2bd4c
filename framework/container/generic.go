package container

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Generic is an open generic definition such as Repository[T]. Go cannot
// instantiate generic types at runtime, so each closed type is registered
// together with its type arguments.
//
//	repos := container.NewGeneric("Repository")
//	repos.Register(reflect.TypeFor[*Repository[User]](), reflect.TypeFor[User]())
//	c.BindGeneric(repos).ToMethod(newRepository)
type Generic struct {
	name string

	mu   sync.RWMutex
	args map[reflect.Type][]reflect.Type
}

// NewGeneric creates an empty generic definition.
func NewGeneric(name string) *Generic {
	return &Generic{
		name: name,
		args: make(map[reflect.Type][]reflect.Type),
	}
}

// Name returns the definition's name.
func (g *Generic) Name() string { return g.name }

// Register records closed as the instantiation of g with args.
func (g *Generic) Register(closed reflect.Type, args ...reflect.Type) *Generic {
	if closed == nil || len(args) == 0 {
		panic(fmt.Sprintf("container: generic %s: a closed type needs at least one type argument", g.name))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for t, a := range g.args {
		if slices.Equal(a, args) {
			delete(g.args, t)
		}
	}
	g.args[closed] = slices.Clone(args)
	return g
}

// Close returns the instantiation of g for args.
func (g *Generic) Close(args ...reflect.Type) (reflect.Type, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for closed, a := range g.args {
		if slices.Equal(a, args) {
			return closed, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no instantiation for %v", ErrInvalidService, g.name, args)
}

// Arguments reports whether closed is an instantiation of g and with which
// type arguments.
func (g *Generic) Arguments(closed reflect.Type) ([]reflect.Type, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	args, ok := g.args[closed]
	return slices.Clone(args), ok
}
