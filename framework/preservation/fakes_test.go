package preservation_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-preservation/framework/container"
	"github.com/km-arc/go-preservation/framework/factory"
	"github.com/km-arc/go-preservation/framework/preservation"
)

// newKernel returns a container with context preservation and factories
// installed, logging to the test output.
func newKernel(t *testing.T) *container.Container {
	t.Helper()
	c := container.New(container.WithLogger(zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)))
	reg := container.NewProviderRegistry(c)
	reg.Register(&factory.Module{})
	reg.Register(&preservation.Module{})
	reg.Boot()
	return c
}

// ── weapons ───────────────────────────────────────────────────────────────────

type Weapon interface{ Kind() string }

type Sword struct{ _ byte }

func (*Sword) Kind() string { return "sword" }

type Dagger struct{ _ byte }

func (*Dagger) Kind() string { return "dagger" }

func NewSword() Weapon  { return &Sword{} }
func NewDagger() Weapon { return &Dagger{} }

type NamedWeapon interface {
	Weapon
	Name() string
}

type NamedDagger struct {
	Dagger
	name string
}

func (d *NamedDagger) Name() string { return d.name }

type NamedDaggerParams struct {
	container.In
	Name string `inject:"name"`
}

func NewNamedDagger(p NamedDaggerParams) NamedWeapon { return &NamedDagger{name: p.Name} }

// WeaponFactory creates weapons through the resolution root it was given.
type WeaponFactory struct {
	root container.ResolutionRoot
}

func NewWeaponFactory(root container.ResolutionRoot) *WeaponFactory {
	return &WeaponFactory{root: root}
}

func (f *WeaponFactory) CreateWeapon() (Weapon, error) {
	return container.Get[Weapon](f.root)
}

// Keep holds a WeaponFactory one level down.
type Keep struct{ Factory *WeaponFactory }

func NewKeep(f *WeaponFactory) *Keep { return &Keep{Factory: f} }

// Armory is a second, unrelated owner of a resolution root.
type Armory struct {
	root container.ResolutionRoot
}

func NewArmory(root container.ResolutionRoot) *Armory { return &Armory{root: root} }

// ── interface factory ─────────────────────────────────────────────────────────

type IWeaponFactory interface {
	CreateWeapon() (Weapon, error)
	CreateNamedWeapon(name string) (NamedWeapon, error)
}

type weaponFactory struct{ *factory.Interceptor }

func (f weaponFactory) CreateWeapon() (Weapon, error) {
	return factory.Get[Weapon](f.Interceptor)
}

func (f weaponFactory) CreateNamedWeapon(name string) (NamedWeapon, error) {
	return factory.Get[NamedWeapon](f.Interceptor, container.WithParameters(container.ConstructorArgument("name", name)))
}

func bindWeaponFactory(c *container.Container) {
	factory.Bind(c, func(i *factory.Interceptor) IWeaponFactory { return weaponFactory{i} })
}

type Village struct {
	factory IWeaponFactory
}

func NewVillage(f IWeaponFactory) *Village { return &Village{factory: f} }

func (v *Village) GetWeapon() (Weapon, error) { return v.factory.CreateWeapon() }

// ── Func / Lazy ───────────────────────────────────────────────────────────────

type FuncFactory struct {
	create factory.Func[Weapon]
	lazy   *factory.Lazy[Weapon]
}

func NewFuncFactory(create factory.Func[Weapon], lazy *factory.Lazy[Weapon]) *FuncFactory {
	return &FuncFactory{create: create, lazy: lazy}
}

func (f *FuncFactory) CreateWeapon() (Weapon, error)  { return f.create.Call() }
func (f *FuncFactory) GetLazyWeapon() (Weapon, error) { return f.lazy.Value() }

// ── parents and children ──────────────────────────────────────────────────────

type IChild interface{ Grand() *GrandChild }

type GrandChild struct{ _ byte }

func NewGrandChild() *GrandChild { return &GrandChild{} }

type Child struct{ GrandChild *GrandChild }

func NewChild(g *GrandChild) *Child { return &Child{GrandChild: g} }

func (c *Child) Grand() *GrandChild { return c.GrandChild }

type ChildWithArgument struct {
	Child
	Name         string
	SomeProperty string
}

type ChildWithArgumentParams struct {
	container.In
	Name       string      `inject:"name"`
	GrandChild *GrandChild `inject:"grandChild"`
}

func NewChildWithArgument(p ChildWithArgumentParams) *ChildWithArgument {
	return &ChildWithArgument{Child: Child{GrandChild: p.GrandChild}, Name: p.Name}
}

type Parent struct{ Child IChild }

func NewParent(child IChild) *Parent { return &Parent{Child: child} }

// Factory creates children through its resolution root.
type Factory struct {
	root container.ResolutionRoot
}

func NewFactory(root container.ResolutionRoot) *Factory { return &Factory{root: root} }

func (f *Factory) CreateChild() (*Child, error) {
	return container.Get[*Child](f.root)
}

func (f *Factory) CreateChildWithArgument(name string) (*ChildWithArgument, error) {
	return container.Get[*ChildWithArgument](f.root, container.WithParameters(container.ConstructorArgument("name", name)))
}

func (f *Factory) CreateChildWithInheritedName() (*ChildWithArgument, error) {
	return container.Get[*ChildWithArgument](f.root)
}
