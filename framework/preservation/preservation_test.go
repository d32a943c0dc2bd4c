package preservation_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-preservation/framework/container"
	"github.com/km-arc/go-preservation/framework/preservation"
)

// ── resolution root ───────────────────────────────────────────────────────────

func TestWeaponFactory_ContextPreserved(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword).WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())
	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)

	f, err := container.Get[*WeaponFactory](c)
	require.NoError(t, err)

	w, err := f.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Sword{}, w)

	_, err = container.Get[Weapon](c)
	assert.ErrorIs(t, err, container.ErrNoBinding, "no ancestor, no match")
}

func TestFactory_ChildResolvedUnderFactory(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Factory](c).To(NewFactory)
	container.Bind[*Child](c).To(NewChild).WhenInjectedInto(reflect.TypeFor[*Factory]())
	container.Bind[*GrandChild](c).To(NewGrandChild)

	f := container.MustGet[*Factory](c)
	child, err := f.CreateChild()
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.NotNil(t, child.GrandChild)
}

func TestFactory_ParametersArePassed(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Factory](c).To(NewFactory)
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument)
	container.Bind[*GrandChild](c).To(NewGrandChild)

	child, err := container.MustGet[*Factory](c).CreateChildWithArgument("TheName")
	require.NoError(t, err)
	assert.Equal(t, "TheName", child.Name)
	assert.NotNil(t, child.GrandChild)
}

func TestFactory_InheritedParameterReachesLaterResolutions(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Factory](c).To(NewFactory)
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument)
	container.Bind[*GrandChild](c).To(NewGrandChild)

	f, err := container.Get[*Factory](c, container.WithParameters(
		container.InheritedConstructorArgument("name", "TheName"),
	))
	require.NoError(t, err)

	child, err := f.CreateChildWithInheritedName()
	require.NoError(t, err)
	assert.Equal(t, "TheName", child.Name)

	override, err := f.CreateChildWithArgument("Override")
	require.NoError(t, err)
	assert.Equal(t, "Override", override.Name, "explicit parameters win")
}

func TestFactory_PlainParameterIsNotInherited(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Factory](c).To(NewFactory)
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument)
	container.Bind[*GrandChild](c).To(NewGrandChild)

	f, err := container.Get[*Factory](c, container.WithParameters(
		container.ConstructorArgument("name", "TheName"),
	))
	require.NoError(t, err)

	_, err = f.CreateChildWithInheritedName()
	assert.ErrorIs(t, err, container.ErrNoBinding)
}

func TestFactory_TargetIsResolutionRootOwner(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Factory](c).To(NewFactory).Named("Warrior")
	container.Bind[*Armory](c).To(NewArmory)
	container.Bind[*Child](c).To(NewChild).WhenParentNamed("Warrior")
	container.Bind[*GrandChild](c).To(NewGrandChild)

	child, err := container.MustGet[*Factory](c).CreateChild()
	require.NoError(t, err)
	assert.NotNil(t, child)

	armory := container.MustGet[*Armory](c)
	_, err = container.Get[*Child](armory.root)
	assert.ErrorIs(t, err, container.ErrNoBinding, "unnamed parent must not match")
}

func TestRoot_DepthExceedsBothChains(t *testing.T) {
	c := newKernel(t)
	var seen container.Request
	container.Bind[Weapon](c).ToMethod(func(ctx *container.Context) (any, error) {
		seen = ctx.Request()
		return &Dagger{}, nil
	})
	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)
	container.Bind[*Armory](c).To(func(f *WeaponFactory) *Armory { return &Armory{root: f.root} })

	a := container.MustGet[*Armory](c)
	_, err := container.Get[Weapon](a.root)
	require.NoError(t, err)

	require.NotNil(t, seen)
	ancestor := seen.ParentRequest()
	require.NotNil(t, ancestor)
	assert.Equal(t, 1, ancestor.Depth(), "ancestor is the factory inside the armory")
	assert.Greater(t, seen.Depth(), ancestor.Depth())
	assert.Greater(t, seen.Depth(), 0)
}

func TestRoot_UnboundBehavesLikeKernel(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword)
	container.Bind[NamedWeapon](c).To(NewNamedDagger).WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())

	root, err := container.Get[container.ResolutionRoot](c)
	require.NoError(t, err)
	require.IsType(t, &preservation.Root{}, root)
	assert.False(t, root.(*preservation.Root).Bound(), "resolved without a parent")

	fromRoot, err := container.Get[Weapon](root)
	require.NoError(t, err)
	fromKernel, err := container.Get[Weapon](c)
	require.NoError(t, err)
	assert.IsType(t, fromKernel, fromRoot)

	_, rootErr := container.Get[NamedWeapon](root)
	_, kernelErr := container.Get[NamedWeapon](c)
	assert.ErrorIs(t, rootErr, container.ErrNoBinding)
	assert.ErrorIs(t, kernelErr, container.ErrNoBinding)

	req := root.CreateRequest(reflect.TypeFor[Weapon](), nil, nil, false, true)
	assert.Nil(t, req.ParentContext())
	assert.Nil(t, req.ParentRequest())
	assert.Equal(t, 0, req.Depth())

	assert.Equal(t,
		c.CanResolve(req, true),
		root.CanResolve(req, true))
}

func TestRoot_ForwardsInjectAndRelease(t *testing.T) {
	c := newKernel(t)
	container.Bind[*GrandChild](c).To(NewGrandChild).InSingletonScope()
	root := preservation.NewRoot(c)

	g := container.MustGet[*GrandChild](root)
	assert.True(t, root.Release(g))
	assert.False(t, root.Release(g))

	child := &ChildWithArgument{}
	require.NoError(t, root.Inject(child, container.PropertyValue("SomeProperty", "set")))
	assert.Equal(t, "set", child.SomeProperty)
}

func TestRoot_AncestorNamedAboveTheOwner(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword)
	container.Bind[Weapon](c).To(NewDagger).WhenAnyAncestorNamed("hero")
	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)
	container.Bind[*Keep](c).To(NewKeep).Named("hero")

	keep := container.MustGet[*Keep](c, container.Named("hero"))
	w, err := keep.Factory.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w, "the named keep sits above the factory that owns the root")

	w, err = container.MustGet[*WeaponFactory](c).CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Sword{}, w)
}

func TestRoot_AncestorMatches(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword)
	container.Bind[Weapon](c).To(NewDagger).WhenAnyAncestorMatches(func(ctx *container.Context) bool {
		return ctx.Binding().Metadata().Has("stealth")
	})
	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)
	container.Bind[*Keep](c).To(NewKeep).WithMetadata("stealth", true)

	w, err := container.MustGet[*Keep](c).Factory.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)
}

func TestRoot_GetAllRangesTwice(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword)
	container.Bind[Weapon](c).To(NewDagger)
	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)

	f := container.MustGet[*WeaponFactory](c)
	require.IsType(t, &preservation.Root{}, f.root)
	require.True(t, f.root.(*preservation.Root).Bound())

	all := container.GetAll[Weapon](f.root)
	for range 2 {
		var kinds []string
		for w, err := range all {
			require.NoError(t, err)
			kinds = append(kinds, w.Kind())
		}
		assert.ElementsMatch(t, []string{"sword", "dagger"}, kinds)
	}
}

// ── factories ─────────────────────────────────────────────────────────────────

func TestFunc_ContextPreserved(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewDagger).WhenInjectedInto(reflect.TypeFor[*FuncFactory]())
	container.Bind[*FuncFactory](c).To(NewFuncFactory)

	f := container.MustGet[*FuncFactory](c)
	w, err := f.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)

	again, err := f.CreateWeapon()
	require.NoError(t, err)
	assert.NotSame(t, w, again, "every call resolves anew")
}

func TestLazy_ContextPreserved(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewDagger).WhenInjectedInto(reflect.TypeFor[*FuncFactory]())
	container.Bind[*FuncFactory](c).To(NewFuncFactory)

	f := container.MustGet[*FuncFactory](c)
	w, err := f.GetLazyWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)

	again, err := f.GetLazyWeapon()
	require.NoError(t, err)
	assert.Same(t, w, again, "lazy values resolve once")
}

func TestFunc_AncestorNamed(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewSword)
	container.Bind[Weapon](c).To(NewDagger).WhenAnyAncestorNamed("hero")
	container.Bind[*FuncFactory](c).To(NewFuncFactory).Named("hero")
	container.Bind[*FuncFactory](c).To(NewFuncFactory).Named("villain")

	hero := container.MustGet[*FuncFactory](c, container.Named("hero"))
	w, err := hero.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)
	w, err = hero.GetLazyWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w, "the lazy frame is skipped too")

	villain := container.MustGet[*FuncFactory](c, container.Named("villain"))
	w, err = villain.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Sword{}, w)
	w, err = villain.GetLazyWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Sword{}, w)
}

func TestInterfaceFactory_ContextPreserved(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewDagger).WhenInjectedInto(reflect.TypeFor[*Village]())
	bindWeaponFactory(c)
	container.Bind[*Village](c).To(NewVillage)

	w, err := container.MustGet[*Village](c).GetWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)
}

func TestInterfaceFactory_ResolvedDirectly(t *testing.T) {
	c := newKernel(t)
	container.Bind[Weapon](c).To(NewDagger)
	container.Bind[NamedWeapon](c).To(NewNamedDagger)
	bindWeaponFactory(c)

	f, err := container.Get[IWeaponFactory](c)
	require.NoError(t, err)

	w, err := f.CreateWeapon()
	require.NoError(t, err)
	assert.IsType(t, &Dagger{}, w)

	named, err := f.CreateNamedWeapon("Sting")
	require.NoError(t, err)
	assert.Equal(t, "Sting", named.Name())
}

// ── open generics ─────────────────────────────────────────────────────────────

type Validator[T any] struct{ _ byte }

type Repository[T any] struct{ Validator any }

type User struct{}

func TestGetGeneric_ClosesWithAncestorArguments(t *testing.T) {
	validators := container.NewGeneric("Validator").
		Register(reflect.TypeFor[*Validator[User]](), reflect.TypeFor[User]())
	repositories := container.NewGeneric("Repository").
		Register(reflect.TypeFor[*Repository[User]](), reflect.TypeFor[User]())

	c := newKernel(t)
	container.Bind[*Validator[User]](c).To(func() *Validator[User] { return &Validator[User]{} })
	c.BindGeneric(repositories).ToMethod(func(ctx *container.Context) (any, error) {
		v, err := preservation.GetGeneric(ctx, validators)
		if err != nil {
			return nil, err
		}
		return &Repository[User]{Validator: v}, nil
	})

	repo, err := container.Get[*Repository[User]](c)
	require.NoError(t, err)
	assert.IsType(t, &Validator[User]{}, repo.Validator)

	_, err = preservation.NewRoot(c).GetGeneric(validators)
	assert.ErrorIs(t, err, container.ErrInvalidService, "unbound roots have no generic arguments")
}

// ── helpers ───────────────────────────────────────────────────────────────────

func TestBindInterfaceToBinding(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[*Child](c).To(NewChild).WhenInjectedInto(reflect.TypeFor[*Parent]())
	preservation.BindInterfaceToBinding[IChild, *Child](c)
	container.Bind[*GrandChild](c).To(NewGrandChild)

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	require.NotNil(t, p.Child)
	assert.NotNil(t, p.Child.Grand())
}

func TestBindInterfaceToBinding_DirectlyResolved(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Child](c).To(NewChild)
	preservation.BindInterfaceToBinding[IChild, *Child](c)
	container.Bind[*GrandChild](c).To(NewGrandChild)

	child, err := container.Get[IChild](c)
	require.NoError(t, err)
	assert.NotNil(t, child.Grand())
}

func TestGet_WithoutArguments(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		return preservation.Get[*Child](ctx)
	})
	container.Bind[*Child](c).To(NewChild).WhenInjectedInto(reflect.TypeFor[*Parent]())
	container.Bind[*GrandChild](c).To(NewGrandChild)

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	assert.NotNil(t, p.Child)
}

func bindNumberedChildren(c *container.Container) {
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[*GrandChild](c).To(NewGrandChild)
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument).
		WhenInjectedInto(reflect.TypeFor[*Parent]()).
		Named("1").WithMetadata("1", nil).WithConstructorArgument("name", "1")
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument).
		WhenInjectedInto(reflect.TypeFor[*Parent]()).
		Named("2").WithMetadata("2", nil).WithConstructorArgument("name", "2")
}

func TestGet_WithName(t *testing.T) {
	c := newKernel(t)
	bindNumberedChildren(c)
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		return preservation.Get[*ChildWithArgument](ctx, container.Named("1"))
	})

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	assert.Equal(t, "1", p.Child.(*ChildWithArgument).Name)
}

func TestGet_WithConstraint(t *testing.T) {
	c := newKernel(t)
	bindNumberedChildren(c)
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		return preservation.Get[*ChildWithArgument](ctx, container.WithConstraint(func(m *container.Metadata) bool {
			return m.Has("2")
		}))
	})

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	assert.Equal(t, "2", p.Child.(*ChildWithArgument).Name)
}

func TestGet_WithParameters(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[*GrandChild](c).To(NewGrandChild)
	container.Bind[*ChildWithArgument](c).To(NewChildWithArgument).WhenInjectedInto(reflect.TypeFor[*Parent]())
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		return preservation.Get[*ChildWithArgument](ctx, container.WithParameters(
			container.ConstructorArgument("name", "3"),
			container.PropertyValue("SomeProperty", "4"),
		))
	})

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	child := p.Child.(*ChildWithArgument)
	assert.Equal(t, "3", child.Name)
	assert.Equal(t, "4", child.SomeProperty)
}

func TestRootFor(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[*Child](c).To(NewChild).WhenInjectedInto(reflect.TypeFor[*Parent]())
	container.Bind[*GrandChild](c).To(NewGrandChild)
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		root := preservation.RootFor(ctx)
		if !root.Bound() {
			t.Error("RootFor must return a bound root")
		}
		return container.Get[*Child](root)
	})

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	assert.NotNil(t, p.Child)
}

func TestGetService(t *testing.T) {
	c := newKernel(t)
	container.Bind[*Parent](c).To(NewParent)
	container.Bind[*Child](c).To(NewChild).WhenInjectedInto(reflect.TypeFor[*Parent]())
	container.Bind[*GrandChild](c).To(NewGrandChild)
	container.Bind[IChild](c).ToMethod(func(ctx *container.Context) (any, error) {
		return preservation.GetService(ctx, reflect.TypeFor[*Child]())
	})

	p, err := container.Get[*Parent](c)
	require.NoError(t, err)
	assert.IsType(t, &Child{}, p.Child)
}
