package main

import (
	"os"
	"reflect"

	"github.com/km-arc/go-preservation/framework/app"
	"github.com/km-arc/go-preservation/framework/container"
	"github.com/km-arc/go-preservation/framework/factory"
)

// ── Domain ────────────────────────────────────────────────────────────────────

type Weapon interface{ Hit(target string) string }

type Sword struct{ _ byte }

func (*Sword) Hit(target string) string { return "Chopped " + target + " clean in half" }

type Dagger struct{ _ byte }

func (*Dagger) Hit(target string) string { return "Stabbed " + target + " in the back" }

// WeaponFactory creates weapons on demand through the resolution root it
// was injected with.
type WeaponFactory struct {
	root container.ResolutionRoot
}

func NewWeaponFactory(root container.ResolutionRoot) *WeaponFactory {
	return &WeaponFactory{root: root}
}

func (f *WeaponFactory) CreateWeapon() (Weapon, error) {
	return container.Get[Weapon](f.root)
}

// Ninja draws a fresh weapon for every fight.
type Ninja struct {
	draw factory.Func[Weapon]
}

func NewNinja(draw factory.Func[Weapon]) *Ninja { return &Ninja{draw: draw} }

// ── Provider ──────────────────────────────────────────────────────────────────

type ArmoryServiceProvider struct {
	container.BaseProvider
}

func (p *ArmoryServiceProvider) Register(c *container.Container) {
	container.Bind[Weapon](c).To(func() Weapon { return &Sword{} }).
		WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())
	container.Bind[Weapon](c).To(func() Weapon { return &Dagger{} }).
		WhenInjectedInto(reflect.TypeFor[*Ninja]())

	container.Bind[*WeaponFactory](c).To(NewWeaponFactory)
	container.Bind[*Ninja](c).To(NewNinja).InSingletonScope()
}

func main() {
	application := app.New() // loads .env automatically
	application.Register(&ArmoryServiceProvider{})
	application.Boot()

	log := application.Log()

	forge := container.MustGet[*WeaponFactory](application.Container)
	sword, err := forge.CreateWeapon()
	if err != nil {
		log.Error().Err(err).Msg("weapon factory failed")
		os.Exit(1)
	}
	log.Info().Str("weapon", reflect.TypeOf(sword).String()).Msg(sword.Hit("the practice dummy"))

	ninja := container.MustGet[*Ninja](application.Container)
	dagger, err := ninja.draw.Call()
	if err != nil {
		log.Error().Err(err).Msg("ninja could not draw")
		os.Exit(1)
	}
	log.Info().Str("weapon", reflect.TypeOf(dagger).String()).Msg(dagger.Hit("the samurai"))

	// Nothing asked for a weapon here, so no conditional binding applies.
	if _, err := container.Get[Weapon](application.Container); err != nil {
		log.Info().Err(err).Msg("direct resolution has no ancestor")
	}
}
