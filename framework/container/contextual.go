package container

import "reflect"

// ── Conditional bindings ──────────────────────────────────────────────────────
//
// Conditions look at the request chain: the target the value is injected
// into and the bindings of the contexts above it. A conditional binding wins
// over an unconditional one for the same service.
//
//	// Give the factory a Sword, everyone else gets nothing.
//	c.Bind(weapon).To(NewSword).WhenInjectedInto(reflect.TypeFor[*WeaponFactory]())
//
//	// Only under a parent bound as "Warrior".
//	c.Bind(weapon).To(NewDagger).WhenParentNamed("Warrior")

// When attaches an arbitrary condition. Calling it again replaces the
// previous condition.
func (bb *BindingBuilder) When(condition func(Request) bool) *BindingBuilder {
	bb.binding.condition = condition
	return bb
}

// WhenInjectedInto matches when the value is injected into a member of
// parent. Pointer and value forms of the same struct are treated alike.
func (bb *BindingBuilder) WhenInjectedInto(parent reflect.Type) *BindingBuilder {
	want := indirect(parent)
	return bb.When(func(req Request) bool {
		target := req.Target()
		if target == nil || target.DeclaringType() == nil {
			return false
		}
		return indirect(target.DeclaringType()) == want
	})
}

// WhenParentNamed matches when the binding that created the parent was
// registered under name.
func (bb *BindingBuilder) WhenParentNamed(name string) *BindingBuilder {
	return bb.When(func(req Request) bool {
		parent := req.ParentContext()
		return parent != nil && parent.Binding().Metadata().Name() == name
	})
}

// WhenAnyAncestorNamed matches when any binding on the ancestor chain was
// registered under name.
func (bb *BindingBuilder) WhenAnyAncestorNamed(name string) *BindingBuilder {
	return bb.WhenAnyAncestorMatches(func(ctx *Context) bool {
		return ctx.Binding().Metadata().Name() == name
	})
}

// WhenAnyAncestorMatches matches when predicate holds for any ancestor
// context, nearest first.
func (bb *BindingBuilder) WhenAnyAncestorMatches(predicate func(*Context) bool) *BindingBuilder {
	return bb.When(func(req Request) bool {
		for ctx := req.ParentContext(); ctx != nil; ctx = ctx.Request().ParentContext() {
			if predicate(ctx) {
				return true
			}
		}
		return false
	})
}

func indirect(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
