package container

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// In marks a constructor parameter struct whose fields are injected one by
// one. Field tags name the target and may mark it optional:
//
//	type WarriorParams struct {
//	    container.In
//	    Weapon Weapon `inject:"weapon"`
//	    Shield Shield `inject:",optional"`
//	}
type In struct{}

var (
	inType    = reflect.TypeFor[In]()
	errorType = reflect.TypeFor[error]()
)

const injectTag = "inject"

// ── Constructors ──────────────────────────────────────────────────────────────

type constructor struct {
	fn     reflect.Value
	typ    reflect.Type
	out    reflect.Type
	hasErr bool
}

func newConstructor(fn any) (*constructor, error) {
	if fn == nil {
		return nil, errors.New("constructor is nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %s", t)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("constructor %s must not be variadic", t)
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("constructor %s: second result must be error", t)
		}
	default:
		return nil, fmt.Errorf("constructor %s must return a value and an optional error", t)
	}
	return &constructor{fn: v, typ: t, out: t.Out(0), hasErr: t.NumOut() == 2}, nil
}

func (c *constructor) factory() Factory {
	return func(ctx *Context) (any, error) {
		args := make([]reflect.Value, c.typ.NumIn())
		for i := range args {
			in := c.typ.In(i)
			var err error
			if isInStruct(in) {
				args[i], err = c.buildIn(ctx, in)
			} else {
				target := NewTarget(c.out, ConstructorMember, fmt.Sprintf("arg%d", i), in)
				args[i], err = resolveTarget(ctx, target, ConstructorArgumentKind)
			}
			if err != nil {
				return nil, err
			}
		}

		out := c.fn.Call(args)
		if c.hasErr && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		instance := out[0].Interface()
		if err := injectProperties(ctx, instance); err != nil {
			return nil, err
		}
		return instance, nil
	}
}

func (c *constructor) buildIn(ctx *Context, in reflect.Type) (reflect.Value, error) {
	v := reflect.New(in).Elem()
	for i := range in.NumField() {
		f := in.Field(i)
		if f.Anonymous && f.Type == inType || !f.IsExported() {
			continue
		}
		name, optional := parseTag(f)
		target := NewTarget(c.out, ConstructorMember, name, f.Type)
		if optional {
			target = target.AsOptional()
		}
		fv, err := resolveTarget(ctx, target, ConstructorArgumentKind)
		if err != nil {
			return reflect.Value{}, err
		}
		v.Field(i).Set(fv)
	}
	return v, nil
}

func isInStruct(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		if f := t.Field(i); f.Anonymous && f.Type == inType {
			return true
		}
	}
	return false
}

func parseTag(f reflect.StructField) (name string, optional bool) {
	tag := f.Tag.Get(injectTag)
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "optional"
}

// ── Targets ───────────────────────────────────────────────────────────────────

// resolveTarget satisfies target from a matching parameter or, failing that,
// by resolving a child request.
func resolveTarget(ctx *Context, target *Target, kind ParameterKind) (reflect.Value, error) {
	if p := findParameter(ctx.Parameters(), kind, target.Name()); p != nil {
		v, err := p.Value(ctx, target)
		if err != nil {
			return reflect.Value{}, err
		}
		return valueFor(v, target)
	}

	req := ctx.Request().CreateChild(target.Type(), ctx, target)
	results, err := ctx.Kernel().Resolve(req)
	if err != nil {
		return reflect.Value{}, err
	}
	if len(results) == 0 {
		return reflect.Zero(target.Type()), nil
	}
	return valueFor(results[0], target)
}

func valueFor(v any, target *Target) (reflect.Value, error) {
	t := target.Type()
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %s got %s", ErrTypeMismatch, target, rv.Type())
	}
	return rv, nil
}

// ── Properties ────────────────────────────────────────────────────────────────

// injectProperties fills the exported fields of a struct pointer that carry
// an inject tag or are named by a PropertyValue parameter.
func injectProperties(ctx *Context, instance any) error {
	v := reflect.ValueOf(instance)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	declaring := v.Type()
	s := v.Elem()
	st := s.Type()

	for i := range st.NumField() {
		f := st.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		_, tagged := f.Tag.Lookup(injectTag)
		if !tagged && findParameter(ctx.Parameters(), PropertyValueKind, f.Name) == nil {
			continue
		}

		name, optional := f.Name, false
		if tagged {
			name, optional = parseTag(f)
		}
		target := NewTarget(declaring, FieldMember, name, f.Type)
		if optional {
			target = target.AsOptional()
		}
		if !tagged {
			// only a parameter can fill an untagged field
			p := findParameter(ctx.Parameters(), PropertyValueKind, f.Name)
			raw, err := p.Value(ctx, target)
			if err != nil {
				return err
			}
			fv, err := valueFor(raw, target)
			if err != nil {
				return err
			}
			s.Field(i).Set(fv)
			continue
		}

		fv, err := resolveTarget(ctx, target, PropertyValueKind)
		if err != nil {
			return err
		}
		s.Field(i).Set(fv)
	}
	return nil
}
