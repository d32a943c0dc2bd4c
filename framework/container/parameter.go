package container

// ParameterKind distinguishes where a parameter value is applied.
type ParameterKind int

const (
	// ConstructorArgumentKind values satisfy a named constructor target.
	ConstructorArgumentKind ParameterKind = iota
	// PropertyValueKind values are assigned to an exported field.
	PropertyValueKind
)

func (k ParameterKind) String() string {
	switch k {
	case ConstructorArgumentKind:
		return "constructor-argument"
	case PropertyValueKind:
		return "property-value"
	default:
		return "unknown"
	}
}

// Parameter is a value supplied to an activation from outside the binding
// graph. Two parameters are the same when kind and name are equal.
type Parameter interface {
	Kind() ParameterKind
	Name() string
	Value(ctx *Context, target *Target) (any, error)

	// ShouldInherit reports whether the parameter flows to requests created
	// below the one it was supplied to.
	ShouldInherit() bool
}

type parameter struct {
	kind    ParameterKind
	name    string
	value   func(*Context, *Target) (any, error)
	inherit bool
}

func (p *parameter) Kind() ParameterKind { return p.kind }
func (p *parameter) Name() string        { return p.name }
func (p *parameter) ShouldInherit() bool { return p.inherit }

func (p *parameter) Value(ctx *Context, target *Target) (any, error) {
	return p.value(ctx, target)
}

func constant(v any) func(*Context, *Target) (any, error) {
	return func(*Context, *Target) (any, error) { return v, nil }
}

// ConstructorArgument overrides the constructor target called name.
func ConstructorArgument(name string, value any) Parameter {
	return &parameter{kind: ConstructorArgumentKind, name: name, value: constant(value)}
}

// InheritedConstructorArgument is a ConstructorArgument that also applies to
// every request created below the one it is supplied to.
func InheritedConstructorArgument(name string, value any) Parameter {
	return &parameter{kind: ConstructorArgumentKind, name: name, value: constant(value), inherit: true}
}

// PropertyValue assigns value to the exported field called name.
func PropertyValue(name string, value any) Parameter {
	return &parameter{kind: PropertyValueKind, name: name, value: constant(value)}
}

// InheritedPropertyValue is a PropertyValue that flows down the graph.
func InheritedPropertyValue(name string, value any) Parameter {
	return &parameter{kind: PropertyValueKind, name: name, value: constant(value), inherit: true}
}

// ComputedConstructorArgument supplies a value computed for each target.
func ComputedConstructorArgument(name string, fn func(*Context, *Target) (any, error), inherit bool) Parameter {
	return &parameter{kind: ConstructorArgumentKind, name: name, value: fn, inherit: inherit}
}

// SameParameter reports whether a and b address the same injection slot.
func SameParameter(a, b Parameter) bool {
	return a.Kind() == b.Kind() && a.Name() == b.Name()
}

// UnionParameters returns first followed by the members of second that do
// not collide with anything already present. The first occurrence wins.
func UnionParameters(first, second []Parameter) []Parameter {
	out := make([]Parameter, 0, len(first)+len(second))
	add := func(ps []Parameter) {
	next:
		for _, p := range ps {
			for _, existing := range out {
				if SameParameter(existing, p) {
					continue next
				}
			}
			out = append(out, p)
		}
	}
	add(first)
	add(second)
	return out
}

// InheritableParameters returns the parameters of ps flagged to inherit.
func InheritableParameters(ps []Parameter) []Parameter {
	var out []Parameter
	for _, p := range ps {
		if p.ShouldInherit() {
			out = append(out, p)
		}
	}
	return out
}

func findParameter(ps []Parameter, kind ParameterKind, name string) Parameter {
	for _, p := range ps {
		if p.Kind() == kind && p.Name() == name {
			return p
		}
	}
	return nil
}
