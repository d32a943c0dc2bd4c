package container

import (
	"fmt"
	"reflect"
)

// Member kinds used for targets created by the container.
const (
	ConstructorMember = "constructor"
	FieldMember       = "field"
)

// Target describes one injection point: a constructor parameter or a field
// of a declaring type. Targets are immutable; the As* methods return copies.
type Target struct {
	declaring   reflect.Type
	member      string
	name        string
	typ         reflect.Type
	optional    bool
	indirection bool
}

// NewTarget describes the injection point name of type typ on member of
// declaring.
func NewTarget(declaring reflect.Type, member, name string, typ reflect.Type) *Target {
	return &Target{declaring: declaring, member: member, name: name, typ: typ}
}

// AsOptional returns a copy whose resolution may yield no value.
func (t *Target) AsOptional() *Target {
	cp := *t
	cp.optional = true
	return &cp
}

// AsIndirection returns a copy tagged as an infrastructure frame. Factories
// use it for the requests they issue on behalf of application code.
func (t *Target) AsIndirection() *Target {
	cp := *t
	cp.indirection = true
	return &cp
}

func (t *Target) DeclaringType() reflect.Type { return t.declaring }
func (t *Target) Member() string              { return t.member }
func (t *Target) Name() string                { return t.name }
func (t *Target) Type() reflect.Type          { return t.typ }
func (t *Target) Optional() bool              { return t.optional }
func (t *Target) Indirection() bool           { return t.indirection }

func (t *Target) String() string {
	declaring := "<root>"
	if t.declaring != nil {
		declaring = t.declaring.String()
	}
	return fmt.Sprintf("%s.%s(%s %s)", declaring, t.member, t.name, t.typ)
}
