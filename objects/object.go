package objects

import (
	"fmt"

	"github.com/google/uuid"
)

// Object is an instance of a Type
type Object struct {
	typ   *Type
	id    uuid.UUID
	value any
}

func newObject(t *Type, value any) *Object {
	return &Object{
		typ:   t,
		id:    uuid.New(),
		value: value,
	}
}

// Type returns the type the object was created from
func (o *Object) Type() *Type {
	return o.typ
}

// ID returns the object identity
func (o *Object) ID() uuid.UUID {
	return o.id
}

// Value returns the state the object was created with
func (o *Object) Value() any {
	return o.value
}

// String returns a short human readable representation like #<Dog 1f0c9a2e>
func (o *Object) String() string {
	return fmt.Sprintf("#<%s %s>", o.typ.name, o.id.String()[:8])
}

// Call invokes a public method
func (o *Object) Call(name string, args ...any) (any, error) {
	m, ok := o.typ.Resolve(name)
	if !ok {
		return nil, &NoSuchMethodError{Type: o.typ.name, Method: name}
	}
	if m.Visibility == Private {
		return nil, &PrivateMethodError{Type: o.typ.name, Method: name}
	}

	return m.Fn(o, args...)
}

// Send invokes a method regardless of its visibility
func (o *Object) Send(name string, args ...any) (any, error) {
	m, ok := o.typ.Resolve(name)
	if !ok {
		return nil, &NoSuchMethodError{Type: o.typ.name, Method: name}
	}

	return m.Fn(o, args...)
}

// Super invokes the next implementation of name after from in the
// receiver's ancestors. Method bodies pass their own defining type as from.
func (o *Object) Super(from *Type, name string, args ...any) (any, error) {
	ancestors := o.typ.ancestors
	for i, a := range ancestors {
		if a != from {
			continue
		}
		if m, ok := resolveFrom(ancestors[i+1:], name); ok {
			return m.Fn(o, args...)
		}
		break
	}

	return nil, &NoSuchMethodError{Type: from.name, Method: name, Super: true}
}

// RespondTo reports whether name can be invoked with Call
func (o *Object) RespondTo(name string) bool {
	return o.typ.PublicMethodDefined(name)
}
