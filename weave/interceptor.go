package weave

import (
	"strings"

	"github.com/glimte/afterdo-go/objects"
)

// AliasPrefix is prepended to a method name to form the private name under
// which the original implementation is preserved
const AliasPrefix = "__afterdo_orig_"

// AliasName returns the name the original implementation of method is kept under
func AliasName(method string) string {
	return AliasPrefix + method
}

// IsAlias reports whether name is a preserved original
func IsAlias(name string) bool {
	return strings.HasPrefix(name, AliasPrefix)
}

// wrapper is installed in place of an intercepted method. Its identity is
// what ties a type's callbacks to an invocation.
type wrapper struct {
	core     *Core
	method   string
	original *objects.Method
}

// IsWrapped reports whether name on t resolves to a callback wrapper
func IsWrapped(t *objects.Type, name string) bool {
	m, ok := t.Resolve(name)
	return ok && wrapperOf(m) != nil
}

func wrapperOf(m *objects.Method) *wrapper {
	w, _ := m.Tag.(*wrapper)
	return w
}

// ensureWrapped installs the wrapper for method on the core's type. It does
// nothing when the implementation the type resolves is already a wrapper,
// either its own or one inherited from an ancestor, so there is never more
// than one wrapper layer per implementation.
func (c *Core) ensureWrapped(method string) error {
	m, ok := c.typ.Resolve(method)
	if !ok {
		return &objects.NoSuchMethodError{Type: c.typ.Name(), Method: method}
	}
	if wrapperOf(m) != nil {
		return nil
	}

	c.typ.Install(&objects.Method{
		Name:       AliasName(method),
		Visibility: objects.Private,
		Fn:         m.Fn,
	})

	w := &wrapper{
		core:     c,
		method:   method,
		original: m,
	}
	c.typ.Install(&objects.Method{
		Name:       method,
		Visibility: m.Visibility,
		Fn:         w.invoke,
		Tag:        w,
	})

	c.logger.Debug("wrapped method",
		"type", c.typ.Name(),
		"method", method,
		"alias", AliasName(method),
		"inheritedFrom", m.Owner.Name(),
	)

	return nil
}
