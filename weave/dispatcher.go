package weave

import (
	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/interceptors"
	"github.com/glimte/afterdo-go/internal/safe"
	"github.com/glimte/afterdo-go/objects"
)

// invoke runs before-callbacks, the original implementation and
// after-callbacks. Errors of the original are returned unchanged and skip the
// after-callbacks; a failing callback stops the invocation with a
// *CallbackError.
func (w *wrapper) invoke(self *objects.Object, args ...any) (any, error) {
	inv := callbacks.NewInvocation(w.method, self, args)
	cores := w.providers(self)

	if err := w.dispatch(cores, callbacks.Before, inv); err != nil {
		return nil, err
	}

	out, err := w.original.Fn(self, args...)
	if err != nil {
		return out, err
	}
	inv.SetReturnValue(out)

	if err := w.dispatch(cores, callbacks.After, inv); err != nil {
		return nil, err
	}

	return out, nil
}

// providers returns the cores whose callbacks apply to this invocation, in
// the receiver's ancestor order: innermost type first. A type contributes
// only if it has a core and its own resolution of the method wraps the same
// implementation as this wrapper. A type that overrides the method without
// calling into the wrapped implementation never fires the callbacks
// registered above it.
func (w *wrapper) providers(self *objects.Object) []*Core {
	var cores []*Core
	for _, t := range self.Type().Ancestors() {
		c, ok := Lookup(t)
		if !ok {
			continue
		}
		m, ok := t.Resolve(w.method)
		if !ok || !w.sameImplementation(wrapperOf(m)) {
			continue
		}
		cores = append(cores, c)
	}
	return cores
}

// sameImplementation reports whether other intercepts the implementation w
// intercepts. A descendant wrapped before its ancestor holds its own wrapper
// around the ancestor's original.
func (w *wrapper) sameImplementation(other *wrapper) bool {
	return other != nil && (other == w || other.original == w.original)
}

func (w *wrapper) dispatch(cores []*Core, phase callbacks.Phase, inv *callbacks.Invocation) error {
	for _, c := range cores {
		for _, cb := range c.registry.Lookup(phase, w.method) {
			if err := c.run(cb, phase, inv); err != nil {
				return err
			}
		}
	}
	return nil
}

// run executes one callback through the core's interceptor chain and
// translates whatever goes wrong into a *CallbackError
func (c *Core) run(cb *callbacks.Callback, phase callbacks.Phase, inv *callbacks.Invocation) error {
	p := callbacks.NewPayload(inv, phase, c.policy, cb)

	err := safe.Call(func() error {
		return c.chain.Execute(p, interceptors.HandlerFunc(cb.Fn))
	})
	if err == nil {
		return nil
	}

	return newCallbackError(p, err)
}
