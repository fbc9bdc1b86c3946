package weave

import (
	"log/slog"
	"sync"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/interceptors"
	"github.com/glimte/afterdo-go/objects"
)

type coreKey struct{}

// Option configures a Core when it is created
type Option func(*Core)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithArgumentPolicy sets which values follow the call arguments in the
// positional view of a callback payload
func WithArgumentPolicy(policy callbacks.ArgumentPolicy) Option {
	return func(c *Core) {
		c.policy = policy
	}
}

// WithInterceptorChain runs every callback of the type through chain
func WithInterceptorChain(chain *interceptors.InterceptorChain) Option {
	return func(c *Core) {
		c.chain = chain
	}
}

// Core is the callback capability of one type: its registry plus the
// configuration used when its callbacks run. Naming front-ends such as
// afterdo.Capability are thin layers over a Core.
type Core struct {
	mu       sync.Mutex
	typ      *objects.Type
	registry *callbacks.Registry
	policy   callbacks.ArgumentPolicy
	chain    *interceptors.InterceptorChain
	logger   *slog.Logger
}

// For returns the Core attached to t, creating it with options on first use.
// Options passed once the core exists are ignored.
func For(t *objects.Type, options ...Option) *Core {
	v, loaded := t.LoadOrStoreExtension(coreKey{}, func() any {
		c := &Core{
			typ:      t,
			registry: callbacks.NewRegistry(),
			policy:   callbacks.DefaultArgumentPolicy,
			logger:   slog.Default(),
		}
		for _, opt := range options {
			opt(c)
		}
		return c
	})

	c := v.(*Core)
	if loaded && len(options) > 0 {
		c.logger.Debug("callback capability already attached, options ignored", "type", t.Name())
	}
	return c
}

// Lookup returns the Core attached to t, if any
func Lookup(t *objects.Type) (*Core, bool) {
	v, ok := t.Extension(coreKey{})
	if !ok {
		return nil, false
	}
	return v.(*Core), true
}

// Type returns the type the core belongs to
func (c *Core) Type() *objects.Type {
	return c.typ
}

// Policy returns the argument policy of the core
func (c *Core) Policy() callbacks.ArgumentPolicy {
	return c.policy
}

// DefineCallback registers fn for every named method in phase. It fails
// with ErrNoMethodSpecified when no method is named and with a
// *objects.NoSuchMethodError when any name is undefined; in both cases the
// type and the registry are left untouched.
func (c *Core) DefineCallback(phase callbacks.Phase, fn callbacks.Func, methods ...string) error {
	if fn == nil {
		return ErrNilCallback
	}
	return c.define(phase, callbacks.New(fn), methods)
}

// DefineCallbackFunc is DefineCallback for arbitrary functions, adapted
// with callbacks.Adapt
func (c *Core) DefineCallbackFunc(phase callbacks.Phase, fn any, methods ...string) error {
	adapted, err := callbacks.Adapt(fn)
	if err != nil {
		return err
	}
	return c.define(phase, callbacks.NewFrom(fn, adapted), methods)
}

func (c *Core) define(phase callbacks.Phase, cb *callbacks.Callback, methods []string) error {
	if len(methods) == 0 {
		return &NoMethodSpecifiedError{Phase: phase}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, method := range methods {
		if !c.typ.MethodDefined(method) {
			return &objects.NoSuchMethodError{Type: c.typ.Name(), Method: method}
		}
	}

	for _, method := range methods {
		if err := c.ensureWrapped(method); err != nil {
			return err
		}
		c.registry.Register(phase, method, cb)

		c.logger.Debug("registered callback",
			"type", c.typ.Name(),
			"method", method,
			"phase", phase.String(),
			"callbackId", cb.ID,
			"source", cb.Source(),
		)
	}

	return nil
}

// RemoveAllCallbacks drops every callback registered on this type. Wrapped
// methods stay wrapped, and callbacks of other types in the hierarchy keep
// firing.
func (c *Core) RemoveAllCallbacks() {
	c.registry.Reset()
	c.logger.Debug("removed all callbacks", "type", c.typ.Name())
}

// Callbacks returns a snapshot of the registered callbacks
func (c *Core) Callbacks() callbacks.Snapshot {
	return c.registry.Snapshot()
}
