// Copyright 2024 Afterdo Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package afterdo

import (
	"errors"
	"log/slog"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/interceptors"
	"github.com/glimte/afterdo-go/objects"
	"github.com/glimte/afterdo-go/weave"
)

// AttachedTypes records the types the capability was attached to, by name.
// When distinct descriptors share a name only the first one is recorded.
var AttachedTypes objects.TypeRegistry = objects.NewTypeRegistry()

var (
	// ErrNoMethodSpecified is returned when a registration names no method
	ErrNoMethodSpecified = weave.ErrNoMethodSpecified
	// ErrNoSuchMethod is returned when a registration names an undefined method
	ErrNoSuchMethod = objects.ErrNoSuchMethod
	// ErrCallback is matched by every error raised by a callback
	ErrCallback = weave.ErrCallback
)

type (
	// CallbackError wraps the failure of a callback with the context of the
	// invocation it ran in
	CallbackError = weave.CallbackError
	// NoSuchMethodError names the undefined method of a registration
	NoSuchMethodError = objects.NoSuchMethodError
	// NoMethodSpecifiedError is the concrete type behind ErrNoMethodSpecified
	NoMethodSpecifiedError = weave.NoMethodSpecifiedError
)

// Capability is the after/before API of one type
type Capability struct {
	core *weave.Core
}

// Attach installs the callback capability on t. Attaching the same type again
// returns a capability sharing the first one's callbacks and configuration.
func Attach(t *objects.Type, options ...Option) *Capability {
	cfg := newConfig(options)

	if err := AttachedTypes.Register(t); err != nil && !errors.Is(err, objects.ErrTypeNameTaken) {
		cfg.logger.Warn("type not recorded as attached", "type", t.Name(), "error", err)
	}

	var weaveOptions []weave.Option
	if len(options) > 0 {
		weaveOptions = cfg.weaveOptions()
	}

	return &Capability{core: weave.For(t, weaveOptions...)}
}

// After registers fn to run after each of methods returns successfully
func (c *Capability) After(fn callbacks.Func, methods ...string) error {
	return c.core.DefineCallback(callbacks.After, fn, methods...)
}

// Before registers fn to run before each of methods
func (c *Capability) Before(fn callbacks.Func, methods ...string) error {
	return c.core.DefineCallback(callbacks.Before, fn, methods...)
}

// AfterFunc is After for any function signature. The positional values of
// the payload are bound to fn's parameters, see callbacks.Adapt.
func (c *Capability) AfterFunc(fn any, methods ...string) error {
	return c.core.DefineCallbackFunc(callbacks.After, fn, methods...)
}

// BeforeFunc is Before for any function signature
func (c *Capability) BeforeFunc(fn any, methods ...string) error {
	return c.core.DefineCallbackFunc(callbacks.Before, fn, methods...)
}

// RemoveAllCallbacks removes every callback registered on this type.
// Callbacks registered on its ancestors keep firing.
func (c *Capability) RemoveAllCallbacks() {
	c.core.RemoveAllCallbacks()
}

// Callbacks returns a read-only snapshot of the registered callbacks
func (c *Capability) Callbacks() callbacks.Snapshot {
	return c.core.Callbacks()
}

// Type returns the type the capability is attached to
func (c *Capability) Type() *objects.Type {
	return c.core.Type()
}

// Core returns the engine behind the capability, for callers that want to
// expose it under their own names
func (c *Capability) Core() *weave.Core {
	return c.core
}

// AlternativeNaming exposes the capability under names that do not collide
// with hosts already defining After or Before
type AlternativeNaming struct {
	capability *Capability
}

// AttachAlternative is Attach returning the alternative naming
func AttachAlternative(t *objects.Type, options ...Option) *AlternativeNaming {
	return &AlternativeNaming{capability: Attach(t, options...)}
}

// AdAfter is Capability.After
func (a *AlternativeNaming) AdAfter(fn callbacks.Func, methods ...string) error {
	return a.capability.After(fn, methods...)
}

// AdBefore is Capability.Before
func (a *AlternativeNaming) AdBefore(fn callbacks.Func, methods ...string) error {
	return a.capability.Before(fn, methods...)
}

// AdAfterFunc is Capability.AfterFunc
func (a *AlternativeNaming) AdAfterFunc(fn any, methods ...string) error {
	return a.capability.AfterFunc(fn, methods...)
}

// AdBeforeFunc is Capability.BeforeFunc
func (a *AlternativeNaming) AdBeforeFunc(fn any, methods ...string) error {
	return a.capability.BeforeFunc(fn, methods...)
}

// AdRemoveAllCallbacks is Capability.RemoveAllCallbacks
func (a *AlternativeNaming) AdRemoveAllCallbacks() {
	a.capability.RemoveAllCallbacks()
}

// AdCallbacks is Capability.Callbacks
func (a *AlternativeNaming) AdCallbacks() callbacks.Snapshot {
	return a.capability.Callbacks()
}

type config struct {
	logger       *slog.Logger
	policy       callbacks.ArgumentPolicy
	chain        *interceptors.InterceptorChain
	interceptors []interceptors.Interceptor
	logging      bool
	metrics      interceptors.MetricsCollector
}

func newConfig(options []Option) *config {
	cfg := &config{
		logger: slog.Default(),
		policy: callbacks.DefaultArgumentPolicy,
	}

	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

func (cfg *config) weaveOptions() []weave.Option {
	return []weave.Option{
		weave.WithLogger(cfg.logger),
		weave.WithArgumentPolicy(cfg.policy),
		weave.WithInterceptorChain(cfg.interceptorChain()),
	}
}

func (cfg *config) interceptorChain() *interceptors.InterceptorChain {
	if cfg.chain != nil {
		return cfg.chain
	}

	builder := interceptors.NewChainBuilder(cfg.logger)
	if cfg.logging {
		builder.WithLogging()
	}
	if cfg.metrics != nil {
		builder.WithMetrics(cfg.metrics)
	}
	for _, i := range cfg.interceptors {
		builder.WithCustom(i)
	}
	return builder.Build()
}

// Option configures a capability. Options only take effect the first time a
// type is attached.
type Option func(*config)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithArgumentPolicy sets which values follow the call arguments in the
// positional view a callback receives
func WithArgumentPolicy(policy callbacks.ArgumentPolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithLogging logs every callback run
func WithLogging() Option {
	return func(c *config) {
		c.logging = true
	}
}

// WithMetrics reports callback counts, timings and failures to collector
func WithMetrics(collector interceptors.MetricsCollector) Option {
	return func(c *config) {
		c.metrics = collector
	}
}

// WithInterceptors adds custom interceptors around every callback run
func WithInterceptors(list ...interceptors.Interceptor) Option {
	return func(c *config) {
		c.interceptors = append(c.interceptors, list...)
	}
}

// WithInterceptorChain uses chain as is. It replaces whatever WithLogging,
// WithMetrics and WithInterceptors would have built.
func WithInterceptorChain(chain *interceptors.InterceptorChain) Option {
	return func(c *config) {
		c.chain = chain
	}
}
