package objects

import (
	"fmt"
	"sync"
)

// MethodFunc is the implementation of a method. self is the receiver the
// method was invoked on, which may be an instance of a descendant type.
type MethodFunc func(self *Object, args ...any) (any, error)

// Visibility controls whether a method can be invoked with Object.Call
type Visibility int

const (
	// Public methods are callable through Call and Send
	Public Visibility = iota
	// Private methods are only callable through Send and Super
	Private
)

// String returns the visibility name
func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Method is a single entry of a type's method table
type Method struct {
	Name       string
	Owner      *Type
	Visibility Visibility
	Fn         MethodFunc

	// Tag is opaque data attached by whoever installed the method.
	// Interceptors use it to recognise their own wrappers.
	Tag any
}

// TypeOption configures a Type at construction time
type TypeOption func(*Type)

// WithParents declares the types whose methods this type inherits, in lookup order
func WithParents(parents ...*Type) TypeOption {
	return func(t *Type) {
		t.parents = append(t.parents, parents...)
	}
}

// WithPrepended declares modules whose methods take precedence over the
// type's own methods
func WithPrepended(modules ...*Type) TypeOption {
	return func(t *Type) {
		t.prepended = append(t.prepended, modules...)
	}
}

// Type is a type descriptor owning a method table. Types are linked through
// parents and prepended modules, both fixed at construction so the ancestor
// list can never form a cycle.
type Type struct {
	name      string
	parents   []*Type
	prepended []*Type
	ancestors []*Type

	mu         sync.RWMutex
	methods    map[string]*Method
	extensions map[any]any
}

// NewType creates a new type descriptor
func NewType(name string, options ...TypeOption) *Type {
	t := &Type{
		name:       name,
		methods:    make(map[string]*Method),
		extensions: make(map[any]any),
	}

	for _, opt := range options {
		opt(t)
	}

	t.ancestors = linearize(t)
	return t
}

// Name returns the type name
func (t *Type) Name() string {
	return t.name
}

// String implements fmt.Stringer
func (t *Type) String() string {
	return t.name
}

// Parents returns the declared parents
func (t *Type) Parents() []*Type {
	return append([]*Type(nil), t.parents...)
}

// Ancestors returns the method lookup order of the type: the ancestors of
// every prepended module, the type itself, then the ancestors of every parent
// in declaration order. A type appearing more than once keeps its first slot.
func (t *Type) Ancestors() []*Type {
	return append([]*Type(nil), t.ancestors...)
}

func linearize(t *Type) []*Type {
	seen := make(map[*Type]bool)
	var order []*Type

	add := func(types []*Type) {
		for _, a := range types {
			if seen[a] {
				continue
			}
			seen[a] = true
			order = append(order, a)
		}
	}

	for _, m := range t.prepended {
		add(m.ancestors)
	}
	add([]*Type{t})
	for _, p := range t.parents {
		add(p.ancestors)
	}

	return order
}

// Define adds or replaces a public method
func (t *Type) Define(name string, fn MethodFunc) *Type {
	return t.define(name, fn, Public)
}

// DefinePrivate adds or replaces a private method
func (t *Type) DefinePrivate(name string, fn MethodFunc) *Type {
	return t.define(name, fn, Private)
}

func (t *Type) define(name string, fn MethodFunc, visibility Visibility) *Type {
	if name == "" {
		panic("objects: method name cannot be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("objects: method %s.%s has no implementation", t.name, name))
	}

	t.Install(&Method{Name: name, Visibility: visibility, Fn: fn})
	return t
}

// Install puts m into the type's own method table, replacing any entry with
// the same name. The owner is set to t.
func (t *Type) Install(m *Method) {
	m.Owner = t

	t.mu.Lock()
	defer t.mu.Unlock()
	t.methods[m.Name] = m
}

// OwnMethod returns the method defined directly on t
func (t *Type) OwnMethod(name string) (*Method, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, exists := t.methods[name]
	return m, exists
}

// OwnMethodNames lists the names in t's own method table
func (t *Type) OwnMethodNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.methods))
	for name := range t.methods {
		names = append(names, name)
	}
	return names
}

// Resolve finds the implementation used for name by instances of t
func (t *Type) Resolve(name string) (*Method, bool) {
	return resolveFrom(t.ancestors, name)
}

func resolveFrom(ancestors []*Type, name string) (*Method, bool) {
	for _, a := range ancestors {
		if m, ok := a.OwnMethod(name); ok {
			return m, true
		}
	}
	return nil, false
}

// MethodDefined reports whether name is a public or private method of t,
// defined on t itself or inherited
func (t *Type) MethodDefined(name string) bool {
	_, ok := t.Resolve(name)
	return ok
}

// PublicMethodDefined reports whether name resolves to a public method
func (t *Type) PublicMethodDefined(name string) bool {
	m, ok := t.Resolve(name)
	return ok && m.Visibility == Public
}

// IsA reports whether other is among t's ancestors
func (t *Type) IsA(other *Type) bool {
	for _, a := range t.ancestors {
		if a == other {
			return true
		}
	}
	return false
}

// Extension returns the value stored under key
func (t *Type) Extension(key any) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.extensions[key]
	return v, ok
}

// LoadOrStoreExtension returns the value stored under key, creating it with
// factory if absent. loaded is true when the value already existed.
func (t *Type) LoadOrStoreExtension(key any, factory func() any) (value any, loaded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, ok := t.extensions[key]; ok {
		return v, true
	}

	v := factory()
	t.extensions[key] = v
	return v, false
}

// New creates an instance of t wrapping value
func (t *Type) New(value any) *Object {
	return newObject(t, value)
}
