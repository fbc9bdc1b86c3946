package objects

import (
	"fmt"
	"sort"
	"sync"
)

// TypeRegistry manages type descriptors by name
type TypeRegistry interface {
	// Register registers a type under its name
	Register(t *Type) error

	// Get retrieves the type registered under typeName
	Get(typeName string) (*Type, error)

	// NewObject creates an instance of the registered type
	NewObject(typeName string, value any) (*Object, error)

	// IsRegistered checks if a type name is registered
	IsRegistered(typeName string) bool

	// ListTypes returns all registered type names, sorted
	ListTypes() []string
}

// DefaultTypeRegistry is the default implementation of TypeRegistry
type DefaultTypeRegistry struct {
	types map[string]*Type
	mu    sync.RWMutex
}

// NewTypeRegistry creates a new type registry
func NewTypeRegistry() *DefaultTypeRegistry {
	return &DefaultTypeRegistry{
		types: make(map[string]*Type),
	}
}

// Register registers a type under its name. Registering the same descriptor
// twice is a no-op; a different descriptor with the same name is rejected.
func (r *DefaultTypeRegistry) Register(t *Type) error {
	if t == nil {
		return fmt.Errorf("type cannot be nil")
	}
	if t.Name() == "" {
		return fmt.Errorf("type name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.types[t.Name()]; exists {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%w: %s belongs to another type", ErrTypeNameTaken, t.Name())
	}

	r.types[t.Name()] = t
	return nil
}

// Get retrieves the type registered under typeName
func (r *DefaultTypeRegistry) Get(typeName string) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[typeName]
	if !exists {
		return nil, fmt.Errorf("type %s not registered", typeName)
	}

	return t, nil
}

// NewObject creates an instance of the registered type
func (r *DefaultTypeRegistry) NewObject(typeName string, value any) (*Object, error) {
	t, err := r.Get(typeName)
	if err != nil {
		return nil, err
	}

	return t.New(value), nil
}

// IsRegistered checks if a type name is registered
func (r *DefaultTypeRegistry) IsRegistered(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[typeName]
	return exists
}

// ListTypes returns all registered type names, sorted
func (r *DefaultTypeRegistry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
