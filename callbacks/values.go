package callbacks

import "sync"

// Values holds data shared between the callbacks of a single invocation, so
// an after-callback can read what a before-callback stored
type Values struct {
	values map[string]any
	mu     sync.RWMutex
}

// NewValues creates an empty value bag
func NewValues() *Values {
	return &Values{
		values: make(map[string]any),
	}
}

// Set stores a value
func (v *Values) Set(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key] = value
}

// Get retrieves a value
func (v *Values) Get(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, exists := v.values[key]
	return value, exists
}

// GetString retrieves a string value
func (v *Values) GetString(key string) (string, bool) {
	value, exists := v.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetInt retrieves an int value
func (v *Values) GetInt(key string) (int, bool) {
	value, exists := v.Get(key)
	if !exists {
		return 0, false
	}
	i, ok := value.(int)
	return i, ok
}

// Delete removes a value
func (v *Values) Delete(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, key)
}

// Len returns the number of stored values
func (v *Values) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}
