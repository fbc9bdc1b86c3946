package callbacks

import (
	"sort"
	"sync"
)

// Registry stores callbacks per phase and method name, in registration order
type Registry struct {
	mu      sync.RWMutex
	entries map[Phase]map[string][]*Callback
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: emptyEntries(),
	}
}

func emptyEntries() map[Phase]map[string][]*Callback {
	entries := make(map[Phase]map[string][]*Callback, len(Phases))
	for _, phase := range Phases {
		entries[phase] = make(map[string][]*Callback)
	}
	return entries
}

// Register appends cb to the callbacks of method for phase
func (r *Registry) Register(phase Phase, method string, cb *Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	methods, ok := r.entries[phase]
	if !ok {
		methods = make(map[string][]*Callback)
		r.entries[phase] = methods
	}
	methods[method] = append(methods[method], cb)
}

// Lookup returns a copy of the callbacks of method for phase
func (r *Registry) Lookup(phase Phase, method string) []*Callback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cbs := r.entries[phase][method]
	if len(cbs) == 0 {
		return nil
	}
	return append([]*Callback(nil), cbs...)
}

// Has reports whether at least one callback is registered for phase and method
func (r *Registry) Has(phase Phase, method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries[phase][method]) > 0
}

// Methods lists the methods that have callbacks for phase, sorted
func (r *Registry) Methods(phase Phase) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.entries[phase]))
	for method, cbs := range r.entries[phase] {
		if len(cbs) > 0 {
			methods = append(methods, method)
		}
	}
	sort.Strings(methods)
	return methods
}

// Reset drops every registered callback
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = emptyEntries()
}

// Snapshot returns a read-only view of the registry
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Snapshot{
		Before: snapshotPhase(r.entries[Before]),
		After:  snapshotPhase(r.entries[After]),
	}
}

func snapshotPhase(methods map[string][]*Callback) map[string][]Info {
	out := make(map[string][]Info, len(methods))
	for method, cbs := range methods {
		if len(cbs) == 0 {
			continue
		}
		infos := make([]Info, 0, len(cbs))
		for _, cb := range cbs {
			infos = append(infos, Info{ID: cb.ID, Source: cb.Source()})
		}
		out[method] = infos
	}
	return out
}
