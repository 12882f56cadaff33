package backend

import (
	"sort"
	"sync"
)

// Factory resolves a backend. It reports false when the backend is compiled
// in but unusable on this system.
type Factory func() (InstanceFactory, bool)

type entry struct {
	name     string
	priority int
	factory  Factory
}

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]entry)
)

// Register registers a backend factory with the given name and priority.
// This is typically called from init() functions in this package.
// If a backend with the same name is already registered, it will be replaced.
//
// Backends with priority <= 0 are explicit-only: Default never selects them.
func Register(name string, priority int, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = entry{name: name, priority: priority, factory: factory}
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns registered backend names sorted by priority (highest first).
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	sorted := sortedEntries()
	names := make([]string, 0, len(sorted))
	for _, e := range sorted {
		names = append(names, e.name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get resolves a backend by name.
func Get(name string) (InstanceFactory, bool) {
	registryMu.RLock()
	e, ok := backends[name]
	registryMu.RUnlock()

	if !ok || e.factory == nil {
		return nil, false
	}
	return e.factory()
}

// Default returns the highest-priority backend that resolves.
// Explicit-only backends (priority <= 0) are skipped.
func Default() (string, InstanceFactory, bool) {
	registryMu.RLock()
	sorted := sortedEntries()
	registryMu.RUnlock()

	for _, e := range sorted {
		if e.priority <= 0 || e.factory == nil {
			continue
		}
		if f, ok := e.factory(); ok && f != nil {
			return e.name, f, true
		}
	}
	return "", nil, false
}

// sortedEntries must be called with registryMu held.
func sortedEntries() []entry {
	out := make([]entry, 0, len(backends))
	for _, e := range backends {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].name < out[j].name
	})
	return out
}
