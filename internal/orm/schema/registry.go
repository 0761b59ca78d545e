package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the resources produced by a metadata collector until they are bound
type Registry struct {
	resources map[string]*Resource
	mu        sync.RWMutex
}

// NewRegistry creates a new resource registry
func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]*Resource),
	}
}

// Register registers a collected resource
func (r *Registry) Register(resource *Resource) error {
	if resource == nil || resource.Name == "" {
		return fmt.Errorf("resource must have a name")
	}
	if err := resource.checkNames(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resources[resource.Name]; exists {
		return fmt.Errorf("resource %s is already registered", resource.Name)
	}
	r.resources[resource.Name] = resource
	return nil
}

// Get retrieves a resource by name
func (r *Registry) Get(name string) (*Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resource, exists := r.resources[name]
	return resource, exists
}

// All returns a copy of all registered resources
func (r *Registry) All() map[string]*Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Resource, len(r.resources))
	for k, v := range r.resources {
		result[k] = v
	}
	return result
}

// List returns the sorted names of all registered resources
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered resources
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.resources)
}

// Clear removes all registered resources (useful for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resources = make(map[string]*Resource)
}
