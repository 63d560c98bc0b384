package artifact

import (
	"fmt"
	"sync"
)

// Registry stores artifact descriptors in insertion order.
type Registry struct {
	artifacts map[string]*Descriptor
	order     []string
	mu        sync.RWMutex
}

// NewRegistry creates a new artifact registry.
func NewRegistry() *Registry {
	return &Registry{
		artifacts: make(map[string]*Descriptor),
	}
}

// Add adds a descriptor to the registry. Names must be unique.
func (r *Registry) Add(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.artifacts[d.Name]; exists {
		return fmt.Errorf("artifact %q: already registered", d.Name)
	}

	r.artifacts[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the descriptor with the given name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.artifacts[name]
	return d, ok
}

// List returns all descriptors in insertion order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.artifacts[name])
	}

	return descriptors
}

// SetStatus updates the status of the named descriptor.
func (r *Registry) SetStatus(name string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.artifacts[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	d.SetStatus(status)
	return nil
}

// SetError marks the named descriptor as failed.
func (r *Registry) SetError(name string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.artifacts[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	d.SetError(err)
	return nil
}

// Count returns the number of descriptors with the given status.
func (r *Registry) Count(status Status) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, d := range r.artifacts {
		if d.Status == status {
			n++
		}
	}

	return n
}
