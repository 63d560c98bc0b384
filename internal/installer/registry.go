package installer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ekisa-team/arniepye/internal/config"
)

// Registry manages installers by artifact kind.
type Registry struct {
	installers map[config.ArtifactKind]Installer
	mu         sync.RWMutex
}

// NewRegistry creates a new installer registry.
func NewRegistry() *Registry {
	return &Registry{
		installers: make(map[config.ArtifactKind]Installer),
	}
}

// Register adds an installer to the registry.
func (r *Registry) Register(i Installer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.installers[i.Kind()]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, i.Kind())
	}

	r.installers[i.Kind()] = i
	return nil
}

// Get retrieves an installer by kind.
func (r *Registry) Get(kind config.ArtifactKind) (Installer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.installers[kind]
	return i, ok
}

// Install runs the installer registered for kind.
func (r *Registry) Install(ctx context.Context, kind config.ArtifactKind, path string, args []string) error {
	i, ok := r.Get(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, kind)
	}

	return i.Install(ctx, path, args)
}
