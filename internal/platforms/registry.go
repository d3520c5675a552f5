package platforms

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

var (
	ErrPlatformNotFound      = errors.New("platform not found")
	ErrPlatformAlreadyExists = errors.New("platform already registered")
)

// Registry manages all registered platforms in registration order
type Registry struct {
	mu        sync.RWMutex
	platforms map[string]*Platform
	order     []string
}

// NewRegistry creates a new platform registry
func NewRegistry() *Registry {
	return &Registry{
		platforms: make(map[string]*Platform),
	}
}

// NewDefaultRegistry registers the ecobee platforms in setup order
func NewDefaultRegistry(registry *entities.Registry, logger *slog.Logger) *Registry {
	constructors := map[string]func(*entities.Registry, *slog.Logger) *Platform{
		"binary_sensor": NewBinarySensor,
		"climate":       NewClimate,
		"sensor":        NewSensor,
		"weather":       NewWeather,
	}

	r := NewRegistry()
	for _, name := range core.Platforms {
		// core.Platforms and constructors list the same names
		_ = r.Register(constructors[name](registry, logger))
	}
	return r
}

// Register adds a platform to the registry
func (r *Registry) Register(platform *Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := platform.Name()
	if _, exists := r.platforms[name]; exists {
		return fmt.Errorf("%w: %s", ErrPlatformAlreadyExists, name)
	}

	r.platforms[name] = platform
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a platform by name
func (r *Registry) Get(name string) (*Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platform, exists := r.platforms[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, name)
	}

	return platform, nil
}

// List returns all registered platforms in registration order
func (r *Registry) List() []*Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Platform, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.platforms[name])
	}
	return list
}

// CorePlatforms returns the platforms as core.Platform for the entry manager
func (r *Registry) CorePlatforms() []core.Platform {
	list := r.List()
	result := make([]core.Platform, 0, len(list))
	for _, p := range list {
		result = append(result, p)
	}
	return result
}
