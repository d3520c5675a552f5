package entities

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entity is a single state exposed by a platform (e.g., a climate device or a sensor)
type Entity struct {
	ID         string                 // Entity identifier (e.g., "climate.living_room")
	Platform   string                 // Platform that owns the entity (e.g., "climate")
	EntryID    string                 // Config entry the entity belongs to
	Name       string                 // User-friendly name (e.g., "Living Room")
	State      string                 // Current state (e.g., "heat", "71.2", "on")
	Attributes map[string]interface{} // Platform-specific attributes
	Available  bool
	UpdatedAt  time.Time
}

// Listener is notified whenever an entity state is set
type Listener interface {
	OnStateChanged(entity Entity)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(entity Entity)

// OnStateChanged calls f(entity)
func (f ListenerFunc) OnStateChanged(entity Entity) {
	f(entity)
}

// Registry holds the current state of every entity
type Registry struct {
	entities  map[string]*Entity // entity ID -> entity
	listeners []Listener
	mu        sync.RWMutex
}

// NewRegistry creates a new entity registry
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
	}
}

// AddListener registers a listener for state changes
func (r *Registry) AddListener(listener Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Set creates or replaces an entity and notifies listeners
func (r *Registry) Set(entity Entity) error {
	if entity.ID == "" {
		return fmt.Errorf("entity ID cannot be empty")
	}
	if entity.Platform == "" {
		return fmt.Errorf("entity platform cannot be empty")
	}
	if !strings.HasPrefix(entity.ID, entity.Platform+".") {
		return fmt.Errorf("entity ID '%s' must start with platform '%s.'", entity.ID, entity.Platform)
	}
	if entity.EntryID == "" {
		return fmt.Errorf("entity entry ID cannot be empty")
	}

	if entity.UpdatedAt.IsZero() {
		entity.UpdatedAt = time.Now()
	}

	r.mu.Lock()
	stored := entity
	r.entities[entity.ID] = &stored
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnStateChanged(entity)
	}
	return nil
}

// SetUnavailable marks every entity of a platform and entry as unavailable
func (r *Registry) SetUnavailable(platform, entryID string) {
	r.mu.Lock()
	changed := make([]Entity, 0)
	for _, e := range r.entities {
		if e.Platform == platform && e.EntryID == entryID && e.Available {
			e.Available = false
			e.UpdatedAt = time.Now()
			changed = append(changed, *e)
		}
	}
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, e := range changed {
		for _, l := range listeners {
			l.OnStateChanged(e)
		}
	}
}

// Get retrieves an entity by ID
func (r *Registry) Get(id string) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.entities[id]
	if !exists {
		return Entity{}, fmt.Errorf("entity %s not found", id)
	}

	return *entity, nil
}

// List returns all entities sorted by ID
func (r *Registry) List() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities := make([]Entity, 0, len(r.entities))
	for _, entity := range r.entities {
		entities = append(entities, *entity)
	}

	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities
}

// ListByEntry returns the entities of a config entry sorted by ID
func (r *Registry) ListByEntry(entryID string) []Entity {
	entities := make([]Entity, 0)
	for _, entity := range r.List() {
		if entity.EntryID == entryID {
			entities = append(entities, entity)
		}
	}
	return entities
}

// RemoveByEntry deletes the entities of a platform and entry and returns how many were removed
func (r *Registry) RemoveByEntry(platform, entryID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entity := range r.entities {
		if entity.Platform == platform && entity.EntryID == entryID {
			delete(r.entities, id)
			removed++
		}
	}
	return removed
}

// ObjectID turns a name into an entity object ID (e.g., "Living Room" -> "living_room")
func ObjectID(name string) string {
	var sb strings.Builder
	underscore := false
	for _, ch := range strings.ToLower(strings.TrimSpace(name)) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			sb.WriteRune(ch)
			underscore = false
			continue
		}
		if !underscore && sb.Len() > 0 {
			sb.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
