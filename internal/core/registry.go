package core

import (
	"fmt"
	"sync"
)

// CoordinatorRegistry holds the active coordinator of each loaded entry
type CoordinatorRegistry struct {
	mu           sync.RWMutex
	coordinators map[string]*Coordinator
}

// NewCoordinatorRegistry creates an empty registry
func NewCoordinatorRegistry() *CoordinatorRegistry {
	return &CoordinatorRegistry{
		coordinators: make(map[string]*Coordinator),
	}
}

// Register stores the coordinator under its entry ID
func (r *CoordinatorRegistry) Register(coordinator *Coordinator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := coordinator.EntryID()
	if _, exists := r.coordinators[id]; exists {
		return fmt.Errorf("%w: %s", ErrEntryAlreadyLoaded, id)
	}

	r.coordinators[id] = coordinator
	return nil
}

// Get returns the coordinator of an entry
func (r *CoordinatorRegistry) Get(entryID string) (*Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coordinator, ok := r.coordinators[entryID]
	return coordinator, ok
}

// Remove deletes and returns the coordinator of an entry
func (r *CoordinatorRegistry) Remove(entryID string) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coordinator, exists := r.coordinators[entryID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotLoaded, entryID)
	}

	delete(r.coordinators, entryID)
	return coordinator, nil
}

// List returns the IDs of all loaded entries
func (r *CoordinatorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.coordinators))
	for id := range r.coordinators {
		ids = append(ids, id)
	}
	return ids
}
