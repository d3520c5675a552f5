package platforms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

var ErrEntryNotSetUp = errors.New("entry is not set up on this platform")

// BuildFunc turns the thermostats of an entry into platform entities
type BuildFunc func(entryID string, thermostats []core.Thermostat) []entities.Entity

// Platform builds entities of one kind from the coordinators forwarded to it
// and refreshes them on every poll
type Platform struct {
	name     string
	build    BuildFunc
	registry *entities.Registry
	logger   *slog.Logger

	mu           sync.RWMutex
	coordinators map[string]*core.Coordinator // entry ID -> coordinator
}

// New creates a platform with the given entity builder
func New(name string, build BuildFunc, registry *entities.Registry, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		name:         name,
		build:        build,
		registry:     registry,
		logger:       logger.With("component", "platform", "platform", name),
		coordinators: make(map[string]*core.Coordinator),
	}
}

// Name returns the platform name
func (p *Platform) Name() string {
	return p.name
}

// SetupEntry creates the entities of an entry from the coordinator's thermostats
func (p *Platform) SetupEntry(ctx context.Context, entry *core.Entry, coordinator *core.Coordinator) error {
	p.mu.Lock()
	p.coordinators[entry.ID] = coordinator
	p.mu.Unlock()

	count, err := p.refresh(entry.ID, coordinator)
	if err != nil {
		return err
	}

	p.logger.Info("Platform set up",
		"entry_id", entry.ID,
		"entities", count)
	return nil
}

// UnloadEntry removes the entities of an entry
func (p *Platform) UnloadEntry(ctx context.Context, entry *core.Entry) error {
	p.mu.Lock()
	_, exists := p.coordinators[entry.ID]
	delete(p.coordinators, entry.ID)
	p.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrEntryNotSetUp, entry.ID)
	}

	removed := p.registry.RemoveByEntry(p.name, entry.ID)
	p.logger.Info("Platform unloaded",
		"entry_id", entry.ID,
		"entities", removed)
	return nil
}

// Poll asks every coordinator for fresh data and rebuilds the entities.
// Entries whose last fetch failed are marked unavailable until a later poll
// succeeds. Coordinators are shared between platforms, so only the poll that
// ran the failed fetch reports its error.
func (p *Platform) Poll(ctx context.Context) error {
	p.mu.RLock()
	coordinators := make(map[string]*core.Coordinator, len(p.coordinators))
	for id, c := range p.coordinators {
		coordinators[id] = c
	}
	p.mu.RUnlock()

	var errs []error
	for entryID, coordinator := range coordinators {
		result, err := coordinator.Update(ctx)
		if err != nil {
			p.markUnavailable(entryID, coordinator)
			errs = append(errs, fmt.Errorf("entry %s: %w", entryID, err))
			continue
		}

		p.logger.Debug("Polled coordinator",
			"entry_id", entryID,
			"result", result.String())

		if coordinator.LastUpdateError() != nil {
			p.markUnavailable(entryID, coordinator)
			continue
		}

		if _, err := p.refresh(entryID, coordinator); err != nil {
			errs = append(errs, fmt.Errorf("entry %s: %w", entryID, err))
		}
	}

	return errors.Join(errs...)
}

// Entries returns the IDs of the entries set up on this platform
func (p *Platform) Entries() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := make([]string, 0, len(p.coordinators))
	for id := range p.coordinators {
		ids = append(ids, id)
	}
	return ids
}

// refresh rebuilds the entities of an entry from the coordinator's cached
// thermostats. Nothing is written once the entry has been unloaded.
func (p *Platform) refresh(entryID string, coordinator *core.Coordinator) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.coordinators[entryID] != coordinator {
		return 0, nil
	}

	built := p.build(entryID, coordinator.Thermostats())
	for _, entity := range built {
		if err := p.registry.Set(entity); err != nil {
			return 0, fmt.Errorf("failed to set entity %s: %w", entity.ID, err)
		}
	}
	return len(built), nil
}

func (p *Platform) markUnavailable(entryID string, coordinator *core.Coordinator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.coordinators[entryID] == coordinator {
		p.registry.SetUnavailable(p.name, entryID)
	}
}
