package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// EntryManager sets up and unloads ecobee entries and forwards them to the
// entity platforms
type EntryManager struct {
	store        EntryStore
	newClient    ClientFactory
	platforms    []Platform
	coordinators *CoordinatorRegistry
	importFlow   *ImportFlow
	logger       *slog.Logger

	mu       sync.Mutex
	forwards map[string]*sync.WaitGroup // entry ID -> pending platform setups
	tasks    sync.WaitGroup            // background tasks (forwards, imports)
}

// NewEntryManager creates a new entry manager
func NewEntryManager(store EntryStore, newClient ClientFactory, platforms []Platform, logger *slog.Logger) *EntryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryManager{
		store:        store,
		newClient:    newClient,
		platforms:    platforms,
		coordinators: NewCoordinatorRegistry(),
		logger:       logger.With("component", "entry_manager"),
		forwards:     make(map[string]*sync.WaitGroup),
	}
}

// SetImportFlow sets the flow used to migrate legacy configuration
func (m *EntryManager) SetImportFlow(flow *ImportFlow) {
	m.importFlow = flow
}

// Coordinator returns the coordinator of a loaded entry
func (m *EntryManager) Coordinator(entryID string) (*Coordinator, bool) {
	return m.coordinators.Get(entryID)
}

// Coordinators returns the coordinator registry
func (m *EntryManager) Coordinators() *CoordinatorRegistry {
	return m.coordinators
}

// SetupEntry sets up ecobee for an entry. It refreshes the tokens, fetches the
// thermostats once and forwards the entry to every platform in the background.
func (m *EntryManager) SetupEntry(ctx context.Context, entry *Entry) error {
	creds, err := entry.Credentials()
	if err != nil {
		return err
	}

	if _, loaded := m.coordinators.Get(entry.ID); loaded {
		return fmt.Errorf("%w: %s", ErrEntryAlreadyLoaded, entry.ID)
	}

	coordinator := NewCoordinator(entry, m.newClient(creds), m.store, m.logger)

	if !coordinator.Refresh(ctx) {
		return ErrTokenRefreshFailed
	}

	if _, err := coordinator.Update(ctx); err != nil {
		return fmt.Errorf("failed to fetch ecobee data: %w", err)
	}

	if len(coordinator.Thermostats()) == 0 {
		m.logger.Error("No ecobee devices found to set up", "entry_id", entry.ID)
		return ErrNoThermostats
	}

	if err := m.coordinators.Register(coordinator); err != nil {
		return err
	}

	m.forwardSetup(ctx, entry, coordinator)
	return nil
}

// forwardSetup starts one setup task per platform without waiting for them
func (m *EntryManager) forwardSetup(ctx context.Context, entry *Entry, coordinator *Coordinator) {
	pending := &sync.WaitGroup{}

	m.mu.Lock()
	m.forwards[entry.ID] = pending
	m.mu.Unlock()

	// Forwards outlive the caller's request
	ctx = context.WithoutCancel(ctx)

	for _, platform := range m.platforms {
		pending.Add(1)
		m.tasks.Add(1)
		go func(p Platform) {
			defer m.tasks.Done()
			defer pending.Done()

			if err := p.SetupEntry(ctx, entry, coordinator); err != nil {
				m.logger.Error("Failed to set up platform",
					"entry_id", entry.ID,
					"platform", p.Name(),
					"error", err)
			}
		}(platform)
	}
}

// UnloadEntry unloads the entry from every platform. It succeeds only if
// every platform unloaded; all platforms are attempted regardless.
func (m *EntryManager) UnloadEntry(ctx context.Context, entry *Entry) error {
	if _, err := m.coordinators.Remove(entry.ID); err != nil {
		return err
	}

	m.mu.Lock()
	pending := m.forwards[entry.ID]
	delete(m.forwards, entry.ID)
	m.mu.Unlock()

	if pending != nil {
		pending.Wait()
	}

	results := make([]error, len(m.platforms))
	var wg sync.WaitGroup
	for i, platform := range m.platforms {
		wg.Add(1)
		go func(i int, p Platform) {
			defer wg.Done()
			if err := p.UnloadEntry(ctx, entry); err != nil {
				results[i] = fmt.Errorf("platform %s: %w", p.Name(), err)
			}
		}(i, platform)
	}
	wg.Wait()

	return errors.Join(results...)
}

// ImportLegacyConfig schedules the import flow when a legacy ecobee block is
// configured and no entry exists yet. Reports whether the import was scheduled.
func (m *EntryManager) ImportLegacyConfig(ctx context.Context, legacy *LegacyConfig) bool {
	if legacy == nil {
		return false
	}

	entries, err := m.store.ListEntries(ctx, Domain)
	if err != nil {
		m.logger.Error("Failed to list entries", "error", err)
		return false
	}
	if len(entries) > 0 {
		return false
	}

	if m.importFlow == nil {
		m.logger.Warn("Legacy ecobee configuration found but no import flow is configured")
		return false
	}

	ctx = context.WithoutCancel(ctx)
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		entry, err := m.importFlow.Run(ctx, legacy)
		if err != nil {
			m.logger.Warn("Legacy ecobee import did not complete", "error", err)
			return
		}
		m.logger.Info("Imported legacy ecobee configuration", "entry_id", entry.ID)
	}()

	return true
}

// Wait blocks until all background platform forwards and imports finished
func (m *EntryManager) Wait() {
	m.tasks.Wait()
}
