package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ecobeehub/internal/idgen"
)

// ConfigFlow creates an entry from credentials supplied by the user.
// Only one ecobee account can be configured per hub.
type ConfigFlow struct {
	store     EntryStore
	newClient ClientFactory
	manager   EntryManagerInterface
	logger    *slog.Logger
}

// NewConfigFlow creates a user config flow. The manager sets up the created entry.
func NewConfigFlow(store EntryStore, newClient ClientFactory, manager EntryManagerInterface, logger *slog.Logger) *ConfigFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigFlow{
		store:     store,
		newClient: newClient,
		manager:   manager,
		logger:    logger.With("component", "config_flow"),
	}
}

// Create validates the credentials by refreshing them, stores the refreshed
// pair as a new entry and sets it up. When setup fails the stored entry is
// returned together with the error so it can be reloaded later.
func (f *ConfigFlow) Create(ctx context.Context, creds Credentials) (*Entry, error) {
	if creds.APIKey == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("%w: api_key and refresh_token are required", ErrMissingCredentials)
	}

	entries, err := f.store.ListEntries(ctx, Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) > 0 {
		return nil, ErrAlreadyConfigured
	}

	client := f.newClient(creds)
	if err := client.RefreshTokens(ctx); err != nil {
		f.logger.Warn("Supplied ecobee tokens were rejected",
			"api_key", maskKey(creds.APIKey),
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationRequired, err)
	}

	entry := newEntry(SourceUser, client.Credentials())
	if err := f.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := f.manager.SetupEntry(ctx, entry); err != nil {
		return entry, fmt.Errorf("entry %s could not be set up: %w", entry.ID, err)
	}

	return entry, nil
}

// newEntry builds an ecobee entry holding the given credentials
func newEntry(source string, creds Credentials) *Entry {
	now := time.Now()
	return &Entry{
		ID:        idgen.NewEntry(),
		Domain:    Domain,
		Title:     Domain,
		Source:    source,
		Data:      creds.Data(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
