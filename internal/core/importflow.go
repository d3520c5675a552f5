package core

import (
	"context"
	"fmt"
	"log/slog"
)

// LegacyCredentialsLoader reads the credentials saved by the legacy ecobee
// component (ecobee.conf)
type LegacyCredentialsLoader func() (Credentials, error)

// ImportFlow migrates legacy file-based configuration into a durable entry
type ImportFlow struct {
	store     EntryStore
	newClient ClientFactory
	loadCreds LegacyCredentialsLoader
	manager   EntryManagerInterface
	logger    *slog.Logger
}

// NewImportFlow creates an import flow. The manager sets up the created entry.
func NewImportFlow(store EntryStore, newClient ClientFactory, loadCreds LegacyCredentialsLoader, manager EntryManagerInterface, logger *slog.Logger) *ImportFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportFlow{
		store:     store,
		newClient: newClient,
		loadCreds: loadCreds,
		manager:   manager,
		logger:    logger.With("component", "import_flow"),
	}
}

// Run imports the legacy credentials, creates an entry and sets it up.
// Without usable legacy credentials the user has to authorize through the
// config flow and ErrAuthorizationRequired is returned.
func (f *ImportFlow) Run(ctx context.Context, legacy *LegacyConfig) (*Entry, error) {
	entries, err := f.store.ListEntries(ctx, Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) > 0 {
		return nil, ErrAlreadyConfigured
	}

	creds, err := f.loadCreds()
	if err != nil {
		f.logger.Info("No usable legacy ecobee credentials", "error", err)
		return nil, f.authorizationRequired(legacy)
	}
	if creds.APIKey == "" || creds.RefreshToken == "" {
		return nil, f.authorizationRequired(legacy)
	}

	client := f.newClient(creds)
	if err := client.RefreshTokens(ctx); err != nil {
		f.logger.Warn("Legacy ecobee tokens could not be refreshed", "error", err)
		return nil, f.authorizationRequired(legacy)
	}

	entry := newEntry(SourceImport, client.Credentials())
	if err := f.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := f.manager.SetupEntry(ctx, entry); err != nil {
		return entry, fmt.Errorf("imported entry %s could not be set up: %w", entry.ID, err)
	}

	return entry, nil
}

func (f *ImportFlow) authorizationRequired(legacy *LegacyConfig) error {
	if legacy != nil && legacy.APIKey != "" {
		return fmt.Errorf("%w (api key %s...)", ErrAuthorizationRequired, maskKey(legacy.APIKey))
	}
	return ErrAuthorizationRequired
}

// maskKey keeps only the first characters of a key for log output
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4]
}
