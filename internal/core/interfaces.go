package core

import "context"

// EcobeeClient is the vendor API client owned by a coordinator.
// Implementations keep the current credential pair and the last fetched thermostats.
type EcobeeClient interface {
	// RefreshTokens exchanges the refresh token for a new access/refresh token pair
	RefreshTokens(ctx context.Context) error

	// Update fetches thermostat data. Returns an error wrapping ErrExpiredToken
	// when the access token is no longer accepted.
	Update(ctx context.Context) error

	// Credentials returns the client's current credential pair
	Credentials() Credentials

	// Thermostats returns the last fetched thermostats, or nil if nothing was fetched yet
	Thermostats() []Thermostat
}

// ClientFactory builds a vendor client for a credential pair
type ClientFactory func(creds Credentials) EcobeeClient

// EntryStore persists integration entries
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id string) (*Entry, error)
	ListEntries(ctx context.Context, domain string) ([]*Entry, error)
	UpdateEntryData(ctx context.Context, id string, data map[string]string) error
	DeleteEntry(ctx context.Context, id string) error
}

// Platform is an entity platform that receives forwarded entries
type Platform interface {
	// Name returns the platform name (e.g., "climate", "sensor")
	Name() string

	// SetupEntry creates the platform's entities for the entry
	SetupEntry(ctx context.Context, entry *Entry, coordinator *Coordinator) error

	// UnloadEntry removes the platform's entities for the entry
	UnloadEntry(ctx context.Context, entry *Entry) error
}

// EntryManagerInterface defines the contract for entry lifecycle management
type EntryManagerInterface interface {
	SetupEntry(ctx context.Context, entry *Entry) error
	UnloadEntry(ctx context.Context, entry *Entry) error
	ImportLegacyConfig(ctx context.Context, legacy *LegacyConfig) bool
	Coordinator(entryID string) (*Coordinator, bool)
}
