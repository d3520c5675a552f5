package storage

import (
	"ecobeehub/internal/core"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Entries
	core.EntryStore

	// Lifecycle
	Close() error
}
