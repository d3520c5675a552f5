package idgen

import (
	"github.com/google/uuid"
)

// ID prefixes for different models
const (
	PrefixEntry = "entry_"
)

// NewEntry generates a new config entry ID with entry_ prefix
func NewEntry() string {
	return PrefixEntry + uuid.New().String()
}

// New generates a generic UUID without prefix (for internal use only)
func New() string {
	return uuid.New().String()
}
