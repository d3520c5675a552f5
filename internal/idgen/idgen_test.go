package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	id := NewEntry()
	require.True(t, strings.HasPrefix(id, PrefixEntry))

	_, err := uuid.Parse(strings.TrimPrefix(id, PrefixEntry))
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewEntry())
}
