package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportFlow_Run(t *testing.T) {
	f := newManagerFixture()
	f.prepare = func(c *mockClient) {
		c.refreshed = &Credentials{APIKey: "K2", RefreshToken: "R2"}
	}
	loader := func() (Credentials, error) {
		return Credentials{APIKey: "K1", RefreshToken: "R1"}, nil
	}
	flow := NewImportFlow(f.store, f.manager.newClient, loader, f.manager, nil)

	entry, err := flow.Run(context.Background(), &LegacyConfig{APIKey: "K1"})
	require.NoError(t, err)
	f.manager.Wait()

	assert.True(t, strings.HasPrefix(entry.ID, "entry_"))
	assert.Equal(t, SourceImport, entry.Source)
	assert.Equal(t, Domain, entry.Title)
	assert.Equal(t, "K2", f.store.storedData(entry.ID)[ConfAPIKey])
	assert.Equal(t, "R2", f.store.storedData(entry.ID)[ConfRefreshToken])

	_, ok := f.manager.Coordinator(entry.ID)
	assert.True(t, ok)
}

func TestImportFlow_AlreadyConfigured(t *testing.T) {
	f := newManagerFixture(testEntry("entry-1"))
	flow := NewImportFlow(f.store, f.manager.newClient, nil, f.manager, nil)

	_, err := flow.Run(context.Background(), &LegacyConfig{})
	assert.ErrorIs(t, err, ErrAlreadyConfigured)
}

func TestImportFlow_AuthorizationRequired(t *testing.T) {
	tests := []struct {
		name    string
		loader  LegacyCredentialsLoader
		prepare func(*mockClient)
	}{
		{
			name: "no legacy credentials file",
			loader: func() (Credentials, error) {
				return Credentials{}, errors.New("open ecobee.conf: no such file or directory")
			},
		},
		{
			name: "api key only",
			loader: func() (Credentials, error) {
				return Credentials{APIKey: "K1"}, nil
			},
		},
		{
			name: "refresh rejected",
			loader: func() (Credentials, error) {
				return Credentials{APIKey: "K1", RefreshToken: "R1"}, nil
			},
			prepare: func(c *mockClient) {
				c.refreshErr = errBoom
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture()
			f.prepare = tt.prepare
			flow := NewImportFlow(f.store, f.manager.newClient, tt.loader, f.manager, nil)

			_, err := flow.Run(context.Background(), &LegacyConfig{APIKey: "abcdefgh"})
			assert.ErrorIs(t, err, ErrAuthorizationRequired)

			entries, listErr := f.store.ListEntries(context.Background(), Domain)
			require.NoError(t, listErr)
			assert.Empty(t, entries)
		})
	}
}

func TestImportFlow_SetupFailureKeepsEntry(t *testing.T) {
	f := newManagerFixture()
	f.prepare = func(c *mockClient) {
		c.fetch = nil
	}
	loader := func() (Credentials, error) {
		return Credentials{APIKey: "K1", RefreshToken: "R1"}, nil
	}
	flow := NewImportFlow(f.store, f.manager.newClient, loader, f.manager, nil)

	entry, err := flow.Run(context.Background(), &LegacyConfig{})
	assert.ErrorIs(t, err, ErrNoThermostats)
	require.NotNil(t, entry)

	stored, getErr := f.store.GetEntry(context.Background(), entry.ID)
	require.NoError(t, getErr)
	assert.Equal(t, SourceImport, stored.Source)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("abc"))
	assert.Equal(t, "abcd", maskKey("abcdefgh"))
}
