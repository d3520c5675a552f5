package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFlow_Create(t *testing.T) {
	f := newManagerFixture()
	f.prepare = func(c *mockClient) {
		c.refreshed = &Credentials{APIKey: "K1", RefreshToken: "R2"}
	}
	flow := NewConfigFlow(f.store, f.manager.newClient, f.manager, nil)

	entry, err := flow.Create(context.Background(), Credentials{APIKey: "K1", RefreshToken: "R1"})
	require.NoError(t, err)
	f.manager.Wait()

	assert.Equal(t, SourceUser, entry.Source)
	assert.Equal(t, "R2", f.store.storedData(entry.ID)[ConfRefreshToken], "refreshed pair is persisted")

	_, ok := f.manager.Coordinator(entry.ID)
	assert.True(t, ok)
}

func TestConfigFlow_Rejections(t *testing.T) {
	t.Run("missing refresh token", func(t *testing.T) {
		f := newManagerFixture()
		flow := NewConfigFlow(f.store, f.manager.newClient, f.manager, nil)

		_, err := flow.Create(context.Background(), Credentials{APIKey: "K1"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("already configured", func(t *testing.T) {
		f := newManagerFixture(testEntry("entry-1"))
		flow := NewConfigFlow(f.store, f.manager.newClient, f.manager, nil)

		_, err := flow.Create(context.Background(), Credentials{APIKey: "K1", RefreshToken: "R1"})
		assert.ErrorIs(t, err, ErrAlreadyConfigured)
		assert.Nil(t, f.lastClient(), "no client is built for a rejected flow")
	})

	t.Run("refresh rejected", func(t *testing.T) {
		f := newManagerFixture()
		f.prepare = func(c *mockClient) {
			c.refreshErr = errBoom
		}
		flow := NewConfigFlow(f.store, f.manager.newClient, f.manager, nil)

		_, err := flow.Create(context.Background(), Credentials{APIKey: "K1", RefreshToken: "R1"})
		assert.ErrorIs(t, err, ErrAuthorizationRequired)

		entries, listErr := f.store.ListEntries(context.Background(), Domain)
		require.NoError(t, listErr)
		assert.Empty(t, entries)
	})
}

func TestConfigFlow_SetupFailureKeepsEntry(t *testing.T) {
	f := newManagerFixture()
	f.prepare = func(c *mockClient) {
		c.fetch = []Thermostat{}
	}
	flow := NewConfigFlow(f.store, f.manager.newClient, f.manager, nil)

	entry, err := flow.Create(context.Background(), Credentials{APIKey: "K1", RefreshToken: "R1"})
	assert.ErrorIs(t, err, ErrNoThermostats)
	require.NotNil(t, entry)

	_, getErr := f.store.GetEntry(context.Background(), entry.ID)
	assert.NoError(t, getErr)
}
