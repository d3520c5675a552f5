package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]string
		want    Credentials
		wantErr bool
	}{
		{
			name: "both present",
			data: map[string]string{ConfAPIKey: "K1", ConfRefreshToken: "R1"},
			want: Credentials{APIKey: "K1", RefreshToken: "R1"},
		},
		{
			name:    "missing refresh token",
			data:    map[string]string{ConfAPIKey: "K1"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			data:    map[string]string{ConfRefreshToken: "R1"},
			wantErr: true,
		},
		{
			name:    "nil data",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{ID: "entry-1", Data: tt.data}
			creds, err := entry.Credentials()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, creds)
			assert.Equal(t, tt.data, creds.Data())
		})
	}
}

func TestEntry_Validate(t *testing.T) {
	valid := testEntry("entry-1")
	assert.NoError(t, valid.Validate())

	noID := testEntry("")
	assert.Error(t, noID.Validate())

	badSource := testEntry("entry-1")
	badSource.Source = "discovery"
	assert.Error(t, badSource.Validate())
}

func TestRemoteSensor_CapabilityOf(t *testing.T) {
	sensor := RemoteSensor{
		Capability: []SensorCapability{
			{ID: "1", Type: "temperature", Value: "712"},
			{ID: "2", Type: "occupancy", Value: "true"},
		},
	}

	c, ok := sensor.CapabilityOf("occupancy")
	require.True(t, ok)
	assert.Equal(t, "true", c.Value)

	_, ok = sensor.CapabilityOf("humidity")
	assert.False(t, ok)
}

func TestRuntime_Temperature(t *testing.T) {
	assert.InDelta(t, 71.2, Runtime{ActualTemperature: 712}.Temperature(), 0.001)
}

func TestUpdateResult_String(t *testing.T) {
	assert.Equal(t, "skipped", UpdateSkipped.String())
	assert.Equal(t, "failed", UpdateFailed.String())
	assert.Equal(t, "fetched", UpdateFetched.String())
	assert.Equal(t, "tokens_refreshed", UpdateTokensRefreshed.String())
	assert.Equal(t, "refresh_failed", UpdateRefreshFailed.String())
}
