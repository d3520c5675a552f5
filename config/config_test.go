package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Path: "/path/to/db"},
		Security: SecurityConfig{APIKey: "test-key"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid config with key hash only",
			modify:  func(c *Config) { c.Security = SecurityConfig{APIKeyHash: "$2a$10$abc"} },
			wantErr: false,
		},
		{
			name:    "invalid port - zero",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too large",
			modify:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			modify:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "missing API key",
			modify:  func(c *Config) { c.Security = SecurityConfig{} },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "mqtt enabled without broker",
			modify:  func(c *Config) { c.MQTT.Enabled = true },
			wantErr: true,
		},
		{
			name: "mqtt invalid qos",
			modify: func(c *Config) {
				c.MQTT = MQTTConfig{Enabled: true, Broker: "tcp://localhost:1883", QoS: 3}
			},
			wantErr: true,
		},
		{
			name:    "influxdb enabled without bucket",
			modify:  func(c *Config) { c.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://localhost:8086", Org: "home"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modify(&config)
			err := config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	config := validConfig()
	config.MQTT = MQTTConfig{Enabled: true, Broker: "tcp://localhost:1883"}
	require.NoError(t, config.Validate())

	assert.Equal(t, "https://api.ecobee.com", config.Ecobee.BaseURL)
	assert.Equal(t, 60*time.Second, config.Ecobee.PollInterval.Std())
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
	assert.Equal(t, "ecobeehub", config.MQTT.ClientID)
	assert.Equal(t, "ecobeehub", config.MQTT.TopicRoot)
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"server": {
			"host": "0.0.0.0",
			"port": 8080
		},
		"database": {
			"path": "/path/to/db"
		},
		"security": {
			"api_key": "test-key"
		},
		"ecobee": {
			"legacy_config_path": "/config/configuration.yaml",
			"conf_file": "/config/ecobee.conf",
			"poll_interval": "90s"
		},
		"logging": {
			"level": "debug",
			"format": "text"
		},
		"mqtt": {
			"enabled": true,
			"broker": "tcp://mosquitto:1883",
			"qos": 1
		}
	}`

	err := os.WriteFile(configPath, []byte(configJSON), 0644)
	require.NoError(t, err)

	// Test loading valid config
	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "/path/to/db", config.Database.Path)
	assert.Equal(t, "test-key", config.Security.APIKey)
	assert.Equal(t, "/config/configuration.yaml", config.Ecobee.LegacyConfigPath)
	assert.Equal(t, "/config/ecobee.conf", config.Ecobee.ConfFile)
	assert.Equal(t, 90*time.Second, config.Ecobee.PollInterval.Std())
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, "tcp://mosquitto:1883", config.MQTT.Broker)
	assert.Equal(t, byte(1), config.MQTT.QoS)

	// Test loading non-existent file
	_, err = Load("/nonexistent/config.json")
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	// Test loading invalid JSON
	invalidPath := filepath.Join(tmpDir, "invalid.json")
	err = os.WriteFile(invalidPath, []byte("invalid json"), 0644)
	require.NoError(t, err)

	_, err = Load(invalidPath)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"2m"`)))
	assert.Equal(t, 2*time.Minute, d.Std())

	require.NoError(t, d.UnmarshalJSON([]byte(`45`)))
	assert.Equal(t, 45*time.Second, d.Std())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ECOBEEHUB_HOST", "127.0.0.1")
	t.Setenv("ECOBEEHUB_PORT", "9090")
	t.Setenv("ECOBEEHUB_DB_PATH", "/custom/db/path")
	t.Setenv("ECOBEEHUB_API_KEY", "env-api-key")
	t.Setenv("ECOBEEHUB_POLL_INTERVAL", "2m")
	t.Setenv("ECOBEEHUB_LEGACY_CONFIG", "/config/configuration.yaml")
	t.Setenv("ECOBEEHUB_MQTT_ENABLED", "true")
	t.Setenv("ECOBEEHUB_MQTT_BROKER", "tcp://broker:1883")

	config, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "/custom/db/path", config.Database.Path)
	assert.Equal(t, "env-api-key", config.Security.APIKey)
	assert.Equal(t, 2*time.Minute, config.Ecobee.PollInterval.Std())
	assert.Equal(t, "/config/configuration.yaml", config.Ecobee.LegacyConfigPath)
	assert.Equal(t, "https://api.ecobee.com", config.Ecobee.BaseURL)
	assert.True(t, config.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", config.MQTT.Broker)
	assert.False(t, config.InfluxDB.Enabled)
}

func TestLoadFromEnv_MissingAPIKey(t *testing.T) {
	t.Setenv("ECOBEEHUB_API_KEY", "")
	t.Setenv("ECOBEEHUB_API_KEY_HASH", "")

	_, err := LoadFromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
