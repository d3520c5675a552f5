package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

const (
	envPrefix           = "ECOBEEHUB_"
	defaultEcobeeURL    = "https://api.ecobee.com"
	defaultPollInterval = 60 * time.Second
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Security SecurityConfig `json:"security"`
	Ecobee   EcobeeConfig   `json:"ecobee"`
	Logging  LoggingConfig  `json:"logging"`
	MQTT     MQTTConfig     `json:"mqtt"`
	InfluxDB InfluxDBConfig `json:"influxdb"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SecurityConfig contains security settings.
// APIKeyHash is a bcrypt hash and takes precedence over APIKey.
type SecurityConfig struct {
	APIKey     string `json:"api_key"`
	APIKeyHash string `json:"api_key_hash"`
}

// EcobeeConfig contains ecobee cloud settings
type EcobeeConfig struct {
	BaseURL          string   `json:"base_url"`
	LegacyConfigPath string   `json:"legacy_config_path"` // configuration.yaml with an optional ecobee block
	ConfFile         string   `json:"conf_file"`          // ecobee.conf read by the import flow
	PollInterval     Duration `json:"poll_interval"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "json" or "text"
}

// MQTTConfig contains the state publisher broker settings
type MQTTConfig struct {
	Enabled   bool   `json:"enabled"`
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	TopicRoot string `json:"topic_root"`
	QoS       byte   `json:"qos"`
}

// InfluxDBConfig contains the state recorder settings
type InfluxDBConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// Duration is a time.Duration that unmarshals from a string like "90s"
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the duration as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port", ErrInvalidConfig)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}

	if c.Security.APIKey == "" && c.Security.APIKeyHash == "" {
		return fmt.Errorf("%w: API key or API key hash is required", ErrInvalidConfig)
	}

	if c.Ecobee.BaseURL == "" {
		c.Ecobee.BaseURL = defaultEcobeeURL
	}

	if c.Ecobee.PollInterval <= 0 {
		c.Ecobee.PollInterval = Duration(defaultPollInterval)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("%w: logging format must be json or text", ErrInvalidConfig)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("%w: mqtt broker is required", ErrInvalidConfig)
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("%w: mqtt qos must be 0, 1 or 2", ErrInvalidConfig)
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = "ecobeehub"
		}
		if c.MQTT.TopicRoot == "" {
			c.MQTT.TopicRoot = "ecobeehub"
		}
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		return fmt.Errorf("%w: influxdb url, org and bucket are required", ErrInvalidConfig)
	}

	return nil
}

// Load loads configuration from a JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables
// This is useful for containerized deployments
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", 8080),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./ecobeehub.db"),
		},
		Security: SecurityConfig{
			APIKey:     getEnv("API_KEY", ""),
			APIKeyHash: getEnv("API_KEY_HASH", ""),
		},
		Ecobee: EcobeeConfig{
			BaseURL:          getEnv("ECOBEE_BASE_URL", defaultEcobeeURL),
			LegacyConfigPath: getEnv("LEGACY_CONFIG", ""),
			ConfFile:         getEnv("ECOBEE_CONF", "./ecobee.conf"),
			PollInterval:     Duration(getEnvDuration("POLL_INTERVAL", defaultPollInterval)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MQTT: MQTTConfig{
			Enabled:   getEnvBool("MQTT_ENABLED", false),
			Broker:    getEnv("MQTT_BROKER", ""),
			ClientID:  getEnv("MQTT_CLIENT_ID", "ecobeehub"),
			Username:  getEnv("MQTT_USERNAME", ""),
			Password:  getEnv("MQTT_PASSWORD", ""),
			TopicRoot: getEnv("MQTT_TOPIC_ROOT", "ecobeehub"),
			QoS:       byte(getEnvInt("MQTT_QOS", 1)),
		},
		InfluxDB: InfluxDBConfig{
			Enabled: getEnvBool("INFLUXDB_ENABLED", false),
			URL:     getEnv("INFLUXDB_URL", ""),
			Token:   getEnv("INFLUXDB_TOKEN", ""),
			Org:     getEnv("INFLUXDB_ORG", ""),
			Bucket:  getEnv("INFLUXDB_BUCKET", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		var intVal int
		fmt.Sscanf(value, "%d", &intVal)
		return intVal
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
