package core

import (
	"errors"
	"fmt"
	"time"
)

// Domain is the integration domain used for entries and logging
const Domain = "ecobee"

// Entry data keys
const (
	ConfAPIKey       = "api_key"
	ConfRefreshToken = "refresh_token"
)

// Entry sources
const (
	SourceUser   = "user"
	SourceImport = "import"
)

// Platforms lists the entity platforms an entry is forwarded to, in setup order
var Platforms = []string{"binary_sensor", "climate", "sensor", "weather"}

var (
	ErrExpiredToken          = errors.New("access token has expired")
	ErrTokenRefreshFailed    = errors.New("failed to refresh ecobee tokens")
	ErrNoThermostats         = errors.New("no ecobee devices found to set up")
	ErrMissingCredentials    = errors.New("entry is missing api_key or refresh_token")
	ErrEntryNotFound         = errors.New("entry not found")
	ErrEntryNotLoaded        = errors.New("entry is not loaded")
	ErrEntryAlreadyLoaded    = errors.New("entry is already loaded")
	ErrAlreadyConfigured     = errors.New("integration is already configured")
	ErrAuthorizationRequired = errors.New("ecobee authorization required - please complete setup through the config flow")
)

// Credentials is the api key / refresh token pair persisted in an entry
type Credentials struct {
	APIKey       string
	RefreshToken string
}

// Data returns the credentials as entry data
func (c Credentials) Data() map[string]string {
	return map[string]string{
		ConfAPIKey:       c.APIKey,
		ConfRefreshToken: c.RefreshToken,
	}
}

// Entry is the durable record of one configured integration instance
type Entry struct {
	ID        string
	Domain    string
	Title     string
	Source    string
	Data      map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials extracts the credential pair from the entry data
func (e *Entry) Credentials() (Credentials, error) {
	apiKey := e.Data[ConfAPIKey]
	refreshToken := e.Data[ConfRefreshToken]
	if apiKey == "" || refreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: entry %s", ErrMissingCredentials, e.ID)
	}
	return Credentials{APIKey: apiKey, RefreshToken: refreshToken}, nil
}

// Validate checks that an entry can be stored
func (e *Entry) Validate() error {
	if e.ID == "" {
		return errors.New("entry ID cannot be empty")
	}
	if e.Domain == "" {
		return errors.New("entry domain cannot be empty")
	}
	if e.Source != SourceUser && e.Source != SourceImport {
		return fmt.Errorf("invalid entry source: %s", e.Source)
	}
	return nil
}

// LegacyConfig is the optional ecobee block of the file-based configuration
type LegacyConfig struct {
	APIKey string
}

// Thermostat is a thermostat as reported by the ecobee API
type Thermostat struct {
	Identifier      string         `json:"identifier"`
	Name            string         `json:"name"`
	Brand           string         `json:"brand"`
	ModelNumber     string         `json:"modelNumber"`
	Runtime         Runtime        `json:"runtime"`
	Settings        Settings       `json:"settings"`
	EquipmentStatus string         `json:"equipmentStatus"`
	RemoteSensors   []RemoteSensor `json:"remoteSensors"`
	Weather         Weather        `json:"weather"`
}

// Runtime holds live thermostat readings. Temperatures are tenths of a degree Fahrenheit.
type Runtime struct {
	Connected         bool `json:"connected"`
	ActualTemperature int  `json:"actualTemperature"`
	ActualHumidity    int  `json:"actualHumidity"`
	DesiredHeat       int  `json:"desiredHeat"`
	DesiredCool       int  `json:"desiredCool"`
}

// Temperature returns the current temperature in degrees Fahrenheit
func (r Runtime) Temperature() float64 {
	return float64(r.ActualTemperature) / 10
}

// Settings holds the thermostat configuration that matters to entities
type Settings struct {
	HVACMode      string `json:"hvacMode"`
	HasHumidifier bool   `json:"hasHumidifier"`
	FanMinOnTime  int    `json:"fanMinOnTime"`
}

// RemoteSensor is a sensor paired with a thermostat (including the thermostat itself)
type RemoteSensor struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	InUse      bool               `json:"inUse"`
	Capability []SensorCapability `json:"capability"`
}

// CapabilityOf returns the capability of the given type, if present
func (s RemoteSensor) CapabilityOf(capType string) (SensorCapability, bool) {
	for _, c := range s.Capability {
		if c.Type == capType {
			return c, true
		}
	}
	return SensorCapability{}, false
}

// SensorCapability is a single reading of a remote sensor
type SensorCapability struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Weather holds the forecast for the thermostat location
type Weather struct {
	WeatherStation string     `json:"weatherStation"`
	Timestamp      string     `json:"timestamp"`
	Forecasts      []Forecast `json:"forecasts"`
}

// Forecast is a single weather forecast. Temperatures are tenths of a degree Fahrenheit.
type Forecast struct {
	DateTime         string `json:"dateTime"`
	WeatherSymbol    int    `json:"weatherSymbol"`
	Condition        string `json:"condition"`
	Temperature      int    `json:"temperature"`
	Pressure         int    `json:"pressure"`
	RelativeHumidity int    `json:"relativeHumidity"`
	WindSpeed        int    `json:"windSpeed"`
	WindBearing      int    `json:"windBearing"`
	TempHigh         int    `json:"tempHigh"`
	TempLow          int    `json:"tempLow"`
}

// UpdateResult reports what a coordinator update did
type UpdateResult int

const (
	// UpdateSkipped means the call was throttled and nothing was fetched
	UpdateSkipped UpdateResult = iota
	// UpdateFetched means fresh thermostat data was fetched
	UpdateFetched
	// UpdateTokensRefreshed means the access token had expired and was refreshed; data is stale until the next poll
	UpdateTokensRefreshed
	// UpdateRefreshFailed means the access token had expired and the refresh failed
	UpdateRefreshFailed
	// UpdateFailed means the fetch failed with an error returned alongside it
	UpdateFailed
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateSkipped:
		return "skipped"
	case UpdateFetched:
		return "fetched"
	case UpdateTokensRefreshed:
		return "tokens_refreshed"
	case UpdateRefreshFailed:
		return "refresh_failed"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
