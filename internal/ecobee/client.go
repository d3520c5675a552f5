package ecobee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"ecobeehub/internal/core"
)

// DefaultBaseURL is the ecobee API endpoint
const DefaultBaseURL = "https://api.ecobee.com"

// statusExpiredToken is the ecobee API status code for an expired access token
const statusExpiredToken = 14

var (
	ErrNoCredentials = errors.New("no ecobee api key or refresh token configured")
	ErrNoAccessToken = errors.New("no access token - refresh tokens first")
)

// Config contains ecobee API client configuration
type Config struct {
	APIKey       string
	RefreshToken string
	BaseURL      string
	HTTPClient   *http.Client
}

// Client talks to the ecobee API. It holds the current credentials and the
// thermostats of the last successful update.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.RWMutex
	apiKey       string
	accessToken  string
	refreshToken string
	thermostats  []core.Thermostat
}

// NewClient creates a new ecobee client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		apiKey:       config.APIKey,
		refreshToken: config.RefreshToken,
	}
}

// Factory returns a core.ClientFactory creating clients against baseURL
func Factory(baseURL string) core.ClientFactory {
	return func(creds core.Credentials) core.EcobeeClient {
		return NewClient(Config{
			APIKey:       creds.APIKey,
			RefreshToken: creds.RefreshToken,
			BaseURL:      baseURL,
		})
	}
}

// Credentials returns the current api key and refresh token
func (c *Client) Credentials() core.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.Credentials{
		APIKey:       c.apiKey,
		RefreshToken: c.refreshToken,
	}
}

// Thermostats returns the thermostats of the last successful update
func (c *Client) Thermostats() []core.Thermostat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thermostats
}

// selection is the thermostat request selection sent with every update
type selection struct {
	SelectionType          string `json:"selectionType"`
	SelectionMatch         string `json:"selectionMatch"`
	IncludeRuntime         bool   `json:"includeRuntime"`
	IncludeSensors         bool   `json:"includeSensors"`
	IncludeSettings        bool   `json:"includeSettings"`
	IncludeEquipmentStatus bool   `json:"includeEquipmentStatus"`
	IncludeWeather         bool   `json:"includeWeather"`
	IncludeProgram         bool   `json:"includeProgram"`
	IncludeEvents          bool   `json:"includeEvents"`
}

// apiStatus is the status block of every ecobee API response
type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Update fetches all registered thermostats
func (c *Client) Update(ctx context.Context) error {
	c.mu.RLock()
	accessToken := c.accessToken
	c.mu.RUnlock()

	if accessToken == "" {
		return ErrNoAccessToken
	}

	body, err := json.Marshal(map[string]interface{}{
		"selection": selection{
			SelectionType:          "registered",
			IncludeRuntime:         true,
			IncludeSensors:         true,
			IncludeSettings:        true,
			IncludeEquipmentStatus: true,
			IncludeWeather:         true,
			IncludeProgram:         true,
			IncludeEvents:          true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	params := url.Values{}
	params.Set("json", string(body))
	endpoint := fmt.Sprintf("%s/1/thermostat?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json;charset=UTF-8")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp struct {
		ThermostatList []core.Thermostat `json:"thermostatList"`
		Status         apiStatus         `json:"status"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Status.Code == statusExpiredToken {
		return fmt.Errorf("%w: %s", core.ErrExpiredToken, apiResp.Status.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, apiResp.Status.Message)
	}
	if apiResp.Status.Code != 0 {
		return fmt.Errorf("API returned error code %d: %s", apiResp.Status.Code, apiResp.Status.Message)
	}

	thermostats := apiResp.ThermostatList
	if thermostats == nil {
		thermostats = []core.Thermostat{}
	}

	c.mu.Lock()
	c.thermostats = thermostats
	c.mu.Unlock()

	return nil
}
