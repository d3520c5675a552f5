package ecobee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ecobeehub/internal/core"
)

// tokenResponse is the body returned by the ecobee token endpoint
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// tokenError is the body returned by the ecobee token endpoint on failure
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RefreshTokens exchanges the refresh token for a new access and refresh token.
// On success the client holds the new pair.
func (c *Client) RefreshTokens(ctx context.Context) error {
	creds := c.Credentials()
	if creds.APIKey == "" || creds.RefreshToken == "" {
		return ErrNoCredentials
	}

	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("code", creds.RefreshToken)
	params.Set("client_id", creds.APIKey)

	endpoint := fmt.Sprintf("%s/token?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send refresh request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var tokenErr tokenError
		if json.Unmarshal(respBody, &tokenErr) == nil && tokenErr.Error != "" {
			return fmt.Errorf("%w: %s (%s)", core.ErrTokenRefreshFailed, tokenErr.Error, tokenErr.ErrorDescription)
		}
		return fmt.Errorf("%w: status %d: %s", core.ErrTokenRefreshFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var tokens tokenResponse
	if err := json.Unmarshal(respBody, &tokens); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return fmt.Errorf("%w: response is missing tokens", core.ErrTokenRefreshFailed)
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()

	return nil
}
