package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Coordinator owns the ecobee client of one entry. It throttles data fetches
// and keeps the entry's stored credentials in sync with the client.
type Coordinator struct {
	entry    *Entry
	client   EcobeeClient
	store    EntryStore
	throttle *Throttle
	logger   *slog.Logger

	mu      sync.RWMutex
	lastErr error
}

// NewCoordinator creates a coordinator for an entry
func NewCoordinator(entry *Entry, client EcobeeClient, store EntryStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		entry:    entry,
		client:   client,
		store:    store,
		throttle: NewThrottle(MinTimeBetweenUpdates),
		logger:   logger.With("component", "coordinator", "entry_id", entry.ID),
	}
}

// EntryID returns the ID of the entry this coordinator serves
func (c *Coordinator) EntryID() string {
	return c.entry.ID
}

// Throttle returns the update throttle
func (c *Coordinator) Throttle() *Throttle {
	return c.throttle
}

// Thermostats returns the last fetched thermostats, or nil if none were fetched
func (c *Coordinator) Thermostats() []Thermostat {
	return c.client.Thermostats()
}

// Credentials returns the client's current credential pair
func (c *Coordinator) Credentials() Credentials {
	return c.client.Credentials()
}

// LastUpdateError returns the error of the most recent fetch attempt, or nil
// if it succeeded. Throttled calls leave it unchanged.
func (c *Coordinator) LastUpdateError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Coordinator) setLastUpdateError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Update fetches the latest data from ecobee.com, at most once per throttle interval.
// Every fetch attempt counts against the interval, failed ones included.
// An expired access token triggers a token refresh; the fetch itself is not
// retried until the next call. Other errors are returned with UpdateFailed.
func (c *Coordinator) Update(ctx context.Context) (UpdateResult, error) {
	if !c.throttle.TryAcquire() {
		c.logger.Debug("Update throttled",
			"last_call", c.throttle.LastCall())
		return UpdateSkipped, nil
	}

	err := c.client.Update(ctx)
	c.throttle.Release()
	if err == nil {
		c.setLastUpdateError(nil)
		c.logger.Debug("Updated ecobee data",
			"thermostats", len(c.client.Thermostats()))
		return UpdateFetched, nil
	}

	if !errors.Is(err, ErrExpiredToken) {
		c.setLastUpdateError(err)
		return UpdateFailed, err
	}
	// Cached data stays usable while the tokens are refreshed
	c.setLastUpdateError(nil)

	c.logger.Warn("Ecobee update failed; attempting to refresh expired tokens")
	if !c.Refresh(ctx) {
		return UpdateRefreshFailed, nil
	}
	return UpdateTokensRefreshed, nil
}

// Refresh refreshes the ecobee tokens and writes the new pair to the entry.
// Failures are logged and reported as false.
func (c *Coordinator) Refresh(ctx context.Context) bool {
	c.logger.Debug("Refreshing ecobee tokens and updating config entry")

	if err := c.client.RefreshTokens(ctx); err != nil {
		c.logger.Error("Error updating ecobee tokens", "error", err)
		return false
	}

	data := c.client.Credentials().Data()
	if err := c.store.UpdateEntryData(ctx, c.entry.ID, data); err != nil {
		c.logger.Error("Failed to save refreshed ecobee tokens", "error", err)
		return false
	}
	c.entry.Data = data

	return true
}
