package logging

import (
	"context"
	"log/slog"
	"time"

	"ecobeehub/internal/core"
)

// EntryManagerLogger wraps an EntryManager and logs all lifecycle calls
type EntryManagerLogger struct {
	manager core.EntryManagerInterface
	logger  *slog.Logger
}

// NewEntryManagerLogger creates a new logging decorator for EntryManager
func NewEntryManagerLogger(manager core.EntryManagerInterface, logger *slog.Logger) core.EntryManagerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryManagerLogger{
		manager: manager,
		logger:  logger.With("interface", "EntryManager"),
	}
}

func (l *EntryManagerLogger) SetupEntry(ctx context.Context, entry *core.Entry) error {
	start := time.Now()
	l.logger.Info("SetupEntry called",
		"entry_id", entry.ID,
		"source", entry.Source)

	err := l.manager.SetupEntry(ctx, entry)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("SetupEntry failed",
			"entry_id", entry.ID,
			"duration", duration,
			"error", err)
		return err
	}

	l.logger.Info("SetupEntry completed",
		"entry_id", entry.ID,
		"duration", duration)

	return nil
}

func (l *EntryManagerLogger) UnloadEntry(ctx context.Context, entry *core.Entry) error {
	start := time.Now()
	l.logger.Info("UnloadEntry called",
		"entry_id", entry.ID)

	err := l.manager.UnloadEntry(ctx, entry)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("UnloadEntry failed",
			"entry_id", entry.ID,
			"duration", duration,
			"error", err)
		return err
	}

	l.logger.Info("UnloadEntry completed",
		"entry_id", entry.ID,
		"duration", duration)

	return nil
}

func (l *EntryManagerLogger) ImportLegacyConfig(ctx context.Context, legacy *core.LegacyConfig) bool {
	l.logger.Info("ImportLegacyConfig called",
		"has_legacy_config", legacy != nil)

	started := l.manager.ImportLegacyConfig(ctx, legacy)

	l.logger.Info("ImportLegacyConfig completed",
		"import_started", started)

	return started
}

func (l *EntryManagerLogger) Coordinator(entryID string) (*core.Coordinator, bool) {
	return l.manager.Coordinator(entryID)
}
