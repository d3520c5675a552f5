package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecobeehub/config"
	"ecobeehub/internal/api"
	"ecobeehub/internal/core"
	"ecobeehub/internal/ecobee"
	"ecobeehub/internal/entities"
	"ecobeehub/internal/influxdb"
	"ecobeehub/internal/logging"
	"ecobeehub/internal/mqtt"
	"ecobeehub/internal/platforms"
	"ecobeehub/internal/scheduler"
	"ecobeehub/internal/storage/sqlite"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
	slog.SetDefault(logger)

	// Initialize database
	logger.Info("Initializing SQLite database", "path", cfg.Database.Path)
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Entity registry and state listeners
	entityRegistry := entities.NewRegistry()

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		defer mqttClient.Close()
		entityRegistry.AddListener(mqtt.NewStatePublisher(mqttClient, cfg.MQTT.TopicRoot, cfg.MQTT.QoS, logger))
		logger.Info("Publishing entity states to MQTT", "broker", cfg.MQTT.Broker, "topic_root", cfg.MQTT.TopicRoot)
	}

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("failed to connect to InfluxDB: %w", err)
		}
		defer influxClient.Close()
		influxClient.SetOnError(func(err error) {
			logger.Warn("InfluxDB write failed", "error", err)
		})
		entityRegistry.AddListener(influxdb.NewRecorder(influxClient))
		logger.Info("Recording entity states to InfluxDB", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// Platforms and entry lifecycle
	platformRegistry := platforms.NewDefaultRegistry(entityRegistry, logger)
	newClient := ecobee.Factory(cfg.Ecobee.BaseURL)

	entryManager := core.NewEntryManager(db, newClient, platformRegistry.CorePlatforms(), logger)
	manager := logging.NewEntryManagerLogger(entryManager, logger)

	loadConf := func() (core.Credentials, error) {
		return config.LoadEcobeeConf(cfg.Ecobee.ConfFile)
	}
	entryManager.SetImportFlow(core.NewImportFlow(db, newClient, loadConf, manager, logger))
	configFlow := core.NewConfigFlow(db, newClient, manager, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupStoredEntries(ctx, db, manager, logger)
	importLegacyConfig(ctx, cfg.Ecobee.LegacyConfigPath, manager, logger)

	// Start scheduler
	pollers := make([]scheduler.Poller, 0)
	for _, p := range platformRegistry.List() {
		pollers = append(pollers, p)
	}
	sched := scheduler.NewScheduler(pollers, cfg.Ecobee.PollInterval.Std(), logger)
	go sched.Start()

	// Initialize REST API
	router := api.NewRouter(api.RouterConfig{
		Store:      db,
		Manager:    manager,
		ConfigFlow: configFlow,
		Entities:   entityRegistry,
		APIKey:     cfg.Security.APIKey,
		APIKeyHash: cfg.Security.APIKeyHash,
		Logger:     logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // config flow waits for the ecobee API
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		sched.Stop()
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		sched.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		unloadEntries(shutdownCtx, db, entryManager, manager, logger)
		entryManager.Wait()

		logger.Info("Graceful shutdown complete")
	}

	return nil
}

// setupStoredEntries sets up every persisted entry. A failing entry stays
// stored and can be reloaded through the API.
func setupStoredEntries(ctx context.Context, store core.EntryStore, manager core.EntryManagerInterface, logger *slog.Logger) {
	entries, err := store.ListEntries(ctx, core.Domain)
	if err != nil {
		logger.Error("Failed to list stored entries", "error", err)
		return
	}

	for _, entry := range entries {
		if err := manager.SetupEntry(ctx, entry); err != nil {
			logger.Warn("Stored entry not loaded", "entry_id", entry.ID, "error", err)
		}
	}
}

// importLegacyConfig triggers the import when the legacy configuration has an ecobee block
func importLegacyConfig(ctx context.Context, path string, manager core.EntryManagerInterface, logger *slog.Logger) {
	if path == "" {
		return
	}

	legacy, err := config.LoadLegacy(path)
	if err != nil {
		logger.Warn("Failed to read legacy configuration", "path", path, "error", err)
		return
	}

	manager.ImportLegacyConfig(ctx, legacy)
}

func unloadEntries(ctx context.Context, store core.EntryStore, entryManager *core.EntryManager, manager core.EntryManagerInterface, logger *slog.Logger) {
	for _, entryID := range entryManager.Coordinators().List() {
		entry, err := store.GetEntry(ctx, entryID)
		if err != nil {
			logger.Warn("Loaded entry missing from storage", "entry_id", entryID, "error", err)
			continue
		}
		// Errors are logged by the manager decorator
		_ = manager.UnloadEntry(ctx, entry)
	}
}
