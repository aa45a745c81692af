// Package main provides the specdialog binary entry point.
// Specdialog is a specification discovery engine that turns free-form
// conversation and design notes into structured entities, scenarios,
// and constraints on the semstreams runtime.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	// Register LLM providers via init()
	_ "github.com/c360studio/specdialog/llm/providers"

	// Register vocabularies via init()
	_ "github.com/c360studio/specdialog/vocabulary/specdialog"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/componentregistry"
	"github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/service"
	"github.com/c360studio/semstreams/types"
	appconfig "github.com/c360studio/specdialog/config"
	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/model"
	builderapi "github.com/c360studio/specdialog/processor/builder-api"
	notesingester "github.com/c360studio/specdialog/processor/notes-ingester"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "specdialog"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		natsURL    string
		logLevel   string
		notesDir   string
	)

	cmd := &cobra.Command{
		Use:   "specdialog",
		Short: "Specification discovery engine",
		Long: `Specdialog discovers structured specifications from conversation.

It provides:
- A session API that extracts entities, scenarios, and constraints
  from free-form messages and tracks discovery progress
- A notes ingester that watches a directory of design notes and
  extracts the same structures from files
- Diagram synthesis over the discovered specification

All components communicate via NATS using the semstreams framework.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, natsURL, logLevel, notesDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (overrides config and env)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&notesDir, "notes-dir", "", "Directory of design notes to watch (overrides config)")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func run(configPath, natsURL, logLevel, notesDir string) error {
	// Configure logging
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	appCfg, err := loadAppConfig(configPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flag overrides
	if natsURL != "" {
		appCfg.NATS.URL = natsURL
	}
	if notesDir != "" {
		appCfg.Notes.Dir = notesDir
	}

	if err := appCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Install the configured model registry before components resolve it
	if len(appCfg.Models.Endpoints) > 0 || len(appCfg.Models.Capabilities) > 0 {
		model.InitGlobal(model.FromConfig(&appCfg.Models))
	}

	// Build the semstreams runtime config from the engine config
	natsURLs := resolveNATSURL(appCfg.NATS.URL)
	cfg := buildRuntimeConfig(appCfg, natsURLs)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid runtime configuration: %w", err)
	}

	// Connect to NATS
	ctx := context.Background()
	natsClient, err := connectToNATS(ctx, natsURLs, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	// Ensure JetStream streams exist
	if err := ensureStreams(ctx, cfg, natsClient, logger); err != nil {
		return err
	}

	slog.Info("Specdialog ready",
		"version", Version,
		"notes_dir", appCfg.Notes.Dir)

	// Create remaining infrastructure
	metricsRegistry := metric.NewMetricsRegistry()
	platform := extractPlatformMeta(cfg)

	// Create and start config manager (required for component-manager to access component configs)
	configManager, err := config.NewConfigManager(cfg, natsClient, logger)
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	if err := configManager.Start(ctx); err != nil {
		return fmt.Errorf("start config manager: %w", err)
	}
	defer configManager.Stop(5 * time.Second)

	// Create and populate component registry
	componentRegistry := component.NewRegistry()

	// Register all semstreams components
	slog.Debug("Registering semstreams component factories")
	if err := componentregistry.Register(componentRegistry); err != nil {
		return fmt.Errorf("register semstreams components: %w", err)
	}

	// Register specdialog components
	slog.Debug("Registering specdialog component factories")
	if err := builderapi.Register(componentRegistry); err != nil {
		return fmt.Errorf("register builder-api: %w", err)
	}
	if err := notesingester.Register(componentRegistry); err != nil {
		return fmt.Errorf("register notes-ingester: %w", err)
	}

	factories := componentRegistry.ListFactories()
	slog.Info("Component factories registered", "count", len(factories))

	// Create service registry and manager (semstreams pattern)
	serviceRegistry := service.NewServiceRegistry()
	if err := service.RegisterAll(serviceRegistry); err != nil {
		return fmt.Errorf("register services: %w", err)
	}

	manager := service.NewServiceManager(serviceRegistry)
	ensureServiceManagerConfig(cfg)

	// Create service dependencies
	svcDeps := &service.Dependencies{
		NATSClient:        natsClient,
		MetricsRegistry:   metricsRegistry,
		Logger:            logger,
		Platform:          platform,
		Manager:           configManager,
		ComponentRegistry: componentRegistry,
	}

	// Configure and create services
	if err := configureAndCreateServices(cfg, manager, svcDeps); err != nil {
		return err
	}

	slog.Info("All services configured")

	// Setup signal handling
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	// Start all services (includes HTTP server with health endpoints)
	slog.Info("Starting all services")
	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	slog.Info("All services started successfully")

	// Block until shutdown signal
	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	// Stop all services
	shutdownTimeout := 30 * time.Second
	if err := manager.StopAll(shutdownTimeout); err != nil {
		slog.Error("Error stopping services", "error", err)
	}

	slog.Info("Specdialog shutdown complete")
	return nil
}

// loadAppConfig loads the engine-level YAML config. An explicit path
// wins; otherwise the layered default/user/project lookup applies.
func loadAppConfig(configPath string, logger *slog.Logger) (*appconfig.Config, error) {
	if configPath != "" {
		return appconfig.LoadFromFile(configPath)
	}
	return appconfig.NewLoader(logger).Load()
}

// buildRuntimeConfig translates the engine config into the semstreams
// runtime config that drives component and stream creation.
func buildRuntimeConfig(appCfg *appconfig.Config, natsURLs string) *config.Config {
	builderConfig := map[string]any{}
	if appCfg.Session.IdleTimeout > 0 {
		builderConfig["idle_timeout"] = appCfg.Session.IdleTimeout.String()
	}
	if appCfg.Phases.Thresholds != (conversation.Thresholds{}) {
		builderConfig["thresholds"] = appCfg.Phases.Thresholds
	}
	if len(appCfg.Phases.Keywords) > 0 {
		builderConfig["phase_keywords"] = appCfg.Phases.Keywords
	}
	if appCfg.Extract.MinConfidence > 0 {
		builderConfig["min_confidence"] = appCfg.Extract.MinConfidence
	}
	if len(appCfg.Extract.VagueWords) > 0 {
		builderConfig["vague_words"] = appCfg.Extract.VagueWords
	}
	if len(appCfg.Extract.UntestablePhrases) > 0 {
		builderConfig["untestable_phrases"] = appCfg.Extract.UntestablePhrases
	}
	if appCfg.Diagram.Spacing > 0 {
		builderConfig["diagram_spacing"] = appCfg.Diagram.Spacing
	}
	if appCfg.Diagram.GridColumns > 0 {
		builderConfig["grid_columns"] = appCfg.Diagram.GridColumns
	}
	builderJSON, _ := json.Marshal(builderConfig)

	components := config.ComponentConfigs{
		"builder-api": types.ComponentConfig{
			Name:    "builder-api",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  builderJSON,
		},
	}

	// Notes ingestion only runs when a directory is configured
	if appCfg.Notes.Dir != "" {
		notesConfig := map[string]any{
			"notes_dir": appCfg.Notes.Dir,
		}
		if len(appCfg.Notes.Patterns) > 0 {
			notesConfig["patterns"] = appCfg.Notes.Patterns
		}
		if appCfg.Notes.Debounce > 0 {
			notesConfig["debounce_delay"] = appCfg.Notes.Debounce.String()
		}
		if appCfg.Extract.MinConfidence > 0 {
			notesConfig["min_confidence"] = appCfg.Extract.MinConfidence
		}
		notesJSON, _ := json.Marshal(notesConfig)
		components["notes-ingester"] = types.ComponentConfig{
			Name:    "notes-ingester",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  notesJSON,
		}
	}

	return &config.Config{
		Version: "1.0.0",
		Platform: config.PlatformConfig{
			Org:         "specdialog",
			ID:          "specdialog-local",
			Environment: "dev",
		},
		NATS: config.NATSConfig{
			URLs:          strings.Split(natsURLs, ","),
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: config.JetStreamConfig{
				Enabled: true,
			},
		},
		Services:   types.ServiceConfigs{},
		Components: components,
		Streams: config.StreamConfigs{
			"GRAPH": config.StreamConfig{
				Subjects: []string{
					"graph.ingest.entity",
					"graph.export.>",
				},
				MaxAge:   "24h",
				Storage:  "memory",
				Replicas: 1,
			},
		},
	}
}

// resolveNATSURL picks the NATS server URL. Environment variables take
// precedence over the config file; the --nats-url flag has already been
// folded into configuredURL.
func resolveNATSURL(configuredURL string) string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}
	if envURL := os.Getenv("SPECDIALOG_NATS_URL"); envURL != "" {
		return envURL
	}
	if configuredURL != "" {
		return configuredURL
	}
	return "nats://localhost:4222"
}

func connectToNATS(ctx context.Context, natsURLs string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", natsURLs)

	client, err := natsclient.NewClient(natsURLs,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20), // Higher threshold for startup bursts
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURLs)
	}

	logger.Info("Connected to NATS", "url", natsURLs)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func ensureStreams(ctx context.Context, cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")
	streamsManager := config.NewStreamsManager(natsClient, logger)

	if err := streamsManager.EnsureStreams(ctx, cfg); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	logger.Debug("JetStream streams ready")
	return nil
}

func extractPlatformMeta(cfg *config.Config) types.PlatformMeta {
	platformID := cfg.Platform.InstanceID
	if platformID == "" {
		platformID = cfg.Platform.ID
	}

	return types.PlatformMeta{
		Org:      cfg.Platform.Org,
		Platform: platformID,
	}
}

// ensureServiceManagerConfig ensures service-manager config exists with defaults
func ensureServiceManagerConfig(cfg *config.Config) {
	if cfg.Services == nil {
		cfg.Services = make(types.ServiceConfigs)
	}

	if _, exists := cfg.Services["service-manager"]; !exists {
		slog.Debug("Adding default service-manager config")
		defaultConfig := map[string]any{
			"http_port":  8080,
			"swagger_ui": false,
			"server_info": map[string]string{
				"title":       "Specdialog API",
				"description": "specification discovery engine - conversational extraction and diagrams",
				"version":     Version,
			},
		}
		defaultConfigJSON, _ := json.Marshal(defaultConfig)
		cfg.Services["service-manager"] = types.ServiceConfig{
			Name:    "service-manager",
			Enabled: true,
			Config:  defaultConfigJSON,
		}
		slog.Debug("Service-manager config added", "enabled", true)
	}
}

// configureAndCreateServices configures the manager and creates all services
func configureAndCreateServices(
	cfg *config.Config,
	manager *service.Manager,
	svcDeps *service.Dependencies,
) error {
	slog.Debug("Configuring Manager")
	if err := manager.ConfigureFromServices(cfg.Services, svcDeps); err != nil {
		return fmt.Errorf("configure service manager: %w", err)
	}

	slog.Debug("Creating services from config", "count", len(cfg.Services))
	for name, svcConfig := range cfg.Services {
		if name == "service-manager" {
			slog.Debug("Skipping service-manager (configured directly)")
			continue
		}

		if err := createServiceIfEnabled(manager, name, svcConfig, svcDeps); err != nil {
			return err
		}
	}

	return nil
}

// createServiceIfEnabled creates a service if it's enabled and registered
func createServiceIfEnabled(
	manager *service.Manager,
	name string,
	svcConfig types.ServiceConfig,
	svcDeps *service.Dependencies,
) error {
	slog.Debug("Processing service config", "key", name, "name", svcConfig.Name, "enabled", svcConfig.Enabled)

	if !svcConfig.Enabled {
		slog.Info("Service disabled in config", "name", name)
		return nil
	}

	if !manager.HasConstructor(name) {
		slog.Warn("Service configured but not registered", "key", name, "available_constructors", manager.ListConstructors())
		return nil
	}

	slog.Debug("Creating service", "name", name, "has_constructor", true)
	if _, err := manager.CreateService(name, svcConfig.Config, svcDeps); err != nil {
		return fmt.Errorf("create service %s: %w", name, err)
	}

	slog.Info("Created service", "name", name, "config_name", svcConfig.Name)
	return nil
}
