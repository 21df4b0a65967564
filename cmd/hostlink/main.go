// HostLink - Desktop to Home Assistant bridge
//
// HostLink exposes host state (batteries, containers, audio, media players,
// desktop toggles) to Home Assistant over MQTT. Every exposed value is an
// entity: announced with a retained discovery message, mirrored on a
// retained state topic, and commanded via sibling topics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/hostlink/internal/entity"
	"github.com/nerrad567/hostlink/internal/infrastructure/config"
	"github.com/nerrad567/hostlink/internal/infrastructure/database"
	"github.com/nerrad567/hostlink/internal/infrastructure/influxdb"
	"github.com/nerrad567/hostlink/internal/infrastructure/logging"
	"github.com/nerrad567/hostlink/internal/infrastructure/mqtt"
	"github.com/nerrad567/hostlink/internal/integration"
	"github.com/nerrad567/hostlink/internal/integrations/audio"
	"github.com/nerrad567/hostlink/internal/integrations/battery"
	"github.com/nerrad567/hostlink/internal/integrations/containers"
	"github.com/nerrad567/hostlink/internal/integrations/media"
	"github.com/nerrad567/hostlink/internal/integrations/nightmode"
	"github.com/nerrad567/hostlink/internal/integrations/shortcuts"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting HostLink",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "host", cfg.Host.Name)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the settings database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	settings := database.NewSettings(db)
	log.Info("database connected", "path", cfg.Database.Path)

	// Derive the topic space and register the last will before connecting:
	// the broker publishes "off" retained on our behalf if we vanish.
	topics := mqtt.Topics{
		Host:            cfg.Host.Name,
		DiscoveryPrefix: cfg.MQTT.Discovery.Prefix,
	}
	will := mqtt.WillMessage{
		Topic:   topics.Availability(),
		Payload: entity.PayloadOffline,
	}

	// Connect never fails: a bad broker config degrades into a permanently
	// disconnected client and the rest of the bridge keeps running.
	mqttClient := mqtt.Connect(cfg.MQTT, will, log)
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()

	// Connect to InfluxDB (optional state history)
	var influxClient *influxdb.Client
	influxClient, err = influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		influxClient = nil
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	// Build the entity bridge around the broker connection.
	device := entity.DeviceInfo{
		Identifiers:  []string{cfg.Host.Name},
		Name:         cfg.Host.Name,
		Manufacturer: cfg.Host.Manufacturer,
		Model:        cfg.Host.Model,
		SWVersion:    version,
	}
	opts := []entity.BridgeOption{
		entity.WithLogger(log),
		entity.WithQoS(byte(cfg.MQTT.QoS)), // #nosec G115 -- validated to 0..2
	}
	if influxClient != nil {
		opts = append(opts, entity.WithRecorder(influxClient))
	}
	bridge := entity.New(&entityConnAdapter{client: mqttClient}, topics, device, opts...)

	// Every transition into Connected re-announces the whole entity set.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected, announcing entities", "entities", bridge.Len())
		bridge.HandleConnect()
		if influxClient != nil {
			influxClient.WriteConnectionEvent(cfg.Host.Name, true)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		bridge.HandleDisconnect(err)
		if influxClient != nil {
			influxClient.WriteConnectionEvent(cfg.Host.Name, false)
		}
	})

	// Declare integrations and reconcile against the persisted flags.
	registry := integration.NewRegistry()
	declarations := []struct {
		name           string
		defaultEnabled bool
		activate       integration.Activation
	}{
		{battery.Name, true, battery.Activate},
		{containers.Name, false, containers.Activate},
		{audio.Name, true, audio.Activate},
		{nightmode.Name, true, nightmode.Activate},
		{media.Name, true, media.Activate},
		{shortcuts.Name, true, shortcuts.Activate},
	}
	for _, d := range declarations {
		if err := registry.Register(d.name, d.defaultEnabled, d.activate); err != nil {
			return fmt.Errorf("registering integration %s: %w", d.name, err)
		}
	}

	rt := &integration.Runtime{
		Bridge:   bridge,
		Config:   cfg,
		Settings: settings,
		Logger:   log,
	}
	if err := registry.LoadAndRun(ctx, rt); err != nil {
		return fmt.Errorf("starting integrations: %w", err)
	}
	log.Info("integrations reconciled",
		"registered", len(registry.Names()),
		"entities", bridge.Len(),
	)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Best-effort offline notice; the last will covers unclean exits.
	bridge.Shutdown()
	if influxClient != nil {
		influxClient.WriteConnectionEvent(cfg.Host.Name, false)
	}

	// Deferred Close() calls run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT
	// 3. Database

	log.Info("HostLink stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HOSTLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOSTLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// entityConnAdapter adapts the infrastructure MQTT client to the entity
// layer's Connection interface. The only difference is the Subscribe
// handler type: the supervisor uses a named MessageHandler, the entity
// layer a plain func.
type entityConnAdapter struct {
	client *mqtt.Client
}

// Publish implements entity.Connection.
func (a *entityConnAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements entity.Connection.
func (a *entityConnAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error {
	return a.client.Subscribe(topic, qos, handler)
}

// Unsubscribe implements entity.Connection.
func (a *entityConnAdapter) Unsubscribe(topic string) error {
	return a.client.Unsubscribe(topic)
}

// IsConnected implements entity.Connection.
func (a *entityConnAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
