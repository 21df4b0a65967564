// Package logging provides structured logging for HostLink.
//
// This package wraps the standard library's log/slog with:
//   - Level-based filtering configured from config.yaml
//   - JSON (production) and text (development) output formats
//   - Default attributes (service name, version) on every record
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	mqttLog := log.With("component", "mqtt")
//	mqttLog.Info("connected", "broker", "localhost:1883")
package logging
