// Package database provides the SQLite-backed settings store for HostLink.
//
// This package manages:
//   - Opening the SQLite database with WAL mode and busy timeout
//   - The settings schema (section/key/value)
//   - Connection health checks and lifecycle
//
// The settings store holds state that must survive restarts but is not
// user-edited configuration: the integration registry's enablement flags
// and any per-module bookkeeping. User configuration lives in config.yaml.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	settings := database.NewSettings(db)
//	enabled, err := settings.GetBool(ctx, "integrations", "battery")
package database
