package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
// Use errors.Is() to check for these errors:
//
//	client, err := influxdb.Connect(cfg)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // InfluxDB is disabled in config, continue without history
//	}
var (
	// ErrDisabled indicates InfluxDB is disabled in configuration.
	ErrDisabled = errors.New("influxdb is disabled")

	// ErrConnectionFailed indicates the server could not be reached or is unhealthy.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrNotConnected indicates an operation was attempted on a closed client.
	ErrNotConnected = errors.New("influxdb client not connected")
)
