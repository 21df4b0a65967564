// Package influxdb provides optional time-series recording of entity state.
//
// When enabled, every entity state transition and broker connection event is
// written to InfluxDB v2 as a non-blocking batched point. The bridge works
// identically with InfluxDB disabled; Connect returns ErrDisabled and callers
// continue without a recorder.
//
// Writes never block the caller. Async write failures surface through the
// SetOnError callback and are logged, not retried.
package influxdb
