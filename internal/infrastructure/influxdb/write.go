package influxdb

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// WriteEntityState records an entity state transition as a time-series point.
//
// Points are written to the "entity_state" measurement with the entity ID,
// kind, and host as tags. The write is non-blocking; failures surface via
// the SetOnError callback.
//
// Parameters:
//   - host: Sanitised hostname the entity belongs to
//   - entityID: Entity identifier (e.g. "battery_level")
//   - kind: Entity kind (e.g. "sensor", "switch")
//   - value: State payload as published to the hub
func (c *Client) WriteEntityState(host, entityID, kind, value string) {
	if !c.IsConnected() {
		return
	}

	point := influxdb2.NewPoint(
		"entity_state",
		map[string]string{
			"host":   host,
			"entity": entityID,
			"kind":   kind,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WriteConnectionEvent records a broker connection state change.
//
// Points are written to the "connection" measurement so gaps in entity
// history can be correlated with broker outages.
func (c *Client) WriteConnectionEvent(host string, connected bool) {
	if !c.IsConnected() {
		return
	}

	point := influxdb2.NewPoint(
		"connection",
		map[string]string{
			"host": host,
		},
		map[string]interface{}{
			"connected": connected,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// Flush forces any batched points to be written immediately.
func (c *Client) Flush() {
	if c.writeAPI != nil {
		c.writeAPI.Flush()
	}
}
