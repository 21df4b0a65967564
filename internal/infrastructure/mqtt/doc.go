// Package mqtt provides the broker connection supervisor for HostLink.
//
// This package manages:
//   - The single MQTT connection shared by every entity
//   - Fixed-interval reconnection (no backoff, retried forever)
//   - Last Will and Testament (LWT) on the availability topic
//   - Topic derivation for state, command, attributes and discovery topics
//   - Silent no-op publishing while disconnected
//
// # Architecture
//
// HostLink is the client-side policy layer between the desktop and a
// home-automation hub. The supervisor owns connectivity; entities own
// what to publish and when. The contract between them is the on-connect
// notification: every transition into Connected replays discovery
// registration and retained state for all entities.
//
//	Desktop watchers → Entities → Supervisor → MQTT Broker → Hub
//
// # Failure policy
//
//   - Empty broker host: startup diagnostic, stays disconnected, never fatal
//   - Broker unreachable / auth failure: Disconnected transition, fixed
//     1-second retries, no operator action needed
//   - Publish while disconnected: silent no-op; callers cache and flush
//     on the next connect notification
//
// # Usage
//
//	topics := mqtt.Topics{Host: cfg.Host.Name, DiscoveryPrefix: cfg.MQTT.Discovery.Prefix}
//	client := mqtt.Connect(cfg.MQTT, mqtt.WillMessage{
//	    Topic:   topics.Availability(),
//	    Payload: "off",
//	}, log)
//	defer client.Close()
//
//	client.SetOnConnect(func() {
//	    // re-register entities
//	})
package mqtt
