package mqtt

import (
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// Camera snapshots are the largest payloads the bridge ships; this aligns
// with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic.
//
// Publishing while not Connected is a deliberate silent no-op, not an
// error: entity setters cache their latest value locally and the connect
// notification flushes it, so a dropped publish is always recovered.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "workstation/battery_bat0")
//   - payload: The message payload (max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success or while disconnected; a wrapped error for
//     invalid input or a failed wire publish
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	// Silent no-op while not connected. The caller's cached value will be
	// republished on the next connect notification.
	if !c.IsConnected() {
		if logger := c.getLogger(); logger != nil {
			logger.Debug("publish skipped while disconnected", "topic", topic)
		}
		return nil
	}

	// Publish with timeout
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured default QoS.
//
// Use for state topics where new subscribers should receive the current value.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
