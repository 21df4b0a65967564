package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hostlink/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the per-attempt connection timeout.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from HostLink config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID and optional credentials
//   - Fixed-interval reconnect: retry interval and max reconnect interval
//     are the same value, so there is no backoff escalation
//   - Short keep-alive so the broker notices an unresponsive process
//     (suspend, hard crash) quickly and fires the last will
//   - Last-will registration on the availability topic
func buildClientOptions(cfg config.MQTTConfig, will WillMessage) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	// Broker URL
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	// Client identification
	opts.SetClientID(cfg.Broker.ClientID)

	// Authentication (if credentials provided)
	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - retained messages carry all state the hub needs,
	// so no broker-side session persistence is wanted.
	opts.SetCleanSession(true)

	// Reconnect forever on a fixed interval. Setting the retry interval and
	// the max reconnect interval to the same value disables backoff.
	retry := time.Duration(cfg.Reconnect.RetryInterval) * time.Second
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(retry)
	opts.SetMaxReconnectInterval(retry)

	// Per-attempt connection timeout
	opts.SetConnectTimeout(defaultConnectTimeout)

	// Short keep-alive: prompt offline visibility beats network chattiness
	// for a desktop bridge.
	opts.SetKeepAlive(time.Duration(cfg.Reconnect.KeepAlive) * time.Second)

	// TLS configuration if enabled
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	// Last will: the broker publishes this retained if we vanish uncleanly.
	if will.Topic != "" {
		opts.SetWill(will.Topic, will.Payload, 1, true)
	}

	return opts
}
