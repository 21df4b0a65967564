package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hostlink/internal/infrastructure/config"
)

// Client is the broker connection supervisor. It owns the single MQTT
// connection for the whole bridge and wraps paho.mqtt.golang with
// HostLink-specific policy:
//
//   - misconfiguration (empty broker host) is a startup diagnostic, not a
//     crash: the client stays Disconnected and every publish is a no-op
//   - reconnects retry indefinitely on a fixed interval (no backoff)
//   - publishes while not Connected are silent no-ops (callers cache state
//     and flush it on the next connect notification)
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client  pahomqtt.Client
	options *pahomqtt.ClientOptions
	cfg     config.MQTTConfig

	// state tracks the current connection state.
	state   ConnectionState
	stateMu sync.RWMutex

	// subscriptions tracks active subscriptions for introspection.
	// Re-subscription after reconnect is owned by the entity lifecycle
	// (command subscriptions are re-established inside every on-connect
	// notification), so the supervisor does not restore them itself.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// Callbacks for connection events (optional, set via SetOnConnect/SetOnDisconnect).
	// onConnect is serialised: paho runs the handler on a single goroutine,
	// so registration work dispatched from it is ordered.
	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// ConnectionState is the supervisor's view of the broker connection.
type ConnectionState int

// Connection states. Transitions are driven by the broker connection and
// paho's internal retry timer.
const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String returns the lower-case state name.
func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// subscription holds subscription details for introspection.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library.
// They should not block for extended periods.
//
// Parameters:
//   - topic: The topic the message was received on (wildcards expanded)
//   - payload: The raw message payload
//
// Returns:
//   - error: Logged but does not affect message acknowledgment
type MessageHandler func(topic string, payload []byte) error

// WillMessage is the last-will registration handed to the broker at connect
// time. The broker publishes it on the client's behalf if the connection
// drops uncleanly - this is how the hub learns the bridge went offline
// without a clean shutdown.
type WillMessage struct {
	Topic   string
	Payload string
}

// Connect builds the supervisor and initiates the broker connection.
//
// Unlike a conventional client constructor this never fails: connectivity
// problems degrade into the Disconnected state and are retried forever on
// the configured fixed interval. An empty broker host is logged at error
// severity and leaves the client permanently disconnected - the rest of
// the bridge keeps running.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - will: Last-will registration (empty topic disables it)
//   - logger: Diagnostics sink (must not be nil)
//
// Returns:
//   - *Client: Supervisor, possibly in the Disconnected state
func Connect(cfg config.MQTTConfig, will WillMessage, logger Logger) *Client {
	c := &Client{
		cfg:           cfg,
		state:         Disconnected,
		subscriptions: make(map[string]subscription),
		logger:        logger,
	}

	if cfg.Broker.Host == "" {
		logger.Error("MQTT broker host not configured; bridge will stay disconnected",
			"hint", "set mqtt.broker.host in config.yaml or HOSTLINK_MQTT_HOST",
		)
		return c
	}

	opts := buildClientOptions(cfg, will)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.setState(Connecting)
	})

	c.options = opts
	c.client = pahomqtt.NewClient(opts)
	c.setState(Connecting)

	// Initiate the connection without blocking startup. With ConnectRetry
	// enabled the token resolves only once the broker is reached; progress
	// is observed through the on-connect handler instead.
	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.logger.Warn("MQTT initial connection failed, retrying",
				"error", err,
				"interval", c.cfg.Reconnect.RetryInterval,
			)
		}
	}()

	return c
}

// handleConnect is called on every transition into Connected, including the
// very first connection and every reconnect.
func (c *Client) handleConnect() {
	c.setState(Connected)

	// Notify the entity layer. This callback performs discovery
	// re-registration and retained-state republishing; it runs on paho's
	// connect goroutine, which serialises it against later reconnects.
	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost. paho's retry
// timer (fixed interval, no cap escalation) re-arms automatically.
func (c *Client) handleDisconnect(err error) {
	c.setState(Disconnected)

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

func (c *Client) setState(s ConnectionState) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsConnected reports whether the supervisor is in the Connected state and
// the underlying paho client agrees.
func (c *Client) IsConnected() bool {
	c.stateMu.RLock()
	state := c.state
	c.stateMu.RUnlock()
	return state == Connected && c.client != nil && c.client.IsConnected()
}

// Close disconnects from the MQTT broker.
//
// Clean-shutdown messaging (the explicit "off" on the availability topic)
// is the presence entity's responsibility and must happen before Close is
// called; delivery is best-effort if shutdown races a reconnect.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setState(Disconnected)
	return nil
}

// HealthCheck verifies the MQTT connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// SetOnConnect sets a callback invoked on every transition into Connected,
// including the first connection and every reconnect. The entity layer uses
// this to re-register discovery and flush cached state.
//
// Connect dials before callers have a chance to register callbacks, so the
// handshake can win the race and handleConnect would find no callback to
// notify. SetOnConnect closes that gap: if the connection is already up the
// callback runs once immediately as a catch-up. The registration pass it
// drives is idempotent, so overlapping with a concurrent connect event is
// harmless.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()

	if callback != nil && c.State() == Connected {
		callback()
	}
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler wraps a MessageHandler with panic recovery and logging.
// A panicking or failing command handler must never take down the bridge.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT handler panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT handler returned error",
					"topic", msg.Topic(),
					"error", err,
				)
			}
		}
	}
}
