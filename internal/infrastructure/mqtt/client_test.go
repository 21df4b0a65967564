package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/hostlink/internal/infrastructure/config"
)

// testLogger captures log calls for assertions.
type testLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
	debugs []string
}

func (l *testLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *testLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *testLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "hostlink-test",
			TLS:      false,
		},
		QoS: 1,
		Discovery: config.MQTTDiscoveryConfig{
			Prefix: "homeassistant",
		},
		Reconnect: config.MQTTReconnectConfig{
			RetryInterval: 1,
			KeepAlive:     5,
		},
	}
}

// =============================================================================
// Misconfiguration Tests
// =============================================================================

func TestConnect_EmptyHostStaysDisconnected(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = ""
	log := &testLogger{}

	client := Connect(cfg, WillMessage{}, log)

	if client == nil {
		t.Fatal("Connect() returned nil for empty host, want degraded client")
	}
	if client.State() != Disconnected {
		t.Errorf("State() = %v, want Disconnected", client.State())
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true for empty host, want false")
	}
	if log.errorCount() == 0 {
		t.Error("expected a startup diagnostic for empty broker host")
	}
}

func TestConnect_EmptyHostPublishIsNoOp(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = ""
	client := Connect(cfg, WillMessage{}, &testLogger{})

	// Publishing while disconnected is a silent no-op, not an error.
	if err := client.Publish("host/sensor", []byte("1"), 1, true); err != nil {
		t.Errorf("Publish() while disconnected error = %v, want nil", err)
	}
}

func TestConnect_EmptyHostCloseIsSafe(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = ""
	client := Connect(cfg, WillMessage{}, &testLogger{})

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

// =============================================================================
// Disconnected Behaviour Tests
// =============================================================================

func disconnectedClient() *Client {
	return &Client{
		state:         Disconnected,
		subscriptions: make(map[string]subscription),
	}
}

func TestPublish_DisconnectedIsNoOp(t *testing.T) {
	client := disconnectedClient()

	if err := client.Publish("host/sensor", []byte("21.5"), 1, true); err != nil {
		t.Errorf("Publish() error = %v, want nil (silent no-op)", err)
	}
}

func TestPublish_EmptyTopic(t *testing.T) {
	client := disconnectedClient()

	err := client.Publish("", []byte("x"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublish_InvalidQoS(t *testing.T) {
	client := disconnectedClient()

	err := client.Publish("host/sensor", []byte("x"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublish_OversizedPayload(t *testing.T) {
	client := disconnectedClient()

	big := make([]byte, maxPayloadSize+1)
	err := client.Publish("host/camera", big, 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribe_Disconnected(t *testing.T) {
	client := disconnectedClient()

	err := client.Subscribe("host/switch/set", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribe_EmptyTopic(t *testing.T) {
	client := disconnectedClient()

	err := client.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribe_NilHandler(t *testing.T) {
	client := disconnectedClient()

	err := client.Subscribe("host/switch/set", 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() error = %v, want ErrSubscribeFailed", err)
	}
}

func TestUnsubscribe_Disconnected(t *testing.T) {
	client := disconnectedClient()

	err := client.Unsubscribe("host/switch/set")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	client := disconnectedClient()

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := disconnectedClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.HealthCheck(ctx)
	if err == nil || errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want context error", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

// =============================================================================
// State Tests
// =============================================================================

func TestConnectionStateString(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{Disconnected, "disconnected"},
		{Connecting, "connecting"},
		{Connected, "connected"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ConnectionState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	client := disconnectedClient()

	client.setState(Connecting)
	if client.State() != Connecting {
		t.Errorf("State() = %v, want Connecting", client.State())
	}

	client.setState(Connected)
	if client.State() != Connected {
		t.Errorf("State() = %v, want Connected", client.State())
	}

	// IsConnected also consults the paho client, which is absent here.
	if client.IsConnected() {
		t.Error("IsConnected() = true without underlying client, want false")
	}
}

func TestOnConnectCallback_DrivenByHandler(t *testing.T) {
	client := disconnectedClient()

	var calls int
	client.SetOnConnect(func() { calls++ })

	// Simulate two broker connect events (initial + reconnect).
	client.handleConnect()
	client.handleConnect()

	if calls != 2 {
		t.Errorf("onConnect callback fired %d times, want 2 (once per connect event)", calls)
	}
	if client.State() != Connected {
		t.Errorf("State() = %v, want Connected", client.State())
	}
}

func TestOnConnectCallback_RegisteredAfterConnect(t *testing.T) {
	client := disconnectedClient()

	// The handshake completes before anyone registered a callback.
	client.handleConnect()

	var calls int
	client.SetOnConnect(func() { calls++ })

	// Late registration must still trigger one catch-up invocation, or the
	// registration pass would never run until an unrelated reconnect.
	if calls != 1 {
		t.Fatalf("onConnect callback fired %d times after late registration, want 1 catch-up", calls)
	}

	// Subsequent connect events keep notifying as usual.
	client.handleConnect()
	if calls != 2 {
		t.Errorf("onConnect callback fired %d times, want 2", calls)
	}
}

func TestOnConnectCallback_NoCatchUpWhileDisconnected(t *testing.T) {
	client := disconnectedClient()

	var calls int
	client.SetOnConnect(func() { calls++ })

	if calls != 0 {
		t.Errorf("onConnect callback fired %d times before any connect event", calls)
	}
}

func TestOnDisconnectCallback(t *testing.T) {
	client := disconnectedClient()
	client.setState(Connected)

	var gotErr error
	client.SetOnDisconnect(func(err error) { gotErr = err })

	wantErr := errors.New("connection reset")
	client.handleDisconnect(wantErr)

	if client.State() != Disconnected {
		t.Errorf("State() = %v, want Disconnected", client.State())
	}
	if !errors.Is(gotErr, wantErr) {
		t.Errorf("onDisconnect error = %v, want %v", gotErr, wantErr)
	}
}

// =============================================================================
// Subscription Tracking Tests
// =============================================================================

func TestSubscriptionCount_Empty(t *testing.T) {
	client := disconnectedClient()

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	client := disconnectedClient()

	if client.HasSubscription("nonexistent/topic") {
		t.Error("HasSubscription() should be false for unsubscribed topic")
	}
}
