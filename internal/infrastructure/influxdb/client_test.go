package influxdb

import (
	"errors"
	"testing"

	"github.com/nerrad567/hostlink/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	cfg := config.InfluxDBConfig{Enabled: false}

	client, err := Connect(cfg)
	if client != nil {
		t.Error("expected nil client when disabled")
	}
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	cfg := config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:1", // nothing listens here
		Token:   "test",
		Org:     "test",
		Bucket:  "test",
	}

	client, err := Connect(cfg)
	if client != nil {
		client.Close()
		t.Fatal("expected connection failure")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", err)
	}
}

func TestWriteOnClosedClientIsNoOp(t *testing.T) {
	// A zero-value client reports not connected; writes must not panic.
	c := &Client{}

	if c.IsConnected() {
		t.Fatal("zero-value client should not report connected")
	}
	c.WriteEntityState("host", "battery_level", "sensor", "87")
	c.WriteConnectionEvent("host", false)
	c.Flush()
	if err := c.Close(); err != nil {
		t.Errorf("close on zero-value client: %v", err)
	}
}
