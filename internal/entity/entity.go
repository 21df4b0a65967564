package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nerrad567/hostlink/internal/infrastructure/mqtt"
)

// Connection is the broker surface the entity layer depends on. The
// supervisor satisfies it through a thin adapter in cmd/hostlink; tests
// substitute a fake that records publish traces.
type Connection interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is provided.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// env is the shared registration environment an entity receives when added
// to a bridge. Entities created but not yet added have a nil env and cache
// state locally only.
type env struct {
	conn   Connection
	topics mqtt.Topics
	device DeviceInfo
	qos    byte
	logger Logger
	record func(id, kind, state string)
}

// commandBinding maps one command topic suffix to its payload handler.
type commandBinding struct {
	suffix  string
	handler func(payload string)
}

// Entity is one exposed piece of host state: a retained discovery
// announcement, a retained state topic, and zero or more command topics.
//
// Entities are built by the kind-specific constructors (NewSensor,
// NewSwitch, ...) and activated by Bridge.Add. Registration with the hub
// happens on every broker connect and is idempotent: topics and payloads
// are pure functions of the entity's identity and cached state.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Entity struct {
	id   string
	name string
	kind Kind

	// fields produces the kind-specific discovery fields. Topic references
	// are derived at registration time so the payload is deterministic.
	fields func(t mqtt.Topics) map[string]any

	// commands are the command topic bindings, re-subscribed on every connect.
	commands []commandBinding

	// presence marks the bridge availability entity. It skips the
	// availability triple in its own discovery payload and must register
	// before every other entity.
	presence bool

	// retainState controls whether state publishes are retained. Most
	// kinds retain so the hub can recover state from the broker; events
	// are fire-once and must not be replayed on reconnect.
	retainState bool

	mu         sync.Mutex
	env        *env
	state      string
	hasState   bool
	attributes map[string]any
}

// ID returns the entity identifier.
func (e *Entity) ID() string { return e.id }

// Name returns the entity display name.
func (e *Entity) Name() string { return e.name }

// Kind returns the entity kind.
func (e *Entity) Kind() Kind { return e.kind }

// validateID checks that an ID is non-empty and topic-safe.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, "+#/ ") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidID, id)
	}
	return nil
}

// SetState updates the entity state. The value is always cached locally;
// it is published (retained for every kind except event) only while the
// broker connection is up. A cached retained value is flushed by the
// registration pass on the next connect.
func (e *Entity) SetState(state string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	e.hasState = true
	e.publishStateLocked()
}

// SetBoolState is SetState with a boolean payload ("true"/"false").
func (e *Entity) SetBoolState(on bool) {
	e.SetState(strconv.FormatBool(on))
}

// SetAttributes replaces the entity's attribute set. Attributes are cached
// locally and published retained as JSON only while connected.
func (e *Entity) SetAttributes(attrs map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attributes = attrs
	e.publishAttributesLocked()
}

// State returns the cached state and whether one has been set.
func (e *Entity) State() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.hasState
}

// attach binds the entity to a bridge's registration environment.
func (e *Entity) attach(env *env) {
	e.mu.Lock()
	e.env = env
	e.mu.Unlock()
}

// register announces the entity to the hub: discovery config first, then
// the cached retained state and attributes, then command subscriptions.
// Called with the broker connected, on every connect, and when the entity
// is added to an already-connected bridge. Safe to repeat: every publish is
// retained on a deterministic topic with a deterministic payload, and
// non-retained (event) state is skipped entirely.
func (e *Entity) register() {
	e.mu.Lock()
	defer e.mu.Unlock()

	env := e.env
	if env == nil {
		return
	}

	payload, err := e.discoveryPayloadLocked()
	if err != nil {
		env.logger.Warn("discovery payload marshal failed", "entity", e.id, "error", err)
		return
	}
	topic := env.topics.Discovery(e.kind.String(), e.id)
	if err := env.conn.Publish(topic, payload, env.qos, true); err != nil {
		env.logger.Warn("discovery publish failed", "entity", e.id, "error", err)
	}

	// Non-retained state is fire-once; flushing it here would replay the
	// last occurrence on every reconnect.
	if e.retainState {
		e.publishStateLocked()
	}
	e.publishAttributesLocked()

	for _, cmd := range e.commands {
		cmdTopic := env.topics.CommandSuffix(e.id, cmd.suffix)
		handler := cmd.handler
		err := env.conn.Subscribe(cmdTopic, env.qos, func(_ string, payload []byte) error {
			handler(string(payload))
			return nil
		})
		if err != nil {
			env.logger.Warn("command subscribe failed", "entity", e.id, "topic", cmdTopic, "error", err)
		}
	}
}

// publishStateLocked publishes the cached state retained if connected.
// Callers must hold e.mu.
func (e *Entity) publishStateLocked() {
	env := e.env
	if env == nil || !e.hasState || !env.conn.IsConnected() {
		return
	}
	topic := env.topics.State(e.id)
	if err := env.conn.Publish(topic, []byte(e.state), env.qos, e.retainState); err != nil {
		env.logger.Warn("state publish failed", "entity", e.id, "error", err)
		return
	}
	if env.record != nil {
		env.record(e.id, e.kind.String(), e.state)
	}
}

// publishAttributesLocked publishes the cached attributes retained if connected.
// Callers must hold e.mu.
func (e *Entity) publishAttributesLocked() {
	env := e.env
	if env == nil || e.attributes == nil || !env.conn.IsConnected() {
		return
	}
	payload, err := json.Marshal(e.attributes)
	if err != nil {
		env.logger.Warn("attributes marshal failed", "entity", e.id, "error", err)
		return
	}
	topic := env.topics.Attributes(e.id)
	if err := env.conn.Publish(topic, payload, env.qos, true); err != nil {
		env.logger.Warn("attributes publish failed", "entity", e.id, "error", err)
	}
}

// clear removes the entity's retained footprint from the broker: empty
// retained publishes on the discovery, state and attributes topics, and
// unsubscribes its command topics. Best effort; only possible while
// connected.
func (e *Entity) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	env := e.env
	if env == nil {
		return
	}

	for _, cmd := range e.commands {
		if err := env.conn.Unsubscribe(env.topics.CommandSuffix(e.id, cmd.suffix)); err != nil {
			env.logger.Debug("command unsubscribe failed", "entity", e.id, "error", err)
		}
	}

	if !env.conn.IsConnected() {
		return
	}
	for _, topic := range []string{
		env.topics.Discovery(e.kind.String(), e.id),
		env.topics.State(e.id),
		env.topics.Attributes(e.id),
	} {
		if err := env.conn.Publish(topic, nil, env.qos, true); err != nil {
			env.logger.Debug("retained clear failed", "entity", e.id, "topic", topic, "error", err)
		}
	}
}

// warnDropped logs a rejected command payload. The command mutates nothing.
func (e *Entity) warnDropped(payload, reason string) {
	e.mu.Lock()
	env := e.env
	e.mu.Unlock()

	logger := Logger(noopLogger{})
	if env != nil {
		logger = env.logger
	}
	logger.Warn("command payload rejected", "entity", e.id, "payload", payload, "reason", reason)
}
