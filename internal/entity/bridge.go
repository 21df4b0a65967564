package entity

import (
	"fmt"
	"sync"

	"github.com/nerrad567/hostlink/internal/infrastructure/mqtt"
)

// Recorder receives a copy of every successful entity state publish.
// The InfluxDB client satisfies it; a nil recorder disables history.
type Recorder interface {
	WriteEntityState(host, entityID, kind, value string)
}

// Bridge owns the entity set of one host. It keeps the device-presence
// entity first in registration order, re-announces every entity on each
// broker connect, and is the only place entities are added or removed.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Registration passes are serialized: HandleConnect holds the bridge
//     lock for the whole pass, so ordering guarantees hold even if a
//     reconnect races an Add.
type Bridge struct {
	env *env

	mu       sync.Mutex
	entities []*Entity // registration order, presence at index 0
	byID     map[string]*Entity
}

// BridgeOption customises a Bridge at construction time.
type BridgeOption func(*Bridge)

// WithLogger sets the diagnostics sink. Defaults to a no-op logger.
func WithLogger(logger Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.env.logger = logger
		}
	}
}

// WithQoS sets the QoS level for every publish and subscription.
func WithQoS(qos byte) BridgeOption {
	return func(b *Bridge) { b.env.qos = qos }
}

// WithRecorder mirrors successful state publishes into a history recorder.
func WithRecorder(recorder Recorder) BridgeOption {
	return func(b *Bridge) {
		if recorder == nil {
			return
		}
		host := b.env.topics.Host
		b.env.record = func(id, kind, state string) {
			recorder.WriteEntityState(host, id, kind, state)
		}
	}
}

// New builds a Bridge with its device-presence entity already in place.
//
// Parameters:
//   - conn: Broker connection (the supervisor, via an adapter)
//   - topics: Topic derivation for this host
//   - device: Hub-side device record shared by all entities
//   - opts: Optional logger, QoS, recorder
func New(conn Connection, topics mqtt.Topics, device DeviceInfo, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		env: &env{
			conn:   conn,
			topics: topics,
			device: device,
			qos:    1,
			logger: noopLogger{},
		},
		byID: make(map[string]*Entity),
	}
	for _, opt := range opts {
		opt(b)
	}

	presence := newPresence(device.Name)
	presence.attach(b.env)
	b.entities = []*Entity{presence}
	b.byID[presence.id] = presence
	return b
}

// Host returns the sanitised host name the bridge publishes under.
func (b *Bridge) Host() string {
	return b.env.topics.Host
}

// Add registers an entity with the bridge. IDs are unique per bridge and
// immutable once added. If the broker is already connected the entity is
// announced immediately; otherwise announcement happens on the next connect.
func (b *Bridge) Add(e *Entity) error {
	b.mu.Lock()
	if _, exists := b.byID[e.id]; exists {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.id)
	}
	e.attach(b.env)
	b.entities = append(b.entities, e)
	b.byID[e.id] = e
	b.mu.Unlock()

	if b.env.conn.IsConnected() {
		e.register()
	}
	b.env.logger.Debug("entity added", "entity", e.id, "kind", e.kind.String())
	return nil
}

// Remove deletes an entity and clears its retained broker footprint.
// Clearing is best effort: while disconnected the retained messages stay on
// the broker, but the entity will never be re-announced.
func (b *Bridge) Remove(id string) error {
	b.mu.Lock()
	e, exists := b.byID[id]
	if !exists {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	if e.presence {
		b.mu.Unlock()
		return fmt.Errorf("%w: presence entity cannot be removed", ErrUnknownEntity)
	}
	delete(b.byID, id)
	for i, candidate := range b.entities {
		if candidate == e {
			b.entities = append(b.entities[:i], b.entities[i+1:]...)
			break
		}
	}
	b.mu.Unlock()

	e.clear()
	b.env.logger.Debug("entity removed", "entity", id)
	return nil
}

// Get returns a registered entity by ID.
func (b *Bridge) Get(id string) (*Entity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byID[id]
	return e, ok
}

// Len returns the number of registered entities, presence included.
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entities)
}

// HandleConnect re-announces every entity. Wire it to the supervisor's
// SetOnConnect so it runs on every transition into Connected. Presence is
// always first: the hub sees the host come online before any discovery of
// the other entities, and each entity's discovery precedes its first state
// publish. The whole pass is idempotent.
func (b *Bridge) HandleConnect() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entities {
		e.register()
	}
	b.env.logger.Debug("registration pass complete", "entities", len(b.entities))
}

// HandleDisconnect records a lost connection. State changes made while
// disconnected stay cached and flush on the next registration pass.
func (b *Bridge) HandleDisconnect(err error) {
	b.env.logger.Debug("broker connection lost", "error", err)
}

// Shutdown marks the host offline: "off" retained on the availability
// topic, delivered only if currently connected. An unclean exit is covered
// by the broker-side last will instead.
func (b *Bridge) Shutdown() {
	if !b.env.conn.IsConnected() {
		return
	}
	topic := b.env.topics.Availability()
	if err := b.env.conn.Publish(topic, []byte(PayloadOffline), b.env.qos, true); err != nil {
		b.env.logger.Warn("offline publish failed", "error", err)
	}
}
