// Package entity implements the hub-facing entity contract: discovery
// announcements, retained state mirroring, and command routing for every
// piece of host state the bridge exposes.
//
// An Entity is built by a kind-specific constructor (NewSensor, NewSwitch,
// NewMediaPlayer, ...) and activated by adding it to a Bridge. The Bridge
// owns registration order and re-announces everything on each broker
// connect: the device-presence entity first, then each entity's discovery
// config, cached state, attributes, and command subscriptions. Every
// publish in the pass is retained on a deterministic topic with a
// deterministic payload, so repeating the pass is harmless. The one
// exception is event state, which is fire-once: published non-retained and
// never flushed on reconnect.
//
// State setters always cache locally and publish only while the broker is
// connected; cached values flush on the next connect. Command payloads are
// parsed strictly per kind and malformed payloads are logged and dropped
// without mutating anything.
package entity
