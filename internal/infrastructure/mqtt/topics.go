package mqtt

import "fmt"

// Topics derives every topic the bridge uses from the host name and the
// hub's discovery prefix. Derivation is pure and deterministic: the same
// host and entity ID always map to the same topics, which is what makes
// discovery re-registration idempotent.
//
//	topics := mqtt.Topics{Host: "workstation", DiscoveryPrefix: "homeassistant"}
//	topics.State("battery_bat0")   // "workstation/battery_bat0"
//	topics.Command("night_mode")   // "workstation/night_mode/set"
type Topics struct {
	// Host is the sanitised machine name, the first segment of every
	// state/command topic owned by this bridge.
	Host string

	// DiscoveryPrefix is the topic root the hub watches for discovery
	// config messages. Home Assistant's default is "homeassistant".
	DiscoveryPrefix string
}

// State returns the retained state topic for an entity.
//
// Example: workstation/battery_bat0
func (t Topics) State(id string) string {
	return fmt.Sprintf("%s/%s", t.Host, id)
}

// Command returns the default command topic for an entity.
//
// Example: workstation/night_mode/set
func (t Topics) Command(id string) string {
	return t.CommandSuffix(id, "set")
}

// CommandSuffix returns a kind-specific command topic for an entity.
//
// Example: workstation/media/play
func (t Topics) CommandSuffix(id, suffix string) string {
	return fmt.Sprintf("%s/%s/%s", t.Host, id, suffix)
}

// Attributes returns the retained attributes topic for an entity.
//
// Example: workstation/battery_bat0/attributes
func (t Topics) Attributes(id string) string {
	return fmt.Sprintf("%s/%s/attributes", t.Host, id)
}

// Availability returns the bridge-wide availability topic. Every entity's
// discovery payload points its availability reference here, and the last
// will is registered against it.
//
// Example: workstation/connected
func (t Topics) Availability() string {
	return fmt.Sprintf("%s/connected", t.Host)
}

// Discovery returns the retained discovery config topic for an entity.
//
// Example: homeassistant/sensor/workstation/battery_bat0/config
func (t Topics) Discovery(kind, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", t.DiscoveryPrefix, kind, t.Host, id)
}

// UniqueID returns the hub-side unique identifier for an entity.
//
// Example: workstation_battery_bat0
func (t Topics) UniqueID(id string) string {
	return fmt.Sprintf("%s_%s", t.Host, id)
}
