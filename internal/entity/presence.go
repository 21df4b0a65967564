package entity

import "github.com/nerrad567/hostlink/internal/infrastructure/mqtt"

// newPresence builds the device-presence entity. Its state topic is the
// bridge-wide availability topic, so its retained "on"/"off" value doubles
// as the availability reference every other entity points at. The broker
// last will writes "off" to the same topic on unclean disconnect.
//
// Presence never carries the availability triple itself and is pinned to
// the front of the registration order by the bridge.
func newPresence(hostName string) *Entity {
	return &Entity{
		id:       "connected",
		name:     hostName + " connected",
		kind:     KindBinarySensor,
		presence: true,
		fields: func(t mqtt.Topics) map[string]any {
			return map[string]any{
				"state_topic":  t.Availability(),
				"device_class": "connectivity",
				"payload_on":   PayloadOnline,
				"payload_off":  PayloadOffline,
			}
		},
		// Presence is always "on" while the process is connected; "off"
		// is written only by Shutdown or the last will.
		state:       PayloadOnline,
		hasState:    true,
		retainState: true,
	}
}
