package entity

import "encoding/json"

// Availability payloads shared by the device-presence entity, the broker
// last will, and every discovery payload's availability triple.
const (
	PayloadOnline  = "on"
	PayloadOffline = "off"
)

// DeviceInfo is the hub-side device record every entity of this bridge is
// grouped under. One bridge process is one device.
type DeviceInfo struct {
	Identifiers  []string
	Name         string
	Manufacturer string
	Model        string
	SWVersion    string
}

// payload renders the device block of a discovery message.
func (d DeviceInfo) payload() map[string]any {
	block := map[string]any{
		"identifiers": d.Identifiers,
		"name":        d.Name,
	}
	if d.Manufacturer != "" {
		block["manufacturer"] = d.Manufacturer
	}
	if d.Model != "" {
		block["model"] = d.Model
	}
	if d.SWVersion != "" {
		block["sw_version"] = d.SWVersion
	}
	return block
}

// discoveryPayloadLocked renders the retained discovery config message:
// the kind-specific fields plus identity, the shared device block, and the
// availability triple. The presence entity omits the triple so it never
// reports availability through itself. Callers must hold e.mu.
func (e *Entity) discoveryPayloadLocked() ([]byte, error) {
	env := e.env

	payload := map[string]any{}
	if e.fields != nil {
		for k, v := range e.fields(env.topics) {
			payload[k] = v
		}
	}

	payload["name"] = e.name
	payload["unique_id"] = env.topics.UniqueID(e.id)
	payload["device"] = env.device.payload()

	if !e.presence {
		payload["availability_topic"] = env.topics.Availability()
		payload["payload_available"] = PayloadOnline
		payload["payload_not_available"] = PayloadOffline
	}

	return json.Marshal(payload)
}
