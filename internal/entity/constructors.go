package entity

import (
	"fmt"
	"strconv"

	"github.com/nerrad567/hostlink/internal/infrastructure/mqtt"
)

// Option customises an entity's discovery payload at construction time.
type Option func(*Entity)

// WithDeviceClass sets the hub-side device_class discovery field.
func WithDeviceClass(class string) Option {
	return WithField("device_class", class)
}

// WithUnit sets the unit_of_measurement discovery field.
func WithUnit(unit string) Option {
	return WithField("unit_of_measurement", unit)
}

// WithIcon sets the icon discovery field.
func WithIcon(icon string) Option {
	return WithField("icon", icon)
}

// WithStateClass sets the state_class discovery field (sensors only).
func WithStateClass(class string) Option {
	return WithField("state_class", class)
}

// WithField sets an arbitrary discovery field, overriding any field of the
// same name produced by the constructor.
func WithField(key string, value any) Option {
	return func(e *Entity) {
		prev := e.fields
		e.fields = func(t mqtt.Topics) map[string]any {
			fields := prev(t)
			fields[key] = value
			return fields
		}
	}
}

// newEntity builds the common entity core. Constructors layer kind-specific
// discovery fields and command bindings on top.
func newEntity(id, name string, kind Kind, fields func(t mqtt.Topics, id string) map[string]any, opts ...Option) (*Entity, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	e := &Entity{
		id:          id,
		name:        name,
		kind:        kind,
		retainState: kind != KindEvent,
		fields: func(t mqtt.Topics) map[string]any {
			return fields(t, id)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// stateOnly is the discovery field set shared by read-only entities.
func stateOnly(t mqtt.Topics, id string) map[string]any {
	return map[string]any{
		"state_topic":           t.State(id),
		"json_attributes_topic": t.Attributes(id),
	}
}

// NewSensor builds a read-only sensor entity.
func NewSensor(id, name string, opts ...Option) (*Entity, error) {
	return newEntity(id, name, KindSensor, stateOnly, opts...)
}

// NewBinarySensor builds a read-only binary sensor. State payloads are
// "true"/"false".
func NewBinarySensor(id, name string, opts ...Option) (*Entity, error) {
	return newEntity(id, name, KindBinarySensor, func(t mqtt.Topics, id string) map[string]any {
		fields := stateOnly(t, id)
		fields["payload_on"] = "true"
		fields["payload_off"] = "false"
		return fields
	}, opts...)
}

// NewSwitch builds a switch entity. The hub publishes "true"/"false" on the
// command topic; each well-formed command invokes stateChangeRequested
// exactly once. Malformed payloads are logged and dropped.
func NewSwitch(id, name string, stateChangeRequested func(on bool), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindSwitch, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":           t.State(id),
			"command_topic":         t.Command(id),
			"json_attributes_topic": t.Attributes(id),
			"payload_on":            "true",
			"payload_off":           "false",
			"state_on":              "true",
			"state_off":             "false",
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: e.boolCommand(stateChangeRequested)}}
	return e, nil
}

// NewLock builds a lock entity. Commands follow the same boolean grammar as
// switches: "true" locks, "false" unlocks.
func NewLock(id, name string, stateChangeRequested func(locked bool), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindLock, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":           t.State(id),
			"command_topic":         t.Command(id),
			"json_attributes_topic": t.Attributes(id),
			"payload_lock":          "true",
			"payload_unlock":        "false",
			"state_locked":          "true",
			"state_unlocked":        "false",
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: e.boolCommand(stateChangeRequested)}}
	return e, nil
}

// NewButton builds a stateless button entity. Any publish on the command
// topic invokes pressed.
func NewButton(id, name string, pressed func(), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindButton, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"command_topic": t.Command(id),
			"payload_press": "press",
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: func(string) { pressed() }}}
	return e, nil
}

// NewNumber builds a numeric input entity. Well-formed command payloads
// invoke valueChangeRequested; non-numeric payloads are logged and dropped.
func NewNumber(id, name string, min, max, step float64, valueChangeRequested func(value float64), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindNumber, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":   t.State(id),
			"command_topic": t.Command(id),
			"min":           min,
			"max":           max,
			"step":          step,
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: func(payload string) {
		value, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			e.warnDropped(payload, "not a number")
			return
		}
		valueChangeRequested(value)
	}}}
	return e, nil
}

// NewSelect builds a select entity over a fixed option list. Payloads
// outside the list are logged and dropped.
func NewSelect(id, name string, options []string, optionSelected func(option string), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindSelect, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":   t.State(id),
			"command_topic": t.Command(id),
			"options":       options,
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: func(payload string) {
		for _, opt := range options {
			if payload == opt {
				optionSelected(payload)
				return
			}
		}
		e.warnDropped(payload, "not an option")
	}}}
	return e, nil
}

// NewText builds a free-text input entity. Every command payload is passed
// through unmodified.
func NewText(id, name string, textChangeRequested func(text string), opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindText, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":   t.State(id),
			"command_topic": t.Command(id),
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	e.commands = []commandBinding{{suffix: "set", handler: textChangeRequested}}
	return e, nil
}

// NewEvent builds an event entity. Events are fired with SetState carrying
// a JSON payload that names the event_type. Event states are published
// non-retained and are not flushed on reconnect: an event happens once and
// must never be replayed to the hub by the broker.
func NewEvent(id, name string, eventTypes []string, opts ...Option) (*Entity, error) {
	return newEntity(id, name, KindEvent, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic": t.State(id),
			"event_types": eventTypes,
		}
	}, opts...)
}

// NewCamera builds a camera entity. The state topic carries raw image bytes.
func NewCamera(id, name string, opts ...Option) (*Entity, error) {
	return newEntity(id, name, KindCamera, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"topic": t.State(id),
		}
	}, opts...)
}

// NewUpdate builds an update entity. State payloads are JSON documents with
// installed_version/latest_version fields.
func NewUpdate(id, name string, opts ...Option) (*Entity, error) {
	return newEntity(id, name, KindUpdate, stateOnly, opts...)
}

// MediaCommands are the per-command callbacks of a media player entity.
// Nil callbacks leave the corresponding command topic unbound.
type MediaCommands struct {
	Play     func()
	Pause    func()
	Stop     func()
	Next     func()
	Previous func()
}

// NewMediaPlayer builds an aggregated media player entity. State is a
// composite JSON document; commands arrive on per-action sibling topics
// (<host>/<id>/play, /pause, /stop, /next, /previous).
func NewMediaPlayer(id, name string, cmds MediaCommands, opts ...Option) (*Entity, error) {
	e, err := newEntity(id, name, KindMediaPlayer, func(t mqtt.Topics, id string) map[string]any {
		return map[string]any{
			"state_topic":           t.State(id),
			"json_attributes_topic": t.Attributes(id),
			"play_topic":            t.CommandSuffix(id, "play"),
			"pause_topic":           t.CommandSuffix(id, "pause"),
			"stop_topic":            t.CommandSuffix(id, "stop"),
			"next_topic":            t.CommandSuffix(id, "next"),
			"previous_topic":        t.CommandSuffix(id, "previous"),
		}
	}, opts...)
	if err != nil {
		return nil, err
	}

	bind := func(suffix string, fn func()) {
		if fn == nil {
			return
		}
		e.commands = append(e.commands, commandBinding{suffix: suffix, handler: func(string) { fn() }})
	}
	bind("play", cmds.Play)
	bind("pause", cmds.Pause)
	bind("stop", cmds.Stop)
	bind("next", cmds.Next)
	bind("previous", cmds.Previous)
	return e, nil
}

// boolCommand wraps a boolean callback with strict payload parsing.
// Anything strconv.ParseBool rejects is logged and dropped.
func (e *Entity) boolCommand(fn func(bool)) func(payload string) {
	return func(payload string) {
		value, err := strconv.ParseBool(payload)
		if err != nil {
			e.warnDropped(payload, "not a boolean")
			return
		}
		fn(value)
	}
}
