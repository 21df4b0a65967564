package entity

// Kind is the hub-side entity class. It selects the discovery topic segment
// and the command grammar. The set is closed: adding a kind means extending
// this list and the command wiring in the constructors.
type Kind string

// Supported entity kinds.
const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
	KindSwitch       Kind = "switch"
	KindLock         Kind = "lock"
	KindButton       Kind = "button"
	KindNumber       Kind = "number"
	KindSelect       Kind = "select"
	KindText         Kind = "text"
	KindEvent        Kind = "event"
	KindCamera       Kind = "camera"
	KindMediaPlayer  Kind = "media_player"
	KindUpdate       Kind = "update"
)

// Valid reports whether k is a supported entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSensor, KindBinarySensor, KindSwitch, KindLock, KindButton,
		KindNumber, KindSelect, KindText, KindEvent, KindCamera,
		KindMediaPlayer, KindUpdate:
		return true
	default:
		return false
	}
}

// String returns the discovery topic segment for the kind.
func (k Kind) String() string {
	return string(k)
}
