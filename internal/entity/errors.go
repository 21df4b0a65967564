package entity

import "errors"

// Sentinel errors for entity operations.
//
// Use errors.Is() to check for these errors:
//
//	if err := bridge.Add(e); errors.Is(err, entity.ErrDuplicateID) {
//	    // an entity with this ID is already registered
//	}
var (
	// ErrDuplicateID indicates an entity ID is already registered on the bridge.
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrUnknownEntity indicates the entity ID is not registered on the bridge.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidKind indicates an entity was built with an unsupported kind.
	ErrInvalidKind = errors.New("invalid entity kind")

	// ErrInvalidID indicates an entity ID is empty or not topic-safe.
	ErrInvalidID = errors.New("invalid entity id")
)
