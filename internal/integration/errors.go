package integration

import "errors"

// Sentinel errors for the integration registry.
var (
	// ErrDuplicateName indicates an integration name was registered twice.
	ErrDuplicateName = errors.New("integration already registered")

	// ErrInvalidRegistration indicates a registration with a missing name
	// or activation.
	ErrInvalidRegistration = errors.New("invalid integration registration")

	// ErrMissingPrerequisite is returned by activations when the host lacks
	// a tool or resource the integration needs. The registry logs it and
	// moves on; it is not a failure.
	ErrMissingPrerequisite = errors.New("integration prerequisite missing")
)
