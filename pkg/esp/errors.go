package esp

import "errors"

var (
	// ErrDuplicateProvider is returned by Register on a case-insensitive name collision.
	ErrDuplicateProvider = errors.New("provider already registered")

	// ErrProviderNotFound is returned when a name does not match a registered provider.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrNoActiveProvider is returned by Active when no provider has been activated.
	ErrNoActiveProvider = errors.New("no active provider configured")

	// ErrInvalidDescriptor is returned when a descriptor is missing its name.
	ErrInvalidDescriptor = errors.New("provider descriptor must have a name")
)
