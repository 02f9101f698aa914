package mail

import "github.com/hupe1980/meshcore/errors"

var (
	// ErrInvalidPackage is returned when a package fails validation.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrInvalidTransition is returned when a package is used out of order,
	// e.g. sent twice or received after delivery.
	ErrInvalidTransition = errors.New("invalid package transition")

	// ErrUnknownSource is returned by the Manager for identifiers that are
	// not registered mailboxes.
	ErrUnknownSource = errors.New("unknown source")
)
