package target

import "errors"

var (
	// ErrInvalidTarget is returned for URLs that cannot be parsed or lack a host.
	ErrInvalidTarget = errors.New("target: invalid URL")

	// ErrUnsupportedScheme is returned when the scheme is missing or is not
	// http/https.
	ErrUnsupportedScheme = errors.New("target: scheme must be http or https")
)
