package scanner

import "errors"

var (
	// ErrScanStarted is returned when Run is called on an orchestrator that
	// has already left the Idle state.
	ErrScanStarted = errors.New("scanner: scan already started")

	// ErrUnknownScanType is returned by ParseScanType.
	ErrUnknownScanType = errors.New("scanner: unknown scan type")
)
