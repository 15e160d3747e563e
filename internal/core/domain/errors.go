package domain

import "errors"

// Error taxonomy shared by both backends. Adapters and core services wrap
// these so the transport layer can classify failures with errors.Is.
var (
	// ErrNotFound means the requested container or unit does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable means no backend session could be established.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrBackend means the backend rejected or failed an operation.
	ErrBackend = errors.New("backend operation failed")
	// ErrInvalidCommand means a service command outside the closed set.
	ErrInvalidCommand = errors.New("invalid service command")
)
