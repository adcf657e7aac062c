package schema

import "errors"

var (
	// ErrInvalidServer indicates an invalid server identifier.
	ErrInvalidServer = errors.New("invalid server")
	// ErrServerNotFound indicates a requested server could not be found.
	ErrServerNotFound = errors.New("server not found")
	// ErrSessionDetached indicates an operation on a detached session.
	ErrSessionDetached = errors.New("session detached")
	// ErrSupervisorUnavailable indicates no process supervisor is configured.
	ErrSupervisorUnavailable = errors.New("supervisor not configured")
	// ErrEmptyCommand indicates a submitted command was empty after trimming.
	ErrEmptyCommand = errors.New("empty command")
)
