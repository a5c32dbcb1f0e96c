package workerreg

import (
	"errors"
	"fmt"
)

// Sentinel errors for starting and addressing a registry.
var (
	// ErrIdentityInUse indicates another running registry holds the identity.
	ErrIdentityInUse = errors.New("registry identity already in use")

	// ErrEmptyIdentity indicates Start was called with an empty identity.
	ErrEmptyIdentity = errors.New("registry identity cannot be empty")

	// ErrNotRunning indicates the registry's coordinator is stopped or the
	// identity is not registered.
	ErrNotRunning = errors.New("registry is not running")
)

// Sentinel errors for create requests.
var (
	// ErrEmptyName indicates Create was called with an empty name.
	ErrEmptyName = errors.New("worker name cannot be empty")
)

// StartError reports a failed Start.
type StartError struct {
	// Identity is the identity that could not be claimed.
	Identity string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("start registry %q: %v", e.Identity, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StartError) Unwrap() error {
	return e.Err
}

// CreateError reports a worker that could not be spawned for a name.
// The registry is left unchanged.
type CreateError struct {
	// Identity is the registry that handled the request.
	Identity string
	// Name is the requested worker name.
	Name string
	// Err is the spawn error, unchanged.
	Err error
}

// Error implements the error interface.
func (e *CreateError) Error() string {
	return fmt.Sprintf("registry %q: create %q: %v", e.Identity, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CreateError) Unwrap() error {
	return e.Err
}
