package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is returned for lookups of unregistered types when
	// strict mode is enabled. Callers may pre-register the type through
	// Initialize and retry.
	ErrUnknownEntity = errors.New("unknown persistent entity")

	// ErrNotAnEntity is returned when an entity is requested for a type
	// that is not eligible for entity mapping: one the active simple-type
	// policy classifies as terminal, or a container/object type. Such
	// types are never decomposed into properties.
	ErrNotAnEntity = errors.New("type is not eligible for entity mapping")
)

// InvalidPathError indicates a dotted path segment that does not exist on
// the entity being navigated.
type InvalidPathError struct {
	Path    string
	Segment string
	Entity  string
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: no property %q on entity %s", e.Path, e.Segment, e.Entity)
}

// VerificationError indicates a structurally invalid entity. The half-built
// entity has been evicted from the cache by the time this error reaches the
// caller.
type VerificationError struct {
	Entity string
	Err    error
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("entity %s failed verification: %v", e.Entity, e.Err)
}

// Unwrap exposes the underlying validation failure(s).
func (e *VerificationError) Unwrap() error {
	return e.Err
}
