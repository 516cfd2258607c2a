package typeinfo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAMap is returned when a map-position query is made against a
	// type that is not map-like.
	ErrNotAMap = errors.New("type is not map-like")
)

// ResolutionError indicates a raw type expression the resolver could not
// classify: a malformed supertype declaration, an unsupported expression
// kind, or a type-variable binding cycle. It signals a mapping-definition
// mistake and is never retried.
type ResolutionError struct {
	Expr   string
	Reason string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve type %s: %s", e.Expr, e.Reason)
}

// PropertyNotFoundError indicates that a named field does not exist on the
// type being navigated. It carries the offending segment and the owning
// type name for diagnostics.
type PropertyNotFoundError struct {
	Owner   string
	Segment string
}

// Error implements the error interface.
func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("no property %q on type %s", e.Segment, e.Owner)
}
