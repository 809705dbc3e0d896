package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a referenced id that is absent.
	ErrNotFound = errors.New("registry: not found")
	// ErrConflict reports a request that would break a directory invariant.
	ErrConflict = errors.New("registry: conflict")
	// ErrValidation reports malformed or missing caller input.
	ErrValidation = errors.New("registry: validation failure")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
