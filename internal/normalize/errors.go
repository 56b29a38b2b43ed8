package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidJSON  = errors.New("invalid json")
)

// FieldError names the JSON path of a required field that was absent or of
// the wrong shape.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing field %s", e.Path)
	}
	return fmt.Sprintf("missing field %s: %s", e.Path, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrMissingField
}
