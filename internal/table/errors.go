package table

import (
	"errors"
	"fmt"
)

var (
	ErrTypeCoercion  = errors.New("type coercion")
	ErrUnknownColumn = errors.New("unknown column")
)

// CoercionError reports a cell that could not be read as a number.
type CoercionError struct {
	Column string
	Row    int
	Value  any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("type coercion: column %q row %d: %v (%T) is not numeric", e.Column, e.Row, e.Value, e.Value)
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrTypeCoercion
}
