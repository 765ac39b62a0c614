package control

import (
	"errors"
	"fmt"
)

var (
	// ErrHardwareIO marks a failed read, write or info query on a present control
	ErrHardwareIO = errors.New("hardware i/o error")
	// ErrCapabilityAbsent marks a control or channel slot this card does not have
	ErrCapabilityAbsent = errors.New("control not present")
	// ErrRangeUnavailable marks a control without a dB table
	ErrRangeUnavailable = errors.New("dB range unavailable")
	// ErrOutOfRange marks a value outside the element's declared range
	ErrOutOfRange = errors.New("value out of range")
)

// Error describes a failed operation on a single control element
type Error struct {
	Op  string
	ID  ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op string, id ID, kind error, cause error) error {
	switch {
	case cause == nil:
		return &Error{Op: op, ID: id, Err: kind}
	case errors.Is(cause, kind):
		return &Error{Op: op, ID: id, Err: cause}
	}
	return &Error{Op: op, ID: id, Err: fmt.Errorf("%w: %w", kind, cause)}
}
