package msgs

import (
	"errors"
	"fmt"
)

var (
	// ErrShortFrame indicates the frame is too short to carry its command.
	ErrShortFrame = errors.New("frame too short")
	// ErrMalformedLength indicates a declared field length exceeds what the
	// frame carries or what the field allows.
	ErrMalformedLength = errors.New("malformed length")
	// ErrFixedLength indicates a fixed size frame has a different size.
	ErrFixedLength = errors.New("fixed length mismatch")
	// ErrUnknownCommand indicates the command code is not defined on the link.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrCredentialsTooLong indicates SSID or password exceeds its limit.
	ErrCredentialsTooLong = errors.New("credentials too long")
)

// LengthError reports a declared length which doesn't fit.
type LengthError struct {
	Field     string
	Declared  int
	Remaining int
}

// Error implements error.
func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: %s declares %d bytes, %d available", ErrMalformedLength, e.Field, e.Declared, e.Remaining)
}

// Unwrap implements errors.Unwrap.
func (e *LengthError) Unwrap() error { return ErrMalformedLength }

// FixedLengthError reports a frame of a fixed size command with wrong size.
type FixedLengthError struct {
	Want int
	Got  int
}

// Error implements error.
func (e *FixedLengthError) Error() string {
	return fmt.Sprintf("%v: want %d bytes, got %d", ErrFixedLength, e.Want, e.Got)
}

// Unwrap implements errors.Unwrap.
func (e *FixedLengthError) Unwrap() error { return ErrFixedLength }

// UnknownCommandError carries the unrecognized code.
type UnknownCommandError struct {
	Link string
	Code byte
}

// Error implements error.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("%v %02x on %s link", ErrUnknownCommand, e.Code, e.Link)
}

// Unwrap implements errors.Unwrap.
func (e *UnknownCommandError) Unwrap() error { return ErrUnknownCommand }
