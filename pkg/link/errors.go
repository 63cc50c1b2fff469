package link

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates nothing was received within the wait window.
	ErrTimeout = errors.New("transport timeout")
	// ErrChecksum indicates the frame bytes do not sum to 0xFF.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrNoTerminator indicates the frame doesn't end with "\r\n".
	ErrNoTerminator = errors.New("missing frame terminator")
	// ErrFrameTooLarge indicates the frame exceeded the buffer capacity
	// and was truncated.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrLinkUnreachable indicates the peer never acknowledged a frame.
	ErrLinkUnreachable = errors.New("link unreachable")
)

// UnreachableError is returned by Sender when the retry policy is exhausted.
type UnreachableError struct {
	Attempts int
}

// Error implements error.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%v after %d attempts", ErrLinkUnreachable, e.Attempts)
}

// Unwrap makes errors.Is(err, ErrLinkUnreachable) work.
func (e *UnreachableError) Unwrap() error {
	return ErrLinkUnreachable
}
