package transport

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for transport failure categories.
var (
	// ErrTransportClosed indicates an operation was attempted on a closed transport.
	ErrTransportClosed = errors.New("transport is closed")
	// ErrMessageTooLarge signifies a message exceeded MaxMessageSize.
	ErrMessageTooLarge = errors.New("message exceeds maximum size")
)

// NewClosedError wraps ErrTransportClosed with the operation that failed.
func NewClosedError(op string) error {
	return errors.Wrapf(ErrTransportClosed, "%s on closed transport", op)
}

// NewMessageTooLargeError wraps ErrMessageTooLarge with the observed size.
func NewMessageTooLargeError(size int) error {
	return errors.Wrap(ErrMessageTooLarge, fmt.Sprintf("message size %d exceeds limit %d", size, MaxMessageSize))
}
