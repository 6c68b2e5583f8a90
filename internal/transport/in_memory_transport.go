package transport

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// InMemoryTransport implements Transport using in-memory channels. It exists
// for testing, letting two transport instances communicate without real I/O.
type InMemoryTransport struct {
	incoming chan []byte
	outgoing chan []byte

	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
}

// InMemoryTransportPair holds two linked InMemoryTransport instances. Messages
// written to one side can be read from the other.
type InMemoryTransportPair struct {
	ClientTransport *InMemoryTransport
	ServerTransport *InMemoryTransport
}

// NewInMemoryTransportPair creates a connected pair of in-memory transports.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)

	return &InMemoryTransportPair{
		ClientTransport: &InMemoryTransport{
			incoming: serverToClient,
			outgoing: clientToServer,
			done:     make(chan struct{}),
		},
		ServerTransport: &InMemoryTransport{
			incoming: clientToServer,
			outgoing: serverToClient,
			done:     make(chan struct{}),
		},
	}
}

// ReadMessage blocks until a message arrives, the context is canceled, or the
// transport is closed.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if t.isClosed() {
		return nil, NewClosedError("ReadMessage")
	}
	select {
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, NewClosedError("ReadMessage")
		}
		return msg, nil
	case <-t.done:
		return nil, NewClosedError("ReadMessage")
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "read canceled")
	}
}

// WriteMessage delivers the message to the paired transport.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	if t.isClosed() {
		return NewClosedError("WriteMessage")
	}
	if len(message) > MaxMessageSize {
		return NewMessageTooLargeError(len(message))
	}
	// Copy so callers may reuse the buffer after the call returns.
	msg := make([]byte, len(message))
	copy(msg, message)

	select {
	case t.outgoing <- msg:
		return nil
	case <-t.done:
		return NewClosedError("WriteMessage")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "write canceled")
	}
}

// Close unblocks pending reads and writes on this side of the pair.
func (t *InMemoryTransport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	return nil
}

func (t *InMemoryTransport) isClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}
