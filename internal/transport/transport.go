// Package transport defines interfaces and implementations for sending and
// receiving MCP messages.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

// MaxMessageSize defines the maximum allowed size for a single JSON-RPC
// message in bytes. This prevents memory exhaustion from oversized payloads.
const MaxMessageSize = 1024 * 1024 // 1MB.

// Transport defines the interface for sending and receiving JSON-RPC messages.
// Implementations must be concurrency-safe.
type Transport interface {
	// ReadMessage reads a single JSON-RPC message from the transport.
	// It returns the raw message bytes, or an error if reading fails.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage sends a single JSON-RPC message over the transport.
	WriteMessage(ctx context.Context, message []byte) error

	// Close shuts down the transport, closing any underlying connections.
	// Blocked reads and writes are unblocked and return errors.
	Close() error
}

// MessageHandler processes a raw JSON-RPC message and returns the response
// bytes, or nil for notifications that produce no response.
type MessageHandler func(ctx context.Context, message []byte) ([]byte, error)

// NDJSONTransport implements Transport over a reader/writer pair using
// newline-delimited JSON framing. This is the framing used for the stdio
// transport, where each message occupies exactly one line.
type NDJSONTransport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
	logger logging.Logger

	readMu  sync.Mutex
	writeMu sync.Mutex

	closeMu sync.RWMutex
	closed  bool
}

// NewNDJSONTransport creates a transport with newline-delimited JSON framing.
// closer may be nil when the underlying streams do not need closing (stdio).
func NewNDJSONTransport(reader io.Reader, writer io.Writer, closer io.Closer, logger logging.Logger) *NDJSONTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &NDJSONTransport{
		reader: bufio.NewReaderSize(reader, 64*1024),
		writer: writer,
		closer: closer,
		logger: logger.WithField("component", "ndjson_transport"),
	}
}

// ReadMessage reads the next newline-terminated message from the stream.
// Lines exceeding MaxMessageSize are rejected without being buffered whole.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	if t.isClosed() {
		return nil, NewClosedError("ReadMessage")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "read canceled")
	}

	// The outer loop skips blank lines between messages; it must not recurse
	// since readMu is held for the whole call.
	for {
		var buf bytes.Buffer
		for {
			line, isPrefix, err := t.reader.ReadLine()
			if err != nil {
				if errors.Is(err, io.EOF) && buf.Len() == 0 {
					return nil, io.EOF
				}
				return nil, errors.Wrap(err, "failed to read message line")
			}
			if buf.Len()+len(line) > MaxMessageSize {
				// Drain the remainder of the oversized line before surfacing the error.
				for isPrefix {
					_, isPrefix, err = t.reader.ReadLine()
					if err != nil {
						break
					}
				}
				return nil, NewMessageTooLargeError(buf.Len() + len(line))
			}
			buf.Write(line)
			if !isPrefix {
				break
			}
		}

		msg := buf.Bytes()
		if len(bytes.TrimSpace(msg)) == 0 {
			continue
		}
		t.logger.Debug("Received message.", "sizeBytes", len(msg))
		return msg, nil
	}
}

// WriteMessage writes the message followed by a newline. Embedded newlines in
// the payload are rejected since they would corrupt framing.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.isClosed() {
		return NewClosedError("WriteMessage")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "write canceled")
	}
	if len(message) > MaxMessageSize {
		return NewMessageTooLargeError(len(message))
	}
	if bytes.ContainsRune(message, '\n') {
		return errors.New("message contains embedded newline, cannot frame as NDJSON")
	}

	if _, err := t.writer.Write(message); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	if _, err := t.writer.Write([]byte{'\n'}); err != nil {
		return errors.Wrap(err, "failed to write message delimiter")
	}
	t.logger.Debug("Sent message.", "sizeBytes", len(message))
	return nil
}

// Close marks the transport closed and closes the underlying closer, if any.
func (t *NDJSONTransport) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		return errors.Wrap(t.closer.Close(), "failed to close underlying stream")
	}
	return nil
}

func (t *NDJSONTransport) isClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}
