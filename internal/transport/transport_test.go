package transport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONTransport_ReadMessage_ReturnsOneMessagePerLine(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	first, err := tr.ReadMessage(context.Background())
	require.NoError(t, err, "Reading the first line should succeed.")
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(first))

	second, err := tr.ReadMessage(context.Background())
	require.NoError(t, err, "Reading the second line should succeed.")
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, string(second))

	_, err = tr.ReadMessage(context.Background())
	assert.ErrorIs(t, err, io.EOF, "Exhausted input should yield EOF.")
}

func TestNDJSONTransport_ReadMessage_SkipsBlankLines(t *testing.T) {
	input := "\n\n   \n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	msg, err := tr.ReadMessage(context.Background())
	require.NoError(t, err, "Blank lines should be skipped, not returned.")
	assert.Contains(t, string(msg), `"method":"ping"`)
}

func TestNDJSONTransport_WriteMessage_AppendsNewlineDelimiter(t *testing.T) {
	var buf bytes.Buffer
	tr := NewNDJSONTransport(strings.NewReader(""), &buf, nil, nil)

	err := tr.WriteMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", buf.String(), "The written frame should end with exactly one newline.")
}

func TestNDJSONTransport_WriteMessage_RejectsEmbeddedNewline(t *testing.T) {
	tr := NewNDJSONTransport(strings.NewReader(""), io.Discard, nil, nil)

	err := tr.WriteMessage(context.Background(), []byte("{\n}"))
	assert.Error(t, err, "Payloads containing newlines would corrupt framing and must be rejected.")
}

func TestNDJSONTransport_WriteMessage_RejectsOversizedMessage(t *testing.T) {
	tr := NewNDJSONTransport(strings.NewReader(""), io.Discard, nil, nil)

	err := tr.WriteMessage(context.Background(), bytes.Repeat([]byte("a"), MaxMessageSize+1))
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestNDJSONTransport_Close_FailsSubsequentOperations(t *testing.T) {
	tr := NewNDJSONTransport(strings.NewReader("{}\n"), io.Discard, nil, nil)
	require.NoError(t, tr.Close())

	_, err := tr.ReadMessage(context.Background())
	assert.ErrorIs(t, err, ErrTransportClosed)

	err = tr.WriteMessage(context.Background(), []byte("{}"))
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestInMemoryTransportPair_MessagesFlowBothWays(t *testing.T) {
	pair := NewInMemoryTransportPair()
	ctx := context.Background()

	require.NoError(t, pair.ClientTransport.WriteMessage(ctx, []byte(`{"id":1}`)))
	got, err := pair.ServerTransport.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got), "Client writes should arrive at the server side.")

	require.NoError(t, pair.ServerTransport.WriteMessage(ctx, []byte(`{"id":1,"result":{}}`)))
	got, err = pair.ClientTransport.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"result":{}}`, string(got), "Server writes should arrive at the client side.")
}

func TestInMemoryTransport_ReadMessage_HonorsContextCancellation(t *testing.T) {
	pair := NewInMemoryTransportPair()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pair.ServerTransport.ReadMessage(ctx)
	require.Error(t, err, "A read with nothing pending should fail once the context expires.")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "The context error should be preserved in the chain.")
}

func TestInMemoryTransport_Close_UnblocksPendingRead(t *testing.T) {
	pair := NewInMemoryTransportPair()

	errCh := make(chan error, 1)
	go func() {
		_, err := pair.ServerTransport.ReadMessage(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, pair.ServerTransport.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrTransportClosed, "Close should unblock the pending read with a closed error.")
	case <-time.After(time.Second):
		t.Fatal("Pending read was not unblocked by Close.")
	}
}
