package stomp

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S2 (CONNECTED -> Response), driven through Session so pendingConnect
// correlation bookkeeping is exercised end to end.
func TestSession_ConnectedSynthesizesResponseAndEnablesEncoding(t *testing.T) {
	tr := &transportStub{}
	sess := NewSession(WithTransport(tr))

	var out bytes.Buffer
	require.NoError(t, sess.Marshal(&ConnectionInfo{ClientID: "c", Host: "h", CommandID: 1}, &out))

	raw := "CONNECTED\nversion:1.1\nsession:s\nheart-beat:5000,5000\n\n\x00"
	cmd, err := sess.Unmarshal(bufio.NewReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)

	info, ok := cmd.(*WireFormatInfo)
	require.True(t, ok)
	assert.Equal(t, 1.1, info.Version)
	assert.Equal(t, "s", info.SessionID)

	require.Len(t, tr.commands, 1)
	assert.Equal(t, &Response{CorrelationID: 1}, tr.commands[0])
	assert.True(t, sess.encodeHeaders)
	assert.Equal(t, -1, sess.pendingConnectCorrelation)
}

func TestSession_ConnectedWithoutPendingConnectIsProtocolError(t *testing.T) {
	sess := NewSession()
	raw := "CONNECTED\nversion:1.0\n\n\x00"
	_, err := sess.Unmarshal(bufio.NewReader(bytes.NewBufferString(raw)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocolError))
}

func TestUnmarshal_ConnectedWithoutVersionDefaultsTo10(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("CONNECTED\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, 1)
	require.NoError(t, err)
	info := result.command.(*WireFormatInfo)
	assert.Equal(t, 1.0, info.Version)
	assert.Equal(t, 0, info.ReadCheckInterval)
	assert.Equal(t, 0, info.WriteCheckInterval)
}

// Property 5: ignore-receipt downgrade.
func TestUnmarshal_ReceiptIgnorePrefix(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("RECEIPT\nreceipt-id:ignore:42\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	assert.Equal(t, &Response{CorrelationID: 42}, result.command)
}

func TestUnmarshal_ReceiptPlain(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("RECEIPT\nreceipt-id:42\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	assert.Equal(t, &Response{CorrelationID: 42}, result.command)
}

func TestUnmarshal_ErrorIgnorePrefixDowngradesToResponse(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("ERROR\nreceipt-id:ignore:7\nmessage:boom\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	assert.Equal(t, &Response{CorrelationID: 7}, result.command)
}

// S6 (ERROR).
func TestUnmarshal_ErrorPlainIsExceptionResponse(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("ERROR\nreceipt-id:3\nmessage:boom\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	exc, ok := result.command.(*ExceptionResponse)
	require.True(t, ok)
	assert.Equal(t, 3, exc.CorrelationID)
	assert.Equal(t, "boom", exc.Exception.Message)
}

// S4 (MESSAGE binary).
func TestUnmarshal_MessageBinary(t *testing.T) {
	u := newUnmarshaller(nil)
	raw := "MESSAGE\ndestination:/queue/Q\nmessage-id:m1\nsubscription:c1\ncontent-length:3\n\nABC\x00"
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString(raw)), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	dispatch, ok := result.command.(*MessageDispatch)
	require.True(t, ok)
	assert.Equal(t, ContentBytes, dispatch.Message.ContentKind)
	assert.Equal(t, []byte("ABC"), dispatch.Message.Content)
	assert.Equal(t, ConsumerID{Value: "c1"}, dispatch.ConsumerID)
	assert.Equal(t, Destination{Type: Queue, Physical: "Q"}, dispatch.Destination)
}

func TestUnmarshal_MessageTextAndRedelivered(t *testing.T) {
	u := newUnmarshaller(nil)
	raw := "MESSAGE\ndestination:/topic/Q\nmessage-id:m1\nsubscription:c1\nredelivered:true\npriority:9\ncustom-header:yes\n\nhello\x00"
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString(raw)), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	dispatch := result.command.(*MessageDispatch)
	assert.Equal(t, ContentText, dispatch.Message.ContentKind)
	assert.Equal(t, []byte("hello"), dispatch.Message.Content)
	assert.Equal(t, 1, dispatch.RedeliveryCounter)
	assert.Equal(t, byte(9), dispatch.Message.Priority)

	v, ok := dispatch.Message.Headers.Contains("custom-header")
	require.True(t, ok)
	assert.Equal(t, "yes", v)

	// Reserved headers must not leak into the user header set.
	_, ok = dispatch.Message.Headers.Contains(HdrDestination)
	assert.False(t, ok)
	_, ok = dispatch.Message.Headers.Contains(HdrPriority)
	assert.False(t, ok)
}

func TestUnmarshal_MessageMissingRequiredHeaderIsProtocolError(t *testing.T) {
	u := newUnmarshaller(nil)
	raw := "MESSAGE\nmessage-id:m1\nsubscription:c1\n\n\x00"
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString(raw)), false)
	require.NoError(t, err)

	_, err = u.unmarshal(f, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocolError))
}

func TestUnmarshal_UnknownVerbReturnsNilCommand(t *testing.T) {
	u := newUnmarshaller(nil)
	f, err := ReadFrame(bufio.NewReader(bytes.NewBufferString("BOGUS\n\n\x00")), false)
	require.NoError(t, err)

	result, err := u.unmarshal(f, -1)
	require.NoError(t, err)
	assert.Nil(t, result.command)
}

func TestParseHeartBeat(t *testing.T) {
	write, read, err := parseHeartBeat("10000,30000")
	require.NoError(t, err)
	assert.Equal(t, 10000, write)
	assert.Equal(t, 30000, read)

	_, _, err = parseHeartBeat("not,valid,triple")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFrame))
}
