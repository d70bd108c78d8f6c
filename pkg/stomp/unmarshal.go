package stomp

import (
	"strconv"
	"strings"
)

// Unmarshaller reconstructs inbound command objects from frames
type Unmarshaller struct {
	logger Logger
}

func newUnmarshaller(logger Logger) *Unmarshaller {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Unmarshaller{logger: logger}
}

// unmarshalResult is what the unmarshaller produces for one frame: an
// inbound command to hand back to the caller, and/or a synthesized Response
// to deliver to the transport callback (CONNECTED only; RECEIPT and ERROR
// return their Response as the command itself).
type unmarshalResult struct {
	command interface{}
	synth   *Response
}

// unmarshal dispatches f to its command representation. pendingConnect is
// the session's currently-pending CONNECT correlation id, or -1 if none.
func (u *Unmarshaller) unmarshal(f *Frame, pendingConnect int) (unmarshalResult, error) {
	if f.IsKeepAlive() {
		return unmarshalResult{command: &KeepAliveInfo{}}, nil
	}

	switch f.Command {
	case VerbConnected:
		return u.unmarshalConnected(f, pendingConnect)
	case VerbReceipt:
		return u.unmarshalReceipt(f)
	case VerbError:
		return u.unmarshalError(f)
	case VerbMessage:
		return u.unmarshalMessage(f)
	default:
		u.logger.Log(LogLevelError, "unknown frame command", "command", f.Command)
		return unmarshalResult{}, nil
	}
}

func (u *Unmarshaller) unmarshalConnected(f *Frame, pendingConnect int) (unmarshalResult, error) {
	info := &WireFormatInfo{Version: 1.0}

	versionText, hasVersion := f.Headers.Contains(HdrVersion)
	if hasVersion {
		version, err := strconv.ParseFloat(versionText, 64)
		if err != nil {
			return unmarshalResult{}, malformedFrame("invalid version header: " + versionText)
		}
		info.Version = version
	}
	if session, ok := f.Headers.Contains(HdrSession); ok {
		info.SessionID = session
	}

	if hb, ok := f.Headers.Contains(HdrHeartBeat); ok {
		write, read, err := parseHeartBeat(hb)
		if err != nil {
			return unmarshalResult{}, err
		}
		info.WriteCheckInterval = write
		info.ReadCheckInterval = read
	}

	if pendingConnect < 0 {
		return unmarshalResult{}, protocolError("CONNECTED without pending CONNECT")
	}

	return unmarshalResult{
		command: info,
		synth:   &Response{CorrelationID: pendingConnect},
	}, nil
}

// parseHeartBeat parses a "write,read" heart-beat header value.
func parseHeartBeat(value string) (write, read int, err error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, malformedFrame("malformed heart-beat header: " + value)
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	r, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, malformedFrame("malformed heart-beat header: " + value)
	}
	return w, r, nil
}

const ignorePrefix = "ignore:"

// parseReceiptID parses a receipt-id value, stripping the ignore-prefix
// convention if present, and reports whether it was ignore-prefixed.
func parseReceiptID(value string) (id int, ignored bool, err error) {
	text := value
	if strings.HasPrefix(value, ignorePrefix) {
		ignored = true
		text = value[len(ignorePrefix):]
	}
	n, convErr := strconv.Atoi(text)
	if convErr != nil {
		return 0, ignored, malformedFrame("invalid receipt-id: " + value)
	}
	return n, ignored, nil
}

func (u *Unmarshaller) unmarshalReceipt(f *Frame) (unmarshalResult, error) {
	text, ok := f.Headers.Contains(HdrReceiptID)
	if !ok {
		u.logger.Log(LogLevelError, "unknown frame command", "command", f.Command)
		return unmarshalResult{}, nil
	}
	id, _, err := parseReceiptID(text)
	if err != nil {
		return unmarshalResult{}, err
	}
	return unmarshalResult{command: &Response{CorrelationID: id}}, nil
}

func (u *Unmarshaller) unmarshalError(f *Frame) (unmarshalResult, error) {
	text, ok := f.Headers.Contains(HdrReceiptID)
	if ok && strings.HasPrefix(text, ignorePrefix) {
		id, _, err := parseReceiptID(text)
		if err != nil {
			return unmarshalResult{}, err
		}
		return unmarshalResult{command: &Response{CorrelationID: id}}, nil
	}
	var correlationID int
	if ok {
		id, _, err := parseReceiptID(text)
		if err == nil {
			correlationID = id
		}
	}
	message, _ := f.Headers.Contains(HdrMessage)
	return unmarshalResult{command: &ExceptionResponse{
		CorrelationID: correlationID,
		Exception:     &BrokerError{Message: message},
	}}, nil
}

// housekeepingHeaders are stripped from a MESSAGE frame before the remainder
// is copied onto Message.Headers as user headers.
var housekeepingHeaders = []string{
	HdrTransformation, HdrReceipt, HdrContentLength,
	HdrType, HdrDestination, HdrReplyTo, HdrSubscription,
	HdrCorrelationID, HdrMessageID, HdrPersistent, HdrNMSXDeliveryMode,
	HdrPriority, HdrTimestamp, HdrExpires, HdrRedelivered,
}

func (u *Unmarshaller) unmarshalMessage(f *Frame) (unmarshalResult, error) {
	if err := f.RequireHeaders(HdrDestination, HdrMessageID, HdrSubscription); err != nil {
		return unmarshalResult{}, err
	}

	_, isBinary, err := f.ContentLength()
	if err != nil {
		return unmarshalResult{}, err
	}

	msg := &Message{
		Headers: NewHeaders(),
		Content: f.Body,
	}
	if isBinary {
		msg.ContentKind = ContentBytes
	} else {
		msg.ContentKind = ContentText
	}

	if v, ok := f.Headers.Contains(HdrType); ok {
		msg.Type = v
	}
	dest, _ := f.Headers.Contains(HdrDestination)
	msg.Destination = ConvertToDestination(dest)
	if v, ok := f.Headers.Contains(HdrReplyTo); ok {
		msg.ReplyTo = ConvertToDestination(v)
	}
	var consumerID ConsumerID
	if v, ok := f.Headers.Contains(HdrSubscription); ok {
		consumerID = ConsumerID{Value: v}
	}
	if v, ok := f.Headers.Contains(HdrCorrelationID); ok {
		msg.CorrelationID = v
	}
	messageID, _ := f.Headers.Contains(HdrMessageID)

	if v, ok := f.Headers.Contains(HdrPersistent); ok {
		msg.Persistent, _ = strconv.ParseBool(v)
	}
	if v, ok := f.Headers.Contains(HdrNMSXDeliveryMode); ok {
		if b, convErr := strconv.ParseBool(v); convErr == nil {
			msg.Persistent = b
		}
	}
	if v, ok := f.Headers.Contains(HdrPriority); ok {
		if n, convErr := strconv.ParseUint(v, 10, 8); convErr == nil {
			msg.Priority = byte(n)
		}
	}
	if v, ok := f.Headers.Contains(HdrTimestamp); ok {
		if n, convErr := strconv.ParseInt(v, 10, 64); convErr == nil {
			msg.Timestamp = n
		}
	}
	if v, ok := f.Headers.Contains(HdrExpires); ok {
		if n, convErr := strconv.ParseInt(v, 10, 64); convErr == nil {
			msg.Expiration = n
		}
	}

	redeliveryCounter := 0
	if _, ok := f.Headers.Contains(HdrRedelivered); ok {
		redeliveryCounter = 1
	}

	stripped := map[string]bool{}
	for _, h := range housekeepingHeaders {
		stripped[h] = true
	}
	f.Headers.Each(func(name, value string) {
		if stripped[name] {
			return
		}
		msg.Headers.Append(name, value)
	})

	msg.MessageID = messageID

	dispatch := &MessageDispatch{
		ConsumerID:        consumerID,
		Destination:       msg.Destination,
		Message:           msg,
		RedeliveryCounter: redeliveryCounter,
	}
	return unmarshalResult{command: dispatch}, nil
}
