package stomp

import (
	"io"
	"strconv"
)

// Marshaller dispatches outbound command objects to STOMP frames.
// It holds no state of its own; the encode-headers flag and pending-CONNECT
// bookkeeping live in Session, which owns the Marshaller.
type Marshaller struct {
	logger Logger

	// maxInactivityDuration configures the heart-beat header CONNECT
	// emits; it belongs to the session, not to any one
	// ConnectionInfo command.
	maxInactivityDuration int
}

func newMarshaller(logger Logger, maxInactivityDuration int) *Marshaller {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Marshaller{logger: logger, maxInactivityDuration: maxInactivityDuration}
}

// marshalResult is what Marshal produces for one command: either a Frame to
// write, a synthesized Response to hand to the transport, or neither (the
// command was silently dropped).
type marshalResult struct {
	frame    *Frame
	synth    *Response
	dropped  bool
}

// marshal dispatches cmd to its frame representation. encodeHeaders controls
// header escaping. Pending-CONNECT state is not touched here; Session.Marshal
// updates it after a ConnectionInfo frame is written.
func (m *Marshaller) marshal(cmd interface{}, encodeHeaders bool) (marshalResult, error) {
	switch c := cmd.(type) {
	case *ConnectionInfo:
		return m.marshalConnect(c, encodeHeaders)
	case *Message:
		return m.marshalSend(c, encodeHeaders)
	case *ConsumerInfo:
		return m.marshalSubscribe(c, encodeHeaders)
	case *RemoveInfo:
		return m.marshalUnsubscribe(c)
	case *MessageAck:
		return m.marshalAck(c)
	case *TransactionInfo:
		return m.marshalTransaction(c)
	case *ShutdownInfo:
		return m.marshalDisconnect(c)
	case *KeepAliveInfo:
		return marshalResult{frame: &Frame{Command: VerbKeepAlive, Headers: NewHeaders()}}, nil
	default:
		return m.marshalGeneric(cmd)
	}
}

func (m *Marshaller) marshalConnect(c *ConnectionInfo, _ bool) (marshalResult, error) {
	f := NewFrame(VerbConnect)
	f.Headers.Append(HdrClientID, c.ClientID)
	if c.UserName != "" {
		f.Headers.Append(HdrLogin, c.UserName)
	}
	if c.Password != "" {
		f.Headers.Append(HdrPasscode, c.Password)
	}
	f.Headers.Append(HdrHost, c.Host)
	f.Headers.Append(HdrAcceptVersion, "1.0,1.1")
	if m.maxInactivityDuration != 0 {
		write, read := heartBeatIntervals(m.maxInactivityDuration)
		f.Headers.Append(HdrHeartBeat, strconv.Itoa(write)+","+strconv.Itoa(read))
	}
	return marshalResult{frame: f}, nil
}

// heartBeatIntervals derives write/read-check intervals from a single
// max-inactivity-duration configuration value.
func heartBeatIntervals(maxInactivityDuration int) (write, read int) {
	read = maxInactivityDuration
	if maxInactivityDuration > 0 {
		write = maxInactivityDuration / 3
		if write < 1 {
			write = 1
		}
	} else {
		write = maxInactivityDuration
	}
	return write, read
}

func (m *Marshaller) marshalSend(c *Message, _ bool) (marshalResult, error) {
	f := NewFrame(VerbSend)
	if c.ResponseRequired {
		f.Headers.Append(HdrReceipt, strconv.Itoa(c.CommandID))
	}
	f.Headers.Append(HdrDestination, ConvertToString(c.Destination))
	if !c.ReplyTo.IsNone() {
		f.Headers.Append(HdrReplyTo, ConvertToString(c.ReplyTo))
	}
	if c.CorrelationID != "" {
		f.Headers.Append(HdrCorrelationID, c.CorrelationID)
	}
	if c.Expiration != 0 {
		f.Headers.Append(HdrExpires, strconv.FormatInt(c.Expiration, 10))
	}
	if c.Timestamp != 0 {
		f.Headers.Append(HdrTimestamp, strconv.FormatInt(c.Timestamp, 10))
	}
	if c.Priority != DefaultPriority {
		f.Headers.Append(HdrPriority, strconv.Itoa(int(c.Priority)))
	}
	if c.Type != "" {
		f.Headers.Append(HdrType, c.Type)
	}
	if c.TransactionID != "" {
		f.Headers.Append(HdrTransaction, c.TransactionID)
	}
	persistent := strconv.FormatBool(c.Persistent)
	f.Headers.Append(HdrPersistent, persistent)
	f.Headers.Append(HdrNMSXDeliveryMode, persistent)
	if c.GroupID != "" {
		f.Headers.Append(HdrJMSXGroupID, c.GroupID)
		f.Headers.Append(HdrNMSXGroupID, c.GroupID)
		seq := strconv.Itoa(c.GroupSeq)
		f.Headers.Append(HdrJMSXGroupSeq, seq)
		f.Headers.Append(HdrNMSXGroupSeq, seq)
	}

	f.Body = c.Content
	if c.ContentKind == ContentBytes && len(f.Body) > 0 {
		f.Headers.Append(HdrContentLength, strconv.Itoa(len(f.Body)))
		f.Headers.Append(HdrTransformation, "jms-byte")
	}

	// User headers go last so they cannot clobber the reserved names
	// above.
	c.Headers.Each(func(name, value string) {
		f.Headers.Append(name, value)
	})

	return marshalResult{frame: f}, nil
}

func (m *Marshaller) marshalSubscribe(c *ConsumerInfo, _ bool) (marshalResult, error) {
	f := NewFrame(VerbSubscribe)
	if c.ResponseRequired {
		f.Headers.Append(HdrReceipt, strconv.Itoa(c.CommandID))
	}
	f.Headers.Append(HdrDestination, ConvertToString(c.Destination))
	f.Headers.Append(HdrID, c.ConsumerID.Value)
	if c.SubscriptionName != "" {
		f.Headers.Append(HdrDurableSubscriberName, c.SubscriptionName)
	}
	if c.Selector != "" {
		f.Headers.Append(HdrSelector, c.Selector)
	}
	f.Headers.Append(HdrAck, c.AckMode.String())
	if c.NoLocal {
		f.Headers.Append(HdrNoLocal, "True")
	}
	transformation := c.Transformation
	if transformation == "" {
		transformation = "jms-xml"
	}
	f.Headers.Append(HdrTransformation, transformation)
	f.Headers.Append(HdrDispatchAsync, strconv.FormatBool(c.DispatchAsync))
	if c.Exclusive {
		f.Headers.Append(HdrExclusive, strconv.FormatBool(c.Exclusive))
	}
	if c.SubscriptionName != "" {
		f.Headers.Append(HdrSubscriptionName, c.SubscriptionName)
		f.Headers.Append(HdrSubcriptionNameLegacy, c.SubscriptionName)
	}
	f.Headers.Append(HdrMaxPendingMessageLimit, strconv.Itoa(c.MaximumPendingMessageLimit))
	f.Headers.Append(HdrPrefetchSize, strconv.Itoa(c.PrefetchSize))
	f.Headers.Append(HdrActiveMQPriority, strconv.Itoa(c.Priority))
	if c.Retroactive {
		f.Headers.Append(HdrRetroactive, strconv.FormatBool(c.Retroactive))
	}
	return marshalResult{frame: f}, nil
}

func (m *Marshaller) marshalUnsubscribe(c *RemoveInfo) (marshalResult, error) {
	id, ok := c.ObjectID.(ConsumerID)
	if !ok {
		m.logger.Log(LogLevelDebug, "dropping UNSUBSCRIBE for non-consumer object id")
		return marshalResult{dropped: true}, nil
	}
	f := NewFrame(VerbUnsubscribe)
	if c.ResponseRequired {
		f.Headers.Append(HdrReceipt, strconv.Itoa(c.CommandID))
	}
	f.Headers.Append(HdrID, id.Value)
	return marshalResult{frame: f}, nil
}

func (m *Marshaller) marshalAck(c *MessageAck) (marshalResult, error) {
	f := NewFrame(VerbAck)
	f.Headers.Append(HdrMessageID, c.LastMessageID)
	f.Headers.Append(HdrSubscription, c.ConsumerID.Value)
	if c.TransactionID != "" {
		f.Headers.Append(HdrTransaction, c.TransactionID)
	}
	if c.ResponseRequired {
		f.Headers.Append(HdrReceipt, "ignore:"+strconv.Itoa(c.CommandID))
	}
	return marshalResult{frame: f}, nil
}

func (m *Marshaller) marshalTransaction(c *TransactionInfo) (marshalResult, error) {
	var verb string
	switch c.Type {
	case TransactionBegin:
		verb = VerbBegin
	case TransactionCommit:
		verb = VerbCommit
		c.ResponseRequired = true
	case TransactionRollback:
		verb = VerbAbort
		c.ResponseRequired = true
	}
	f := NewFrame(verb)
	if c.ResponseRequired {
		f.Headers.Append(HdrReceipt, strconv.Itoa(c.CommandID))
	}
	f.Headers.Append(HdrTransaction, c.TransactionID)
	return marshalResult{frame: f}, nil
}

func (m *Marshaller) marshalDisconnect(c *ShutdownInfo) (marshalResult, error) {
	if c.ResponseRequired {
		return marshalResult{}, protocolError("DISCONNECT must not require a response")
	}
	return marshalResult{frame: NewFrame(VerbDisconnect)}, nil
}

// marshalGeneric handles any command variant not matched above: if it
// exposes HasResponseRequirement and wants a response, synthesize one
// without writing anything; otherwise drop it with a warning.
func (m *Marshaller) marshalGeneric(cmd interface{}) (marshalResult, error) {
	hr, ok := cmd.(HasResponseRequirement)
	if !ok {
		m.logger.Log(LogLevelWarn, "dropping command with no frame representation", "type", commandTypeName(cmd))
		return marshalResult{dropped: true}, nil
	}
	if !hr.RequiresResponse() {
		m.logger.Log(LogLevelWarn, "dropping command with no response required and no frame representation", "type", commandTypeName(cmd))
		return marshalResult{dropped: true}, nil
	}
	return marshalResult{synth: &Response{CorrelationID: hr.GetCommandID()}}, nil
}

func commandTypeName(cmd interface{}) string {
	type named interface{ String() string }
	if n, ok := cmd.(named); ok {
		return n.String()
	}
	return "unknown"
}

// writeFrame is a small indirection so Session can reuse the same encode
// path for real frames and, in tests, buffers. Frame.WriteTo flushes
// internally, so the caller's writer is fully drained when this returns.
func writeFrame(w io.Writer, f *Frame, encodeHeaders bool) error {
	return f.WriteTo(w, encodeHeaders)
}
