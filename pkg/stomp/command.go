package stomp

// AckMode is the subscription acknowledgement mode.
type AckMode int8

const (
	AckAuto AckMode = iota
	AckClient
	AckClientIndividual
)

func (m AckMode) String() string {
	switch m {
	case AckClient:
		return "client"
	case AckClientIndividual:
		return "client-individual"
	default:
		return "auto"
	}
}

// TransactionType selects which of BEGIN/COMMIT/ABORT a TransactionInfo
// produces.
type TransactionType int8

const (
	TransactionBegin TransactionType = iota
	TransactionCommit
	TransactionRollback
)

// HasResponseRequirement is the capability trait the marshaller's default
// case probes for generic commands that aren't handled by a dedicated
// marshal function but still want a correlated response.
type HasResponseRequirement interface {
	RequiresResponse() bool
	GetCommandID() int
}

// ConsumerID identifies a subscription. RemoveInfo's ObjectID must be one of
// these to produce an UNSUBSCRIBE frame.
type ConsumerID struct {
	Value string
}

// ConnectionInfo is the outbound CONNECT command.
type ConnectionInfo struct {
	ClientID string
	UserName string
	Password string
	Host     string

	CommandID       int
	ResponseRequired bool
}

func (c *ConnectionInfo) RequiresResponse() bool { return c.ResponseRequired }
func (c *ConnectionInfo) GetCommandID() int        { return c.CommandID }

// MessageContentKind distinguishes text vs binary payloads.
type MessageContentKind int8

const (
	ContentText MessageContentKind = iota
	ContentBytes
)

// Message is the outbound SEND command, a superset of BytesMessage and
// TextMessage.
type Message struct {
	Destination   Destination
	ReplyTo       Destination
	CorrelationID string
	Expiration    int64
	Timestamp     int64
	Priority      byte // elided on SEND when equal to DefaultPriority (4); the zero value is sent as 0
	Type          string
	TransactionID string
	Persistent    bool
	GroupID       string
	GroupSeq      int

	ContentKind MessageContentKind
	Content     []byte // materialized body, written as the frame body as-is

	// MessageID is populated only on inbound MESSAGE frames; outbound
	// SEND never sets it (the broker assigns it).
	MessageID string

	// Headers carries user-supplied headers not covered by the reserved
	// set. Copied onto the frame last, after reserved headers, so users
	// cannot clobber reserved names.
	Headers *Headers

	CommandID        int
	ResponseRequired bool
}

func (m *Message) RequiresResponse() bool { return m.ResponseRequired }
func (m *Message) GetCommandID() int        { return m.CommandID }

// DefaultPriority is the priority value that is elided from the wire.
const DefaultPriority = 4

// ConsumerInfo is the outbound SUBSCRIBE command.
type ConsumerInfo struct {
	ConsumerID         ConsumerID
	Destination        Destination
	SubscriptionName   string
	Selector           string
	AckMode            AckMode
	NoLocal            bool
	DispatchAsync      bool
	Exclusive          bool
	MaximumPendingMessageLimit int
	PrefetchSize       int
	Priority           int
	Retroactive        bool
	Transformation     string

	CommandID        int
	ResponseRequired bool
}

func (c *ConsumerInfo) RequiresResponse() bool { return c.ResponseRequired }
func (c *ConsumerInfo) GetCommandID() int        { return c.CommandID }

// MessageAck is the outbound ACK command.
type MessageAck struct {
	ConsumerID      ConsumerID
	LastMessageID   string
	TransactionID   string

	CommandID        int
	ResponseRequired bool
}

func (a *MessageAck) RequiresResponse() bool { return a.ResponseRequired }
func (a *MessageAck) GetCommandID() int        { return a.CommandID }

// TransactionInfo is the outbound BEGIN/COMMIT/ABORT command.
type TransactionInfo struct {
	TransactionID string
	Type          TransactionType

	CommandID        int
	ResponseRequired bool
}

func (t *TransactionInfo) RequiresResponse() bool { return t.ResponseRequired }
func (t *TransactionInfo) GetCommandID() int        { return t.CommandID }

// RemoveInfo is the outbound UNSUBSCRIBE command. It only produces a
// frame when ObjectID is a ConsumerID.
type RemoveInfo struct {
	ObjectID interface{} // expected: ConsumerID

	CommandID        int
	ResponseRequired bool
}

func (r *RemoveInfo) RequiresResponse() bool { return r.ResponseRequired }
func (r *RemoveInfo) GetCommandID() int        { return r.CommandID }

// ShutdownInfo is the outbound DISCONNECT command. Precondition:
// ResponseRequired must be false.
type ShutdownInfo struct {
	ResponseRequired bool
}

// KeepAliveInfo is both an outbound command (emits the sentinel byte) and an
// inbound command produced by the unmarshaller for a keep-alive frame.
type KeepAliveInfo struct{}

// Response is a synthesized or broker-originated reply correlated to a
// command_id.
type Response struct {
	CorrelationID int
}

// BrokerError is the payload of an ExceptionResponse.
type BrokerError struct {
	Message string
}

func (e *BrokerError) Error() string { return e.Message }

// ExceptionResponse is an unmarshalled ERROR frame not downgraded by the
// ignore-receipt convention.
type ExceptionResponse struct {
	CorrelationID int
	Exception     *BrokerError
}

// WireFormatInfo is the reconstructed view of a CONNECTED frame.
type WireFormatInfo struct {
	Version         float64
	SessionID       string
	ReadCheckInterval  int
	WriteCheckInterval int
}

// MessageDispatch is the envelope delivered to the consumer subsystem for an
// inbound MESSAGE frame.
type MessageDispatch struct {
	ConsumerID        ConsumerID
	Destination       Destination
	Message           *Message
	RedeliveryCounter int
}
