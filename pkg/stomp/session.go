package stomp

import (
	"bufio"
	"io"
)

// Transport is the collaborator a Session injects synthesized Responses
// into. It is a weak collaborator: Session does not own its lifetime,
// and a missing Transport is tolerated (logged and dropped).
type Transport interface {
	Command(cmd interface{})
}

// sessionState is the connection-negotiation state machine.
type sessionState int8

const (
	StateFresh sessionState = iota
	StateConnectPending
	StateConnected
	StateDisconnected
)

// Default configuration constants.
const (
	DefaultMaxInactivityDuration     = 30_000
	DefaultMaxInactivityInitialDelay = 0
)

type sessionCfg struct {
	logger                Logger
	transport              Transport
	maxInactivityDuration int
}

// SessionOpt configures a Session at construction time via the
// functional-options pattern.
type SessionOpt func(*sessionCfg)

// WithLogger sets the Logger a Session reports protocol events to.
func WithLogger(l Logger) SessionOpt {
	return func(c *sessionCfg) { c.logger = l }
}

// WithTransport sets the Transport a Session delivers synthesized
// Responses to.
func WithTransport(t Transport) SessionOpt {
	return func(c *sessionCfg) { c.transport = t }
}

// WithMaxInactivityDuration overrides the default 30s heart-beat
// negotiation window. Zero disables heart-beat negotiation.
func WithMaxInactivityDuration(ms int) SessionOpt {
	return func(c *sessionCfg) { c.maxInactivityDuration = ms }
}

// Session holds per-connection wire state and binds the Marshaller and
// Unmarshaller to a single transport. marshal/unmarshal are its
// public contract; it is NOT safe for concurrent use by design — the
// surrounding transport must serialize calls to the same Session.
type Session struct {
	cfg sessionCfg

	marshaller   *Marshaller
	unmarshaller *Unmarshaller

	state sessionState

	encodeHeaders bool

	// pendingConnectCorrelation is the command_id of the in-flight
	// CONNECT, or -1 if none is pending.
	pendingConnectCorrelation int

	remoteWireInfo *WireFormatInfo
}

// NewSession returns a Session ready to marshal/unmarshal STOMP frames.
func NewSession(opts ...SessionOpt) *Session {
	cfg := sessionCfg{
		logger:                nopLogger{},
		maxInactivityDuration: DefaultMaxInactivityDuration,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}
	return &Session{
		cfg:                       cfg,
		marshaller:                newMarshaller(cfg.logger, cfg.maxInactivityDuration),
		unmarshaller:              newUnmarshaller(cfg.logger),
		state:                     StateFresh,
		pendingConnectCorrelation: -1,
	}
}

// State returns the session's current connection state.
func (s *Session) State() sessionState { return s.state }

// ReadCheckInterval and WriteCheckInterval derive from
// maxInactivityDuration: read = duration, write = duration/3
// (minimum 1 when duration > 0, else equal to duration).
func (s *Session) ReadCheckInterval() int {
	_, read := heartBeatIntervals(s.cfg.maxInactivityDuration)
	return read
}

func (s *Session) WriteCheckInterval() int {
	write, _ := heartBeatIntervals(s.cfg.maxInactivityDuration)
	return write
}

// RemoteWireInfo returns the last-received CONNECTED info, or nil if none
// has arrived yet.
func (s *Session) RemoteWireInfo() *WireFormatInfo { return s.remoteWireInfo }

// Marshal serializes cmd to w, dispatching any synthesized
// Response to the configured Transport instead of writing it.
func (s *Session) Marshal(cmd interface{}, w io.Writer) error {
	if _, ok := cmd.(*ConnectionInfo); ok && s.pendingConnectCorrelation >= 0 {
		return ErrInvalidState
	}

	result, err := s.marshaller.marshal(cmd, s.encodeHeaders)
	if err != nil {
		return err
	}

	if result.dropped {
		return nil
	}

	if result.synth != nil {
		s.deliver(result.synth)
		return nil
	}

	if err := writeFrame(w, result.frame, s.encodeHeaders); err != nil {
		return err
	}

	switch c := cmd.(type) {
	case *ConnectionInfo:
		s.pendingConnectCorrelation = c.CommandID
		s.state = StateConnectPending
	case *ShutdownInfo:
		s.state = StateDisconnected
	}
	return nil
}

// Unmarshal reads one frame from r and dispatches it to its inbound command
// representation. It returns (nil, nil) for an unknown frame verb (an
// unrecognized command is logged and swallowed rather than surfaced).
// RECEIPT frames, and ERROR frames with an ignore-prefixed receipt-id, are
// returned as a *Response. In the CONNECTED case the caller gets the
// WireFormatInfo back, and the synthesized Response is delivered to the
// Transport.
func (s *Session) Unmarshal(r *bufio.Reader) (interface{}, error) {
	f, err := ReadFrame(r, s.encodeHeaders)
	if err != nil {
		return nil, err
	}

	result, err := s.unmarshaller.unmarshal(f, s.pendingConnectCorrelation)
	if err != nil {
		return nil, err
	}

	if info, ok := result.command.(*WireFormatInfo); ok {
		s.remoteWireInfo = info
		if info.Version > 1.0 {
			s.encodeHeaders = true
		}
		s.pendingConnectCorrelation = -1
		s.state = StateConnected
	}

	if result.synth != nil {
		s.deliver(result.synth)
	}

	return result.command, nil
}

// deliver hands a synthesized command to the configured Transport,
// tolerating its absence.
func (s *Session) deliver(cmd interface{}) {
	if s.cfg.transport == nil {
		s.cfg.logger.Log(LogLevelDebug, "no transport wired, dropping synthesized command")
		return
	}
	s.cfg.transport.Command(cmd)
}
