package stomp

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers can test against these with errors.Is; the
// wrapping FrameError/ProtocolErrorDetail types carry additional context and
// unwrap to one of these.
var (
	// ErrMalformedFrame is returned for structural framing violations: a
	// header line with no ':', an unparseable content-length, or a
	// stream that ends before the frame terminator.
	ErrMalformedFrame = errors.New("stomp: malformed frame")

	// ErrMalformedHeader is returned when the header escape decoder
	// encounters an invalid escape sequence.
	ErrMalformedHeader = errors.New("stomp: malformed header escape")

	// ErrProtocolError is returned for semantic violations: CONNECTED
	// without a pending CONNECT, or DISCONNECT with response_required set.
	ErrProtocolError = errors.New("stomp: protocol error")

	// ErrInvalidState is returned when marshal is asked to send a second
	// CONNECT while one is already pending.
	ErrInvalidState = errors.New("stomp: invalid wire-format state")

	// ErrUnknownCommand is never returned to a caller: an unrecognized
	// frame command is logged and swallowed rather than surfaced, so it
	// cannot stall a read loop. The codec itself does not create, wrap or
	// log this value.
	ErrUnknownCommand = errors.New("stomp: unknown frame command")
)

// FrameError wraps ErrMalformedFrame (or occasionally ErrMalformedHeader)
// with the offending detail, the way a connection-level error commonly
// carries the failing address or key alongside the sentinel.
type FrameError struct {
	Detail string
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *FrameError) Unwrap() error { return e.Err }

func malformedFrame(detail string) error {
	return &FrameError{Detail: detail, Err: ErrMalformedFrame}
}

func malformedHeader(detail string) error {
	return &FrameError{Detail: detail, Err: ErrMalformedHeader}
}

// ProtocolErrorDetail wraps ErrProtocolError with the offending detail.
type ProtocolErrorDetail struct {
	Detail string
}

func (e *ProtocolErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", ErrProtocolError, e.Detail)
}

func (e *ProtocolErrorDetail) Unwrap() error { return ErrProtocolError }

func protocolError(detail string) error {
	return &ProtocolErrorDetail{Detail: detail}
}
