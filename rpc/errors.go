package rpc

import "fmt"

// DecodeErrorCode identifies why a frame failed the message-model
// invariants after a structurally valid MessagePack value decoded.
type DecodeErrorCode int

const (
	// ErrMalformed indicates the decoded value's shape does not match
	// any of the three frame shapes (wrong arity, first element not
	// an integer in {0,1,2}, msgid does not fit u32, method not a
	// string, params not an array).
	ErrMalformed DecodeErrorCode = iota

	// ErrUnexpectedMessageType names a well-formed Request frame
	// arriving from the peer. Decode does not return this code: a
	// Request decodes into Message.Request, and the Client, which
	// exposes no server role, drops it with a debug log record.
	ErrUnexpectedMessageType
)

func (c DecodeErrorCode) String() string {
	switch c {
	case ErrMalformed:
		return "Malformed"
	case ErrUnexpectedMessageType:
		return "UnexpectedMessageType"
	default:
		return "Unknown"
	}
}

// DecodeError is returned by Decode when a structurally valid
// MessagePack value fails the frame-shape invariants in §4.3.
type DecodeError struct {
	Code    DecodeErrorCode
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rpc: %s: %s", e.Code, e.Message)
}

func newMalformed(format string, args ...any) *DecodeError {
	return &DecodeError{Code: ErrMalformed, Message: fmt.Sprintf(format, args...)}
}
