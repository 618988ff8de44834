package client

import (
	"fmt"

	"github.com/nvim-rpc/go-client/msgpack"
	"github.com/nvim-rpc/go-client/transport"
)

// ErrorCode identifies the category of a client-level failure.
type ErrorCode int

const (
	// ErrNotConnected: a method requiring an open connection was
	// called before Connect, or after Disconnect.
	ErrNotConnected ErrorCode = iota

	// ErrAlreadyConnected: Connect was called while another Connect
	// was already in progress or had already succeeded.
	ErrAlreadyConnected

	// ErrProtocol names the protocol-failure category. No Client
	// method returns a *ClientError with this code: handshake failures
	// surface as *ProtocolError, and malformed inbound frames are
	// logged and dropped by the read loop.
	ErrProtocol

	// ErrConnectionClosed: the connection was torn down — by a local
	// Disconnect or by the read loop observing the peer go away — while
	// the request was still outstanding. Every pending slot is drained
	// with this code; it never indicates the request was rejected by
	// the peer.
	ErrConnectionClosed

	// ErrTimeout: ConnectionOptions.TimeoutMs elapsed before a response
	// for the request arrived. The connection itself is untouched;
	// only the timed-out waiter is affected.
	ErrTimeout
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotConnected:
		return "NotConnected"
	case ErrAlreadyConnected:
		return "AlreadyConnected"
	case ErrProtocol:
		return "Protocol"
	case ErrConnectionClosed:
		return "ConnectionClosed"
	case ErrTimeout:
		return "Timeout"
	default:
		return "Unknown"
	}
}

// Error lets a bare ErrorCode value satisfy the error interface, so a
// code constant can stand in directly as an errors.Is target.
func (c ErrorCode) Error() string { return c.String() }

// ClientError is the client-level error taxonomy: configuration and
// state-machine failures that are not transport or RPC-level.
type ClientError struct {
	Code    ErrorCode
	Message string
}

func (e *ClientError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("client: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("client: %s", e.Code)
}

func newClientError(code ErrorCode, format string, args ...any) *ClientError {
	return &ClientError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Is lets callers branch on a ClientError's category with errors.Is
// instead of an ErrorAs-plus-field-compare dance: errors.Is(err,
// client.ErrTimeout) matches any *ClientError carrying that code,
// regardless of its Message.
func (e *ClientError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && e.Code == code
}

// ProtocolError wraps a nvim_get_api_info handshake failure, after
// which Connect leaves the Client in Disconnected. Cause, when set, is
// the underlying *msgpack.ValueError or a nested *ProtocolError,
// preserved via Unwrap.
type ProtocolError struct {
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("client: protocol error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("client: protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// TransportError re-exports the transport package's error so callers
// that only import client can still type-switch on transport failures
// surfaced from request/notify without a second import.
type TransportError = transport.Error

// NvimError is returned by request when the peer completed the
// response with a non-nil error field. The connection remains usable;
// NvimError never invalidates it (see §7 propagation policy).
type NvimError struct {
	Value msgpack.Value
}

func (e *NvimError) Error() string {
	if s, ok := msgpack.AsStr(e.Value); ok {
		return fmt.Sprintf("nvim: %s", s)
	}
	if elems, ok := msgpack.AsArray(e.Value); ok && len(elems) >= 2 {
		if s, ok := msgpack.AsStr(elems[1]); ok {
			return fmt.Sprintf("nvim: %s", s)
		}
	}
	return "nvim: request failed"
}
