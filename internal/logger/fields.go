package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the client, transport,
// and rpc packages. Use these keys consistently so log lines stay greppable
// and aggregatable across transports.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// RPC call identity
	// ========================================================================
	KeyMethod    = "method"    // remote procedure name, e.g. nvim_eval
	KeyMsgID     = "msgid"     // Request/Response correlation id
	KeyTransport = "transport" // transport kind: unix, tcp, namedpipe, stdio, childprocess
	KeyAddress   = "address"   // connect address (path, host:port, pipe name)

	// ========================================================================
	// Frame I/O
	// ========================================================================
	KeyBytesRead    = "bytes_read"    // bytes read off the wire in one Transport.read
	KeyBytesWritten = "bytes_written" // bytes written to the wire in one frame write
	KeyFrameKind    = "frame_kind"    // request, response, notification
	KeyBufferedLen  = "buffered_len"  // bytes currently buffered awaiting a full frame

	// ========================================================================
	// Outcome
	// ========================================================================
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
	KeyErrorCode  = "error_code"  // taxonomy error code (see client.ErrorCode)
	KeyAttempt    = "attempt"     // retry/reconnect attempt number
	KeyPending    = "pending"     // number of outstanding requests at a point in time
)

// Method returns a slog.Attr for the remote procedure name.
func Method(name string) slog.Attr {
	return slog.String(KeyMethod, name)
}

// MsgID returns a slog.Attr for the Request/Response correlation id.
func MsgID(id uint32) slog.Attr {
	return slog.Uint64(KeyMsgID, uint64(id))
}

// Transport returns a slog.Attr for the active transport kind.
func Transport(kind string) slog.Attr {
	return slog.String(KeyTransport, kind)
}

// Address returns a slog.Attr for the connect address.
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, addr)
}

// BytesRead returns a slog.Attr for bytes read off the wire.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for bytes written to the wire.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// FrameKind returns a slog.Attr for the decoded frame's kind.
func FrameKind(kind string) slog.Attr {
	return slog.String(KeyFrameKind, kind)
}

// BufferedLen returns a slog.Attr for the read buffer's current length.
func BufferedLen(n int) slog.Attr {
	return slog.Int(KeyBufferedLen, n)
}

// Err returns a slog.Attr carrying an error's message.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a taxonomy error code.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Attempt returns a slog.Attr for a retry/reconnect attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Pending returns a slog.Attr for the number of outstanding requests.
func Pending(n int) slog.Attr {
	return slog.Int(KeyPending, n)
}
