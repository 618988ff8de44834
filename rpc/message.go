// Package rpc converts between Message values and MessagePack-RPC wire
// bytes: three frame shapes (Request, Response, Notification) per the
// canonical MessagePack-RPC spec, plus a streaming decoder that tolerates
// fragmentation, back-to-back frames, and partial reads down to a
// single byte.
package rpc

import "github.com/nvim-rpc/go-client/msgpack"

// messageType is the first element of every MessagePack-RPC frame.
type messageType int64

const (
	typeRequest      messageType = 0
	typeResponse     messageType = 1
	typeNotification messageType = 2
)

// Request is an outbound call awaiting a Response correlated by MsgID.
type Request struct {
	MsgID  uint32
	Method string
	Params msgpack.Value // must be Array-kind
}

// Response completes a previously-sent Request. Both fields are always
// present on the wire; Decode accepts any pair, including both Nil or
// both non-Nil, and the Client treats a non-Nil Error as a failed call.
type Response struct {
	MsgID  uint32
	Error  msgpack.Value // Nil when the call succeeded
	Result msgpack.Value // Nil when the call failed
}

// Notification is a fire-and-forget message carrying no MsgID.
type Notification struct {
	Method string
	Params msgpack.Value // must be Array-kind
}

// Message is exactly one of Request, Response, or Notification,
// populated by Decode. Exactly one of the three pointer fields is
// non-nil.
type Message struct {
	Request      *Request
	Response     *Response
	Notification *Notification
}
