package rpc

import (
	"math"

	"github.com/nvim-rpc/go-client/msgpack"
)

// Decode reads one frame from the front of buf, returning the parsed
// Message and the number of bytes consumed.
//
// Decode returns msgpack.ErrNeedMoreData when buf holds an incomplete
// MessagePack value (the caller should read more and retry with the
// same buf plus the new bytes — nothing is consumed), a *msgpack.ValueError
// when the bytes are not valid MessagePack at all, or a *DecodeError
// when a structurally valid value does not match one of the three
// frame shapes.
func Decode(buf []byte) (Message, int, error) {
	v, n, err := msgpack.Decode(buf)
	if err != nil {
		return Message{}, 0, err
	}

	elems, err := msgpack.ExpectArray(v)
	if err != nil {
		return Message{}, 0, newMalformed("frame is not an array: %v", err)
	}
	if len(elems) == 0 {
		return Message{}, 0, newMalformed("empty frame")
	}

	kind, err := msgpack.ExpectInt64(elems[0])
	if err != nil {
		return Message{}, 0, newMalformed("frame[0] is not an integer: %v", err)
	}

	switch messageType(kind) {
	case typeRequest:
		req, err := decodeRequest(elems)
		if err != nil {
			return Message{}, 0, err
		}
		return Message{Request: req}, n, nil
	case typeResponse:
		resp, err := decodeResponse(elems)
		if err != nil {
			return Message{}, 0, err
		}
		return Message{Response: resp}, n, nil
	case typeNotification:
		notif, err := decodeNotification(elems)
		if err != nil {
			return Message{}, 0, err
		}
		return Message{Notification: notif}, n, nil
	default:
		return Message{}, 0, newMalformed("frame[0]=%d is not 0, 1, or 2", kind)
	}
}

func decodeRequest(elems []msgpack.Value) (*Request, error) {
	if len(elems) != 4 {
		return nil, newMalformed("request frame has %d elements, want 4", len(elems))
	}
	msgid, err := decodeMsgID(elems[1])
	if err != nil {
		return nil, err
	}
	method, err := decodeMethod(elems[2])
	if err != nil {
		return nil, err
	}
	params, err := decodeParams(elems[3])
	if err != nil {
		return nil, err
	}
	return &Request{MsgID: msgid, Method: method, Params: params}, nil
}

func decodeResponse(elems []msgpack.Value) (*Response, error) {
	if len(elems) != 4 {
		return nil, newMalformed("response frame has %d elements, want 4", len(elems))
	}
	msgid, err := decodeMsgID(elems[1])
	if err != nil {
		return nil, err
	}
	return &Response{MsgID: msgid, Error: elems[2], Result: elems[3]}, nil
}

func decodeNotification(elems []msgpack.Value) (*Notification, error) {
	if len(elems) != 3 {
		return nil, newMalformed("notification frame has %d elements, want 3", len(elems))
	}
	method, err := decodeMethod(elems[1])
	if err != nil {
		return nil, err
	}
	params, err := decodeParams(elems[2])
	if err != nil {
		return nil, err
	}
	return &Notification{Method: method, Params: params}, nil
}

func decodeMsgID(v msgpack.Value) (uint32, error) {
	u, err := msgpack.ExpectUint64(v)
	if err != nil {
		return 0, newMalformed("msgid: %v", err)
	}
	if u > math.MaxUint32 {
		return 0, newMalformed("msgid %d does not fit in u32", u)
	}
	return uint32(u), nil
}

func decodeMethod(v msgpack.Value) (string, error) {
	b, err := msgpack.ExpectStr(v)
	if err != nil {
		return "", newMalformed("method: %v", err)
	}
	return string(b), nil
}

func decodeParams(v msgpack.Value) (msgpack.Value, error) {
	if _, err := msgpack.ExpectArray(v); err != nil {
		return msgpack.Value{}, newMalformed("params: %v", err)
	}
	return v, nil
}
