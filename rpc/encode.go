package rpc

import "github.com/nvim-rpc/go-client/msgpack"

// EncodeRequest serializes a Request as a MessagePack array of four
// elements: [0, msgid, method, params]. params must be an Array-typed
// Value; callers coerce before calling, encoders never coerce.
func EncodeRequest(msgid uint32, method string, params msgpack.Value) []byte {
	frame := msgpack.Array([]msgpack.Value{
		msgpack.Int(int64(typeRequest)),
		msgpack.UInt(uint64(msgid)),
		msgpack.Str([]byte(method)),
		params,
	})
	return msgpack.Encode(frame)
}

// EncodeResponse serializes a Response as [1, msgid, error, result].
// Either errVal or result may be msgpack.Nil() when unused; both
// fields are always present on the wire.
func EncodeResponse(msgid uint32, errVal, result msgpack.Value) []byte {
	frame := msgpack.Array([]msgpack.Value{
		msgpack.Int(int64(typeResponse)),
		msgpack.UInt(uint64(msgid)),
		errVal,
		result,
	})
	return msgpack.Encode(frame)
}

// EncodeNotification serializes a Notification as [2, method, params].
func EncodeNotification(method string, params msgpack.Value) []byte {
	frame := msgpack.Array([]msgpack.Value{
		msgpack.Int(int64(typeNotification)),
		msgpack.Str([]byte(method)),
		params,
	})
	return msgpack.Encode(frame)
}
