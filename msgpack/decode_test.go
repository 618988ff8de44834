package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Round-trip Tests
// ============================================================================

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Value{
		Nil(),
		Bool(true),
		Bool(false),
		Int(-1),
		Int(-129),
		Int(-1 << 40),
		UInt(0),
		UInt(200),
		UInt(1 << 40),
		Float(3.25),
		Str([]byte("nvim_get_api_info")),
		Bin([]byte{0xde, 0xad, 0xbe, 0xef}),
		Array([]Value{Int(1), Str([]byte("x")), Bool(true)}),
		Ext(3, []byte{9, 9, 9}),
		TimestampValue(Timestamp{Sec: 1700000000, Nsec: 123}),
	}

	for _, v := range cases {
		encoded := Encode(v)
		decoded, n, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), n)
		assert.Equal(t, v.Kind(), decoded.Kind())
	}
}

func TestEncodeDecodeMapRoundTrip(t *testing.T) {
	m := Map()
	m.Put("method", Str([]byte("nvim_eval")))
	m.Put("msgid", UInt(7))

	encoded := Encode(m)
	decoded, n, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.Equal(t, []string{"method", "msgid"}, decoded.Keys())

	method, ok := decoded.Get("method")
	require.True(t, ok)
	s, err := ExpectStr(method)
	require.NoError(t, err)
	assert.Equal(t, "nvim_eval", string(s))
}

func TestEncodeDecodeNestedArray(t *testing.T) {
	inner := Array([]Value{Int(1), Int(2)})
	outer := Array([]Value{inner, Str([]byte("tail"))})

	encoded := Encode(outer)
	decoded, _, err := Decode(encoded)
	require.NoError(t, err)

	elems, err := ExpectArray(decoded)
	require.NoError(t, err)
	require.Len(t, elems, 2)

	innerElems, err := ExpectArray(elems[0])
	require.NoError(t, err)
	assert.Len(t, innerElems, 2)
}

// ============================================================================
// Partial / Streaming Tests
// ============================================================================

func TestDecodeNeedsMoreData(t *testing.T) {
	t.Run("EmptyBufferNeedsMore", func(t *testing.T) {
		_, _, err := Decode(nil)
		assert.ErrorIs(t, err, ErrNeedMoreData)
	})

	t.Run("TruncatedMultiByteIntNeedsMore", func(t *testing.T) {
		full := Encode(UInt(1 << 40))
		_, _, err := Decode(full[:len(full)-1])
		assert.ErrorIs(t, err, ErrNeedMoreData)
	})

	t.Run("TruncatedStringBodyNeedsMore", func(t *testing.T) {
		full := Encode(Str([]byte("hello world")))
		_, _, err := Decode(full[:3])
		assert.ErrorIs(t, err, ErrNeedMoreData)
	})

	t.Run("TruncatedNestedArrayNeedsMoreAndDoesNotPartiallyConsume", func(t *testing.T) {
		full := Encode(Array([]Value{Int(1), Str([]byte("longer string here"))}))
		_, _, err := Decode(full[:len(full)-2])
		assert.ErrorIs(t, err, ErrNeedMoreData)
	})
}

// TestDecodeByteAtATime simulates a transport that delivers one byte per
// read: feeding bytes one at a time must never succeed early and must
// succeed exactly once enough bytes have arrived.
func TestDecodeByteAtATime(t *testing.T) {
	m := Map()
	m.Put("method", Str([]byte("nvim_command")))
	m.Put("params", Array([]Value{Str([]byte(":w")), Int(1), Int(2)}))
	full := Encode(m)

	var buf []byte
	for i := 0; i < len(full); i++ {
		buf = append(buf, full[i])
		_, _, err := Decode(buf)
		if i < len(full)-1 {
			assert.ErrorIsf(t, err, ErrNeedMoreData, "expected NeedMoreData at byte %d/%d", i+1, len(full))
		} else {
			assert.NoError(t, err, "expected success once all bytes arrived")
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Run("UnrecognizedTagFails", func(t *testing.T) {
		_, _, err := Decode([]byte{0xc1}) // 0xc1 is never assigned in MessagePack
		var ve *ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ErrMalformed, ve.Code)
	})

	t.Run("NonStringMapKeyFails", func(t *testing.T) {
		// fixmap with 1 entry: key is int 1, value is int 2
		buf := []byte{0x81, 0x01, 0x02}
		_, _, err := Decode(buf)
		var ve *ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ErrMalformed, ve.Code)
	})
}

func TestDecodeLeavesTrailingBytesUnconsumed(t *testing.T) {
	encoded := Encode(Int(5))
	buf := append(append([]byte{}, encoded...), Encode(Int(6))...)

	first, n, err := Decode(buf)
	require.NoError(t, err)
	i, _ := ExpectInt64(first)
	assert.Equal(t, int64(5), i)

	second, _, err := Decode(buf[n:])
	require.NoError(t, err)
	i2, _ := ExpectInt64(second)
	assert.Equal(t, int64(6), i2)
}
