package msgpack

import (
	"bytes"
	"math"
)

// ============================================================================
// MessagePack Encoding — Value → Wire Format
// ============================================================================
//
// Each helper below encodes one MessagePack wire type, following the
// canonical format at https://github.com/msgpack/msgpack/blob/master/spec.md.
// Encode is the entry point: it dispatches on Kind and chooses the most
// compact integer, length or header representation that fits the value
// (e.g. a small UInt is written as a positive fixint, not uint64).
// Floats are always written as float64.

// Encode serializes v to its canonical MessagePack byte representation.
// Encode never fails: every Kind has a well-defined wire form.
func Encode(v Value) []byte {
	buf := new(bytes.Buffer)
	encodeInto(buf, v)
	return buf.Bytes()
}

func encodeInto(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindNil:
		writeNil(buf)
	case KindBool:
		writeBool(buf, v.b)
	case KindInt:
		writeInt(buf, v.i)
	case KindUint:
		writeUint(buf, v.u)
	case KindFloat:
		writeFloat64(buf, v.f)
	case KindStr:
		writeStr(buf, v.raw)
	case KindBin:
		writeBin(buf, v.raw)
	case KindArray:
		writeArrayHeader(buf, len(v.arr))
		for _, child := range v.arr {
			encodeInto(buf, child)
		}
	case KindMap:
		writeMapHeader(buf, v.m.len())
		for _, k := range v.m.keys() {
			child, _ := v.m.get(k)
			writeStr(buf, []byte(k))
			encodeInto(buf, child)
		}
	case KindExt:
		writeExt(buf, v.extType, v.extData)
	case KindTimestamp:
		writeTimestamp(buf, v.ts)
	default:
		writeNil(buf)
	}
}

// writeNil encodes the nil value.
//
// Wire format: [0xc0]
func writeNil(buf *bytes.Buffer) {
	buf.WriteByte(0xc0)
}

// writeBool encodes a boolean.
//
// Wire format: [0xc2] for false, [0xc3] for true.
func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(0xc3)
	} else {
		buf.WriteByte(0xc2)
	}
}

// writeInt encodes a signed integer, choosing the smallest representation
// that round-trips i exactly.
//
// Wire format, by range:
//
//	0..MaxInt64  → delegated to writeUint (positive fixint or uint8..uint64)
//	-32..-1      → negative fixint [0xe0|n]
//	-128..-33    → [0xd0][i8]
//	int16        → [0xd1][i16 be]
//	int32        → [0xd2][i32 be]
//	int64        → [0xd3][i64 be]
func writeInt(buf *bytes.Buffer, i int64) {
	switch {
	case i >= 0 && i <= math.MaxInt64:
		writeUint(buf, uint64(i))
	case i >= -32 && i < 0:
		buf.WriteByte(byte(0xe0 | (i & 0x1f)))
	case i >= math.MinInt8 && i <= math.MaxInt8:
		buf.WriteByte(0xd0)
		buf.WriteByte(byte(i))
	case i >= math.MinInt16 && i <= math.MaxInt16:
		buf.WriteByte(0xd1)
		writeBigEndian16(buf, uint16(i))
	case i >= math.MinInt32 && i <= math.MaxInt32:
		buf.WriteByte(0xd2)
		writeBigEndian32(buf, uint32(i))
	default:
		buf.WriteByte(0xd3)
		writeBigEndian64(buf, uint64(i))
	}
}

// writeUint encodes an unsigned integer, choosing the smallest
// representation that round-trips u exactly.
//
// Wire format, by range:
//
//	0..127   → positive fixint [0x00-0x7f]
//	uint8    → [0xcc][u8]
//	uint16   → [0xcd][u16 be]
//	uint32   → [0xce][u32 be]
//	uint64   → [0xcf][u64 be]
func writeUint(buf *bytes.Buffer, u uint64) {
	switch {
	case u <= 0x7f:
		buf.WriteByte(byte(u))
	case u <= math.MaxUint8:
		buf.WriteByte(0xcc)
		buf.WriteByte(byte(u))
	case u <= math.MaxUint16:
		buf.WriteByte(0xcd)
		writeBigEndian16(buf, uint16(u))
	case u <= math.MaxUint32:
		buf.WriteByte(0xce)
		writeBigEndian32(buf, uint32(u))
	default:
		buf.WriteByte(0xcf)
		writeBigEndian64(buf, u)
	}
}

// writeFloat64 encodes a 64-bit float.
//
// Wire format: [0xcb][f64 be]. Values are always written as float64 —
// the Value model carries no separate float32 variant.
func writeFloat64(buf *bytes.Buffer, f float64) {
	buf.WriteByte(0xcb)
	writeBigEndian64(buf, math.Float64bits(f))
}

// writeStr encodes a UTF-8 string.
//
// Wire format, by byte length:
//
//	0..31    → fixstr [0xa0|len][data]
//	0..255   → str8   [0xd9][len u8][data]
//	0..65535 → str16  [0xda][len u16 be][data]
//	else     → str32  [0xdb][len u32 be][data]
func writeStr(buf *bytes.Buffer, s []byte) {
	n := len(s)
	switch {
	case n <= 0x1f:
		buf.WriteByte(byte(0xa0 | n))
	case n <= math.MaxUint8:
		buf.WriteByte(0xd9)
		buf.WriteByte(byte(n))
	case n <= math.MaxUint16:
		buf.WriteByte(0xda)
		writeBigEndian16(buf, uint16(n))
	default:
		buf.WriteByte(0xdb)
		writeBigEndian32(buf, uint32(n))
	}
	buf.Write(s)
}

// writeBin encodes opaque binary data.
//
// Wire format, by byte length:
//
//	0..255   → bin8  [0xc4][len u8][data]
//	0..65535 → bin16 [0xc5][len u16 be][data]
//	else     → bin32 [0xc6][len u32 be][data]
func writeBin(buf *bytes.Buffer, b []byte) {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		buf.WriteByte(0xc4)
		buf.WriteByte(byte(n))
	case n <= math.MaxUint16:
		buf.WriteByte(0xc5)
		writeBigEndian16(buf, uint16(n))
	default:
		buf.WriteByte(0xc6)
		writeBigEndian32(buf, uint32(n))
	}
	buf.Write(b)
}

// writeArrayHeader encodes an array's element count (elements follow,
// each encoded independently by the caller).
//
// Wire format, by element count:
//
//	0..15    → fixarray [0x90|n]
//	0..65535 → array16  [0xdc][n u16 be]
//	else     → array32  [0xdd][n u32 be]
func writeArrayHeader(buf *bytes.Buffer, n int) {
	switch {
	case n <= 0xf:
		buf.WriteByte(byte(0x90 | n))
	case n <= math.MaxUint16:
		buf.WriteByte(0xdc)
		writeBigEndian16(buf, uint16(n))
	default:
		buf.WriteByte(0xdd)
		writeBigEndian32(buf, uint32(n))
	}
}

// writeMapHeader encodes a map's entry count (key/value pairs follow,
// each encoded independently by the caller — keys as Str, values by Kind).
//
// Wire format, by entry count:
//
//	0..15    → fixmap [0x80|n]
//	0..65535 → map16  [0xde][n u16 be]
//	else     → map32  [0xdf][n u32 be]
func writeMapHeader(buf *bytes.Buffer, n int) {
	switch {
	case n <= 0xf:
		buf.WriteByte(byte(0x80 | n))
	case n <= math.MaxUint16:
		buf.WriteByte(0xde)
		writeBigEndian16(buf, uint16(n))
	default:
		buf.WriteByte(0xdf)
		writeBigEndian32(buf, uint32(n))
	}
}

// writeExt encodes an application-defined extension type.
//
// Wire format, by payload length:
//
//	1,2,4,8,16 → fixext [0xd4-0xd8][type i8][data]
//	0..255     → ext8   [0xc7][len u8][type i8][data]
//	0..65535   → ext16  [0xc8][len u16 be][type i8][data]
//	else       → ext32  [0xc9][len u32 be][type i8][data]
func writeExt(buf *bytes.Buffer, typeCode int8, data []byte) {
	n := len(data)
	switch n {
	case 1:
		buf.WriteByte(0xd4)
	case 2:
		buf.WriteByte(0xd5)
	case 4:
		buf.WriteByte(0xd6)
	case 8:
		buf.WriteByte(0xd7)
	case 16:
		buf.WriteByte(0xd8)
	default:
		switch {
		case n <= math.MaxUint8:
			buf.WriteByte(0xc7)
			buf.WriteByte(byte(n))
		case n <= math.MaxUint16:
			buf.WriteByte(0xc8)
			writeBigEndian16(buf, uint16(n))
		default:
			buf.WriteByte(0xc9)
			writeBigEndian32(buf, uint32(n))
		}
	}
	buf.WriteByte(byte(typeCode))
	buf.Write(data)
}

// writeTimestamp encodes a Timestamp using the MessagePack timestamp
// extension (type -1), choosing the 32-, 64-, or 96-bit form per the
// msgpack-spec timestamp extension rules.
//
// Wire format:
//
//	32-bit: fixext4, 4 bytes: seconds (u32 be), only when 0<=Sec<=2^32-1 and Nsec==0
//	64-bit: fixext8, 8 bytes: nsec<<34 | sec (u64 be), when 0<=Sec<2^34
//	96-bit: ext8 len=12, 12 bytes: nsec (u32 be) + sec (i64 be)
func writeTimestamp(buf *bytes.Buffer, ts Timestamp) {
	const extTypeTimestamp = -1
	switch {
	case ts.Nsec == 0 && ts.Sec >= 0 && ts.Sec <= math.MaxUint32:
		data := make([]byte, 4)
		putBigEndian32(data, uint32(ts.Sec))
		writeExt(buf, extTypeTimestamp, data)
	case ts.Sec >= 0 && ts.Sec < (1<<34):
		packed := uint64(ts.Nsec)<<34 | uint64(ts.Sec)
		data := make([]byte, 8)
		putBigEndian64(data, packed)
		writeExt(buf, extTypeTimestamp, data)
	default:
		data := make([]byte, 12)
		putBigEndian32(data[:4], uint32(ts.Nsec))
		putBigEndian64(data[4:], uint64(ts.Sec))
		writeExt(buf, extTypeTimestamp, data)
	}
}

func writeBigEndian16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v))
}

func writeBigEndian32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	putBigEndian32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeBigEndian64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	putBigEndian64(tmp[:], v)
	buf.Write(tmp[:])
}

func putBigEndian32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func putBigEndian64(b []byte, v uint64) {
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
}
