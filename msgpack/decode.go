package msgpack

import (
	"fmt"
	"math"
)

// ErrNeedMoreData is returned by Decode when buf holds a prefix of a
// valid encoding but not enough bytes to finish it. Callers should read
// more bytes from the transport, append them to buf, and retry — Decode
// never consumes partial input, so retrying with the same buf plus
// appended bytes is always safe.
//
// ErrNeedMoreData is distinct from a *ValueError: it is not a malformed
// encoding, only an incomplete one. A caller that sees a transport EOF
// while ErrNeedMoreData is outstanding knows the peer hung up
// mid-frame, which is itself an error worth surfacing distinctly from a
// clean, frame-aligned disconnect.
var ErrNeedMoreData = fmt.Errorf("msgpack: need more data")

// Decode reads one Value from the front of buf and returns it along
// with the number of bytes consumed. On success, buf[:n] is the
// encoding just decoded and the caller advances its read cursor by n.
//
// Decode returns ErrNeedMoreData (n is meaningless and must be ignored)
// when buf is a valid but incomplete prefix, or a *ValueError when a
// type tag or length prefix is outright malformed. Decode only ever
// inspects buf; it performs no I/O and retains no reference to buf
// across calls.
func Decode(buf []byte) (Value, int, error) {
	d := decoder{buf: buf}
	v, err := d.decodeValue()
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.pos, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) need(n int) error {
	if d.pos+n > len(d.buf) {
		return ErrNeedMoreData
	}
	return nil
}

func (d *decoder) readByte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readUint8() (uint8, error) {
	b, err := d.readByte()
	return uint8(b), err
}

func (d *decoder) readUint16() (uint16, error) {
	b, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (d *decoder) readUint32() (uint32, error) {
	b, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (d *decoder) readUint64() (uint64, error) {
	b, err := d.readBytes(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// decodeValue decodes exactly one Value starting at d.pos. On
// ErrNeedMoreData or a malformed tag, d.pos is left in an undefined
// state — callers must not reuse a decoder instance after an error,
// which is why Decode always constructs a fresh one.
func (d *decoder) decodeValue() (Value, error) {
	tag, err := d.readByte()
	if err != nil {
		return Value{}, err
	}

	switch {
	case tag <= 0x7f: // positive fixint, decoded as UInt like the uint formats
		return UInt(uint64(tag)), nil
	case tag >= 0xe0: // negative fixint
		return Int(int64(int8(tag))), nil
	case tag&0xe0 == 0xa0: // fixstr
		return d.decodeStr(int(tag & 0x1f))
	case tag&0xf0 == 0x90: // fixarray
		return d.decodeArray(int(tag & 0xf))
	case tag&0xf0 == 0x80: // fixmap
		return d.decodeMap(int(tag & 0xf))
	}

	switch tag {
	case 0xc0:
		return Nil(), nil
	case 0xc2:
		return Bool(false), nil
	case 0xc3:
		return Bool(true), nil
	case 0xcc:
		u, err := d.readUint8()
		return UInt(uint64(u)), err
	case 0xcd:
		u, err := d.readUint16()
		return UInt(uint64(u)), err
	case 0xce:
		u, err := d.readUint32()
		return UInt(uint64(u)), err
	case 0xcf:
		u, err := d.readUint64()
		return UInt(u), err
	case 0xd0:
		u, err := d.readUint8()
		return Int(int64(int8(u))), err
	case 0xd1:
		u, err := d.readUint16()
		return Int(int64(int16(u))), err
	case 0xd2:
		u, err := d.readUint32()
		return Int(int64(int32(u))), err
	case 0xd3:
		u, err := d.readUint64()
		return Int(int64(u)), err
	case 0xca:
		return d.decodeFloat32()
	case 0xcb:
		return d.decodeFloat64()
	case 0xd9:
		n, err := d.readUint8()
		if err != nil {
			return Value{}, err
		}
		return d.decodeStr(int(n))
	case 0xda:
		n, err := d.readUint16()
		if err != nil {
			return Value{}, err
		}
		return d.decodeStr(int(n))
	case 0xdb:
		n, err := d.readUint32()
		if err != nil {
			return Value{}, err
		}
		return d.decodeStr(int(n))
	case 0xc4:
		n, err := d.readUint8()
		if err != nil {
			return Value{}, err
		}
		return d.decodeBin(int(n))
	case 0xc5:
		n, err := d.readUint16()
		if err != nil {
			return Value{}, err
		}
		return d.decodeBin(int(n))
	case 0xc6:
		n, err := d.readUint32()
		if err != nil {
			return Value{}, err
		}
		return d.decodeBin(int(n))
	case 0xdc:
		n, err := d.readUint16()
		if err != nil {
			return Value{}, err
		}
		return d.decodeArray(int(n))
	case 0xdd:
		n, err := d.readUint32()
		if err != nil {
			return Value{}, err
		}
		return d.decodeArray(int(n))
	case 0xde:
		n, err := d.readUint16()
		if err != nil {
			return Value{}, err
		}
		return d.decodeMap(int(n))
	case 0xdf:
		n, err := d.readUint32()
		if err != nil {
			return Value{}, err
		}
		return d.decodeMap(int(n))
	case 0xd4:
		return d.decodeExt(1)
	case 0xd5:
		return d.decodeExt(2)
	case 0xd6:
		return d.decodeExt(4)
	case 0xd7:
		return d.decodeExt(8)
	case 0xd8:
		return d.decodeExt(16)
	case 0xc7:
		n, err := d.readUint8()
		if err != nil {
			return Value{}, err
		}
		return d.decodeExt(int(n))
	case 0xc8:
		n, err := d.readUint16()
		if err != nil {
			return Value{}, err
		}
		return d.decodeExt(int(n))
	case 0xc9:
		n, err := d.readUint32()
		if err != nil {
			return Value{}, err
		}
		return d.decodeExt(int(n))
	default:
		return Value{}, newMalformedError("unrecognized type tag 0x%02x", tag)
	}
}

func (d *decoder) decodeFloat32() (Value, error) {
	u, err := d.readUint32()
	if err != nil {
		return Value{}, err
	}
	return Float(float64(math.Float32frombits(u))), nil
}

func (d *decoder) decodeFloat64() (Value, error) {
	u, err := d.readUint64()
	if err != nil {
		return Value{}, err
	}
	return Float(math.Float64frombits(u)), nil
}

func (d *decoder) decodeStr(n int) (Value, error) {
	b, err := d.readBytes(n)
	if err != nil {
		return Value{}, err
	}
	return Str(b), nil
}

func (d *decoder) decodeBin(n int) (Value, error) {
	b, err := d.readBytes(n)
	if err != nil {
		return Value{}, err
	}
	return Bin(b), nil
}

// decodeArray decodes n elements recursively. If any nested element
// returns ErrNeedMoreData, that error propagates immediately: the
// array is not partially materialized, and d.pos is left wherever the
// failing nested read left it (irrelevant, since the caller discards
// this decoder on error).
func (d *decoder) decodeArray(n int) (Value, error) {
	elems := make([]Value, n)
	for i := 0; i < n; i++ {
		v, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		elems[i] = v
	}
	return Array(elems), nil
}

// decodeMap decodes n key/value pairs. Keys must decode to Str —
// MessagePack permits arbitrary map keys, but nvim's RPC framing only
// ever sends string-keyed maps (see rpc package), so a non-Str key is
// treated as malformed here rather than threading a more general key
// type through the rest of the codec.
func (d *decoder) decodeMap(n int) (Value, error) {
	m := Map()
	for i := 0; i < n; i++ {
		k, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		val, err := d.decodeValue()
		if err != nil {
			return Value{}, err
		}
		key, ok := AsStr(k)
		if !ok {
			return Value{}, newMalformedError("map key is %s, want str", k.Kind())
		}
		m.Put(string(key), val)
	}
	return m, nil
}

func (d *decoder) decodeExt(n int) (Value, error) {
	typeCode, err := d.readByte()
	if err != nil {
		return Value{}, err
	}
	data, err := d.readBytes(n)
	if err != nil {
		return Value{}, err
	}
	if int8(typeCode) == -1 {
		ts, err := decodeTimestampPayload(data)
		if err != nil {
			return Value{}, err
		}
		return TimestampValue(ts), nil
	}
	return Ext(int8(typeCode), data), nil
}

// decodeTimestampPayload parses the 4-, 8-, or 12-byte payload of a
// timestamp extension (type -1), per the msgpack-spec timestamp
// extension rules.
func decodeTimestampPayload(data []byte) (Timestamp, error) {
	switch len(data) {
	case 4:
		sec := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
		return Timestamp{Sec: int64(sec)}, nil
	case 8:
		var packed uint64
		for i := 0; i < 8; i++ {
			packed = packed<<8 | uint64(data[i])
		}
		nsec := int32(packed >> 34)
		sec := int64(packed & ((1 << 34) - 1))
		return Timestamp{Sec: sec, Nsec: nsec}, nil
	case 12:
		nsec := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
		var sec uint64
		for i := 0; i < 8; i++ {
			sec = sec<<8 | uint64(data[4+i])
		}
		return Timestamp{Sec: int64(sec), Nsec: int32(nsec)}, nil
	default:
		return Timestamp{}, newMalformedError("timestamp extension payload has invalid length %d", len(data))
	}
}
