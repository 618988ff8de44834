// Package msgpack implements the MessagePack value model and wire codec
// used by the RPC framing layer (see package rpc) to talk to a Neovim
// process.
//
// Value is a tagged sum type mirroring the MessagePack type system: Nil,
// Bool, Int, UInt, Float, Str, Bin, Array, Map, Ext and Timestamp. A Value
// owns its contents; a container's children are released when the
// container is released via Free. Sharing a container across owners
// requires an explicit Clone.
//
// The codec is hand-rolled rather than built on a third-party MessagePack
// library: the Value model and its streaming, partial-read-tolerant
// decoder (see Decode in decode.go) are the reimplementation target of
// this component — wire codec logic is core domain logic, not ambient
// plumbing.
package msgpack

import "fmt"

// Kind identifies which variant of the MessagePack sum type a Value holds.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindStr
	KindBin
	KindArray
	KindMap
	KindExt
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBin:
		return "bin"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindExt:
		return "ext"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Timestamp is the decoded form of a MessagePack timestamp extension
// (type -1), per the msgspec timestamp extension format: seconds since
// the Unix epoch plus a nanosecond fraction in [0, 999999999].
type Timestamp struct {
	Sec  int64
	Nsec int32
}

// Value is the MessagePack payload tagged sum type. The zero Value is
// Nil. Callers should treat a Value as owned data: once put into a Map
// or Array, or once it has been encoded, it should not be mutated and
// shared through another reference.
type Value struct {
	kind Kind

	b   bool
	i   int64
	u   uint64
	f   float64
	raw []byte // backing bytes for Str and Bin

	arr []Value
	m   *orderedMap

	extType int8
	extData []byte

	ts Timestamp
}

// Kind reports the Value's variant.
func (v Value) Kind() Kind { return v.kind }

// ---------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------

// Nil returns the Nil value.
func Nil() Value { return Value{kind: KindNil} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed-integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// UInt returns an unsigned-integer value.
func UInt(u uint64) Value { return Value{kind: KindUint, u: u} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns an owning string Value. The bytes are expected (but not
// verified) to be valid UTF-8; decoded strings are
// kept in their raw form and never re-validated.
func Str(b []byte) Value {
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{kind: KindStr, raw: owned}
}

// Bin returns an owning binary Value.
func Bin(b []byte) Value {
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{kind: KindBin, raw: owned}
}

// Array returns an owning Array Value; ownership of children transfers
// into the returned Value.
func Array(children []Value) Value {
	return Value{kind: KindArray, arr: children}
}

// Map returns a new, empty owning Map value with insertion order
// preserved across Put calls.
func Map() Value {
	return Value{kind: KindMap, m: newOrderedMap()}
}

// Ext returns an Extension value: an application-defined type code plus
// opaque payload bytes (MessagePack ext family).
func Ext(typeCode int8, data []byte) Value {
	owned := make([]byte, len(data))
	copy(owned, data)
	return Value{kind: KindExt, extType: typeCode, extData: owned}
}

// TimestampValue returns a Timestamp value.
func TimestampValue(ts Timestamp) Value {
	return Value{kind: KindTimestamp, ts: ts}
}

// ---------------------------------------------------------------------
// Map mutation
// ---------------------------------------------------------------------

// Put inserts key into the Map, duplicating key into the map's own
// storage and transferring ownership of value in. If key is already
// present, its value is replaced in place and the key keeps its
// original position. Put panics if v is not a Map — callers construct
// with Map() before mutating, mirroring the C source's "map handle
// required" precondition.
func (v *Value) Put(key string, value Value) {
	if v.kind != KindMap {
		panic(fmt.Sprintf("msgpack: Put called on non-map Value (kind=%s)", v.kind))
	}
	v.m.put(key, value)
}

// Get looks up key in a Map, returning (Value{}, false) if absent or if
// v is not a Map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	return v.m.get(key)
}

// Len reports the number of entries in a Map or elements in an Array;
// zero for every other Kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return v.m.len()
	default:
		return 0
	}
}

// Keys returns a Map's keys in insertion order. Returns nil for
// non-Map values.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return v.m.keys()
}

// Elem returns the i'th element of an Array. Panics if v is not an
// Array or i is out of range — callers are expected to check Len()
// (or Kind()) first, exactly as slice indexing panics on misuse.
func (v Value) Elem(i int) Value {
	return v.arr[i]
}

// ---------------------------------------------------------------------
// Free
// ---------------------------------------------------------------------

// Free recursively releases a Value's owned contents. Go's garbage
// collector reclaims memory on its own, but Free exists so the
// ownership discipline described in the package doc has a concrete,
// callable form — particularly in Object, where a Value tree built
// partway through must be released before an error propagates rather
// than silently retained. Calling Free on a Value leaves it Nil;
// calling it twice, or on a Value that was never heap-backed, is safe.
func Free(v *Value) {
	if v == nil {
		return
	}
	switch v.kind {
	case KindArray:
		for i := range v.arr {
			Free(&v.arr[i])
		}
	case KindMap:
		if v.m != nil {
			for _, k := range v.m.keys() {
				if child, ok := v.m.get(k); ok {
					Free(&child)
				}
			}
		}
	}
	*v = Value{}
}

// Clone deep-copies a Value, including nested Array/Map contents, so
// the result can be owned independently of the original.
func Clone(v Value) Value {
	switch v.kind {
	case KindStr, KindBin, KindExt:
		out := v
		out.raw = append([]byte(nil), v.raw...)
		out.extData = append([]byte(nil), v.extData...)
		return out
	case KindArray:
		children := make([]Value, len(v.arr))
		for i, c := range v.arr {
			children[i] = Clone(c)
		}
		return Value{kind: KindArray, arr: children}
	case KindMap:
		out := Map()
		for _, k := range v.m.keys() {
			child, _ := v.m.get(k)
			out.Put(k, Clone(child))
		}
		return out
	default:
		return v
	}
}

// ---------------------------------------------------------------------
// Object projection
// ---------------------------------------------------------------------

// Field pairs a Map key with its projected Value, for use with Object.
type Field struct {
	Key   string
	Value Value
}

// Object projects a record of named fields into a Map, in field order.
// Field values are built by the caller before Object runs; if a panic
// occurs while they are being inserted into the Map, the fields already
// collected are freed before the panic is re-raised, so object
// projection never retains a nested payload when the overall build does
// not complete. This mirrors the
// "free nested payload on map-insertion failure" contract: in Go the
// failure mode is a panic rather than a returned OOM error, but the
// release discipline is the same.
func Object(fields ...Field) (result Value) {
	built := make([]Value, 0, len(fields))
	defer func() {
		if r := recover(); r != nil {
			for i := range built {
				Free(&built[i])
			}
			panic(r)
		}
	}()

	m := Map()
	for _, f := range fields {
		built = append(built, f.Value)
		m.Put(f.Key, f.Value)
	}
	return m
}
