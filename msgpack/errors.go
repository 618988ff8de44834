package msgpack

import "fmt"

// ValueErrorCode identifies the category of a value-model error.
type ValueErrorCode int

const (
	// ErrExpectedType indicates expectT was called against a Value of a
	// different Kind than the one requested.
	ErrExpectedType ValueErrorCode = iota

	// ErrOverflow indicates a numeric value does not fit into the
	// requested integer width/signedness (e.g. expect_u64 on a negative
	// Int, or expect_i64 on a UInt above math.MaxInt64).
	ErrOverflow

	// ErrMalformed indicates the decoder rejected the wire bytes: an
	// unrecognized type tag, a map key that is not a string, or a
	// timestamp extension payload of invalid length. A length prefix
	// that runs past the end of the input yields ErrNeedMoreData
	// instead.
	ErrMalformed
)

func (c ValueErrorCode) String() string {
	switch c {
	case ErrExpectedType:
		return "ExpectedType"
	case ErrOverflow:
		return "Overflow"
	case ErrMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// ValueError is returned by the expectT family of accessors and by the
// decoder when wire bytes cannot be interpreted as a well-formed Value.
//
// Kind is the Value's actual Kind when the error is ErrExpectedType;
// for ErrOverflow it is the Kind the caller attempted to narrow into
// (Int or UInt). Callers that only care about the category should
// switch on Code rather than parse Message.
type ValueError struct {
	Code    ValueErrorCode
	Kind    Kind
	Message string
}

func (e *ValueError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("msgpack: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("msgpack: %s", e.Code)
}

func newExpectedTypeError(want Kind, got Value) *ValueError {
	return &ValueError{
		Code:    ErrExpectedType,
		Kind:    got.kind,
		Message: fmt.Sprintf("expected %s, got %s", want, got.kind),
	}
}

func newOverflowError(want Kind, detail string) *ValueError {
	return &ValueError{Code: ErrOverflow, Kind: want, Message: detail}
}

func newMalformedError(format string, args ...any) *ValueError {
	return &ValueError{Code: ErrMalformed, Message: fmt.Sprintf(format, args...)}
}
