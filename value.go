package sppfcpg

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Value is a borrow-scoped view of a property value: a ValueHeader plus its
// payload bytes (spec §4.4). It must not outlive the Buffer it was read
// from.
type Value struct {
	buf     *Buffer
	kind    ValueKind
	payload []byte
}

// readValue decodes the ValueHeader at offset and borrows its payload.
func readValue(buf *Buffer, offset Offset) (Value, error) {
	hdr, err := buf.readFixed(offset, valueHeaderSize)
	if err != nil {
		return Value{}, err
	}
	kind := ValueKind(binary.LittleEndian.Uint16(hdr[valueKindOffset:]))
	length := binary.LittleEndian.Uint32(hdr[valueLengthOffset:])
	if !kind.valid() {
		return Value{}, newErr(InvalidArgument, "value at %s has unknown kind %d", offset, kind)
	}
	payload, err := buf.Slice(offset+Offset(valueHeaderSize), length)
	if err != nil {
		return Value{}, err
	}
	return Value{buf: buf, kind: kind, payload: payload}, nil
}

// Kind reports the tagged kind of this value.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) mismatch(want ValueKind) error {
	return newErr(TypeMismatch, "value is %s, requested as %s", v.kind, want)
}

// AsString returns the value as a string, failing with TypeMismatch unless Kind() == KindString.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	if !utf8.Valid(v.payload) {
		return "", newErr(InvalidUtf8, "string value payload is not valid UTF-8")
	}
	return string(v.payload), nil
}

// TryAsString returns the value as a string and true, or "" and false if the kind doesn't match.
func (v Value) TryAsString() (string, bool) {
	s, err := v.AsString()
	return s, err == nil
}

// AsI32 returns the value as an int32.
func (v Value) AsI32() (int32, error) {
	if v.kind != KindI32 {
		return 0, v.mismatch(KindI32)
	}
	return int32(binary.LittleEndian.Uint32(v.payload)), nil
}

// TryAsI32 returns the value as an int32 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsI32() (int32, bool) {
	n, err := v.AsI32()
	return n, err == nil
}

// AsU32 returns the value as a uint32.
func (v Value) AsU32() (uint32, error) {
	if v.kind != KindU32 {
		return 0, v.mismatch(KindU32)
	}
	return binary.LittleEndian.Uint32(v.payload), nil
}

// TryAsU32 returns the value as a uint32 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsU32() (uint32, bool) {
	n, err := v.AsU32()
	return n, err == nil
}

// AsI64 returns the value as an int64.
func (v Value) AsI64() (int64, error) {
	if v.kind != KindI64 {
		return 0, v.mismatch(KindI64)
	}
	return int64(binary.LittleEndian.Uint64(v.payload)), nil
}

// TryAsI64 returns the value as an int64 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsI64() (int64, bool) {
	n, err := v.AsI64()
	return n, err == nil
}

// AsU64 returns the value as a uint64.
func (v Value) AsU64() (uint64, error) {
	if v.kind != KindU64 {
		return 0, v.mismatch(KindU64)
	}
	return binary.LittleEndian.Uint64(v.payload), nil
}

// TryAsU64 returns the value as a uint64 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsU64() (uint64, bool) {
	n, err := v.AsU64()
	return n, err == nil
}

// AsF32 returns the value as a float32.
func (v Value) AsF32() (float32, error) {
	if v.kind != KindF32 {
		return 0, v.mismatch(KindF32)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(v.payload)), nil
}

// TryAsF32 returns the value as a float32 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsF32() (float32, bool) {
	n, err := v.AsF32()
	return n, err == nil
}

// AsF64 returns the value as a float64.
func (v Value) AsF64() (float64, error) {
	if v.kind != KindF64 {
		return 0, v.mismatch(KindF64)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.payload)), nil
}

// TryAsF64 returns the value as a float64 and true, or 0 and false if the kind doesn't match.
func (v Value) TryAsF64() (float64, bool) {
	n, err := v.AsF64()
	return n, err == nil
}

// AsBool returns the value as a bool (payload byte 0 or 1).
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.payload[0] != 0, nil
}

// TryAsBool returns the value as a bool and true, or false and false if the kind doesn't match.
func (v Value) TryAsBool() (bool, bool) {
	n, err := v.AsBool()
	return n, err == nil
}

// AsBytes returns the value's raw payload (opaque bytes).
func (v Value) AsBytes() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, v.mismatch(KindBytes)
	}
	return v.payload, nil
}

// TryAsBytes returns the value's raw payload and true, or nil and false if the kind doesn't match.
func (v Value) TryAsBytes() ([]byte, bool) {
	b, err := v.AsBytes()
	return b, err == nil
}
