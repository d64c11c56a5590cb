// Package wire implements a schema-less decoder for protobuf wire-format
// messages.
//
// The decoder knows nothing about message definitions. It walks tag/value
// pairs and keeps the last value seen for each field number, which is enough
// to interpret the small Meshtastic Data, User and Position messages without
// generated code.
package wire

import (
	"encoding/hex"
	"strconv"
)

// FieldValue is one decoded field value. The set of implementations is
// closed: Varint, Bytes, Fixed32 and Fixed64. Callers type-switch over them.
type FieldValue interface {
	String() string
	isFieldValue()
}

// Varint is a wire type 0 value.
type Varint uint64

// Bytes is a wire type 2 (length-delimited) value.
type Bytes []byte

// Fixed32 is a wire type 5 value read as a signed little-endian integer.
type Fixed32 int32

// Fixed64 is a wire type 1 value read as a signed little-endian integer.
type Fixed64 int64

func (Varint) isFieldValue()  {}
func (Bytes) isFieldValue()   {}
func (Fixed32) isFieldValue() {}
func (Fixed64) isFieldValue() {}

func (v Varint) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Bytes) String() string   { return hex.EncodeToString(v) }
func (v Fixed32) String() string { return strconv.FormatInt(int64(v), 10) }
func (v Fixed64) String() string { return strconv.FormatInt(int64(v), 10) }

// Message maps field numbers to their last decoded value.
type Message map[uint64]FieldValue

// Varint returns field num if it was decoded as a varint.
func (m Message) Varint(num uint64) (uint64, bool) {
	v, ok := m[num].(Varint)
	return uint64(v), ok
}

// Bytes returns field num if it was decoded as a length-delimited value.
func (m Message) Bytes(num uint64) ([]byte, bool) {
	v, ok := m[num].(Bytes)
	return []byte(v), ok
}

// Int32 returns field num as a signed 32-bit integer. Both int32 varints
// (sign-extended two's complement) and sfixed32 values are accepted.
func (m Message) Int32(num uint64) (int32, bool) {
	switch v := m[num].(type) {
	case Varint:
		return int32(v), true
	case Fixed32:
		return int32(v), true
	default:
		return 0, false
	}
}
