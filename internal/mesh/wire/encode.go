package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// AppendVarintField appends field num as a varint.
func AppendVarintField(b []byte, num uint64, v uint64) []byte {
	b = protowire.AppendVarint(b, num<<3|uint64(protowire.VarintType))
	return protowire.AppendVarint(b, v)
}

// AppendBytesField appends field num as a length-delimited value.
func AppendBytesField(b []byte, num uint64, v []byte) []byte {
	b = protowire.AppendVarint(b, num<<3|uint64(protowire.BytesType))
	return protowire.AppendBytes(b, v)
}

// AppendFixed32Field appends field num as a little-endian sfixed32.
func AppendFixed32Field(b []byte, num uint64, v int32) []byte {
	b = protowire.AppendVarint(b, num<<3|uint64(protowire.Fixed32Type))
	return protowire.AppendFixed32(b, uint32(v))
}

// EncodeData builds a Meshtastic Data message: portnum (1) and payload (2).
func EncodeData(port uint32, payload []byte) []byte {
	b := AppendVarintField(nil, 1, uint64(port))
	return AppendBytesField(b, 2, payload)
}
