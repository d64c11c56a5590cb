package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Decode parses buf as a sequence of protobuf tag/value pairs.
//
// Decode never fails. Decrypting with the wrong key or nonce yields random
// bytes, so malformed input is expected and decoding stops early instead:
//
//   - a truncated or overlong varint (tag or value) ends the message;
//   - a length-delimited value longer than the remaining buffer is stored
//     truncated to what remains, and the message ends there;
//   - a truncated fixed32/fixed64 value ends the message without storing it;
//   - wire types 3, 4, 6 and 7 end the message.
//
// The returned Message holds every field fully decoded before the stop
// point. An empty buf yields an empty Message.
func Decode(buf []byte) Message {
	msg := make(Message)
	for len(buf) > 0 {
		tag, n := protowire.ConsumeVarint(buf)
		if n < 0 {
			return msg
		}
		buf = buf[n:]
		num, typ := tag>>3, protowire.Type(tag&7)

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return msg
			}
			msg[num] = Varint(v)
			buf = buf[n:]

		case protowire.BytesType:
			length, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return msg
			}
			buf = buf[n:]
			if length > uint64(len(buf)) {
				msg[num] = Bytes(buf)
				return msg
			}
			msg[num] = Bytes(buf[:length])
			buf = buf[length:]

		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(buf)
			if n < 0 {
				return msg
			}
			msg[num] = Fixed32(int32(v))
			buf = buf[n:]

		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return msg
			}
			msg[num] = Fixed64(int64(v))
			buf = buf[n:]

		default:
			return msg
		}
	}
	return msg
}
