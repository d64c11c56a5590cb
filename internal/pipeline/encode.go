package pipeline

import (
	"firestige.xyz/meshlisten/internal/mesh/packet"
	"firestige.xyz/meshlisten/internal/mesh/port"
	"firestige.xyz/meshlisten/internal/mesh/psk"
	"firestige.xyz/meshlisten/internal/mesh/wire"
)

// Encode is the inverse of Decode: it wraps payload in a Data message for
// the given port, encrypts it for h.From/h.ID and prepends the header.
func Encode(key []byte, h packet.Header, num port.Num, payload []byte) ([]byte, error) {
	plain := wire.EncodeData(uint32(num), payload)
	ciphertext, err := psk.Encrypt(key, h.From, h.ID, plain)
	if err != nil {
		return nil, err
	}
	return packet.Encode(h, ciphertext), nil
}
