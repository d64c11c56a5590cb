// Package psk implements Meshtastic channel encryption: AES-128 in counter
// mode with a nonce derived from the packet header.
//
// The transform carries no integrity tag. Decrypting with the wrong key or
// nonce succeeds and produces garbage, which the wire decoder rejects on its
// own.
package psk

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"
)

// NonceSize is the AES block size used as the CTR initial counter.
const NonceSize = aes.BlockSize

// DefaultKey is the expanded form of the default channel PSK ("AQ==").
var DefaultKey = []byte{
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59,
	0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0x01,
}

var ErrInvalidKey = errors.New("invalid channel key")

// Nonce builds the initial counter block: id as 8 little-endian bytes, from
// as 4 little-endian bytes, then 4 zero bytes.
func Nonce(from, id uint32) [NonceSize]byte {
	var nonce [NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[0:8], uint64(id))
	binary.LittleEndian.PutUint32(nonce[8:12], from)
	return nonce
}

// Decrypt returns the plaintext of ciphertext sent by node from with packet
// id. The result has the same length as ciphertext.
func Decrypt(key []byte, from, id uint32, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	nonce := Nonce(from, id)
	out := make([]byte, len(ciphertext))
	cipher.NewCTR(block, nonce[:]).XORKeyStream(out, ciphertext)
	return out, nil
}

// Encrypt is the inverse of Decrypt. CTR mode is symmetric, so both apply
// the same keystream.
func Encrypt(key []byte, from, id uint32, plaintext []byte) ([]byte, error) {
	return Decrypt(key, from, id, plaintext)
}
