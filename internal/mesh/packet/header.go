// Package packet parses and builds the 16-byte Meshtastic over-the-air
// header.
//
// Layout, all integers little-endian:
//
//	offset 0  : to        (4 bytes)
//	offset 4  : from      (4 bytes)
//	offset 8  : id        (4 bytes)
//	offset 12 : flags     (1 byte)  bits 0-2 hop_limit, bits 5-7 hop_start
//	offset 13 : channel   (1 byte)
//	offset 14 : next_hop  (1 byte)
//	offset 15 : relay     (1 byte)
//	offset 16+: encrypted payload
package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderLen = 16

	// Broadcast is the destination address of packets sent to every node.
	Broadcast uint32 = 0xFFFFFFFF
)

var ErrFrameTooShort = errors.New("frame too short")

// Header is the cleartext part of a frame.
type Header struct {
	To      uint32
	From    uint32
	ID      uint32
	Flags   uint8
	Channel uint8
	NextHop uint8
	Relay   uint8
}

// HopLimit is the remaining relay budget.
func (h Header) HopLimit() uint8 { return h.Flags & 0x07 }

// HopStart is the relay budget the packet was sent with.
func (h Header) HopStart() uint8 { return (h.Flags >> 5) & 0x07 }

// Hops is how many relays the packet has gone through. Firmware that does
// not set hop_start produces negative values; they are reported unchanged.
func (h Header) Hops() int { return int(h.HopStart()) - int(h.HopLimit()) }

// IsBroadcast reports whether the packet is addressed to every node.
func (h Header) IsBroadcast() bool { return h.To == Broadcast }

// Parse splits frame into its header and ciphertext. Frames of HeaderLen
// bytes or fewer carry no body and are rejected with ErrFrameTooShort.
// The ciphertext aliases frame.
func Parse(frame []byte) (Header, []byte, error) {
	if len(frame) <= HeaderLen {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frame))
	}
	h := Header{
		To:      binary.LittleEndian.Uint32(frame[0:4]),
		From:    binary.LittleEndian.Uint32(frame[4:8]),
		ID:      binary.LittleEndian.Uint32(frame[8:12]),
		Flags:   frame[12],
		Channel: frame[13],
		NextHop: frame[14],
		Relay:   frame[15],
	}
	return h, frame[HeaderLen:], nil
}

// Encode builds a frame from h and an already encrypted payload.
func Encode(h Header, payload []byte) []byte {
	frame := make([]byte, HeaderLen, HeaderLen+len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], h.To)
	binary.LittleEndian.PutUint32(frame[4:8], h.From)
	binary.LittleEndian.PutUint32(frame[8:12], h.ID)
	frame[12] = h.Flags
	frame[13] = h.Channel
	frame[14] = h.NextHop
	frame[15] = h.Relay
	return append(frame, payload...)
}

// Flags packs hop limit and hop start into a flags byte.
func Flags(hopLimit, hopStart uint8) uint8 {
	return hopLimit&0x07 | (hopStart&0x07)<<5
}

// FormatNode renders a node number the way Meshtastic clients do: "!" and
// eight lowercase hex digits.
func FormatNode(n uint32) string {
	return fmt.Sprintf("!%08x", n)
}

// FormatDestination is FormatNode with the broadcast address spelled out.
func FormatDestination(n uint32) string {
	if n == Broadcast {
		return "broadcast"
	}
	return FormatNode(n)
}
