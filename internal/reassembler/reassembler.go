// Package reassembler rebuilds raw radio captures from the SX1262 debug log.
//
// The radio driver logs every received packet as three consecutive lines:
//
//	[SX1262] Data (hex): 00 11 22 ...
//	[SX1262] RSSI: -42.50
//	[SX1262] SNR: 9.75
//
// SNR is always the last of the three, so its arrival completes a capture.
package reassembler

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var (
	hexPattern  = regexp.MustCompile(`^\[SX1262\] Data \(hex\):\s+(.*)`)
	rssiPattern = regexp.MustCompile(`^\[SX1262\] RSSI:\s+(-?[\d.]+)`)
	snrPattern  = regexp.MustCompile(`^\[SX1262\] SNR:\s+(-?[\d.]+)`)
)

// RawCapture is one reassembled packet: the frame bytes as received plus
// the signal report that came with them.
type RawCapture struct {
	Bytes []byte
	RSSI  string
	SNR   string
}

// EventKind classifies the result of feeding one line.
type EventKind int

const (
	// EventNone means the line was consumed without output.
	EventNone EventKind = iota
	// EventCapture means the line completed a capture.
	EventCapture
	// EventPassthrough means the line is not part of a capture.
	EventPassthrough
)

// Event is the outcome of Feed.
type Event struct {
	Kind    EventKind
	Capture RawCapture
	Line    string
}

// Reassembler accumulates one pending capture. It is not safe for
// concurrent use; the driver owns it.
type Reassembler struct {
	hex  []byte
	rssi string
	snr  string
}

// New returns an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Feed consumes one log line.
//
// A hex line replaces any pending, unconsumed one; malformed hex clears the
// slot. An SNR line with no pending hex produces nothing, but still resets
// every slot.
func (r *Reassembler) Feed(line string) Event {
	line = strings.TrimSpace(line)

	if m := hexPattern.FindStringSubmatch(line); m != nil {
		r.hex = decodeHex(m[1])
		return Event{Kind: EventNone}
	}

	if m := rssiPattern.FindStringSubmatch(line); m != nil {
		r.rssi = m[1]
		return Event{Kind: EventNone}
	}

	if m := snrPattern.FindStringSubmatch(line); m != nil {
		r.snr = m[1]
		ev := Event{Kind: EventNone}
		if len(r.hex) > 0 {
			ev = Event{
				Kind:    EventCapture,
				Capture: RawCapture{Bytes: r.hex, RSSI: r.rssi, SNR: r.snr},
			}
		}
		r.Reset()
		return ev
	}

	if line == "" {
		return Event{Kind: EventNone}
	}
	return Event{Kind: EventPassthrough, Line: line}
}

// Pending reports whether hex bytes are waiting for their SNR line.
func (r *Reassembler) Pending() bool {
	return len(r.hex) > 0
}

// Reset drops the pending capture.
func (r *Reassembler) Reset() {
	r.hex = nil
	r.rssi = ""
	r.snr = ""
}

// Lines renders c as the three log lines Feed reassembles it from.
func (c RawCapture) Lines() []string {
	pairs := make([]string, len(c.Bytes))
	for i, b := range c.Bytes {
		pairs[i] = fmt.Sprintf("%02X", b)
	}
	return []string{
		"[SX1262] Data (hex): " + strings.Join(pairs, " "),
		"[SX1262] RSSI: " + c.RSSI,
		"[SX1262] SNR: " + c.SNR,
	}
}

// decodeHex parses space-separated hex pairs. It returns nil on malformed
// input.
func decodeHex(s string) []byte {
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil
	}
	return b
}
