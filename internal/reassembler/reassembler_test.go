package reassembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(r *Reassembler, lines ...string) []Event {
	var events []Event
	for _, l := range lines {
		events = append(events, r.Feed(l))
	}
	return events
}

func TestFeed_CompleteTriplet(t *testing.T) {
	r := New()

	events := feedAll(r,
		"[SX1262] Data (hex): FF FF FF FF 01 00",
		"[SX1262] RSSI: -42.50",
		"[SX1262] SNR: 9.75",
	)

	require.Len(t, events, 3)
	assert.Equal(t, EventNone, events[0].Kind)
	assert.Equal(t, EventNone, events[1].Kind)
	require.Equal(t, EventCapture, events[2].Kind)

	c := events[2].Capture
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x01, 0x00}, c.Bytes)
	assert.Equal(t, "-42.50", c.RSSI)
	assert.Equal(t, "9.75", c.SNR)
	assert.False(t, r.Pending())
}

func TestFeed_SecondHexOverwritesFirst(t *testing.T) {
	r := New()

	events := feedAll(r,
		"[SX1262] Data (hex): 01 02 03",
		"[SX1262] Data (hex): 0a 0b",
		"[SX1262] RSSI: -100",
		"[SX1262] SNR: -3.5",
	)

	last := events[len(events)-1]
	require.Equal(t, EventCapture, last.Kind)
	assert.Equal(t, []byte{0x0a, 0x0b}, last.Capture.Bytes)
	assert.Equal(t, "-100", last.Capture.RSSI)
	assert.Equal(t, "-3.5", last.Capture.SNR)
}

// An SNR line with no hex before it drops the capture. This mirrors the
// firmware log behaviour when lines from different bursts interleave.
func TestFeed_SNRWithoutHexIsDropped(t *testing.T) {
	r := New()

	events := feedAll(r,
		"[SX1262] RSSI: -80",
		"[SX1262] SNR: 5",
	)
	assert.Equal(t, EventNone, events[1].Kind)

	// State was reset: the old RSSI must not leak into the next capture.
	events = feedAll(r,
		"[SX1262] Data (hex): aa",
		"[SX1262] SNR: 6",
	)
	require.Equal(t, EventCapture, events[1].Kind)
	assert.Equal(t, "", events[1].Capture.RSSI)
	assert.Equal(t, "6", events[1].Capture.SNR)
}

func TestFeed_MalformedHexClearsSlot(t *testing.T) {
	tests := []string{
		"[SX1262] Data (hex): 0",
		"[SX1262] Data (hex): 01 0",
		"[SX1262] Data (hex): zz 01",
	}

	for _, bad := range tests {
		t.Run(bad, func(t *testing.T) {
			r := New()
			events := feedAll(r,
				"[SX1262] Data (hex): 01 02",
				bad,
				"[SX1262] RSSI: -1",
				"[SX1262] SNR: 1",
			)

			assert.False(t, r.Pending())
			for _, ev := range events {
				assert.NotEqual(t, EventCapture, ev.Kind)
			}
		})
	}
}

func TestFeed_Passthrough(t *testing.T) {
	r := New()
	r.Feed("[SX1262] Data (hex): 01")

	ev := r.Feed("  [TEMPEST-LoRa] Initializing radio ... success!  ")

	assert.Equal(t, EventPassthrough, ev.Kind)
	assert.Equal(t, "[TEMPEST-LoRa] Initializing radio ... success!", ev.Line)
	assert.True(t, r.Pending(), "passthrough must not touch pending state")
}

func TestFeed_EmptyLinesIgnored(t *testing.T) {
	r := New()

	assert.Equal(t, EventNone, r.Feed("").Kind)
	assert.Equal(t, EventNone, r.Feed("   \r").Kind)
}

func TestFeed_NearMissesArePassthrough(t *testing.T) {
	r := New()

	lines := []string{
		"[SX1262] Data (hex):",
		"[SX1262] RSSI: n/a",
		"[SX1276] SNR: 5",
		"SNR: 5",
	}
	for _, l := range lines {
		assert.Equal(t, EventPassthrough, r.Feed(l).Kind, l)
	}
}

func TestFeed_CarriageReturns(t *testing.T) {
	r := New()

	events := feedAll(r,
		"[SX1262] Data (hex): 10 20\r",
		"[SX1262] RSSI: -7\r",
		"[SX1262] SNR: 2.25\r",
	)

	require.Equal(t, EventCapture, events[2].Kind)
	assert.Equal(t, []byte{0x10, 0x20}, events[2].Capture.Bytes)
	assert.Equal(t, "2.25", events[2].Capture.SNR)
}

func TestReset(t *testing.T) {
	r := New()
	r.Feed("[SX1262] Data (hex): 01")
	r.Feed("[SX1262] RSSI: -1")

	r.Reset()

	assert.False(t, r.Pending())
	assert.Equal(t, EventNone, r.Feed("[SX1262] SNR: 1").Kind)
}

func TestRawCapture_LinesRoundTrip(t *testing.T) {
	c := RawCapture{Bytes: []byte{0x00, 0xab, 0x10}, RSSI: "-61.5", SNR: "7.25"}

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "[SX1262] Data (hex): 00 AB 10", lines[0])

	events := feedAll(New(), lines...)
	require.Equal(t, EventCapture, events[2].Kind)
	assert.Equal(t, c, events[2].Capture)
}
