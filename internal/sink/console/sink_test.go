package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/meshlisten/internal/mesh/packet"
	"firestige.xyz/meshlisten/internal/mesh/port"
	"firestige.xyz/meshlisten/internal/mesh/wire"
	"firestige.xyz/meshlisten/internal/pipeline"
	"firestige.xyz/meshlisten/internal/reassembler"
)

func helloPacket() *pipeline.Packet {
	return &pipeline.Packet{
		Capture: reassembler.RawCapture{RSSI: "-42.5", SNR: "9.75"},
		Header: packet.Header{
			To:    packet.Broadcast,
			From:  1,
			ID:    1,
			Flags: packet.Flags(2, 3),
		},
		Data: port.Dispatch(wire.Decode(wire.EncodeData(1, []byte("Hello")))),
	}
}

func TestNewSink_Format(t *testing.T) {
	s, err := NewSink(&bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.Equal(t, FormatText, s.format)
	assert.Equal(t, Name, s.Name())

	_, err = NewSink(nil, "json")
	assert.Error(t, err)
}

func TestPacket_Text(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSink(&buf, FormatText)
	require.NoError(t, err)

	require.NoError(t, s.Packet(helloPacket()))

	want := "  RSSI: -42.5 dBm  SNR: 9.75 dB\n" +
		rule + "\n" +
		"  From: !00000001  To: broadcast  Hops: 1/3\n" +
		"  Port: TEXT_MESSAGE (1)  ID: 0x00000001  Ch: 0\n" +
		"  Message: Hello\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, uint64(1), s.Reported())
}

func TestPacket_TextNoSignalNoReading(t *testing.T) {
	pkt := &pipeline.Packet{
		Header: packet.Header{To: 0xdeadbeef, From: 2, ID: 0xabc, Channel: 31},
		Data:   port.Dispatch(wire.Message{}),
	}

	out := RenderText(pkt)

	assert.False(t, strings.Contains(out, "RSSI"))
	assert.Contains(t, out, "To: !deadbeef")
	assert.Contains(t, out, "Port: UNKNOWN (0)  ID: 0x00000abc  Ch: 31\n")
	assert.True(t, strings.HasSuffix(out, "Ch: 31\n"))
}

func TestPacket_Nil(t *testing.T) {
	s, _ := NewSink(&bytes.Buffer{}, FormatText)

	assert.Error(t, s.Packet(nil))
}

func TestFailure_Text(t *testing.T) {
	var buf bytes.Buffer
	s, _ := NewSink(&buf, FormatText)

	err := s.Failure(reassembler.RawCapture{Bytes: []byte{1}, RSSI: "-1"}, errors.New("boom"))

	require.NoError(t, err)
	assert.Equal(t, "  RSSI: -1 dBm  SNR: ? dB\n  [decode error: boom]\n", buf.String())
}

func TestPassthrough_Text(t *testing.T) {
	var buf bytes.Buffer
	s, _ := NewSink(&buf, FormatText)

	require.NoError(t, s.Passthrough("[TEMPEST-LoRa] Radio ready"))

	assert.Equal(t, "[TEMPEST-LoRa] Radio ready\n", buf.String())
}

func TestPacket_YAML(t *testing.T) {
	var buf bytes.Buffer
	s, _ := NewSink(&buf, FormatYAML)

	require.NoError(t, s.Packet(helloPacket()))
	require.NoError(t, s.Passthrough("boot"))

	docs := strings.Split(strings.TrimPrefix(buf.String(), "---\n"), "---\n")
	require.Len(t, docs, 2)

	var rec map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(docs[0]), &rec))
	assert.Equal(t, "packet", rec["type"])
	assert.Equal(t, "!00000001", rec["from"])
	assert.Equal(t, "broadcast", rec["to"])
	assert.Equal(t, "0x00000001", rec["id"])
	assert.Equal(t, "TEXT_MESSAGE", rec["port_name"])
	assert.Equal(t, "text", rec["kind"])
	assert.Equal(t, "48656c6c6f", rec["payload"])
	assert.Equal(t, "Message: Hello", rec["summary"])
	reading, ok := rec["reading"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Hello", reading["text"])

	var line map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(docs[1]), &line))
	assert.Equal(t, "log", line["type"])
	assert.Equal(t, "boot", line["line"])
}

func TestFailure_YAML(t *testing.T) {
	var buf bytes.Buffer
	s, _ := NewSink(&buf, FormatYAML)

	require.NoError(t, s.Failure(reassembler.RawCapture{Bytes: []byte{0xab}}, errors.New("bad key")))

	var rec map[string]interface{}
	require.NoError(t, yaml.Unmarshal(bytes.TrimPrefix(buf.Bytes(), []byte("---\n")), &rec))
	assert.Equal(t, "error", rec["type"])
	assert.Equal(t, "ab", rec["frame"])
	assert.Equal(t, "bad key", rec["error"])
}
