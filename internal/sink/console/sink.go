// Package console implements the stdout sink.
// It renders packets in human-readable text, or as a stream of YAML
// documents for scripting.
package console

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"firestige.xyz/meshlisten/internal/mesh/packet"
	"firestige.xyz/meshlisten/internal/mesh/port"
	"firestige.xyz/meshlisten/internal/pipeline"
	"firestige.xyz/meshlisten/internal/reassembler"
)

const (
	Name = "console"

	FormatText = "text"
	FormatYAML = "yaml"
)

var rule = strings.Repeat("─", 60)

// Sink writes pipeline output to a writer, stdout by default.
type Sink struct {
	w             io.Writer
	format        string
	reportedCount atomic.Uint64
}

// NewSink creates a console sink. A nil w means os.Stdout.
func NewSink(w io.Writer, format string) (*Sink, error) {
	if w == nil {
		w = os.Stdout
	}
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatYAML:
	default:
		return nil, fmt.Errorf("invalid format %q, must be text or yaml", format)
	}
	return &Sink{w: w, format: format}, nil
}

func (s *Sink) Name() string { return Name }

// Reported returns the number of packets written.
func (s *Sink) Reported() uint64 { return s.reportedCount.Load() }

// Passthrough echoes a non-capture log line.
func (s *Sink) Passthrough(line string) error {
	if s.format == FormatYAML {
		return s.writeYAML(lineRecord{Type: "log", Line: line})
	}
	_, err := fmt.Fprintln(s.w, line)
	return err
}

// Packet renders a decoded packet.
func (s *Sink) Packet(pkt *pipeline.Packet) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	s.reportedCount.Add(1)
	if s.format == FormatYAML {
		return s.writeYAML(newPacketRecord(pkt))
	}
	_, err := io.WriteString(s.w, RenderText(pkt))
	return err
}

// Failure renders a single inline diagnostic for a capture that did not
// decode.
func (s *Sink) Failure(capture reassembler.RawCapture, cause error) error {
	if s.format == FormatYAML {
		return s.writeYAML(errorRecord{
			Type:  "error",
			RSSI:  capture.RSSI,
			SNR:   capture.SNR,
			Frame: hex.EncodeToString(capture.Bytes),
			Error: cause.Error(),
		})
	}
	var b strings.Builder
	writeSignal(&b, capture)
	fmt.Fprintf(&b, "  [decode error: %v]\n", cause)
	_, err := io.WriteString(s.w, b.String())
	return err
}

// Flush is a no-op; every write goes straight to the writer.
func (s *Sink) Flush() error {
	return nil
}

// RenderText renders pkt as the multi-line text block:
//
//	  RSSI: -42.5 dBm  SNR: 9.75 dB
//	────────────────────────────────────────────────────────────
//	  From: !00000001  To: broadcast  Hops: 1/3
//	  Port: TEXT_MESSAGE (1)  ID: 0x00000001  Ch: 8
//	  Message: Hello
func RenderText(pkt *pipeline.Packet) string {
	var b strings.Builder
	h := pkt.Header

	writeSignal(&b, pkt.Capture)
	b.WriteString(rule)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  From: %s  To: %s  Hops: %d/%d\n",
		packet.FormatNode(h.From), packet.FormatDestination(h.To), h.Hops(), h.HopStart())
	fmt.Fprintf(&b, "  Port: %s (%d)  ID: 0x%08x  Ch: %d\n",
		pkt.Data.Port.Name(), uint64(pkt.Data.Port), h.ID, h.Channel)
	if line := pkt.Data.Reading.Render(); line != "" {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return b.String()
}

// writeSignal writes the RSSI/SNR line. Captures replayed from pcap carry
// no signal report and get no line.
func writeSignal(b *strings.Builder, c reassembler.RawCapture) {
	if c.RSSI == "" && c.SNR == "" {
		return
	}
	fmt.Fprintf(b, "  RSSI: %s dBm  SNR: %s dB\n", orUnknown(c.RSSI), orUnknown(c.SNR))
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// ─── YAML records ───

type lineRecord struct {
	Type string `yaml:"type"`
	Line string `yaml:"line"`
}

type errorRecord struct {
	Type  string `yaml:"type"`
	RSSI  string `yaml:"rssi,omitempty"`
	SNR   string `yaml:"snr,omitempty"`
	Frame string `yaml:"frame"`
	Error string `yaml:"error"`
}

type packetRecord struct {
	Type     string       `yaml:"type"`
	RSSI     string       `yaml:"rssi,omitempty"`
	SNR      string       `yaml:"snr,omitempty"`
	From     string       `yaml:"from"`
	To       string       `yaml:"to"`
	ID       string       `yaml:"id"`
	Hops     int          `yaml:"hops"`
	HopStart uint8        `yaml:"hop_start"`
	Channel  uint8        `yaml:"channel"`
	Port     uint64       `yaml:"port"`
	PortName string       `yaml:"port_name"`
	Kind     string       `yaml:"kind"`
	Payload  string       `yaml:"payload,omitempty"`
	Reading  port.Reading `yaml:"reading,omitempty"`
	Summary  string       `yaml:"summary,omitempty"`
}

func newPacketRecord(pkt *pipeline.Packet) packetRecord {
	h := pkt.Header
	return packetRecord{
		Type:     "packet",
		RSSI:     pkt.Capture.RSSI,
		SNR:      pkt.Capture.SNR,
		From:     packet.FormatNode(h.From),
		To:       packet.FormatDestination(h.To),
		ID:       fmt.Sprintf("0x%08x", h.ID),
		Hops:     h.Hops(),
		HopStart: h.HopStart(),
		Channel:  h.Channel,
		Port:     uint64(pkt.Data.Port),
		PortName: pkt.Data.Port.Name(),
		Kind:     pkt.Data.Reading.Kind(),
		Payload:  hex.EncodeToString(pkt.Data.Payload),
		Reading:  pkt.Data.Reading,
		Summary:  pkt.Data.Reading.Render(),
	}
}

func (s *Sink) writeYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml marshal failed: %w", err)
	}
	_, err = fmt.Fprintf(s.w, "---\n%s", data)
	return err
}
