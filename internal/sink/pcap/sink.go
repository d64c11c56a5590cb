// Package pcap records raw captures to a pcap file.
//
// Frames are stored exactly as received, header included and still
// encrypted, under LINKTYPE_USER0 so Wireshark users can attach their own
// dissector. The file can be fed back through the decoder with the replay
// command.
package pcap

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/meshlisten/internal/pipeline"
	"firestige.xyz/meshlisten/internal/reassembler"
)

const Name = "pcap"

// LinkType is LINKTYPE_USER0.
const LinkType = layers.LinkType(147)

// SnapLen bounds a single record. LoRa frames are at most 255 bytes.
const SnapLen = 65535

// Sink appends every capture that reached the decoder, decoded or not.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	writer *pcapgo.Writer
	now    func() time.Time
	count  uint64
}

// NewSink creates path, truncating any existing file, and writes the pcap
// file header.
func NewSink(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create pcap file %s: %w", path, err)
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(SnapLen, LinkType); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Sink{file: f, writer: w, now: time.Now}, nil
}

func (s *Sink) Name() string { return Name }

// Written returns the number of records written.
func (s *Sink) Written() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Sink) Passthrough(string) error { return nil }

func (s *Sink) Packet(pkt *pipeline.Packet) error {
	if pkt == nil {
		return fmt.Errorf("nil packet")
	}
	return s.write(pkt.Capture)
}

func (s *Sink) Failure(capture reassembler.RawCapture, _ error) error {
	return s.write(capture)
}

func (s *Sink) write(c reassembler.RawCapture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("pcap sink closed")
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     s.now(),
		CaptureLength: len(c.Bytes),
		Length:        len(c.Bytes),
	}
	if err := s.writer.WritePacket(ci, c.Bytes); err != nil {
		return fmt.Errorf("failed to write pcap record: %w", err)
	}
	s.count++
	return nil
}

// Flush syncs written records to disk.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

// Close closes the file. Later writes fail.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
