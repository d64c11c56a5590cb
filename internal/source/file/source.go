// Package file replays recorded sessions: pcap files written by the pcap
// sink, and plain-text serial logs.
package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/meshlisten/internal/reassembler"
	"firestige.xyz/meshlisten/internal/source"
)

// IsPcap reports whether path should be replayed as a pcap file.
func IsPcap(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".cap":
		return true
	}
	return false
}

// OpenLog opens a text log for line-by-line replay.
func OpenLog(path string) (*source.LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return source.NewLineReader(f), nil
}

// PcapSource reads raw frames back from a pcap file.
type PcapSource struct {
	path   string
	file   *os.File
	reader *pcapgo.Reader
}

// OpenPcap opens path and reads its file header.
func OpenPcap(path string) (*PcapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read pcap header of %s: %w", path, err)
	}
	return &PcapSource{path: path, file: f, reader: r}, nil
}

// ReadCapture returns the next frame as a capture without signal report.
// It returns io.EOF after the last record.
func (ps *PcapSource) ReadCapture() (reassembler.RawCapture, gopacket.CaptureInfo, error) {
	if ps.reader == nil {
		return reassembler.RawCapture{}, gopacket.CaptureInfo{}, fmt.Errorf("pcap source closed")
	}

	data, ci, err := ps.reader.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return reassembler.RawCapture{}, gopacket.CaptureInfo{}, io.EOF
		}
		return reassembler.RawCapture{}, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}

	return reassembler.RawCapture{Bytes: data}, ci, nil
}

func (ps *PcapSource) LinkType() layers.LinkType {
	if ps.reader == nil {
		return layers.LinkTypeNull
	}
	return ps.reader.LinkType()
}

func (ps *PcapSource) Close() error {
	if ps.file == nil {
		return nil
	}
	err := ps.file.Close()
	ps.file = nil
	ps.reader = nil
	return err
}
