package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.bug.st/serial"
)

var ErrNoDevice = errors.New("no serial device found")

// SerialConfig configures a serial line source.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
	DTR         bool
}

// Serial reads lines from a serial port. Reads block for at most
// ReadTimeout so that cancellation is noticed promptly.
type Serial struct {
	*LineReader
	port   serial.Port
	device string
}

// FindDevice returns the first path matching pattern in lexical order.
func FindDevice(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid device pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w matching %s", ErrNoDevice, pattern)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// OpenSerial opens and configures the port (8N1 at cfg.Baud).
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Device, err)
	}
	// The nRF52 USB CDC console only transmits while DTR is asserted.
	if cfg.DTR {
		if err := port.SetDTR(true); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to assert DTR on %s: %w", cfg.Device, err)
		}
	}

	return &Serial{
		LineReader: NewLineReader(port),
		port:       port,
		device:     cfg.Device,
	}, nil
}

// Device returns the opened device path.
func (s *Serial) Device() string { return s.device }

// Next returns the next line from the port.
func (s *Serial) Next(ctx context.Context) (string, error) {
	return s.LineReader.Next(ctx)
}

// Close closes the port.
func (s *Serial) Close() error {
	return s.port.Close()
}
