// Package pipeline implements the packet decode pipeline.
//
// One loop reads lines from a source, feeds them to the reassembler and
// pushes every completed capture through header parsing, decryption, field
// decoding and port dispatch. Each capture is isolated: whatever happens
// while decoding it, the loop moves on to the next line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/mesh/packet"
	"firestige.xyz/meshlisten/internal/mesh/port"
	"firestige.xyz/meshlisten/internal/mesh/psk"
	"firestige.xyz/meshlisten/internal/mesh/wire"
	"firestige.xyz/meshlisten/internal/reassembler"
	"firestige.xyz/meshlisten/internal/source"
)

var ErrDecodePanic = errors.New("decode panic")

// Sink receives pipeline output in arrival order.
type Sink interface {
	Name() string
	// Passthrough receives log lines that are not part of a capture.
	Passthrough(line string) error
	// Packet receives a fully decoded packet.
	Packet(pkt *Packet) error
	// Failure receives a capture whose decode failed.
	Failure(capture reassembler.RawCapture, err error) error
	Flush() error
}

// Packet is a decoded capture.
type Packet struct {
	Capture reassembler.RawCapture
	Header  packet.Header
	Data    port.Data
}

// Status classifies the outcome of decoding one capture.
type Status int

const (
	// ResultOK means the capture decoded into a Packet.
	ResultOK Status = iota
	// ResultSkipped means the capture was not a packet (too short) and is
	// dropped without a diagnostic.
	ResultSkipped
	// ResultFailed means decoding failed; the sinks get a diagnostic.
	ResultFailed
)

func (s Status) String() string {
	switch s {
	case ResultOK:
		return "ok"
	case ResultSkipped:
		return "skipped"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of Decode.
type Result struct {
	Status Status
	Packet *Packet
	Err    error
}

// Decode runs one capture through header parsing, decryption, field
// decoding and port dispatch. It never panics: a panic in any stage is
// returned as a ResultFailed wrapping ErrDecodePanic.
func Decode(key []byte, capture reassembler.RawCapture) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Status: ResultFailed, Err: fmt.Errorf("%w: %v", ErrDecodePanic, r)}
		}
	}()

	h, ciphertext, err := packet.Parse(capture.Bytes)
	if err != nil {
		return Result{Status: ResultSkipped, Err: err}
	}

	plain, err := psk.Decrypt(key, h.From, h.ID, ciphertext)
	if err != nil {
		return Result{Status: ResultFailed, Err: err}
	}

	data := port.Dispatch(wire.Decode(plain))
	return Result{
		Status: ResultOK,
		Packet: &Packet{Capture: capture, Header: h, Data: data},
	}
}

// Pipeline is a single-threaded line-to-packet processing chain.
type Pipeline struct {
	source      source.LineSource
	key         []byte
	sinks       []Sink
	reassembler *reassembler.Reassembler
	metrics     *Metrics
	logger      log.Logger
}

// Config contains pipeline configuration.
type Config struct {
	Source source.LineSource // May be nil when captures are fed directly
	Key    []byte            // Defaults to psk.DefaultKey
	Sinks  []Sink
	Logger log.Logger // Defaults to log.GetLogger()
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Key == nil {
		cfg.Key = psk.DefaultKey
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetLogger()
	}
	return &Pipeline{
		source:      cfg.Source,
		key:         cfg.Key,
		sinks:       cfg.Sinks,
		reassembler: reassembler.New(),
		metrics:     NewMetrics(),
		logger:      cfg.Logger,
	}
}

// Run reads lines until the source ends or ctx is done. It returns nil on
// both; any other read error is returned. Run does not close the source.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("pipeline has no source")
	}
	defer p.Flush()

	for {
		line, err := p.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		p.HandleLine(line)
	}
}

// HandleLine feeds one line to the reassembler and processes whatever it
// completes.
func (p *Pipeline) HandleLine(line string) {
	p.metrics.Lines.Add(1)

	ev := p.reassembler.Feed(line)
	switch ev.Kind {
	case reassembler.EventCapture:
		p.HandleCapture(ev.Capture)
	case reassembler.EventPassthrough:
		p.metrics.Passthrough.Add(1)
		p.emit(func(s Sink) error { return s.Passthrough(ev.Line) })
	}
}

// HandleCapture decodes one capture and hands the result to the sinks.
func (p *Pipeline) HandleCapture(capture reassembler.RawCapture) Result {
	p.metrics.Captures.Add(1)

	res := Decode(p.key, capture)
	switch res.Status {
	case ResultOK:
		p.metrics.Decoded.Add(1)
		p.emit(func(s Sink) error { return s.Packet(res.Packet) })
	case ResultSkipped:
		p.metrics.Skipped.Add(1)
		p.logger.WithError(res.Err).WithField("len", len(capture.Bytes)).Debug("capture skipped")
	case ResultFailed:
		p.metrics.Failed.Add(1)
		p.logger.WithError(res.Err).Warn("capture decode failed")
		p.emit(func(s Sink) error { return s.Failure(capture, res.Err) })
	}
	return res
}

// Flush flushes every sink.
func (p *Pipeline) Flush() {
	for _, s := range p.sinks {
		if err := s.Flush(); err != nil {
			p.logger.WithError(err).WithField("sink", s.Name()).Error("sink flush failed")
		}
	}
}

func (p *Pipeline) emit(fn func(Sink) error) {
	for _, s := range p.sinks {
		if err := fn(s); err != nil {
			p.metrics.SinkErrors.Add(1)
			p.logger.WithError(err).WithField("sink", s.Name()).Error("sink failed")
		}
	}
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Lines:       p.metrics.Lines.Load(),
		Passthrough: p.metrics.Passthrough.Load(),
		Captures:    p.metrics.Captures.Load(),
		Decoded:     p.metrics.Decoded.Load(),
		Skipped:     p.metrics.Skipped.Load(),
		Failed:      p.metrics.Failed.Load(),
		SinkErrors:  p.metrics.SinkErrors.Load(),
	}
}

// Stats represents pipeline statistics.
type Stats struct {
	Lines       uint64
	Passthrough uint64
	Captures    uint64
	Decoded     uint64
	Skipped     uint64
	Failed      uint64
	SinkErrors  uint64
}

// Fields returns the stats as log fields.
func (s Stats) Fields() map[string]interface{} {
	return map[string]interface{}{
		"lines":       s.Lines,
		"passthrough": s.Passthrough,
		"captures":    s.Captures,
		"decoded":     s.Decoded,
		"skipped":     s.Skipped,
		"failed":      s.Failed,
		"sink_errors": s.SinkErrors,
	}
}
