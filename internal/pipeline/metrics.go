package pipeline

import (
	"sync/atomic"
)

// Metrics contains pipeline counters. The loop is single-threaded; the
// counters are atomic so Stats may be read from another goroutine.
type Metrics struct {
	Lines       atomic.Uint64
	Passthrough atomic.Uint64
	Captures    atomic.Uint64
	Decoded     atomic.Uint64
	Skipped     atomic.Uint64
	Failed      atomic.Uint64
	SinkErrors  atomic.Uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}
