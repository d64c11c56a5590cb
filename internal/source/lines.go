// Package source turns byte streams from the radio into log lines.
package source

import (
	"bytes"
	"context"
	"io"
	"strings"
)

const readChunkSize = 1024

// LineSource yields text lines in arrival order. Next returns io.EOF when
// the stream ends and ctx.Err() once ctx is done.
type LineSource interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// LineReader splits an io.Reader into lines. A read that returns no data
// and no error (a serial read timeout) is not the end of the stream; it
// only gives Next a chance to notice cancellation.
type LineReader struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	eof   bool
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r, chunk: make([]byte, readChunkSize)}
}

// Next returns the next line without its terminator. Invalid UTF-8 is
// replaced with U+FFFD. A trailing partial line is returned before io.EOF.
func (lr *LineReader) Next(ctx context.Context) (string, error) {
	for {
		if i := bytes.IndexByte(lr.buf, '\n'); i >= 0 {
			line := lr.buf[:i]
			lr.buf = lr.buf[i+1:]
			return toText(line), nil
		}
		if lr.eof {
			if len(lr.buf) > 0 {
				line := lr.buf
				lr.buf = nil
				return toText(line), nil
			}
			return "", io.EOF
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := lr.r.Read(lr.chunk)
		if n > 0 {
			lr.buf = append(lr.buf, lr.chunk[:n]...)
		}
		if err == io.EOF {
			lr.eof = true
		} else if err != nil {
			return "", err
		}
	}
}

// Close closes the underlying reader if it is an io.Closer.
func (lr *LineReader) Close() error {
	if c, ok := lr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func toText(line []byte) string {
	return strings.ToValidUTF8(strings.TrimRight(string(line), "\r"), "�")
}
