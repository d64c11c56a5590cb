package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type MultiWriter struct {
	writers []io.Writer
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		_, e := w.Write(p)
		if e != nil {
			err = e
		}
	}
	return len(p), err
}

func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

// AddAppenders adds every configured appender. Supported types are "file"
// (rotated by lumberjack) and "stdout".
func (m *MultiWriter) AddAppenders(appenders []AppenderConfig) error {
	for _, a := range appenders {
		switch strings.ToLower(a.Type) {
		case "file":
			opt, err := decodeFileAppenderOpt(a.Options)
			if err != nil {
				return err
			}
			m.AddFileAppender(opt)
		case "stdout":
			m.Add(os.Stdout)
		default:
			return fmt.Errorf("unsupported appender type: %q", a.Type)
		}
	}
	return nil
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{writers: make([]io.Writer, 0)}
}
