package pipeline

import (
	"firestige.xyz/meshlisten/internal/log"
	"firestige.xyz/meshlisten/internal/source"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithSource sets the line source.
func (b *Builder) WithSource(s source.LineSource) *Builder {
	b.config.Source = s
	return b
}

// WithKey sets the channel key.
func (b *Builder) WithKey(key []byte) *Builder {
	b.config.Key = key
	return b
}

// WithSinks appends sinks.
func (b *Builder) WithSinks(sinks ...Sink) *Builder {
	b.config.Sinks = append(b.config.Sinks, sinks...)
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l log.Logger) *Builder {
	b.config.Logger = l
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() *Pipeline {
	return New(b.config)
}
