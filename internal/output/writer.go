// Package output serialises cleaning results and link audit reports.
package output

import (
	"bufio"
	"fmt"
	"io"
)

// Format represents output format types.
type Format string

const (
	FormatJSON     Format = "json"
	FormatJSONL    Format = "jsonl"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML, FormatMarkdown}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single result.
	Write(data any) error

	// WriteAll outputs multiple results.
	WriteAll(data []any) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatMarkdown:
		return NewMarkdownWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// batch collects items and encodes them on Flush: a single item on its
// own, several as a list. An empty batch is written as an empty list once.
type batch struct {
	w       *bufio.Writer
	items   []any
	flushed bool
	encode  func(w io.Writer, v any) error
}

func newBatch(w io.Writer, encode func(io.Writer, any) error) batch {
	return batch{w: bufio.NewWriter(w), encode: encode}
}

func (b *batch) Write(data any) error {
	b.items = append(b.items, data)
	return nil
}

func (b *batch) WriteAll(data []any) error {
	b.items = append(b.items, data...)
	return nil
}

func (b *batch) Flush() error {
	var v any = b.items
	switch len(b.items) {
	case 0:
		if b.flushed {
			return nil
		}
		v = []any{}
	case 1:
		v = b.items[0]
	}
	if err := b.encode(b.w, v); err != nil {
		return err
	}
	b.items = nil
	b.flushed = true
	return b.w.Flush()
}

func (b *batch) Close() error {
	return b.Flush()
}
