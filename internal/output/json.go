package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes buffered items as one JSON document.
type JSONWriter struct {
	batch
}

// NewJSONWriter creates a JSON writer. With pretty set, output is indented
// with indent.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{batch: newBatch(w, func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", indent)
		}
		return enc.Encode(v)
	})}
}

// JSONLWriter writes newline-delimited JSON (JSONL), one line per Write.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single item as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple items as JSON lines.
func (w *JSONLWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
