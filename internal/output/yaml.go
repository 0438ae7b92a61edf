package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes buffered items as one YAML document.
type YAMLWriter struct {
	batch
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{batch: newBatch(w, func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	})}
}
