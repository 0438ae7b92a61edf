// Package input reads HTML handed to the CLI from files, stdin or the
// clipboard and normalises it to a UTF-8 fragment.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for an encoding name Read does not know.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

const (
	startMarker = "<!--StartFragment-->"
	endMarker   = "<!--EndFragment-->"
)

var encodings = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// Encodings lists the accepted encoding names besides utf-8.
func Encodings() []string {
	return []string{"windows-1252", "iso-8859-1", "iso-8859-15"}
}

// Read decodes r from enc (utf-8 when empty) and strips a clipboard
// fragment wrapper.
func Read(r io.Reader, enc string) (string, error) {
	enc = strings.ToLower(strings.TrimSpace(enc))
	if enc != "" && enc != "utf-8" && enc != "utf8" {
		e, ok := encodings[enc]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return StripFragment(strings.TrimPrefix(string(data), "\ufeff")), nil
}

// ReadFile reads path, or stdin when path is "-" or empty.
func ReadFile(path, enc string) (string, error) {
	if path == "" || path == "-" {
		return Read(os.Stdin, enc)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, enc)
}

// StripFragment returns the text between the StartFragment and EndFragment
// markers of a CF_HTML clipboard payload. The Version/StartHTML header that
// precedes the markup is dropped along with everything outside the markers.
// Input without markers is returned unchanged.
func StripFragment(s string) string {
	start := strings.Index(s, startMarker)
	if start < 0 {
		return s
	}
	rest := s[start+len(startMarker):]
	if end := strings.LastIndex(rest, endMarker); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
