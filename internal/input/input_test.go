package input

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		enc  string
		want string
	}{
		{
			name: "utf-8 with bom",
			raw:  []byte("\ufeff<p>caf\u00e9</p>"),
			want: "<p>caf\u00e9</p>",
		},
		{
			// 0x93 and 0x94 are curly double quotes, 0xE9 is e-acute.
			name: "windows-1252",
			raw:  []byte{'<', 'p', '>', 0x93, 'c', 'a', 'f', 0xE9, 0x94, '<', '/', 'p', '>'},
			enc:  "Windows-1252",
			want: "<p>\u201ccaf\u00e9\u201d</p>",
		},
		{
			name: "latin-1 nbsp",
			raw:  []byte{'a', 0xA0, 'b'},
			enc:  "iso-8859-1",
			want: "a\u00a0b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(bytes.NewReader(tt.raw), tt.enc)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRead_UnsupportedEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "ebcdic")
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("Read() error = %v, want ErrUnsupportedEncoding", err)
	}
}

func TestStripFragment(t *testing.T) {
	clipboard := "Version:0.9\r\nStartHTML:00000097\r\nEndHTML:00000170\r\n" +
		"StartFragment:00000131\r\nEndFragment:00000154\r\n" +
		"<html><body>\r\n<!--StartFragment--><p>Hello <b>world</b></p><!--EndFragment-->\r\n</body></html>"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clipboard payload", in: clipboard, want: "<p>Hello <b>world</b></p>"},
		{name: "no markers", in: "<p>plain</p>", want: "<p>plain</p>"},
		{name: "start only", in: "junk<!--StartFragment--><p>x</p>", want: "<p>x</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFragment(tt.in); got != tt.want {
				t.Errorf("StripFragment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paste.html")
	if err := os.WriteFile(path, []byte("<!--StartFragment--><p>x</p><!--EndFragment-->"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path, "utf-8")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != "<p>x</p>" {
		t.Errorf("ReadFile() = %q", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.html"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
