package cleaner

import (
	"errors"
	"strings"
	"testing"
)

// upperCleaner is a test cleaner that upper-cases its input
type upperCleaner struct{}

func (c *upperCleaner) Clean(html string) (string, error) {
	return strings.ToUpper(html), nil
}

func (c *upperCleaner) Name() string {
	return "upper"
}

// wrapCleaner is a test cleaner that wraps its input in a paragraph
type wrapCleaner struct{}

func (c *wrapCleaner) Clean(html string) (string, error) {
	return "<p>" + html + "</p>", nil
}

func (c *wrapCleaner) Name() string {
	return "wrap"
}

// errorCleaner is a test cleaner that always returns an error
type errorCleaner struct{}

func (c *errorCleaner) Clean(html string) (string, error) {
	return "", errors.New("test error")
}

func (c *errorCleaner) Name() string {
	return "error"
}

// --- ChainCleaner Tests ---

func TestChainCleaner_Empty(t *testing.T) {
	c := NewChain()

	input := "unchanged content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

func TestChainCleaner_Order(t *testing.T) {
	tests := []struct {
		name     string
		cleaners []Cleaner
		want     string
	}{
		{"upper then wrap", []Cleaner{&upperCleaner{}, &wrapCleaner{}}, "<p>TEXT</p>"},
		{"wrap then upper", []Cleaner{&wrapCleaner{}, &upperCleaner{}}, "<P>TEXT</P>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewChain(tt.cleaners...).Clean("text")
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Clean() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChainCleaner_ErrorPropagation(t *testing.T) {
	c := NewChain(&upperCleaner{}, &errorCleaner{}, &wrapCleaner{})

	_, err := c.Clean("test")
	if err == nil {
		t.Fatal("expected error to propagate")
	}

	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("expected error containing 'test error', got %v", err)
	}
}

func TestChainCleaner_Name(t *testing.T) {
	tests := []struct {
		name     string
		cleaners []Cleaner
		want     string
	}{
		{"empty", []Cleaner{}, "chain()"},
		{"single", []Cleaner{&upperCleaner{}}, "chain(upper)"},
		{"double", []Cleaner{&upperCleaner{}, &wrapCleaner{}}, "chain(upper->wrap)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(tt.cleaners...)
			if got := c.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
