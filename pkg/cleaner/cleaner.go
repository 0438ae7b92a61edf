// Package cleaner provides the interface shared by the HTML cleaners.
// Cleaners transform pasted rich text into a form a CMS accepts: cleaned HTML
// (see package cms) or plain text.
package cleaner

// Cleaner transforms HTML content.
type Cleaner interface {
	// Clean transforms the input HTML.
	// The output format depends on the implementation (HTML, plain text, etc.).
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
