package cms

import (
	"testing"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

func TestUpdateQuotes_ToSmart(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "bracketed aside",
			html: `Something ('me') something`,
			want: `Something (&lsquo;me&rsquo;) something`,
		},
		{
			name: "double quotes and apostrophe",
			html: `<p>"Hello," it's said.</p>`,
			want: `<p>&ldquo;Hello,&rdquo; it&rsquo;s said.</p>`,
		},
		{
			name: "context carried across inline elements",
			html: `<p><em>"Hi</em>" she said</p>`,
			want: `<p><em>&ldquo;Hi</em>&rdquo; she said</p>`,
		},
		{
			name: "blocks reset context",
			html: `<p>end"</p><p>"start</p>`,
			want: `<p>end&rdquo;</p><p>&ldquo;start</p>`,
		},
		{
			name: "line break resets context",
			html: `a<br>"b"`,
			want: `a<br>&ldquo;b&rdquo;`,
		},
		{
			name: "after a dash",
			html: "well\u2014\"quoted\"",
			want: "well\u2014&ldquo;quoted&rdquo;",
		},
		{
			name: "code untouched",
			html: `<p>run <code>echo "x"</code> now</p>`,
			want: `<p>run <code>echo "x"</code> now</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.html, func(d *dom.Document) { UpdateQuotes(d, QuoteToSmart) })
			if got != tt.want {
				t.Errorf("UpdateQuotes() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestUpdateQuotes_ToSimple(t *testing.T) {
	var n int
	got := apply(`<p>&ldquo;a&rdquo; &lsquo;b&rsquo; <kbd>&ldquo;k&rdquo;</kbd></p>`,
		func(d *dom.Document) { n = UpdateQuotes(d, QuoteToSimple) })

	if want := `<p>"a" 'b' <kbd>&ldquo;k&rdquo;</kbd></p>`; got != want {
		t.Errorf("UpdateQuotes() = %s\nwant %s", got, want)
	}
	if n != 4 {
		t.Errorf("replaced = %d, want 4", n)
	}
}

func TestUpdateQuotes_NoChange(t *testing.T) {
	in := `<p>"a" &lsquo;b&rsquo;</p>`
	for _, mode := range []QuoteMode{QuoteNoChange, ""} {
		var n int
		got := apply(in, func(d *dom.Document) { n = UpdateQuotes(d, mode) })
		if got != in || n != 0 {
			t.Errorf("mode %q changed the document: %s (%d)", mode, got, n)
		}
	}
}

func TestUpdateQuotes_RoundTrip(t *testing.T) {
	doc := dom.Parse(`<p>"a" and 'b'</p>`)
	UpdateQuotes(doc, QuoteToSmart)
	UpdateQuotes(doc, QuoteToSimple)
	if got := dom.Render(doc, false); got != `<p>"a" and 'b'</p>` {
		t.Errorf("round trip = %s", got)
	}
}
