package cms

import (
	"slices"
	"testing"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

func TestRemoveNonCmsElements(t *testing.T) {
	var removed []string
	got := apply(`<p>x</p><script>a()</script><style>p{}</style><noscript>js</noscript><iframe src="https://v.example/e"></iframe>`,
		func(d *dom.Document) { removed = RemoveNonCmsElements(d) })

	if want := `<p>x</p><iframe src="https://v.example/e"></iframe>`; got != want {
		t.Errorf("RemoveNonCmsElements() = %s\nwant %s", got, want)
	}
	slices.Sort(removed)
	if want := []string{"noscript", "script", "style"}; !slices.Equal(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
}

func TestClearStyling(t *testing.T) {
	doc := dom.Parse(`<div style="x" class="y"><p class="z" id="k">a</p></div>`)
	if n := ClearStyling(doc.Root()); n != 3 {
		t.Errorf("ClearStyling() = %d, want 3", n)
	}
	if got := dom.Render(doc, false); got != `<div><p id="k">a</p></div>` {
		t.Errorf("rendered = %s", got)
	}
	if n := ClearStyling(doc.Root()); n != 0 {
		t.Errorf("second ClearStyling() = %d, want 0", n)
	}
}

func TestTranslateTags(t *testing.T) {
	var n int
	got := apply(`<p><span>a</span><span id="k">b</span><b>c</b><i>d</i><font>e</font></p>`,
		func(d *dom.Document) { n = TranslateTags(d) })

	if want := `<p>a<span id="k">b</span><strong>c</strong><em>d</em>e</p>`; got != want {
		t.Errorf("TranslateTags() = %s\nwant %s", got, want)
	}
	if n != 4 {
		t.Errorf("translated = %d, want 4", n)
	}
}

func TestRemoveOfficeMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "namespaced elements, lang and mso styles",
			html: `<p class="MsoNormal" style="margin:0;mso-line-height-rule:exactly" lang="EN-US">Hi<o:p></o:p></p>`,
			want: `<p class="MsoNormal" style="margin:0">Hi</p>`,
		},
		{
			name: "style of only mso declarations dropped",
			html: `<span style="mso-bidi-font-weight:bold">x</span>`,
			want: `<span>x</span>`,
		},
		{
			name: "conditional comments removed",
			html: `<!--[if gte mso 9]><xml><w:WordDocument></w:WordDocument></xml><![endif]--><p>x</p>`,
			want: `<p>x</p>`,
		},
		{
			name: "downlevel list bullets removed",
			html: `<p><![if !supportLists]><span>1.</span><![endif]>Item</p>`,
			want: `<p>Item</p>`,
		},
		{
			name: "uppercase prefix",
			html: `<p>a<O:P>&nbsp;</O:P></p>`,
			want: `<p>a</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.html, func(d *dom.Document) { RemoveOfficeMarkup(d) })
			if got != tt.want {
				t.Errorf("RemoveOfficeMarkup() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestTrimParagraphs(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "leading and trailing breaks and nbsp",
			html: `<p>&nbsp; <br>Text&nbsp;<br> </p>`,
			want: `<p>Text</p>`,
		},
		{
			name: "whitespace inside inline element",
			html: `<p> <strong> x</strong> </p>`,
			want: `<p><strong>x</strong></p>`,
		},
		{
			name: "interior whitespace kept",
			html: `<p>a  <br>  b</p>`,
			want: `<p>a  <br>  b</p>`,
		},
		{
			name: "stops at image",
			html: `<li><img src="i.png"> caption </li>`,
			want: `<li><img src="i.png"> caption</li>`,
		},
		{
			name: "headers and cells",
			html: `<h3> Title </h3><table><tbody><tr><td> a </td></tr></tbody></table>`,
			want: `<h3>Title</h3><table><tbody><tr><td>a</td></tr></tbody></table>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.html, func(d *dom.Document) { TrimParagraphs(d) })
			if got != tt.want {
				t.Errorf("TrimParagraphs() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRemoveEmptyElements(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "image is never empty",
			html: `<p><img src="a.png"></p><p></p><div><span></span></div>`,
			want: `<p><img src="a.png"></p>`,
		},
		{
			name: "whitespace inline element becomes its whitespace",
			html: `<p>a<span> </span>b</p>`,
			want: `<p>a b</p>`,
		},
		{
			name: "table structure kept",
			html: `<table><tbody><tr><td></td></tr></tbody></table>`,
			want: `<table><tbody><tr><td></td></tr></tbody></table>`,
		},
		{
			name: "line breaks kept",
			html: `<p>a<span><br></span>b</p>`,
			want: `<p>a<span><br></span>b</p>`,
		},
		{
			name: "nbsp paragraph removed",
			html: `<p>&nbsp;</p><p>x</p>`,
			want: `<p>x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.html, func(d *dom.Document) { RemoveEmptyElements(d) })
			if got != tt.want {
				t.Errorf("RemoveEmptyElements() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestCreateHeaders(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "mixed b and strong",
			html: `<p><B>Some</B><strong> paragraph</strong></p>`,
			want: `<h2>Some paragraph</h2>`,
		},
		{
			name: "attributes and inner formatting kept",
			html: `<p id="x"><strong><em>Title</em></strong></p>`,
			want: `<h2 id="x"><em>Title</em></h2>`,
		},
		{
			name: "bold inside link",
			html: `<p><a href="/a"><strong>Go</strong></a></p>`,
			want: `<h2><a href="/a">Go</a></h2>`,
		},
		{
			name: "partly bold stays a paragraph",
			html: `<p><strong>Some</strong> text</p>`,
			want: `<p><strong>Some</strong> text</p>`,
		},
		{
			name: "line break disqualifies",
			html: `<p><strong>a</strong><br><strong>b</strong></p>`,
			want: `<p><strong>a</strong><br><strong>b</strong></p>`,
		},
		{
			name: "empty bold is not a header",
			html: `<p><strong> </strong></p>`,
			want: `<p><strong> </strong></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.html, func(d *dom.Document) { CreateHeaders(d) })
			if got != tt.want {
				t.Errorf("CreateHeaders() = %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRemoveMarkup(t *testing.T) {
	var n int
	got := apply(`<p><strong>a</strong> <em>b</em> <u>c</u> <b>d</b></p>`,
		func(d *dom.Document) { n = RemoveMarkup(d, []Markup{MarkupBold, MarkupItalic}) })

	if want := `<p>a b <u>c</u> d</p>`; got != want {
		t.Errorf("RemoveMarkup() = %s\nwant %s", got, want)
	}
	if n != 3 {
		t.Errorf("removed = %d, want 3", n)
	}

	got = apply(`<p><u>c</u></p>`, func(d *dom.Document) { RemoveMarkup(d, nil) })
	if got != `<p><u>c</u></p>` {
		t.Errorf("RemoveMarkup(nil) = %s", got)
	}
}

func TestCreateLinksFromText(t *testing.T) {
	var n int
	got := apply(`<p>See https://example.com/page. And (http://b.org/x) <a href="x">https://y.com</a> <code>https://z.com</code></p>`,
		func(d *dom.Document) { n = CreateLinksFromText(d) })

	want := `<p>See <a href="https://example.com/page">https://example.com/page</a>. ` +
		`And (<a href="http://b.org/x">http://b.org/x</a>) <a href="x">https://y.com</a> <code>https://z.com</code></p>`
	if got != want {
		t.Errorf("CreateLinksFromText() = %s\nwant %s", got, want)
	}
	if n != 2 {
		t.Errorf("created = %d, want 2", n)
	}
}
