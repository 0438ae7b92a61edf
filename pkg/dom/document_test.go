package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "fragment with attributes",
			html: `<p class="intro" id="p1">Hello <a href="https://example.com" title="x">world</a></p>`,
		},
		{
			name: "whitespace between blocks",
			html: "<p>one</p>\n\n  <p>two</p>\n",
		},
		{
			name: "entities kept",
			html: `<p>Second&nbsp;line &amp; more &lt;tag&gt; &ldquo;quoted&rdquo; it&rsquo;s</p>`,
		},
		{
			name: "void elements and comments",
			html: `<p>a<br>b<img src="x.png" alt=""></p><!-- note -->`,
		},
		{
			name: "attribute order preserved",
			html: `<a target="_blank" href="/x" rel="noopener" data-id="7">x</a>`,
		},
		{
			name: "full document",
			html: `<!DOCTYPE html><html><head><title>T</title></head><body><p>x</p></body></html>`,
		},
		{
			name: "script kept verbatim",
			html: `<script>if (a < b && c) { x = "y"; }</script>`,
		},
		{
			name: "pre leading blank line",
			html: "<pre>\n\n  x</pre>",
		},
		{
			name: "textarea leading blank line",
			html: "<textarea>\n\nbody</textarea>",
		},
		{
			name: "pre without leading newline",
			html: "<pre>  x\n</pre>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.html)
			assert.Equal(t, tt.html, Render(doc, false))
		})
	}
}

func TestRender_PreStableAcrossCycles(t *testing.T) {
	src := "<pre>\n\n  indented</pre>"
	out := src
	for i := 0; i < 3; i++ {
		out = Render(Parse(out), false)
	}
	assert.Equal(t, src, out)
}

func TestParse_FragmentDetection(t *testing.T) {
	assert.True(t, Parse(`<p>a</p>`).IsFragment())
	assert.True(t, Parse(`plain text`).IsFragment())
	assert.False(t, Parse(`<html><body>a</body></html>`).IsFragment())
	assert.False(t, Parse("  <!-- lead --> <!DOCTYPE html><p>a</p>").IsFragment())
	assert.False(t, Parse(`<BODY><p>a</p></BODY>`).IsFragment())
}

func TestParse_MalformedNeverFails(t *testing.T) {
	inputs := []string{
		`<p><b>bold</p>`,
		`<div><span>unclosed`,
		`</p></div>stray`,
		`<table><td>cell`,
		``,
		`<<<>>>`,
	}
	for _, in := range inputs {
		doc := Parse(in)
		require.NotNil(t, doc)
		require.NotNil(t, doc.Root())
		_ = Render(doc, false)
	}

	out := Render(Parse(`<p><b>bold</p>`), false)
	assert.Contains(t, out, "<p>")
	assert.Contains(t, out, "bold")
}

func TestDocument_Body(t *testing.T) {
	full := Parse(`<html><body><p>x</p></body></html>`)
	assert.Equal(t, "body", full.Body().Data)

	frag := Parse(`<p>x</p>`)
	assert.Equal(t, frag.Root(), frag.Body())
}

func TestDocument_Find(t *testing.T) {
	doc := Parse(`<p><a href="a">1</a><a>2</a><a href="b">3</a></p>`)
	sel := doc.Find("a[href]")
	assert.Equal(t, 2, sel.Length())
	assert.Equal(t, "1", sel.First().Text())
}

func TestDocument_Empty(t *testing.T) {
	assert.True(t, Parse("").Empty())
	assert.True(t, Parse("  \n ").Empty())
	assert.False(t, Parse("<p></p>").Empty())
}

func TestAttr_CaseInsensitive(t *testing.T) {
	doc := Parse(`<a HREF="x" Title="t">x</a>`)
	a := FindFirst(doc.Root(), "a")
	require.NotNil(t, a)

	v, ok := Attr(a, "HREF")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.True(t, HasAttr(a, "title"))
}

func TestSetAttr_KeepsPosition(t *testing.T) {
	doc := Parse(`<a href="x" rel="a" title="t">x</a>`)
	a := FindFirst(doc.Root(), "a")

	SetAttr(a, "rel", "b")
	SetAttr(a, "target", "_blank")
	assert.Equal(t, `<a href="x" rel="b" title="t" target="_blank">x</a>`, Render(doc, false))

	assert.True(t, RemoveAttr(a, "title"))
	assert.False(t, RemoveAttr(a, "title"))
	assert.Equal(t, `<a href="x" rel="b" target="_blank">x</a>`, Render(doc, false))
}

func TestUnwrap(t *testing.T) {
	doc := Parse(`<p>a<span>b<em>c</em></span>d</p>`)
	Unwrap(FindFirst(doc.Root(), "span"))
	assert.Equal(t, `<p>ab<em>c</em>d</p>`, Render(doc, false))
}

func TestRenameAndReplace(t *testing.T) {
	doc := Parse(`<p><b>x</b></p>`)
	b := FindFirst(doc.Root(), "b")
	Rename(b, "strong")
	assert.Equal(t, `<p><strong>x</strong></p>`, Render(doc, false))

	ReplaceWith(b, NewText("y"))
	assert.Equal(t, `<p>y</p>`, Render(doc, false))
}

func TestTextContentAndEmbedded(t *testing.T) {
	doc := Parse(`<div> a <b>b</b><!-- c --><img src="i.png"></div>`)
	div := FindFirst(doc.Root(), "div")
	assert.Equal(t, " a b", TextContent(div))
	assert.True(t, HasEmbedded(div))
	assert.True(t, IsBlank(" \u00a0\n"))
	assert.False(t, IsBlank(" x "))
}

func TestWalk_AllowsRemoval(t *testing.T) {
	doc := Parse(`<p>a</p><script>x</script><p>b</p><script>y</script>`)
	Walk(doc.Root(), func(n *html.Node) bool {
		if IsElement(n, "script") {
			Remove(n)
			return false
		}
		return true
	})
	assert.Equal(t, `<p>a</p><p>b</p>`, Render(doc, false))
}

func TestElements_Snapshot(t *testing.T) {
	doc := Parse(`<div><p>1</p><p>2</p></div><p>3</p>`)
	ps := Elements(doc.Root(), "p")
	require.Len(t, ps, 3)

	Remove(FindFirst(doc.Root(), "div"))
	assert.False(t, IsAttached(ps[0], doc.Root()))
	assert.True(t, IsAttached(ps[2], doc.Root()))
}

func TestRender_Pretty(t *testing.T) {
	doc := Parse(`<div><p>a <em>b</em></p><p>c</p></div>`)
	want := "<div>\n  <p>a <em>b</em></p>\n  <p>c</p>\n</div>"
	assert.Equal(t, want, Render(doc, true))
}

func TestRender_PrettyKeepsPre(t *testing.T) {
	doc := Parse("<pre>  line 1\n  line 2</pre>")
	assert.True(t, strings.HasSuffix(Render(doc, true), "<pre>  line 1\n  line 2</pre>"))
}

func TestInnerHTML(t *testing.T) {
	doc := Parse(`<p>a <strong>b</strong></p>`)
	assert.Equal(t, `a <strong>b</strong>`, InnerHTML(FindFirst(doc.Root(), "p")))
}
