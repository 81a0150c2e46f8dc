package articleproc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://en.wikipedia.org"

const bananaMarkup = `<div class="mw-content-ltr mw-parser-output" lang="en" dir="ltr">` +
	`<div role="note" class="hatnote navigation-not-searchable">For other uses, see <a href="/wiki/Banana_(disambiguation)">Banana (disambiguation)</a>.</div>` +
	`<table class="infobox"><tbody><tr><th>Genus</th><td><a href="/wiki/Musa_(genus)">Musa</a><sup class="reference"><a href="#cite_note-1">[1]</a></sup></td></tr></tbody></table>` +
	`<p>A <b>banana</b> is an elongated, edible <a href="/wiki/Fruit">fruit</a> produced by <a href="/wiki/Musa_(genus)">Musa</a>.<sup class="reference"><a href="#cite_note-2">[2]</a></sup></p>` +
	`<div id="toc" class="toc"><ul><li><a href="#History">History</a></li></ul></div>` +
	`<h2><span class="mw-headline" id="History">History</span><span class="mw-editsection">[<a href="/w/index.php?title=Banana&amp;action=edit&amp;section=1">edit</a>]</span></h2>` +
	`<p>See <a href="/wiki/Fruit#Botany">fruit botany</a>, <a href="/wiki/Caf%C3%A9">café</a> and <a href="/wiki/File:Banana.jpg">a photo</a>.</p>` +
	`<table class="vertical-navbox"><tr><td><a href="/wiki/Plantain">Plantain</a></td></tr></table>` +
	`<div class="navbox"><a href="/wiki/Apple">Apple</a></div>` +
	`</div>`

func sanitize(t *testing.T, markup string) *Result {
	t.Helper()
	res, err := New(base).Sanitize([]byte(markup))
	require.NoError(t, err)
	return res
}

func TestSanitize_Banana(t *testing.T) {
	res := sanitize(t, bananaMarkup)

	// Noise is gone from content.
	for _, noise := range []string{"hatnote", "mw-editsection", "cite_note", `id="toc"`, "vertical-navbox", "navbox", "Plantain", "Apple", "disambiguation"} {
		assert.NotContains(t, res.Content, noise)
	}

	// Infobox is detached, cleaned and rewritten on its own.
	assert.NotContains(t, res.Content, "infobox")
	assert.True(t, strings.HasPrefix(res.Infobox, `<table class="infobox">`), res.Infobox)
	assert.Contains(t, res.Infobox, `href="https://en.wikipedia.org/wiki/Musa_(genus)" data-wikigame="internal"`)
	assert.NotContains(t, res.Infobox, "cite_note")

	// Internal links become absolute and marked; namespace links become absolute only.
	assert.Contains(t, res.Content, `<a href="https://en.wikipedia.org/wiki/Fruit" data-wikigame="internal">fruit</a>`)
	assert.Contains(t, res.Content, `<a href="https://en.wikipedia.org/wiki/Caf%C3%A9" data-wikigame="internal">café</a>`)
	assert.Contains(t, res.Content, `<a href="https://en.wikipedia.org/wiki/File:Banana.jpg">a photo</a>`)

	// Distinct titles, content order first, then infobox.
	assert.Equal(t, []string{"Fruit", "Musa (genus)", "Café"}, res.Links)

	assert.Equal(t, "A banana is an elongated, edible fruit produced by Musa.", res.Summary)
	assert.Greater(t, res.WordCount, 0)
}

func TestSanitize_InfoboxNotDuplicated(t *testing.T) {
	markup := `<div class="mw-parser-output">` +
		`<table class="infobox biography vcard"><tr><td>Born 1879</td></tr></table>` +
		`<table class="infobox"><tr><td>Second box</td></tr></table>` +
		`<p>Physicist.</p></div>`

	res := sanitize(t, markup)

	assert.Contains(t, res.Infobox, "Born 1879")
	assert.NotContains(t, res.Content, "Born 1879")
	// Only the first infobox is detached.
	assert.NotContains(t, res.Infobox, "Second box")
	assert.Contains(t, res.Content, "Second box")
}

func TestSanitize_CleanInputOnlyRewritesLinks(t *testing.T) {
	clean := `<div class="mw-parser-output"><p>A <a href="/wiki/Fruit">fruit</a> and <a href="#Notes">notes</a>.</p><ul><li><a href="https://example.org/x">external</a></li></ul></div>`

	res := sanitize(t, clean)

	want := strings.Replace(clean, `<a href="/wiki/Fruit">`, `<a href="https://en.wikipedia.org/wiki/Fruit" data-wikigame="internal">`, 1)
	assert.Equal(t, want, res.Content)
}

func TestSanitize_NoInfobox(t *testing.T) {
	markup := `<div class="mw-parser-output"><p>Just prose.</p></div>`

	res := sanitize(t, markup)

	assert.Equal(t, "", res.Infobox)
	assert.Equal(t, markup, res.Content)
	assert.Empty(t, res.Links)
}

func TestSanitize_Deterministic(t *testing.T) {
	raw := []byte(bananaMarkup)
	snapshot := bytes.Clone(raw)
	p := New(base)

	first, err := p.Sanitize(raw)
	require.NoError(t, err)
	second, err := p.Sanitize(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, raw, "caller bytes must not be modified")
}

func TestSanitize_ExtractionFailed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Empty", ""},
		{"NoContainer", `<div class="mw-body"><p>text</p></div>`},
		{"SpanNotDiv", `<span class="mw-parser-output">text</span>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(base).Sanitize([]byte(tt.raw))
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrExtractionFailed), "got %v", err)
		})
	}
}

func TestSanitize_StripsUnsafeAndForgedMarkers(t *testing.T) {
	markup := `<div class="mw-parser-output" onmouseover="hover()">` +
		`<table class="infobox" onclick="box()"><tr><td><a href="javascript:alert(1)">bad link</a> <a href="/wiki/Ulm">Ulm</a></td></tr></table>` +
		`<script>alert(1)</script>` +
		`<style>p { display: none }</style>` +
		`<iframe src="https://evil.example/frame"></iframe>` +
		`<object data="https://evil.example/x.swf"></object>` +
		`<p onclick="steal()">Text <a href="https://evil.example/wiki/Fruit" data-wikigame="internal">forged</a> ` +
		`<a href="/wiki/Fruit" onclick="track()">fruit</a> <a href="vbscript:msgbox(1)">old</a></p>` +
		`<span data-wikigame="internal">marked span</span></div>`

	res := sanitize(t, markup)

	for name, out := range map[string]string{"content": res.Content, "infobox": res.Infobox} {
		for _, unsafe := range []string{"<script", "<style", "<iframe", "<object", "onclick", "onmouseover", "javascript:", "vbscript:", "alert(1)", "display: none"} {
			assert.NotContains(t, out, unsafe, "%s still carries %q", name, unsafe)
		}
	}

	// The root and the detached infobox keep their own safe attributes.
	assert.True(t, strings.HasPrefix(res.Content, `<div class="mw-parser-output">`), res.Content)
	assert.True(t, strings.HasPrefix(res.Infobox, `<table class="infobox">`), res.Infobox)

	// Link text survives when its unsafe href does not.
	assert.Contains(t, res.Infobox, "bad link")
	assert.Contains(t, res.Content, "old")

	// Only rewritten internal links carry the marker.
	assert.Equal(t, 1, strings.Count(res.Content, "data-wikigame"))
	assert.Contains(t, res.Content, `<a href="https://en.wikipedia.org/wiki/Fruit" data-wikigame="internal">fruit</a>`)
	assert.Contains(t, res.Content, `<span>marked span</span>`)
	assert.Contains(t, res.Infobox, `<a href="https://en.wikipedia.org/wiki/Ulm" data-wikigame="internal">Ulm</a>`)
	assert.Equal(t, []string{"Fruit", "Ulm"}, res.Links)
}

func TestResult_Article(t *testing.T) {
	res := sanitize(t, bananaMarkup)
	a := res.Article("Banana", base+"/wiki/Banana")

	assert.Equal(t, "Banana", a.Title)
	assert.Equal(t, res.Content, a.Content)
	assert.Equal(t, res.Infobox, a.Infobox)
	assert.Equal(t, res.Links, a.Links)

	// The article owns its link slice.
	a.Links[0] = "changed"
	assert.Equal(t, "Fruit", res.Links[0])
}
