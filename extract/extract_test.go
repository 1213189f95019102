package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: parse an HTML fragment
func parseHTML(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// TestNormalizeSpace verifies trimming and whitespace collapsing
func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Topic 1", NormalizeSpace("  Topic \n\t 1  "))
	assert.Equal(t, "", NormalizeSpace(" \n "))
}

// TestPrimaryText_Wrappers verifies wrapper paths are tried in order
func TestPrimaryText_Wrappers(t *testing.T) {
	doc := parseHTML(t, `
		<h3 id="a"><span><span> Deep text </span></span><span>ignored</span></h3>
		<h3 id="b"><span>Shallow</span> tail</h3>
		<h3 id="c"><span><span>  </span></span>Plain text</h3>
		<h3 id="d"> No wrappers </h3>`)
	wrappers := []string{"span > span", "span"}

	assert.Equal(t, "Deep text", PrimaryText(doc.Find("#a"), wrappers))
	assert.Equal(t, "Shallow", PrimaryText(doc.Find("#b"), wrappers))
	assert.Equal(t, "Plain text", PrimaryText(doc.Find("#c"), wrappers),
		"blank wrappers fall back to the full text")
	assert.Equal(t, "No wrappers", PrimaryText(doc.Find("#d"), wrappers))
	assert.Equal(t, "Shallow tail", PrimaryText(doc.Find("#b"), nil))
}

// TestDirectText_NoNestedLeak verifies nested list text stays out of the
// item's own text
func TestDirectText_NoNestedLeak(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="parent">Parent
		<ul><li>Child 1</li><li>Child 2</li></ul>
		trailing</li></ul>`)

	item := doc.Find("#parent")
	assert.Equal(t, "Parent trailing", DirectText(item, nil))

	// The document itself is untouched.
	assert.Equal(t, 2, item.Find("li").Length())
}

// TestDirectText_OnlyNestedList verifies an item with nothing but a nested
// list has no text
func TestDirectText_OnlyNestedList(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="empty"><ol><li>Child</li></ol></li></ul>`)

	assert.Equal(t, "", DirectText(doc.Find("#empty"), nil))
}

// TestNestedLists_Outermost verifies only the outermost nested lists are
// returned
func TestNestedLists_Outermost(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item">Item
		<ul id="first"><li>A<ul id="deep"><li>A1</li></ul></li></ul>
		<div><ol id="second"><li>B</li></ol></div>
	</li></ul>`)

	lists := NestedLists(doc.Find("#item"))
	require.Equal(t, 2, lists.Length())
	assert.Equal(t, "first", lists.Eq(0).AttrOr("id", ""))
	assert.Equal(t, "second", lists.Eq(1).AttrOr("id", ""))
}

// TestIsList verifies list detection
func TestIsList(t *testing.T) {
	doc := parseHTML(t, `<ul id="u"></ul><ol id="o"></ol><p id="p"></p>`)

	assert.True(t, IsList(doc.Find("#u")))
	assert.True(t, IsList(doc.Find("#o")))
	assert.False(t, IsList(doc.Find("#p")))
}

// TestLink_AnchorWins verifies a direct-child anchor beats URLs in the
// text
func TestLink_AnchorWins(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item"><a href="https://x">Topic 2</a> see https://other</li></ul>`)

	assert.Equal(t, "https://x", Link(doc.Find("#item"), "Topic 2 see https://other"))
}

// TestLink_HrefVerbatim verifies hrefs are not normalized
func TestLink_HrefVerbatim(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item"><a href="/talks/42?ref=agenda">Talk</a></li></ul>`)

	assert.Equal(t, "/talks/42?ref=agenda", Link(doc.Find("#item"), "Talk"))
}

// TestLink_EmptyHrefFallsBack verifies anchors without an href are ignored
func TestLink_EmptyHrefFallsBack(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item"><a href=" ">Talk</a> www.example.com/talk</li></ul>`)

	assert.Equal(t, "www.example.com/talk", Link(doc.Find("#item"), "Talk www.example.com/talk"))
}

// TestLink_NestedAnchorIgnored verifies only direct-child anchors count
func TestLink_NestedAnchorIgnored(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item">Topic<ul><li><a href="https://child">Child</a></li></ul></li></ul>`)

	assert.Equal(t, "", Link(doc.Find("#item"), "Topic"))
}

// TestLink_TextURL verifies URL detection in plain text
func TestLink_TextURL(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item">Slides</li></ul>`)
	item := doc.Find("#item")

	assert.Equal(t, "https://example.com/slides", Link(item, "Slides https://example.com/slides"))
	assert.Equal(t, "HTTP://EXAMPLE.COM", Link(item, "Shouting HTTP://EXAMPLE.COM"))
	assert.Equal(t, "", Link(item, "Slides"))
}

// TestStripLink verifies URLs are removed from names
func TestStripLink(t *testing.T) {
	tests := []struct {
		name string
		text string
		link string
		want string
	}{
		{"trailing URL", "Slides https://example.com/slides", "https://example.com/slides", "Slides"},
		{"URL in the middle", "Read https://a.example then discuss", "https://a.example", "Read then discuss"},
		{"www URL", "Notes www.example.com", "www.example.com", "Notes"},
		{"several URLs", "A https://one B http://two", "https://one", "A B"},
		{"anchor link, no URL text", "Topic 2", "https://x", "Topic 2"},
		{"no link keeps URL-free text", "  Topic   1 ", "", "Topic 1"},
		{"only a URL", "https://example.com", "https://example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripLink(tt.text, tt.link))
		})
	}
}

// TestURLPattern_SameSetForLinkAndStrip verifies everything Link can find
// in text is removed by StripLink
func TestURLPattern_SameSetForLinkAndStrip(t *testing.T) {
	doc := parseHTML(t, `<ul><li id="item"></li></ul>`)
	item := doc.Find("#item")

	for _, text := range []string{
		"Talk http://a.example/x",
		"Talk https://a.example/x?y=1",
		"Talk www.a.example",
		"Talk HtTpS://mixed.example",
	} {
		link := Link(item, text)
		require.NotEmpty(t, link, text)
		assert.Equal(t, "Talk", StripLink(text, link), text)
	}
}
