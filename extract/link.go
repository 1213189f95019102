package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// URLPattern matches URL-looking substrings: an http:// or https:// scheme,
// or a bare www. prefix, followed by non-whitespace.
var URLPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)

// Link finds the link of a list item. A direct-child anchor with a
// non-empty href wins and its href is returned verbatim. Otherwise the
// first URL-looking substring of fallbackText is returned. An empty string
// means the item has no link.
func Link(sel *goquery.Selection, fallbackText string) string {
	var href string
	sel.ChildrenFiltered("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if value, ok := a.Attr("href"); ok && strings.TrimSpace(value) != "" {
			href = value
			return false
		}
		return true
	})
	if href != "" {
		return href
	}

	return URLPattern.FindString(fallbackText)
}

// StripLink removes every URL-looking substring from text so that a topic
// name does not carry the raw URL. link is the recovered link; it only
// decides whether anything needs stripping.
func StripLink(text, link string) string {
	if link == "" {
		return NormalizeSpace(text)
	}
	return NormalizeSpace(URLPattern.ReplaceAllString(text, " "))
}
