// Package extract pulls human-readable text and links out of agenda markup.
// The functions here are pure: they never modify the document they read.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listSelector matches ordered and unordered lists.
const listSelector = "ul, ol"

// NormalizeSpace trims s and collapses every internal whitespace run into a
// single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PrimaryText returns the readable text of an element.
//
// Rich-text exports often wrap the visible text in redundant inline
// elements. For those dialects wrappers lists child paths such as
// "span > span" and "span", tried in order; the first one yielding
// non-blank text wins. When every wrapper is blank, or wrappers is empty,
// the element's whole text content is used. The result is never nil; an
// empty string means there is nothing to import.
func PrimaryText(sel *goquery.Selection, wrappers []string) string {
	for _, wrapper := range wrappers {
		if text := NormalizeSpace(childPath(sel, wrapper).Text()); text != "" {
			return text
		}
	}
	return NormalizeSpace(sel.Text())
}

// DirectText is PrimaryText computed on a copy of the element with every
// nested list removed, so text from nested items never ends up in the
// ancestor's text.
func DirectText(sel *goquery.Selection, wrappers []string) string {
	return PrimaryText(WithoutNestedLists(sel), wrappers)
}

// WithoutNestedLists returns a detached deep copy of sel with all ul/ol
// descendants removed.
func WithoutNestedLists(sel *goquery.Selection) *goquery.Selection {
	clone := sel.First().Clone()
	clone.Find(listSelector).Remove()
	return clone
}

// NestedLists returns the outermost lists inside an item, in document
// order. Lists nested inside those are left for the recursion to find.
func NestedLists(item *goquery.Selection) *goquery.Selection {
	return item.Find(listSelector).FilterFunction(func(_ int, list *goquery.Selection) bool {
		return list.ParentsUntilSelection(item).Filter(listSelector).Length() == 0
	})
}

// IsList reports whether sel is an ordered or unordered list.
func IsList(sel *goquery.Selection) bool {
	return sel.Is(listSelector)
}

// childPath descends from sel through direct children matching each step of
// a path like "span > span".
func childPath(sel *goquery.Selection, path string) *goquery.Selection {
	current := sel
	for _, step := range strings.Split(path, ">") {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		current = current.ChildrenFiltered(step)
	}
	return current
}
