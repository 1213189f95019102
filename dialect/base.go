package dialect

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/seminarfed/extract"
	"github.com/pevans/seminarfed/seminars"
)

// rules are the dialect-specific decisions the shared walk delegates.
type rules interface {
	validHeader(header *goquery.Selection) bool
	locateList(header *goquery.Selection) *goquery.Selection
}

// base implements the walk shared by every dialect: locate sections, apply
// the skip and flag policies, locate each section's list and turn it into a
// topic tree.
type base struct {
	cfg Config
}

// Config returns the configuration the strategy runs with.
func (b *base) Config() Config {
	return b.cfg
}

func (b *base) process(doc *goquery.Document, sink Sink, r rules) {
	doc.Find(b.cfg.HeaderSelector).Each(func(_ int, header *goquery.Selection) {
		if !r.validHeader(header) {
			return
		}

		name := b.cfg.NormalizeName(extract.PrimaryText(header, b.cfg.Wrappers))
		if name == "" {
			return
		}

		if pattern, ok := match(name, b.cfg.Skip); ok {
			sink.Logf("Skipping section %q (matches skip pattern %q)", name, pattern)
			return
		}

		_, public := match(name, b.cfg.PublicSubmissions)
		section := sink.CreateOrSkipSection(SectionInput{
			Name:                   name,
			AllowPublicSubmissions: public,
		})
		if section == nil {
			return
		}

		list := r.locateList(header)
		if list.Length() == 0 {
			return
		}

		_, nonVotable := match(name, b.cfg.NonVotable)
		_, nonPayable := match(name, b.cfg.NonPayable)
		flags := TopicInput{Votable: !nonVotable, Payable: !nonPayable}

		b.processList(list, section, nil, flags, sink)
	})
}

// processList turns the items of list into topics under parent, recursing
// into nested lists. An item without text creates nothing, but its nested
// items still land under parent. When an item's topic cannot be persisted,
// its nested items also fall back to parent rather than being dropped.
func (b *base) processList(list *goquery.Selection, section *seminars.Section, parent *seminars.Topic, flags TopicInput, sink Sink) {
	list.ChildrenFiltered("li").Each(func(_ int, item *goquery.Selection) {
		nested := extract.NestedLists(item)
		text := extract.DirectText(item, b.cfg.Wrappers)

		next := parent
		if text != "" {
			link := extract.Link(item, text)
			if link != "" {
				text = extract.StripLink(text, link)
			}

			in := flags
			in.Name = text
			in.Link = link
			if topic := sink.CreateOrSkipTopic(section, in, parent); topic != nil {
				next = topic
			}
		}

		nested.Each(func(_ int, sub *goquery.Selection) {
			b.processList(sub, section, next, flags, sink)
		})
	})
}

// locateList scans the siblings after header, up to the next header of the
// same element type, for the first list. With deep set, a list wrapped
// inside a sibling counts too.
func (b *base) locateList(header *goquery.Selection, deep bool) *goquery.Selection {
	tag := goquery.NodeName(header)
	found := header.Slice(0, 0)

	header.NextUntil(tag).EachWithBreak(func(_ int, sibling *goquery.Selection) bool {
		if extract.IsList(sibling) {
			found = sibling
			return false
		}
		if !deep {
			return true
		}
		if sibling.Find(tag).Length() > 0 {
			// A wrapper holding the next header ends the section.
			if list := listBefore(sibling, tag); list != nil {
				found = list
			}
			return false
		}
		if list := sibling.Find("ul, ol").First(); list.Length() > 0 {
			found = list
			return false
		}
		return true
	})

	return found
}

// listBefore returns the first list inside wrapper that comes before the
// first tag element in document order, or nil.
func listBefore(wrapper *goquery.Selection, tag string) *goquery.Selection {
	var found *goquery.Selection
	wrapper.Find("ul, ol, " + tag).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if extract.IsList(sel) {
			found = sel
		}
		return false
	})
	return found
}
