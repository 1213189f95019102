package dialect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/seminarfed/extract"
)

// RichText reads agendas pasted from word processors. Their markup wraps
// the visible text in layers of spans, and lists often end up inside
// wrapper divs.
type RichText struct {
	base
}

var _ Strategy = (*RichText)(nil)

// DefaultRichTextConfig returns the defaults of the rich-text dialect.
func DefaultRichTextConfig() Config {
	return Config{
		HeaderSelector: "h3",
		Wrappers:       []string{"span > span", "span"},
		StripDuration:  true,
		TitleCase:      true,
		Connectives: []string{
			"a", "an", "and", "for", "in", "of", "on", "or", "the", "to", "vs", "with",
		},
		DeepListSearch: true,
		Skip:           []string{"break", "intro"},
		NonVotable:     []string{"housekeeping", "sponsors"},
		NonPayable:     []string{"housekeeping", "sponsors"},
	}
}

// NewRichText creates a rich-text-dialect strategy.
func NewRichText(cfg Config) *RichText {
	return &RichText{base{cfg: cfg}}
}

// Name returns the dialect id.
func (r *RichText) Name() string {
	return RichTextID
}

// Process walks doc and feeds every section and topic to sink.
func (r *RichText) Process(doc *goquery.Document, sink Sink) {
	r.process(doc, sink, r)
}

// validHeader accepts any header with visible text, plus the configured
// attribute when there is one. Pasted documents often carry empty
// headings used as spacing.
func (r *RichText) validHeader(header *goquery.Selection) bool {
	if r.cfg.RequiredAttr != "" {
		value, ok := header.Attr(r.cfg.RequiredAttr)
		if !ok || strings.TrimSpace(value) == "" {
			return false
		}
	}
	return extract.PrimaryText(header, r.cfg.Wrappers) != ""
}

func (r *RichText) locateList(header *goquery.Selection) *goquery.Selection {
	return r.base.locateList(header, r.cfg.DeepListSearch)
}
