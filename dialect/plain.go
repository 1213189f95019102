package dialect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Plain reads hand-written agenda pages: every section is a heading with an
// anchor id, followed by a plain list of topics.
type Plain struct {
	base
}

var _ Strategy = (*Plain)(nil)

// DefaultPlainConfig returns the defaults of the plain dialect.
func DefaultPlainConfig() Config {
	return Config{
		HeaderSelector: "h2",
		RequiredAttr:   "id",
		StripDuration:  true,
		Skip:           []string{"announcements"},
		NonVotable:     []string{"housekeeping"},
		NonPayable:     []string{"housekeeping"},
	}
}

// NewPlain creates a plain-dialect strategy.
func NewPlain(cfg Config) *Plain {
	return &Plain{base{cfg: cfg}}
}

// Name returns the dialect id.
func (p *Plain) Name() string {
	return PlainID
}

// Process walks doc and feeds every section and topic to sink.
func (p *Plain) Process(doc *goquery.Document, sink Sink) {
	p.process(doc, sink, p)
}

// validHeader accepts headers carrying the identifying attribute. Headings
// without it are page furniture (titles, sidebars) rather than sections.
func (p *Plain) validHeader(header *goquery.Selection) bool {
	if p.cfg.RequiredAttr == "" {
		return true
	}
	value, ok := header.Attr(p.cfg.RequiredAttr)
	return ok && strings.TrimSpace(value) != ""
}

func (p *Plain) locateList(header *goquery.Selection) *goquery.Selection {
	return p.base.locateList(header, p.cfg.DeepListSearch)
}
